package query

// SortObject builds the sort list for a search. The tags field sorts on
// tags_length. Unless the primary field is the id field itself, the id
// field is appended as a tie-break so search_after cursors stay unique.
func SortObject(field, order string, missing any, idField string) []any {
	if field == "tags" {
		field = "tags_length"
	}

	var sortList []any
	if field == "_score" {
		sortList = append(sortList, map[string]any{
			"_score": map[string]any{"order": order},
		})
	} else {
		sortList = append(sortList, map[string]any{
			field: map[string]any{"order": order, "missing": missing},
		})
	}

	if field != idField {
		sortList = append(sortList, map[string]any{
			idField: map[string]any{"order": order},
		})
	}
	return sortList
}
