package schema

// textQuery describes how a free-text query field turns into an
// Elasticsearch clause. A nil field list means an exact term query.
type textQuery struct {
	multiMatch []string
}

// queryMap drives the free-text part of the search body. The .raw keyword
// sub-fields carry a 6x boost so exact values outrank partial matches.
var queryMap = map[string]textQuery{
	"name":    {multiMatch: []string{"name", "name.raw^6"}},
	"address": {multiMatch: []string{"address", "address.raw^6"}},
	"city":    {},
	"phone":   {multiMatch: []string{"phone_raw", "phone_raw.raw^6"}},
}

// QueryClause builds the must clause for one free-text query field.
// Unknown fields report ok=false and produce nothing.
func QueryClause(field string, value any) (map[string]any, bool) {
	tq, ok := queryMap[field]
	if !ok {
		return nil, false
	}
	if tq.multiMatch != nil {
		fields := make([]any, len(tq.multiMatch))
		for i, f := range tq.multiMatch {
			fields[i] = f
		}
		return map[string]any{
			"multi_match": map[string]any{
				"query":  value,
				"fields": fields,
			},
		}, true
	}
	return map[string]any{
		"term": map[string]any{field: value},
	}, true
}

// QueryFields returns the supported free-text query field names.
func QueryFields() []string {
	return []string{"name", "address", "city", "phone"}
}

// ProspectStatusQueryMap maps prospect-status toggle names to the
// prospect_status.title match each one stands for. The isBlocked entry
// matches the literal flag name rather than an activity title.
func ProspectStatusQueryMap() map[string]map[string]any {
	return map[string]map[string]any{
		"isBlocked":       {"prospect_status.title": "is_blocked"},
		"doNotCall":       {"prospect_status.title": StatusAddedDNC},
		"isPriority":      {"prospect_status.title": StatusAddedPriority},
		"isQualifiedLead": {"prospect_status.title": StatusAddedQualified},
		"wrongNumber":     {"prospect_status.title": StatusAddedWrong},
	}
}
