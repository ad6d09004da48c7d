package search

// Page is one page of hits from a kind index. Cursor carries the sort
// values of the last hit and resumes the search where the page ended.
type Page struct {
	Results []map[string]any
	Total   int64
	Cursor  []any
	Aggs    map[string]any
}

// Totals holds one company's per-kind document totals. The json tags
// double as the cache encoding.
type Totals struct {
	Prospects  int64 `json:"prospects"`
	Properties int64 `json:"properties"`
}

// Result is the response of one dual-index search. The two kinds page
// independently because their hit counts differ; Counts rides along for
// the header badges.
type Result struct {
	Prospects  *Page
	Properties *Page
	Counts     *Totals
}
