// Package stacker provides a Go client for the property stacker search
// service.
//
// The stacker answers one question for a company: which properties and
// prospects match a filter set. Every search runs against both document
// kinds at once and pages each side with its own cursor.
//
// # Searching
//
//	client, _ := stacker.New("http://localhost:8080", stacker.WithAPIKey(key))
//	req := stacker.NewSearch(42).
//	    State("TX").
//	    SkipTraced(true).
//	    SortBy("last_contact", stacker.Desc).
//	    Build()
//	res, _ := client.SearchStacker(ctx, req)
//
// # Bulk actions
//
// Actions target either an explicit id list or every document a saved
// search matches. The relational side of an action lands upstream; the
// stacker schedules the index maintenance and reports what it resolved.
//
//	est, _ := client.EstimatePush(ctx, stacker.ActionRequest{
//	    CompanyID: 42,
//	    Type:      stacker.TypeProspect,
//	    IDList:    ids,
//	})
package stacker
