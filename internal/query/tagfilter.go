package query

import (
	"github.com/parcelworks/stacker/internal/domain/schema"
	"github.com/parcelworks/stacker/internal/domain/search"
)

type tagClauses struct {
	must    []any
	mustNot []any
	should  []any
}

// propertyTagClauses builds the clauses for a property tag filter: term
// clauses on the tags field, combined per the option, excludes negated,
// plus an assignment date window on property_status.date_utc.
func propertyTagClauses(t *search.PropertyTags) tagClauses {
	var tc tagClauses
	includeTo := includeTarget(&tc, t.Option())
	for _, id := range t.Include() {
		*includeTo = append(*includeTo, term("tags", id))
	}
	for _, id := range t.Exclude() {
		tc.mustNot = append(tc.mustNot, term("tags", id))
	}
	if c := t.Criteria(); c != nil {
		tc.must = append(tc.must, criteriaRange("property_status.date_utc", *c))
	}
	return tc
}

// prospectStatusClauses builds the clauses for a prospect status filter:
// match clauses on prospect_status.title through the status query map,
// with the date window on prospect_status.date_utc.
func prospectStatusClauses(t *search.ProspectStatus) tagClauses {
	var tc tagClauses
	mapping := schema.ProspectStatusQueryMap()
	includeTo := includeTarget(&tc, t.Option())
	for _, name := range t.Include() {
		*includeTo = append(*includeTo, matchClause(mapping[name]))
	}
	for _, name := range t.Exclude() {
		tc.mustNot = append(tc.mustNot, matchClause(mapping[name]))
	}
	if c := t.Criteria(); c != nil {
		tc.must = append(tc.must, criteriaRange("prospect_status.date_utc", *c))
	}
	return tc
}

// includeTarget picks where include clauses go: "all" requires every
// clause, anything else matches any of them.
func includeTarget(tc *tagClauses, option search.TagOption) *[]any {
	if option == search.TagOptionAll {
		return &tc.must
	}
	return &tc.should
}

func matchClause(fields map[string]any) map[string]any {
	inner := make(map[string]any, len(fields))
	for k, v := range fields {
		inner[k] = v
	}
	return map[string]any{"match": inner}
}

func criteriaRange(field string, c search.TagCriteria) map[string]any {
	bounds := map[string]any{}
	switch c.Kind() {
	case search.CriteriaBefore:
		bounds["lte"] = c.DateTo()
	case search.CriteriaBetween:
		bounds["gte"] = c.DateFrom()
		bounds["lte"] = c.DateTo()
	case search.CriteriaAfter:
		bounds["gte"] = c.DateFrom()
	}
	return map[string]any{"range": map[string]any{field: bounds}}
}

func mergeTagClauses(b *boolBody, tc tagClauses) {
	b.must = append(b.must, tc.must...)
	b.mustNot = append(b.mustNot, tc.mustNot...)
	b.should = append(b.should, tc.should...)
}
