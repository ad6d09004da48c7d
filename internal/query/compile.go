// Package query compiles typed search requests into Elasticsearch bodies.
// Every function here is pure: inputs are never mutated and every call
// returns freshly allocated maps, so a body can be compiled once and run
// against both indexes, and compiling twice yields equal bodies.
package query

import (
	"github.com/parcelworks/stacker/internal/domain/schema"
	"github.com/parcelworks/stacker/internal/domain/search"
)

// Params are the inputs of one body compilation. CompanyID is mandatory;
// everything else is optional. Exclude only applies together with IDField.
type Params struct {
	CompanyID  int64
	Query      map[string]string
	Filters    *search.Filters
	IDField    string
	Aggregates map[string]any
	Exclude    []int64
	Source     string
}

type boolBody struct {
	filter  []any
	must    []any
	mustNot []any
	should  []any
}

// Compile builds the search body. The company term filter always comes
// first; documents never leave their tenant.
func Compile(p Params) map[string]any {
	b := &boolBody{
		filter: []any{term("company_id", p.CompanyID)},
	}

	body := map[string]any{}
	if p.Source != "" {
		body["_source"] = p.Source
	}
	if p.Exclude != nil && p.IDField != "" {
		b.mustNot = append(b.mustNot, terms(p.IDField, p.Exclude))
	}

	if len(p.Query) == 0 && p.Filters.IsZero() {
		return finish(body, b)
	}

	compileFilters(b, p.Filters)

	for _, field := range schema.QueryFields() {
		value, ok := p.Query[field]
		if !ok || value == "" {
			continue
		}
		clause, _ := schema.QueryClause(field, value)
		b.must = append(b.must, clause)
	}

	if p.Aggregates != nil {
		body["aggs"] = cloneMap(p.Aggregates)
	}

	return finish(body, b)
}

func compileFilters(b *boolBody, f *search.Filters) {
	if f.IsZero() {
		return
	}

	if f.IsReminder != nil {
		b.filter = append(b.filter, term("has_reminder", *f.IsReminder))
	}

	if f.SkipTraced != nil {
		if *f.SkipTraced {
			b.filter = append(b.filter, exists("phone_raw"))
		} else {
			b.mustNot = append(b.mustNot, exists("phone_raw"))
		}
	}

	if f.InCampaign != nil {
		if *f.InCampaign {
			b.filter = append(b.filter, rangeGT("campaigns", 0))
		} else {
			b.filter = append(b.filter, term("campaigns", 0))
		}
	}

	if f.InDMCampaign != nil {
		if *f.InDMCampaign {
			b.filter = append(b.filter, rangeGT("dm_campaigns", 0))
		} else {
			b.filter = append(b.filter, term("dm_campaigns", 0))
		}
	}

	// Date filters pair an exists clause with the range so documents
	// missing the field never match.
	dateFilters := []struct {
		field  string
		window search.DateRange
	}{
		{"last_contact_inbound", f.InboundDate},
		{"last_contact", f.OutboundDate},
		{"last_sold_date", f.LastSoldDate},
		{"skiptrace_date", f.SkiptraceDate},
		{"last_import_date", f.LastImportDate},
		{"first_import_date", f.FirstImportDate},
	}
	for _, df := range dateFilters {
		if df.window.IsZero() {
			continue
		}
		b.filter = append(b.filter,
			exists(df.field),
			map[string]any{"range": map[string]any{df.field: df.window.Lookup()}},
		)
	}

	if f.PropertyTags != nil {
		mergeTagClauses(b, propertyTagClauses(f.PropertyTags))
	}
	if f.ProspectStatus != nil {
		mergeTagClauses(b, prospectStatusClauses(f.ProspectStatus))
	}

	if len(f.LeadStageID) > 0 {
		b.filter = append(b.filter, terms("lead_stage_id", f.LeadStageID))
	}

	if f.ZipCode != "" {
		b.filter = append(b.filter, term("zip_code", f.ZipCode))
	}

	compileGenericFilters(b, f)
}

// compileGenericFilters emits the plain term/terms clauses: lists become
// terms, scalars term.
func compileGenericFilters(b *boolBody, f *search.Filters) {
	if len(f.ProspectID) > 0 {
		b.filter = append(b.filter, terms("prospect_id", f.ProspectID))
	}
	if len(f.PropertyID) > 0 {
		b.filter = append(b.filter, terms("property_id", f.PropertyID))
	}
	if len(f.AddressID) > 0 {
		b.filter = append(b.filter, terms("address_id", f.AddressID))
	}
	if len(f.State) > 0 {
		b.filter = append(b.filter, termsStr("state", f.State))
	}
	if len(f.DistressIndicators) > 0 {
		b.filter = append(b.filter, terms("distress_indicators", f.DistressIndicators))
	}
	bools := []struct {
		field string
		value *bool
	}{
		{"is_blocked", f.IsBlocked},
		{"do_not_call", f.DoNotCall},
		{"is_priority", f.IsPriority},
		{"is_qualified_lead", f.IsQualifiedLead},
		{"wrong_number", f.WrongNumber},
		{"opted_out", f.OptedOut},
		{"is_archived", f.IsArchived},
		{"recently_vacant", f.RecentlyVacant},
	}
	for _, bf := range bools {
		if bf.value != nil {
			b.filter = append(b.filter, term(bf.field, *bf.value))
		}
	}
	if len(f.OwnerStatus) > 0 {
		b.filter = append(b.filter, termsStr("owner_status", f.OwnerStatus))
	}
}

func finish(body map[string]any, b *boolBody) map[string]any {
	boolQ := map[string]any{
		"filter":   b.filter,
		"must":     emptyIfNil(b.must),
		"must_not": emptyIfNil(b.mustNot),
		"should":   emptyIfNil(b.should),
	}
	if len(b.should) > 0 {
		boolQ["minimum_should_match"] = 1
	}
	body["query"] = map[string]any{"bool": boolQ}
	return body
}

func term(field string, value any) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

func terms(field string, values []int64) map[string]any {
	return map[string]any{"terms": map[string]any{field: append([]int64(nil), values...)}}
}

func termsStr(field string, values []string) map[string]any {
	return map[string]any{"terms": map[string]any{field: append([]string(nil), values...)}}
}

func exists(field string) map[string]any {
	return map[string]any{"exists": map[string]any{"field": field}}
}

func rangeGT(field string, bound int) map[string]any {
	return map[string]any{"range": map[string]any{field: map[string]any{"gt": bound}}}
}

func emptyIfNil(clauses []any) []any {
	if clauses == nil {
		return []any{}
	}
	return clauses
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if inner, ok := v.(map[string]any); ok {
			out[k] = cloneMap(inner)
			continue
		}
		out[k] = v
	}
	return out
}
