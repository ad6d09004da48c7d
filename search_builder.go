package stacker

import "context"

// SearchBuilder is a fluent builder for stacker searches.
type SearchBuilder struct {
	req SearchRequest
}

// NewSearch starts a search for the company, sorted by last contact
// descending until SortBy overrides it.
func NewSearch(companyID int64) *SearchBuilder {
	return &SearchBuilder{req: SearchRequest{
		CompanyID: companyID,
		Sort:      &Sort{Field: "last_contact", Order: Desc},
	}}
}

func (b *SearchBuilder) filters() *Filters {
	if b.req.Filters == nil {
		b.req.Filters = &Filters{}
	}
	return b.req.Filters
}

// Match adds a field query (partial match on a text field).
func (b *SearchBuilder) Match(field, value string) *SearchBuilder {
	if b.req.Query == nil {
		b.req.Query = map[string]string{}
	}
	b.req.Query[field] = value
	return b
}

// State filters by state abbreviations.
func (b *SearchBuilder) State(states ...string) *SearchBuilder {
	b.filters().State = append(b.filters().State, states...)
	return b
}

// ZipCode filters by zip code prefix.
func (b *SearchBuilder) ZipCode(zip string) *SearchBuilder {
	b.filters().ZipCode = zip
	return b
}

// Properties restricts matches to the given property ids.
func (b *SearchBuilder) Properties(ids ...int64) *SearchBuilder {
	b.filters().PropertyID = append(b.filters().PropertyID, ids...)
	return b
}

// Prospects restricts matches to the given prospect ids.
func (b *SearchBuilder) Prospects(ids ...int64) *SearchBuilder {
	b.filters().ProspectID = append(b.filters().ProspectID, ids...)
	return b
}

// LeadStages filters by lead stage ids.
func (b *SearchBuilder) LeadStages(ids ...int64) *SearchBuilder {
	b.filters().LeadStageID = append(b.filters().LeadStageID, ids...)
	return b
}

// DistressIndicators filters by distress indicator counts (1..25).
func (b *SearchBuilder) DistressIndicators(counts ...int64) *SearchBuilder {
	b.filters().DistressIndicators = append(b.filters().DistressIndicators, counts...)
	return b
}

// SkipTraced filters by skip-trace state.
func (b *SearchBuilder) SkipTraced(v bool) *SearchBuilder {
	b.filters().SkipTraced = Bool(v)
	return b
}

// InCampaign filters by campaign membership.
func (b *SearchBuilder) InCampaign(v bool) *SearchBuilder {
	b.filters().InCampaign = Bool(v)
	return b
}

// Archived includes archived documents (they are hidden by default).
func (b *SearchBuilder) Archived(v bool) *SearchBuilder {
	b.filters().IsArchived = Bool(v)
	return b
}

// OwnerStatus filters by owner verification status
// (open, verified, unverified).
func (b *SearchBuilder) OwnerStatus(statuses ...string) *SearchBuilder {
	b.filters().OwnerVerifiedStatus = append(b.filters().OwnerVerifiedStatus, statuses...)
	return b
}

// Tags filters by property tag assignments. Option is TagsAll or
// TagsAny.
func (b *SearchBuilder) Tags(option string, tagIDs ...int64) *SearchBuilder {
	f := b.filters()
	if f.PropertyTags == nil {
		f.PropertyTags = &TagFilter{}
	}
	f.PropertyTags.Option = option
	f.PropertyTags.Include = append(f.PropertyTags.Include, tagIDs...)
	return b
}

// ExcludeTags drops properties carrying any of the given tags.
func (b *SearchBuilder) ExcludeTags(tagIDs ...int64) *SearchBuilder {
	f := b.filters()
	if f.PropertyTags == nil {
		f.PropertyTags = &TagFilter{}
	}
	f.PropertyTags.Exclude = append(f.PropertyTags.Exclude, tagIDs...)
	return b
}

// Status filters by prospect status activity. Option is TagsAll or
// TagsAny; statuses are the Status* constants.
func (b *SearchBuilder) Status(option string, statuses ...string) *SearchBuilder {
	f := b.filters()
	if f.ProspectStatus == nil {
		f.ProspectStatus = &StatusFilter{}
	}
	f.ProspectStatus.Option = option
	f.ProspectStatus.Include = append(f.ProspectStatus.Include, statuses...)
	return b
}

// SortBy sets the sort field and order.
func (b *SearchBuilder) SortBy(field, order string) *SearchBuilder {
	b.req.Sort = &Sort{Field: field, Order: order}
	return b
}

// Size sets the per-kind page size (10..100).
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.req.Size = n
	return b
}

// After resumes from a previous response's cursors.
func (b *SearchBuilder) After(res *SearchResponse) *SearchBuilder {
	if res == nil {
		return b
	}
	b.req.SearchAfter = &SearchAfter{
		Properties: res.Properties.SearchAfter,
		Prospects:  res.Prospects.SearchAfter,
	}
	return b
}

// Build returns the assembled request.
func (b *SearchBuilder) Build() SearchRequest {
	return b.req
}

// Do builds the request and runs it.
func (b *SearchBuilder) Do(ctx context.Context, c *Client) (*SearchResponse, error) {
	return c.SearchStacker(ctx, b.Build())
}
