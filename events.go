package stacker

import (
	"context"
	"net/http"
	"time"
)

// RowChange notifies the stacker that upstream rows changed. Changes
// hold the new values keyed by document field name; the referenced
// documents in both indexes pick them up.
func (c *Client) RowChange(ctx context.Context, entity string, ids []int64, changes map[string]any) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("row_change", start, err) }()

	body := struct {
		Entity  string         `json:"entity"`
		IDs     []int64        `json:"ids"`
		Changes map[string]any `json:"changes"`
	}{entity, ids, changes}
	return c.do(ctx, http.MethodPost, "/api/v1/events/row-change", body, nil)
}

// TagChange notifies the stacker of one property's full tag state after
// an assignment change.
func (c *Client) TagChange(ctx context.Context, propertyID int64, tagIDs []int64, distressIndicators int) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("tag_change", start, err) }()

	body := struct {
		PropertyID         int64   `json:"property_id"`
		TagIDs             []int64 `json:"tag_ids"`
		DistressIndicators int     `json:"distress_indicators"`
	}{propertyID, tagIDs, distressIndicators}
	return c.do(ctx, http.MethodPost, "/api/v1/events/tags", body, nil)
}

// Populate schedules a full index load for the given companies.
func (c *Client) Populate(ctx context.Context, companyIDs []int64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("populate", start, err) }()

	body := struct {
		CompanyIDs []int64 `json:"company_ids"`
	}{companyIDs}
	return c.do(ctx, http.MethodPost, "/api/v1/admin/populate", body, nil)
}

// Refresh schedules a re-projection of the given documents from their
// relational rows.
func (c *Client) Refresh(ctx context.Context, propertyIDs, prospectIDs []int64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("refresh", start, err) }()

	body := struct {
		PropertyIDs []int64 `json:"property_ids,omitempty"`
		ProspectIDs []int64 `json:"prospect_ids,omitempty"`
	}{propertyIDs, prospectIDs}
	return c.do(ctx, http.MethodPost, "/api/v1/admin/refresh", body, nil)
}

// CreateIndexes creates both kind indexes with the shared mapping.
// Indexes that already exist are left untouched.
func (c *Client) CreateIndexes(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("create_indexes", start, err) }()

	return c.do(ctx, http.MethodPut, "/api/v1/admin/indexes", nil, nil)
}

// DeleteIndexes deletes both kind indexes, ignoring ones already gone.
func (c *Client) DeleteIndexes(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_indexes", start, err) }()

	return c.do(ctx, http.MethodDelete, "/api/v1/admin/indexes", nil, nil)
}
