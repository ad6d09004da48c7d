package stacker

import (
	"context"
	"net/http"
	"time"
)

// ActionSearch is the saved-search object a bulk action resolves
// against. Sort and paging are ignored; resolution scans every match.
type ActionSearch struct {
	Query   map[string]string `json:"query,omitempty"`
	Filters *Filters          `json:"filters,omitempty"`
}

// ActionRequest selects the documents a bulk action targets. Exactly one
// of Search or IDList is usually set; Exclude drops ids from either
// path. Group resumes a chunked run: [start_id, size].
type ActionRequest struct {
	CompanyID int64         `json:"company_id"`
	Type      string        `json:"type"`
	Search    *ActionSearch `json:"search,omitempty"`
	IDList    []int64       `json:"id_list,omitempty"`
	Exclude   []int64       `json:"exclude,omitempty"`
	Group     []int64       `json:"group,omitempty"`
}

// ProspectToggles are the boolean prospect flags a tag action can flip.
// Nil fields stay untouched.
type ProspectToggles struct {
	IsBlocked       *bool `json:"is_blocked,omitempty"`
	DoNotCall       *bool `json:"do_not_call,omitempty"`
	IsPriority      *bool `json:"is_priority,omitempty"`
	IsQualifiedLead *bool `json:"is_qualified_lead,omitempty"`
	WrongNumber     *bool `json:"wrong_number,omitempty"`
	OptedOut        *bool `json:"opted_out,omitempty"`
}

// PushEstimate splits the matched prospects into campaign newcomers and
// existing members.
type PushEstimate struct {
	New      int64 `json:"new"`
	Existing int64 `json:"existing"`
}

// SkipTraceUpload identifies a scheduled skip-trace batch.
type SkipTraceUpload struct {
	ID        string `json:"id"`
	TotalRows int    `json:"total_rows"`
}

type taskRef struct {
	ID string `json:"id"`
}

// Archive flips the archive flag on every matched document.
func (c *Client) Archive(ctx context.Context, req ActionRequest, archive bool) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("archive", start, err) }()

	body := struct {
		ActionRequest
		Archive bool `json:"archive"`
	}{req, archive}
	return c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/archive", body, nil)
}

// TagProperties schedules a tag-state refresh for the matched
// properties. Assign the tags upstream first; the refresh reads them
// back.
func (c *Client) TagProperties(ctx context.Context, req ActionRequest) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("tag_properties", start, err) }()

	req.Type = TypeProperty
	return c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/property-tag", req, nil)
}

// TagProspects flips prospect flags and, when tags changed, refreshes
// the matched prospects' tag state.
func (c *Client) TagProspects(ctx context.Context, req ActionRequest, toggles ProspectToggles, tags []int64) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("tag_prospects", start, err) }()

	body := struct {
		ActionRequest
		ProspectToggles
		Tags []int64 `json:"tags,omitempty"`
	}{req, toggles, tags}
	body.Type = TypeProspect
	return c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/prospect-tag", body, nil)
}

// Export schedules a CSV export of the matched documents and returns
// the export id. An empty id means nothing matched.
func (c *Client) Export(ctx context.Context, req ActionRequest) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("export", start, err) }()

	var ref taskRef
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/export", req, &ref); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// EstimatePush previews a campaign push: of the matched skip-traced
// prospects, how many are new to campaigns versus already in one.
func (c *Client) EstimatePush(ctx context.Context, req ActionRequest) (est *PushEstimate, err error) {
	start := time.Now()
	defer func() { c.obs.observe("estimate_push", start, err) }()

	// A push body without import_type asks for the estimate.
	est = &PushEstimate{}
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/push", req, est); err != nil {
		return nil, err
	}
	return est, nil
}

// Push schedules a campaign push of the matched skip-traced prospects.
// Import type "new" restricts to prospects outside any campaign, "all"
// pushes every match.
func (c *Client) Push(ctx context.Context, req ActionRequest, campaignID int64, importType string) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("push", start, err) }()

	body := struct {
		ActionRequest
		CampaignID int64  `json:"campaign_id"`
		ImportType string `json:"import_type"`
	}{req, campaignID, importType}

	var ref taskRef
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/push", body, &ref); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// DirectMail schedules a direct mail push, keeping one prospect per
// property.
func (c *Client) DirectMail(ctx context.Context, req ActionRequest) (id string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("direct_mail", start, err) }()

	var ref taskRef
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/direct-mail", req, &ref); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// SkipTrace schedules a skip-trace upload build for the matched
// properties.
func (c *Client) SkipTrace(ctx context.Context, req ActionRequest) (up *SkipTraceUpload, err error) {
	start := time.Now()
	defer func() { c.obs.observe("skip_trace", start, err) }()

	up = &SkipTraceUpload{}
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/actions/skip-trace", req, up); err != nil {
		return nil, err
	}
	return up, nil
}
