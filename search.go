package stacker

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sort orders.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Document kinds.
const (
	TypeProperty = "property"
	TypeProspect = "prospect"
)

// Tag filter options: "all" requires every include entry, "any" one of
// them.
const (
	TagsAll = "all"
	TagsAny = "any"
)

// Tag date criteria.
const (
	CriteriaBefore  = "before"
	CriteriaBetween = "between"
	CriteriaAfter   = "after"
)

// Prospect status values for the prospect_status filter.
const (
	StatusBlocked       = "isBlocked"
	StatusDoNotCall     = "doNotCall"
	StatusPriority      = "isPriority"
	StatusQualifiedLead = "isQualifiedLead"
	StatusWrongNumber   = "wrongNumber"
)

// DateRange is an inclusive date window in YYYY-MM-DD. Either bound may
// be empty.
type DateRange struct {
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`
}

// TagFilter narrows matches by property tag assignments.
type TagFilter struct {
	Option   string  `json:"option,omitempty"`
	Include  []int64 `json:"include,omitempty"`
	Exclude  []int64 `json:"exclude,omitempty"`
	Criteria string  `json:"criteria,omitempty"`
	DateFrom string  `json:"date_from,omitempty"`
	DateTo   string  `json:"date_to,omitempty"`
}

// StatusFilter narrows matches by prospect status activity.
type StatusFilter struct {
	Option   string   `json:"option,omitempty"`
	Include  []string `json:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	Criteria string   `json:"criteria,omitempty"`
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
}

// Filters is the stacker filter set. Pointer booleans are tri-state:
// nil leaves the filter out entirely (use Bool for literals).
type Filters struct {
	ProspectID          []int64       `json:"prospect_id,omitempty"`
	PropertyID          []int64       `json:"property_id,omitempty"`
	AddressID           []int64       `json:"address_id,omitempty"`
	State               []string      `json:"state,omitempty"`
	ZipCode             string        `json:"zip_code,omitempty"`
	LastSoldDate        *DateRange    `json:"last_sold_date,omitempty"`
	SkiptraceDate       *DateRange    `json:"skiptrace_date,omitempty"`
	InboundDate         *DateRange    `json:"inbound_date,omitempty"`
	OutboundDate        *DateRange    `json:"outbound_date,omitempty"`
	FirstImportDate     *DateRange    `json:"first_import_date,omitempty"`
	LastImportDate      *DateRange    `json:"last_import_date,omitempty"`
	DistressIndicators  []int64       `json:"distress_indicators,omitempty"`
	LeadStageID         []int64       `json:"lead_stage_id,omitempty"`
	IsBlocked           *bool         `json:"is_blocked,omitempty"`
	DoNotCall           *bool         `json:"do_not_call,omitempty"`
	IsPriority          *bool         `json:"is_priority,omitempty"`
	IsQualifiedLead     *bool         `json:"is_qualified_lead,omitempty"`
	WrongNumber         *bool         `json:"wrong_number,omitempty"`
	OptedOut            *bool         `json:"opted_out,omitempty"`
	OwnerVerifiedStatus []string      `json:"owner_verified_status,omitempty"`
	IsArchived          *bool         `json:"is_archived,omitempty"`
	IsReminder          *bool         `json:"is_reminder,omitempty"`
	RecentlyVacant      *bool         `json:"recently_vacant,omitempty"`
	SkipTraced          *bool         `json:"skip_traced,omitempty"`
	InCampaign          *bool         `json:"in_campaign,omitempty"`
	InDMCampaign        *bool         `json:"in_dm_campaign,omitempty"`
	PropertyTags        *TagFilter    `json:"property_tags,omitempty"`
	ProspectStatus      *StatusFilter `json:"prospect_status,omitempty"`
}

// Sort orders search results.
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// SearchAfter carries both per-kind resume cursors. Pass the previous
// response's cursors untouched to get the next page.
type SearchAfter struct {
	Properties []any `json:"properties,omitempty"`
	Prospects  []any `json:"prospects,omitempty"`
}

// SearchRequest is one dual-index search.
type SearchRequest struct {
	CompanyID   int64             `json:"company_id"`
	Size        int               `json:"size,omitempty"`
	Query       map[string]string `json:"query,omitempty"`
	Filters     *Filters          `json:"filters,omitempty"`
	Sort        *Sort             `json:"sort"`
	SearchAfter *SearchAfter      `json:"search_after,omitempty"`
}

// Page is one kind's result page.
type Page struct {
	Results     []map[string]any `json:"results"`
	Total       int64            `json:"total"`
	SearchAfter []any            `json:"search_after"`
}

// Counts are the company's per-kind document totals.
type Counts struct {
	Prospects  int64 `json:"prospects"`
	Properties int64 `json:"properties"`
}

// SearchResponse is the dual-index search result.
type SearchResponse struct {
	Prospects  Page   `json:"prospects"`
	Properties Page   `json:"properties"`
	Counts     Counts `json:"counts"`
}

// SearchStacker runs one request against both indexes.
func (c *Client) SearchStacker(ctx context.Context, req SearchRequest) (res *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	res = &SearchResponse{}
	if err = c.do(ctx, http.MethodPost, "/api/v1/stacker/search", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Counts returns the company's per-kind document totals.
func (c *Client) Counts(ctx context.Context, companyID int64) (counts *Counts, err error) {
	start := time.Now()
	defer func() { c.obs.observe("counts", start, err) }()

	path := fmt.Sprintf("/api/v1/stacker/counts?company_id=%s", strconv.FormatInt(companyID, 10))
	counts = &Counts{}
	if err = c.do(ctx, http.MethodGet, path, nil, counts); err != nil {
		return nil, err
	}
	return counts, nil
}
