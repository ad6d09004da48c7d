package chi

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	actionuc "github.com/parcelworks/stacker/internal/usecase/action"
)

// searchRequest is the POST /stacker/search body.
type searchRequest struct {
	CompanyID   int64             `json:"company_id"`
	Size        int               `json:"size"`
	Query       map[string]string `json:"query"`
	Filters     *filtersDTO       `json:"filters"`
	Sort        *sortDTO          `json:"sort"`
	SearchAfter *searchAfterDTO   `json:"search_after"`
}

type sortDTO struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

type searchAfterDTO struct {
	Properties []any `json:"properties"`
	Prospects  []any `json:"prospects"`
}

type dateRangeDTO struct {
	GTE string `json:"gte"`
	LTE string `json:"lte"`
}

type propertyTagsDTO struct {
	Option   string  `json:"option"`
	Include  []int64 `json:"include"`
	Exclude  []int64 `json:"exclude"`
	Criteria string  `json:"criteria"`
	DateFrom string  `json:"date_from"`
	DateTo   string  `json:"date_to"`
}

type prospectStatusDTO struct {
	Option   string   `json:"option"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude"`
	Criteria string   `json:"criteria"`
	DateFrom string   `json:"date_from"`
	DateTo   string   `json:"date_to"`
}

// filtersDTO mirrors the filter payload. The prospect index stores the
// owner status as owner_status; the API keeps the upstream field name
// owner_verified_status and renames in both directions.
type filtersDTO struct {
	ProspectID          []int64            `json:"prospect_id"`
	PropertyID          []int64            `json:"property_id"`
	AddressID           []int64            `json:"address_id"`
	State               []string           `json:"state"`
	ZipCode             string             `json:"zip_code"`
	LastSoldDate        *dateRangeDTO      `json:"last_sold_date"`
	SkiptraceDate       *dateRangeDTO      `json:"skiptrace_date"`
	InboundDate         *dateRangeDTO      `json:"inbound_date"`
	OutboundDate        *dateRangeDTO      `json:"outbound_date"`
	FirstImportDate     *dateRangeDTO      `json:"first_import_date"`
	LastImportDate      *dateRangeDTO      `json:"last_import_date"`
	DistressIndicators  []int64            `json:"distress_indicators"`
	LeadStageID         []int64            `json:"lead_stage_id"`
	IsBlocked           *bool              `json:"is_blocked"`
	DoNotCall           *bool              `json:"do_not_call"`
	IsPriority          *bool              `json:"is_priority"`
	IsQualifiedLead     *bool              `json:"is_qualified_lead"`
	WrongNumber         *bool              `json:"wrong_number"`
	OptedOut            *bool              `json:"opted_out"`
	OwnerVerifiedStatus []string           `json:"owner_verified_status"`
	IsArchived          *bool              `json:"is_archived"`
	IsReminder          *bool              `json:"is_reminder"`
	RecentlyVacant      *bool              `json:"recently_vacant"`
	SkipTraced          *bool              `json:"skip_traced"`
	InCampaign          *bool              `json:"in_campaign"`
	InDMCampaign        *bool              `json:"in_dm_campaign"`
	PropertyTags        *propertyTagsDTO   `json:"property_tags"`
	ProspectStatus      *prospectStatusDTO `json:"prospect_status"`
}

// actionSearch is the saved-search object a bulk action resolves against.
// Sort and paging are ignored; resolution scans every match.
type actionSearch struct {
	Query   map[string]string `json:"query"`
	Filters *filtersDTO       `json:"filters"`
}

// actionRequest is the shared base of the bulk action bodies.
type actionRequest struct {
	CompanyID int64         `json:"company_id"`
	Type      string        `json:"type"`
	Search    *actionSearch `json:"search"`
	IDList    []int64       `json:"id_list"`
	Exclude   []int64       `json:"exclude"`
	Group     []int64       `json:"group"`
}

type archiveRequest struct {
	actionRequest
	Archive *bool `json:"archive"`
}

type prospectTagRequest struct {
	actionRequest
	IsBlocked       *bool   `json:"is_blocked"`
	DoNotCall       *bool   `json:"do_not_call"`
	IsPriority      *bool   `json:"is_priority"`
	IsQualifiedLead *bool   `json:"is_qualified_lead"`
	WrongNumber     *bool   `json:"wrong_number"`
	OptedOut        *bool   `json:"opted_out"`
	Tags            []int64 `json:"tags"`
}

// pushRequest drives both the estimate and the push: a body without
// import_type asks for the estimate.
type pushRequest struct {
	actionRequest
	CampaignID int64   `json:"campaign_id"`
	ImportType *string `json:"import_type"`
}

type rowChangeRequest struct {
	Entity  string         `json:"entity"`
	IDs     []int64        `json:"ids"`
	Changes map[string]any `json:"changes"`
}

type tagChangeRequest struct {
	PropertyID         int64   `json:"property_id"`
	TagIDs             []int64 `json:"tag_ids"`
	DistressIndicators int     `json:"distress_indicators"`
}

type populateRequest struct {
	CompanyIDs []int64 `json:"company_ids"`
}

type refreshRequest struct {
	PropertyIDs []int64 `json:"property_ids"`
	ProspectIDs []int64 `json:"prospect_ids"`
}

type searchResultDTO struct {
	Results     []map[string]any `json:"results"`
	Total       int64            `json:"total"`
	SearchAfter []any            `json:"search_after"`
}

type countsDTO struct {
	Prospects  int64 `json:"prospects"`
	Properties int64 `json:"properties"`
}

type searchResponse struct {
	Prospects  searchResultDTO `json:"prospects"`
	Properties searchResultDTO `json:"properties"`
	Counts     countsDTO       `json:"counts"`
}

type taskResponse struct {
	ID string `json:"id"`
}

type pushEstimateResponse struct {
	New      int64 `json:"new"`
	Existing int64 `json:"existing"`
}

type skipTraceResponse struct {
	ID        string `json:"id"`
	TotalRows int    `json:"total_rows"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func searchRequestFromDTO(req searchRequest) (domsearch.Request, error) {
	if req.Sort == nil {
		return domsearch.Request{}, fmt.Errorf("sort is required")
	}
	srt, err := domsearch.NewSort(req.Sort.Field, req.Sort.Order)
	if err != nil {
		return domsearch.Request{}, err
	}

	filters, err := filtersFromDTO(req.Filters)
	if err != nil {
		return domsearch.Request{}, err
	}

	var after domsearch.Cursors
	if req.SearchAfter != nil {
		after.Properties = req.SearchAfter.Properties
		after.Prospects = req.SearchAfter.Prospects
	}

	return domsearch.NewRequest(req.CompanyID, req.Query, filters, srt, req.Size, after)
}

func filtersFromDTO(f *filtersDTO) (*domsearch.Filters, error) {
	if f == nil {
		return nil, nil
	}

	out := &domsearch.Filters{
		ProspectID:         f.ProspectID,
		PropertyID:         f.PropertyID,
		AddressID:          f.AddressID,
		State:              f.State,
		ZipCode:            f.ZipCode,
		LastSoldDate:       dateRangeFromDTO(f.LastSoldDate),
		SkiptraceDate:      dateRangeFromDTO(f.SkiptraceDate),
		InboundDate:        dateRangeFromDTO(f.InboundDate),
		OutboundDate:       dateRangeFromDTO(f.OutboundDate),
		FirstImportDate:    dateRangeFromDTO(f.FirstImportDate),
		LastImportDate:     dateRangeFromDTO(f.LastImportDate),
		DistressIndicators: f.DistressIndicators,
		LeadStageID:        f.LeadStageID,
		IsBlocked:          f.IsBlocked,
		DoNotCall:          f.DoNotCall,
		IsPriority:         f.IsPriority,
		IsQualifiedLead:    f.IsQualifiedLead,
		WrongNumber:        f.WrongNumber,
		OptedOut:           f.OptedOut,
		OwnerStatus:        f.OwnerVerifiedStatus,
		IsReminder:         f.IsReminder,
		RecentlyVacant:     f.RecentlyVacant,
		SkipTraced:         f.SkipTraced,
		InCampaign:         f.InCampaign,
		InDMCampaign:       f.InDMCampaign,
	}

	// Archived documents stay hidden unless the filter asks for them.
	archived := false
	if f.IsArchived != nil {
		archived = *f.IsArchived
	}
	out.IsArchived = &archived

	if f.PropertyTags != nil {
		criteria, err := criteriaFromDTO(f.PropertyTags.Criteria, f.PropertyTags.DateFrom, f.PropertyTags.DateTo)
		if err != nil {
			return nil, fmt.Errorf("property_tags: %w", err)
		}
		tags, err := domsearch.NewPropertyTags(
			f.PropertyTags.Option, f.PropertyTags.Include, f.PropertyTags.Exclude, criteria,
		)
		if err != nil {
			return nil, fmt.Errorf("property_tags: %w", err)
		}
		out.PropertyTags = &tags
	}

	if f.ProspectStatus != nil {
		criteria, err := criteriaFromDTO(f.ProspectStatus.Criteria, f.ProspectStatus.DateFrom, f.ProspectStatus.DateTo)
		if err != nil {
			return nil, fmt.Errorf("prospect_status: %w", err)
		}
		status, err := domsearch.NewProspectStatus(
			f.ProspectStatus.Option, f.ProspectStatus.Include, f.ProspectStatus.Exclude, criteria,
		)
		if err != nil {
			return nil, fmt.Errorf("prospect_status: %w", err)
		}
		out.ProspectStatus = &status
	}

	return out, nil
}

func dateRangeFromDTO(d *dateRangeDTO) domsearch.DateRange {
	if d == nil {
		return domsearch.DateRange{}
	}
	return domsearch.DateRange{GTE: d.GTE, LTE: d.LTE}
}

func criteriaFromDTO(criteria, dateFrom, dateTo string) (*domsearch.TagCriteria, error) {
	if criteria == "" {
		return nil, nil
	}
	c, err := domsearch.NewTagCriteria(criteria, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func actionRequestFromDTO(req actionRequest) (actionuc.Request, error) {
	// An invalid type is caught during resolution.
	out := actionuc.Request{
		CompanyID: req.CompanyID,
		Kind:      kind.Kind(req.Type),
		IDList:    req.IDList,
		Exclude:   req.Exclude,
	}

	if req.Search != nil {
		filters, err := filtersFromDTO(req.Search.Filters)
		if err != nil {
			return actionuc.Request{}, err
		}
		if filters != nil {
			if err := filters.Validate(); err != nil {
				return actionuc.Request{}, err
			}
		}
		out.Query = req.Search.Query
		out.Filters = filters
	}

	if len(req.Group) > 0 {
		if len(req.Group) != 2 {
			return actionuc.Request{}, fmt.Errorf("group must be [start_id, size]")
		}
		out.Group = &actionuc.Group{StartID: req.Group[0], Size: int(req.Group[1])}
	}

	return out, nil
}

func searchResponseFromResult(res *domsearch.Result) searchResponse {
	return searchResponse{
		Prospects:  resultDTO(res.Prospects, true),
		Properties: resultDTO(res.Properties, false),
		Counts: countsDTO{
			Prospects:  res.Counts.Prospects,
			Properties: res.Counts.Properties,
		},
	}
}

func resultDTO(page *domsearch.Page, renameOwnerStatus bool) searchResultDTO {
	out := searchResultDTO{
		Results:     page.Results,
		Total:       page.Total,
		SearchAfter: page.Cursor,
	}
	if out.Results == nil {
		out.Results = []map[string]any{}
	}
	if out.SearchAfter == nil {
		out.SearchAfter = []any{}
	}
	if renameOwnerStatus {
		for _, doc := range out.Results {
			if v, ok := doc["owner_status"]; ok {
				delete(doc, "owner_status")
				doc["owner_verified_status"] = v
			}
		}
	}
	return out
}
