// Package search holds the value objects a stacker search is made of:
// the filter set, tag filters, sort and paging. The query compiler turns
// them into Elasticsearch bodies without ever mutating them.
package search

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for date filters.
const DateFormat = "2006-01-02"

// DateRange is an inclusive date window. Either bound may be empty.
type DateRange struct {
	GTE string
	LTE string
}

// IsZero reports whether no bound is set.
func (r DateRange) IsZero() bool { return r.GTE == "" && r.LTE == "" }

// Validate checks that the set bounds parse as dates.
func (r DateRange) Validate() error {
	for _, v := range []string{r.GTE, r.LTE} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateFormat, v); err != nil {
			return fmt.Errorf("invalid date %q", v)
		}
	}
	return nil
}

// Lookup returns the range body for the set bounds.
func (r DateRange) Lookup() map[string]any {
	lookup := make(map[string]any, 2)
	if r.GTE != "" {
		lookup["gte"] = r.GTE
	}
	if r.LTE != "" {
		lookup["lte"] = r.LTE
	}
	return lookup
}

// OwnerStatuses are the accepted owner_status values.
var OwnerStatuses = []string{"open", "verified", "unverified"}

// Filters is the typed filter set of a stacker search. Pointer fields are
// tri-state: nil means the filter is absent. The compiler gives a number of
// fields special treatment (tag filters, date windows, campaign membership);
// the rest compile to plain term/terms clauses.
type Filters struct {
	ProspectID         []int64
	PropertyID         []int64
	AddressID          []int64
	State              []string
	ZipCode            string
	LastSoldDate       DateRange
	SkiptraceDate      DateRange
	InboundDate        DateRange
	OutboundDate       DateRange
	FirstImportDate    DateRange
	LastImportDate     DateRange
	DistressIndicators []int64
	LeadStageID        []int64
	IsBlocked          *bool
	DoNotCall          *bool
	IsPriority         *bool
	IsQualifiedLead    *bool
	WrongNumber        *bool
	OptedOut           *bool
	IsArchived         *bool
	IsReminder         *bool
	RecentlyVacant     *bool
	SkipTraced         *bool
	InCampaign         *bool
	InDMCampaign       *bool
	PropertyTags       *PropertyTags
	ProspectStatus     *ProspectStatus
	OwnerStatus        []string
}

// Validate checks field-level constraints.
func (f *Filters) Validate() error {
	for _, s := range f.State {
		if len(s) > 2 {
			return fmt.Errorf("state %q exceeds 2 characters", s)
		}
	}
	if len(f.ZipCode) > 5 {
		return fmt.Errorf("zip_code %q exceeds 5 characters", f.ZipCode)
	}
	for _, d := range f.DistressIndicators {
		if d < 1 || d > 25 {
			return fmt.Errorf("distress indicator %d out of range 1..25", d)
		}
	}
	for _, s := range f.OwnerStatus {
		if !validOwnerStatus(s) {
			return fmt.Errorf("unknown owner status %q", s)
		}
	}
	ranges := map[string]DateRange{
		"last_sold_date":    f.LastSoldDate,
		"skiptrace_date":    f.SkiptraceDate,
		"inbound_date":      f.InboundDate,
		"outbound_date":     f.OutboundDate,
		"first_import_date": f.FirstImportDate,
		"last_import_date":  f.LastImportDate,
	}
	for name, r := range ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// IsZero reports whether no filter at all is set.
func (f *Filters) IsZero() bool {
	if f == nil {
		return true
	}
	return len(f.ProspectID) == 0 && len(f.PropertyID) == 0 && len(f.AddressID) == 0 &&
		len(f.State) == 0 && f.ZipCode == "" &&
		f.LastSoldDate.IsZero() && f.SkiptraceDate.IsZero() &&
		f.InboundDate.IsZero() && f.OutboundDate.IsZero() &&
		f.FirstImportDate.IsZero() && f.LastImportDate.IsZero() &&
		len(f.DistressIndicators) == 0 && len(f.LeadStageID) == 0 &&
		f.IsBlocked == nil && f.DoNotCall == nil && f.IsPriority == nil &&
		f.IsQualifiedLead == nil && f.WrongNumber == nil && f.OptedOut == nil &&
		f.IsArchived == nil && f.IsReminder == nil && f.RecentlyVacant == nil &&
		f.SkipTraced == nil && f.InCampaign == nil && f.InDMCampaign == nil &&
		f.PropertyTags == nil && f.ProspectStatus == nil && len(f.OwnerStatus) == 0
}

// Clone returns a deep copy, so callers can adjust a request's filters
// without touching the original.
func (f *Filters) Clone() *Filters {
	if f == nil {
		return nil
	}
	c := *f
	c.ProspectID = append([]int64(nil), f.ProspectID...)
	c.PropertyID = append([]int64(nil), f.PropertyID...)
	c.AddressID = append([]int64(nil), f.AddressID...)
	c.State = append([]string(nil), f.State...)
	c.DistressIndicators = append([]int64(nil), f.DistressIndicators...)
	c.LeadStageID = append([]int64(nil), f.LeadStageID...)
	c.OwnerStatus = append([]string(nil), f.OwnerStatus...)
	c.IsBlocked = cloneBool(f.IsBlocked)
	c.DoNotCall = cloneBool(f.DoNotCall)
	c.IsPriority = cloneBool(f.IsPriority)
	c.IsQualifiedLead = cloneBool(f.IsQualifiedLead)
	c.WrongNumber = cloneBool(f.WrongNumber)
	c.OptedOut = cloneBool(f.OptedOut)
	c.IsArchived = cloneBool(f.IsArchived)
	c.IsReminder = cloneBool(f.IsReminder)
	c.RecentlyVacant = cloneBool(f.RecentlyVacant)
	c.SkipTraced = cloneBool(f.SkipTraced)
	c.InCampaign = cloneBool(f.InCampaign)
	c.InDMCampaign = cloneBool(f.InDMCampaign)
	if f.PropertyTags != nil {
		pt := f.PropertyTags.clone()
		c.PropertyTags = &pt
	}
	if f.ProspectStatus != nil {
		ps := f.ProspectStatus.clone()
		c.ProspectStatus = &ps
	}
	return &c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func validOwnerStatus(s string) bool {
	for _, v := range OwnerStatuses {
		if s == v {
			return true
		}
	}
	return false
}
