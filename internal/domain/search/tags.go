package search

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain/schema"
)

// TagOption decides how include entries combine: "all" requires every
// entry, anything else matches any of them.
type TagOption string

// Tag option constants.
const (
	TagOptionAny TagOption = "any"
	TagOptionAll TagOption = "all"
)

// ParseTagOption validates a raw option. Empty defaults to any.
func ParseTagOption(s string) (TagOption, error) {
	switch TagOption(s) {
	case "":
		return TagOptionAny, nil
	case TagOptionAny, TagOptionAll:
		return TagOption(s), nil
	default:
		return "", fmt.Errorf("unknown tag option %q", s)
	}
}

// CriteriaKind is a tag date criteria variant.
type CriteriaKind string

// Criteria kinds.
const (
	CriteriaBefore  CriteriaKind = "before"
	CriteriaBetween CriteriaKind = "between"
	CriteriaAfter   CriteriaKind = "after"
)

// ParseCriteria normalizes the accepted criteria spellings, both the tag
// and declared variants.
func ParseCriteria(s string) (CriteriaKind, error) {
	switch s {
	case "tagBefore", "tag_prior_to", "declared_prior_to":
		return CriteriaBefore, nil
	case "tagBetween", "tag_between", "declared_between":
		return CriteriaBetween, nil
	case "tagAfter", "tag_after", "declared_after":
		return CriteriaAfter, nil
	default:
		return "", fmt.Errorf("unknown criteria %q", s)
	}
}

// TagCriteria narrows a tag filter to assignments within a date window.
type TagCriteria struct {
	kind     CriteriaKind
	dateFrom string
	dateTo   string
}

// NewTagCriteria validates the criteria and its required bounds.
func NewTagCriteria(criteria, dateFrom, dateTo string) (TagCriteria, error) {
	kind, err := ParseCriteria(criteria)
	if err != nil {
		return TagCriteria{}, err
	}
	for _, d := range []string{dateFrom, dateTo} {
		if d == "" {
			continue
		}
		if err := (DateRange{GTE: d}).Validate(); err != nil {
			return TagCriteria{}, err
		}
	}
	switch kind {
	case CriteriaBefore:
		if dateTo == "" {
			return TagCriteria{}, fmt.Errorf("criteria %q requires date_to", criteria)
		}
	case CriteriaAfter:
		if dateFrom == "" {
			return TagCriteria{}, fmt.Errorf("criteria %q requires date_from", criteria)
		}
	case CriteriaBetween:
		if dateFrom == "" || dateTo == "" {
			return TagCriteria{}, fmt.Errorf("criteria %q requires date_from and date_to", criteria)
		}
	}
	return TagCriteria{kind: kind, dateFrom: dateFrom, dateTo: dateTo}, nil
}

// Kind returns the criteria variant.
func (c TagCriteria) Kind() CriteriaKind { return c.kind }

// DateFrom returns the lower bound.
func (c TagCriteria) DateFrom() string { return c.dateFrom }

// DateTo returns the upper bound.
func (c TagCriteria) DateTo() string { return c.dateTo }

// PropertyTags filters on property tag assignments by tag id.
type PropertyTags struct {
	option   TagOption
	include  []int64
	exclude  []int64
	criteria *TagCriteria
}

// NewPropertyTags validates and creates a property tag filter.
func NewPropertyTags(option string, include, exclude []int64, criteria *TagCriteria) (PropertyTags, error) {
	opt, err := ParseTagOption(option)
	if err != nil {
		return PropertyTags{}, err
	}
	return PropertyTags{
		option:   opt,
		include:  append([]int64(nil), include...),
		exclude:  append([]int64(nil), exclude...),
		criteria: criteria,
	}, nil
}

// Option returns the combine mode.
func (t PropertyTags) Option() TagOption { return t.option }

// Include returns the tag ids a document must carry.
func (t PropertyTags) Include() []int64 { return t.include }

// Exclude returns the tag ids a document must not carry.
func (t PropertyTags) Exclude() []int64 { return t.exclude }

// Criteria returns the optional assignment date window.
func (t PropertyTags) Criteria() *TagCriteria { return t.criteria }

func (t PropertyTags) clone() PropertyTags {
	c := t
	c.include = append([]int64(nil), t.include...)
	c.exclude = append([]int64(nil), t.exclude...)
	if t.criteria != nil {
		crit := *t.criteria
		c.criteria = &crit
	}
	return c
}

// ProspectStatus filters on recorded prospect status activity.
type ProspectStatus struct {
	option   TagOption
	include  []string
	exclude  []string
	criteria *TagCriteria
}

// NewProspectStatus validates the status names against the known query map.
func NewProspectStatus(option string, include, exclude []string, criteria *TagCriteria) (ProspectStatus, error) {
	opt, err := ParseTagOption(option)
	if err != nil {
		return ProspectStatus{}, err
	}
	known := schema.ProspectStatusQueryMap()
	for _, name := range append(append([]string(nil), include...), exclude...) {
		if _, ok := known[name]; !ok {
			return ProspectStatus{}, fmt.Errorf("unknown prospect status %q", name)
		}
	}
	return ProspectStatus{
		option:   opt,
		include:  append([]string(nil), include...),
		exclude:  append([]string(nil), exclude...),
		criteria: criteria,
	}, nil
}

// Option returns the combine mode.
func (t ProspectStatus) Option() TagOption { return t.option }

// Include returns the statuses a prospect must have.
func (t ProspectStatus) Include() []string { return t.include }

// Exclude returns the statuses a prospect must not have.
func (t ProspectStatus) Exclude() []string { return t.exclude }

// Criteria returns the optional status date window.
func (t ProspectStatus) Criteria() *TagCriteria { return t.criteria }

func (t ProspectStatus) clone() ProspectStatus {
	c := t
	c.include = append([]string(nil), t.include...)
	c.exclude = append([]string(nil), t.exclude...)
	if t.criteria != nil {
		crit := *t.criteria
		c.criteria = &crit
	}
	return c
}
