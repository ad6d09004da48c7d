package projector

import (
	"strings"

	"github.com/parcelworks/stacker/internal/domain/kind"
)

// scope selects the WHERE clause: a full company rebuild or a targeted
// refresh of specific rows. The projection itself is identical, which
// keeps the two read paths from drifting apart.
type scope int

const (
	scopeCompany scope = iota
	scopeIDs
)

const propertyFrom = `FROM properties_property prop
INNER JOIN properties_address addr ON addr.id = prop.address_id
LEFT JOIN properties_attomassessor at ON at.attom_id = addr.attom_id
LEFT JOIN properties_propertytagassignment pta ON pta.prop_id = prop.id
LEFT JOIN properties_propertytag pt ON pta.tag_id = pt.id
LEFT JOIN sherpa_prospect pros ON pros.prop_id = prop.id
LEFT JOIN sherpa_activity act ON act.prospect_id = pros.id
LEFT JOIN sherpa_campaignprospect cp ON cp.prospect_id = pros.id
LEFT JOIN sherpa_campaign c ON c.id = cp.campaign_id
LEFT JOIN sherpa_skiptraceproperty sk ON sk.prop_id = prop.id
LEFT JOIN sherpa_uploadskiptrace uskt ON uskt.id = prop.upload_skip_trace_id
LEFT JOIN sherpa_uploadprospects upros ON upros.id = prop.upload_prospects_id`

const propertyGroupBy = `GROUP BY
    prop.id
    , prop.address_id
    , addr.address
    , addr.city
    , addr.state
    , addr.zip_code
    , prop.is_archived
    , prop.company_id
    , at.deed_last_sale_date::date
    , prop.created::date
    , prop.last_modified::date
    , NULLIF(sk.bankruptcy, '')::date
    , sk.returned_judgment_date::date
    , sk.returned_foreclosure_date::date
    , sk.returned_lien_date::date
    , sk.created::date`

const prospectFrom = `FROM sherpa_prospect pros
LEFT JOIN sherpa_activity act ON act.prospect_id = pros.id
LEFT JOIN sherpa_campaignprospect cp ON cp.prospect_id = pros.id
LEFT JOIN sherpa_campaign c ON c.id = cp.campaign_id
LEFT JOIN properties_property prop ON prop.id = pros.prop_id
LEFT JOIN properties_address addr ON addr.id = prop.address_id
LEFT JOIN properties_attomassessor at ON at.attom_id = addr.attom_id
LEFT JOIN properties_propertytagassignment pta ON pta.prop_id = prop.id
LEFT JOIN properties_propertytag pt ON pta.tag_id = pt.id
LEFT JOIN sherpa_skiptraceproperty sk ON sk.prop_id = prop.id
LEFT JOIN sherpa_uploadskiptrace uskt ON uskt.id = prop.upload_skip_trace_id
LEFT JOIN sherpa_uploadprospects upros ON upros.id = prop.upload_prospects_id`

const prospectGroupBy = `GROUP BY
    pros.id
    , pros.company_id
    , pros.first_name
    , pros.last_name
    , pros.phone_raw
    , pros.owner_verified_status
    , pros.is_archived
    , pros.is_blocked
    , pros.do_not_call
    , pros.is_priority
    , pros.is_qualified_lead
    , pros.wrong_number
    , pros.opted_out
    , pros.lead_stage_id
    , pros.created_date::date
    , pros.last_modified::date
    , prop.id
    , addr.address
    , addr.city
    , addr.state
    , addr.zip_code
    , at.deed_last_sale_date::date
    , NULLIF(sk.bankruptcy, '')::date
    , sk.returned_judgment_date::date
    , sk.returned_foreclosure_date::date
    , sk.returned_lien_date::date
    , sk.created::date`

func columnsFor(k kind.Kind) []column {
	if k == kind.Property {
		return propertyColumns
	}
	return prospectColumns
}

func whereFor(k kind.Kind, sc scope) string {
	switch {
	case k == kind.Property && sc == scopeCompany:
		return "WHERE prop.company_id = ANY($1)"
	case k == kind.Property && sc == scopeIDs:
		return "WHERE prop.id = ANY($1)"
	case sc == scopeCompany:
		return "WHERE pros.company_id = ANY($1)"
	default:
		return "WHERE pros.id = ANY($1)"
	}
}

// buildQuery assembles the projection query for one kind and scope. The
// select list follows the document field order; array aggregates are
// wrapped in TO_JSONB so rows scan as JSON bytes.
func buildQuery(k kind.Kind, sc scope) string {
	cols := columnsFor(k)

	var b strings.Builder
	b.WriteString("SELECT DISTINCT\n")
	for i, c := range cols {
		if i == 0 {
			b.WriteString("    ")
		} else {
			b.WriteString("    , ")
		}
		expr := c.expr
		if c.dec == decIntList || c.dec == decTextList {
			expr = "TO_JSONB(" + expr + ")"
		}
		b.WriteString(expr)
		b.WriteString(" AS ")
		b.WriteString(c.field)
		b.WriteString("\n")
	}

	if k == kind.Property {
		b.WriteString(propertyFrom)
		b.WriteString("\n")
		b.WriteString(whereFor(k, sc))
		b.WriteString("\n")
		b.WriteString(propertyGroupBy)
	} else {
		b.WriteString(prospectFrom)
		b.WriteString("\n")
		b.WriteString(whereFor(k, sc))
		b.WriteString("\n")
		b.WriteString(prospectGroupBy)
	}
	return b.String()
}
