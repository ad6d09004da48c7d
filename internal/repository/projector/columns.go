package projector

import (
	"strings"

	"github.com/parcelworks/stacker/internal/domain/schema"
)

// decode selects the scan target and document conversion for a column.
type decode int

const (
	decInt decode = iota
	decCount
	decText
	decBool
	decDate
	decIntList
	decTextList
	decStatus
)

// column binds one document field to the SQL expression that computes it.
// Array-valued expressions are wrapped in TO_JSONB at select time so they
// scan as JSON instead of Postgres array syntax.
type column struct {
	field string
	expr  string
	dec   decode
}

// statusTitleList is the activity-title filter for the prospect_status
// aggregate, quoted for SQL.
var statusTitleList = "'" + strings.Join([]string{
	schema.StatusAddedDNC,
	schema.StatusAddedWrong,
	schema.StatusAddedPriority,
	schema.StatusAddedQualified,
}, "', '") + "'"

// Expressions shared by both kinds.
var (
	exprTags               = "ARRAY_REMOVE(ARRAY_AGG(DISTINCT pta.tag_id ORDER BY pta.tag_id), NULL)"
	exprTagsLength         = "COUNT(DISTINCT pt.id)"
	exprDistressIndicators = "COUNT(DISTINCT pt.id) FILTER (WHERE pt.distress_indicator = true)"
	exprLastContact        = "MAX(GREATEST(cp.last_outbound_call::date, pros.last_sms_sent_utc::date))"
	exprLastContactInbound = "MAX(GREATEST(cp.last_inbound_call::date, pros.last_sms_received_utc::date))"
	exprCampaigns          = "COUNT(DISTINCT c.id) FILTER (WHERE c.is_direct_mail = false OR cp.removed_datetime::date IS NOT NULL)"
	exprDMCampaigns        = "COUNT(DISTINCT c.id) FILTER (WHERE c.is_direct_mail = true AND cp.removed_datetime::date IS NULL)"
	exprRecentlyVacant     = "COALESCE(BOOL_OR(pt.name = 'Vacant' AND pta.assigned_at >= now()::date - 30), false)"
	exprCampaignID         = "ARRAY_REMOVE(ARRAY_AGG(DISTINCT cp.campaign_id ORDER BY cp.campaign_id), NULL)"
	exprProspectStatus     = "JSONB_AGG(DISTINCT JSONB_BUILD_OBJECT('title', act.title, 'date_utc', act.date_utc)) FILTER (WHERE act.title IN (" + statusTitleList + "))"
	exprPropertyStatus     = "JSONB_AGG(DISTINCT JSONB_BUILD_OBJECT('title', pt.name, 'date_utc', pta.assigned_at)) FILTER (WHERE pt.name IS NOT NULL)"
	exprFirstImportDate    = "MAX(GREATEST(pros.created_date::date, prop.created::date))"
	exprLastImportDate     = "MAX(GREATEST(pros.created_date::date, prop.created::date, uskt.created::date, upros.created::date))"
)

// propertyColumns projects one document per property: prospect attributes
// collapse into arrays or BOOL_ORs across the property's prospects.
var propertyColumns = []column{
	{"company_id", "prop.company_id", decInt},
	{"prospect_id", "ARRAY_REMOVE(ARRAY_AGG(DISTINCT pros.id), NULL)", decIntList},
	{"property_id", "prop.id", decInt},
	{"address_id", "prop.address_id", decInt},
	{"name", "ARRAY_REMOVE(ARRAY_AGG(DISTINCT pros.first_name || ' ' || pros.last_name), NULL)", decTextList},
	{"address", "addr.address", decText},
	{"city", "addr.city", decText},
	{"state", "addr.state", decText},
	{"zip_code", "addr.zip_code", decText},
	{"last_sold_date", "at.deed_last_sale_date::date", decDate},
	{"tags", exprTags, decIntList},
	{"tags_length", exprTagsLength, decCount},
	{"distress_indicators", exprDistressIndicators, decCount},
	{"phone_raw", "ARRAY_REMOVE(ARRAY_AGG(DISTINCT NULLIF(pros.phone_raw, '')), NULL)", decTextList},
	{"lead_stage_id", "ARRAY_REMOVE(ARRAY_AGG(DISTINCT pros.lead_stage_id), NULL)", decIntList},
	{"is_blocked", "COALESCE(BOOL_OR(pros.is_blocked), false)", decBool},
	{"do_not_call", "COALESCE(BOOL_OR(pros.do_not_call), false)", decBool},
	{"is_priority", "COALESCE(BOOL_OR(pros.is_priority), false)", decBool},
	{"is_qualified_lead", "COALESCE(BOOL_OR(pros.is_qualified_lead), false)", decBool},
	{"wrong_number", "COALESCE(BOOL_OR(pros.wrong_number), false)", decBool},
	{"opted_out", "COALESCE(BOOL_OR(pros.opted_out), false)", decBool},
	{"owner_status", "ARRAY_REMOVE(ARRAY_AGG(DISTINCT pros.owner_verified_status), NULL)", decTextList},
	{"is_archived", "COALESCE(prop.is_archived, false)", decBool},
	{"last_contact", exprLastContact, decDate},
	{"last_contact_inbound", exprLastContactInbound, decDate},
	{"created_date", "prop.created::date", decDate},
	{"last_modified", "COALESCE(prop.last_modified::date, prop.created::date)", decDate},
	{"campaigns", exprCampaigns, decCount},
	{"dm_campaigns", exprDMCampaigns, decCount},
	{"has_reminder", "COALESCE(BOOL_OR(pros.has_reminder), false)", decBool},
	{"recently_vacant", exprRecentlyVacant, decBool},
	{"bankruptcy_date", "NULLIF(sk.bankruptcy, '')::date", decDate},
	{"judgment_date", "sk.returned_judgment_date::date", decDate},
	{"foreclosure_date", "sk.returned_foreclosure_date::date", decDate},
	{"lien_date", "sk.returned_lien_date::date", decDate},
	{"skiptrace_date", "sk.created::date", decDate},
	{"campaign_id", exprCampaignID, decIntList},
	{"prospect_status", exprProspectStatus, decStatus},
	{"property_status", exprPropertyStatus, decStatus},
	{"first_import_date", exprFirstImportDate, decDate},
	{"last_import_date", exprLastImportDate, decDate},
}

// prospectColumns projects one document per prospect: the same fields with
// the prospect's own scalars where the property document aggregates.
var prospectColumns = []column{
	{"company_id", "pros.company_id", decInt},
	{"prospect_id", "pros.id", decInt},
	{"property_id", "prop.id", decInt},
	{"address_id", "prop.address_id", decInt},
	{"name", "pros.first_name || ' ' || pros.last_name", decText},
	{"address", "addr.address", decText},
	{"city", "addr.city", decText},
	{"state", "addr.state", decText},
	{"zip_code", "addr.zip_code", decText},
	{"last_sold_date", "at.deed_last_sale_date::date", decDate},
	{"tags", exprTags, decIntList},
	{"tags_length", exprTagsLength, decCount},
	{"distress_indicators", exprDistressIndicators, decCount},
	{"phone_raw", "NULLIF(pros.phone_raw, '')", decText},
	{"lead_stage_id", "pros.lead_stage_id", decInt},
	{"is_blocked", "COALESCE(pros.is_blocked, false)", decBool},
	{"do_not_call", "COALESCE(pros.do_not_call, false)", decBool},
	{"is_priority", "COALESCE(pros.is_priority, false)", decBool},
	{"is_qualified_lead", "COALESCE(pros.is_qualified_lead, false)", decBool},
	{"wrong_number", "COALESCE(pros.wrong_number, false)", decBool},
	{"opted_out", "COALESCE(pros.opted_out, false)", decBool},
	{"owner_status", "pros.owner_verified_status", decText},
	{"is_archived", "COALESCE(pros.is_archived, false)", decBool},
	{"last_contact", exprLastContact, decDate},
	{"last_contact_inbound", exprLastContactInbound, decDate},
	{"created_date", "pros.created_date::date", decDate},
	{"last_modified", "COALESCE(pros.last_modified::date, pros.created_date::date)", decDate},
	{"campaigns", exprCampaigns, decCount},
	{"dm_campaigns", exprDMCampaigns, decCount},
	{"has_reminder", "COALESCE(pros.has_reminder, false)", decBool},
	{"recently_vacant", exprRecentlyVacant, decBool},
	{"bankruptcy_date", "NULLIF(sk.bankruptcy, '')::date", decDate},
	{"judgment_date", "sk.returned_judgment_date::date", decDate},
	{"foreclosure_date", "sk.returned_foreclosure_date::date", decDate},
	{"lien_date", "sk.returned_lien_date::date", decDate},
	{"skiptrace_date", "sk.created::date", decDate},
	{"campaign_id", exprCampaignID, decIntList},
	{"prospect_status", exprProspectStatus, decStatus},
	{"property_status", exprPropertyStatus, decStatus},
	{"first_import_date", exprFirstImportDate, decDate},
	{"last_import_date", exprLastImportDate, decDate},
}
