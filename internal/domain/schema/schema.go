// Package schema is the single source of truth for the stacker document
// shape: the shared index mapping, the canonical field order that the row
// projector's SELECT lists must follow, and the query templates used by the
// filter compiler.
package schema

// Activity titles surfaced in the prospect_status aggregate. Only these
// four make it into the documents.
const (
	StatusAddedDNC       = "Added to DNC"
	StatusAddedWrong     = "Added Wrong Number"
	StatusAddedPriority  = "Added as Priority"
	StatusAddedQualified = "Qualified Lead Added"
)

type fieldSpec struct {
	name    string
	mapping map[string]any
}

// fieldSpecs is ordered. Fields() and the mapping are both derived from it,
// and the projector column order is tested against it.
var fieldSpecs = []fieldSpec{
	{"company_id", map[string]any{"type": "integer"}},
	{"prospect_id", map[string]any{"type": "integer"}},
	{"property_id", map[string]any{"type": "integer"}},
	{"address_id", map[string]any{"type": "integer"}},
	// partial match
	{"name", map[string]any{
		"type":     "text",
		"analyzer": "name_analyzer",
		"fields": map[string]any{
			"raw": map[string]any{"type": "keyword"},
		},
	}},
	// partial match
	{"address", map[string]any{
		"type":            "text",
		"analyzer":        "index_address_analyzer",
		"search_analyzer": "search_address_analyzer",
		"fields": map[string]any{
			"raw": map[string]any{"type": "keyword"},
		},
	}},
	// full match
	{"city", map[string]any{
		"type":       "keyword",
		"normalizer": "city_normalizer",
	}},
	{"state", map[string]any{"type": "keyword", "ignore_above": 2}},
	{"zip_code", map[string]any{"type": "keyword", "ignore_above": 5}},
	{"last_sold_date", map[string]any{"type": "date"}},
	{"tags", map[string]any{"type": "integer"}},
	{"tags_length", map[string]any{"type": "integer"}},
	{"distress_indicators", map[string]any{"type": "integer"}},
	// partial match
	{"phone_raw", map[string]any{
		"type":            "text",
		"analyzer":        "index_phone_analyzer",
		"search_analyzer": "search_phone_analyzer",
		"fields": map[string]any{
			"raw": map[string]any{"type": "keyword"},
		},
	}},
	{"lead_stage_id", map[string]any{"type": "integer"}},
	{"is_blocked", map[string]any{"type": "boolean"}},
	{"do_not_call", map[string]any{"type": "boolean"}},
	{"is_priority", map[string]any{"type": "boolean"}},
	{"is_qualified_lead", map[string]any{"type": "boolean"}},
	{"wrong_number", map[string]any{"type": "boolean"}},
	{"opted_out", map[string]any{"type": "boolean"}},
	{"owner_status", map[string]any{"type": "keyword"}},
	{"is_archived", map[string]any{"type": "boolean"}},
	{"last_contact", map[string]any{"type": "date"}},
	{"last_contact_inbound", map[string]any{"type": "date"}},
	{"created_date", map[string]any{"type": "date", "index": false}},
	{"last_modified", map[string]any{"type": "date", "index": false}},
	{"campaigns", map[string]any{"type": "integer"}},
	{"dm_campaigns", map[string]any{"type": "integer"}},
	{"has_reminder", map[string]any{"type": "boolean"}},
	{"recently_vacant", map[string]any{"type": "boolean"}},
	{"bankruptcy_date", map[string]any{"type": "date"}},
	{"judgment_date", map[string]any{"type": "date"}},
	{"foreclosure_date", map[string]any{"type": "date"}},
	{"lien_date", map[string]any{"type": "date"}},
	{"skiptrace_date", map[string]any{"type": "date"}},
	{"campaign_id", map[string]any{"type": "integer"}},
	{"prospect_status", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "text"},
			"date_utc": map[string]any{"type": "date"},
		},
	}},
	{"property_status", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "text"},
			"date_utc": map[string]any{"type": "date"},
		},
	}},
	{"first_import_date", map[string]any{"type": "date"}},
	{"last_import_date", map[string]any{"type": "date"}},
}

// Fields returns the canonical field order shared by the mapping and the
// projector queries.
func Fields() []string {
	names := make([]string, len(fieldSpecs))
	for i, f := range fieldSpecs {
		names[i] = f.name
	}
	return names
}

// Mapping returns the index mapping built from the ordered field specs.
func Mapping() map[string]any {
	props := make(map[string]any, len(fieldSpecs))
	for _, f := range fieldSpecs {
		props[f.name] = f.mapping
	}
	return map[string]any{"properties": props}
}

// Settings returns the index settings: shard layout plus the analyzers the
// partial-match fields depend on.
func Settings() map[string]any {
	return map[string]any{
		"index": map[string]any{
			"number_of_shards":   2,
			"number_of_replicas": 0,
			"search": map[string]any{
				"idle": map[string]any{
					// 10 minutes
					"after": "600s",
				},
			},
			"max_ngram_diff": 3,
		},
		"analysis": map[string]any{
			"char_filter": map[string]any{
				"digits_only": map[string]any{
					"type":    "pattern_replace",
					"pattern": `[^\d]`,
				},
			},
			"filter": map[string]any{
				"street_synonyms": map[string]any{
					"type":          "synonym",
					"lenient":       true,
					"synonyms_path": "synonyms/street_synonyms.txt",
				},
				"4_7_egram": map[string]any{
					"type":              "edge_ngram",
					"min_gram":          4,
					"max_gram":          7,
					"preserve_original": true,
				},
				"street_search_filter": map[string]any{
					"type":           "stop",
					"ignore_case":    true,
					"stopwords_path": "stop/stop_words.txt",
				},
			},
			"normalizer": map[string]any{
				"city_normalizer": map[string]any{
					"type":        "custom",
					"char_filter": []any{},
					"filter":      []any{"lowercase"},
				},
			},
			"tokenizer": map[string]any{
				"phone_number_tokenizer": map[string]any{
					"type":        "ngram",
					"min_gram":    "4",
					"max_gram":    "7",
					"token_chars": []any{"digit"},
				},
			},
			"analyzer": map[string]any{
				"index_phone_analyzer": map[string]any{
					"type":        "custom",
					"char_filter": []any{"digits_only"},
					"tokenizer":   "phone_number_tokenizer",
					"filter":      []any{"trim"},
				},
				"search_phone_analyzer": map[string]any{
					"type":        "custom",
					"char_filter": []any{"digits_only"},
					"tokenizer":   "keyword",
					"filter":      []any{"trim"},
				},
				"name_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []any{"trim", "lowercase", "4_7_egram"},
				},
				"index_address_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []any{"trim", "lowercase", "street_synonyms", "4_7_egram"},
				},
				"search_address_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []any{"trim", "lowercase", "street_search_filter", "4_7_egram"},
				},
			},
		},
	}
}

// Definition returns the full index creation body.
func Definition() map[string]any {
	return map[string]any{
		"settings": Settings(),
		"mappings": Mapping(),
	}
}
