package stacker

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
)

func TestSearchBuilder(t *testing.T) {
	req := NewSearch(42).
		Match("property_address", "main st").
		State("TX", "OK").
		ZipCode("75001").
		SkipTraced(true).
		Archived(false).
		OwnerStatus("verified").
		Tags(TagsAll, 3, 7).
		ExcludeTags(9).
		Status(TagsAny, StatusPriority).
		SortBy("created_date", Asc).
		Size(50).
		Build()

	if req.CompanyID != 42 {
		t.Errorf("company id = %d, want 42", req.CompanyID)
	}
	if req.Query["property_address"] != "main st" {
		t.Errorf("query = %v", req.Query)
	}
	f := req.Filters
	if !reflect.DeepEqual(f.State, []string{"TX", "OK"}) {
		t.Errorf("state = %v", f.State)
	}
	if f.ZipCode != "75001" {
		t.Errorf("zip = %q", f.ZipCode)
	}
	if f.SkipTraced == nil || !*f.SkipTraced {
		t.Error("skip_traced should be true")
	}
	if f.IsArchived == nil || *f.IsArchived {
		t.Error("is_archived should be false")
	}
	if !reflect.DeepEqual(f.OwnerVerifiedStatus, []string{"verified"}) {
		t.Errorf("owner status = %v", f.OwnerVerifiedStatus)
	}
	if f.PropertyTags.Option != TagsAll || !reflect.DeepEqual(f.PropertyTags.Include, []int64{3, 7}) {
		t.Errorf("property tags = %+v", f.PropertyTags)
	}
	if !reflect.DeepEqual(f.PropertyTags.Exclude, []int64{9}) {
		t.Errorf("tag exclude = %v", f.PropertyTags.Exclude)
	}
	if f.ProspectStatus.Option != TagsAny || f.ProspectStatus.Include[0] != StatusPriority {
		t.Errorf("prospect status = %+v", f.ProspectStatus)
	}
	if req.Sort.Field != "created_date" || req.Sort.Order != Asc {
		t.Errorf("sort = %+v", req.Sort)
	}
	if req.Size != 50 {
		t.Errorf("size = %d", req.Size)
	}
}

func TestSearchBuilder_DefaultSort(t *testing.T) {
	req := NewSearch(1).Build()

	if req.Sort == nil || req.Sort.Field != "last_contact" || req.Sort.Order != Desc {
		t.Errorf("default sort = %+v, want last_contact desc", req.Sort)
	}
	if req.Filters != nil {
		t.Errorf("filters = %+v, want nil until one is set", req.Filters)
	}
}

func TestSearchBuilder_After(t *testing.T) {
	prev := &SearchResponse{
		Properties: Page{SearchAfter: []any{float64(1700000000), float64(12)}},
		Prospects:  Page{SearchAfter: []any{float64(1690000000), float64(7)}},
	}

	req := NewSearch(1).After(prev).Build()

	if req.SearchAfter == nil {
		t.Fatal("expected search_after to be set")
	}
	if len(req.SearchAfter.Properties) != 2 || len(req.SearchAfter.Prospects) != 2 {
		t.Errorf("cursors = %+v", req.SearchAfter)
	}
}

func TestSearchStacker(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"prospects": {"results": [{"prospect_id": 7}], "total": 1, "search_after": ["a"]},
			"properties": {"results": [], "total": 0, "search_after": []},
			"counts": {"prospects": 4, "properties": 9}
		}`))
	})

	res, err := NewSearch(42).State("TX").Do(context.Background(), client)
	if err != nil {
		t.Fatalf("SearchStacker: %v", err)
	}

	if gotPath != "/api/v1/stacker/search" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["company_id"] != float64(42) {
		t.Errorf("company_id = %v", gotBody["company_id"])
	}
	if _, ok := gotBody["sort"]; !ok {
		t.Error("sort missing from request body")
	}

	if res.Prospects.Total != 1 || len(res.Prospects.Results) != 1 {
		t.Errorf("prospects = %+v", res.Prospects)
	}
	if res.Counts.Properties != 9 {
		t.Errorf("counts = %+v", res.Counts)
	}
}

func TestCounts(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prospects": 2, "properties": 3}`))
	})

	counts, err := client.Counts(context.Background(), 9)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if gotQuery != "company_id=9" {
		t.Errorf("query = %q", gotQuery)
	}
	if counts.Prospects != 2 || counts.Properties != 3 {
		t.Errorf("counts = %+v", counts)
	}
}
