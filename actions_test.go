package stacker

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func captureJSON(t *testing.T, status int, response string, path *string, body *map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != "" {
			_, _ = w.Write([]byte(response))
		}
	}
}

func TestArchive(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusNoContent, "", &path, &body))

	err := client.Archive(context.Background(), ActionRequest{
		CompanyID: 3,
		Type:      TypeProperty,
		IDList:    []int64{4, 2},
	}, true)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if path != "/api/v1/stacker/actions/archive" {
		t.Errorf("path = %q", path)
	}
	if body["archive"] != true {
		t.Errorf("archive = %v", body["archive"])
	}
	if body["type"] != "property" {
		t.Errorf("type = %v", body["type"])
	}
}

func TestTagProspects_ForcesType(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusNoContent, "", &path, &body))

	err := client.TagProspects(context.Background(),
		ActionRequest{CompanyID: 3, Type: TypeProperty, IDList: []int64{1}},
		ProspectToggles{IsPriority: Bool(true)},
		[]int64{5},
	)
	if err != nil {
		t.Fatalf("TagProspects: %v", err)
	}

	if body["type"] != "prospect" {
		t.Errorf("type = %v, want prospect regardless of input", body["type"])
	}
	if body["is_priority"] != true {
		t.Errorf("is_priority = %v", body["is_priority"])
	}
	if _, ok := body["do_not_call"]; ok {
		t.Error("unset toggles should be omitted")
	}
	tags := body["tags"].([]any)
	if len(tags) != 1 || tags[0] != float64(5) {
		t.Errorf("tags = %v", tags)
	}
}

func TestExport_NothingMatched(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusNoContent, "", &path, &body))

	id, err := client.Export(context.Background(), ActionRequest{CompanyID: 3, Type: TypeProspect})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty on 204", id)
	}
}

func TestExport_ReturnsID(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusCreated, `{"id": "exp-1"}`, &path, &body))

	id, err := client.Export(context.Background(), ActionRequest{CompanyID: 3, Type: TypeProspect, IDList: []int64{1}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if id != "exp-1" {
		t.Errorf("id = %q", id)
	}
}

func TestEstimatePush_OmitsImportType(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusOK, `{"new": 2, "existing": 1}`, &path, &body))

	est, err := client.EstimatePush(context.Background(), ActionRequest{
		CompanyID: 3,
		Type:      TypeProspect,
		IDList:    []int64{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("EstimatePush: %v", err)
	}

	if path != "/api/v1/stacker/actions/push" {
		t.Errorf("path = %q", path)
	}
	// The estimate is the push body without import_type.
	if _, ok := body["import_type"]; ok {
		t.Error("estimate body must not carry import_type")
	}
	if est.New != 2 || est.Existing != 1 {
		t.Errorf("estimate = %+v", est)
	}
}

func TestPush_SendsImportType(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusAccepted, `{"id": "task-9"}`, &path, &body))

	id, err := client.Push(context.Background(), ActionRequest{
		CompanyID: 3,
		Type:      TypeProspect,
		IDList:    []int64{5, 6},
	}, 11, "all")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	if body["import_type"] != "all" {
		t.Errorf("import_type = %v", body["import_type"])
	}
	if body["campaign_id"] != float64(11) {
		t.Errorf("campaign_id = %v", body["campaign_id"])
	}
	if id != "task-9" {
		t.Errorf("id = %q", id)
	}
}

func TestSkipTrace(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusAccepted, `{"id": "up-1", "total_rows": 2}`, &path, &body))

	up, err := client.SkipTrace(context.Background(), ActionRequest{
		CompanyID: 3,
		Type:      TypeProperty,
		IDList:    []int64{9, 4},
	})
	if err != nil {
		t.Fatalf("SkipTrace: %v", err)
	}
	if up.ID != "up-1" || up.TotalRows != 2 {
		t.Errorf("upload = %+v", up)
	}
}

func TestRowChange(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusAccepted, `{"id": "task-1"}`, &path, &body))

	err := client.RowChange(context.Background(), "prospect", []int64{1, 2}, map[string]any{"do_not_call": true})
	if err != nil {
		t.Fatalf("RowChange: %v", err)
	}

	if path != "/api/v1/events/row-change" {
		t.Errorf("path = %q", path)
	}
	changes := body["changes"].(map[string]any)
	if changes["do_not_call"] != true {
		t.Errorf("changes = %v", changes)
	}
}

func TestTagChange(t *testing.T) {
	var path string
	var body map[string]any
	client := newTestClient(t, captureJSON(t, http.StatusAccepted, `{"id": "task-1"}`, &path, &body))

	err := client.TagChange(context.Background(), 42, []int64{1, 2}, 1)
	if err != nil {
		t.Fatalf("TagChange: %v", err)
	}

	if body["property_id"] != float64(42) {
		t.Errorf("property_id = %v", body["property_id"])
	}
	if body["distress_indicators"] != float64(1) {
		t.Errorf("distress_indicators = %v", body["distress_indicators"])
	}
}

func TestCreateIndexes(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.CreateIndexes(context.Background()); err != nil {
		t.Fatalf("CreateIndexes: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/v1/admin/indexes" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}
