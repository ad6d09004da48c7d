package tasks

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/domain/kind"
)

func mustPayload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func TestMapCoversAllKinds(t *testing.T) {
	m := Handlers{}.Map()

	kinds := []string{
		KindPopulate, KindRefresh, KindRowChange, KindTagChange,
		KindArchive, KindExport, KindPushCampaign, KindSkiptrace,
	}
	if len(m) != len(kinds) {
		t.Fatalf("registry has %d handlers, want %d", len(m), len(kinds))
	}
	for _, k := range kinds {
		if m[k] == nil {
			t.Errorf("no handler registered for %q", k)
		}
	}
}

func TestPopulateHandler(t *testing.T) {
	var got []int64
	h := Handlers{Populator: &mockPopulator{
		populateCompanyFn: func(ctx context.Context, companyID int64) error {
			got = append(got, companyID)
			return nil
		},
	}}

	payload := mustPayload(t, PopulatePayload{CompanyIDs: []int64{7, 9}})
	if err := h.Map()[KindPopulate](context.Background(), payload); err != nil {
		t.Fatalf("populate handler error = %v", err)
	}
	if !reflect.DeepEqual(got, []int64{7, 9}) {
		t.Errorf("populated companies = %v, want [7 9]", got)
	}
}

func TestRefreshHandler(t *testing.T) {
	var gotProps, gotPros []int64
	h := Handlers{Populator: &mockPopulator{
		refreshFn: func(ctx context.Context, propertyIDs, prospectIDs []int64) error {
			gotProps, gotPros = propertyIDs, prospectIDs
			return nil
		},
	}}

	payload := mustPayload(t, RefreshPayload{PropertyIDs: []int64{1}, ProspectIDs: []int64{2, 3}})
	if err := h.Map()[KindRefresh](context.Background(), payload); err != nil {
		t.Fatalf("refresh handler error = %v", err)
	}
	if !reflect.DeepEqual(gotProps, []int64{1}) || !reflect.DeepEqual(gotPros, []int64{2, 3}) {
		t.Errorf("refresh ids = %v / %v, want [1] / [2 3]", gotProps, gotPros)
	}
}

func TestRowChangeHandler(t *testing.T) {
	var got change.Row
	h := Handlers{Updater: &mockUpdater{
		applyRowChangeFn: func(ctx context.Context, row change.Row) error {
			got = row
			return nil
		},
	}}

	payload := mustPayload(t, RowChangePayload{
		Entity:  "prospect",
		IDs:     []int64{11, 12},
		Changes: map[string]any{"do_not_call": true},
	})
	if err := h.Map()[KindRowChange](context.Background(), payload); err != nil {
		t.Fatalf("row change handler error = %v", err)
	}
	if got.Entity != change.EntityProspect {
		t.Errorf("entity = %q, want prospect", got.Entity)
	}
	if !reflect.DeepEqual(got.IDs, []int64{11, 12}) {
		t.Errorf("ids = %v, want [11 12]", got.IDs)
	}
	if got.Fields["do_not_call"] != true {
		t.Errorf("fields = %v, want do_not_call=true", got.Fields)
	}
}

func TestRowChangeHandlerUnknownEntity(t *testing.T) {
	h := Handlers{Updater: &mockUpdater{}}
	payload := mustPayload(t, RowChangePayload{Entity: "campaign", IDs: []int64{1}})
	if err := h.Map()[KindRowChange](context.Background(), payload); err == nil {
		t.Fatal("expected error for unknown entity")
	}
}

func TestTagChangeHandlerShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload TagChangePayload
		want    string
	}{
		{
			name:    "explicit state",
			payload: TagChangePayload{PropertyID: 4, TagIDs: []int64{1, 2}, DistressIndicators: 1},
			want:    "apply",
		},
		{
			name:    "property lookup",
			payload: TagChangePayload{PropertyIDs: []int64{4, 5}},
			want:    "properties",
		},
		{
			name:    "prospect lookup",
			payload: TagChangePayload{ProspectIDs: []int64{9}},
			want:    "prospects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called string
			h := Handlers{Updater: &mockUpdater{
				applyTagChangeFn: func(ctx context.Context, tags change.Tags) error {
					called = "apply"
					return nil
				},
				refreshPropertyTagsFn: func(ctx context.Context, propertyIDs []int64) error {
					called = "properties"
					return nil
				},
				refreshProspectTagsFn: func(ctx context.Context, prospectIDs []int64) error {
					called = "prospects"
					return nil
				},
			}}

			if err := h.Map()[KindTagChange](context.Background(), mustPayload(t, tt.payload)); err != nil {
				t.Fatalf("tag change handler error = %v", err)
			}
			if called != tt.want {
				t.Errorf("dispatched to %q, want %q", called, tt.want)
			}
		})
	}
}

func TestTagChangeHandlerEmpty(t *testing.T) {
	h := Handlers{Updater: &mockUpdater{}}
	if err := h.Map()[KindTagChange](context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected error for empty tag change payload")
	}
}

func TestArchiveHandler(t *testing.T) {
	var gotKind kind.Kind
	var gotIDs []int64
	var gotArchived bool
	h := Handlers{Updater: &mockUpdater{
		applyArchiveFn: func(ctx context.Context, k kind.Kind, ids []int64, archived bool) error {
			gotKind, gotIDs, gotArchived = k, ids, archived
			return nil
		},
	}}

	payload := mustPayload(t, ArchivePayload{Kind: "property", IDs: []int64{3}, Archive: true})
	if err := h.Map()[KindArchive](context.Background(), payload); err != nil {
		t.Fatalf("archive handler error = %v", err)
	}
	if gotKind != kind.Property || !reflect.DeepEqual(gotIDs, []int64{3}) || !gotArchived {
		t.Errorf("got (%v, %v, %v), want (property, [3], true)", gotKind, gotIDs, gotArchived)
	}
}

func TestArchiveHandlerUnknownKind(t *testing.T) {
	h := Handlers{Updater: &mockUpdater{}}
	payload := mustPayload(t, ArchivePayload{Kind: "address", IDs: []int64{3}})
	if err := h.Map()[KindArchive](context.Background(), payload); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestExportHandler(t *testing.T) {
	var gotID string
	var gotKind kind.Kind
	h := Handlers{Exporter: &mockExporter{
		runFn: func(ctx context.Context, exportID string, k kind.Kind, companyID int64, ids []int64) error {
			gotID, gotKind = exportID, k
			return nil
		},
	}}

	payload := mustPayload(t, ExportPayload{ExportID: "exp-1", CompanyID: 9, Kind: "prospect", IDs: []int64{5}})
	if err := h.Map()[KindExport](context.Background(), payload); err != nil {
		t.Fatalf("export handler error = %v", err)
	}
	if gotID != "exp-1" || gotKind != kind.Prospect {
		t.Errorf("got (%q, %v), want (exp-1, prospect)", gotID, gotKind)
	}
}

func TestPushCampaignHandler(t *testing.T) {
	var got []int64
	h := Handlers{Populator: &mockPopulator{
		refreshForProspectsFn: func(ctx context.Context, prospectIDs []int64) error {
			got = prospectIDs
			return nil
		},
	}}

	payload := mustPayload(t, PushCampaignPayload{CampaignID: 2, ProspectIDs: []int64{8, 9}})
	if err := h.Map()[KindPushCampaign](context.Background(), payload); err != nil {
		t.Fatalf("push handler error = %v", err)
	}
	if !reflect.DeepEqual(got, []int64{8, 9}) {
		t.Errorf("refreshed prospects = %v, want [8 9]", got)
	}
}

func TestSkiptraceHandler(t *testing.T) {
	var gotUpload string
	var gotCompany int64
	h := Handlers{Skiptracer: &mockSkiptracer{
		buildUploadFn: func(ctx context.Context, uploadID string, companyID int64, propertyIDs []int64) error {
			gotUpload, gotCompany = uploadID, companyID
			return nil
		},
	}}

	payload := mustPayload(t, SkiptracePayload{UploadID: "up-1", CompanyID: 9, PropertyIDs: []int64{1}})
	if err := h.Map()[KindSkiptrace](context.Background(), payload); err != nil {
		t.Fatalf("skiptrace handler error = %v", err)
	}
	if gotUpload != "up-1" || gotCompany != 9 {
		t.Errorf("got (%q, %d), want (up-1, 9)", gotUpload, gotCompany)
	}
}

func TestHandlersRejectBadPayload(t *testing.T) {
	h := Handlers{
		Populator:  &mockPopulator{},
		Updater:    &mockUpdater{},
		Exporter:   &mockExporter{},
		Skiptracer: &mockSkiptracer{},
	}
	for k, handler := range h.Map() {
		if err := handler(context.Background(), []byte(`{not json`)); err == nil {
			t.Errorf("%s handler accepted malformed payload", k)
		}
	}
}
