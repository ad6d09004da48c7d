package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/domain/schema"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
)

func fixedService(index Index, dir string) *Service {
	svc := New(index, dir)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	}
	return svc
}

func propertyDoc(id int64) map[string]any {
	return map[string]any{
		"company_id":  float64(3),
		"property_id": float64(id),
		"address":     fmt.Sprintf("%d Main St", id),
		"tags":        []any{float64(1), float64(2)},
		"is_blocked":  false,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export file: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse export file: %v", err)
	}
	return records
}

func fieldIndex(t *testing.T, field string) int {
	t.Helper()
	for i, f := range schema.Fields() {
		if f == field {
			return i
		}
	}
	t.Fatalf("field %q not in the schema", field)
	return -1
}

// scannedIDs extracts the id terms filter from a fetch body.
func scannedIDs(t *testing.T, body map[string]any, field string) []int64 {
	t.Helper()
	clauses := body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	for _, c := range clauses {
		terms, ok := c.(map[string]any)["terms"].(map[string]any)
		if !ok {
			continue
		}
		if ids, ok := terms[field].([]int64); ok {
			return ids
		}
	}
	t.Fatalf("no %s terms in fetch body", field)
	return nil
}

func TestRunWritesDocumentsInResolutionOrder(t *testing.T) {
	dir := t.TempDir()
	index := &mockIndex{
		searchFn: func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
			return &domsearch.Page{
				Results: []map[string]any{propertyDoc(1), propertyDoc(2)},
				Total:   2,
			}, nil
		},
	}

	svc := fixedService(index, dir)
	if err := svc.Run(context.Background(), "exp-1", kind.Property, 3, []int64{2, 1}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "exp-1", "stacker-properties_2026-03-09.csv"))
	if len(records) != 3 {
		t.Fatalf("records = %d, want header plus 2 rows", len(records))
	}
	if !reflect.DeepEqual(records[0], schema.Fields()) {
		t.Error("header does not match the schema field order")
	}

	idCol := fieldIndex(t, "property_id")
	if records[1][idCol] != "2" || records[2][idCol] != "1" {
		t.Errorf("row order = %s, %s; want the resolution order 2, 1", records[1][idCol], records[2][idCol])
	}
	if got := records[1][fieldIndex(t, "address")]; got != "2 Main St" {
		t.Errorf("address = %q, want 2 Main St", got)
	}
	if got := records[1][fieldIndex(t, "tags")]; got != "1, 2" {
		t.Errorf("tags = %q, want joined 1, 2", got)
	}
	if got := records[1][fieldIndex(t, "is_blocked")]; got != "false" {
		t.Errorf("is_blocked = %q, want false", got)
	}
	if got := records[1][fieldIndex(t, "last_contact")]; got != "" {
		t.Errorf("absent field = %q, want empty", got)
	}

	if len(index.calls) != 1 {
		t.Fatalf("fetches = %d, want 1", len(index.calls))
	}
	call := index.calls[0]
	if call.kind != kind.Property || call.size != 2 {
		t.Errorf("fetch = %s size %d, want property size 2", call.kind, call.size)
	}
	filter := call.body["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	company := filter[0].(map[string]any)["term"].(map[string]any)["company_id"]
	if company != int64(3) {
		t.Errorf("company term = %v, want 3", company)
	}
}

func TestRunSkipsVanishedDocuments(t *testing.T) {
	dir := t.TempDir()
	index := &mockIndex{
		searchFn: func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
			return &domsearch.Page{
				Results: []map[string]any{propertyDoc(1), propertyDoc(3)},
				Total:   2,
			}, nil
		},
	}

	svc := fixedService(index, dir)
	if err := svc.Run(context.Background(), "exp-2", kind.Property, 3, []int64{1, 2, 3}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "exp-2", "stacker-properties_2026-03-09.csv"))
	if len(records) != 3 {
		t.Fatalf("records = %d, want header plus 2 rows", len(records))
	}
	idCol := fieldIndex(t, "property_id")
	if records[1][idCol] != "1" || records[2][idCol] != "3" {
		t.Errorf("rows = %s, %s; want 1 and 3 with 2 skipped", records[1][idCol], records[2][idCol])
	}
}

func TestRunFetchesInChunks(t *testing.T) {
	ids := make([]int64, 1101)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	index := &mockIndex{}

	svc := fixedService(index, t.TempDir())
	if err := svc.Run(context.Background(), "exp-3", kind.Prospect, 3, ids); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(index.calls) != 3 {
		t.Fatalf("fetches = %d, want 3", len(index.calls))
	}
	for i, wantSize := range []int{500, 500, 101} {
		if index.calls[i].size != wantSize {
			t.Errorf("fetch %d size = %d, want %d", i, index.calls[i].size, wantSize)
		}
	}
	last := scannedIDs(t, index.calls[2].body, "prospect_id")
	if len(last) != 101 || last[0] != 1001 || last[100] != 1101 {
		t.Errorf("last chunk = %d ids [%d..%d], want 101 ids [1001..1101]", len(last), last[0], last[len(last)-1])
	}
}

func TestRunEmptyIDList(t *testing.T) {
	dir := t.TempDir()
	index := &mockIndex{}

	svc := fixedService(index, dir)
	if err := svc.Run(context.Background(), "exp-4", kind.Prospect, 3, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(index.calls) != 0 {
		t.Errorf("fetches = %d, want 0", len(index.calls))
	}
	records := readCSV(t, filepath.Join(dir, "exp-4", "stacker-prospects_2026-03-09.csv"))
	if len(records) != 1 {
		t.Errorf("records = %d, want the header only", len(records))
	}
}

func TestRunPropagatesFetchErrors(t *testing.T) {
	index := &mockIndex{
		searchFn: func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
			return nil, errors.New("engine down")
		},
	}

	svc := fixedService(index, t.TempDir())
	if err := svc.Run(context.Background(), "exp-5", kind.Property, 3, []int64{1}); err == nil {
		t.Fatal("expected error")
	}
}
