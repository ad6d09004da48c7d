package events

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/change"
	"github.com/parcelworks/stacker/internal/tasks"
)

type enqueueCall struct {
	kind    string
	payload any
}

type mockQueue struct {
	enqueueFn func(ctx context.Context, kind string, payload any) (string, error)
	calls     []enqueueCall
}

func (m *mockQueue) Enqueue(ctx context.Context, kind string, payload any) (string, error) {
	m.calls = append(m.calls, enqueueCall{kind: kind, payload: payload})
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, kind, payload)
	}
	return "task-1", nil
}

func TestRowChange(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	row, err := change.NewRow("prospect", []int64{7, 8}, map[string]any{"do_not_call": true})
	if err != nil {
		t.Fatalf("NewRow: %v", err)
	}

	id, err := svc.RowChange(context.Background(), row)
	if err != nil {
		t.Fatalf("RowChange: %v", err)
	}
	if id != "task-1" {
		t.Fatalf("expected task id task-1, got %q", id)
	}

	if len(queue.calls) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(queue.calls))
	}
	if queue.calls[0].kind != tasks.KindRowChange {
		t.Fatalf("expected kind %q, got %q", tasks.KindRowChange, queue.calls[0].kind)
	}
	want := tasks.RowChangePayload{
		Entity:  "prospect",
		IDs:     []int64{7, 8},
		Changes: map[string]any{"do_not_call": true},
	}
	if !reflect.DeepEqual(queue.calls[0].payload, want) {
		t.Fatalf("unexpected payload: %#v", queue.calls[0].payload)
	}
}

func TestRowChangeRejectsEmptyChanges(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	row, err := change.NewRow("property", []int64{1}, nil)
	if err != nil {
		t.Fatalf("NewRow: %v", err)
	}

	if _, err := svc.RowChange(context.Background(), row); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(queue.calls) != 0 {
		t.Fatalf("expected no enqueue, got %d", len(queue.calls))
	}
}

func TestTagChange(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	tags, err := change.NewTags(42, []int64{1, 2, 3}, 1)
	if err != nil {
		t.Fatalf("NewTags: %v", err)
	}

	if _, err := svc.TagChange(context.Background(), tags); err != nil {
		t.Fatalf("TagChange: %v", err)
	}

	if len(queue.calls) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(queue.calls))
	}
	if queue.calls[0].kind != tasks.KindTagChange {
		t.Fatalf("expected kind %q, got %q", tasks.KindTagChange, queue.calls[0].kind)
	}
	want := tasks.TagChangePayload{PropertyID: 42, TagIDs: []int64{1, 2, 3}, DistressIndicators: 1}
	if !reflect.DeepEqual(queue.calls[0].payload, want) {
		t.Fatalf("unexpected payload: %#v", queue.calls[0].payload)
	}
}

func TestPopulate(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	if _, err := svc.Populate(context.Background(), []int64{3, 4}); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	if queue.calls[0].kind != tasks.KindPopulate {
		t.Fatalf("expected kind %q, got %q", tasks.KindPopulate, queue.calls[0].kind)
	}
	want := tasks.PopulatePayload{CompanyIDs: []int64{3, 4}}
	if !reflect.DeepEqual(queue.calls[0].payload, want) {
		t.Fatalf("unexpected payload: %#v", queue.calls[0].payload)
	}
}

func TestPopulateRequiresCompanies(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	if _, err := svc.Populate(context.Background(), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(queue.calls) != 0 {
		t.Fatalf("expected no enqueue, got %d", len(queue.calls))
	}
}

func TestRefresh(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	if _, err := svc.Refresh(context.Background(), []int64{1}, []int64{2, 3}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if queue.calls[0].kind != tasks.KindRefresh {
		t.Fatalf("expected kind %q, got %q", tasks.KindRefresh, queue.calls[0].kind)
	}
	want := tasks.RefreshPayload{PropertyIDs: []int64{1}, ProspectIDs: []int64{2, 3}}
	if !reflect.DeepEqual(queue.calls[0].payload, want) {
		t.Fatalf("unexpected payload: %#v", queue.calls[0].payload)
	}
}

func TestRefreshRequiresIDs(t *testing.T) {
	queue := &mockQueue{}
	svc := New(queue)

	if _, err := svc.Refresh(context.Background(), nil, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnqueueErrorsPropagate(t *testing.T) {
	boom := errors.New("insert failed")
	queue := &mockQueue{enqueueFn: func(context.Context, string, any) (string, error) {
		return "", boom
	}}
	svc := New(queue)

	if _, err := svc.Populate(context.Background(), []int64{1}); !errors.Is(err, boom) {
		t.Fatalf("expected enqueue error, got %v", err)
	}
}
