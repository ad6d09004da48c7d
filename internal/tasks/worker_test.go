package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWorkerDefaults(t *testing.T) {
	w := NewWorker(nil, nil, Config{}, nil, zap.NewNop())

	if w.cfg.BatchSize != 100 {
		t.Errorf("BatchSize = %d, want 100", w.cfg.BatchSize)
	}
	if w.cfg.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", w.cfg.Interval)
	}
	if w.cfg.MaxAttempts != 10 {
		t.Errorf("MaxAttempts = %d, want 10", w.cfg.MaxAttempts)
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	w := NewWorker(nil, map[string]Handler{}, Config{}, nil, zap.NewNop())

	err := w.dispatch(context.Background(), task{id: "t1", kind: "unknown"})
	if err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("error = %v, want the kind named", err)
	}
}

func TestDispatchRunsHandler(t *testing.T) {
	var got []byte
	handlers := map[string]Handler{
		KindRefresh: func(ctx context.Context, payload []byte) error {
			got = payload
			return nil
		},
	}
	w := NewWorker(nil, handlers, Config{}, nil, zap.NewNop())

	err := w.dispatch(context.Background(), task{id: "t1", kind: KindRefresh, payload: []byte(`{"property_ids":[1]}`)})
	if err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if string(got) != `{"property_ids":[1]}` {
		t.Errorf("payload = %s, want the leased payload", got)
	}
}

func TestLeaseQueryShape(t *testing.T) {
	// Concurrent workers must never lease the same row.
	for _, want := range []string{"FOR UPDATE SKIP LOCKED", "status = 'pending'", "available_at <= now()", "LIMIT $1"} {
		if !strings.Contains(selectReadyTasksSQL, want) {
			t.Errorf("lease query missing %q", want)
		}
	}
}

func TestMarkFailedBacksOffAndCaps(t *testing.T) {
	for _, want := range []string{"attempt_count + 1", "LEAST(POWER(2, attempt_count+1), 300)", "'dead'"} {
		if !strings.Contains(markFailedSQL, want) {
			t.Errorf("markFailed query missing %q", want)
		}
	}
}
