// Package tasks owns the background work queue. All index maintenance is
// fire-and-forget from the call site: callers enqueue a task row in
// Postgres and the worker applies it with at-least-once semantics. There
// is no ordering guarantee across tasks, so every handler re-derives state
// instead of composing deltas.
package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Task kinds stored in stacker_tasks.kind.
const (
	KindPopulate     = "populate"
	KindRefresh      = "refresh"
	KindRowChange    = "row_change"
	KindTagChange    = "tag_change"
	KindArchive      = "archive"
	KindExport       = "export"
	KindPushCampaign = "push_campaign"
	KindSkiptrace    = "skiptrace"
)

const (
	bootstrapSQL = `
CREATE TABLE IF NOT EXISTS stacker_tasks (
    id            uuid PRIMARY KEY,
    kind          text NOT NULL,
    payload       jsonb NOT NULL,
    status        text NOT NULL DEFAULT 'pending',
    attempt_count integer NOT NULL DEFAULT 0,
    available_at  timestamptz NOT NULL DEFAULT now(),
    create_time   timestamptz NOT NULL DEFAULT now(),
    update_time   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS stacker_tasks_ready_idx
    ON stacker_tasks (status, available_at)`

	insertTaskSQL = `INSERT INTO stacker_tasks (id, kind, payload) VALUES ($1, $2, $3)`
)

// PopulatePayload loads both indexes for each company from scratch.
type PopulatePayload struct {
	CompanyIDs []int64 `json:"company_ids"`
}

// RefreshPayload re-projects the given documents from the relational rows.
type RefreshPayload struct {
	PropertyIDs []int64 `json:"property_ids,omitempty"`
	ProspectIDs []int64 `json:"prospect_ids,omitempty"`
}

// RowChangePayload applies field assignments to the documents referencing
// the changed entity rows.
type RowChangePayload struct {
	Entity  string         `json:"entity"`
	IDs     []int64        `json:"ids"`
	Changes map[string]any `json:"changes"`
}

// TagChangePayload refreshes property tag state. Exactly one of the three
// shapes is used: explicit state (PropertyID with TagIDs and
// DistressIndicators), a property lookup (PropertyIDs), or a prospect
// lookup (ProspectIDs, resolved to their properties first).
type TagChangePayload struct {
	PropertyID         int64   `json:"property_id,omitempty"`
	TagIDs             []int64 `json:"tag_ids,omitempty"`
	DistressIndicators int     `json:"distress_indicators,omitempty"`
	PropertyIDs        []int64 `json:"property_ids,omitempty"`
	ProspectIDs        []int64 `json:"prospect_ids,omitempty"`
}

// ArchivePayload flips is_archived on the resolved documents.
type ArchivePayload struct {
	Kind    string  `json:"kind"`
	IDs     []int64 `json:"ids"`
	Archive bool    `json:"archive"`
}

// ExportPayload streams the resolved documents to a CSV file.
type ExportPayload struct {
	ExportID  string  `json:"export_id"`
	CompanyID int64   `json:"company_id"`
	Kind      string  `json:"kind"`
	IDs       []int64 `json:"ids"`
}

// PushCampaignPayload refreshes the documents of pushed prospects and
// their properties once the campaign membership lands.
type PushCampaignPayload struct {
	CampaignID  int64   `json:"campaign_id"`
	ProspectIDs []int64 `json:"prospect_ids"`
}

// SkiptracePayload builds the skip-trace upload CSV for the resolved
// properties.
type SkiptracePayload struct {
	UploadID    string  `json:"upload_id"`
	CompanyID   int64   `json:"company_id"`
	PropertyIDs []int64 `json:"property_ids"`
}

// Queue enqueues task rows for the worker.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a queue over the given database handle.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

// Bootstrap creates the task table and its index when missing.
func (q *Queue) Bootstrap(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, bootstrapSQL); err != nil {
		return fmt.Errorf("bootstrap task table: %w", err)
	}
	return nil
}

// Enqueue inserts one task row and returns its id.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", kind, err)
	}
	id := uuid.NewString()
	if _, err := q.db.ExecContext(ctx, insertTaskSQL, id, kind, body); err != nil {
		return "", fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return id, nil
}
