package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	selectReadyTasksSQL = `
SELECT id, kind, payload
FROM stacker_tasks
WHERE status = 'pending' AND available_at <= now()
ORDER BY create_time ASC
FOR UPDATE SKIP LOCKED
LIMIT $1`

	markDoneSQL = `UPDATE stacker_tasks SET status='done', update_time=now() WHERE id=$1`

	markFailedSQL = `
UPDATE stacker_tasks
SET attempt_count = attempt_count + 1,
    status = CASE WHEN attempt_count + 1 >= $2 THEN 'dead' ELSE 'pending' END,
    available_at = now() + make_interval(secs => LEAST(POWER(2, attempt_count+1), 300)),
    update_time = now()
WHERE id = $1`
)

// Handler applies one leased task. Handlers run at-least-once and must
// tolerate re-runs of the same payload.
type Handler func(ctx context.Context, payload []byte) error

// Config controls batch size, polling cadence and the retry ceiling.
type Config struct {
	BatchSize   int           // rows leased per cycle
	Interval    time.Duration // poll interval
	MaxAttempts int           // failures before a task goes dead
}

// Worker leases pending task rows and dispatches them to the registered
// handlers. Failed tasks reschedule with exponential backoff until the
// attempt ceiling marks them dead.
type Worker struct {
	db        *sql.DB
	handlers  map[string]Handler
	cfg       Config
	processed *prometheus.CounterVec
	logger    *zap.Logger
}

// NewWorker constructs a Worker. The processed counter is optional and
// labeled by task kind and outcome.
func NewWorker(db *sql.DB, handlers map[string]Handler, cfg Config, processed *prometheus.CounterVec, logger *zap.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Worker{db: db, handlers: handlers, cfg: cfg, processed: processed, logger: logger}
}

// Run polls until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Task worker starting",
		zap.Int("batch", w.cfg.BatchSize),
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("max_attempts", w.cfg.MaxAttempts))
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Task worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				// Per-row backoff prevents hot-looping on a bad batch.
				w.logger.Error("Task batch failed", zap.Error(err))
			}
		}
	}
}

type task struct {
	id      string
	kind    string
	payload []byte
}

func (w *Worker) processOnce(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	batch, err := w.leaseBatch(ctx, tx, w.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return tx.Commit()
	}

	for _, t := range batch {
		if err := w.dispatch(ctx, t); err != nil {
			w.logger.Warn("Task failed",
				zap.String("id", t.id),
				zap.String("kind", t.kind),
				zap.Error(err))
			w.count(t.kind, "failed")
			if e := w.markFailed(ctx, tx, t.id); e != nil {
				w.logger.Error("markFailed error", zap.String("id", t.id), zap.Error(e))
			}
			continue
		}
		w.count(t.kind, "done")
		if e := w.markDone(ctx, tx, t.id); e != nil {
			w.logger.Error("markDone error", zap.String("id", t.id), zap.Error(e))
		}
	}

	return tx.Commit()
}

// leaseBatch locks and returns up to batchSize ready task rows.
func (w *Worker) leaseBatch(ctx context.Context, tx *sql.Tx, batchSize int) ([]task, error) {
	rows, err := tx.QueryContext(ctx, selectReadyTasksSQL, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []task
	for rows.Next() {
		var t task
		if err := rows.Scan(&t.id, &t.kind, &t.payload); err != nil {
			return nil, err
		}
		batch = append(batch, t)
	}
	return batch, rows.Err()
}

func (w *Worker) dispatch(ctx context.Context, t task) error {
	h, ok := w.handlers[t.kind]
	if !ok {
		return fmt.Errorf("no handler for task kind %q", t.kind)
	}
	return h(ctx, t.payload)
}

func (w *Worker) markDone(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, markDoneSQL, id)
	return err
}

func (w *Worker) markFailed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, markFailedSQL, id, w.cfg.MaxAttempts)
	return err
}

func (w *Worker) count(kind, outcome string) {
	if w.processed != nil {
		w.processed.WithLabelValues(kind, outcome).Inc()
	}
}
