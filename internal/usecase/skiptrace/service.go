// Package skiptrace builds the upload files an enrichment run starts
// from. The enrichment itself happens upstream; once its results land as
// prospect row changes, the regular event flow refreshes the indexes.
package skiptrace

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parcelworks/stacker/internal/domain/trace"
)

// Rows loads the relational rows an upload is built from.
type Rows interface {
	SkipTraceRows(ctx context.Context, companyID int64, propertyIDs []int64) ([]trace.Row, error)
}

// Service writes skip-trace upload files.
type Service struct {
	rows Rows
	dir  string
	now  func() time.Time
}

// New creates a skip-trace service writing under the given directory.
func New(rows Rows, dir string) *Service {
	return &Service{rows: rows, dir: dir, now: time.Now}
}

// BuildUpload writes the upload CSV for the resolved properties, one row
// per property, to <dir>/<uploadID>/PS_ST_<rows>_<timestamp>.csv. The row
// count in the name is the count actually written; properties gone from
// the database by the time the task runs are absent from both.
func (s *Service) BuildUpload(ctx context.Context, uploadID string, companyID int64, propertyIDs []int64) error {
	rows, err := s.rows.SkipTraceRows(ctx, companyID, propertyIDs)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.dir, uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	name := fmt.Sprintf("PS_ST_%d_%s.csv", len(rows), s.now().UTC().Format("2006-01-02_15-04-05"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}

	if err := write(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close upload file: %w", err)
	}
	return nil
}

func write(f *os.File, rows []trace.Row) error {
	w := csv.NewWriter(f)
	if err := w.Write(trace.Header()); err != nil {
		return fmt.Errorf("write upload header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Values()); err != nil {
			return fmt.Errorf("write upload row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush upload file: %w", err)
	}
	return nil
}
