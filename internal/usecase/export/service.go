// Package export writes resolved documents to CSV files. An export is
// identified by the id handed out when the action was accepted; the file
// lands in a directory named after that id so callers can retrieve it
// without another lookup.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/domain/schema"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	"github.com/parcelworks/stacker/internal/query"
)

// fetchSize bounds one document fetch; export id lists can be far larger
// than a single search page.
const fetchSize = 500

// Index fetches the documents an export streams out.
type Index interface {
	Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error)
}

// Service builds export files from index documents.
type Service struct {
	index Index
	dir   string
	now   func() time.Time
}

// New creates an export service writing under the given directory.
func New(index Index, dir string) *Service {
	return &Service{index: index, dir: dir, now: time.Now}
}

// Run writes one CSV file for the resolved ids: the shared field list as
// header, one row per document, rows in resolution order. Ids whose
// documents disappeared between resolution and export are skipped. The
// file path is <dir>/<exportID>/stacker-<kind plural>_<date>.csv; a rerun
// of the same export overwrites it.
func (s *Service) Run(ctx context.Context, exportID string, k kind.Kind, companyID int64, ids []int64) error {
	dir := filepath.Join(s.dir, exportID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("stacker-%s_%s.csv", plural(k), s.now().UTC().Format("2006-01-02"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := s.write(ctx, f, k, companyID, ids); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func (s *Service) write(ctx context.Context, f *os.File, k kind.Kind, companyID int64, ids []int64) error {
	fields := schema.Fields()
	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for start := 0; start < len(ids); start += fetchSize {
		end := min(start+fetchSize, len(ids))
		chunk := ids[start:end]

		docs, err := s.fetch(ctx, k, companyID, chunk)
		if err != nil {
			return err
		}
		for _, id := range chunk {
			doc, ok := docs[id]
			if !ok {
				continue
			}
			if err := w.Write(row(fields, doc)); err != nil {
				return fmt.Errorf("write export row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export file: %w", err)
	}
	return nil
}

// fetch loads one chunk of documents and keys them by id, so rows can be
// emitted in the order the action resolved them.
func (s *Service) fetch(ctx context.Context, k kind.Kind, companyID int64, chunk []int64) (map[int64]map[string]any, error) {
	filters, err := query.ApplyResolveOptions(nil, query.ResolveOptions{
		IDField: k.IDField(),
		IDList:  chunk,
	})
	if err != nil {
		return nil, err
	}
	body := query.Compile(query.Params{CompanyID: companyID, Filters: filters})

	page, err := s.index.Search(ctx, k, body, domsearch.Sort{}, nil, len(chunk))
	if err != nil {
		return nil, err
	}

	docs := make(map[int64]map[string]any, len(page.Results))
	for _, doc := range page.Results {
		if id, ok := docID(doc, k.IDField()); ok {
			docs[id] = doc
		}
	}
	return docs, nil
}

func plural(k kind.Kind) string {
	if k == kind.Property {
		return "properties"
	}
	return "prospects"
}

func docID(doc map[string]any, field string) (int64, bool) {
	switch t := doc[field].(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	}
	return 0, false
}

func row(fields []string, doc map[string]any) []string {
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = cell(doc[field])
	}
	return out
}

// cell renders one document value for CSV. Arrays, as the property index
// stores prospect attributes, join with a comma.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = cell(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
