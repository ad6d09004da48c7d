// Package projector rebuilds index documents from the relational tables.
// Every document field is computed in SQL so the index never sees a value
// the database did not produce.
package projector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/parcelworks/stacker/internal/db"
	"github.com/parcelworks/stacker/internal/domain/kind"
	"github.com/parcelworks/stacker/internal/domain/search"
)

const defaultBatch = 5000

// Repo projects relational rows into index documents.
type Repo struct {
	db *sql.DB
}

// New creates a projector over the given database handle.
func New(sqldb *sql.DB) *Repo {
	return &Repo{db: sqldb}
}

// ByIDs builds the documents for the given row ids. Ids without a backing
// row are silently absent from the result.
func (r *Repo) ByIDs(ctx context.Context, k kind.Kind, ids []int64) ([]db.BulkDoc, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, buildQuery(k, scopeIDs), ids)
	if err != nil {
		return nil, fmt.Errorf("project %s by ids: %w", k, err)
	}
	defer rows.Close()

	cols := columnsFor(k)
	var docs []db.BulkDoc
	for rows.Next() {
		doc, err := scanRow(rows, k, cols)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project %s by ids: %w", k, err)
	}
	return docs, nil
}

// ByCompany streams every document the company owns, invoking fn with
// batches of at most batch documents. A batch of zero or less uses the
// default batch size.
func (r *Repo) ByCompany(ctx context.Context, k kind.Kind, companyID int64, batch int, fn func([]db.BulkDoc) error) error {
	if batch <= 0 {
		batch = defaultBatch
	}

	rows, err := r.db.QueryContext(ctx, buildQuery(k, scopeCompany), []int64{companyID})
	if err != nil {
		return fmt.Errorf("project %s by company: %w", k, err)
	}
	defer rows.Close()

	cols := columnsFor(k)
	pending := make([]db.BulkDoc, 0, batch)
	for rows.Next() {
		doc, err := scanRow(rows, k, cols)
		if err != nil {
			return err
		}
		pending = append(pending, doc)
		if len(pending) == batch {
			if err := fn(pending); err != nil {
				return err
			}
			pending = make([]db.BulkDoc, 0, batch)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("project %s by company: %w", k, err)
	}
	if len(pending) > 0 {
		return fn(pending)
	}
	return nil
}

func scanRow(rows *sql.Rows, k kind.Kind, cols []column) (db.BulkDoc, error) {
	slots := newSlots(cols)
	if err := rows.Scan(slots...); err != nil {
		return db.BulkDoc{}, fmt.Errorf("scan %s row: %w", k, err)
	}
	doc, err := buildDoc(cols, slots)
	if err != nil {
		return db.BulkDoc{}, err
	}
	id, ok := doc[k.IDField()].(int64)
	if !ok {
		return db.BulkDoc{}, fmt.Errorf("%s row missing %s", k, k.IDField())
	}
	return db.BulkDoc{ID: strconv.FormatInt(id, 10), Source: doc}, nil
}

// newSlots allocates one scan target per column, typed by its decode rule.
func newSlots(cols []column) []any {
	slots := make([]any, len(cols))
	for i, c := range cols {
		switch c.dec {
		case decInt, decCount:
			slots[i] = new(sql.NullInt64)
		case decText:
			slots[i] = new(sql.NullString)
		case decBool:
			slots[i] = new(sql.NullBool)
		case decDate:
			slots[i] = new(sql.NullTime)
		default:
			slots[i] = new([]byte)
		}
	}
	return slots
}

// buildDoc converts scanned values into the document map. Scalar nulls stay
// null in the document; list columns always yield a list.
func buildDoc(cols []column, slots []any) (map[string]any, error) {
	doc := make(map[string]any, len(cols))
	for i, c := range cols {
		switch c.dec {
		case decInt:
			v := slots[i].(*sql.NullInt64)
			if v.Valid {
				doc[c.field] = v.Int64
			} else {
				doc[c.field] = nil
			}
		case decCount:
			doc[c.field] = slots[i].(*sql.NullInt64).Int64
		case decText:
			v := slots[i].(*sql.NullString)
			if v.Valid {
				doc[c.field] = v.String
			} else {
				doc[c.field] = nil
			}
		case decBool:
			doc[c.field] = slots[i].(*sql.NullBool).Bool
		case decDate:
			v := slots[i].(*sql.NullTime)
			if v.Valid {
				doc[c.field] = v.Time.Format(search.DateFormat)
			} else {
				doc[c.field] = nil
			}
		case decIntList:
			ids := []int64{}
			if raw := *slots[i].(*[]byte); len(raw) > 0 {
				if err := json.Unmarshal(raw, &ids); err != nil {
					return nil, fmt.Errorf("decode %s: %w", c.field, err)
				}
			}
			doc[c.field] = ids
		case decTextList:
			vals := []string{}
			if raw := *slots[i].(*[]byte); len(raw) > 0 {
				if err := json.Unmarshal(raw, &vals); err != nil {
					return nil, fmt.Errorf("decode %s: %w", c.field, err)
				}
			}
			doc[c.field] = vals
		case decStatus:
			raw := *slots[i].(*[]byte)
			if len(raw) == 0 {
				doc[c.field] = nil
				continue
			}
			var entries any
			if err := json.Unmarshal(raw, &entries); err != nil {
				return nil, fmt.Errorf("decode %s: %w", c.field, err)
			}
			doc[c.field] = entries
		}
	}
	return doc, nil
}
