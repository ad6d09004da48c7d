package search

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
)

type mockIndex struct {
	searchFn func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error)
	idListFn func(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error)
	searches int
}

func (m *mockIndex) Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
	m.searches++
	if m.searchFn == nil {
		return &domsearch.Page{}, nil
	}
	return m.searchFn(ctx, k, body, srt, after, size)
}

func (m *mockIndex) IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error) {
	if m.idListFn == nil {
		return nil, nil
	}
	return m.idListFn(ctx, k, body, idField)
}

type mockCounter struct {
	totalsFn func(ctx context.Context, companyID int64, body map[string]any) (*domsearch.Totals, error)
	calls    int
}

func (m *mockCounter) TotalsByCompany(ctx context.Context, companyID int64, body map[string]any) (*domsearch.Totals, error) {
	m.calls++
	if m.totalsFn == nil {
		return &domsearch.Totals{}, nil
	}
	return m.totalsFn(ctx, companyID, body)
}
