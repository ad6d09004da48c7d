package export

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
)

type searchCall struct {
	kind kind.Kind
	body map[string]any
	size int
}

type mockIndex struct {
	searchFn func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error)
	calls    []searchCall
}

func (m *mockIndex) Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
	m.calls = append(m.calls, searchCall{kind: k, body: body, size: size})
	if m.searchFn != nil {
		return m.searchFn(ctx, k, body, srt, after, size)
	}
	return &domsearch.Page{}, nil
}
