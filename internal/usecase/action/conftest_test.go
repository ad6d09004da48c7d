package action

import (
	"context"

	"github.com/parcelworks/stacker/internal/domain/kind"
)

type idListCall struct {
	kind    kind.Kind
	body    map[string]any
	idField string
}

type mockSearcher struct {
	idListFn    func(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error)
	aggregateFn func(ctx context.Context, index string, body map[string]any) (map[string]any, error)
	idListCalls []idListCall
	aggIndex    string
	aggBody     map[string]any
}

func (m *mockSearcher) IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error) {
	m.idListCalls = append(m.idListCalls, idListCall{kind: k, body: body, idField: idField})
	if m.idListFn == nil {
		return nil, nil
	}
	return m.idListFn(ctx, k, body, idField)
}

func (m *mockSearcher) Aggregate(ctx context.Context, index string, body map[string]any) (map[string]any, error) {
	m.aggIndex, m.aggBody = index, body
	if m.aggregateFn == nil {
		return map[string]any{}, nil
	}
	return m.aggregateFn(ctx, index, body)
}

type mockDeduper struct {
	oneProspectFn func(ctx context.Context, prospectIDs []int64) ([]int64, error)
	calls         int
}

func (m *mockDeduper) OneProspectPerProperty(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	m.calls++
	if m.oneProspectFn == nil {
		return prospectIDs, nil
	}
	return m.oneProspectFn(ctx, prospectIDs)
}

type enqueued struct {
	kind    string
	payload any
}

type mockQueue struct {
	enqueueFn func(ctx context.Context, kind string, payload any) (string, error)
	tasks     []enqueued
}

func (m *mockQueue) Enqueue(ctx context.Context, kind string, payload any) (string, error) {
	m.tasks = append(m.tasks, enqueued{kind: kind, payload: payload})
	if m.enqueueFn == nil {
		return "task-1", nil
	}
	return m.enqueueFn(ctx, kind, payload)
}
