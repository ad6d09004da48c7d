package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	actionuc "github.com/parcelworks/stacker/internal/usecase/action"
	eventsuc "github.com/parcelworks/stacker/internal/usecase/events"
	healthuc "github.com/parcelworks/stacker/internal/usecase/health"
	populateuc "github.com/parcelworks/stacker/internal/usecase/populate"
	searchuc "github.com/parcelworks/stacker/internal/usecase/search"
)

// fakeIndex implements the search usecase's Index contract.
type fakeIndex struct {
	searchFn func(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error)
	idListFn func(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error)
}

func (f *fakeIndex) Search(ctx context.Context, k kind.Kind, body map[string]any, srt domsearch.Sort, after []any, size int) (*domsearch.Page, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, k, body, srt, after, size)
	}
	return &domsearch.Page{}, nil
}

func (f *fakeIndex) IDList(ctx context.Context, k kind.Kind, body map[string]any, idField string) ([]int64, error) {
	if f.idListFn != nil {
		return f.idListFn(ctx, k, body, idField)
	}
	return nil, nil
}

type fakeCounter struct {
	totals    *domsearch.Totals
	err       error
	companyID int64
}

func (f *fakeCounter) TotalsByCompany(ctx context.Context, companyID int64, body map[string]any) (*domsearch.Totals, error) {
	f.companyID = companyID
	if f.err != nil {
		return nil, f.err
	}
	if f.totals != nil {
		return f.totals, nil
	}
	return &domsearch.Totals{}, nil
}

type fakeDeduper struct{}

func (fakeDeduper) OneProspectPerProperty(ctx context.Context, prospectIDs []int64) ([]int64, error) {
	return prospectIDs, nil
}

type queueCall struct {
	kind    string
	payload any
}

type fakeQueue struct {
	calls []queueCall
}

func (f *fakeQueue) Enqueue(ctx context.Context, kind string, payload any) (string, error) {
	f.calls = append(f.calls, queueCall{kind: kind, payload: payload})
	return "task-1", nil
}

type fakeAdmin struct {
	created []string
	deleted []string
}

func (f *fakeAdmin) CreateIndex(ctx context.Context, index string, definition map[string]any) error {
	f.created = append(f.created, index)
	return nil
}

func (f *fakeAdmin) DeleteIndex(ctx context.Context, index string) error {
	f.deleted = append(f.deleted, index)
	return nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

// testEnv bundles the fakes behind one wired router.
type testEnv struct {
	index   *fakeIndex
	counter *fakeCounter
	queue   *fakeQueue
	admin   *fakeAdmin
	dbErr   error
}

func (e *testEnv) router() http.Handler {
	if e.index == nil {
		e.index = &fakeIndex{}
	}
	if e.counter == nil {
		e.counter = &fakeCounter{}
	}
	if e.queue == nil {
		e.queue = &fakeQueue{}
	}
	if e.admin == nil {
		e.admin = &fakeAdmin{}
	}

	searchSvc := searchuc.New(e.index, e.counter)
	actionSvc := actionuc.New(searchSvc, fakeDeduper{}, e.queue)
	eventsSvc := eventsuc.New(e.queue)
	indexSvc := populateuc.New(nil, nil, e.admin, nil, "", 0)
	healthSvc := healthuc.New(fakePinger{}, fakePinger{err: e.dbErr}, fakePinger{})

	srv := NewServer(searchSvc, actionSvc, eventsSvc, indexSvc, healthSvc, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}
