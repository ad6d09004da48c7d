// Package action turns bulk action requests into ordered id lists and
// schedules the index maintenance each action requires. The relational
// side of every action (tag assignment, campaign membership, billing)
// lives upstream; this service owns the invariant that no such mutation
// stays invisible to search.
package action

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/kind"
	domsearch "github.com/parcelworks/stacker/internal/domain/search"
	"github.com/parcelworks/stacker/internal/query"
	"github.com/parcelworks/stacker/internal/tasks"
)

// Group resumes a bulk action from a known id: the resolved list is
// sliced starting at StartID for Size entries.
type Group struct {
	StartID int64
	Size    int
}

// Request selects the documents a bulk action targets. Kind picks the
// index unless the action forces one. IDList narrows the search to the
// given ids; Exclude drops ids from either path.
type Request struct {
	CompanyID int64
	Kind      kind.Kind
	Query     map[string]string
	Filters   *domsearch.Filters
	IDList    []int64
	Exclude   []int64
	Group     *Group
}

// ProspectToggles are the boolean prospect flags a tag action can flip.
// Nil fields stay untouched.
type ProspectToggles struct {
	IsBlocked       *bool
	DoNotCall       *bool
	IsPriority      *bool
	IsQualifiedLead *bool
	WrongNumber     *bool
	OptedOut        *bool
}

func (t ProspectToggles) fields() map[string]any {
	set := map[string]*bool{
		"is_blocked":        t.IsBlocked,
		"do_not_call":       t.DoNotCall,
		"is_priority":       t.IsPriority,
		"is_qualified_lead": t.IsQualifiedLead,
		"wrong_number":      t.WrongNumber,
		"opted_out":         t.OptedOut,
	}
	fields := make(map[string]any, len(set))
	for name, value := range set {
		if value != nil {
			fields[name] = *value
		}
	}
	return fields
}

// PushParams configure a campaign push.
type PushParams struct {
	CampaignID int64
	ImportType string
}

// PushEstimate splits the matched prospects into campaign newcomers and
// existing members.
type PushEstimate struct {
	New      int64
	Existing int64
}

// SkipTraceUpload identifies a scheduled skip-trace batch.
type SkipTraceUpload struct {
	ID        string
	TotalRows int
}

// resolveOptions adjust resolution per action: a forced kind or id field,
// the skip-traced and campaign constraints, and the scanned source field.
type resolveOptions struct {
	kind          kind.Kind
	idField       string
	source        string
	forceSkip     bool
	notInCampaign bool
}

// Service orchestrates bulk actions.
type Service struct {
	search Searcher
	dedupe Deduper
	queue  Queue
}

// New creates an action service.
func New(search Searcher, dedupe Deduper, queue Queue) *Service {
	return &Service{search: search, dedupe: dedupe, queue: queue}
}

// Resolve turns a request into the ordered id list it targets.
func (s *Service) Resolve(ctx context.Context, req Request) ([]int64, error) {
	return s.resolve(ctx, req, resolveOptions{})
}

// Archive schedules the is_archived flip on the resolved documents.
func (s *Service) Archive(ctx context.Context, req Request, archive bool) error {
	ids, err := s.resolve(ctx, req, resolveOptions{})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = s.queue.Enqueue(ctx, tasks.KindArchive, tasks.ArchivePayload{
		Kind:    req.Kind.String(),
		IDs:     ids,
		Archive: archive,
	})
	return err
}

// TagProperties schedules a tag-state refresh for the resolved
// properties. The assignment rows land upstream before the task runs;
// the refresh reads them back.
func (s *Service) TagProperties(ctx context.Context, req Request) error {
	ids, err := s.resolve(ctx, req, resolveOptions{kind: kind.Property, idField: "property_id"})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = s.queue.Enqueue(ctx, tasks.KindTagChange, tasks.TagChangePayload{PropertyIDs: ids})
	return err
}

// TagProspects schedules the flag assignments and, when tags were
// assigned or removed, a tag-state refresh for the resolved prospects'
// properties.
func (s *Service) TagProspects(ctx context.Context, req Request, toggles ProspectToggles, tags []int64) error {
	ids, err := s.resolve(ctx, req, resolveOptions{kind: kind.Prospect, idField: "prospect_id"})
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if fields := toggles.fields(); len(fields) > 0 {
		_, err = s.queue.Enqueue(ctx, tasks.KindRowChange, tasks.RowChangePayload{
			Entity:  "prospect",
			IDs:     ids,
			Changes: fields,
		})
		if err != nil {
			return err
		}
	}
	if len(tags) > 0 {
		if _, err := s.queue.Enqueue(ctx, tasks.KindTagChange, tasks.TagChangePayload{ProspectIDs: ids}); err != nil {
			return err
		}
	}
	return nil
}

// Export schedules a CSV export of the resolved documents and returns
// the export id. An empty resolution returns an empty id and schedules
// nothing.
func (s *Service) Export(ctx context.Context, req Request) (string, error) {
	ids, err := s.resolve(ctx, req, resolveOptions{})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}

	exportID := uuid.NewString()
	_, err = s.queue.Enqueue(ctx, tasks.KindExport, tasks.ExportPayload{
		ExportID:  exportID,
		CompanyID: req.CompanyID,
		Kind:      req.Kind.String(),
		IDs:       ids,
	})
	if err != nil {
		return "", err
	}
	return exportID, nil
}

// EstimatePush previews a campaign push: of the matched skip-traced
// prospects, how many are new to campaigns versus already in one.
func (s *Service) EstimatePush(ctx context.Context, req Request) (*PushEstimate, error) {
	ids, err := s.resolve(ctx, req, resolveOptions{forceSkip: true, source: "prospect_id"})
	if err != nil {
		return nil, err
	}

	filters, err := query.ApplyResolveOptions(req.Filters, query.ResolveOptions{
		IDField:   "prospect_id",
		IDList:    req.IDList,
		ForceSkip: true,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate push: %w", err)
	}
	body := query.Compile(query.Params{
		CompanyID: req.CompanyID,
		Query:     req.Query,
		Filters:   filters,
		IDField:   "prospect_id",
		Aggregates: map[string]any{
			"new_campaign_prospects": map[string]any{
				"filter": map[string]any{"term": map[string]any{"campaigns": 0}},
			},
		},
	})

	aggs, err := s.search.Aggregate(ctx, kind.Prospect.IndexBase(), body)
	if err != nil {
		return nil, err
	}
	fresh, err := newCampaignCount(aggs)
	if err != nil {
		return nil, err
	}
	return &PushEstimate{New: fresh, Existing: int64(len(ids)) - fresh}, nil
}

// Push resolves the skip-traced prospects and schedules the campaign
// push. Import type "new" restricts to prospects outside any campaign.
func (s *Service) Push(ctx context.Context, req Request, p PushParams) (string, error) {
	if p.ImportType != "all" && p.ImportType != "new" {
		return "", domain.NewValidation("import_type", "must be all or new")
	}
	ids, err := s.resolve(ctx, req, resolveOptions{
		idField:       "prospect_id",
		forceSkip:     true,
		notInCampaign: p.ImportType == "new",
	})
	if err != nil {
		return "", err
	}
	return s.queue.Enqueue(ctx, tasks.KindPushCampaign, tasks.PushCampaignPayload{
		CampaignID:  p.CampaignID,
		ProspectIDs: ids,
	})
}

// DirectMail resolves the matched prospects, keeps one per property, and
// schedules the direct mail push.
func (s *Service) DirectMail(ctx context.Context, req Request) (string, error) {
	ids, err := s.resolve(ctx, req, resolveOptions{source: "prospect_id"})
	if err != nil {
		return "", err
	}
	ids, err = s.dedupe.OneProspectPerProperty(ctx, ids)
	if err != nil {
		return "", err
	}
	return s.queue.Enqueue(ctx, tasks.KindPushCampaign, tasks.PushCampaignPayload{ProspectIDs: ids})
}

// SkipTrace resolves the matched property ids and schedules the
// skip-trace upload build.
func (s *Service) SkipTrace(ctx context.Context, req Request) (*SkipTraceUpload, error) {
	ids, err := s.resolve(ctx, req, resolveOptions{idField: "property_id"})
	if err != nil {
		return nil, err
	}

	uploadID := uuid.NewString()
	_, err = s.queue.Enqueue(ctx, tasks.KindSkiptrace, tasks.SkiptracePayload{
		UploadID:    uploadID,
		CompanyID:   req.CompanyID,
		PropertyIDs: ids,
	})
	if err != nil {
		return nil, err
	}
	return &SkipTraceUpload{ID: uploadID, TotalRows: len(ids)}, nil
}

// resolve compiles the request into a search body, scans the matching
// ids, and applies the group slice.
func (s *Service) resolve(ctx context.Context, req Request, opts resolveOptions) ([]int64, error) {
	if req.CompanyID <= 0 {
		return nil, domain.NewValidation("company_id", "is required")
	}
	k := opts.kind
	if k == "" {
		k = req.Kind
	}
	if !k.IsValid() {
		return nil, domain.NewValidation("type", "must be property or prospect")
	}

	idField := opts.idField
	if idField == "" {
		idField = k.IDField()
	}
	source := opts.source
	if source == "" {
		source = idField
	}

	filters, err := query.ApplyResolveOptions(req.Filters, query.ResolveOptions{
		IDField:       idField,
		IDList:        req.IDList,
		ForceSkip:     opts.forceSkip,
		NotInCampaign: opts.notInCampaign,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s ids: %w", k, err)
	}

	body := query.Compile(query.Params{
		CompanyID: req.CompanyID,
		Query:     req.Query,
		Filters:   filters,
		IDField:   idField,
		Exclude:   req.Exclude,
		Source:    source,
	})
	ids, err := s.search.IDList(ctx, k, body, source)
	if err != nil {
		return nil, err
	}
	return sliceGroup(ids, req.Group)
}

// sliceGroup cuts the resolved list from the index of the group's start
// id for its size. The start id must be present in the list.
func sliceGroup(ids []int64, g *Group) ([]int64, error) {
	if g == nil {
		return ids, nil
	}
	for i, id := range ids {
		if id == g.StartID {
			end := i + g.Size
			if end > len(ids) {
				end = len(ids)
			}
			return ids[i:end], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrGroupStartNotFound, g.StartID)
}

func newCampaignCount(aggs map[string]any) (int64, error) {
	bucket, ok := aggs["new_campaign_prospects"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("aggregation new_campaign_prospects missing")
	}
	count, ok := bucket["doc_count"].(float64)
	if !ok {
		return 0, fmt.Errorf("aggregation new_campaign_prospects missing doc_count")
	}
	return int64(count), nil
}
