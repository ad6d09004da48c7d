// Package chi is the HTTP transport. Handlers decode, validate, call the
// usecase services, and shape the responses; nothing here touches the
// indexes or the queue directly.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parcelworks/stacker/internal/domain"
	"github.com/parcelworks/stacker/internal/domain/change"
	actionuc "github.com/parcelworks/stacker/internal/usecase/action"
	eventsuc "github.com/parcelworks/stacker/internal/usecase/events"
	healthuc "github.com/parcelworks/stacker/internal/usecase/health"
	populateuc "github.com/parcelworks/stacker/internal/usecase/populate"
	searchuc "github.com/parcelworks/stacker/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeUnauthorized      = "unauthorized"
	codeNotFound          = "not_found"
	codeGroupStartMissing = "group_start_not_found"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the stacker HTTP API.
type Server struct {
	search        *searchuc.Service
	actions       *actionuc.Service
	events        *eventsuc.Service
	indexes       *populateuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	actions *actionuc.Service,
	events *eventsuc.Service,
	indexes *populateuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		actions: actions,
		events:  events,
		indexes: indexes,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnknownIndex, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrUnknownKind, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnknownEntity, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrGroupStartNotFound, http.StatusBadRequest, codeGroupStartMissing),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
	}
	return s
}

// Routes mounts every endpoint on the router. Middleware is the caller's
// responsibility.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/stacker/search", s.SearchStacker)
		r.Get("/stacker/counts", s.Counts)
		r.Route("/stacker/actions", func(r chi.Router) {
			r.Post("/archive", s.Archive)
			r.Post("/property-tag", s.TagProperties)
			r.Post("/prospect-tag", s.TagProspects)
			r.Post("/export", s.Export)
			r.Post("/push", s.Push)
			r.Post("/direct-mail", s.DirectMail)
			r.Post("/skip-trace", s.SkipTrace)
		})
		r.Post("/events/row-change", s.RowChange)
		r.Post("/events/tags", s.TagChange)
		r.Route("/admin", func(r chi.Router) {
			r.Post("/populate", s.Populate)
			r.Post("/refresh", s.Refresh)
			r.Put("/indexes", s.CreateIndexes)
			r.Delete("/indexes", s.DeleteIndexes)
		})
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchStacker handles POST /api/v1/stacker/search.
func (s *Server) SearchStacker(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	domReq, err := searchRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res, err := s.search.SearchStacker(r.Context(), domReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromResult(res))
}

// Counts handles GET /api/v1/stacker/counts.
func (s *Server) Counts(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "company_id must be a positive integer")
		return
	}

	totals, err := s.search.Counts(r.Context(), companyID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, countsDTO{
		Prospects:  totals.Prospects,
		Properties: totals.Properties,
	})
}

// Archive handles POST /api/v1/stacker/actions/archive.
func (s *Server) Archive(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Archive == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "archive is required")
		return
	}

	areq, err := actionRequestFromDTO(req.actionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.actions.Archive(r.Context(), areq, *req.Archive); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TagProperties handles POST /api/v1/stacker/actions/property-tag. The tag
// assignments land upstream; this schedules the index refresh that reads
// them back.
func (s *Server) TagProperties(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.actions.TagProperties(r.Context(), areq); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TagProspects handles POST /api/v1/stacker/actions/prospect-tag.
func (s *Server) TagProspects(w http.ResponseWriter, r *http.Request) {
	var req prospectTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req.actionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	toggles := actionuc.ProspectToggles{
		IsBlocked:       req.IsBlocked,
		DoNotCall:       req.DoNotCall,
		IsPriority:      req.IsPriority,
		IsQualifiedLead: req.IsQualifiedLead,
		WrongNumber:     req.WrongNumber,
		OptedOut:        req.OptedOut,
	}

	if err := s.actions.TagProspects(r.Context(), areq, toggles, req.Tags); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles POST /api/v1/stacker/actions/export. An empty resolution
// exports nothing and returns 204.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	exportID, err := s.actions.Export(r.Context(), areq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if exportID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, taskResponse{ID: exportID})
}

// Push handles POST /api/v1/stacker/actions/push. A body without
// import_type returns the estimate instead of scheduling the push.
func (s *Server) Push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req.actionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if req.ImportType == nil {
		est, err := s.actions.EstimatePush(r.Context(), areq)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pushEstimateResponse{New: est.New, Existing: est.Existing})
		return
	}

	id, err := s.actions.Push(r.Context(), areq, actionuc.PushParams{
		CampaignID: req.CampaignID,
		ImportType: *req.ImportType,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// DirectMail handles POST /api/v1/stacker/actions/direct-mail.
func (s *Server) DirectMail(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	id, err := s.actions.DirectMail(r.Context(), areq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// SkipTrace handles POST /api/v1/stacker/actions/skip-trace.
func (s *Server) SkipTrace(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	areq, err := actionRequestFromDTO(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	upload, err := s.actions.SkipTrace(r.Context(), areq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, skipTraceResponse{ID: upload.ID, TotalRows: upload.TotalRows})
}

// RowChange handles POST /api/v1/events/row-change.
func (s *Server) RowChange(w http.ResponseWriter, r *http.Request) {
	var req rowChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	row, err := change.NewRow(req.Entity, req.IDs, req.Changes)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	id, err := s.events.RowChange(r.Context(), row)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// TagChange handles POST /api/v1/events/tags.
func (s *Server) TagChange(w http.ResponseWriter, r *http.Request) {
	var req tagChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tags, err := change.NewTags(req.PropertyID, req.TagIDs, req.DistressIndicators)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	id, err := s.events.TagChange(r.Context(), tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// Populate handles POST /api/v1/admin/populate.
func (s *Server) Populate(w http.ResponseWriter, r *http.Request) {
	var req populateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.events.Populate(r.Context(), req.CompanyIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// Refresh handles POST /api/v1/admin/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := s.events.Refresh(r.Context(), req.PropertyIDs, req.ProspectIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, taskResponse{ID: id})
}

// CreateIndexes handles PUT /api/v1/admin/indexes.
func (s *Server) CreateIndexes(w http.ResponseWriter, r *http.Request) {
	if err := s.indexes.CreateIndexes(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIndexes handles DELETE /api/v1/admin/indexes.
func (s *Server) DeleteIndexes(w http.ResponseWriter, r *http.Request) {
	if err := s.indexes.DeleteIndexes(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals. Validation and group-resume failures echo their full
// detail; it is all derived from the request.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrValidation, domain.ErrGroupStartNotFound} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrUnknownIndex,
		domain.ErrUnknownKind,
		domain.ErrUnknownEntity,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
