package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/logger"
	"github.com/kailas-cloud/fedsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/fedsearch/internal/usecase/health"
	"github.com/kailas-cloud/fedsearch/internal/version"
)

// maxBodyBytes caps a search request body.
const maxBodyBytes = 64 << 10

// SearchService is the federated search use case.
type SearchService interface {
	GlobalSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error)
	QuickSearch(ctx context.Context, term string, p scope.Principal) (result.Response, error)
	SearchByEntityType(
		ctx context.Context, entityType, term string, page, size int, p scope.Principal,
	) (result.Response, error)
	AdminSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error)
}

// HealthChecker produces the health report.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search HTTP API.
type Server struct {
	search        SearchService
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrAccessDenied, http.StatusForbidden, CodeAccessDenied),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, CodeSearchUnavailable),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.GlobalSearch)
		r.Get("/search/quick", s.QuickSearch)
		r.Get("/search/{entityType}", s.SearchByEntityType)
		r.Post("/admin/search", s.AdminSearch)
	})
}

// GlobalSearch handles POST /api/v1/search.
func (s *Server) GlobalSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.search.GlobalSearch(r.Context(), req.toRaw(), PrincipalFromContext(r.Context()))
	s.respond(w, r, resp, err)
}

// AdminSearch handles POST /api/v1/admin/search.
func (s *Server) AdminSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}
	resp, err := s.search.AdminSearch(r.Context(), req.toRaw(), PrincipalFromContext(r.Context()))
	s.respond(w, r, resp, err)
}

// QuickSearch handles GET /api/v1/search/quick?q=.
func (s *Server) QuickSearch(w http.ResponseWriter, r *http.Request) {
	var term string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &term); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter q")
		return
	}
	resp, err := s.search.QuickSearch(r.Context(), term, PrincipalFromContext(r.Context()))
	s.respond(w, r, resp, err)
}

// SearchByEntityType handles GET /api/v1/search/{entityType}?q=&page=&size=.
func (s *Server) SearchByEntityType(w http.ResponseWriter, r *http.Request) {
	var entityType string
	err := runtime.BindStyledParameterWithOptions("simple", "entityType", chi.URLParam(r, "entityType"),
		&entityType, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid path parameter entityType")
		return
	}

	var (
		term       string
		page, size int
	)
	query := r.URL.Query()
	for _, p := range []struct {
		name string
		dest any
	}{
		{"q", &term},
		{"page", &page},
		{"size", &size},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, query, p.dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter "+p.name)
			return
		}
	}

	p := PrincipalFromContext(r.Context())
	resp, err := s.search.SearchByEntityType(r.Context(), entityType, term, page, size, p)
	s.respond(w, r, resp, err)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthFromDomain(&report, version.String()))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, resp result.Response, err error) {
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, responseFromDomain(&resp))
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (SearchRequest, bool) {
	var req SearchRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationHandler reports the offending field without the raw value.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	resp := ErrorResponse{Code: CodeValidationError, Message: domain.ErrValidation.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
		resp.Message = ve.Field + " " + ve.Reason
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees only the sentinel's text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
