package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/logger"
	"github.com/kailas-cloud/fedsearch/internal/metrics"
)

// Service defaults.
const (
	DefaultQuickSearchSize   = 10
	DefaultEntityMaxPageSize = 100
)

// Operation names used in logs and metrics.
const (
	OpGlobal     = "global"
	OpQuick      = "quick"
	OpEntityType = "entity_type"
	OpAdmin      = "admin"
)

// Options configures the search service.
type Options struct {
	Limits            request.Limits
	QuickSearchSize   int
	EntityMaxPageSize int
	Normalization     Normalization
}

func (o Options) withDefaults() Options {
	if o.QuickSearchSize <= 0 {
		o.QuickSearchSize = DefaultQuickSearchSize
	}
	if o.EntityMaxPageSize <= 0 {
		o.EntityMaxPageSize = DefaultEntityMaxPageSize
	}
	if o.Normalization == "" {
		o.Normalization = NormalizeMinMax
	}
	return o
}

// Service is the federated search entry point. Every operation resolves a
// scope from the principal before any executor runs.
type Service struct {
	coord *Coordinator
	opts  Options
	now   func() time.Time
	newID func() string
}

// New creates a search service.
func New(coord *Coordinator, opts Options) *Service {
	return &Service{
		coord: coord,
		opts:  opts.withDefaults(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// GlobalSearch searches the requested types within the caller's tenant.
func (s *Service) GlobalSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error) {
	start := s.now()
	sc, err := scope.Resolve(p)
	if err != nil {
		return s.fail(ctx, OpGlobal, err)
	}
	return s.run(ctx, OpGlobal, start, raw, sc)
}

// QuickSearch returns the first page of a short cross-type search.
func (s *Service) QuickSearch(ctx context.Context, term string, p scope.Principal) (result.Response, error) {
	start := s.now()
	sc, err := scope.Resolve(p)
	if err != nil {
		return s.fail(ctx, OpQuick, err)
	}
	raw := request.RawRequest{Query: term, Page: 0, Size: s.opts.QuickSearchSize}
	return s.run(ctx, OpQuick, start, raw, sc)
}

// SearchByEntityType searches a single type. size is clamped to the
// per-type page cap.
func (s *Service) SearchByEntityType(
	ctx context.Context, entityType, term string, page, size int, p scope.Principal,
) (result.Response, error) {
	start := s.now()
	sc, err := scope.Resolve(p)
	if err != nil {
		return s.fail(ctx, OpEntityType, err)
	}
	t, ok := entity.Parse(entityType)
	if !ok {
		return s.fail(ctx, OpEntityType, domain.NewValidationError("entityType", "unknown entity type"))
	}
	raw := request.RawRequest{
		Query:       term,
		EntityTypes: []string{string(t)},
		Page:        page,
		Size:        min(size, s.opts.EntityMaxPageSize),
	}
	return s.run(ctx, OpEntityType, start, raw, sc)
}

// AdminSearch searches across all tenants. Non-admins get ErrAccessDenied.
func (s *Service) AdminSearch(ctx context.Context, raw request.RawRequest, p scope.Principal) (result.Response, error) {
	start := s.now()
	sc, err := scope.ResolveAdmin(p)
	if err != nil {
		return s.fail(ctx, OpAdmin, err)
	}
	return s.run(ctx, OpAdmin, start, raw, sc)
}

func (s *Service) run(
	ctx context.Context, op string, start time.Time, raw request.RawRequest, sc scope.Scope,
) (result.Response, error) {
	q, warnings, err := request.Normalize(raw, s.opts.Limits)
	if err != nil {
		return s.fail(ctx, op, err)
	}

	outcome, err := s.coord.Execute(ctx, &q, sc)
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			logger.FromContext(ctx).Error("search failed on every entity type",
				zap.String("operation", op),
				zap.Strings("failed", typeStrings(outcome.Failed)),
				zap.Error(err),
			)
		}
		return s.fail(ctx, op, err)
	}

	items, total := Merge(outcome.Hits, &q, s.opts.Normalization)
	warnings = append(warnings, outcome.Warnings...)

	resp := result.Response{
		SearchID:          s.newID(),
		Results:           items,
		TotalResults:      total,
		CurrentPage:       q.Page(),
		TotalPages:        TotalPages(total, q.Size()),
		PageSize:          q.Size(),
		Warnings:          warnings,
		FailedEntityTypes: outcome.Failed,
		SearchDurationMs:  s.now().Sub(start).Milliseconds(),
	}

	status := "ok"
	if len(outcome.Failed) > 0 {
		status = "partial"
	}
	metrics.SearchRequestsTotal.WithLabelValues(op, status).Inc()
	logger.FromContext(ctx).Debug("search completed",
		zap.String("operation", op),
		zap.String("search_id", resp.SearchID),
		zap.String("scope", sc.String()),
		zap.Int("total", total),
		zap.Int("returned", len(items)),
		zap.Int64("duration_ms", resp.SearchDurationMs),
	)
	return resp, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) (result.Response, error) {
	metrics.SearchRequestsTotal.WithLabelValues(op, statusLabel(err)).Inc()
	if errors.Is(err, domain.ErrAccessDenied) {
		logger.FromContext(ctx).Warn("search denied", zap.String("operation", op), zap.Error(err))
	}
	return result.Response{}, err
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrAccessDenied):
		return "denied"
	default:
		return "unavailable"
	}
}

func typeStrings(types []entity.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
