package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/logger"
	"github.com/kailas-cloud/fedsearch/internal/metrics"
	"github.com/kailas-cloud/fedsearch/internal/tracing"
)

// DefaultTimeout bounds one fan-out when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// CoordinatorOptions tunes the fan-out.
type CoordinatorOptions struct {
	// Timeout is the per-request deadline shared by all executors.
	Timeout time.Duration
	// MaxConcurrent caps fan-outs in flight across the process. 0 means unlimited.
	MaxConcurrent int64
}

// Outcome is the joined result of one fan-out.
type Outcome struct {
	// Hits holds successful per-type results in request order.
	Hits     []result.TypeHits
	Warnings []result.Warning
	Failed   []entity.Type
}

// Coordinator runs the requested executors in parallel and joins them once.
type Coordinator struct {
	executors map[entity.Type]Executor
	timeout   time.Duration
	sem       *semaphore.Weighted
}

// NewCoordinator creates a coordinator over execs, keyed by entity type.
func NewCoordinator(execs []Executor, opts CoordinatorOptions) *Coordinator {
	c := &Coordinator{
		executors: make(map[entity.Type]Executor, len(execs)),
		timeout:   opts.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(opts.MaxConcurrent)
	}
	for _, e := range execs {
		c.executors[e.EntityType()] = e
	}
	return c
}

type typeResult struct {
	t    entity.Type
	hits result.TypeHits
	err  error
}

// Execute fans q out to one executor per requested type, all bound to sc.
// Executors still running at the deadline count as timed out. It fails only
// when no executor succeeded.
func (c *Coordinator) Execute(ctx context.Context, q *request.Query, sc scope.Scope) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return Outcome{}, fmt.Errorf("%w: no fan-out slot: %w", domain.ErrSearchUnavailable, err)
		}
		defer c.sem.Release(1)
	}
	metrics.SearchFanoutsInflight.Inc()
	defer metrics.SearchFanoutsInflight.Dec()

	ctx, span := tracing.Start(ctx, "search.fanout", trace.WithAttributes(
		attribute.String("scope", sc.String()),
		attribute.Int("entity_types", len(q.Types())),
	))
	defer span.End()

	types := q.Types()
	results := make(chan typeResult, len(types))
	pending := make(map[entity.Type]bool, len(types))
	for _, t := range types {
		exec, ok := c.executors[t]
		if !ok {
			results <- typeResult{t: t, err: domain.NewExecutorError(t, domain.ErrBackendUnavailable, errors.New("no executor registered"))}
			pending[t] = true
			continue
		}
		pending[t] = true
		go func() {
			hits, err := c.run(ctx, exec, q, sc)
			results <- typeResult{t: t, hits: hits, err: err}
		}()
	}

	done := make(map[entity.Type]typeResult, len(types))
join:
	for len(pending) > 0 {
		select {
		case r := <-results:
			delete(pending, r.t)
			done[r.t] = r
		case <-ctx.Done():
			break join
		}
	}
	// Results already delivered at the deadline are not timeouts.
drain:
	for len(pending) > 0 {
		select {
		case r := <-results:
			delete(pending, r.t)
			done[r.t] = r
		default:
			break drain
		}
	}
	for t := range pending {
		done[t] = typeResult{t: t, err: domain.NewExecutorError(t, domain.ErrTimeout, ctx.Err())}
	}

	var out Outcome
	var failures []error
	for _, t := range types {
		r := done[t]
		if r.err == nil {
			out.Hits = append(out.Hits, r.hits)
			continue
		}
		failures = append(failures, r.err)
		out.Failed = append(out.Failed, t)
		out.Warnings = append(out.Warnings, failureWarning(t, r.err))
		metrics.SearchExecutorFailuresTotal.WithLabelValues(string(t), kindLabel(r.err)).Inc()
		logger.FromContext(ctx).Warn("entity search failed",
			zap.String("entity_type", string(t)),
			zap.String("kind", kindLabel(r.err)),
			zap.Error(r.err),
		)
	}

	if len(out.Hits) == 0 && len(types) > 0 {
		span.SetStatus(codes.Error, "all executors failed")
		if allMalformed(failures) {
			return out, domain.NewValidationError("query", "rejected by every entity index")
		}
		return out, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, errors.Join(failures...))
	}
	span.SetAttributes(attribute.Int("failed", len(out.Failed)))
	return out, nil
}

func (c *Coordinator) run(ctx context.Context, exec Executor, q *request.Query, sc scope.Scope) (result.TypeHits, error) {
	t := exec.EntityType()
	ctx, span := tracing.Start(ctx, "search.executor", trace.WithAttributes(
		attribute.String("entity_type", string(t)),
	))
	defer span.End()

	start := time.Now()
	hits, err := exec.Search(ctx, q, sc)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, kindLabel(err))
	} else {
		span.SetAttributes(attribute.Int("total", hits.Total), attribute.Int("window", len(hits.Hits)))
	}
	metrics.SearchExecutorDuration.WithLabelValues(string(t), status).Observe(time.Since(start).Seconds())
	return hits, err
}

func allMalformed(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if !errors.Is(err, domain.ErrQueryMalformed) {
			return false
		}
	}
	return true
}

func kindLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrQueryMalformed):
		return "query_malformed"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	default:
		return "backend_unavailable"
	}
}

// failureWarning describes a failed type without backend details.
func failureWarning(t entity.Type, err error) result.Warning {
	switch {
	case errors.Is(err, domain.ErrQueryMalformed):
		return result.Warning{EntityType: t, Code: result.CodeQueryMalformed,
			Message: fmt.Sprintf("%s results omitted: query not accepted by this index", t)}
	case errors.Is(err, domain.ErrTimeout):
		return result.Warning{EntityType: t, Code: result.CodeTimeout,
			Message: fmt.Sprintf("%s results omitted: search timed out", t)}
	default:
		return result.Warning{EntityType: t, Code: result.CodeBackendUnavailable,
			Message: fmt.Sprintf("%s results omitted: index unavailable", t)}
	}
}
