package search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/metrics"
)

// GuardedExecutor wraps an Executor with a circuit breaker.
type GuardedExecutor struct {
	next Executor
	cb   *breaker.Breaker
}

// Guard wraps next with its own breaker. Malformed queries do not count as
// backend failures.
func Guard(next Executor, cfg breaker.Config, logger *zap.Logger) *GuardedExecutor {
	t := next.EntityType()
	cb := breaker.New(string(t), cfg,
		breaker.WithLogger(logger),
		breaker.WithFailurePredicate(countsAgainstBackend),
		breaker.WithStateHook(func(name string, s breaker.State) {
			metrics.SearchBreakerState.WithLabelValues(name).Set(float64(s))
		}),
	)
	metrics.SearchBreakerState.WithLabelValues(string(t)).Set(float64(breaker.Closed))
	return &GuardedExecutor{next: next, cb: cb}
}

func countsAgainstBackend(err error) bool {
	return !errors.Is(err, domain.ErrQueryMalformed) && !errors.Is(err, domain.ErrAccessDenied)
}

// EntityType returns the wrapped executor's type.
func (g *GuardedExecutor) EntityType() entity.Type { return g.next.EntityType() }

// State returns the breaker state.
func (g *GuardedExecutor) State() breaker.State { return g.cb.State() }

// Search runs the wrapped search unless the breaker is open.
func (g *GuardedExecutor) Search(ctx context.Context, q *request.Query, sc scope.Scope) (result.TypeHits, error) {
	var hits result.TypeHits
	err := g.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		hits, err = g.next.Search(ctx, q, sc)
		return err
	})
	if errors.Is(err, breaker.ErrOpen) {
		return result.TypeHits{}, domain.NewExecutorError(g.EntityType(), domain.ErrBackendUnavailable, err)
	}
	if err != nil {
		return result.TypeHits{}, err
	}
	return hits, nil
}
