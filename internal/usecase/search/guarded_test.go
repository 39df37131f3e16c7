package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

func TestGuard_OpensOnBackendFailures(t *testing.T) {
	fake := &fakeExecutor{t: entity.Sensor, err: domain.NewExecutorError(entity.Sensor, domain.ErrBackendUnavailable, errors.New("down"))}
	g := Guard(fake, breaker.Config{MaxFailures: 2, ResetTimeout: time.Hour}, zap.NewNop())
	q := mustQuery(t, request.RawRequest{})
	sc := scope.TenantScoped("t1")

	for range 2 {
		if _, err := g.Search(context.Background(), q, sc); !errors.Is(err, domain.ErrBackendUnavailable) {
			t.Fatalf("err = %v", err)
		}
	}
	if g.State() != breaker.Open {
		t.Fatalf("state = %v, want open", g.State())
	}

	_, err := g.Search(context.Background(), q, sc)
	if !errors.Is(err, domain.ErrBackendUnavailable) || !errors.Is(err, breaker.ErrOpen) {
		t.Errorf("err = %v, want open breaker as backend unavailable", err)
	}
	var ee *domain.ExecutorError
	if !errors.As(err, &ee) || ee.EntityType != entity.Sensor {
		t.Errorf("err = %#v, want ExecutorError for SENSOR", err)
	}
	if fake.callCount() != 2 {
		t.Errorf("calls = %d, want 2", fake.callCount())
	}
}

func TestGuard_MalformedDoesNotOpen(t *testing.T) {
	fake := &fakeExecutor{t: entity.Company, err: domain.NewExecutorError(entity.Company, domain.ErrQueryMalformed, errors.New("bad"))}
	g := Guard(fake, breaker.Config{MaxFailures: 1, ResetTimeout: time.Hour}, zap.NewNop())
	q := mustQuery(t, request.RawRequest{})

	for range 3 {
		if _, err := g.Search(context.Background(), q, scope.TenantScoped("t1")); !errors.Is(err, domain.ErrQueryMalformed) {
			t.Fatalf("err = %v", err)
		}
	}
	if g.State() != breaker.Closed {
		t.Errorf("state = %v, want closed", g.State())
	}
	if fake.callCount() != 3 {
		t.Errorf("calls = %d, want 3", fake.callCount())
	}
}

func TestGuard_PassesResults(t *testing.T) {
	fake := &fakeExecutor{t: entity.Zone, docs: docs("t1", "z", 2)}
	g := Guard(fake, breaker.Config{}, zap.NewNop())

	hits, err := g.Search(context.Background(), mustQuery(t, request.RawRequest{}), scope.TenantScoped("t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Total != 2 || g.EntityType() != entity.Zone {
		t.Errorf("hits = %+v", hits)
	}
}
