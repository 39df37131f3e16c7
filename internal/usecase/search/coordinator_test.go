package search

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/fedsearch/internal/domain"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

func TestCoordinator_RequestOrder(t *testing.T) {
	fakes := newFakes()
	for _, f := range fakes {
		f.docs = docs("t1", "a", 1)
	}
	c := NewCoordinator(executorsOf(fakes), CoordinatorOptions{})
	q := mustQuery(t, request.RawRequest{EntityTypes: []string{"report", "company", "zone"}})

	out, err := c.Execute(context.Background(), q, scope.TenantScoped("t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []entity.Type
	for _, th := range out.Hits {
		got = append(got, th.Type)
	}
	want := []entity.Type{entity.Report, entity.Company, entity.Zone}
	if !slices.Equal(got, want) {
		t.Errorf("types = %v, want %v", got, want)
	}
}

func TestCoordinator_TimeoutMarksPending(t *testing.T) {
	fakes := newFakes()
	fakes[entity.Dashboard].block = true
	c := NewCoordinator(executorsOf(fakes), CoordinatorOptions{Timeout: 30 * time.Millisecond})
	q := mustQuery(t, request.RawRequest{})

	start := time.Now()
	out, err := c.Execute(context.Background(), q, scope.TenantScoped("t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("join took %v", elapsed)
	}
	if !slices.Equal(out.Failed, []entity.Type{entity.Dashboard}) {
		t.Errorf("Failed = %v", out.Failed)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Code != result.CodeTimeout {
		t.Errorf("warnings = %+v", out.Warnings)
	}
	if len(out.Hits) != 5 {
		t.Errorf("len(Hits) = %d, want 5", len(out.Hits))
	}
}

func TestCoordinator_AllTimedOut(t *testing.T) {
	fakes := map[entity.Type]*fakeExecutor{entity.Zone: {t: entity.Zone, block: true}}
	c := NewCoordinator(executorsOf(fakes), CoordinatorOptions{Timeout: 10 * time.Millisecond})
	q := mustQuery(t, request.RawRequest{EntityTypes: []string{"zone"}})

	_, err := c.Execute(context.Background(), q, scope.TenantScoped("t1"))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
	if !errors.Is(err, domain.ErrTimeout) {
		t.Errorf("err = %v, want to carry ErrTimeout", err)
	}
}

func TestCoordinator_MissingExecutor(t *testing.T) {
	fakes := map[entity.Type]*fakeExecutor{entity.Zone: {t: entity.Zone}}
	c := NewCoordinator(executorsOf(fakes), CoordinatorOptions{})
	q := mustQuery(t, request.RawRequest{EntityTypes: []string{"zone", "sensor"}})

	out, err := c.Execute(context.Background(), q, scope.TenantScoped("t1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(out.Failed, []entity.Type{entity.Sensor}) {
		t.Errorf("Failed = %v", out.Failed)
	}
}

func TestCoordinator_DeliveredResultBeatsDeadline(t *testing.T) {
	c := NewCoordinator(nil, CoordinatorOptions{})
	q := mustQuery(t, request.RawRequest{EntityTypes: []string{"report"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The result is buffered before the join starts, racing an expired context.
	for range 200 {
		out, err := c.Execute(ctx, q, scope.TenantScoped("t1"))
		if !errors.Is(err, domain.ErrSearchUnavailable) || errors.Is(err, domain.ErrTimeout) {
			t.Fatalf("err = %v, want unavailable without timeout", err)
		}
		if len(out.Warnings) != 1 || out.Warnings[0].Code != result.CodeBackendUnavailable {
			t.Fatalf("warnings = %+v", out.Warnings)
		}
	}
}

func TestCoordinator_FanoutCap(t *testing.T) {
	fakes := newFakes()
	c := NewCoordinator(executorsOf(fakes), CoordinatorOptions{Timeout: 20 * time.Millisecond, MaxConcurrent: 1})
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer c.sem.Release(1)

	_, err := c.Execute(context.Background(), mustQuery(t, request.RawRequest{}), scope.TenantScoped("t1"))
	if !errors.Is(err, domain.ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
	for typ, f := range fakes {
		if f.callCount() != 0 {
			t.Errorf("%s executor ran without a slot", typ)
		}
	}
}

func TestCoordinator_Defaults(t *testing.T) {
	c := NewCoordinator(nil, CoordinatorOptions{})
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.timeout)
	}
	if c.sem != nil {
		t.Error("semaphore set for unlimited fan-outs")
	}
}

func TestKindLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.NewExecutorError(entity.Zone, domain.ErrQueryMalformed, nil), "query_malformed"},
		{domain.NewExecutorError(entity.Zone, domain.ErrTimeout, nil), "timeout"},
		{domain.NewExecutorError(entity.Zone, domain.ErrBackendUnavailable, nil), "backend_unavailable"},
		{errors.New("other"), "backend_unavailable"},
	}
	for _, tt := range tests {
		if got := kindLabel(tt.err); got != tt.want {
			t.Errorf("kindLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
