package health

import (
	"context"
	"errors"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates some entity types cannot be searched.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the entity index does not exist.
	CheckMissing CheckResult = "missing"
	// CheckIndexing indicates the index exists but is still being built.
	CheckIndexing CheckResult = "indexing"
	// CheckOpen indicates the executor circuit breaker is fast-failing.
	CheckOpen CheckResult = "open"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents map[string]int
}

// Index pairs an entity type with the index its executor queries.
type Index struct {
	Type entity.Type
	Name string
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	indexes  IndexInspector
	targets  []Index
	breakers []BreakerReporter
}

// New creates a Service. indexes and breakers may be nil.
func New(db DBPinger, indexes IndexInspector, targets []Index, breakers []BreakerReporter) *Service {
	return &Service{db: db, indexes: indexes, targets: targets, breakers: breakers}
}

// Check runs health checks against the database, every entity index and
// every executor breaker.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	docs := make(map[string]int)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks, Documents: docs}
	}
	checks["database"] = CheckOK

	if s.indexes != nil {
		for _, ix := range s.targets {
			key := "index:" + ix.Type.Slug()
			info, err := s.indexes.IndexInfo(ctx, ix.Name)
			switch {
			case errors.Is(err, db.ErrIndexNotFound):
				checks[key] = CheckMissing
			case err != nil:
				checks[key] = CheckError
			case info.Indexing:
				checks[key] = CheckIndexing
				docs[ix.Type.Slug()] = info.NumDocs
			default:
				checks[key] = CheckOK
				docs[ix.Type.Slug()] = info.NumDocs
			}
		}
	}

	for _, b := range s.breakers {
		key := "breaker:" + b.EntityType().Slug()
		if b.State() == breaker.Open {
			checks[key] = CheckOpen
		} else {
			checks[key] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError || v == CheckMissing || v == CheckOpen {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Documents: docs}
}
