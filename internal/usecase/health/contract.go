package health

import (
	"context"

	"github.com/kailas-cloud/fedsearch/internal/breaker"
	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reads index metadata.
type IndexInspector interface {
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}

// BreakerReporter exposes the circuit breaker state of one entity executor.
type BreakerReporter interface {
	EntityType() entity.Type
	State() breaker.State
}
