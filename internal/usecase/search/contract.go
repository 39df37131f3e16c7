package search

import (
	"context"

	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

// Executor searches the index of one entity type.
type Executor interface {
	EntityType() entity.Type
	Search(ctx context.Context, q *request.Query, sc scope.Scope) (result.TypeHits, error)
}
