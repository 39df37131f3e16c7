package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// DashboardSchema searches name and description.
func DashboardSchema() *Schema {
	idx := commonIndex(entity.Dashboard).
		Tag("shared").
		MustBuild()

	return &Schema{
		Type:       entity.Dashboard,
		Index:      idx,
		TextFields: []string{document.FieldName, document.FieldDescription},
		Filters:    commonFilters(),
		Sorts:      commonSorts(),
	}
}
