package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
)

// ZoneSchema searches name, type and description.
func ZoneSchema() *Schema {
	idx := commonIndex(entity.Zone).
		Text("type").
		Numeric("location_id").
		MustBuild()

	filters := commonFilters()
	filters[filter.ZoneID] = document.FieldID
	filters[filter.LocationID] = "location_id"

	return &Schema{
		Type:       entity.Zone,
		Index:      idx,
		TextFields: []string{document.FieldName, "type", document.FieldDescription},
		Filters:    filters,
		Sorts:      commonSorts(),
	}
}
