package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
)

// LocationSchema searches name, address and city. City is indexed twice:
// as TEXT for matching and as a TAG alias for exact filtering and sorting.
func LocationSchema() *Schema {
	idx := commonIndex(entity.Location).
		Text("address").
		Text("city").
		Tag("city").As("city_tag").Sortable().
		Tag("country").Sortable().
		MustBuild()

	filters := commonFilters()
	filters[filter.LocationID] = document.FieldID
	filters[filter.City] = "city_tag"
	filters[filter.Country] = "country"

	sorts := commonSorts()
	sorts[order.City] = "city_tag"
	sorts[order.Country] = "country"

	return &Schema{
		Type:       entity.Location,
		Index:      idx,
		TextFields: []string{document.FieldName, "address", "city"},
		Filters:    filters,
		Sorts:      sorts,
	}
}
