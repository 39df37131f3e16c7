package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
)

// CompanySchema searches name, industry and description. A company is its
// own company, so the companyId filter binds to id.
func CompanySchema() *Schema {
	idx := commonIndex(entity.Company).
		Text("industry").
		Tag("city").Sortable().
		Tag("country").Sortable().
		MustBuild()

	filters := commonFilters()
	filters[filter.CompanyID] = document.FieldID
	filters[filter.City] = "city"
	filters[filter.Country] = "country"

	sorts := commonSorts()
	sorts[order.City] = "city"
	sorts[order.Country] = "country"

	return &Schema{
		Type:       entity.Company,
		Index:      idx,
		TextFields: []string{document.FieldName, "industry", document.FieldDescription},
		Filters:    filters,
		Sorts:      sorts,
	}
}
