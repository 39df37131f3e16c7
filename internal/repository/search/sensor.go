package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
)

// SensorSchema searches name, serial number and sensor type.
func SensorSchema() *Schema {
	idx := commonIndex(entity.Sensor).
		Text("serial_number").
		Text("sensor_type").
		Tag("sensor_type").As("sensor_type_tag").Sortable().
		Numeric("zone_id").
		Numeric("location_id").
		MustBuild()

	filters := commonFilters()
	filters[filter.SensorType] = "sensor_type_tag"
	filters[filter.ZoneID] = "zone_id"
	filters[filter.LocationID] = "location_id"

	sorts := commonSorts()
	sorts[order.SensorType] = "sensor_type_tag"

	return &Schema{
		Type:       entity.Sensor,
		Index:      idx,
		TextFields: []string{document.FieldName, "serial_number", "sensor_type"},
		Filters:    filters,
		Sorts:      sorts,
	}
}
