package search

import (
	"github.com/kailas-cloud/fedsearch/internal/db"
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/order"
)

// KeyPrefix is the namespace shared by every entity index and document key.
const KeyPrefix = "fedsearch:"

// IndexName returns the FT index of an entity type, e.g. fedsearch:zone:idx.
func IndexName(t entity.Type) string {
	return KeyPrefix + t.Slug() + ":idx"
}

// DocPrefix returns the HASH key prefix of an entity type, e.g. fedsearch:zone:.
func DocPrefix(t entity.Type) string {
	return KeyPrefix + t.Slug() + ":"
}

// Schema binds an entity type to its index layout: which TEXT fields free
// text searches, which attribute each filter and sort key resolves to.
type Schema struct {
	Type       entity.Type
	Index      *db.IndexDefinition
	TextFields []string
	Filters    map[filter.Key]string
	Sorts      map[order.Key]string
}

// FilterAttr returns the index attribute a filter binds to on this type.
func (s *Schema) FilterAttr(k filter.Key) (*db.IndexField, bool) {
	attr, ok := s.Filters[k]
	if !ok {
		return nil, false
	}
	return s.Index.Field(attr)
}

// SortAttr returns the sortable attribute for a sort key, if this type has one.
func (s *Schema) SortAttr(k order.Key) (*db.IndexField, bool) {
	attr, ok := s.Sorts[k]
	if !ok {
		return nil, false
	}
	f, ok := s.Index.Field(attr)
	if !ok || !f.Sortable {
		return nil, false
	}
	return f, true
}

// commonIndex starts an index with the fields every entity carries.
func commonIndex(t entity.Type) *db.IndexBuilder {
	b := db.NewIndex(IndexName(t)).
		OnHash().
		Prefix(DocPrefix(t)).
		Numeric(document.FieldID).Sortable().
		TagWithOpts(document.FieldTenantID, ",", true)
	if t != entity.Company {
		b.Numeric(document.FieldCompanyID)
	}
	return b.
		Text(document.FieldName).Sortable().
		Text(document.FieldDescription).
		Tag(document.FieldStatus).Sortable().
		Numeric(document.FieldCreatedAt).Sortable().
		Numeric(document.FieldUpdatedAt).Sortable()
}

func commonFilters() map[filter.Key]string {
	return map[filter.Key]string{
		filter.Status:    document.FieldStatus,
		filter.TenantID:  document.FieldTenantID,
		filter.CompanyID: document.FieldCompanyID,
	}
}

func commonSorts() map[order.Key]string {
	return map[order.Key]string{
		order.ID:        document.FieldID,
		order.Name:      document.FieldName,
		order.Status:    document.FieldStatus,
		order.CreatedAt: document.FieldCreatedAt,
		order.UpdatedAt: document.FieldUpdatedAt,
	}
}

// Schemas returns the schema of every entity type in canonical order.
func Schemas() []*Schema {
	return []*Schema{
		CompanySchema(),
		LocationSchema(),
		ZoneSchema(),
		SensorSchema(),
		DashboardSchema(),
		ReportSchema(),
	}
}

