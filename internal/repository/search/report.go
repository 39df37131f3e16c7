package search

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/document"
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// ReportSchema searches name, description and report type.
func ReportSchema() *Schema {
	idx := commonIndex(entity.Report).
		Text("report_type").
		Tag("format").
		MustBuild()

	return &Schema{
		Type:       entity.Report,
		Index:      idx,
		TextFields: []string{document.FieldName, document.FieldDescription, "report_type"},
		Filters:    commonFilters(),
		Sorts:      commonSorts(),
	}
}
