package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

// Common index field names shared by every entity schema.
const (
	FieldID          = "id"
	FieldTenantID    = "tenant_id"
	FieldCompanyID   = "company_id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

var commonFields = map[string]bool{
	FieldID: true, FieldTenantID: true, FieldCompanyID: true, FieldName: true,
	FieldDescription: true, FieldStatus: true, FieldCreatedAt: true, FieldUpdatedAt: true,
}

// IsCommonField reports whether name is one of the fields every entity carries.
func IsCommonField(name string) bool { return commonFields[name] }

// Document is the read-side view of an indexed entity (immutable value object).
// The search engine never mutates documents; they are written by the
// change-propagation pipeline.
type Document struct {
	entityType  entity.Type
	id          string
	tenantID    string
	companyID   string
	name        string
	description string
	status      string
	createdAt   time.Time
	updatedAt   time.Time
	metadata    map[string]any
}

// FromFields hydrates a Document from flat index fields.
// Fields outside the common set become metadata with camelCase keys.
func FromFields(t entity.Type, id string, fields map[string]string) Document {
	d := Document{entityType: t, id: id, metadata: make(map[string]any)}
	for k, v := range fields {
		switch k {
		case FieldID:
			if d.id == "" {
				d.id = v
			}
		case FieldTenantID:
			d.tenantID = v
		case FieldCompanyID:
			d.companyID = v
		case FieldName:
			d.name = v
		case FieldDescription:
			d.description = v
		case FieldStatus:
			d.status = v
		case FieldCreatedAt:
			d.createdAt = parseMillis(v)
		case FieldUpdatedAt:
			d.updatedAt = parseMillis(v)
		default:
			d.metadata[CamelCase(k)] = parseScalar(v)
		}
	}
	return d
}

// Reconstruct creates a Document from already-typed values (tests, SDK fixtures).
func Reconstruct(
	t entity.Type, id, tenantID, companyID, name, description, status string,
	createdAt, updatedAt time.Time, metadata map[string]any,
) Document {
	return Document{
		entityType: t, id: id, tenantID: tenantID, companyID: companyID,
		name: name, description: description, status: status,
		createdAt: createdAt, updatedAt: updatedAt, metadata: metadata,
	}
}

// EntityType returns the entity variant.
func (d *Document) EntityType() entity.Type { return d.entityType }

// ID returns the identifier, unique only within its entity type.
func (d *Document) ID() string { return d.id }

// TenantID returns the owning tenant.
func (d *Document) TenantID() string { return d.tenantID }

// CompanyID returns the owning company, empty for Company documents.
func (d *Document) CompanyID() string { return d.companyID }

// Name returns the display name.
func (d *Document) Name() string { return d.name }

// Description returns the free-text description.
func (d *Document) Description() string { return d.description }

// Status returns the lifecycle status.
func (d *Document) Status() string { return d.status }

// CreatedAt returns the creation time (zero if unknown).
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-update time (zero if unknown).
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// Metadata returns the type-specific payload.
func (d *Document) Metadata() map[string]any { return d.metadata }

// CamelCase converts snake_case index field names to camelCase.
func CamelCase(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func parseMillis(v string) time.Time {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// parseScalar keeps numbers and booleans typed so metadata serializes naturally.
func parseScalar(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
