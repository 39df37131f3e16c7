package fedsearch

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

// EntityType is one searchable entity kind.
type EntityType string

// Entity types in canonical order. The order is also the first tie-break
// between equally ranked results.
const (
	Company   EntityType = "COMPANY"
	Location  EntityType = "LOCATION"
	Zone      EntityType = "ZONE"
	Sensor    EntityType = "SENSOR"
	Dashboard EntityType = "DASHBOARD"
	Report    EntityType = "REPORT"
)

// Sort directions.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

// Principal is the verified caller identity. The SDK trusts it as given.
type Principal struct {
	UserID   string
	TenantID string
	Roles    []string
	Admin    bool
}

// Fuzzy controls typo-tolerant matching. Nil MaxEdits means 1, nil
// PrefixLength means 1; MaxEdits is clamped to [0,2].
type Fuzzy struct {
	Enabled      bool
	MaxEdits     *int
	PrefixLength *int
}

// Request is a federated search request. Zero values select the defaults:
// all entity types, page 0, the default page size, relevance order.
type Request struct {
	Query               string
	EntityTypes         []EntityType
	Filters             map[string]string // status, city, country, sensorType, companyId, locationId, zoneId, tenantId
	Page                int
	Size                int
	SortBy              string // relevance (default), id, name, status, createdAt, updatedAt, city, country, sensorType
	SortDirection       string
	Fuzzy               *Fuzzy
	SynonymsEnabled     bool
	HighlightingEnabled bool
}

// Item is one ranked result.
type Item struct {
	EntityType     EntityType
	ID             string
	Name           string
	Description    string
	Status         string
	Metadata       map[string]any // carries "highlights" when highlighting is on
	RelevanceScore float64
}

// Warning is a non-fatal problem reported next to results.
type Warning struct {
	EntityType EntityType
	Code       string
	Message    string
}

// Response is one page of merged results.
type Response struct {
	SearchID          string
	Results           []Item
	TotalResults      int
	CurrentPage       int
	TotalPages        int
	PageSize          int
	SearchDurationMs  int64
	Warnings          []Warning
	FailedEntityTypes []EntityType
}

func (p Principal) toDomain() scope.Principal {
	return scope.Principal{UserID: p.UserID, TenantID: p.TenantID, Roles: p.Roles, Admin: p.Admin}
}

func (r *Request) toRaw() request.RawRequest {
	raw := request.RawRequest{
		Query:               r.Query,
		Filters:             r.Filters,
		Page:                r.Page,
		Size:                r.Size,
		SortBy:              r.SortBy,
		SortDirection:       r.SortDirection,
		SynonymsEnabled:     r.SynonymsEnabled,
		HighlightingEnabled: r.HighlightingEnabled,
	}
	for _, t := range r.EntityTypes {
		raw.EntityTypes = append(raw.EntityTypes, string(t))
	}
	if r.Fuzzy != nil {
		raw.Fuzzy = request.RawFuzzy{
			Enabled:      r.Fuzzy.Enabled,
			MaxEdits:     r.Fuzzy.MaxEdits,
			PrefixLength: r.Fuzzy.PrefixLength,
		}
	}
	return raw
}

func responseFromDomain(r *result.Response) Response {
	items := make([]Item, len(r.Results))
	for i, it := range r.Results {
		items[i] = Item{
			EntityType:     EntityType(it.EntityType),
			ID:             it.ID,
			Name:           it.Name,
			Description:    it.Description,
			Status:         it.Status,
			Metadata:       it.Metadata,
			RelevanceScore: it.Score,
		}
	}

	var warnings []Warning
	for _, w := range r.Warnings {
		warnings = append(warnings, Warning{EntityType: EntityType(w.EntityType), Code: w.Code, Message: w.Message})
	}

	var failed []EntityType
	for _, t := range r.FailedEntityTypes {
		failed = append(failed, EntityType(t))
	}

	return Response{
		SearchID:          r.SearchID,
		Results:           items,
		TotalResults:      r.TotalResults,
		CurrentPage:       r.CurrentPage,
		TotalPages:        r.TotalPages,
		PageSize:          r.PageSize,
		SearchDurationMs:  r.SearchDurationMs,
		Warnings:          warnings,
		FailedEntityTypes: failed,
	}
}

// EntityTypes returns every entity type in canonical order.
func EntityTypes() []EntityType {
	all := entity.All()
	out := make([]EntityType, len(all))
	for i, t := range all {
		out[i] = EntityType(t)
	}
	return out
}
