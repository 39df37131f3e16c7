package chi

import (
	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/request"
	"github.com/kailas-cloud/fedsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/fedsearch/internal/usecase/health"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeAccessDenied      ErrorCode = "ACCESS_DENIED"
	CodeSearchUnavailable ErrorCode = "SEARCH_UNAVAILABLE"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// FuzzyOptions is the fuzzy block of a search request.
type FuzzyOptions struct {
	Enabled      bool `json:"enabled"`
	MaxEdits     *int `json:"maxEdits,omitempty"`
	PrefixLength *int `json:"prefixLength,omitempty"`
}

// SearchRequest is the body of POST /api/v1/search and /api/v1/admin/search.
type SearchRequest struct {
	Query               string            `json:"query"`
	EntityTypes         []string          `json:"entityTypes,omitempty"`
	Filters             map[string]string `json:"filters,omitempty"`
	Page                int               `json:"page"`
	Size                int               `json:"size"`
	SortBy              string            `json:"sortBy,omitempty"`
	SortDirection       string            `json:"sortDirection,omitempty"`
	Fuzzy               *FuzzyOptions     `json:"fuzzy,omitempty"`
	SynonymsEnabled     bool              `json:"synonymsEnabled"`
	HighlightingEnabled bool              `json:"highlightingEnabled"`
}

// ResultItem is one ranked hit.
type ResultItem struct {
	EntityType     string         `json:"entityType"`
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Status         string         `json:"status,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	RelevanceScore float64        `json:"relevanceScore"`
}

// Warning is a non-fatal problem reported next to results.
type Warning struct {
	EntityType string `json:"entityType,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// SearchResponse is the body of every successful search.
type SearchResponse struct {
	SearchID          string       `json:"searchId"`
	Results           []ResultItem `json:"results"`
	TotalResults      int          `json:"totalResults"`
	CurrentPage       int          `json:"currentPage"`
	TotalPages        int          `json:"totalPages"`
	PageSize          int          `json:"pageSize"`
	SearchDurationMs  int64        `json:"searchDurationMs"`
	Warnings          []Warning    `json:"warnings,omitempty"`
	FailedEntityTypes []string     `json:"failedEntityTypes,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
	Documents map[string]int    `json:"documents,omitempty"`
}

func (req *SearchRequest) toRaw() request.RawRequest {
	raw := request.RawRequest{
		Query:               req.Query,
		EntityTypes:         req.EntityTypes,
		Filters:             req.Filters,
		Page:                req.Page,
		Size:                req.Size,
		SortBy:              req.SortBy,
		SortDirection:       req.SortDirection,
		SynonymsEnabled:     req.SynonymsEnabled,
		HighlightingEnabled: req.HighlightingEnabled,
	}
	if req.Fuzzy != nil {
		raw.Fuzzy = request.RawFuzzy{
			Enabled:      req.Fuzzy.Enabled,
			MaxEdits:     req.Fuzzy.MaxEdits,
			PrefixLength: req.Fuzzy.PrefixLength,
		}
	}
	return raw
}

func responseFromDomain(r *result.Response) SearchResponse {
	items := make([]ResultItem, len(r.Results))
	for i, it := range r.Results {
		items[i] = ResultItem{
			EntityType:     string(it.EntityType),
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
		warnings = append(warnings, Warning{EntityType: string(w.EntityType), Code: w.Code, Message: w.Message})
	}

	return SearchResponse{
		SearchID:          r.SearchID,
		Results:           items,
		TotalResults:      r.TotalResults,
		CurrentPage:       r.CurrentPage,
		TotalPages:        r.TotalPages,
		PageSize:          r.PageSize,
		SearchDurationMs:  r.SearchDurationMs,
		Warnings:          warnings,
		FailedEntityTypes: typeStrings(r.FailedEntityTypes),
	}
}

func healthFromDomain(report *healthuc.Report, version string) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{
		Status:    string(report.Status),
		Version:   version,
		Checks:    checks,
		Documents: report.Documents,
	}
}

func typeStrings(types []entity.Type) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
