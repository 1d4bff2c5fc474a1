package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/promptdeck/promptdeck-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search prompts",
		Description: "Full-text search over the latest version of every chain",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching prompts.
type SearchInput struct {
	Query        string `query:"q" maxLength:"200" doc:"Search query; empty matches everything"`
	TagPath      string `query:"tag_path" maxLength:"200" doc:"Hierarchical tag filter, e.g. ai matches ai/agents but not aide"`
	TagNames     string `query:"tags" maxLength:"200" doc:"Comma-separated exact tag names to filter by"`
	MinTimesUsed int    `query:"min_times_used" minimum:"0" doc:"Minimum usage count"`
	Limit        int    `query:"limit" minimum:"1" maximum:"100" doc:"Max results (default 20)"`
	Offset       int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	SortBy       string `query:"sort_by" doc:"Sort field (default relevance)"`
	SortOrder    string `query:"sort_order" doc:"Sort direction (default desc)"`
	Facets       bool   `query:"facets" doc:"Include tag facet counts"`
	Highlight    bool   `query:"highlight" doc:"Include match highlighting"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID          string            `json:"id" doc:"Version ID"`
	RootID      string            `json:"root_id" doc:"Chain root ID"`
	Score       float64           `json:"score" doc:"Relevance score"`
	Title       string            `json:"title" doc:"Prompt title"`
	Description string            `json:"description,omitempty" doc:"Prompt description"`
	TagPaths    []string          `json:"tag_paths,omitempty" doc:"Attached tag paths"`
	Version     int               `json:"version" doc:"Version number"`
	TimesUsed   int               `json:"times_used" doc:"Usage counter"`
	Highlights  map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchFacetCount represents a facet value and its count.
type SearchFacetCount struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Number of matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string             `json:"query" doc:"Original search query"`
	Total  uint64             `json:"total" doc:"Total matches"`
	TookMs int64              `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult  `json:"hits" doc:"Search results"`
	Facets []SearchFacetCount `json:"facets,omitempty" doc:"Tag facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.TagPath = input.TagPath
	params.MinTimesUsed = input.MinTimesUsed
	params.IncludeFacets = input.Facets
	params.Highlight = input.Highlight

	if input.TagNames != "" {
		for name := range strings.SplitSeq(input.TagNames, ",") {
			if name = strings.TrimSpace(name); name != "" {
				params.TagNames = append(params.TagNames, name)
			}
		}
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	result, err := s.services.Prompt.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResult, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResult{
			ID:          h.ID,
			RootID:      h.RootID,
			Score:       h.Score,
			Title:       h.Title,
			Description: h.Description,
			TagPaths:    h.TagPaths,
			Version:     h.Version,
			TimesUsed:   h.TimesUsed,
			Highlights:  h.Highlights,
		}
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}
	for _, f := range result.Facets {
		resp.Facets = append(resp.Facets, SearchFacetCount{Value: f.Value, Count: f.Count})
	}

	return &SearchOutput{Body: resp}, nil
}
