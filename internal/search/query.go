package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	TagPath      string   // Filter by tag path, hierarchical ("ai" matches "ai/agents")
	TagNames     []string // Filter by exact tag names
	MinTimesUsed int      // Minimum usage count

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "recent", "usage"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include tag facet counts in results
	Highlight     bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID          string            `json:"id"`
	RootID      string            `json:"root_id"`
	Score       float64           `json:"score"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	TagPaths    []string          `json:"tag_paths,omitempty"`
	Version     int               `json:"version"`
	TimesUsed   int               `json:"times_used"`
	Highlights  map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("tag_names", bleve.NewFacetRequest("tag_names", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("text")
	}

	searchRequest.Fields = []string{
		"id", "root_id", "title", "description", "tag_paths", "version", "times_used",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if r, ok := hit.Fields["root_id"].(string); ok {
			searchHit.RootID = r
		}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if d, ok := hit.Fields["description"].(string); ok {
			searchHit.Description = d
		}
		if v, ok := hit.Fields["version"].(float64); ok {
			searchHit.Version = int(v)
		}
		if u, ok := hit.Fields["times_used"].(float64); ok {
			searchHit.TimesUsed = int(u)
		}
		// Bleve returns a string for single-valued fields and []interface{}
		// for multi-valued ones.
		switch paths := hit.Fields["tag_paths"].(type) {
		case string:
			searchHit.TagPaths = []string{paths}
		case []interface{}:
			for _, p := range paths {
				if str, ok := p.(string); ok {
					searchHit.TagPaths = append(searchHit.TagPaths, str)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		if tagFacet, ok := searchResult.Facets["tag_names"]; ok {
			for _, term := range tagFacet.Terms.Terms() {
				result.Facets = append(result.Facets, FacetCount{
					Value: term.Term,
					Count: term.Count,
				})
			}
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Title match with highest boost.
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		// Description match.
		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(1.5)
		textQueries = append(textQueries, descMatch)

		// Prompt body match.
		textMatch := bleve.NewMatchQuery(params.Query)
		textMatch.SetField("text")
		textQueries = append(textQueries, textMatch)

		// Fuzzy matching for typo tolerance on title.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Hierarchical tag path filter: documents carry every ancestor prefix,
	// so an exact term match on the filter path covers the whole subtree.
	if params.TagPath != "" {
		tq := bleve.NewTermQuery(params.TagPath)
		tq.SetField("tag_paths")
		queries = append(queries, tq)
	}

	// Tag name filter (exact match, OR across names).
	if len(params.TagNames) > 0 {
		nameQueries := make([]query.Query, len(params.TagNames))
		for i, name := range params.TagNames {
			nq := bleve.NewTermQuery(name)
			nq.SetField("tag_names")
			nameQueries[i] = nq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(nameQueries...))
	}

	// Usage count filter.
	if params.MinTimesUsed > 0 {
		minUsed := float64(params.MinTimesUsed)
		maxUsed := math.MaxFloat64
		rangeQuery := bleve.NewNumericRangeQuery(&minUsed, &maxUsed)
		rangeQuery.SetField("times_used")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "usage":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"times_used"})
		} else {
			req.SortBy([]string{"-times_used"})
		}
	default:
		req.SortBy([]string{"-_score"})
	}
}
