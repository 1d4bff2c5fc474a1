package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for prompt documents.
//
// Priorities:
//  1. Full-text search on title and prompt text with English stemming
//  2. Exact keyword matching on tag paths for hierarchical filtering
//  3. Numeric range queries on usage counters and timestamps
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Title - primary search target, highlighted.
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Description - searchable text.
	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("description", descFieldMapping)

	// Prompt text - searchable but not stored (can be large).
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = false
	textFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	// IDs - stored, not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	rootFieldMapping := bleve.NewTextFieldMapping()
	rootFieldMapping.Analyzer = keyword.Name
	rootFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("root_id", rootFieldMapping)

	// Tag paths - keyword analyzer for exact prefix matching.
	tagPathsFieldMapping := bleve.NewTextFieldMapping()
	tagPathsFieldMapping.Analyzer = keyword.Name
	tagPathsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tag_paths", tagPathsFieldMapping)

	// Tag names - exact filtering and faceting.
	tagNamesFieldMapping := bleve.NewTextFieldMapping()
	tagNamesFieldMapping.Analyzer = keyword.Name
	tagNamesFieldMapping.Store = true
	tagNamesFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tag_names", tagNamesFieldMapping)

	// Numeric fields for range queries and sorting.
	versionFieldMapping := bleve.NewNumericFieldMapping()
	versionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("version", versionFieldMapping)

	timesUsedFieldMapping := bleve.NewNumericFieldMapping()
	timesUsedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("times_used", timesUsedFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	lastUsedAtFieldMapping := bleve.NewNumericFieldMapping()
	lastUsedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("last_used_at", lastUsedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
