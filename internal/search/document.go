// Package search provides full-text search over prompts using Bleve.
// Only the latest version of each chain is indexed; superseded versions are
// reachable through the version history, not through search.
package search

import (
	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/tagpath"
)

// SearchDocument is the document structure for the Bleve index.
type SearchDocument struct {
	// ID is the prompt version id the document was built from.
	ID string `json:"id"`
	// RootID identifies the chain, stable across edits.
	RootID string `json:"root_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Text        string `json:"text,omitempty"`

	// TagPaths holds the full paths of the prompt's tags plus every ancestor
	// prefix, so a filter on "programming" also matches "programming/go".
	TagPaths []string `json:"tag_paths,omitempty"`
	// TagNames holds the leaf names for exact tag filtering and faceting.
	TagNames []string `json:"tag_names,omitempty"`

	Version   int `json:"version"`
	TimesUsed int `json:"times_used"`

	CreatedAt  int64 `json:"created_at"`            // Unix millis
	LastUsedAt int64 `json:"last_used_at,omitempty"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so they
// match the index mapping. Bleve would otherwise use the Go field names.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"root_id":    d.RootID,
		"title":      d.Title,
		"version":    d.Version,
		"times_used": d.TimesUsed,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if len(d.TagPaths) > 0 {
		m["tag_paths"] = d.TagPaths
	}
	if len(d.TagNames) > 0 {
		m["tag_names"] = d.TagNames
	}
	if d.LastUsedAt > 0 {
		m["last_used_at"] = d.LastUsedAt
	}

	return m
}

// PromptToSearchDocument converts a prompt version to a SearchDocument.
// Tag paths are expanded to include every ancestor prefix.
func PromptToSearchDocument(v *domain.PromptVersion, tagPaths []string) *SearchDocument {
	doc := &SearchDocument{
		ID:          v.ID,
		RootID:      v.RootID,
		Title:       v.Title,
		Description: v.Description,
		Text:        v.Text,
		Version:     v.Version,
		TimesUsed:   v.TimesUsed,
		CreatedAt:   v.CreatedAt.UnixMilli(),
	}
	if v.LastUsedAt != nil {
		doc.LastUsedAt = v.LastUsedAt.UnixMilli()
	}

	seen := make(map[string]bool)
	for _, path := range tagPaths {
		segments, err := tagpath.Split(path)
		if err != nil {
			continue
		}
		for _, prefix := range tagpath.Prefixes(segments) {
			if !seen[prefix] {
				seen[prefix] = true
				doc.TagPaths = append(doc.TagPaths, prefix)
			}
		}
		doc.TagNames = append(doc.TagNames, tagpath.Name(path))
	}

	return doc
}
