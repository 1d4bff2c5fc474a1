package domain

import (
	"strings"
	"time"
)

// Tag is one node of the user-defined tag taxonomy.
// Tags form a hierarchy addressed by slash-delimited paths:
// "programming" -> "programming/go" -> "programming/go/concurrency".
// FullPath is the canonical identity; Name is the last path segment.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`                // Last path segment: "go"
	FullPath  string    `json:"full_path"`           // Canonical path: "programming/go"
	ParentID  string    `json:"parent_id,omitempty"` // Empty for root tags
	Level     int       `json:"level"`               // 0=root, equals the number of separators in FullPath
	Color     string    `json:"color,omitempty"`     // Hex color token for UI badges
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot returns true if this tag has no parent.
func (t *Tag) IsRoot() bool {
	return t.ParentID == ""
}

// ParentPath returns the full path with the last segment removed,
// or the empty string for root tags.
func (t *Tag) ParentPath() string {
	i := strings.LastIndex(t.FullPath, "/")
	if i < 0 {
		return ""
	}
	return t.FullPath[:i]
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// PromptTagRelation links one PromptVersion record to one Tag.
// The pair (PromptID, TagID) is unique. The relation references a specific
// version record, not a chain root.
type PromptTagRelation struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"prompt_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
