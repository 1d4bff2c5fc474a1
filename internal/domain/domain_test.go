package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromptVersion_NextVersion(t *testing.T) {
	used := time.Now().Add(-time.Hour)
	root := &PromptVersion{
		ID:         "prompt-1",
		RootID:     "prompt-1",
		Version:    1,
		IsLatest:   true,
		Title:      "Summarize",
		Text:       "Summarize the following text",
		FolderID:   "folder-1",
		TimesUsed:  4,
		LastUsedAt: &used,
		CreatedAt:  time.Now().Add(-24 * time.Hour),
	}

	next := root.NextVersion("prompt-2", "Summarize v2", "tighter", "Summarize concisely")

	assert.Equal(t, "prompt-2", next.ID)
	assert.Equal(t, "prompt-1", next.RootID)
	assert.Equal(t, 2, next.Version)
	assert.True(t, next.IsLatest)
	assert.Equal(t, "Summarize v2", next.Title)

	// Usage counters carry forward unchanged.
	assert.Equal(t, 4, next.TimesUsed)
	assert.Equal(t, &used, next.LastUsedAt)
	assert.Equal(t, "folder-1", next.FolderID)
}

func TestPromptVersion_IsRoot(t *testing.T) {
	assert.True(t, (&PromptVersion{ID: "prompt-1", RootID: "prompt-1"}).IsRoot())
	assert.False(t, (&PromptVersion{ID: "prompt-2", RootID: "prompt-1"}).IsRoot())
}

func TestPromptVersion_MarkUsed(t *testing.T) {
	v := &PromptVersion{TimesUsed: 2}
	v.MarkUsed()

	assert.Equal(t, 3, v.TimesUsed)
	assert.NotNil(t, v.LastUsedAt)
}

func TestTag_ParentPath(t *testing.T) {
	tests := []struct {
		fullPath string
		want     string
	}{
		{"programming", ""},
		{"programming/go", "programming"},
		{"programming/go/concurrency", "programming/go"},
	}

	for _, tt := range tests {
		tag := &Tag{FullPath: tt.fullPath}
		assert.Equal(t, tt.want, tag.ParentPath(), "path %q", tt.fullPath)
	}
}

func TestTag_IsRoot(t *testing.T) {
	assert.True(t, (&Tag{}).IsRoot())
	assert.False(t, (&Tag{ParentID: "tag-1"}).IsRoot())
}
