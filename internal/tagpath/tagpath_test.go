package tagpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{"single segment", "programming", []string{"programming"}, false},
		{"nested", "a/b/c", []string{"a", "b", "c"}, false},
		{"segments are trimmed", " a / b ", []string{"a", "b"}, false},
		{"empty path", "", nil, true},
		{"whitespace path", "   ", nil, true},
		{"empty middle segment", "a//b", nil, true},
		{"leading separator", "/a", nil, true},
		{"trailing separator", "a/", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixes(t *testing.T) {
	segments, err := Split("a/b/c")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, Prefixes(segments))
}

func TestLevelAndName(t *testing.T) {
	assert.Equal(t, 0, Level("programming"))
	assert.Equal(t, 2, Level("a/b/c"))
	assert.Equal(t, "programming", Name("programming"))
	assert.Equal(t, "c", Name("a/b/c"))
}

func TestMatch(t *testing.T) {
	tags := []*domain.Tag{
		{ID: "t1", FullPath: "programming"},
		{ID: "t2", FullPath: "programming/js"},
		{ID: "t3", FullPath: "aide"},
		{ID: "t4", FullPath: "ai"},
	}

	matched := Match(tags, "programming")
	require.Len(t, matched, 2)
	assert.Equal(t, "t1", matched[0].ID)
	assert.Equal(t, "t2", matched[1].ID)

	// Boundary check: "ai" must not match "aide".
	matched = Match(tags, "ai")
	require.Len(t, matched, 1)
	assert.Equal(t, "t4", matched[0].ID)
}

func TestMatch_NoHits(t *testing.T) {
	tags := []*domain.Tag{{ID: "t1", FullPath: "writing"}}
	assert.Empty(t, Match(tags, "programming"))
}

func TestRewritePrefix(t *testing.T) {
	tests := []struct {
		path, oldPrefix, newPrefix, want string
	}{
		{"a/b", "a", "x", "x/b"},
		{"a", "a", "x", "x"},
		{"a/b/c", "a/b", "a/y", "a/y/c"},
		{"ab/c", "a", "x", "ab/c"}, // boundary respected
		{"other", "a", "x", "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RewritePrefix(tt.path, tt.oldPrefix, tt.newPrefix),
			"RewritePrefix(%q, %q, %q)", tt.path, tt.oldPrefix, tt.newPrefix)
	}
}
