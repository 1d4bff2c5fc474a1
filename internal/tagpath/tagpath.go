// Package tagpath implements parsing and matching of slash-delimited tag paths.
// A path like "programming/go/concurrency" names a tag and all of its ancestors;
// the stateful resolution against the store lives in the store package.
package tagpath

import (
	"strings"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
)

// Separator delimits path segments.
const Separator = "/"

// Split parses a path into trimmed segments.
// Returns a validation error for empty input or empty segments
// ("a//b", "/a", "a/" are all rejected).
func Split(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.Validation("tag path must not be empty")
	}

	raw := strings.Split(path, Separator)
	segments := make([]string, 0, len(raw))
	for i, seg := range raw {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, errors.Validationf("tag path %q has an empty segment at position %d", path, i)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// Join builds the canonical path from segments.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// Prefixes returns every ancestor prefix of the path in ascending order,
// ending with the full path itself: "a/b/c" -> ["a", "a/b", "a/b/c"].
func Prefixes(segments []string) []string {
	prefixes := make([]string, len(segments))
	for i := range segments {
		prefixes[i] = Join(segments[:i+1])
	}
	return prefixes
}

// Level returns the 0-based depth of a canonical path,
// which equals the number of separators it contains.
func Level(path string) int {
	return strings.Count(path, Separator)
}

// Name returns the last segment of a canonical path.
func Name(path string) string {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// Match returns the tag whose FullPath equals path plus every tag whose
// FullPath lives underneath it. The separator boundary check is mandatory:
// "ai" must not match "aide".
func Match(tags []*domain.Tag, path string) []*domain.Tag {
	prefix := path + Separator
	var matched []*domain.Tag
	for _, t := range tags {
		if t.FullPath == path || strings.HasPrefix(t.FullPath, prefix) {
			matched = append(matched, t)
		}
	}
	return matched
}

// RewritePrefix replaces the leading oldPrefix of path with newPrefix,
// respecting segment boundaries. Returns the path unchanged when it is
// not equal to oldPrefix and not underneath it.
func RewritePrefix(path, oldPrefix, newPrefix string) string {
	if path == oldPrefix {
		return newPrefix
	}
	if strings.HasPrefix(path, oldPrefix+Separator) {
		return newPrefix + path[len(oldPrefix):]
	}
	return path
}
