package audit

import (
	"context"
	"fmt"

	"github.com/promptdeck/promptdeck-server/internal/store"
	"github.com/promptdeck/promptdeck-server/internal/tagpath"
)

// Issue kinds reported by ValidateDatabaseState.
const (
	IssueLatestCount      = "latest_count"
	IssueDanglingRelation = "dangling_relation"
	IssueBrokenParent     = "broken_parent"
	IssueBadLevel         = "bad_level"
)

// Issue is one structural inconsistency found in the store.
type Issue struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entityId"`
	Message  string `json:"message"`
}

// ValidateDatabaseState scans the store for structural inconsistencies:
// roots without exactly one latest version, relations referencing missing
// records, and tags whose parent chain or level does not match their path.
// It reports issues rather than failing, so it can run as a health check.
func ValidateDatabaseState(ctx context.Context, s *store.Store) ([]Issue, error) {
	var issues []Issue

	versions, err := s.AllVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan versions: %w", err)
	}

	versionIDs := make(map[string]bool, len(versions))
	latestPerRoot := make(map[string]int)
	for _, v := range versions {
		versionIDs[v.ID] = true
		if v.IsLatest {
			latestPerRoot[v.RootID]++
		} else if _, seen := latestPerRoot[v.RootID]; !seen {
			latestPerRoot[v.RootID] = 0
		}
	}
	for rootID, count := range latestPerRoot {
		if count != 1 {
			issues = append(issues, Issue{
				Kind:     IssueLatestCount,
				EntityID: rootID,
				Message:  fmt.Sprintf("root has %d latest versions, want exactly 1", count),
			})
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}

	tagIDs := make(map[string]bool, len(tags))
	tagsByPath := make(map[string]string, len(tags))
	for _, t := range tags {
		tagIDs[t.ID] = true
		tagsByPath[t.FullPath] = t.ID
	}
	for _, t := range tags {
		if level := tagpath.Level(t.FullPath); level != t.Level {
			issues = append(issues, Issue{
				Kind:     IssueBadLevel,
				EntityID: t.ID,
				Message:  fmt.Sprintf("tag %q has level %d, path implies %d", t.FullPath, t.Level, level),
			})
		}

		parentPath := t.ParentPath()
		switch {
		case parentPath == "":
			if t.ParentID != "" {
				issues = append(issues, Issue{
					Kind:     IssueBrokenParent,
					EntityID: t.ID,
					Message:  fmt.Sprintf("root tag %q has a parent id", t.FullPath),
				})
			}
		case t.ParentID == "" || tagsByPath[parentPath] != t.ParentID:
			issues = append(issues, Issue{
				Kind:     IssueBrokenParent,
				EntityID: t.ID,
				Message:  fmt.Sprintf("tag %q does not point at existing parent %q", t.FullPath, parentPath),
			})
		}
	}

	relations, err := s.AllRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan relations: %w", err)
	}
	for _, rel := range relations {
		if !versionIDs[rel.PromptID] {
			issues = append(issues, Issue{
				Kind:     IssueDanglingRelation,
				EntityID: rel.ID,
				Message:  fmt.Sprintf("relation references missing prompt version %s", rel.PromptID),
			})
		}
		if !tagIDs[rel.TagID] {
			issues = append(issues, Issue{
				Kind:     IssueDanglingRelation,
				EntityID: rel.ID,
				Message:  fmt.Sprintf("relation references missing tag %s", rel.TagID),
			})
		}
	}

	return issues, nil
}
