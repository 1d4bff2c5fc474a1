package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/color"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

func TestResolvePath_MaterializesAncestors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	leaf, err := s.ResolvePath(ctx, "a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "c", leaf.Name)
	assert.Equal(t, "a/b/c", leaf.FullPath)
	assert.Equal(t, 2, leaf.Level)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)

	// Ancestors exist and the parent chain reconstructs the prefix path.
	byPath := make(map[string]string)
	for _, tag := range tags {
		byPath[tag.FullPath] = tag.ID
	}
	assert.Equal(t, byPath["a/b"], leaf.ParentID)

	mid, err := s.GetTagByPath(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, byPath["a"], mid.ParentID)
	assert.Equal(t, 1, mid.Level)

	root, err := s.GetTagByPath(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, 0, root.Level)
}

func TestResolvePath_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.ResolvePath(ctx, "a/b/c")
	require.NoError(t, err)

	second, err := s.ResolvePath(ctx, "a/b/c")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	// Second resolution created nothing.
	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestResolvePath_SharesAncestors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b, err := s.ResolvePath(ctx, "a/b")
	require.NoError(t, err)
	c, err := s.ResolvePath(ctx, "a/c")
	require.NoError(t, err)

	assert.Equal(t, b.ParentID, c.ParentID)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3) // a, a/b, a/c
}

func TestResolvePath_RejectsBadPaths(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, path := range []string{"", "  ", "a//b", "/a", "a/"} {
		_, err := s.ResolvePath(ctx, path)
		assert.True(t, errors.Is(err, errors.ErrValidation), "path %q", path)
	}
}

func TestReplacePromptTags_DeleteThenInsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "Summarize")

	_, err := s.ReplacePromptTags(ctx, v.ID, []string{"writing", "writing/fiction"})
	require.NoError(t, err)

	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"writing", "writing/fiction"}, paths)

	// Wholesale replacement, not a diff.
	_, err = s.ReplacePromptTags(ctx, v.ID, []string{"programming/go"})
	require.NoError(t, err)

	paths, err = s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"programming/go"}, paths)
}

func TestReplacePromptTags_EmptyClearsAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "Summarize")
	_, err := s.ReplacePromptTags(ctx, v.ID, []string{"a/b", "c"})
	require.NoError(t, err)

	_, err = s.ReplacePromptTags(ctx, v.ID, nil)
	require.NoError(t, err)

	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestReplacePromptTags_DuplicatesCollapse(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "Summarize")

	leaves, err := s.ReplacePromptTags(ctx, v.ID, []string{"ai", "ai", " ai "})
	require.NoError(t, err)
	assert.Len(t, leaves, 1)

	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai"}, paths)
}

func TestReplacePromptTags_UnknownPrompt(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.ReplacePromptTags(context.Background(), "prompt-missing", []string{"a"})
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestGetPromptsForTag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "One")
	v2 := createTestPrompt(t, s, "Two")

	tag, err := s.ResolvePath(ctx, "shared")
	require.NoError(t, err)

	require.NoError(t, s.AssociatePromptsWithTag(ctx, tag.ID, []string{v1.ID, v2.ID}))

	promptIDs, err := s.GetPromptsForTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{v1.ID, v2.ID}, promptIDs)
}

func TestGetPromptsForTag_UnknownTag(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetPromptsForTag(context.Background(), "tag-missing")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestAssociatePromptsWithTag_UnknownPrompt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag, err := s.ResolvePath(ctx, "t")
	require.NoError(t, err)

	err = s.AssociatePromptsWithTag(ctx, tag.ID, []string{"prompt-missing"})
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestAssociatePromptsWithTag_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "One")
	tag, err := s.ResolvePath(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, s.AssociatePromptsWithTag(ctx, tag.ID, []string{v.ID}))
	require.NoError(t, s.AssociatePromptsWithTag(ctx, tag.ID, []string{v.ID}))

	promptIDs, err := s.GetPromptsForTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Len(t, promptIDs, 1)
}

func TestRemoveAllTagAssociations(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "One")
	v2 := createTestPrompt(t, s, "Two")
	tag, err := s.ResolvePath(ctx, "t")
	require.NoError(t, err)
	require.NoError(t, s.AssociatePromptsWithTag(ctx, tag.ID, []string{v1.ID, v2.ID}))

	removed, err := s.RemoveAllTagAssociations(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	promptIDs, err := s.GetPromptsForTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, promptIDs)

	// Prompt-side view is consistent too.
	paths, err := s.TagPathsForPrompt(ctx, v1.ID)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDeleteTag_RefusedWhilePromptsRemain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "One")
	_, err := s.ReplacePromptTags(ctx, v.ID, []string{"keep"})
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "keep")
	require.NoError(t, err)

	_, _, err = s.DeleteTag(ctx, tag.ID, false)
	assert.ErrorIs(t, err, store.ErrTagHasPrompts)

	// Force delete cascades the relations.
	deleted, removed, err := s.DeleteTag(ctx, tag.ID, true)
	require.NoError(t, err)
	assert.Equal(t, tag.ID, deleted.ID)
	assert.Equal(t, 1, removed)

	_, err = s.GetTagByPath(ctx, "keep")
	assert.ErrorIs(t, err, store.ErrTagNotFound)

	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDeleteTag_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, _, err := s.DeleteTag(context.Background(), "tag-missing", true)
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestRenameTag_RewritesDescendants(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ResolvePath(ctx, "prog/go/concurrency")
	require.NoError(t, err)
	_, err = s.ResolvePath(ctx, "prog/js")
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "prog")
	require.NoError(t, err)

	result, err := s.RenameTag(ctx, tag.ID, "programming", false)
	require.NoError(t, err)

	assert.Equal(t, "prog", result.OldPath)
	assert.Equal(t, "programming", result.Tag.FullPath)
	assert.Len(t, result.RewrittenPaths, 3)

	// Old paths are gone, new paths resolve.
	_, err = s.GetTagByPath(ctx, "prog/go")
	assert.ErrorIs(t, err, store.ErrTagNotFound)

	moved, err := s.GetTagByPath(ctx, "programming/go/concurrency")
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Level)
}

func TestRenameTag_UpdatesPromptReferences(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{
		Title: "Tagged",
		Text:  "Use the style tag for formatting.",
	})
	require.NoError(t, err)

	_, err = s.ReplacePromptTags(ctx, v.ID, []string{"style"})
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "style")
	require.NoError(t, err)

	result, err := s.RenameTag(ctx, tag.ID, "tone", true)
	require.NoError(t, err)
	assert.Equal(t, []string{v.ID}, result.UpdatedPrompts)

	got, err := s.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Use the tone tag for formatting.", got.Text)
}

func TestRenameTag_PathConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ResolvePath(ctx, "a")
	require.NoError(t, err)
	b, err := s.ResolvePath(ctx, "b")
	require.NoError(t, err)

	_, err = s.RenameTag(ctx, b.ID, "a", false)
	assert.ErrorIs(t, err, store.ErrTagExists)
}

func TestRenameTag_RejectsPathLikeName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tag, err := s.ResolvePath(ctx, "a")
	require.NoError(t, err)

	_, err = s.RenameTag(ctx, tag.ID, "x/y", false)
	assert.ErrorIs(t, err, store.ErrInvalidName)
}

func TestDeleteVersions_OrphanedTagCleanup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Chain of two versions; the latest carries the tag.
	v1 := createTestPrompt(t, s, "Summarize")
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)

	_, err = s.ReplacePromptTags(ctx, v2.ID, []string{"solo"})
	require.NoError(t, err)

	// A tag shared with another prompt must survive.
	other := createTestPrompt(t, s, "Other")
	_, err = s.ReplacePromptTags(ctx, other.ID, []string{"shared"})
	require.NoError(t, err)
	shared, err := s.GetTagByPath(ctx, "shared")
	require.NoError(t, err)
	require.NoError(t, s.AssociatePromptsWithTag(ctx, shared.ID, []string{v2.ID}))

	result, err := s.DeleteVersions(ctx, []string{v1.ID, v2.ID}, true)
	require.NoError(t, err)
	assert.Len(t, result.DeletedVersions, 2)

	// "solo" is orphaned and deleted; "shared" still has a relation.
	require.Len(t, result.DeletedTags, 1)
	assert.Equal(t, "solo", result.DeletedTags[0].FullPath)

	_, err = s.GetTagByPath(ctx, "solo")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
	_, err = s.GetTagByPath(ctx, "shared")
	require.NoError(t, err)
}

func TestDeleteTag_RefusedWhileChildrenRemain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v := createTestPrompt(t, s, "Nested")
	_, err := s.ReplacePromptTags(ctx, v.ID, []string{"infra/db"})
	require.NoError(t, err)

	parent, err := s.GetTagByPath(ctx, "infra")
	require.NoError(t, err)

	_, _, err = s.DeleteTag(ctx, parent.ID, false)
	assert.ErrorIs(t, err, store.ErrTagHasChildren)

	// Force delete takes the whole subtree with its relations.
	deleted, removed, err := s.DeleteTag(ctx, parent.ID, true)
	require.NoError(t, err)
	assert.Equal(t, parent.ID, deleted.ID)
	assert.Equal(t, 1, removed)

	_, err = s.GetTagByPath(ctx, "infra")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
	_, err = s.GetTagByPath(ctx, "infra/db")
	assert.ErrorIs(t, err, store.ErrTagNotFound)

	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDeleteVersions_CleanupKeepsAnchoringParents(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p1 := createTestPrompt(t, s, "First")
	_, err := s.ReplacePromptTags(ctx, p1.ID, []string{"a"})
	require.NoError(t, err)

	p2 := createTestPrompt(t, s, "Second")
	_, err = s.ReplacePromptTags(ctx, p2.ID, []string{"a/b"})
	require.NoError(t, err)

	// "a" loses its only relation but still anchors "a/b".
	result, err := s.DeleteVersions(ctx, []string{p1.ID}, true)
	require.NoError(t, err)
	assert.Empty(t, result.DeletedTags)

	parent, err := s.GetTagByPath(ctx, "a")
	require.NoError(t, err)
	child, err := s.GetTagByPath(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)
	_, err = s.GetTagByID(ctx, child.ParentID)
	require.NoError(t, err)

	// Once the child goes too, the cleanup walks up and removes both.
	result, err = s.DeleteVersions(ctx, []string{p2.ID}, true)
	require.NoError(t, err)
	require.Len(t, result.DeletedTags, 2)
	assert.Equal(t, "a", result.DeletedTags[0].FullPath)
	assert.Equal(t, "a/b", result.DeletedTags[1].FullPath)

	_, err = s.GetTagByPath(ctx, "a")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestRenameTag_RewritesWholeWordsOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{
		Title: "Porting",
		Text:  "We are going to port this to go today.",
	})
	require.NoError(t, err)

	_, err = s.ReplacePromptTags(ctx, v.ID, []string{"go"})
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "go")
	require.NoError(t, err)

	result, err := s.RenameTag(ctx, tag.ID, "rust", true)
	require.NoError(t, err)
	assert.Equal(t, []string{v.ID}, result.UpdatedPrompts)

	got, err := s.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "We are going to port this to rust today.", got.Text)
}

func TestRenameTag_LeavesSupersededTextAlone(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1, err := s.CreateVersion(ctx, store.CreateVersionParams{
		Title: "Tagged",
		Text:  "Refine the go snippet.",
	})
	require.NoError(t, err)

	// The relation stays on v1, which stops being latest after the edit.
	_, err = s.ReplacePromptTags(ctx, v1.ID, []string{"go"})
	require.NoError(t, err)
	_, err = s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "Tagged", Text: "Refine the go snippet, again."})
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "go")
	require.NoError(t, err)

	result, err := s.RenameTag(ctx, tag.ID, "rust", true)
	require.NoError(t, err)
	assert.Empty(t, result.UpdatedPrompts)

	got, err := s.GetVersion(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Refine the go snippet.", got.Text)
}

func TestResolvePath_AssignsGeneratedColors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	leaf, err := s.ResolvePath(ctx, "writing/tone")
	require.NoError(t, err)

	parent, err := s.GetTagByPath(ctx, "writing")
	require.NoError(t, err)

	assert.Equal(t, color.ForTag("writing"), parent.Color)
	assert.Equal(t, color.ForTag("writing/tone"), leaf.Color)
	assert.True(t, color.IsHexToken(leaf.Color))
}

func TestCreateTagPath_ColorOverridesLeafOnly(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	leaf, err := s.CreateTagPath(ctx, "writing/tone", "#AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "#AB12CD", leaf.Color)

	parent, err := s.GetTagByPath(ctx, "writing")
	require.NoError(t, err)
	assert.Equal(t, color.ForTag("writing"), parent.Color)
}
