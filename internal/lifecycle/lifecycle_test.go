package lifecycle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/lifecycle"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

type captureRecorder struct {
	names []string
}

func (r *captureRecorder) RecordOperation(_ context.Context, name string, _ any) error {
	r.names = append(r.names, name)
	return nil
}

func setupDeleter(t *testing.T) (*lifecycle.Deleter, *store.Store, *captureRecorder) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "promptdeck-lifecycle-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	recorder := &captureRecorder{}
	return lifecycle.NewDeleter(s, recorder, nil), s, recorder
}

func TestDeleteVersion_SingleVersion(t *testing.T) {
	d, s, recorder := setupDeleter(t)
	ctx := context.Background()

	v1, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t1"})
	require.NoError(t, err)
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "p", Text: "t2"})
	require.NoError(t, err)

	result := d.DeleteVersion(ctx, v1.ID, lifecycle.Options{})
	require.True(t, result.Success)
	assert.Equal(t, 1, result.DeletedCount)

	// The rest of the chain survives with its latest intact.
	latest, err := s.GetLatest(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)

	assert.Equal(t, []string{"version.delete"}, recorder.names)
}

func TestDeleteVersion_WholeChain(t *testing.T) {
	d, s, _ := setupDeleter(t)
	ctx := context.Background()

	v1, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t1"})
	require.NoError(t, err)
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "p", Text: "t2"})
	require.NoError(t, err)
	_, err = s.Supersede(ctx, v2.ID, store.SupersedeParams{Title: "p", Text: "t3"})
	require.NoError(t, err)

	result := d.DeleteVersion(ctx, v2.ID, lifecycle.Options{DeleteAllVersions: true})
	require.True(t, result.Success)
	assert.Equal(t, 3, result.DeletedCount)

	_, err = s.GetAllVersions(ctx, v1.ID)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestDeleteVersion_OrphanCleanup(t *testing.T) {
	d, s, _ := setupDeleter(t)
	ctx := context.Background()

	// Chain of two; the latest carries the only relation to the tag.
	v1, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t1"})
	require.NoError(t, err)
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "p", Text: "t2"})
	require.NoError(t, err)
	_, err = s.ReplacePromptTags(ctx, v2.ID, []string{"solo"})
	require.NoError(t, err)

	result := d.DeleteVersion(ctx, v1.ID, lifecycle.Options{
		DeleteAllVersions:   true,
		CleanupOrphanedTags: true,
	})
	require.True(t, result.Success)
	assert.Equal(t, 2, result.DeletedCount)
	assert.Equal(t, []string{"solo"}, result.DeletedTags)

	_, err = s.GetTagByPath(ctx, "solo")
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestDeleteVersion_NotFound(t *testing.T) {
	d, s, recorder := setupDeleter(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t"})
	require.NoError(t, err)

	result := d.DeleteVersion(ctx, "prompt-missing", lifecycle.Options{DeleteAllVersions: true})
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.CodeNotFound, result.Error.Code)

	// Nothing was mutated or recorded.
	_, err = s.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, recorder.names)
}

func TestGetVersionInfo(t *testing.T) {
	d, s, _ := setupDeleter(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t"})
	require.NoError(t, err)

	got, err := d.GetVersionInfo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = d.GetVersionInfo(ctx, "prompt-missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetVersionDependencies(t *testing.T) {
	d, s, _ := setupDeleter(t)
	ctx := context.Background()

	v1, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t1"})
	require.NoError(t, err)
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "p", Text: "t2"})
	require.NoError(t, err)
	_, err = s.ReplacePromptTags(ctx, v2.ID, []string{"a", "b"})
	require.NoError(t, err)

	deps, err := d.GetVersionDependencies(ctx, v1.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{v1.ID, v2.ID}, deps.ChainVersionIDs)
	assert.Equal(t, 2, deps.RelationCount)
	assert.Equal(t, []string{"a", "b"}, deps.TagPaths[v2.ID])
	assert.NotContains(t, deps.TagPaths, v1.ID)

	// Inspection did not mutate anything.
	chain, err := s.GetAllVersions(ctx, v1.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 2)
}
