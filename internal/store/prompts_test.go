package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/store"
)

func TestCreateVersion_StartsChain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{
		Title:       "Summarize",
		Description: "Summarization helper",
		Text:        "Summarize the following text",
		FolderID:    "folder-1",
	})
	require.NoError(t, err)

	assert.Equal(t, v.ID, v.RootID)
	assert.Equal(t, 1, v.Version)
	assert.True(t, v.IsLatest)
	assert.Equal(t, 0, v.TimesUsed)
	assert.Nil(t, v.LastUsedAt)

	got, err := s.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summarize", got.Title)
	assert.Equal(t, "folder-1", got.FolderID)
}

func TestSupersede_MovesLatestFlag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")

	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{
		Title: "Summarize v2",
		Text:  "Summarize concisely",
	})
	require.NoError(t, err)

	assert.Equal(t, v1.ID, v2.RootID)
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsLatest)

	// The superseded record lost the flag.
	old, err := s.GetVersion(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, old.IsLatest)

	latest, err := s.GetLatest(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
}

func TestSupersede_CarriesUsageForward(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")

	_, err := s.RecordUsage(ctx, v1.ID)
	require.NoError(t, err)
	used, err := s.RecordUsage(ctx, v1.ID)
	require.NoError(t, err)
	require.Equal(t, 2, used.TimesUsed)

	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t"})
	require.NoError(t, err)

	assert.Equal(t, 2, v2.TimesUsed)
	require.NotNil(t, v2.LastUsedAt)
	assert.Equal(t, used.LastUsedAt.Unix(), v2.LastUsedAt.Unix())
}

func TestSupersede_ViaStaleVersionID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)

	// Editing via the stale v1 ID still appends after the true latest.
	v3, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v3", Text: "t3"})
	require.NoError(t, err)

	assert.Equal(t, 3, v3.Version)

	mid, err := s.GetVersion(ctx, v2.ID)
	require.NoError(t, err)
	assert.False(t, mid.IsLatest)
}

func TestSupersede_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Supersede(context.Background(), "prompt-missing", store.SupersedeParams{Title: "x", Text: "y"})
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestGetAllVersions_OrderedAscending(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")
	_, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)
	_, err = s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v3", Text: "t3"})
	require.NoError(t, err)

	versions, err := s.GetAllVersions(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)

	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
		assert.Equal(t, v1.ID, v.RootID)
	}

	// Exactly one latest.
	latestCount := 0
	for _, v := range versions {
		if v.IsLatest {
			latestCount++
		}
	}
	assert.Equal(t, 1, latestCount)
}

func TestGetAllVersions_UnknownRoot(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetAllVersions(context.Background(), "prompt-missing")
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestListLatest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := createTestPrompt(t, s, "Alpha")
	createTestPrompt(t, s, "Beta")
	_, err := s.Supersede(ctx, a.ID, store.SupersedeParams{Title: "Alpha v2", Text: "t"})
	require.NoError(t, err)

	latest, err := s.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	for _, v := range latest {
		assert.True(t, v.IsLatest)
	}
}

func TestDeleteVersions_WholeChain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)

	result, err := s.DeleteVersions(ctx, []string{v1.ID, v2.ID}, false)
	require.NoError(t, err)
	assert.Len(t, result.DeletedVersions, 2)

	_, err = s.GetVersion(ctx, v1.ID)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
	_, err = s.GetLatest(ctx, v1.ID)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestDeleteVersions_PartialRepairsLatest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")
	v2, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)

	// Deleting the latest record promotes the survivor.
	_, err = s.DeleteVersions(ctx, []string{v2.ID}, false)
	require.NoError(t, err)

	latest, err := s.GetLatest(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, v1.ID, latest.ID)
	assert.True(t, latest.IsLatest)
}

func TestDeleteVersions_NotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	createTestPrompt(t, s, "Keeper")

	_, err := s.DeleteVersions(ctx, []string{"prompt-missing"}, false)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)

	// No collateral damage.
	latest, err := s.ListLatest(ctx)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestDeleteChain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v1 := createTestPrompt(t, s, "Summarize")
	_, err := s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v2", Text: "t2"})
	require.NoError(t, err)
	_, err = s.Supersede(ctx, v1.ID, store.SupersedeParams{Title: "v3", Text: "t3"})
	require.NoError(t, err)

	result, err := s.DeleteChain(ctx, v1.ID)
	require.NoError(t, err)
	assert.Len(t, result.DeletedVersions, 3)

	_, err = s.GetAllVersions(ctx, v1.ID)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestRecordUsage_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.RecordUsage(context.Background(), "prompt-missing")
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}

func TestDeleteVersions_RepairsEveryTouchedChain(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a1 := createTestPrompt(t, s, "Alpha")
	a2, err := s.Supersede(ctx, a1.ID, store.SupersedeParams{Title: "Alpha v2", Text: "a2"})
	require.NoError(t, err)

	b1 := createTestPrompt(t, s, "Beta")
	b2, err := s.Supersede(ctx, b1.ID, store.SupersedeParams{Title: "Beta v2", Text: "b2"})
	require.NoError(t, err)

	// One call drops the latest record of both chains.
	result, err := s.DeleteVersions(ctx, []string{a2.ID, b2.ID}, false)
	require.NoError(t, err)
	assert.Len(t, result.DeletedVersions, 2)

	for _, survivor := range []string{a1.ID, b1.ID} {
		latest, err := s.GetLatest(ctx, survivor)
		require.NoError(t, err)
		assert.Equal(t, survivor, latest.ID)
		assert.True(t, latest.IsLatest)
	}
}
