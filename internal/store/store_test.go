package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

// setupTestStore creates a store backed by a temp-dir badger database.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "promptdeck-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return s
}

// createTestPrompt starts a new chain with sensible defaults.
func createTestPrompt(t *testing.T, s *store.Store, title string) *domain.PromptVersion {
	t.Helper()

	v, err := s.CreateVersion(context.Background(), store.CreateVersionParams{
		Title: title,
		Text:  "text of " + title,
	})
	require.NoError(t, err)
	return v
}
