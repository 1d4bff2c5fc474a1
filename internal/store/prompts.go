package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/id"
	"github.com/promptdeck/promptdeck-server/internal/sse"
)

// Prompt version errors.
var ErrVersionNotFound = errors.New("prompt version not found")

// CreateVersionParams carries the content fields for a new prompt chain.
type CreateVersionParams struct {
	Title       string
	Description string
	Text        string
	FolderID    string
}

// CreateVersion starts a new prompt chain: version 1, latest, rootID equal to
// its own ID.
func (s *Store) CreateVersion(ctx context.Context, p CreateVersionParams) (*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	versionID, err := id.Generate("prompt")
	if err != nil {
		return nil, err
	}

	v := &domain.PromptVersion{
		ID:          versionID,
		RootID:      versionID,
		Version:     1,
		IsLatest:    true,
		Title:       p.Title,
		Description: p.Description,
		Text:        p.Text,
		FolderID:    p.FolderID,
		CreatedAt:   time.Now(),
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return s.insertVersionTxn(txn, v)
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewPromptCreatedEvent(v))
	s.indexPromptAsync(ctx, v)

	return v, nil
}

// SupersedeParams carries the replacement content for an edit.
type SupersedeParams struct {
	Title       string
	Description string
	Text        string
}

// Supersede is the edit path: it loads the current latest record of the chain
// containing previousID, flips its latest flag, and inserts the successor with
// an incremented version number and carried-forward usage counters. All of it
// happens in one transaction; a flipped flag without its successor is never
// observable.
func (s *Store) Supersede(ctx context.Context, previousID string, p SupersedeParams) (*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newID, err := id.Generate("prompt")
	if err != nil {
		return nil, err
	}

	var next *domain.PromptVersion
	err = s.db.Update(func(txn *badger.Txn) error {
		prev, err := s.getVersionTxn(txn, previousID)
		if err != nil {
			return err
		}

		// Resolve the chain's latest record. Editing via a stale version ID
		// still appends after the true latest.
		latest, err := s.getLatestTxn(txn, prev.RootID)
		if err != nil {
			return err
		}

		latest.IsLatest = false
		if err := setJSON(txn, []byte(promptPrefix+latest.ID), latest); err != nil {
			return err
		}

		next = latest.NextVersion(newID, p.Title, p.Description, p.Text)
		return s.insertVersionTxn(txn, next)
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewPromptUpdatedEvent(next))
	s.indexPromptAsync(ctx, next)

	return next, nil
}

// GetVersion retrieves a single version record by ID.
func (s *Store) GetVersion(ctx context.Context, versionID string) (*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v *domain.PromptVersion
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = s.getVersionTxn(txn, versionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetLatest retrieves the single latest version of a chain.
func (s *Store) GetLatest(ctx context.Context, rootID string) (*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v *domain.PromptVersion
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = s.getLatestTxn(txn, rootID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetAllVersions returns every version of a chain ordered by version ascending.
// The root record's own RootID equals its ID, so the root index already
// includes it; no special casing needed.
func (s *Store) GetAllVersions(ctx context.Context, rootID string) ([]*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var versions []*domain.PromptVersion
	err := s.db.View(func(txn *badger.Txn) error {
		ids := s.versionIDsForRootTxn(txn, rootID)
		if len(ids) == 0 {
			return ErrVersionNotFound
		}

		versions = make([]*domain.PromptVersion, 0, len(ids))
		for _, versionID := range ids {
			v, err := s.getVersionTxn(txn, versionID)
			if err != nil {
				return err
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version < versions[j].Version
	})

	return versions, nil
}

// ListLatest returns the latest version of every chain, ordered by title.
func (s *Store) ListLatest(ctx context.Context) ([]*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(promptLatestPrefix)
	var versions []*domain.PromptVersion

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var versionID string
			err := it.Item().Value(func(val []byte) error {
				versionID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			v, err := s.getVersionTxn(txn, versionID)
			if err != nil {
				return err
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Title < versions[j].Title
	})

	return versions, nil
}

// RecordUsage bumps the usage counter on a version and stamps the last-used time.
func (s *Store) RecordUsage(ctx context.Context, versionID string) (*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v *domain.PromptVersion
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		v, err = s.getVersionTxn(txn, versionID)
		if err != nil {
			return err
		}

		v.MarkUsed()
		return setJSON(txn, []byte(promptPrefix+versionID), v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DeletionResult reports what a version deletion removed.
type DeletionResult struct {
	// RootID is the chain of the last removed version. Callers that delete
	// across chains get every latest flag repaired regardless.
	RootID           string
	DeletedVersions  []string
	DeletedRelations int
	DeletedTags      []*domain.Tag
}

// DeleteVersions removes the given version records and all PromptTagRelations
// referencing them. When cleanupOrphans is set it also removes any tag left
// with zero remaining relations afterwards. Runs as one transaction.
//
// The version lifecycle pipeline is the intended caller; it resolves the ID
// set (single version or whole chain) before delegating here.
func (s *Store) DeleteVersions(ctx context.Context, versionIDs []string, cleanupOrphans bool) (*DeletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(versionIDs) == 0 {
		return nil, ErrVersionNotFound
	}

	result := &DeletionResult{}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Tags touched by removed relations are orphan-cleanup candidates.
		candidateTags := make(map[string]bool)
		touchedRoots := make(map[string]bool)

		for _, versionID := range versionIDs {
			v, err := s.getVersionTxn(txn, versionID)
			if err != nil {
				return err
			}
			result.RootID = v.RootID
			touchedRoots[v.RootID] = true

			removed, tagIDs, err := s.deleteRelationsForPromptTxn(txn, versionID)
			if err != nil {
				return err
			}
			result.DeletedRelations += removed
			for _, tagID := range tagIDs {
				candidateTags[tagID] = true
			}

			if err := s.deleteVersionRecordTxn(txn, v); err != nil {
				return err
			}
			result.DeletedVersions = append(result.DeletedVersions, versionID)
		}

		// Re-point the latest index of every touched chain when a partial
		// delete removed its latest record but older versions remain.
		for rootID := range touchedRoots {
			if err := s.repairLatestTxn(txn, rootID); err != nil {
				return err
			}
		}

		if cleanupOrphans {
			deleted, err := s.cleanupOrphanedTagsTxn(txn, candidateTags)
			if err != nil {
				return err
			}
			result.DeletedTags = deleted
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(sse.NewPromptVersionDeletedEvent(result.RootID, result.DeletedVersions))
	for _, t := range result.DeletedTags {
		s.emit(sse.NewTagDeletedEvent(t))
	}
	s.deindexPromptsAsync(ctx, result.DeletedVersions)

	return result, nil
}

// DeleteVersion removes a single version record and its relations.
func (s *Store) DeleteVersion(ctx context.Context, versionID string) (*DeletionResult, error) {
	return s.DeleteVersions(ctx, []string{versionID}, false)
}

// DeleteChain removes every version of a chain and all their relations.
func (s *Store) DeleteChain(ctx context.Context, rootID string) (*DeletionResult, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		ids = s.versionIDsForRootTxn(txn, rootID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrVersionNotFound
	}
	return s.DeleteVersions(ctx, ids, false)
}

// Transaction-scoped helpers.

// getVersionTxn loads a version record inside an existing transaction.
func (s *Store) getVersionTxn(txn *badger.Txn, versionID string) (*domain.PromptVersion, error) {
	key := buildKey(promptPrefix, versionID)
	defer releaseKey(key)

	var v domain.PromptVersion
	err := getJSON(txn, key, &v)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// getLatestTxn resolves the chain's latest record via the latest index.
func (s *Store) getLatestTxn(txn *badger.Txn, rootID string) (*domain.PromptVersion, error) {
	key := buildKey(promptLatestPrefix, rootID)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}

	var versionID string
	if err := item.Value(func(val []byte) error {
		versionID = string(val)
		return nil
	}); err != nil {
		return nil, err
	}

	return s.getVersionTxn(txn, versionID)
}

// insertVersionTxn writes a version record plus its chain and latest indexes.
func (s *Store) insertVersionTxn(txn *badger.Txn, v *domain.PromptVersion) error {
	if err := setJSON(txn, []byte(promptPrefix+v.ID), v); err != nil {
		return err
	}
	if err := txn.Set([]byte(promptByRootPrefix+v.RootID+":"+v.ID), []byte{}); err != nil {
		return err
	}
	return txn.Set([]byte(promptLatestPrefix+v.RootID), []byte(v.ID))
}

// versionIDsForRootTxn returns all version IDs of a chain via the root index.
func (s *Store) versionIDsForRootTxn(txn *badger.Txn, rootID string) []string {
	prefix := promptByRootPrefix + rootID + ":"
	keys := keysWithPrefix(txn, []byte(prefix))

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, string(k[len(prefix):]))
	}
	return ids
}

// deleteVersionRecordTxn removes one version record and its chain index entry.
// The latest index is handled separately by repairLatestTxn.
func (s *Store) deleteVersionRecordTxn(txn *badger.Txn, v *domain.PromptVersion) error {
	if err := txn.Delete([]byte(promptPrefix + v.ID)); err != nil {
		return err
	}
	return txn.Delete([]byte(promptByRootPrefix + v.RootID + ":" + v.ID))
}

// repairLatestTxn re-establishes the single-latest invariant for a chain after
// deletions: the surviving record with the highest version number carries the
// flag, or the latest index entry is dropped when the chain is gone.
func (s *Store) repairLatestTxn(txn *badger.Txn, rootID string) error {
	ids := s.versionIDsForRootTxn(txn, rootID)
	if len(ids) == 0 {
		err := txn.Delete([]byte(promptLatestPrefix + rootID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	}

	var newest *domain.PromptVersion
	for _, versionID := range ids {
		v, err := s.getVersionTxn(txn, versionID)
		if err != nil {
			return err
		}
		if newest == nil || v.Version > newest.Version {
			newest = v
		}
	}

	if !newest.IsLatest {
		newest.IsLatest = true
		if err := setJSON(txn, []byte(promptPrefix+newest.ID), newest); err != nil {
			return err
		}
	}
	return txn.Set([]byte(promptLatestPrefix+rootID), []byte(newest.ID))
}

// Search index plumbing. Index updates are best effort and asynchronous.

func (s *Store) indexPromptAsync(ctx context.Context, v *domain.PromptVersion) {
	if s.searchIndexer == nil {
		return
	}
	paths, err := s.TagPathsForPrompt(ctx, v.ID)
	if err != nil {
		paths = nil
	}
	go func() {
		if err := s.searchIndexer.IndexPrompt(context.WithoutCancel(ctx), v, paths); err != nil && s.logger != nil {
			s.logger.Warn("failed to index prompt", "version_id", v.ID, "error", err)
		}
	}()
}

func (s *Store) deindexPromptsAsync(ctx context.Context, versionIDs []string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		for _, versionID := range versionIDs {
			if err := s.searchIndexer.DeletePrompt(context.WithoutCancel(ctx), versionID); err != nil && s.logger != nil {
				s.logger.Warn("failed to deindex prompt", "version_id", versionID, "error", err)
			}
		}
	}()
}
