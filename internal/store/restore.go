package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck-server/internal/domain"
)

// ErrStoreNotEmpty is returned when importing into a store that already has
// records. Imports only target a fresh database.
var ErrStoreNotEmpty = errors.New("store is not empty")

// Snapshot is a full copy of the store's records, suitable for export.
type Snapshot struct {
	Versions  []*domain.PromptVersion     `json:"versions"`
	Tags      []*domain.Tag               `json:"tags"`
	Relations []*domain.PromptTagRelation `json:"relations"`
}

// ExportSnapshot reads every record in one consistent view.
func (s *Store) ExportSnapshot(ctx context.Context) (*Snapshot, error) {
	versions, err := s.AllVersions(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := s.AllRelations(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Versions: versions, Tags: tags, Relations: relations}, nil
}

// ImportSnapshot writes a snapshot into an empty store, records and indexes
// alike, in one transaction. The snapshot is validated first; a structurally
// broken snapshot is rejected without touching the database.
func (s *Store) ImportSnapshot(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		empty, err := s.isEmptyTxn(txn)
		if err != nil {
			return err
		}
		if !empty {
			return ErrStoreNotEmpty
		}

		// Versions are written directly: only the record flagged latest may
		// claim the chain's latest index entry.
		for _, v := range snap.Versions {
			if err := setJSON(txn, []byte(promptPrefix+v.ID), v); err != nil {
				return err
			}
			if err := txn.Set([]byte(promptByRootPrefix+v.RootID+":"+v.ID), []byte{}); err != nil {
				return err
			}
			if v.IsLatest {
				if err := txn.Set([]byte(promptLatestPrefix+v.RootID), []byte(v.ID)); err != nil {
					return err
				}
			}
		}
		for _, t := range snap.Tags {
			if err := s.insertTagTxn(txn, t); err != nil {
				return err
			}
		}
		for _, rel := range snap.Relations {
			if err := setJSON(txn, []byte(relationPrefix+rel.ID), rel); err != nil {
				return err
			}
			if err := txn.Set([]byte(relByPromptPrefix+rel.PromptID+":"+rel.TagID), []byte(rel.ID)); err != nil {
				return err
			}
			if err := txn.Set([]byte(relByTagPrefix+rel.TagID+":"+rel.PromptID), []byte(rel.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// validateSnapshot checks the structural invariants an import must preserve.
func validateSnapshot(snap *Snapshot) error {
	versionIDs := make(map[string]bool, len(snap.Versions))
	latestPerRoot := make(map[string]int)
	for _, v := range snap.Versions {
		if versionIDs[v.ID] {
			return fmt.Errorf("duplicate version id %s", v.ID)
		}
		versionIDs[v.ID] = true
		if v.IsLatest {
			latestPerRoot[v.RootID]++
		} else if _, seen := latestPerRoot[v.RootID]; !seen {
			latestPerRoot[v.RootID] = 0
		}
	}
	for rootID, count := range latestPerRoot {
		if count != 1 {
			return fmt.Errorf("root %s has %d latest versions, want exactly 1", rootID, count)
		}
	}

	tagIDs := make(map[string]bool, len(snap.Tags))
	tagPaths := make(map[string]bool, len(snap.Tags))
	for _, t := range snap.Tags {
		if tagIDs[t.ID] {
			return fmt.Errorf("duplicate tag id %s", t.ID)
		}
		if tagPaths[t.FullPath] {
			return fmt.Errorf("duplicate tag path %q", t.FullPath)
		}
		tagIDs[t.ID] = true
		tagPaths[t.FullPath] = true
	}

	for _, rel := range snap.Relations {
		if !versionIDs[rel.PromptID] {
			return fmt.Errorf("relation %s references missing prompt version %s", rel.ID, rel.PromptID)
		}
		if !tagIDs[rel.TagID] {
			return fmt.Errorf("relation %s references missing tag %s", rel.ID, rel.TagID)
		}
	}

	return nil
}

// isEmptyTxn reports whether the store has no entity records at all.
func (s *Store) isEmptyTxn(txn *badger.Txn) (bool, error) {
	for _, prefix := range []string{promptPrefix, tagPrefix, relationPrefix} {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		it.Seek([]byte(prefix))
		found := it.ValidForPrefix([]byte(prefix))
		it.Close()

		if found {
			return false, nil
		}
	}
	return true, nil
}
