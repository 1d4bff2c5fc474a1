package store

import (
	"context"
	"encoding/json/v2"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck-server/internal/domain"
)

// AllVersions returns every prompt version record, ordered by root then
// version number. Full scan; used by export and consistency checks.
func (s *Store) AllVersions(ctx context.Context) ([]*domain.PromptVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var versions []*domain.PromptVersion
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(promptPrefix), func(val []byte) error {
			var v domain.PromptVersion
			if err := json.Unmarshal(val, &v); err != nil {
				return err
			}
			versions = append(versions, &v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(versions, func(i, j int) bool {
		if versions[i].RootID != versions[j].RootID {
			return versions[i].RootID < versions[j].RootID
		}
		return versions[i].Version < versions[j].Version
	})
	return versions, nil
}

// AllRelations returns every prompt-tag relation record. Full scan; used by
// export and consistency checks.
func (s *Store) AllRelations(ctx context.Context) ([]*domain.PromptTagRelation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var relations []*domain.PromptTagRelation
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(relationPrefix), func(val []byte) error {
			var rel domain.PromptTagRelation
			if err := json.Unmarshal(val, &rel); err != nil {
				return err
			}
			relations = append(relations, &rel)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(relations, func(i, j int) bool {
		return relations[i].ID < relations[j].ID
	})
	return relations, nil
}

// scanPrefix invokes fn with the value of every key under prefix.
func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchSize = 100

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
