package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dgraph-io/badger/v4"

	"github.com/promptdeck/promptdeck-server/internal/color"
	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/id"
	"github.com/promptdeck/promptdeck-server/internal/tagpath"
)

// Tag errors.
var (
	ErrTagNotFound    = errors.New("tag not found")
	ErrTagExists      = errors.New("tag already exists")
	ErrTagHasPrompts  = errors.New("tag still has associated prompts")
	ErrTagHasChildren = errors.New("tag still has child tags")
	ErrInvalidName    = errors.New("tag name must be a single path segment")
)

// CreateTag creates a new tag. The full path must be unused.
// The caller is responsible for ensuring the parent already exists;
// ResolvePath is the usual entry point and takes care of ancestors.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.insertTagTxn(txn, t)
	})
}

// CreateTagPath creates the tag at the given path, materializing any missing
// ancestors in the same transaction. Unlike ResolvePath it fails with
// ErrTagExists when the leaf already exists. New tags get a generated badge
// color; a non-empty colorToken overrides it on the leaf.
func (s *Store) CreateTagPath(ctx context.Context, path, colorToken string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments, err := tagpath.Split(path)
	if err != nil {
		return nil, err
	}

	var leaf *domain.Tag
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := s.tagIDByPathTxn(txn, tagpath.Join(segments)); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, ErrTagNotFound) {
			return err
		}

		leaf, err = s.resolvePathTxn(txn, segments)
		if err != nil {
			return err
		}

		if colorToken != "" {
			leaf.Color = colorToken
			return setJSON(txn, []byte(tagPrefix+leaf.ID), leaf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return leaf, nil
}

// UpdateTag persists changed tag fields. Changing FullPath re-points the path
// index; the new path must be unused.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		old, err := s.getTagTxn(txn, t.ID)
		if err != nil {
			return err
		}

		if old.FullPath != t.FullPath {
			if _, err := s.tagIDByPathTxn(txn, t.FullPath); err == nil {
				return ErrTagExists
			} else if !errors.Is(err, ErrTagNotFound) {
				return err
			}
			if err := txn.Delete([]byte(tagByPathPrefix + old.FullPath)); err != nil {
				return err
			}
			if err := txn.Set([]byte(tagByPathPrefix+t.FullPath), []byte(t.ID)); err != nil {
				return err
			}
		}

		t.Touch()
		return setJSON(txn, []byte(tagPrefix+t.ID), t)
	})
}

// GetTagByID retrieves a tag by ID.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t *domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		t, err = s.getTagTxn(txn, tagID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByPath retrieves a tag by its canonical full path.
func (s *Store) GetTagByPath(ctx context.Context, fullPath string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t *domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		tagID, err := s.tagIDByPathTxn(txn, fullPath)
		if err != nil {
			return err
		}
		t, err = s.getTagTxn(txn, tagID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindTagByName returns the first tag whose Name (last path segment) equals
// name, ordered by full path. Names are not unique across the hierarchy;
// GetTagByPath is the canonical lookup.
func (s *Store) FindTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	for _, t := range tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, ErrTagNotFound
}

// ListTags returns all tags ordered by full path.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix)
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return err
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].FullPath < tags[j].FullPath
	})

	return tags, nil
}

// ResolvePath ensures every tag along the slash-delimited path exists and
// returns the leaf. Missing ancestors are materialized in ascending order
// inside one transaction, so ancestors always exist before descendants and
// repeated resolution of overlapping paths reuses shared ancestors.
func (s *Store) ResolvePath(ctx context.Context, path string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments, err := tagpath.Split(path)
	if err != nil {
		return nil, err
	}

	var leaf *domain.Tag
	err = s.db.Update(func(txn *badger.Txn) error {
		var err error
		leaf, err = s.resolvePathTxn(txn, segments)
		return err
	})
	if err != nil {
		return nil, err
	}
	return leaf, nil
}

// GetPromptsForTag returns the IDs of all prompt versions carrying the tag.
func (s *Store) GetPromptsForTag(ctx context.Context, tagID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var promptIDs []string
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := s.getTagTxn(txn, tagID); err != nil {
			return err
		}
		promptIDs = s.promptIDsForTagTxn(txn, tagID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promptIDs, nil
}

// AssociatePromptsWithTag creates relations between the tag and each prompt.
// Existing pairs are left alone; the (promptID, tagID) pair stays unique.
// Every referenced prompt version must exist.
func (s *Store) AssociatePromptsWithTag(ctx context.Context, tagID string, promptIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := s.getTagTxn(txn, tagID); err != nil {
			return err
		}

		for _, promptID := range promptIDs {
			if _, err := s.getVersionTxn(txn, promptID); err != nil {
				return err
			}
			if err := s.insertRelationTxn(txn, promptID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveAllTagAssociations deletes every relation referencing the tag and
// returns how many were removed.
func (s *Store) RemoveAllTagAssociations(ctx context.Context, tagID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := s.getTagTxn(txn, tagID); err != nil {
			return err
		}
		var err error
		removed, err = s.deleteRelationsForTagTxn(txn, tagID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ReplacePromptTags replaces the full tag set of a prompt version:
// every existing relation is removed, then one relation per resolved path is
// created. Paths are resolved lazily (missing tags materialize) and duplicates
// collapse to a single relation. An empty path list removes all tags and is
// valid. Runs as one transaction.
func (s *Store) ReplacePromptTags(ctx context.Context, promptID string, paths []string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Validate all paths before mutating anything.
	split := make([][]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		segments, err := tagpath.Split(p)
		if err != nil {
			return nil, err
		}
		canonical := tagpath.Join(segments)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		split = append(split, segments)
	}

	var leaves []*domain.Tag
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := s.getVersionTxn(txn, promptID); err != nil {
			return err
		}

		if _, _, err := s.deleteRelationsForPromptTxn(txn, promptID); err != nil {
			return err
		}

		leaves = make([]*domain.Tag, 0, len(split))
		for _, segments := range split {
			leaf, err := s.resolvePathTxn(txn, segments)
			if err != nil {
				return err
			}
			if err := s.insertRelationTxn(txn, promptID, leaf.ID); err != nil {
				return err
			}
			leaves = append(leaves, leaf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return leaves, nil
}

// TagsForPrompt returns the tags attached to a prompt version, ordered by path.
func (s *Store) TagsForPrompt(ctx context.Context, promptID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tags []*domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := relByPromptPrefix + promptID + ":"
		keys := keysWithPrefix(txn, []byte(prefix))

		tags = make([]*domain.Tag, 0, len(keys))
		for _, k := range keys {
			tagID := string(k[len(prefix):])
			t, err := s.getTagTxn(txn, tagID)
			if err != nil {
				return err
			}
			tags = append(tags, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].FullPath < tags[j].FullPath
	})
	return tags, nil
}

// TagPathsForPrompt returns the full paths of a prompt version's tags.
func (s *Store) TagPathsForPrompt(ctx context.Context, promptID string) ([]string, error) {
	tags, err := s.TagsForPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(tags))
	for i, t := range tags {
		paths[i] = t.FullPath
	}
	return paths, nil
}

// DeleteTag removes a tag and all its relations. When force is false the
// delete fails with ErrTagHasPrompts if any relation still references the tag
// and with ErrTagHasChildren if descendant tags exist. When force is true the
// whole subtree is removed, relations included; a surviving child must never
// point at a deleted parent. Returns the deleted tag and how many relations
// were removed across the subtree.
func (s *Store) DeleteTag(ctx context.Context, tagID string, force bool) (*domain.Tag, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var deleted *domain.Tag
	removed := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		t, err := s.getTagTxn(txn, tagID)
		if err != nil {
			return err
		}

		descendants, err := s.descendantTagsTxn(txn, t.FullPath)
		if err != nil {
			return err
		}

		if !force {
			if len(s.promptIDsForTagTxn(txn, tagID)) > 0 {
				return ErrTagHasPrompts
			}
			if len(descendants) > 0 {
				return ErrTagHasChildren
			}
		}

		for _, d := range descendants {
			n, err := s.deleteRelationsForTagTxn(txn, d.ID)
			if err != nil {
				return err
			}
			removed += n
			if err := s.deleteTagRecordTxn(txn, d); err != nil {
				return err
			}
		}

		n, err := s.deleteRelationsForTagTxn(txn, tagID)
		if err != nil {
			return err
		}
		removed += n

		if err := s.deleteTagRecordTxn(txn, t); err != nil {
			return err
		}
		deleted = t
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return deleted, removed, nil
}

// RenameResult reports the effects of a tag rename.
type RenameResult struct {
	Tag *domain.Tag
	// OldPath is the tag's full path before the rename.
	OldPath string
	// RewrittenPaths maps descendant tag IDs to their new full paths.
	RewrittenPaths map[string]string
	// UpdatedPrompts lists prompt version IDs whose text was rewritten.
	UpdatedPrompts []string
}

// RenameTag changes a tag's name. The full path of the tag and of every
// descendant is rewritten in the same transaction, so the hierarchy never
// shows a mixed prefix. When updateReferences is set, whole-word mentions of
// the old name inside the text of related latest versions are rewritten too.
func (s *Store) RenameTag(ctx context.Context, tagID, newName string, updateReferences bool) (*RenameResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if newName == "" || strings.Contains(newName, tagpath.Separator) {
		return nil, ErrInvalidName
	}

	result := &RenameResult{RewrittenPaths: make(map[string]string)}

	err := s.db.Update(func(txn *badger.Txn) error {
		t, err := s.getTagTxn(txn, tagID)
		if err != nil {
			return err
		}

		oldName := t.Name
		oldPath := t.FullPath
		parentPath := t.ParentPath()

		newPath := newName
		if parentPath != "" {
			newPath = parentPath + tagpath.Separator + newName
		}

		if _, err := s.tagIDByPathTxn(txn, newPath); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, ErrTagNotFound) {
			return err
		}

		// Rewrite the tag itself.
		t.Name = newName
		t.FullPath = newPath
		t.Touch()
		if err := s.repointTagPathTxn(txn, t.ID, oldPath, newPath, t); err != nil {
			return err
		}

		// Rewrite every descendant's path prefix.
		descendants, err := s.descendantTagsTxn(txn, oldPath)
		if err != nil {
			return err
		}
		for _, d := range descendants {
			oldDescPath := d.FullPath
			d.FullPath = tagpath.RewritePrefix(d.FullPath, oldPath, newPath)
			d.Touch()
			if err := s.repointTagPathTxn(txn, d.ID, oldDescPath, d.FullPath, d); err != nil {
				return err
			}
			result.RewrittenPaths[d.ID] = d.FullPath
		}

		// Optionally rewrite tag-name mentions inside referencing prompt text.
		// Only latest versions are touched; history stays immutable. Matches
		// must be whole words so renaming "go" leaves "going" alone.
		if updateReferences && oldName != newName {
			for _, promptID := range s.promptIDsForTagTxn(txn, tagID) {
				v, err := s.getVersionTxn(txn, promptID)
				if err != nil {
					return err
				}
				if !v.IsLatest {
					continue
				}
				rewritten := replaceWholeWord(v.Text, oldName, newName)
				if rewritten == v.Text {
					continue
				}
				v.Text = rewritten
				if err := setJSON(txn, []byte(promptPrefix+v.ID), v); err != nil {
					return err
				}
				result.UpdatedPrompts = append(result.UpdatedPrompts, promptID)
			}
		}

		result.Tag = t
		result.OldPath = oldPath
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Transaction-scoped helpers.

func (s *Store) getTagTxn(txn *badger.Txn, tagID string) (*domain.Tag, error) {
	key := buildKey(tagPrefix, tagID)
	defer releaseKey(key)

	var t domain.Tag
	err := getJSON(txn, key, &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) tagIDByPathTxn(txn *badger.Txn, fullPath string) (string, error) {
	key := buildKey(tagByPathPrefix, fullPath)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrTagNotFound
	}
	if err != nil {
		return "", err
	}

	var tagID string
	err = item.Value(func(val []byte) error {
		tagID = string(val)
		return nil
	})
	return tagID, err
}

// insertTagTxn writes a tag record and its unique path index.
func (s *Store) insertTagTxn(txn *badger.Txn, t *domain.Tag) error {
	if _, err := s.tagIDByPathTxn(txn, t.FullPath); err == nil {
		return ErrTagExists
	} else if !errors.Is(err, ErrTagNotFound) {
		return err
	}

	if err := setJSON(txn, []byte(tagPrefix+t.ID), t); err != nil {
		return err
	}
	return txn.Set([]byte(tagByPathPrefix+t.FullPath), []byte(t.ID))
}

// resolvePathTxn walks the path segments left to right, materializing any
// missing tag with the previous segment's tag as parent.
func (s *Store) resolvePathTxn(txn *badger.Txn, segments []string) (*domain.Tag, error) {
	var parent *domain.Tag

	for depth, prefix := range tagpath.Prefixes(segments) {
		tagID, err := s.tagIDByPathTxn(txn, prefix)
		switch {
		case err == nil:
			parent, err = s.getTagTxn(txn, tagID)
			if err != nil {
				return nil, err
			}

		case errors.Is(err, ErrTagNotFound):
			newID, idErr := id.Generate("tag")
			if idErr != nil {
				return nil, idErr
			}

			now := time.Now()
			t := &domain.Tag{
				ID:        newID,
				Name:      segments[depth],
				FullPath:  prefix,
				Level:     depth,
				Color:     color.ForTag(prefix),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if parent != nil {
				t.ParentID = parent.ID
			}

			if err := s.insertTagTxn(txn, t); err != nil {
				return nil, err
			}
			parent = t

		default:
			return nil, err
		}
	}

	return parent, nil
}

// descendantTagsTxn returns every tag strictly underneath fullPath.
func (s *Store) descendantTagsTxn(txn *badger.Txn, fullPath string) ([]*domain.Tag, error) {
	prefix := tagByPathPrefix + fullPath + tagpath.Separator
	keys := keysWithPrefix(txn, []byte(prefix))

	tags := make([]*domain.Tag, 0, len(keys))
	for _, k := range keys {
		item, err := txn.Get(k)
		if err != nil {
			return nil, err
		}
		var tagID string
		if err := item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		}); err != nil {
			return nil, err
		}

		t, err := s.getTagTxn(txn, tagID)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// repointTagPathTxn moves a tag's path index entry and rewrites its record.
func (s *Store) repointTagPathTxn(txn *badger.Txn, tagID, oldPath, newPath string, t *domain.Tag) error {
	if err := txn.Delete([]byte(tagByPathPrefix + oldPath)); err != nil {
		return err
	}
	if err := txn.Set([]byte(tagByPathPrefix+newPath), []byte(tagID)); err != nil {
		return err
	}
	return setJSON(txn, []byte(tagPrefix+tagID), t)
}

// deleteTagRecordTxn removes a tag record and its path index entry.
func (s *Store) deleteTagRecordTxn(txn *badger.Txn, t *domain.Tag) error {
	if err := txn.Delete([]byte(tagPrefix + t.ID)); err != nil {
		return err
	}
	err := txn.Delete([]byte(tagByPathPrefix + t.FullPath))
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// insertRelationTxn creates a relation between a prompt version and a tag.
// Idempotent: an existing pair is left untouched.
func (s *Store) insertRelationTxn(txn *badger.Txn, promptID, tagID string) error {
	fwdKey := []byte(relByPromptPrefix + promptID + ":" + tagID)
	if _, err := txn.Get(fwdKey); err == nil {
		return nil
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	relID, err := id.Generate("rel")
	if err != nil {
		return err
	}

	rel := &domain.PromptTagRelation{
		ID:        relID,
		PromptID:  promptID,
		TagID:     tagID,
		CreatedAt: time.Now(),
	}

	if err := setJSON(txn, []byte(relationPrefix+relID), rel); err != nil {
		return err
	}
	if err := txn.Set(fwdKey, []byte(relID)); err != nil {
		return err
	}
	return txn.Set([]byte(relByTagPrefix+tagID+":"+promptID), []byte(relID))
}

// promptIDsForTagTxn returns all prompt version IDs related to a tag.
func (s *Store) promptIDsForTagTxn(txn *badger.Txn, tagID string) []string {
	prefix := relByTagPrefix + tagID + ":"
	keys := keysWithPrefix(txn, []byte(prefix))

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, string(k[len(prefix):]))
	}
	return ids
}

// deleteRelationsForPromptTxn removes every relation of a prompt version.
// Returns the number removed and the IDs of the tags that were referenced.
func (s *Store) deleteRelationsForPromptTxn(txn *badger.Txn, promptID string) (int, []string, error) {
	prefix := relByPromptPrefix + promptID + ":"
	keys := keysWithPrefix(txn, []byte(prefix))

	var tagIDs []string
	for _, k := range keys {
		tagID := string(k[len(prefix):])
		tagIDs = append(tagIDs, tagID)

		if err := s.deleteRelationByKeysTxn(txn, k, []byte(relByTagPrefix+tagID+":"+promptID)); err != nil {
			return 0, nil, err
		}
	}
	return len(keys), tagIDs, nil
}

// deleteRelationsForTagTxn removes every relation of a tag.
func (s *Store) deleteRelationsForTagTxn(txn *badger.Txn, tagID string) (int, error) {
	prefix := relByTagPrefix + tagID + ":"
	keys := keysWithPrefix(txn, []byte(prefix))

	for _, k := range keys {
		promptID := string(k[len(prefix):])
		if err := s.deleteRelationByKeysTxn(txn, k, []byte(relByPromptPrefix+promptID+":"+tagID)); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// deleteRelationByKeysTxn removes the relation record plus both index entries.
func (s *Store) deleteRelationByKeysTxn(txn *badger.Txn, indexKey, reverseKey []byte) error {
	item, err := txn.Get(indexKey)
	if err != nil {
		return err
	}
	var relID string
	if err := item.Value(func(val []byte) error {
		relID = string(val)
		return nil
	}); err != nil {
		return err
	}

	if err := txn.Delete([]byte(relationPrefix + relID)); err != nil {
		return err
	}
	if err := txn.Delete(indexKey); err != nil {
		return err
	}
	err = txn.Delete(reverseKey)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// cleanupOrphanedTagsTxn deletes every candidate tag left with zero relations.
// A candidate that still has descendant tags is kept: removing it would leave
// the children with a dangling ParentID. Candidates are processed deepest
// first so a removed leaf frees its parent within the same pass, and each
// removal queues the parent as a further candidate.
func (s *Store) cleanupOrphanedTagsTxn(txn *badger.Txn, candidates map[string]bool) ([]*domain.Tag, error) {
	var deleted []*domain.Tag

	seen := make(map[string]bool, len(candidates))
	pending := make([]string, 0, len(candidates))
	for tagID := range candidates {
		seen[tagID] = true
		pending = append(pending, tagID)
	}

	for len(pending) > 0 {
		round := make([]*domain.Tag, 0, len(pending))
		for _, tagID := range pending {
			t, err := s.getTagTxn(txn, tagID)
			if errors.Is(err, ErrTagNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			round = append(round, t)
		}
		pending = pending[:0]

		sort.Slice(round, func(i, j int) bool {
			return round[i].Level > round[j].Level
		})

		for _, t := range round {
			if len(s.promptIDsForTagTxn(txn, t.ID)) > 0 {
				continue
			}
			if s.hasDescendantsTxn(txn, t.FullPath) {
				continue
			}

			if err := s.deleteTagRecordTxn(txn, t); err != nil {
				return nil, err
			}
			deleted = append(deleted, t)

			if t.ParentID != "" && !seen[t.ParentID] {
				seen[t.ParentID] = true
				pending = append(pending, t.ParentID)
			}
		}
	}

	sort.Slice(deleted, func(i, j int) bool {
		return deleted[i].FullPath < deleted[j].FullPath
	})
	return deleted, nil
}

// hasDescendantsTxn reports whether any tag path exists strictly underneath
// fullPath.
func (s *Store) hasDescendantsTxn(txn *badger.Txn, fullPath string) bool {
	prefix := []byte(tagByPathPrefix + fullPath + tagpath.Separator)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return it.Valid()
}

// replaceWholeWord replaces occurrences of old in text that stand alone as a
// word. An occurrence counts when the runes on both sides are not letters,
// digits or underscores, so replacing "go" leaves "going" untouched.
func replaceWholeWord(text, old, new string) string {
	if old == "" || old == new {
		return text
	}

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(text[i:], old)
		if j < 0 {
			b.WriteString(text[i:])
			break
		}
		j += i
		end := j + len(old)

		before, _ := utf8.DecodeLastRuneInString(text[:j])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(before) || isWordRune(after) {
			b.WriteString(text[i:end])
		} else {
			b.WriteString(text[i:j])
			b.WriteString(new)
		}
		i = end
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
