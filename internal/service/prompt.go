// Package service orchestrates store, search, and event concerns behind the
// operations the API exposes.
package service

import (
	"context"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/search"
	"github.com/promptdeck/promptdeck-server/internal/sse"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

// PromptService orchestrates prompt version operations.
type PromptService struct {
	store  *store.Store
	events store.EventEmitter
	search *search.SearchIndex
	logger *logger.Logger
}

// NewPromptService creates a prompt service. The search index may be nil;
// search-dependent operations then fail with a validation error.
func NewPromptService(s *store.Store, events store.EventEmitter, idx *search.SearchIndex, log *logger.Logger) *PromptService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	return &PromptService{store: s, events: events, search: idx, logger: log}
}

// CreatePromptParams carries the fields of a new prompt.
type CreatePromptParams struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Text        string   `json:"text" validate:"required"`
	FolderID    string   `json:"folderId,omitempty"`
	TagPaths    []string `json:"tagPaths,omitempty"`
}

// CreatePrompt starts a new version chain and optionally tags it.
func (s *PromptService) CreatePrompt(ctx context.Context, p CreatePromptParams) (*domain.PromptVersion, error) {
	v, err := s.store.CreateVersion(ctx, store.CreateVersionParams{
		Title:       p.Title,
		Description: p.Description,
		Text:        p.Text,
		FolderID:    p.FolderID,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	if len(p.TagPaths) > 0 {
		if err := s.setTags(ctx, v, p.TagPaths); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// EditPromptParams carries the fields of a prompt edit. A nil TagPaths leaves
// the tag set untouched; an empty non-nil slice clears it.
type EditPromptParams struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Text        string    `json:"text" validate:"required"`
	TagPaths    *[]string `json:"tagPaths,omitempty"`
}

// EditPrompt appends a new version to the chain the given version belongs to.
// The previous latest keeps its content; usage counters carry forward.
func (s *PromptService) EditPrompt(ctx context.Context, versionID string, p EditPromptParams) (*domain.PromptVersion, error) {
	v, err := s.store.Supersede(ctx, versionID, store.SupersedeParams{
		Title:       p.Title,
		Description: p.Description,
		Text:        p.Text,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	if p.TagPaths != nil {
		if err := s.setTags(ctx, v, *p.TagPaths); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// GetPrompt loads a single version record.
func (s *PromptService) GetPrompt(ctx context.Context, versionID string) (*domain.PromptVersion, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return v, nil
}

// GetLatest loads the active version of a chain.
func (s *PromptService) GetLatest(ctx context.Context, rootID string) (*domain.PromptVersion, error) {
	v, err := s.store.GetLatest(ctx, rootID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return v, nil
}

// GetHistory loads every version of a chain, ascending by version number.
func (s *PromptService) GetHistory(ctx context.Context, rootID string) ([]*domain.PromptVersion, error) {
	versions, err := s.store.GetAllVersions(ctx, rootID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return versions, nil
}

// ListPrompts returns the latest version of every chain.
func (s *PromptService) ListPrompts(ctx context.Context) ([]*domain.PromptVersion, error) {
	return s.store.ListLatest(ctx)
}

// RecordUsage bumps the usage counter of a version.
func (s *PromptService) RecordUsage(ctx context.Context, versionID string) (*domain.PromptVersion, error) {
	v, err := s.store.RecordUsage(ctx, versionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return v, nil
}

// SetPromptTags replaces the full tag set of a version.
func (s *PromptService) SetPromptTags(ctx context.Context, versionID string, paths []string) ([]*domain.Tag, error) {
	v, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if err := s.setTags(ctx, v, paths); err != nil {
		return nil, err
	}
	return s.store.TagsForPrompt(ctx, versionID)
}

// GetPromptTags returns the tags attached to a version.
func (s *PromptService) GetPromptTags(ctx context.Context, versionID string) ([]*domain.Tag, error) {
	tags, err := s.store.TagsForPrompt(ctx, versionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return tags, nil
}

// Search runs a full-text query over the latest versions.
func (s *PromptService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.search == nil {
		return nil, errors.Validation("search is not enabled")
	}
	return s.search.Search(ctx, params)
}

// ReindexAll rebuilds the search index from the latest version of every
// chain. Used on startup and after restores.
func (s *PromptService) ReindexAll(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, errors.Validation("search is not enabled")
	}

	if err := s.search.Rebuild(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "rebuild search index")
	}

	versions, err := s.store.AllVersions(ctx)
	if err != nil {
		return 0, mapStoreError(err)
	}

	var docs []*search.SearchDocument
	for _, v := range versions {
		if !v.IsLatest {
			continue
		}
		paths, err := s.store.TagPathsForPrompt(ctx, v.ID)
		if err != nil {
			return 0, mapStoreError(err)
		}
		docs = append(docs, search.PromptToSearchDocument(v, paths))
	}

	if err := s.search.IndexPrompts(docs); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "index prompts")
	}

	if s.logger != nil {
		s.logger.Info("search index rebuilt", "documents", len(docs))
	}
	return len(docs), nil
}

// setTags replaces the tag set, refreshes the search document, and notifies
// listeners.
func (s *PromptService) setTags(ctx context.Context, v *domain.PromptVersion, paths []string) error {
	if _, err := s.store.ReplacePromptTags(ctx, v.ID, paths); err != nil {
		return mapStoreError(err)
	}

	current, err := s.store.TagPathsForPrompt(ctx, v.ID)
	if err != nil {
		return mapStoreError(err)
	}

	if s.search != nil && v.IsLatest {
		if err := s.search.IndexPrompt(ctx, v, current); err != nil && s.logger != nil {
			s.logger.Warn("failed to reindex prompt after tag change", "version_id", v.ID, "error", err)
		}
	}

	s.events.Emit(sse.NewPromptTagsChangedEvent(v.ID, current))
	return nil
}

// mapStoreError converts store sentinel errors into the domain taxonomy.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrVersionNotFound):
		return errors.NotFound("prompt version not found")
	case errors.Is(err, store.ErrTagNotFound):
		return errors.NotFound("tag not found")
	case errors.Is(err, store.ErrTagExists):
		return errors.Conflict("a tag with this path already exists")
	case errors.Is(err, store.ErrTagHasPrompts):
		return errors.Conflict("tag still has associated prompts")
	case errors.Is(err, store.ErrTagHasChildren):
		return errors.Conflict("tag still has child tags")
	case errors.Is(err, store.ErrInvalidName):
		return errors.Validation("tag name must be a single path segment")
	default:
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return domainErr
		}
		return errors.Wrap(err, errors.CodePersistence, "store operation failed")
	}
}
