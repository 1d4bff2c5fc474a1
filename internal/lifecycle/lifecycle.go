// Package lifecycle drives prompt version deletion through an ordered
// handler pipeline: validate the target, collect its dependencies, then
// delete inside one store transaction. Each handler may short-circuit the
// pipeline; a failure before the deletion handler leaves the store untouched.
package lifecycle

import (
	"context"

	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

// Options controls the scope of a deletion.
type Options struct {
	// DeleteAllVersions removes the whole chain the target belongs to
	// instead of the single version.
	DeleteAllVersions bool
	// CleanupOrphanedTags additionally deletes tags left with zero prompt
	// relations after the versions are removed.
	CleanupOrphanedTags bool
}

// Result is the structured outcome of a deletion.
type Result struct {
	Success      bool          `json:"success"`
	DeletedCount int           `json:"deletedCount"`
	DeletedTags  []string      `json:"deletedTags,omitempty"`
	Error        *errors.Error `json:"error,omitempty"`
}

// Dependencies describes everything a deletion would touch, without touching
// it. Callers use it to warn before deleting.
type Dependencies struct {
	// Version is the directly targeted record.
	Version *domain.PromptVersion `json:"version"`
	// ChainVersionIDs lists every version sharing the target's root,
	// ascending by version number.
	ChainVersionIDs []string `json:"chainVersionIds"`
	// TagPaths maps version IDs to the tag paths attached to them.
	TagPaths map[string][]string `json:"tagPaths,omitempty"`
	// RelationCount is the total number of prompt-tag relations referencing
	// the chain.
	RelationCount int `json:"relationCount"`
}

// Recorder receives a record of every applied deletion.
type Recorder interface {
	RecordOperation(ctx context.Context, name string, details any) error
}

// NoopRecorder discards operation records.
type NoopRecorder struct{}

// RecordOperation implements Recorder.
func (NoopRecorder) RecordOperation(context.Context, string, any) error { return nil }

// deleteState is threaded through the pipeline handlers.
type deleteState struct {
	versionID string
	opts      Options

	version    *domain.PromptVersion
	versionIDs []string

	outcome *store.DeletionResult
}

// deleteHandler is one step of the pipeline. Returning an error
// short-circuits the remaining handlers.
type deleteHandler interface {
	handle(ctx context.Context, st *deleteState) error
}

// Deleter runs the deletion pipeline against a store.
type Deleter struct {
	store    *store.Store
	recorder Recorder
	logger   *logger.Logger
	pipeline []deleteHandler
}

// NewDeleter wires the pipeline. A nil recorder falls back to NoopRecorder.
func NewDeleter(s *store.Store, recorder Recorder, log *logger.Logger) *Deleter {
	if recorder == nil {
		recorder = NoopRecorder{}
	}

	d := &Deleter{store: s, recorder: recorder, logger: log}
	d.pipeline = []deleteHandler{
		&validationHandler{store: s},
		&dependencyHandler{store: s},
		&deletionHandler{store: s},
	}
	return d
}

// GetVersionInfo loads the targeted version record.
func (d *Deleter) GetVersionInfo(ctx context.Context, versionID string) (*domain.PromptVersion, error) {
	v, err := d.store.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, store.ErrVersionNotFound) {
			return nil, errors.NotFoundf("prompt version %s not found", versionID)
		}
		return nil, errors.Wrap(err, errors.CodePersistence, "loading version failed")
	}
	return v, nil
}

// GetVersionDependencies reports what deleting the version's chain would
// remove. It never mutates anything.
func (d *Deleter) GetVersionDependencies(ctx context.Context, versionID string) (*Dependencies, error) {
	v, err := d.GetVersionInfo(ctx, versionID)
	if err != nil {
		return nil, err
	}

	chain, err := d.store.GetAllVersions(ctx, v.RootID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePersistence, "loading version chain failed")
	}

	deps := &Dependencies{
		Version:  v,
		TagPaths: make(map[string][]string),
	}
	for _, member := range chain {
		deps.ChainVersionIDs = append(deps.ChainVersionIDs, member.ID)

		paths, err := d.store.TagPathsForPrompt(ctx, member.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePersistence, "loading tag relations failed")
		}
		if len(paths) > 0 {
			deps.TagPaths[member.ID] = paths
		}
		deps.RelationCount += len(paths)
	}

	return deps, nil
}

// DeleteVersion removes a version, or its whole chain, through the pipeline.
// Deleting an unknown id is an error and leaves the store untouched.
func (d *Deleter) DeleteVersion(ctx context.Context, versionID string, opts Options) *Result {
	st := &deleteState{versionID: versionID, opts: opts}

	for _, h := range d.pipeline {
		if err := h.handle(ctx, st); err != nil {
			return failResult(err)
		}
	}

	result := &Result{
		Success:      true,
		DeletedCount: len(st.outcome.DeletedVersions),
	}
	for _, t := range st.outcome.DeletedTags {
		result.DeletedTags = append(result.DeletedTags, t.FullPath)
	}

	details := map[string]any{
		"root_id":           st.outcome.RootID,
		"deleted_versions":  st.outcome.DeletedVersions,
		"deleted_relations": st.outcome.DeletedRelations,
		"deleted_tags":      result.DeletedTags,
		"whole_chain":       opts.DeleteAllVersions,
	}
	if err := d.recorder.RecordOperation(ctx, "version.delete", details); err != nil && d.logger != nil {
		d.logger.Warn("failed to record deletion", "error", err)
	}

	if d.logger != nil {
		d.logger.Info("versions deleted",
			"root_id", st.outcome.RootID,
			"count", result.DeletedCount,
			"orphaned_tags", len(result.DeletedTags))
	}

	return result
}

func failResult(err error) *Result {
	var domainErr *errors.Error
	if !errors.As(err, &domainErr) {
		domainErr = errors.Wrap(err, errors.CodePersistence, "version deletion failed")
	}
	return &Result{Success: false, Error: domainErr}
}

// validationHandler checks that the target version exists.
type validationHandler struct {
	store *store.Store
}

func (h *validationHandler) handle(ctx context.Context, st *deleteState) error {
	v, err := h.store.GetVersion(ctx, st.versionID)
	if err != nil {
		if errors.Is(err, store.ErrVersionNotFound) {
			return errors.NotFoundf("prompt version %s not found", st.versionID)
		}
		return err
	}
	st.version = v
	return nil
}

// dependencyHandler resolves the id set to delete. It reads only.
type dependencyHandler struct {
	store *store.Store
}

func (h *dependencyHandler) handle(ctx context.Context, st *deleteState) error {
	if !st.opts.DeleteAllVersions {
		st.versionIDs = []string{st.version.ID}
		return nil
	}

	chain, err := h.store.GetAllVersions(ctx, st.version.RootID)
	if err != nil {
		return err
	}
	for _, member := range chain {
		st.versionIDs = append(st.versionIDs, member.ID)
	}
	return nil
}

// deletionHandler performs the removal in one store transaction.
type deletionHandler struct {
	store *store.Store
}

func (h *deletionHandler) handle(ctx context.Context, st *deleteState) error {
	outcome, err := h.store.DeleteVersions(ctx, st.versionIDs, st.opts.CleanupOrphanedTags)
	if err != nil {
		return err
	}
	st.outcome = outcome
	return nil
}
