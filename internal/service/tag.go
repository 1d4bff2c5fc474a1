package service

import (
	"context"
	"sync"

	"github.com/promptdeck/promptdeck-server/internal/command"
	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/store"
	"github.com/promptdeck/promptdeck-server/internal/tagpath"
)

// maxUndoDepth bounds the undo stack; older entries fall off.
const maxUndoDepth = 20

// TagService orchestrates tag reads and the command-based tag mutations,
// keeping a bounded stack of undo commands for the undoable subset.
type TagService struct {
	store    *store.Store
	events   store.EventEmitter
	factory  *command.Factory
	executor *command.Executor
	logger   *logger.Logger

	mu        sync.Mutex
	undoStack []command.Command
}

// NewTagService creates a tag service.
func NewTagService(s *store.Store, events store.EventEmitter, log *logger.Logger) *TagService {
	if events == nil {
		events = store.NewNoopEmitter()
	}
	return &TagService{
		store:    s,
		events:   events,
		factory:  command.NewFactory(),
		executor: command.NewExecutor(),
		logger:   log,
	}
}

// ListTags returns all tags ordered by full path.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx)
}

// GetTag loads a tag by id.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return t, nil
}

// GetTagByPath loads a tag by its canonical full path.
func (s *TagService) GetTagByPath(ctx context.Context, path string) (*domain.Tag, error) {
	t, err := s.store.GetTagByPath(ctx, path)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return t, nil
}

// MatchTags returns the tag at path plus every descendant. A query for
// "programming" also surfaces "programming/go" but never "programmingx".
func (s *TagService) MatchTags(ctx context.Context, path string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return tagpath.Match(tags, path), nil
}

// PromptsForTag returns the version IDs carrying the tag.
func (s *TagService) PromptsForTag(ctx context.Context, tagID string) ([]string, error) {
	ids, err := s.store.GetPromptsForTag(ctx, tagID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ids, nil
}

// ExecuteOperation builds and runs the command for an operation code. On a
// successful undoable command the synthesized inverse is pushed onto the undo
// stack.
func (s *TagService) ExecuteOperation(ctx context.Context, code string, params command.Params) *command.Result {
	cmd, err := s.factory.Create(code, params)
	if err != nil {
		var domainErr *errors.Error
		if !errors.As(err, &domainErr) {
			domainErr = errors.Wrap(err, errors.CodeInternal, "building command failed")
		}
		return &command.Result{Success: false, Error: domainErr}
	}

	result := s.executor.Execute(ctx, cmd, s.commandContext())
	if result.Success && cmd.IsUndoable() {
		if undo, undoErr := cmd.CreateUndoCommand(result); undoErr == nil {
			s.pushUndo(undo)
		} else if s.logger != nil {
			s.logger.Warn("failed to synthesize undo command", "operation", code, "error", undoErr)
		}
	}

	return result
}

// Undo pops and executes the most recent undo command. Undoing an undo is not
// supported; the inverse execution does not push onto the stack.
func (s *TagService) Undo(ctx context.Context) *command.Result {
	undo := s.popUndo()
	if undo == nil {
		return &command.Result{
			Success: false,
			Error:   errors.Validation("nothing to undo"),
		}
	}

	return s.executor.Execute(ctx, undo, s.commandContext())
}

// UndoDepth reports how many operations can currently be undone.
func (s *TagService) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

func (s *TagService) commandContext() *command.Context {
	return &command.Context{Store: s.store, Events: s.events, Logger: s.logger}
}

func (s *TagService) pushUndo(cmd command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undoStack = append(s.undoStack, cmd)
	if len(s.undoStack) > maxUndoDepth {
		s.undoStack = s.undoStack[len(s.undoStack)-maxUndoDepth:]
	}
}

func (s *TagService) popUndo() command.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return nil
	}
	cmd := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	return cmd
}
