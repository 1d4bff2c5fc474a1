// Package command implements undoable tag mutations.
//
// Each mutation (create, delete, rename) is a Command value executed against
// a Context bundling the store and an event sink. Execution validates its
// parameters before touching any state, runs the mutation in one store
// transaction, and reports a structured Result instead of returning errors
// across the boundary. Undoable commands can synthesize their inverse from
// the forward execution's result.
package command

import (
	"context"

	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

// Operation codes accepted by the Factory.
const (
	OpCreateTag = "CREATE_TAG"
	OpDeleteTag = "DELETE"
	OpRenameTag = "RENAME_TAG"
)

// Command is a single tag mutation.
type Command interface {
	// Name returns the operation code of the command.
	Name() string
	// Execute validates the command's parameters and, if they hold, applies
	// the mutation. Validation failures leave the store untouched.
	Execute(ctx context.Context, c *Context) *Result
	// IsUndoable reports whether an inverse command can be synthesized.
	IsUndoable() bool
	// CreateUndoCommand builds the inverse command from a successful forward
	// result. Calling it on a non-undoable command or a failed result is an
	// error.
	CreateUndoCommand(result *Result) (Command, error)
}

// Context bundles the collaborators a command executes against.
type Context struct {
	Store  *store.Store
	Events store.EventEmitter
	Logger *logger.Logger
}

// Params carries the payload of a tag operation request. Which fields are
// read depends on the operation code.
type Params struct {
	TagID            string `json:"tagId,omitempty"`
	TagName          string `json:"tagName,omitempty"`
	TagColor         string `json:"tagColor,omitempty"`
	NewName          string `json:"newName,omitempty"`
	ForceDelete      bool   `json:"forceDelete,omitempty"`
	UpdateReferences bool   `json:"updateReferences,omitempty"`
}

// Result is the structured outcome of a command execution.
type Result struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *errors.Error `json:"error,omitempty"`
}

func succeed(data any) *Result {
	return &Result{Success: true, Data: data}
}

func fail(err *errors.Error) *Result {
	return &Result{Success: false, Error: err}
}

// failFrom maps store-level errors onto the command error taxonomy.
func failFrom(err error) *Result {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		return fail(domainErr)
	}

	switch {
	case errors.Is(err, store.ErrTagNotFound):
		return fail(errors.NotFound("tag not found"))
	case errors.Is(err, store.ErrVersionNotFound):
		return fail(errors.NotFound("prompt version not found"))
	case errors.Is(err, store.ErrTagExists):
		return fail(errors.Conflict("a tag with this path already exists"))
	case errors.Is(err, store.ErrTagHasPrompts):
		return fail(errors.Conflict("tag still has associated prompts"))
	case errors.Is(err, store.ErrTagHasChildren):
		return fail(errors.Conflict("tag still has child tags"))
	case errors.Is(err, store.ErrInvalidName):
		return fail(errors.Validation("tag name must be a single path segment"))
	default:
		return fail(errors.Wrap(err, errors.CodePersistence, "tag operation failed"))
	}
}
