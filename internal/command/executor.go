package command

import (
	"context"

	"github.com/promptdeck/promptdeck-server/internal/errors"
)

// Executor runs commands against a context, checking the context's
// collaborators before delegating. A broken context yields a failed Result
// instead of a panic further down.
type Executor struct{}

// NewExecutor creates a command executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the command.
func (e *Executor) Execute(ctx context.Context, cmd Command, cc *Context) *Result {
	if cmd == nil {
		return fail(errors.Validation("no command to execute"))
	}
	if cc == nil || cc.Store == nil {
		return fail(errors.Internal("command context has no store"))
	}
	if cc.Events == nil {
		return fail(errors.Internal("command context has no event sink"))
	}

	return cmd.Execute(ctx, cc)
}
