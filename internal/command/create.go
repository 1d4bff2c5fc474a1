package command

import (
	"context"
	"strings"

	"github.com/promptdeck/promptdeck-server/internal/color"
	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/sse"
)

// CreateTagCommand creates a tag at the given path, materializing missing
// ancestors. The path may be a single name or a nested "a/b/c" path.
type CreateTagCommand struct {
	name  string
	color string
}

// NewCreateTagCommand builds a create command from its parameters.
func NewCreateTagCommand(p Params) *CreateTagCommand {
	return &CreateTagCommand{
		name:  strings.TrimSpace(p.TagName),
		color: strings.TrimSpace(p.TagColor),
	}
}

// Name implements Command.
func (c *CreateTagCommand) Name() string { return OpCreateTag }

// Execute implements Command.
func (c *CreateTagCommand) Execute(ctx context.Context, cc *Context) *Result {
	if c.name == "" {
		return fail(errors.Validation("tag name is required"))
	}
	if c.color != "" && !color.IsHexToken(c.color) {
		return fail(errors.Validationf("invalid tag color %q", c.color))
	}

	t, err := cc.Store.CreateTagPath(ctx, c.name, c.color)
	if err != nil {
		return failFrom(err)
	}

	cc.Events.Emit(sse.NewTagCreatedEvent(t))
	if cc.Logger != nil {
		cc.Logger.Info("tag created", "tag_id", t.ID, "path", t.FullPath)
	}

	return succeed(t)
}

// IsUndoable implements Command. A create is reversed by deleting the tag it
// minted.
func (c *CreateTagCommand) IsUndoable() bool { return true }

// CreateUndoCommand implements Command.
func (c *CreateTagCommand) CreateUndoCommand(result *Result) (Command, error) {
	if result == nil || !result.Success {
		return nil, errors.Internal("cannot undo a failed create")
	}

	t, ok := result.Data.(*domain.Tag)
	if !ok {
		return nil, errors.Internal("create result carries no tag")
	}

	return NewDeleteTagCommand(Params{TagID: t.ID}), nil
}
