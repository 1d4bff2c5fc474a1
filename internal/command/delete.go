package command

import (
	"context"

	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/sse"
)

// DeleteTagCommand removes a tag and all of its prompt relations. Without
// forceDelete the command refuses to remove a tag that still has prompts or
// child tags; with it the whole subtree is removed.
type DeleteTagCommand struct {
	tagID string
	force bool
}

// NewDeleteTagCommand builds a delete command from its parameters.
func NewDeleteTagCommand(p Params) *DeleteTagCommand {
	return &DeleteTagCommand{tagID: p.TagID, force: p.ForceDelete}
}

// Name implements Command.
func (c *DeleteTagCommand) Name() string { return OpDeleteTag }

// Execute implements Command.
func (c *DeleteTagCommand) Execute(ctx context.Context, cc *Context) *Result {
	if c.tagID == "" {
		return fail(errors.Validation("tag id is required"))
	}

	t, removed, err := cc.Store.DeleteTag(ctx, c.tagID, c.force)
	if err != nil {
		return failFrom(err)
	}

	cc.Events.Emit(sse.NewTagDeletedEvent(t))
	if cc.Logger != nil {
		cc.Logger.Info("tag deleted", "tag_id", t.ID, "path", t.FullPath, "relations_removed", removed)
	}

	return succeed(t)
}

// IsUndoable implements Command. Deletion discards the tag's relation set, so
// there is nothing to rebuild an inverse from.
func (c *DeleteTagCommand) IsUndoable() bool { return false }

// CreateUndoCommand implements Command.
func (c *DeleteTagCommand) CreateUndoCommand(_ *Result) (Command, error) {
	return nil, errors.Internal("delete is not undoable")
}
