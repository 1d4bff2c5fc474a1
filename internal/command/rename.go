package command

import (
	"context"
	"strings"

	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/sse"
	"github.com/promptdeck/promptdeck-server/internal/store"
	"github.com/promptdeck/promptdeck-server/internal/tagpath"
)

// RenameTagCommand changes a tag's name, rewriting the full path of the tag
// and every descendant. With updateReferences it also rewrites mentions of
// the old name inside the text of prompts carrying the tag.
type RenameTagCommand struct {
	tagID            string
	newName          string
	updateReferences bool
}

// NewRenameTagCommand builds a rename command from its parameters.
func NewRenameTagCommand(p Params) *RenameTagCommand {
	return &RenameTagCommand{
		tagID:            p.TagID,
		newName:          strings.TrimSpace(p.NewName),
		updateReferences: p.UpdateReferences,
	}
}

// Name implements Command.
func (c *RenameTagCommand) Name() string { return OpRenameTag }

// Execute implements Command.
func (c *RenameTagCommand) Execute(ctx context.Context, cc *Context) *Result {
	if c.tagID == "" {
		return fail(errors.Validation("tag id is required"))
	}
	if c.newName == "" {
		return fail(errors.Validation("new tag name is required"))
	}
	if strings.Contains(c.newName, tagpath.Separator) {
		return fail(errors.Validation("tag name must be a single path segment"))
	}

	current, err := cc.Store.GetTagByID(ctx, c.tagID)
	if err != nil {
		return failFrom(err)
	}
	if current.Name == c.newName {
		return fail(errors.Validation("new tag name matches the current name"))
	}

	result, err := cc.Store.RenameTag(ctx, c.tagID, c.newName, c.updateReferences)
	if err != nil {
		return failFrom(err)
	}

	cc.Events.Emit(sse.NewTagRenamedEvent(result.Tag, result.OldPath, result.RewrittenPaths))
	if cc.Logger != nil {
		cc.Logger.Info("tag renamed",
			"tag_id", result.Tag.ID,
			"old_path", result.OldPath,
			"new_path", result.Tag.FullPath,
			"descendants", len(result.RewrittenPaths))
	}

	return succeed(result)
}

// IsUndoable implements Command. A rename is reversed by renaming back.
func (c *RenameTagCommand) IsUndoable() bool { return true }

// CreateUndoCommand implements Command. Reference rewrites are not inverted;
// undoing a rename restores paths, not prompt text.
func (c *RenameTagCommand) CreateUndoCommand(result *Result) (Command, error) {
	if result == nil || !result.Success {
		return nil, errors.Internal("cannot undo a failed rename")
	}

	renamed, ok := result.Data.(*store.RenameResult)
	if !ok {
		return nil, errors.Internal("rename result carries no rename data")
	}

	return NewRenameTagCommand(Params{
		TagID:   renamed.Tag.ID,
		NewName: tagpath.Name(renamed.OldPath),
	}), nil
}
