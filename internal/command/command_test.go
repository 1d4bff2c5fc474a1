package command_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck-server/internal/command"
	"github.com/promptdeck/promptdeck-server/internal/domain"
	"github.com/promptdeck/promptdeck-server/internal/errors"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

func setupCommandContext(t *testing.T) (*command.Context, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "promptdeck-command-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &command.Context{Store: s, Events: store.NewNoopEmitter()}, s
}

func execute(t *testing.T, cc *command.Context, code string, p command.Params) *command.Result {
	t.Helper()

	cmd, err := command.NewFactory().Create(code, p)
	require.NoError(t, err)
	return command.NewExecutor().Execute(context.Background(), cmd, cc)
}

func TestCreateTagCommand(t *testing.T) {
	cc, s := setupCommandContext(t)

	result := execute(t, cc, command.OpCreateTag, command.Params{
		TagName:  "writing/fiction",
		TagColor: "#ff8800",
	})
	require.True(t, result.Success)

	created, ok := result.Data.(*domain.Tag)
	require.True(t, ok)
	assert.Equal(t, "fiction", created.Name)
	assert.Equal(t, "writing/fiction", created.FullPath)
	assert.Equal(t, "#ff8800", created.Color)

	// The ancestor was materialized too.
	_, err := s.GetTagByPath(context.Background(), "writing")
	require.NoError(t, err)
}

func TestCreateTagCommand_Validation(t *testing.T) {
	cc, _ := setupCommandContext(t)

	cases := []struct {
		name   string
		params command.Params
	}{
		{"empty name", command.Params{TagName: ""}},
		{"blank name", command.Params{TagName: "   "}},
		{"bad color", command.Params{TagName: "t", TagColor: "red"}},
		{"short hex", command.Params{TagName: "t", TagColor: "#ff"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := execute(t, cc, command.OpCreateTag, tc.params)
			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.Equal(t, errors.CodeValidation, result.Error.Code)
		})
	}

	// Nothing was created by the failed commands.
	tags, err := cc.Store.ListTags(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCreateTagCommand_Conflict(t *testing.T) {
	cc, _ := setupCommandContext(t)

	require.True(t, execute(t, cc, command.OpCreateTag, command.Params{TagName: "dup"}).Success)

	result := execute(t, cc, command.OpCreateTag, command.Params{TagName: "dup"})
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.CodeConflict, result.Error.Code)
}

func TestCreateTagCommand_UndoRoundTrip(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	before, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Empty(t, before)

	cmd, err := command.NewFactory().Create(command.OpCreateTag, command.Params{TagName: "ephemeral"})
	require.NoError(t, err)
	require.True(t, cmd.IsUndoable())

	result := command.NewExecutor().Execute(ctx, cmd, cc)
	require.True(t, result.Success)

	undo, err := cmd.CreateUndoCommand(result)
	require.NoError(t, err)

	undoResult := command.NewExecutor().Execute(ctx, undo, cc)
	require.True(t, undoResult.Success)

	after, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestDeleteTagCommand(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	tag, err := s.ResolvePath(ctx, "doomed")
	require.NoError(t, err)

	result := execute(t, cc, command.OpDeleteTag, command.Params{TagID: tag.ID})
	require.True(t, result.Success)

	_, err = s.GetTagByID(ctx, tag.ID)
	assert.ErrorIs(t, err, store.ErrTagNotFound)
}

func TestDeleteTagCommand_RefusesTaggedWithoutForce(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	v, err := s.CreateVersion(ctx, store.CreateVersionParams{Title: "p", Text: "t"})
	require.NoError(t, err)
	_, err = s.ReplacePromptTags(ctx, v.ID, []string{"held"})
	require.NoError(t, err)

	tag, err := s.GetTagByPath(ctx, "held")
	require.NoError(t, err)

	result := execute(t, cc, command.OpDeleteTag, command.Params{TagID: tag.ID})
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.CodeConflict, result.Error.Code)

	forced := execute(t, cc, command.OpDeleteTag, command.Params{TagID: tag.ID, ForceDelete: true})
	assert.True(t, forced.Success)
}

func TestDeleteTagCommand_NotUndoable(t *testing.T) {
	cmd := command.NewDeleteTagCommand(command.Params{TagID: "tag-x"})
	assert.False(t, cmd.IsUndoable())

	_, err := cmd.CreateUndoCommand(&command.Result{Success: true})
	assert.Error(t, err)
}

func TestDeleteTagCommand_NotFound(t *testing.T) {
	cc, _ := setupCommandContext(t)

	result := execute(t, cc, command.OpDeleteTag, command.Params{TagID: "tag-missing"})
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, errors.CodeNotFound, result.Error.Code)
}

func TestRenameTagCommand(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	_, err := s.ResolvePath(ctx, "prog/go")
	require.NoError(t, err)
	tag, err := s.GetTagByPath(ctx, "prog")
	require.NoError(t, err)

	result := execute(t, cc, command.OpRenameTag, command.Params{TagID: tag.ID, NewName: "programming"})
	require.True(t, result.Success)

	renamed, ok := result.Data.(*store.RenameResult)
	require.True(t, ok)
	assert.Equal(t, "programming", renamed.Tag.FullPath)

	_, err = s.GetTagByPath(ctx, "programming/go")
	require.NoError(t, err)
}

func TestRenameTagCommand_Validation(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	tag, err := s.ResolvePath(ctx, "stable")
	require.NoError(t, err)

	cases := []struct {
		name   string
		params command.Params
	}{
		{"missing id", command.Params{NewName: "x"}},
		{"empty new name", command.Params{TagID: tag.ID}},
		{"path-like new name", command.Params{TagID: tag.ID, NewName: "a/b"}},
		{"same name", command.Params{TagID: tag.ID, NewName: "stable"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := execute(t, cc, command.OpRenameTag, tc.params)
			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.Equal(t, errors.CodeValidation, result.Error.Code)
		})
	}

	// The tag is untouched.
	got, err := s.GetTagByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable", got.FullPath)
}

func TestRenameTagCommand_UndoRoundTrip(t *testing.T) {
	cc, s := setupCommandContext(t)
	ctx := context.Background()

	tag, err := s.ResolvePath(ctx, "draft")
	require.NoError(t, err)

	cmd, err := command.NewFactory().Create(command.OpRenameTag, command.Params{TagID: tag.ID, NewName: "final"})
	require.NoError(t, err)
	require.True(t, cmd.IsUndoable())

	result := command.NewExecutor().Execute(ctx, cmd, cc)
	require.True(t, result.Success)

	undo, err := cmd.CreateUndoCommand(result)
	require.NoError(t, err)
	require.True(t, command.NewExecutor().Execute(ctx, undo, cc).Success)

	got, err := s.GetTagByID(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.FullPath)
}

func TestFactory_UnknownCommand(t *testing.T) {
	_, err := command.NewFactory().Create("EXPLODE", command.Params{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownCommand))
}

func TestExecutor_MissingCollaborators(t *testing.T) {
	cmd := command.NewCreateTagCommand(command.Params{TagName: "x"})
	exec := command.NewExecutor()
	ctx := context.Background()

	result := exec.Execute(ctx, cmd, nil)
	assert.False(t, result.Success)

	result = exec.Execute(ctx, cmd, &command.Context{})
	assert.False(t, result.Success)

	result = exec.Execute(ctx, nil, &command.Context{})
	assert.False(t, result.Success)
}
