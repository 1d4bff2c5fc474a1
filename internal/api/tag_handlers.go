package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/promptdeck/promptdeck-server/internal/command"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags ordered by full path",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "matchTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/match",
		Summary:     "Match tags",
		Description: "Returns the tag at the given path plus every descendant",
		Tags:        []string{"Tags"},
	}, s.handleMatchTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "executeTagOperation",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/operations",
		Summary:     "Execute tag operation",
		Description: "Runs a tag mutation command (CREATE_TAG, DELETE, RENAME_TAG)",
		Tags:        []string{"Tags"},
	}, s.handleExecuteTagOperation)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoTagOperation",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/undo",
		Summary:     "Undo tag operation",
		Description: "Undoes the most recent undoable tag operation",
		Tags:        []string{"Tags"},
	}, s.handleUndoTagOperation)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}/prompts",
		Summary:     "Get tag prompts",
		Description: "Returns version IDs carrying this tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTagPrompts)
}

// === DTOs ===

// MatchTagsInput contains parameters for hierarchical tag matching.
type MatchTagsInput struct {
	Path string `query:"path" minLength:"1" doc:"Tag path to match; descendants are included"`
}

// TagOperationRequest is the request body for a tag mutation command.
type TagOperationRequest struct {
	Operation string         `json:"operation" enum:"CREATE_TAG,DELETE,RENAME_TAG" doc:"Operation code"`
	Params    command.Params `json:"params" doc:"Operation parameters; which fields are read depends on the code"`
}

// TagOperationInput wraps the tag operation request for Huma.
type TagOperationInput struct {
	Body TagOperationRequest
}

// TagOperationResponse is the outcome of a tag mutation command.
type TagOperationResponse struct {
	Success   bool `json:"success" doc:"Whether the command applied"`
	Data      any  `json:"data,omitempty" doc:"Operation-specific result payload"`
	UndoDepth int  `json:"undo_depth" doc:"Number of operations currently undoable"`
}

// TagOperationOutput wraps the tag operation response for Huma.
type TagOperationOutput struct {
	Body TagOperationResponse
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// TagPromptsResponse contains version IDs carrying a tag.
type TagPromptsResponse struct {
	PromptIDs []string `json:"prompt_ids" doc:"Version IDs with this tag"`
}

// TagPromptsOutput wraps the tag prompts response for Huma.
type TagPromptsOutput struct {
	Body TagPromptsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: tagsToResponse(tags)}}, nil
}

func (s *Server) handleMatchTags(ctx context.Context, input *MatchTagsInput) (*TagListOutput, error) {
	tags, err := s.services.Tag.MatchTags(ctx, input.Path)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: tagsToResponse(tags)}}, nil
}

func (s *Server) handleExecuteTagOperation(ctx context.Context, input *TagOperationInput) (*TagOperationOutput, error) {
	result := s.services.Tag.ExecuteOperation(ctx, input.Body.Operation, input.Body.Params)
	if !result.Success {
		return nil, result.Error
	}

	return &TagOperationOutput{
		Body: TagOperationResponse{
			Success:   true,
			Data:      result.Data,
			UndoDepth: s.services.Tag.UndoDepth(),
		},
	}, nil
}

func (s *Server) handleUndoTagOperation(ctx context.Context, _ *struct{}) (*TagOperationOutput, error) {
	result := s.services.Tag.Undo(ctx)
	if !result.Success {
		return nil, result.Error
	}

	return &TagOperationOutput{
		Body: TagOperationResponse{
			Success:   true,
			Data:      result.Data,
			UndoDepth: s.services.Tag.UndoDepth(),
		},
	}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.GetTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: tagToResponse(t)}, nil
}

func (s *Server) handleGetTagPrompts(ctx context.Context, input *GetTagInput) (*TagPromptsOutput, error) {
	ids, err := s.services.Tag.PromptsForTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagPromptsOutput{Body: TagPromptsResponse{PromptIDs: ids}}, nil
}
