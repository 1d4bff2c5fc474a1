package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/promptdeck/promptdeck-server/internal/service"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts",
		Summary:     "List prompts",
		Description: "Returns the latest version of every prompt chain",
		Tags:        []string{"Prompts"},
	}, s.handleListPrompts)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts",
		Summary:     "Create prompt",
		Description: "Starts a new prompt version chain",
		Tags:        []string{"Prompts"},
	}, s.handleCreatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}",
		Summary:     "Get prompt version",
		Description: "Returns a single prompt version by ID",
		Tags:        []string{"Prompts"},
	}, s.handleGetPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "editPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{id}/versions",
		Summary:     "Edit prompt",
		Description: "Appends a new version to the chain the given version belongs to",
		Tags:        []string{"Prompts"},
	}, s.handleEditPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLatestVersion",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}/latest",
		Summary:     "Get latest version",
		Description: "Returns the active version of a chain",
		Tags:        []string{"Prompts"},
	}, s.handleGetLatest)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVersionHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}/history",
		Summary:     "Get version history",
		Description: "Returns every version of a chain, ascending by version number",
		Tags:        []string{"Prompts"},
	}, s.handleGetHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordPromptUsage",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{id}/usage",
		Summary:     "Record usage",
		Description: "Bumps the usage counter of a version",
		Tags:        []string{"Prompts"},
	}, s.handleRecordUsage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPromptTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{id}/tags",
		Summary:     "Get prompt tags",
		Description: "Returns the tags attached to a version",
		Tags:        []string{"Prompts"},
	}, s.handleGetPromptTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPromptTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/prompts/{id}/tags",
		Summary:     "Set prompt tags",
		Description: "Replaces the full tag set of a version, materializing missing tags",
		Tags:        []string{"Prompts"},
	}, s.handleSetPromptTags)
}

// === DTOs ===

// CreatePromptRequest is the request body for creating a prompt.
type CreatePromptRequest struct {
	Title       string   `json:"title" minLength:"1" maxLength:"200" doc:"Prompt title"`
	Description string   `json:"description,omitempty" maxLength:"2000" doc:"Prompt description"`
	Text        string   `json:"text" minLength:"1" doc:"Prompt text"`
	FolderID    string   `json:"folder_id,omitempty" doc:"Folder to place the chain in"`
	TagPaths    []string `json:"tag_paths,omitempty" doc:"Tag paths to attach, e.g. programming/go"`
}

// CreatePromptInput wraps the create prompt request for Huma.
type CreatePromptInput struct {
	Body CreatePromptRequest
}

// ListPromptsResponse contains the latest versions of all chains.
type ListPromptsResponse struct {
	Prompts []PromptResponse `json:"prompts" doc:"Latest version of every chain"`
}

// ListPromptsOutput wraps the list prompts response for Huma.
type ListPromptsOutput struct {
	Body ListPromptsResponse
}

// GetPromptInput contains parameters for getting a prompt version.
type GetPromptInput struct {
	ID string `path:"id" doc:"Version ID"`
}

// EditPromptRequest is the request body for editing a prompt. A null tag_paths
// leaves the tag set untouched; an empty array clears it.
type EditPromptRequest struct {
	Title       string    `json:"title" minLength:"1" maxLength:"200" doc:"Prompt title"`
	Description string    `json:"description,omitempty" maxLength:"2000" doc:"Prompt description"`
	Text        string    `json:"text" minLength:"1" doc:"Prompt text"`
	TagPaths    *[]string `json:"tag_paths,omitempty" doc:"Replacement tag set; omit to keep the current tags"`
}

// EditPromptInput wraps the edit prompt request for Huma.
type EditPromptInput struct {
	ID   string `path:"id" doc:"Version ID to supersede"`
	Body EditPromptRequest
}

// ChainInput contains parameters addressing a version chain.
type ChainInput struct {
	RootID string `path:"id" doc:"Chain root ID"`
}

// HistoryResponse contains the full version history of a chain.
type HistoryResponse struct {
	Versions []PromptResponse `json:"versions" doc:"Every version of the chain, ascending"`
}

// HistoryOutput wraps the history response for Huma.
type HistoryOutput struct {
	Body HistoryResponse
}

// SetPromptTagsRequest is the request body for replacing a version's tags.
type SetPromptTagsRequest struct {
	TagPaths []string `json:"tag_paths" doc:"Replacement tag set; an empty array clears all tags"`
}

// SetPromptTagsInput wraps the set tags request for Huma.
type SetPromptTagsInput struct {
	ID   string `path:"id" doc:"Version ID"`
	Body SetPromptTagsRequest
}

// === Handlers ===

func (s *Server) handleListPrompts(ctx context.Context, _ *struct{}) (*ListPromptsOutput, error) {
	prompts, err := s.services.Prompt.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]PromptResponse, len(prompts))
	for i, v := range prompts {
		resp[i] = promptToResponse(v)
	}

	return &ListPromptsOutput{Body: ListPromptsResponse{Prompts: resp}}, nil
}

func (s *Server) handleCreatePrompt(ctx context.Context, input *CreatePromptInput) (*PromptOutput, error) {
	v, err := s.services.Prompt.CreatePrompt(ctx, service.CreatePromptParams{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Text:        input.Body.Text,
		FolderID:    input.Body.FolderID,
		TagPaths:    input.Body.TagPaths,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: promptToResponse(v)}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, input *GetPromptInput) (*PromptOutput, error) {
	v, err := s.services.Prompt.GetPrompt(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: promptToResponse(v)}, nil
}

func (s *Server) handleEditPrompt(ctx context.Context, input *EditPromptInput) (*PromptOutput, error) {
	v, err := s.services.Prompt.EditPrompt(ctx, input.ID, service.EditPromptParams{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Text:        input.Body.Text,
		TagPaths:    input.Body.TagPaths,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: promptToResponse(v)}, nil
}

func (s *Server) handleGetLatest(ctx context.Context, input *ChainInput) (*PromptOutput, error) {
	v, err := s.services.Prompt.GetLatest(ctx, input.RootID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: promptToResponse(v)}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, input *ChainInput) (*HistoryOutput, error) {
	versions, err := s.services.Prompt.GetHistory(ctx, input.RootID)
	if err != nil {
		return nil, err
	}

	resp := make([]PromptResponse, len(versions))
	for i, v := range versions {
		resp[i] = promptToResponse(v)
	}

	return &HistoryOutput{Body: HistoryResponse{Versions: resp}}, nil
}

func (s *Server) handleRecordUsage(ctx context.Context, input *GetPromptInput) (*PromptOutput, error) {
	v, err := s.services.Prompt.RecordUsage(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: promptToResponse(v)}, nil
}

func (s *Server) handleGetPromptTags(ctx context.Context, input *GetPromptInput) (*TagListOutput, error) {
	tags, err := s.services.Prompt.GetPromptTags(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: tagsToResponse(tags)}}, nil
}

func (s *Server) handleSetPromptTags(ctx context.Context, input *SetPromptTagsInput) (*TagListOutput, error) {
	tags, err := s.services.Prompt.SetPromptTags(ctx, input.ID, input.Body.TagPaths)
	if err != nil {
		return nil, err
	}

	return &TagListOutput{Body: TagListResponse{Tags: tagsToResponse(tags)}}, nil
}
