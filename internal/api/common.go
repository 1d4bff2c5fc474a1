package api

import (
	"time"

	"github.com/promptdeck/promptdeck-server/internal/domain"
)

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// PromptResponse contains prompt version data in API responses.
type PromptResponse struct {
	ID          string     `json:"id" doc:"Version ID"`
	RootID      string     `json:"root_id" doc:"ID of the first version in the chain"`
	Version     int        `json:"version" doc:"1-based version number"`
	IsLatest    bool       `json:"is_latest" doc:"Whether this is the chain's active version"`
	Title       string     `json:"title" doc:"Prompt title"`
	Description string     `json:"description,omitempty" doc:"Prompt description"`
	Text        string     `json:"text" doc:"Prompt text"`
	FolderID    string     `json:"folder_id,omitempty" doc:"Folder the chain lives in"`
	TimesUsed   int        `json:"times_used" doc:"Usage counter"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty" doc:"Last usage time"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation time"`
}

func promptToResponse(v *domain.PromptVersion) PromptResponse {
	return PromptResponse{
		ID:          v.ID,
		RootID:      v.RootID,
		Version:     v.Version,
		IsLatest:    v.IsLatest,
		Title:       v.Title,
		Description: v.Description,
		Text:        v.Text,
		FolderID:    v.FolderID,
		TimesUsed:   v.TimesUsed,
		LastUsedAt:  v.LastUsedAt,
		CreatedAt:   v.CreatedAt,
	}
}

// PromptOutput wraps a single prompt response for Huma.
type PromptOutput struct {
	Body PromptResponse
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Last path segment"`
	FullPath  string    `json:"full_path" doc:"Canonical slash-separated path"`
	ParentID  string    `json:"parent_id,omitempty" doc:"Parent tag ID, empty for root tags"`
	Level     int       `json:"level" doc:"Depth in the hierarchy, 0 for root tags"`
	Color     string    `json:"color,omitempty" doc:"Hex color token"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func tagToResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		FullPath:  t.FullPath,
		ParentID:  t.ParentID,
		Level:     t.Level,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tagsToResponse(tags []*domain.Tag) []TagResponse {
	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = tagToResponse(t)
	}
	return resp
}

// TagOutput wraps a single tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// TagListResponse contains a list of tags.
type TagListResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// TagListOutput wraps the tag list response for Huma.
type TagListOutput struct {
	Body TagListResponse
}
