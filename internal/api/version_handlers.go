package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/promptdeck/promptdeck-server/internal/lifecycle"
)

func (s *Server) registerVersionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getVersionDependencies",
		Method:      http.MethodGet,
		Path:        "/api/v1/versions/{id}/dependencies",
		Summary:     "Get version dependencies",
		Description: "Reports what deleting the version's chain would remove, without deleting anything",
		Tags:        []string{"Versions"},
	}, s.handleGetVersionDependencies)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVersion",
		Method:      http.MethodDelete,
		Path:        "/api/v1/versions/{id}",
		Summary:     "Delete version",
		Description: "Deletes a version, or its whole chain, optionally cleaning up orphaned tags",
		Tags:        []string{"Versions"},
	}, s.handleDeleteVersion)
}

// === DTOs ===

// VersionInput contains parameters addressing a version.
type VersionInput struct {
	ID string `path:"id" doc:"Version ID"`
}

// DependenciesResponse describes what a deletion would touch.
type DependenciesResponse struct {
	Version         PromptResponse      `json:"version" doc:"The targeted version"`
	ChainVersionIDs []string            `json:"chain_version_ids" doc:"Every version sharing the target's root"`
	TagPaths        map[string][]string `json:"tag_paths,omitempty" doc:"Tag paths attached per version"`
	RelationCount   int                 `json:"relation_count" doc:"Total prompt-tag relations on the chain"`
}

// DependenciesOutput wraps the dependencies response for Huma.
type DependenciesOutput struct {
	Body DependenciesResponse
}

// DeleteVersionInput contains parameters for deleting a version.
type DeleteVersionInput struct {
	ID          string `path:"id" doc:"Version ID"`
	AllVersions bool   `query:"all_versions" doc:"Delete the whole chain instead of the single version"`
	CleanupTags bool   `query:"cleanup_tags" doc:"Also delete tags left without any prompts"`
}

// DeleteVersionResponse is the outcome of a deletion.
type DeleteVersionResponse struct {
	Success      bool     `json:"success" doc:"Whether the deletion applied"`
	DeletedCount int      `json:"deleted_count" doc:"Number of versions removed"`
	DeletedTags  []string `json:"deleted_tags,omitempty" doc:"Paths of orphaned tags that were cleaned up"`
}

// DeleteVersionOutput wraps the deletion response for Huma.
type DeleteVersionOutput struct {
	Body DeleteVersionResponse
}

// === Handlers ===

func (s *Server) handleGetVersionDependencies(ctx context.Context, input *VersionInput) (*DependenciesOutput, error) {
	deps, err := s.services.Deleter.GetVersionDependencies(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &DependenciesOutput{
		Body: DependenciesResponse{
			Version:         promptToResponse(deps.Version),
			ChainVersionIDs: deps.ChainVersionIDs,
			TagPaths:        deps.TagPaths,
			RelationCount:   deps.RelationCount,
		},
	}, nil
}

func (s *Server) handleDeleteVersion(ctx context.Context, input *DeleteVersionInput) (*DeleteVersionOutput, error) {
	result := s.services.Deleter.DeleteVersion(ctx, input.ID, lifecycle.Options{
		DeleteAllVersions:   input.AllVersions,
		CleanupOrphanedTags: input.CleanupTags,
	})
	if !result.Success {
		return nil, result.Error
	}

	return &DeleteVersionOutput{
		Body: DeleteVersionResponse{
			Success:      true,
			DeletedCount: result.DeletedCount,
			DeletedTags:  result.DeletedTags,
		},
	}, nil
}
