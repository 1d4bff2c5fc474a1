package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/promptdeck/promptdeck-server/internal/audit"
	"github.com/promptdeck/promptdeck-server/internal/store"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "checkConsistency",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/consistency",
		Summary:     "Check store consistency",
		Description: "Scans the store for structural inconsistencies and reports them without fixing anything",
		Tags:        []string{"Admin"},
	}, s.handleCheckConsistency)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOperations",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/operations",
		Summary:     "List recorded operations",
		Description: "Returns the most recent entries of the audit log",
		Tags:        []string{"Admin"},
	}, s.handleListOperations)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/reindex",
		Summary:     "Rebuild search index",
		Description: "Rebuilds the full-text index from the latest version of every chain",
		Tags:        []string{"Admin"},
	}, s.handleReindexSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportData",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/export",
		Summary:     "Export data",
		Description: "Downloads the full store as a JSON snapshot document",
		Tags:        []string{"Admin"},
	}, s.handleExportData)

	huma.Register(s.api, huma.Operation{
		OperationID: "importData",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/import",
		Summary:     "Import data",
		Description: "Restores a JSON snapshot document into an empty store",
		Tags:        []string{"Admin"},
		// The raw-body string schema must not be validated against the JSON
		// document; the service parses and validates the snapshot itself (F5).
		SkipValidateBody: true,
	}, s.handleImportData)
}

// === DTOs ===

// ConsistencyResponse reports the result of a consistency scan.
type ConsistencyResponse struct {
	Consistent bool          `json:"consistent" doc:"Whether the store passed all checks"`
	Issues     []audit.Issue `json:"issues,omitempty" doc:"Inconsistencies found"`
}

// ConsistencyOutput wraps the consistency response for Huma.
type ConsistencyOutput struct {
	Body ConsistencyResponse
}

// ListOperationsInput contains parameters for listing audit entries.
type ListOperationsInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"500" doc:"Max entries to return (default 50)"`
}

// ListOperationsResponse contains recent audit log entries.
type ListOperationsResponse struct {
	Operations []audit.Operation `json:"operations" doc:"Most recent entries, newest first"`
}

// ListOperationsOutput wraps the operations response for Huma.
type ListOperationsOutput struct {
	Body ListOperationsResponse
}

// ReindexResponse reports the outcome of a search index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of documents indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// ImportDataInput carries a raw snapshot document.
type ImportDataInput struct {
	RawBody []byte `contentType:"application/json"`
}

// ImportDataResponse reports what an import restored.
type ImportDataResponse struct {
	Versions  int `json:"versions" doc:"Version records restored"`
	Tags      int `json:"tags" doc:"Tag records restored"`
	Relations int `json:"relations" doc:"Prompt-tag relations restored"`
}

// ImportDataOutput wraps the import response for Huma.
type ImportDataOutput struct {
	Body ImportDataResponse
}

// === Handlers ===

func (s *Server) handleCheckConsistency(ctx context.Context, _ *struct{}) (*ConsistencyOutput, error) {
	issues, err := audit.ValidateDatabaseState(ctx, s.store)
	if err != nil {
		return nil, huma.Error500InternalServerError("consistency scan failed", err)
	}

	return &ConsistencyOutput{
		Body: ConsistencyResponse{
			Consistent: len(issues) == 0,
			Issues:     issues,
		},
	}, nil
}

func (s *Server) handleListOperations(ctx context.Context, input *ListOperationsInput) (*ListOperationsOutput, error) {
	if s.services.Audit == nil {
		return nil, huma.Error404NotFound("audit log not configured")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	ops, err := s.services.Audit.RecentOperations(ctx, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to read audit log", err)
	}

	return &ListOperationsOutput{Body: ListOperationsResponse{Operations: ops}}, nil
}

func (s *Server) handleReindexSearch(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	count, err := s.services.Prompt.ReindexAll(ctx)
	if err != nil {
		return nil, err
	}

	return &ReindexOutput{Body: ReindexResponse{Indexed: count}}, nil
}

func (s *Server) handleExportData(ctx context.Context, _ *struct{}) (*huma.StreamResponse, error) {
	// Export into memory first so a mid-stream failure can still produce an
	// error response.
	var buf bytes.Buffer
	if err := s.services.Backup.Export(ctx, &buf); err != nil {
		return nil, huma.Error500InternalServerError("export failed", err)
	}

	filename := "promptdeck-" + time.Now().Format("2006-01-02") + ".json"

	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			hctx.SetHeader("Content-Type", "application/json")
			hctx.SetHeader("Content-Disposition", "attachment; filename=\""+filename+"\"")
			_, _ = io.Copy(hctx.BodyWriter(), &buf)
		},
	}, nil
}

func (s *Server) handleImportData(ctx context.Context, input *ImportDataInput) (*ImportDataOutput, error) {
	snap, err := s.services.Backup.Import(ctx, bytes.NewReader(input.RawBody))
	if err != nil {
		if errors.Is(err, store.ErrStoreNotEmpty) {
			return nil, huma.Error409Conflict("store already has records; import requires an empty store")
		}
		return nil, huma.Error400BadRequest("invalid snapshot document", err)
	}

	return &ImportDataOutput{
		Body: ImportDataResponse{
			Versions:  len(snap.Versions),
			Tags:      len(snap.Tags),
			Relations: len(snap.Relations),
		},
	}, nil
}
