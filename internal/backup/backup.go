// Package backup serializes the store to a JSON document and restores it.
// The document carries the full snapshot: prompt versions, tags, and
// relations, with identifiers preserved so a restore reproduces the store
// exactly.
package backup

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/promptdeck/promptdeck-server/internal/store"
)

// formatVersion is bumped on breaking changes to the document shape.
const formatVersion = 1

// Document is the on-disk export format.
type Document struct {
	FormatVersion int             `json:"formatVersion"`
	AppVersion    string          `json:"appVersion,omitempty"`
	ExportedAt    time.Time       `json:"exportedAt"`
	Snapshot      *store.Snapshot `json:"snapshot"`
}

// Service exports and imports store snapshots.
type Service struct {
	store      *store.Store
	appVersion string
	logger     *slog.Logger
}

// NewService creates a backup service.
func NewService(s *store.Store, appVersion string, logger *slog.Logger) *Service {
	return &Service{store: s, appVersion: appVersion, logger: logger}
}

// Export writes the full store as a JSON document.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.store.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	doc := Document{
		FormatVersion: formatVersion,
		AppVersion:    s.appVersion,
		ExportedAt:    time.Now().UTC(),
		Snapshot:      snap,
	}

	if err := json.MarshalWrite(w, doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("exported store",
			"versions", len(snap.Versions),
			"tags", len(snap.Tags),
			"relations", len(snap.Relations))
	}
	return nil
}

// Import reads a JSON document and restores it into an empty store. A store
// that already has records rejects the import.
func (s *Service) Import(ctx context.Context, r io.Reader) (*store.Snapshot, error) {
	var doc Document
	if err := json.UnmarshalRead(r, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	if doc.FormatVersion != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", doc.FormatVersion)
	}
	if doc.Snapshot == nil {
		return nil, fmt.Errorf("document carries no snapshot")
	}

	if err := s.store.ImportSnapshot(ctx, doc.Snapshot); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("imported store",
			"versions", len(doc.Snapshot.Versions),
			"tags", len(doc.Snapshot.Tags),
			"relations", len(doc.Snapshot.Relations))
	}
	return doc.Snapshot, nil
}
