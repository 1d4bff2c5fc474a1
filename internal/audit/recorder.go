// Package audit records applied operations in a SQLite log and verifies the
// store's structural invariants after the fact.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Operation is one recorded entry of the audit log.
type Operation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recorder is a SQLite-backed audit log.
type Recorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the audit log at the given path. It configures WAL mode and
// runs the schema migration.
func Open(path string, logger *slog.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Recorder{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// RecordOperation appends an entry to the audit log. Details are stored as
// JSON; a nil details value stores an empty document.
func (r *Recorder) RecordOperation(ctx context.Context, name string, details any) error {
	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operations (id, name, details, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), name, string(detailsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// RecentOperations returns up to limit entries, newest first.
func (r *Recorder) RecentOperations(ctx context.Context, limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, details, created_at FROM operations ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		var op Operation
		var createdAt string
		if err := rows.Scan(&op.ID, &op.Name, &op.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
