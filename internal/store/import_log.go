package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Import statuses
const (
	ImportProcessing = "processing"
	ImportCompleted  = "completed"
	ImportFailed     = "failed"
)

// ImportLog one admin upload of a registry or sales file
type ImportLog struct {
	ID           string       `db:"id" json:"id"`
	Kind         string       `db:"kind" json:"kind"`
	Filename     string       `db:"filename" json:"filename"`
	FilePath     string       `db:"file_path" json:"filePath"`
	FileSize     int64        `db:"file_size" json:"fileSize"`
	ContentType  string       `db:"content_type" json:"contentType"`
	RowCount     int          `db:"row_count" json:"rowCount"`
	Status       string       `db:"status" json:"status"`
	ErrorMessage string       `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	CompletedAt  sql.NullTime `db:"completed_at" json:"-"`
}

// CreateImportLog records an upload in the processing state and returns its id.
func (s *Store) CreateImportLog(ctx context.Context, kind, filename, filePath, contentType string, fileSize int64) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_logs (id, kind, filename, file_path, file_size, content_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, kind, filename, filePath, fileSize, contentType, ImportProcessing, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create import log: %w", err)
	}
	return id, nil
}

// FinishImportLog sets the final status of an upload.
func (s *Store) FinishImportLog(ctx context.Context, id string, rowCount int, status, errorMessage string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_logs SET
			row_count = ?,
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, rowCount, status, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// RecentImports returns the latest uploads, newest first.
func (s *Store) RecentImports(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []ImportLog{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, kind, filename, file_path, file_size, content_type, row_count, status, error_message, created_at, completed_at
		FROM import_logs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	return out, nil
}
