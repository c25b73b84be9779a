package store

import (
	"context"
	"fmt"
	"time"
)

// Note free-text supervisor note about one reseller
type Note struct {
	ResellerID string    `db:"reseller_id" json:"resellerId"`
	Note       string    `db:"note" json:"note"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// ListNotes returns every note keyed by reseller id.
func (s *Store) ListNotes(ctx context.Context) (map[string]string, error) {
	var rows []Note
	if err := s.db.SelectContext(ctx, &rows, `SELECT reseller_id, note, updated_at FROM notes`); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, n := range rows {
		out[n.ResellerID] = n.Note
	}
	return out, nil
}

// SaveNote creates or replaces the note of a reseller.
func (s *Store) SaveNote(ctx context.Context, resellerID, note string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (reseller_id, note, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(reseller_id) DO UPDATE SET note = excluded.note, updated_at = excluded.updated_at
	`, resellerID, note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}
