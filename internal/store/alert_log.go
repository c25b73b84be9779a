package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert statuses
const (
	AlertSent    = "sent"
	AlertSkipped = "skipped"
	AlertFailed  = "failed"
)

// AlertLog outcome of one Slack alert for one sector
type AlertLog struct {
	ID           string    `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"runId"`
	Job          string    `db:"job" json:"job"`
	SectorID     string    `db:"sector_id" json:"setorId"`
	UserID       string    `db:"user_id" json:"userId"`
	RiskCount    int       `db:"risk_count" json:"riskCount"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// RecordAlert stores an alert outcome. Missing id and timestamp are filled in.
func (s *Store) RecordAlert(ctx context.Context, a AlertLog) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO alert_logs (id, run_id, job, sector_id, user_id, risk_count, status, error_message, created_at)
		VALUES (:id, :run_id, :job, :sector_id, :user_id, :risk_count, :status, :error_message, :created_at)
	`, a)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

// RecentAlerts returns the latest alert outcomes, newest first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]AlertLog, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []AlertLog{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, run_id, job, sector_id, user_id, risk_count, status, error_message, created_at
		FROM alert_logs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert logs: %w", err)
	}
	return out, nil
}
