package repository

import (
	"context"
	"time"

	"github.com/premierlux/premierlux-backend/pkg/database"
)

// AlertAcknowledgement records that a user has seen one alert. Rows are
// append-only and never expire; a re-acknowledgement is a no-op upsert.
type AlertAcknowledgement struct {
	ID        string    `db:"id" json:"id"`
	AlertID   string    `db:"alert_id" json:"alert_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AcknowledgementRepository handles alert acknowledgement persistence
type AcknowledgementRepository struct {
	db *database.DB
}

// NewAcknowledgementRepository creates a new acknowledgement repository
func NewAcknowledgementRepository(db *database.DB) *AcknowledgementRepository {
	return &AcknowledgementRepository{db: db}
}

// Acknowledge records that the user has seen the alert. Acknowledging the
// same alert twice is accepted without error.
func (r *AcknowledgementRepository) Acknowledge(ctx context.Context, alertID, userID string) error {
	query := `
		INSERT INTO alert_acknowledgements (alert_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (alert_id, user_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, alertID, userID); err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListAlertIDs returns every alert id the user has acknowledged.
func (r *AcknowledgementRepository) ListAlertIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT alert_id FROM alert_acknowledgements WHERE user_id = $1`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, database.MapPQError(err)
	}

	return ids, nil
}
