package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/premierlux/premierlux-backend/pkg/database"
)

// AuditEntry is one append-only line of the audit trail.
type AuditEntry struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"user_id"`
	UserName   string          `db:"user_name" json:"user_name"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID string          `db:"resource_id" json:"resource_id"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AuditRepository handles audit trail persistence
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one audit entry. Failures are logged by callers but
// never fail the operation being audited.
func (r *AuditRepository) Insert(ctx context.Context, entry *AuditEntry) error {
	query := `
		INSERT INTO audit_entries (user_id, user_name, action, resource, resource_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		entry.UserID, entry.UserName, entry.Action, entry.Resource, entry.ResourceID, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// ListRecent returns the newest audit entries.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, user_id, user_name, action, resource, resource_id, details, created_at
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT $1
	`

	entries := []AuditEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, database.MapPQError(err)
	}

	return entries, nil
}
