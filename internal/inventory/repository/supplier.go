package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/errors"
)

// Supplier is one upstream vendor. LeadTimeDays feeds the replenishment
// calculator when an item names this supplier.
type Supplier struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ContactName  string    `db:"contact_name" json:"contact_name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	LeadTimeDays int       `db:"lead_time_days" json:"lead_time_days"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SupplierRepository handles supplier persistence
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create registers a supplier.
func (r *SupplierRepository) Create(ctx context.Context, supplier *Supplier) error {
	query := `
		INSERT INTO suppliers (name, contact_name, email, phone, lead_time_days)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		supplier.Name, supplier.ContactName, supplier.Email, supplier.Phone, supplier.LeadTimeDays,
	).Scan(&supplier.ID, &supplier.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByName returns the supplier with the given name.
func (r *SupplierRepository) GetByName(ctx context.Context, name string) (*Supplier, error) {
	var supplier Supplier

	query := `SELECT id, name, contact_name, email, phone, lead_time_days, created_at FROM suppliers WHERE name = $1`

	err := r.db.GetContext(ctx, &supplier, query, name)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supplier")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &supplier, nil
}

// List returns all suppliers ordered by name.
func (r *SupplierRepository) List(ctx context.Context) ([]Supplier, error) {
	query := `SELECT id, name, contact_name, email, phone, lead_time_days, created_at FROM suppliers ORDER BY name`

	suppliers := []Supplier{}
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, database.MapPQError(err)
	}

	return suppliers, nil
}

// Delete removes a supplier.
func (r *SupplierRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE name = $1`, name)
	if err != nil {
		return database.MapPQError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("failed to check delete result")
	}
	if rows == 0 {
		return errors.NotFound("supplier")
	}

	return nil
}
