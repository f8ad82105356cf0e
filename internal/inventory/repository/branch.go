package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/errors"
)

// Branch is one physical location carrying stock.
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location"`
	Manager   string    `db:"manager" json:"manager"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BranchRepository handles branch persistence
type BranchRepository struct {
	db *database.DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *database.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Create registers a branch.
func (r *BranchRepository) Create(ctx context.Context, branch *Branch) error {
	query := `
		INSERT INTO branches (name, location, manager)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, branch.Name, branch.Location, branch.Manager).
		Scan(&branch.ID, &branch.CreatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByName returns the branch with the given name.
func (r *BranchRepository) GetByName(ctx context.Context, name string) (*Branch, error) {
	var branch Branch

	query := `SELECT id, name, location, manager, created_at FROM branches WHERE name = $1`

	err := r.db.GetContext(ctx, &branch, query, name)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("branch")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &branch, nil
}

// List returns all branches ordered by name.
func (r *BranchRepository) List(ctx context.Context) ([]Branch, error) {
	query := `SELECT id, name, location, manager, created_at FROM branches ORDER BY name`

	branches := []Branch{}
	if err := r.db.SelectContext(ctx, &branches, query); err != nil {
		return nil, database.MapPQError(err)
	}

	return branches, nil
}

// Delete removes a branch. Stock rows referencing the branch are left in
// place so history survives a reorganization.
func (r *BranchRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE name = $1`, name)
	if err != nil {
		return database.MapPQError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("failed to check delete result")
	}
	if rows == 0 {
		return errors.NotFound("branch")
	}

	return nil
}
