package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// InventoryItem is one ledger row. The (name, branch) pair is the natural
// key: the same product stocked at two branches is two independent rows.
type InventoryItem struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Branch       string    `db:"branch" json:"branch"`
	SKU          string    `db:"sku" json:"sku"`
	Quantity     int       `db:"quantity" json:"quantity"`
	ReorderLevel int       `db:"reorder_level" json:"reorder_level"`
	Price        float64   `db:"price" json:"price"`
	Category     string    `db:"category" json:"category"`
	Supplier     string    `db:"supplier" json:"supplier"`
	MonthlyUsage int       `db:"monthly_usage" json:"monthly_usage"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
// A zero reorder level means the item is not tracked for restocking.
func (i *InventoryItem) LowStock() bool {
	return i.ReorderLevel > 0 && i.Quantity <= i.ReorderLevel
}

// ItemRepository handles inventory ledger persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create registers a new ledger row. Duplicate (name, branch) pairs map to
// a conflict error via the unique constraint.
func (r *ItemRepository) Create(ctx context.Context, item *InventoryItem) error {
	query := `
		INSERT INTO inventory_items (name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		item.Name, item.Branch, item.SKU, item.Quantity,
		item.ReorderLevel, item.Price, item.Category, item.Supplier, item.MonthlyUsage,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// Get returns the ledger row for a (name, branch) pair.
func (r *ItemRepository) Get(ctx context.Context, name, branch string) (*InventoryItem, error) {
	var item InventoryItem

	query := `
		SELECT id, name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage, created_at, updated_at
		FROM inventory_items
		WHERE name = $1 AND branch = $2
	`

	err := r.db.GetContext(ctx, &item, query, name, branch)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("inventory item")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &item, nil
}

// GetByID returns the ledger row with the given id.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*InventoryItem, error) {
	var item InventoryItem

	query := `
		SELECT id, name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &item, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("inventory item")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &item, nil
}

// List returns ledger rows visible to the caller, ordered by name then
// branch. Branch-restricted callers only see their own branch.
func (r *ItemRepository) List(ctx context.Context) ([]InventoryItem, error) {
	query := `
		SELECT id, name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage, created_at, updated_at
		FROM inventory_items
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` WHERE branch = $1`
		args = append(args, branch)
	}
	query += ` ORDER BY name, branch`

	items := []InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return items, nil
}

// ListByBranch returns all ledger rows for one branch.
func (r *ItemRepository) ListByBranch(ctx context.Context, branch string) ([]InventoryItem, error) {
	query := `
		SELECT id, name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage, created_at, updated_at
		FROM inventory_items
		WHERE branch = $1
		ORDER BY name
	`

	items := []InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, branch); err != nil {
		return nil, database.MapPQError(err)
	}

	return items, nil
}

// ListLowStock returns visible rows at or below their reorder level.
func (r *ItemRepository) ListLowStock(ctx context.Context) ([]InventoryItem, error) {
	query := `
		SELECT id, name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage, created_at, updated_at
		FROM inventory_items
		WHERE reorder_level > 0 AND quantity <= reorder_level
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	query += ` ORDER BY name, branch`

	items := []InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return items, nil
}

// CountCreatedSince returns how many visible items were registered in the
// trailing window.
func (r *ItemRepository) CountCreatedSince(ctx context.Context, days int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM inventory_items
		WHERE created_at >= NOW() - ($1 || ' days')::interval
	`

	args := []interface{}{days}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $2`
		args = append(args, branch)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, database.MapPQError(err)
	}

	return count, nil
}

// Adjust applies a signed quantity delta and records the movement in the
// same transaction. The UPDATE clamps at zero in a single statement, so
// concurrent adjustments serialize on the row without read-modify-write
// races. Returns the post-adjustment quantity.
func (r *ItemRepository) Adjust(ctx context.Context, name, branch string, delta int, movement *MovementRecord) (int, error) {
	var newQuantity int

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE inventory_items
			SET quantity = GREATEST(quantity + $3, 0), updated_at = NOW()
			WHERE name = $1 AND branch = $2
			RETURNING quantity
		`

		err := tx.QueryRowxContext(ctx, query, name, branch, delta).Scan(&newQuantity)
		if err == sql.ErrNoRows {
			return errors.NotFound("inventory item")
		}
		if err != nil {
			return database.MapPQError(err)
		}

		return insertMovement(ctx, tx, movement)
	})
	if err != nil {
		return 0, err
	}

	return newQuantity, nil
}

// Delete removes a ledger row and its batches. Intake history for other
// items is untouched.
func (r *ItemRepository) Delete(ctx context.Context, name, branch string) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM supply_batches WHERE name = $1 AND branch = $2`,
			name, branch,
		); err != nil {
			return database.MapPQError(err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM inventory_items WHERE name = $1 AND branch = $2`,
			name, branch,
		)
		if err != nil {
			return database.MapPQError(err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return errors.Internal("failed to check delete result")
		}
		if rows == 0 {
			return errors.NotFound("inventory item")
		}

		return nil
	})
}

// UpdateMonthlyUsage overwrites the demand estimate used by the
// replenishment calculator.
func (r *ItemRepository) UpdateMonthlyUsage(ctx context.Context, name, branch string, monthlyUsage int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET monthly_usage = $3, updated_at = NOW() WHERE name = $1 AND branch = $2`,
		name, branch, monthlyUsage,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Internal("failed to check update result")
	}
	if rows == 0 {
		return errors.NotFound("inventory item")
	}

	return nil
}
