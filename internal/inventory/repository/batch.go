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

// SupplyBatch is one immutable intake record. Batches are never edited
// after registration; a wrong intake is corrected through a stock
// adjustment, not by rewriting history.
type SupplyBatch struct {
	ID            string    `db:"id" json:"id"`
	BatchNumber   string    `db:"batch_number" json:"batch_number"`
	LotNumber     string    `db:"lot_number" json:"lot_number"`
	QRCodeID      string    `db:"qr_code" json:"qr_code"`
	Name          string    `db:"name" json:"name"`
	Branch        string    `db:"branch" json:"branch"`
	Quantity      int       `db:"quantity" json:"quantity"`
	MfgDate       time.Time `db:"mfg_date" json:"mfg_date"`
	ExpiryDate    time.Time `db:"expiry_date" json:"expiry_date"`
	Category      string    `db:"category" json:"category"`
	Supplier      string    `db:"supplier" json:"supplier"`
	SupplierBatch string    `db:"supplier_batch" json:"supplier_batch"`
	ReceivedBy    string    `db:"received_by" json:"received_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ExpiringSoon reports whether the batch expires within the given window.
func (b *SupplyBatch) ExpiringSoon(now time.Time, window time.Duration) bool {
	return b.ExpiryDate.After(now) && b.ExpiryDate.Sub(now) <= window
}

// Expired reports whether the batch has passed its expiry date.
func (b *SupplyBatch) Expired(now time.Time) bool {
	return !b.ExpiryDate.After(now)
}

// IntakeLedgerFields are the ledger attributes an intake carries along.
// On a fresh item they seed the row; on an existing item they overwrite
// the descriptive fields while the quantity is incremented.
type IntakeLedgerFields struct {
	SKU          string
	ReorderLevel int
	Price        float64
	Category     string
	Supplier     string
	MonthlyUsage int
}

// BatchRepository handles supply batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create registers an intake: the batch row and the ledger upsert commit
// in one transaction, so a batch can never exist without its quantity
// having been added to the ledger. Returns the post-intake ledger quantity.
func (r *BatchRepository) Create(ctx context.Context, batch *SupplyBatch, ledger *IntakeLedgerFields) (int, error) {
	var newQuantity int

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		batchQuery := `
			INSERT INTO supply_batches (batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at
		`

		err := tx.QueryRowxContext(ctx, batchQuery,
			batch.BatchNumber, batch.LotNumber, batch.QRCodeID, batch.Name, batch.Branch,
			batch.Quantity, batch.MfgDate, batch.ExpiryDate, batch.Category,
			batch.Supplier, batch.SupplierBatch, batch.ReceivedBy,
		).Scan(&batch.ID, &batch.CreatedAt)
		if err != nil {
			return database.MapPQError(err)
		}

		upsertQuery := `
			INSERT INTO inventory_items (name, branch, sku, quantity, reorder_level, price, category, supplier, monthly_usage)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (name, branch) DO UPDATE SET
				quantity = inventory_items.quantity + EXCLUDED.quantity,
				sku = EXCLUDED.sku,
				reorder_level = EXCLUDED.reorder_level,
				price = EXCLUDED.price,
				category = EXCLUDED.category,
				supplier = EXCLUDED.supplier,
				monthly_usage = EXCLUDED.monthly_usage,
				updated_at = NOW()
			RETURNING quantity
		`

		err = tx.QueryRowxContext(ctx, upsertQuery,
			batch.Name, batch.Branch, ledger.SKU, batch.Quantity,
			ledger.ReorderLevel, ledger.Price, ledger.Category, ledger.Supplier, ledger.MonthlyUsage,
		).Scan(&newQuantity)
		if err != nil {
			return database.MapPQError(err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newQuantity, nil
}

// GetByNumber returns the batch with the given batch number.
func (r *BatchRepository) GetByNumber(ctx context.Context, batchNumber string) (*SupplyBatch, error) {
	var batch SupplyBatch

	query := `
		SELECT id, batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by, created_at
		FROM supply_batches
		WHERE batch_number = $1
	`

	err := r.db.GetContext(ctx, &batch, query, batchNumber)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supply batch")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &batch, nil
}

// GetByQRCode returns the batch with the given QR token. Used by the
// scan endpoint on the receiving dock.
func (r *BatchRepository) GetByQRCode(ctx context.Context, qrCode string) (*SupplyBatch, error) {
	var batch SupplyBatch

	query := `
		SELECT id, batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by, created_at
		FROM supply_batches
		WHERE qr_code = $1
	`

	err := r.db.GetContext(ctx, &batch, query, qrCode)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("supply batch")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &batch, nil
}

// List returns batches visible to the caller, newest first.
func (r *BatchRepository) List(ctx context.Context) ([]SupplyBatch, error) {
	query := `
		SELECT id, batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by, created_at
		FROM supply_batches
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` WHERE branch = $1`
		args = append(args, branch)
	}
	query += ` ORDER BY created_at DESC`

	batches := []SupplyBatch{}
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return batches, nil
}

// ListExpiringWithin returns unexpired batches whose expiry date falls
// inside the window, soonest first.
func (r *BatchRepository) ListExpiringWithin(ctx context.Context, days int) ([]SupplyBatch, error) {
	query := `
		SELECT id, batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by, created_at
		FROM supply_batches
		WHERE expiry_date > NOW() AND expiry_date <= NOW() + ($1 || ' days')::interval
	`

	args := []interface{}{days}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $2`
		args = append(args, branch)
	}
	query += ` ORDER BY expiry_date`

	batches := []SupplyBatch{}
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return batches, nil
}

// CountManufacturedSince returns how many visible batches carry a
// manufacture date inside the trailing window.
func (r *BatchRepository) CountManufacturedSince(ctx context.Context, days int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM supply_batches
		WHERE mfg_date >= NOW() - ($1 || ' days')::interval
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

// ListExpired returns batches already past their expiry date.
func (r *BatchRepository) ListExpired(ctx context.Context) ([]SupplyBatch, error) {
	query := `
		SELECT id, batch_number, lot_number, qr_code, name, branch, quantity, mfg_date, expiry_date, category, supplier, supplier_batch, received_by, created_at
		FROM supply_batches
		WHERE expiry_date <= NOW()
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	query += ` ORDER BY expiry_date`

	batches := []SupplyBatch{}
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return batches, nil
}
