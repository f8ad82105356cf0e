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

// Order statuses. pending may move to approved or rejected; approved may
// move to received; received and rejected are terminal.
const (
	OrderStatusPending  = "pending"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
	OrderStatusReceived = "received"
)

// RestockOrder is one row of the order workbook.
type RestockOrder struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Branch     string     `db:"branch" json:"branch"`
	Quantity   int        `db:"quantity" json:"quantity"`
	UnitPrice  float64    `db:"unit_price" json:"unit_price"`
	Status     string     `db:"status" json:"status"`
	CreatedBy  string     `db:"created_by" json:"created_by"`
	DecidedBy  *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt  *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	ReceivedBy *string    `db:"received_by" json:"received_by,omitempty"`
	ReceivedAt *time.Time `db:"received_at" json:"received_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// TotalCost returns the order's line total.
func (o *RestockOrder) TotalCost() float64 {
	return float64(o.Quantity) * o.UnitPrice
}

// OrderRepository handles restock order persistence
type OrderRepository struct {
	db *database.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create submits a new pending order.
func (r *OrderRepository) Create(ctx context.Context, order *RestockOrder) error {
	order.Status = OrderStatusPending

	query := `
		INSERT INTO restock_orders (name, branch, quantity, unit_price, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		order.Name, order.Branch, order.Quantity, order.UnitPrice, order.Status, order.CreatedBy,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// GetByID returns the order with the given id.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*RestockOrder, error) {
	var order RestockOrder

	query := `
		SELECT id, name, branch, quantity, unit_price, status, created_by, decided_by, decided_at, received_by, received_at, created_at, updated_at
		FROM restock_orders
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("restock order")
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &order, nil
}

// List returns orders visible to the caller, newest first. An empty
// status lists all statuses.
func (r *OrderRepository) List(ctx context.Context, status string) ([]RestockOrder, error) {
	query := `
		SELECT id, name, branch, quantity, unit_price, status, created_by, decided_by, decided_at, received_by, received_at, created_at, updated_at
		FROM restock_orders
		WHERE 1=1
	`

	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += ` AND status = $1`
	}
	if branch, restricted := scope.Filter(ctx); restricted {
		args = append(args, branch)
		if len(args) == 2 {
			query += ` AND branch = $2`
		} else {
			query += ` AND branch = $1`
		}
	}
	query += ` ORDER BY created_at DESC`

	orders := []RestockOrder{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return orders, nil
}

// Decide moves a pending order to approved or rejected. The WHERE clause
// makes the transition conditional: a zero row count means the order was
// missing or already decided, which the caller distinguishes with a
// follow-up read.
func (r *OrderRepository) Decide(ctx context.Context, id, newStatus, decidedBy string) (*RestockOrder, error) {
	if newStatus != OrderStatusApproved && newStatus != OrderStatusRejected {
		return nil, errors.BadRequest("decision must be approved or rejected")
	}

	var order RestockOrder

	query := `
		UPDATE restock_orders
		SET status = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, name, branch, quantity, unit_price, status, created_by, decided_by, decided_at, received_by, received_at, created_at, updated_at
	`

	err := r.db.GetContext(ctx, &order, query, id, newStatus, decidedBy)
	if err == sql.ErrNoRows {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, errors.Conflict("order is already " + existing.Status)
	}
	if err != nil {
		return nil, database.MapPQError(err)
	}

	return &order, nil
}

// ReceiveResult reports the outcome of an order receipt.
type ReceiveResult struct {
	Order       *RestockOrder
	NewQuantity int
}

// MarkReceived completes an approved order: the status transition, the
// ledger increment and the movement record commit in one transaction.
// The row lock makes receipt exactly-once; a second receive attempt sees
// the received status and fails with a conflict instead of double
// counting stock.
func (r *OrderRepository) MarkReceived(ctx context.Context, id, receivedBy string) (*ReceiveResult, error) {
	var result ReceiveResult

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var order RestockOrder

		lockQuery := `
			SELECT id, name, branch, quantity, unit_price, status, created_by, decided_by, decided_at, received_by, received_at, created_at, updated_at
			FROM restock_orders
			WHERE id = $1
			FOR UPDATE
		`

		err := tx.GetContext(ctx, &order, lockQuery, id)
		if err == sql.ErrNoRows {
			return errors.NotFound("restock order")
		}
		if err != nil {
			return database.MapPQError(err)
		}

		switch order.Status {
		case OrderStatusReceived:
			return errors.AlreadyProcessed("order has already been received")
		case OrderStatusApproved:
			// proceed
		default:
			return errors.Conflict("only approved orders can be received, order is " + order.Status)
		}

		updateQuery := `
			UPDATE restock_orders
			SET status = 'received', received_by = $2, received_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING status, received_by, received_at, updated_at
		`

		err = tx.QueryRowxContext(ctx, updateQuery, id, receivedBy).
			Scan(&order.Status, &order.ReceivedBy, &order.ReceivedAt, &order.UpdatedAt)
		if err != nil {
			return database.MapPQError(err)
		}

		ledgerQuery := `
			UPDATE inventory_items
			SET quantity = quantity + $3, updated_at = NOW()
			WHERE name = $1 AND branch = $2
			RETURNING quantity
		`

		err = tx.QueryRowxContext(ctx, ledgerQuery, order.Name, order.Branch, order.Quantity).
			Scan(&result.NewQuantity)
		if err == sql.ErrNoRows {
			return errors.NotFound("inventory item")
		}
		if err != nil {
			return database.MapPQError(err)
		}

		movement := &MovementRecord{
			Name:           order.Name,
			Branch:         order.Branch,
			Direction:      DirectionIn,
			Quantity:       order.Quantity,
			Reason:         "Restock Order",
			ReasonCategory: "Restock Order",
			PerformedBy:    receivedBy,
		}
		if err := insertMovement(ctx, tx, movement); err != nil {
			return err
		}

		result.Order = &order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
