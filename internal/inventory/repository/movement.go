package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// Movement directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// DefaultReasonCategory is applied when an adjustment gives no category.
const DefaultReasonCategory = "Manual Adjustment"

// MovementRecord is one append-only row of the movement log. Rows are never
// updated or deleted; corrections are new compensating movements.
type MovementRecord struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Branch         string    `db:"branch" json:"branch"`
	Direction      string    `db:"direction" json:"direction"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Reason         string    `db:"reason" json:"reason"`
	ReasonCategory string    `db:"reason_category" json:"reason_category"`
	PerformedBy    string    `db:"performed_by" json:"performed_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// UsageByPeriod is an aggregated consumption bucket.
type UsageByPeriod struct {
	Period   string `db:"period" json:"period"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// TopItem is one row of the most-consumed ranking.
type TopItem struct {
	Name     string `db:"name" json:"name"`
	Quantity int    `db:"quantity" json:"quantity"`
}

// MovementRepository handles the movement log
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// insertMovement writes one log row. Shared with the ledger and order
// repositories so a stock change and its movement commit atomically.
func insertMovement(ctx context.Context, q sqlx.ExtContext, m *MovementRecord) error {
	if m.ReasonCategory == "" {
		m.ReasonCategory = DefaultReasonCategory
	}

	query := `
		INSERT INTO stock_movements (name, branch, direction, quantity, reason, reason_category, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := sqlx.GetContext(ctx, q, m, query,
		m.Name, m.Branch, m.Direction, m.Quantity, m.Reason, m.ReasonCategory, m.PerformedBy,
	)
	if err != nil {
		return database.MapPQError(err)
	}

	return nil
}

// Insert appends one movement outside of any surrounding transaction.
func (r *MovementRepository) Insert(ctx context.Context, m *MovementRecord) error {
	return insertMovement(ctx, r.db.DB, m)
}

// ListRecent returns the newest movements visible to the caller.
func (r *MovementRepository) ListRecent(ctx context.Context, limit int) ([]MovementRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, branch, direction, quantity, reason, reason_category, performed_by, created_at
		FROM stock_movements
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` WHERE branch = $1`
		args = append(args, branch)
	}
	args = append(args, limit)
	if len(args) == 2 {
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}

	records := []MovementRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return records, nil
}

// WeeklyConsumption sums outbound quantity per day over the trailing week.
// Buckets are keyed by day name so the dashboard can chart Sun..Sat.
func (r *MovementRepository) WeeklyConsumption(ctx context.Context) ([]UsageByPeriod, error) {
	query := `
		SELECT to_char(created_at, 'Dy') AS period, COALESCE(SUM(quantity), 0) AS quantity
		FROM stock_movements
		WHERE direction = 'out' AND created_at >= NOW() - INTERVAL '7 days'
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	query += ` GROUP BY to_char(created_at, 'Dy'), extract(dow from created_at) ORDER BY extract(dow from created_at)`

	buckets := []UsageByPeriod{}
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return buckets, nil
}

// MonthlyConsumption sums outbound quantity per month over the trailing
// six months.
func (r *MovementRepository) MonthlyConsumption(ctx context.Context) ([]UsageByPeriod, error) {
	query := `
		SELECT to_char(date_trunc('month', created_at), 'Mon YYYY') AS period, COALESCE(SUM(quantity), 0) AS quantity
		FROM stock_movements
		WHERE direction = 'out' AND created_at >= date_trunc('month', NOW()) - INTERVAL '5 months'
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	query += ` GROUP BY date_trunc('month', created_at) ORDER BY date_trunc('month', created_at)`

	buckets := []UsageByPeriod{}
	if err := r.db.SelectContext(ctx, &buckets, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return buckets, nil
}

// TopConsumed ranks items by outbound quantity over the trailing 30 days.
func (r *MovementRepository) TopConsumed(ctx context.Context, limit int) ([]TopItem, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT name, COALESCE(SUM(quantity), 0) AS quantity
		FROM stock_movements
		WHERE direction = 'out' AND created_at >= NOW() - INTERVAL '30 days'
	`

	args := []interface{}{}
	if branch, restricted := scope.Filter(ctx); restricted {
		query += ` AND branch = $1`
		args = append(args, branch)
	}
	args = append(args, limit)
	if len(args) == 2 {
		query += ` GROUP BY name ORDER BY quantity DESC LIMIT $2`
	} else {
		query += ` GROUP BY name ORDER BY quantity DESC LIMIT $1`
	}

	items := []TopItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, database.MapPQError(err)
	}

	return items, nil
}

// DailyConsumption returns outbound totals per calendar day for the
// trailing n days, for the demand forecaster.
func (r *MovementRepository) DailyConsumption(ctx context.Context, name, branch string, days int) ([]UsageByPeriod, error) {
	if days <= 0 {
		days = 30
	}

	query := `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS period, COALESCE(SUM(quantity), 0) AS quantity
		FROM stock_movements
		WHERE direction = 'out' AND name = $1 AND branch = $2
		  AND created_at >= NOW() - ($3 || ' days')::interval
		GROUP BY date_trunc('day', created_at)
		ORDER BY date_trunc('day', created_at)
	`

	buckets := []UsageByPeriod{}
	if err := r.db.SelectContext(ctx, &buckets, query, name, branch, days); err != nil {
		return nil, database.MapPQError(err)
	}

	return buckets, nil
}
