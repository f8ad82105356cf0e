package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movementColumns = []string{
	"id", "name", "branch", "direction", "quantity", "reason", "reason_category", "performed_by", "created_at",
}

func TestMovementInsert_DefaultsReasonCategory(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewMovementRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WithArgs("Shampoo", "Downtown", repository.DirectionOut, 2, "breakage", repository.DefaultReasonCategory, "user-1").
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("mv-1", now))

	m := &repository.MovementRecord{
		Name:        "Shampoo",
		Branch:      "Downtown",
		Direction:   repository.DirectionOut,
		Quantity:    2,
		Reason:      "breakage",
		PerformedBy: "user-1",
	}

	err := repo.Insert(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, repository.DefaultReasonCategory, m.ReasonCategory)
	assert.Equal(t, "mv-1", m.ID)

	mockDB.ExpectationsWereMet(t)
}

func TestMovementListRecent_DefaultLimit(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewMovementRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectQuery("FROM stock_movements").
		WithArgs(50).
		WillReturnRows(testutil.MockRows(movementColumns...).AddRow(
			"mv-1", "Shampoo", "Downtown", repository.DirectionOut, 2,
			"breakage", repository.DefaultReasonCategory, "user-1", now,
		))

	records, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	mockDB.ExpectationsWereMet(t)
}

func TestMovementListRecent_BranchScoped(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewMovementRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("FROM stock_movements").
		WithArgs("Downtown", 10).
		WillReturnRows(testutil.MockRows(movementColumns...))

	_, err := repo.ListRecent(restrictedContext("Downtown"), 10)
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestMovementTopConsumed_DefaultLimit(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewMovementRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("FROM stock_movements").
		WithArgs(5).
		WillReturnRows(testutil.MockRows("name", "quantity").
			AddRow("Shampoo", 42).
			AddRow("Conditioner", 17))

	items, err := repo.TopConsumed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Shampoo", items[0].Name)
	assert.Equal(t, 42, items[0].Quantity)

	mockDB.ExpectationsWereMet(t)
}

func TestMovementDailyConsumption(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewMovementRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("FROM stock_movements").
		WithArgs("Shampoo", "Downtown", 30).
		WillReturnRows(testutil.MockRows("period", "quantity").
			AddRow("2026-08-27", 3).
			AddRow("2026-08-28", 5))

	buckets, err := repo.DailyConsumption(context.Background(), "Shampoo", "Downtown", 0)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2026-08-27", buckets[0].Period)

	mockDB.ExpectationsWereMet(t)
}
