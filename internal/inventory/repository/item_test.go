package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
	"github.com/premierlux/premierlux-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{
	"id", "name", "branch", "sku", "quantity", "reorder_level",
	"price", "category", "supplier", "monthly_usage", "created_at", "updated_at",
}

func newTestDB(mockDB *testutil.MockDB) *database.DB {
	return database.NewFromDB(mockDB.DB, logger.Nop())
}

func restrictedContext(branch string) context.Context {
	return scope.WithScope(context.Background(), &scope.Scope{
		UserID: "user-1",
		Name:   "Dana",
		Role:   scope.RoleStaff,
		Branch: branch,
	})
}

func TestItemCreate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectQuery("INSERT INTO inventory_items").
		WithArgs("Shampoo", "Downtown", "SH-500", 20, 10, 4.5, "Hair Care", "Beauty Supply Co", 30).
		WillReturnRows(testutil.MockRows("id", "created_at", "updated_at").AddRow("item-1", now, now))

	item := &repository.InventoryItem{
		Name:         "Shampoo",
		Branch:       "Downtown",
		SKU:          "SH-500",
		Quantity:     20,
		ReorderLevel: 10,
		Price:        4.5,
		Category:     "Hair Care",
		Supplier:     "Beauty Supply Co",
		MonthlyUsage: 30,
	}

	err := repo.Create(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)

	mockDB.ExpectationsWereMet(t)
}

func TestItemGet_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("FROM inventory_items").
		WithArgs("Missing", "Downtown").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "Missing", "Downtown")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestItemList_BranchScoped(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectQuery("FROM inventory_items").
		WithArgs("Downtown").
		WillReturnRows(testutil.MockRows(itemColumns...).
			AddRow("item-1", "Conditioner", "Downtown", "CN-250", 8, 10, 6.0, "Hair Care", "Beauty Supply Co", 12, now, now).
			AddRow("item-2", "Shampoo", "Downtown", "SH-500", 20, 10, 4.5, "Hair Care", "Beauty Supply Co", 30, now, now))

	items, err := repo.List(restrictedContext("Downtown"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Conditioner", items[0].Name)

	mockDB.ExpectationsWereMet(t)
}

func TestItemList_UnscopedForAdmins(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	ctx := scope.WithScope(context.Background(), &scope.Scope{
		UserID: "admin-1",
		Role:   scope.RoleAdmin,
		Branch: scope.AllBranches,
	})

	mockDB.ExpectQuery("FROM inventory_items").
		WillReturnRows(testutil.MockRows(itemColumns...))

	_, err := repo.List(ctx)
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestItemAdjust(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("UPDATE inventory_items").
		WithArgs("Shampoo", "Downtown", -5).
		WillReturnRows(testutil.MockRows("quantity").AddRow(15))
	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WithArgs("Shampoo", "Downtown", repository.DirectionOut, 5, "walk-in sale", "Sale", "user-1").
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("mv-1", now))
	mockDB.ExpectCommit()

	movement := &repository.MovementRecord{
		Name:           "Shampoo",
		Branch:         "Downtown",
		Direction:      repository.DirectionOut,
		Quantity:       5,
		Reason:         "walk-in sale",
		ReasonCategory: "Sale",
		PerformedBy:    "user-1",
	}

	newQuantity, err := repo.Adjust(context.Background(), "Shampoo", "Downtown", -5, movement)
	require.NoError(t, err)
	assert.Equal(t, 15, newQuantity)
	assert.Equal(t, "mv-1", movement.ID)

	mockDB.ExpectationsWereMet(t)
}

func TestItemAdjust_UnknownItemRollsBack(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("UPDATE inventory_items").
		WithArgs("Missing", "Downtown", 5).
		WillReturnError(sql.ErrNoRows)
	mockDB.ExpectRollback()

	_, err := repo.Adjust(context.Background(), "Missing", "Downtown", 5, &repository.MovementRecord{
		Name: "Missing", Branch: "Downtown", Direction: repository.DirectionIn, Quantity: 5,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestItemDelete(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	mockDB.ExpectBegin()
	mockDB.ExpectExec("DELETE FROM supply_batches").
		WithArgs("Shampoo", "Downtown").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectExec("DELETE FROM inventory_items").
		WithArgs("Shampoo", "Downtown").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	err := repo.Delete(context.Background(), "Shampoo", "Downtown")
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestItemDelete_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	mockDB.ExpectBegin()
	mockDB.ExpectExec("DELETE FROM supply_batches").
		WithArgs("Missing", "Downtown").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectExec("DELETE FROM inventory_items").
		WithArgs("Missing", "Downtown").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectRollback()

	err := repo.Delete(context.Background(), "Missing", "Downtown")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestItemCountCreatedSince_BranchScoped(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewItemRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("SELECT COUNT(*)").
		WithArgs(7, "Downtown").
		WillReturnRows(testutil.MockRows("count").AddRow(2))

	count, err := repo.CountCreatedSince(restrictedContext("Downtown"), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mockDB.ExpectationsWereMet(t)
}

func TestItemLowStock(t *testing.T) {
	item := &repository.InventoryItem{Quantity: 5, ReorderLevel: 10}
	assert.True(t, item.LowStock())

	item.Quantity = 10
	assert.True(t, item.LowStock())

	item.Quantity = 11
	assert.False(t, item.LowStock())

	// Items without a reorder level are not tracked for restocking,
	// even when fully out of stock.
	untracked := &repository.InventoryItem{Quantity: 0, ReorderLevel: 0}
	assert.False(t, untracked.LowStock())
}
