package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
	"github.com/premierlux/premierlux-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerService(mockDB *testutil.MockDB) *service.LedgerService {
	db := database.NewFromDB(mockDB.DB, logger.Nop())
	return service.NewLedgerService(
		repository.NewItemRepository(db),
		repository.NewMovementRepository(db),
		repository.NewAuditRepository(db),
		nil, // events are best-effort, nil publisher is a no-op
		logger.Nop(),
	)
}

func staffContext(branch string) context.Context {
	return scope.WithScope(context.Background(), &scope.Scope{
		UserID: "user-1",
		Name:   "Dana",
		Role:   scope.RoleStaff,
		Branch: branch,
	})
}

func TestLedgerAdjust(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLedgerService(mockDB)
	ctx := staffContext("Downtown")
	now := time.Now()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("UPDATE inventory_items").
		WithArgs("Shampoo", "Downtown", -3).
		WillReturnRows(testutil.MockRows("quantity").AddRow(7))
	mockDB.ExpectQuery("INSERT INTO stock_movements").
		WithArgs("Shampoo", "Downtown", repository.DirectionOut, 3, "damaged in transit", repository.DefaultReasonCategory, "user-1").
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("mv-1", now))
	mockDB.ExpectCommit()

	mockDB.ExpectQuery("FROM inventory_items").
		WithArgs("Shampoo", "Downtown").
		WillReturnRows(testutil.MockRows(
			"id", "name", "branch", "sku", "quantity", "reorder_level",
			"price", "category", "supplier", "monthly_usage", "created_at", "updated_at",
		).AddRow("item-1", "Shampoo", "Downtown", "SH-500", 7, 10, 4.5, "Hair Care", "Beauty Supply Co", 30, now, now))

	mockDB.ExpectQuery("INSERT INTO audit_entries").
		WithArgs("user-1", "Dana", "stock.adjusted", "inventory_item", "item-1", sqlmock.AnyArg()).
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("audit-1", now))

	result, err := svc.Adjust(ctx, &service.AdjustmentInput{
		Name:   "Shampoo",
		Branch: "Downtown",
		Delta:  -3,
		Reason: "damaged in transit",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, result.NewQuantity)
	assert.Equal(t, repository.DirectionOut, result.Movement.Direction)
	assert.Equal(t, 3, result.Movement.Quantity)
	assert.Equal(t, "user-1", result.Movement.PerformedBy)
	assert.Equal(t, "Shampoo", result.Item.Name)

	mockDB.ExpectationsWereMet(t)
}

func TestLedgerAdjust_ZeroDelta(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLedgerService(mockDB)

	_, err := svc.Adjust(staffContext("Downtown"), &service.AdjustmentInput{
		Name:   "Shampoo",
		Branch: "Downtown",
		Delta:  0,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestLedgerAdjust_OtherBranchForbidden(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLedgerService(mockDB)

	_, err := svc.Adjust(staffContext("Uptown"), &service.AdjustmentInput{
		Name:   "Shampoo",
		Branch: "Downtown",
		Delta:  5,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestLedgerCreateItem_NegativeQuantity(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLedgerService(mockDB)

	err := svc.CreateItem(staffContext("Downtown"), &repository.InventoryItem{
		Name:     "Shampoo",
		Branch:   "Downtown",
		Quantity: -1,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestOrderDecide_StaffForbidden(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := database.NewFromDB(mockDB.DB, logger.Nop())
	svc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewItemRepository(db),
		repository.NewAuditRepository(db),
		nil,
		logger.Nop(),
	)

	_, err := svc.Approve(staffContext("Downtown"), "order-1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestOrderApprove_WritesAuditEntry(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := database.NewFromDB(mockDB.DB, logger.Nop())
	svc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewItemRepository(db),
		repository.NewAuditRepository(db),
		nil,
		logger.Nop(),
	)
	now := time.Now()

	mockDB.ExpectQuery("UPDATE restock_orders").
		WithArgs("order-1", repository.OrderStatusApproved, "admin-1").
		WillReturnRows(testutil.MockRows(
			"id", "name", "branch", "quantity", "unit_price", "status", "created_by",
			"decided_by", "decided_at", "received_by", "received_at", "created_at", "updated_at",
		).AddRow(
			"order-1", "Shampoo", "Downtown", 24, 4.5, repository.OrderStatusApproved,
			"user-1", "admin-1", now, nil, nil, now, now,
		))

	// Every transition lands in the audit trail.
	mockDB.ExpectQuery("INSERT INTO audit_entries").
		WithArgs("admin-1", "Alex", "order.approved", "restock_order", "order-1", sqlmock.AnyArg()).
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("audit-1", now))

	order, err := svc.Approve(alertUserContext("admin-1"), "order-1")
	require.NoError(t, err)
	assert.Equal(t, repository.OrderStatusApproved, order.Status)

	mockDB.ExpectationsWereMet(t)
}

func TestOrderList_UnknownStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := database.NewFromDB(mockDB.DB, logger.Nop())
	svc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewItemRepository(db),
		repository.NewAuditRepository(db),
		nil,
		logger.Nop(),
	)

	_, err := svc.List(context.Background(), "shipped")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "BAD_REQUEST", appErr.Code)
}
