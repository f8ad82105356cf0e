package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var batchColumns = []string{
	"id", "batch_number", "lot_number", "qr_code", "name", "branch", "quantity",
	"mfg_date", "expiry_date", "category", "supplier", "supplier_batch", "received_by", "created_at",
}

func TestBatchCreate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewBatchRepository(newTestDB(mockDB))
	now := time.Now()
	mfg := now.Add(-3 * 24 * time.Hour)
	expiry := now.Add(90 * 24 * time.Hour)

	batch := &repository.SupplyBatch{
		BatchNumber:   "BTN-20260829-4KQ7",
		LotNumber:     "LOT-20260829",
		QRCodeID:      "A1B2C3D4",
		Name:          "Shampoo",
		Branch:        "Downtown",
		Quantity:      12,
		MfgDate:       mfg,
		ExpiryDate:    expiry,
		Category:      "Hair Care",
		Supplier:      "Beauty Supply Co",
		SupplierBatch: "General",
		ReceivedBy:    "user-1",
	}
	ledger := &repository.IntakeLedgerFields{
		SKU:          "SH-500",
		ReorderLevel: 10,
		Price:        4.5,
		Category:     "Hair Care",
		Supplier:     "Beauty Supply Co",
		MonthlyUsage: 30,
	}

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO supply_batches").
		WithArgs("BTN-20260829-4KQ7", "LOT-20260829", "A1B2C3D4", "Shampoo", "Downtown",
			12, mfg, expiry, "Hair Care", "Beauty Supply Co", "General", "user-1").
		WillReturnRows(testutil.MockRows("id", "created_at").AddRow("batch-1", now))
	mockDB.ExpectQuery("INSERT INTO inventory_items").
		WithArgs("Shampoo", "Downtown", "SH-500", 12, 10, 4.5, "Hair Care", "Beauty Supply Co", 30).
		WillReturnRows(testutil.MockRows("quantity").AddRow(62))
	mockDB.ExpectCommit()

	newQuantity, err := repo.Create(context.Background(), batch, ledger)
	require.NoError(t, err)
	assert.Equal(t, 62, newQuantity)
	assert.Equal(t, "batch-1", batch.ID)

	mockDB.ExpectationsWereMet(t)
}

func TestBatchGetByQRCode_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewBatchRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("FROM supply_batches").
		WithArgs("ZZZZZZZZ").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByQRCode(context.Background(), "ZZZZZZZZ")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestBatchListExpiringWithin_BranchScoped(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewBatchRepository(newTestDB(mockDB))
	now := time.Now()

	mockDB.ExpectQuery("FROM supply_batches").
		WithArgs(30, "Downtown").
		WillReturnRows(testutil.MockRows(batchColumns...).AddRow(
			"batch-1", "BTN-20260829-4KQ7", "LOT-20260829", "A1B2C3D4", "Shampoo", "Downtown", 12,
			now.Add(-3*24*time.Hour), now.Add(10*24*time.Hour), "Hair Care",
			"Beauty Supply Co", "General", "user-1", now,
		))

	batches, err := repo.ListExpiringWithin(restrictedContext("Downtown"), 30)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "BTN-20260829-4KQ7", batches[0].BatchNumber)

	mockDB.ExpectationsWereMet(t)
}

func TestBatchCountManufacturedSince_BranchScoped(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	repo := repository.NewBatchRepository(newTestDB(mockDB))

	mockDB.ExpectQuery("SELECT COUNT(*)").
		WithArgs(7, "Downtown").
		WillReturnRows(testutil.MockRows("count").AddRow(4))

	count, err := repo.CountManufacturedSince(restrictedContext("Downtown"), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	mockDB.ExpectationsWereMet(t)
}

func TestBatchExpiryHelpers(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	fresh := &repository.SupplyBatch{ExpiryDate: now.Add(90 * 24 * time.Hour)}
	assert.False(t, fresh.Expired(now))
	assert.False(t, fresh.ExpiringSoon(now, window))

	closing := &repository.SupplyBatch{ExpiryDate: now.Add(10 * 24 * time.Hour)}
	assert.False(t, closing.Expired(now))
	assert.True(t, closing.ExpiringSoon(now, window))

	gone := &repository.SupplyBatch{ExpiryDate: now.Add(-24 * time.Hour)}
	assert.True(t, gone.Expired(now))
	assert.False(t, gone.ExpiringSoon(now, window))

	// Expiring exactly now counts as expired, not expiring soon.
	boundary := &repository.SupplyBatch{ExpiryDate: now}
	assert.True(t, boundary.Expired(now))
	assert.False(t, boundary.ExpiringSoon(now, window))
}
