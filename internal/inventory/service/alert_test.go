package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/premierlux/premierlux-backend/pkg/database"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
	"github.com/premierlux/premierlux-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alertNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func lowItem(name, branch string, quantity, reorderLevel int) repository.InventoryItem {
	return repository.InventoryItem{
		Name:         name,
		Branch:       branch,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
	}
}

func TestDeriveAlerts_Empty(t *testing.T) {
	alerts := service.DeriveAlerts(nil, nil, alertNow)
	assert.Empty(t, alerts)
}

func TestDeriveAlerts_LowStock(t *testing.T) {
	items := []repository.InventoryItem{
		lowItem("Shampoo", "Downtown", 2, 5),
		lowItem("Conditioner", "Downtown", 10, 5), // healthy
	}

	alerts := service.DeriveAlerts(items, nil, alertNow)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "low-stock-Downtown-Shampoo", a.ID)
	assert.Equal(t, service.AlertLowStock, a.Type)
	assert.Equal(t, service.SeverityWarning, a.Severity)
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, 5, a.ReorderLevel)
}

func TestDeriveAlerts_UntrackedItemNeverAlerts(t *testing.T) {
	// No reorder level means no restock tracking, even at zero stock.
	items := []repository.InventoryItem{lowItem("Untracked", "East", 0, 0)}

	alerts := service.DeriveAlerts(items, nil, alertNow)
	assert.Empty(t, alerts)
}

func TestDeriveAlerts_OutOfStockIsCritical(t *testing.T) {
	items := []repository.InventoryItem{lowItem("Shampoo", "Downtown", 0, 5)}

	alerts := service.DeriveAlerts(items, nil, alertNow)
	require.Len(t, alerts, 1)
	assert.Equal(t, service.SeverityCritical, alerts[0].Severity)
}

func TestDeriveAlerts_ExpiringBatch(t *testing.T) {
	batches := []repository.SupplyBatch{
		{
			BatchNumber: "BTN-20260801-AAAA",
			Name:        "Hair Dye",
			Branch:      "Downtown",
			ExpiryDate:  alertNow.Add(10 * 24 * time.Hour),
		},
		{
			// Outside the 30-day window, no alert.
			BatchNumber: "BTN-20260801-BBBB",
			Name:        "Nail Polish",
			Branch:      "Downtown",
			ExpiryDate:  alertNow.Add(60 * 24 * time.Hour),
		},
	}

	alerts := service.DeriveAlerts(nil, batches, alertNow)
	require.Len(t, alerts, 1)

	a := alerts[0]
	assert.Equal(t, "expiry-Downtown-Hair Dye", a.ID)
	assert.Equal(t, service.AlertExpirySoon, a.Type)
	assert.Equal(t, service.SeverityWarning, a.Severity)
	assert.Equal(t, "BTN-20260801-AAAA", a.BatchNumber)
}

func TestDeriveAlerts_ExpiredBatchIsCritical(t *testing.T) {
	batches := []repository.SupplyBatch{
		{
			BatchNumber: "BTN-20260701-CCCC",
			Name:        "Hair Dye",
			Branch:      "Downtown",
			ExpiryDate:  alertNow.Add(-24 * time.Hour),
		},
	}

	alerts := service.DeriveAlerts(nil, batches, alertNow)
	require.Len(t, alerts, 1)
	assert.Equal(t, service.AlertExpired, alerts[0].Type)
	assert.Equal(t, service.SeverityCritical, alerts[0].Severity)
}

func TestDeriveAlerts_OneExpiryAlertPerItem(t *testing.T) {
	// Two batches of the same item in the window collapse to one alert;
	// the first batch in the list wins, so callers pass soonest first.
	batches := []repository.SupplyBatch{
		{
			BatchNumber: "BTN-20260801-AAAA",
			Name:        "Hair Dye",
			Branch:      "Downtown",
			ExpiryDate:  alertNow.Add(5 * 24 * time.Hour),
		},
		{
			BatchNumber: "BTN-20260815-BBBB",
			Name:        "Hair Dye",
			Branch:      "Downtown",
			ExpiryDate:  alertNow.Add(20 * 24 * time.Hour),
		},
	}

	alerts := service.DeriveAlerts(nil, batches, alertNow)
	require.Len(t, alerts, 1)
	assert.Equal(t, "BTN-20260801-AAAA", alerts[0].BatchNumber)
}

func TestDeriveAlerts_BranchLowStock(t *testing.T) {
	items := []repository.InventoryItem{
		lowItem("Shampoo", "Downtown", 1, 5),
		lowItem("Conditioner", "Downtown", 2, 5),
		lowItem("Hair Dye", "Downtown", 0, 5),
		lowItem("Shampoo", "Uptown", 1, 5), // only one low item, no branch alert
	}

	alerts := service.DeriveAlerts(items, nil, alertNow)

	var branchAlerts []service.Alert
	for _, a := range alerts {
		if a.Type == service.AlertBranchLowStock {
			branchAlerts = append(branchAlerts, a)
		}
	}

	require.Len(t, branchAlerts, 1)
	assert.Equal(t, "branch-low-Downtown", branchAlerts[0].ID)
	assert.Equal(t, service.SeverityCritical, branchAlerts[0].Severity)
	assert.Equal(t, 3, branchAlerts[0].Quantity)
}

func TestDeriveAlerts_DeterministicIDs(t *testing.T) {
	items := []repository.InventoryItem{lowItem("Shampoo", "Downtown", 2, 5)}

	first := service.DeriveAlerts(items, nil, alertNow)
	second := service.DeriveAlerts(items, nil, alertNow.Add(time.Hour))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestAlertIDs(t *testing.T) {
	assert.Equal(t, "low-stock-Downtown-Shampoo", service.LowStockAlertID("Downtown", "Shampoo"))
	assert.Equal(t, "expiry-Downtown-Shampoo", service.ExpiryAlertID("Downtown", "Shampoo"))
	assert.Equal(t, "branch-low-Downtown", service.BranchLowStockAlertID("Downtown"))
}

func newAlertService(mockDB *testutil.MockDB) *service.AlertService {
	db := database.NewFromDB(mockDB.DB, logger.Nop())
	return service.NewAlertService(
		repository.NewItemRepository(db),
		repository.NewBatchRepository(db),
		repository.NewAcknowledgementRepository(db),
		nil,
		logger.Nop(),
	)
}

func alertUserContext(userID string) context.Context {
	return scope.WithScope(context.Background(), &scope.Scope{
		UserID: userID,
		Name:   "Alex",
		Role:   scope.RoleAdmin,
		Branch: scope.AllBranches,
	})
}

// expectAlertScan queues the three queries one Active() call issues, with
// a single low-stock row for Shampoo at Downtown and no batches.
func expectAlertScan(mockDB *testutil.MockDB) {
	now := time.Now()
	itemCols := []string{
		"id", "name", "branch", "sku", "quantity", "reorder_level",
		"price", "category", "supplier", "monthly_usage", "created_at", "updated_at",
	}
	batchCols := []string{
		"id", "batch_number", "lot_number", "qr_code", "name", "branch", "quantity",
		"mfg_date", "expiry_date", "category", "supplier", "supplier_batch", "received_by", "created_at",
	}

	mockDB.ExpectQuery("FROM inventory_items").
		WillReturnRows(testutil.MockRows(itemCols...).AddRow(
			"item-1", "Shampoo", "Downtown", "SH-500", 2, 5, 4.5,
			"Hair Care", "Beauty Supply Co", 30, now, now,
		))
	mockDB.ExpectQuery("FROM supply_batches").
		WithArgs(service.ExpiryWindowDays).
		WillReturnRows(testutil.MockRows(batchCols...))
	mockDB.ExpectQuery("FROM supply_batches").
		WillReturnRows(testutil.MockRows(batchCols...))
}

func TestAlertActive_AcknowledgementsArePerUser(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newAlertService(mockDB)
	alertID := service.LowStockAlertID("Downtown", "Shampoo")

	// user-a already acknowledged the alert, so it is filtered out.
	expectAlertScan(mockDB)
	mockDB.ExpectQuery("FROM alert_acknowledgements").
		WithArgs("user-a").
		WillReturnRows(testutil.MockRows("alert_id").AddRow(alertID))

	alerts, err := svc.Active(alertUserContext("user-a"))
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// user-b has not, so the same condition is still visible.
	expectAlertScan(mockDB)
	mockDB.ExpectQuery("FROM alert_acknowledgements").
		WithArgs("user-b").
		WillReturnRows(testutil.MockRows("alert_id"))

	alerts, err = svc.Active(alertUserContext("user-b"))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alertID, alerts[0].ID)

	mockDB.ExpectationsWereMet(t)
}
