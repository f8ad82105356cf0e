package service

import (
	"context"
	"fmt"
	"time"

	"github.com/premierlux/premierlux-backend/internal/inventory/events"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// Alert types
const (
	AlertLowStock       = "low_stock"
	AlertExpirySoon     = "expiry_soon"
	AlertExpired        = "expired"
	AlertBranchLowStock = "branch_low_stock"
)

// Alert severities
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// ExpiryWindowDays is how far ahead the engine looks for expiring batches.
const ExpiryWindowDays = 30

// BranchLowStockThreshold is the low-stock item count at which a whole
// branch is flagged.
const BranchLowStockThreshold = 3

// Alert is a derived condition, not a stored row. IDs are deterministic
// functions of the underlying state so the same condition always maps to
// the same alert, which is what makes acknowledgements stick across
// recomputations.
type Alert struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Severity     string    `json:"severity"`
	Branch       string    `json:"branch"`
	ItemName     string    `json:"item_name,omitempty"`
	BatchNumber  string    `json:"batch_number,omitempty"`
	Message      string    `json:"message"`
	Quantity     int       `json:"quantity,omitempty"`
	ReorderLevel int       `json:"reorder_level,omitempty"`
	ExpiryDate   time.Time `json:"expiry_date,omitempty"`
}

// LowStockAlertID returns the deterministic id for a low stock condition.
func LowStockAlertID(branch, name string) string {
	return fmt.Sprintf("low-stock-%s-%s", branch, name)
}

// ExpiryAlertID returns the deterministic id for an expiry condition.
func ExpiryAlertID(branch, name string) string {
	return fmt.Sprintf("expiry-%s-%s", branch, name)
}

// BranchLowStockAlertID returns the deterministic id for a branch-wide
// low stock condition.
func BranchLowStockAlertID(branch string) string {
	return fmt.Sprintf("branch-low-%s", branch)
}

// DeriveAlerts computes the active alert set from ledger and batch state.
// Pure so tests can drive it with fixtures.
func DeriveAlerts(items []repository.InventoryItem, batches []repository.SupplyBatch, now time.Time) []Alert {
	alerts := []Alert{}
	lowPerBranch := map[string]int{}

	for i := range items {
		item := &items[i]
		if !item.LowStock() {
			continue
		}
		lowPerBranch[item.Branch]++

		severity := SeverityWarning
		if item.Quantity == 0 {
			severity = SeverityCritical
		}

		alerts = append(alerts, Alert{
			ID:           LowStockAlertID(item.Branch, item.Name),
			Type:         AlertLowStock,
			Severity:     severity,
			Branch:       item.Branch,
			ItemName:     item.Name,
			Quantity:     item.Quantity,
			ReorderLevel: item.ReorderLevel,
			Message:      fmt.Sprintf("%s at %s is low on stock (%d left, reorder at %d)", item.Name, item.Branch, item.Quantity, item.ReorderLevel),
		})
	}

	// One expiry alert per (branch, item): the soonest-expiring batch wins.
	window := time.Duration(ExpiryWindowDays) * 24 * time.Hour
	seenExpiry := map[string]bool{}
	for i := range batches {
		batch := &batches[i]

		var severity string
		switch {
		case batch.Expired(now):
			severity = SeverityCritical
		case batch.ExpiringSoon(now, window):
			severity = SeverityWarning
		default:
			continue
		}

		id := ExpiryAlertID(batch.Branch, batch.Name)
		if seenExpiry[id] {
			continue
		}
		seenExpiry[id] = true

		alertType := AlertExpirySoon
		message := fmt.Sprintf("batch %s of %s at %s expires on %s", batch.BatchNumber, batch.Name, batch.Branch, batch.ExpiryDate.Format("2006-01-02"))
		if severity == SeverityCritical {
			alertType = AlertExpired
			message = fmt.Sprintf("batch %s of %s at %s expired on %s", batch.BatchNumber, batch.Name, batch.Branch, batch.ExpiryDate.Format("2006-01-02"))
		}

		alerts = append(alerts, Alert{
			ID:          id,
			Type:        alertType,
			Severity:    severity,
			Branch:      batch.Branch,
			ItemName:    batch.Name,
			BatchNumber: batch.BatchNumber,
			ExpiryDate:  batch.ExpiryDate,
			Message:     message,
		})
	}

	for branch, count := range lowPerBranch {
		if count < BranchLowStockThreshold {
			continue
		}
		alerts = append(alerts, Alert{
			ID:       BranchLowStockAlertID(branch),
			Type:     AlertBranchLowStock,
			Severity: SeverityCritical,
			Branch:   branch,
			Quantity: count,
			Message:  fmt.Sprintf("%s has %d items low on stock", branch, count),
		})
	}

	return alerts
}

// AlertService computes active alerts and tracks per-user acknowledgements.
type AlertService struct {
	itemRepo  *repository.ItemRepository
	batchRepo *repository.BatchRepository
	ackRepo   *repository.AcknowledgementRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(
	itemRepo *repository.ItemRepository,
	batchRepo *repository.BatchRepository,
	ackRepo *repository.AcknowledgementRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *AlertService {
	return &AlertService{
		itemRepo:  itemRepo,
		batchRepo: batchRepo,
		ackRepo:   ackRepo,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// Active returns the current alert set visible to the caller, minus the
// alerts the caller has already acknowledged. Another user still sees
// them; acknowledgements are per user.
func (s *AlertService) Active(ctx context.Context) ([]Alert, error) {
	items, err := s.itemRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	expiring, err := s.batchRepo.ListExpiringWithin(ctx, ExpiryWindowDays)
	if err != nil {
		return nil, err
	}

	expired, err := s.batchRepo.ListExpired(ctx)
	if err != nil {
		return nil, err
	}

	alerts := DeriveAlerts(items, append(expired, expiring...), s.now())

	if sc := scope.FromContext(ctx); sc != nil {
		acked, err := s.ackRepo.ListAlertIDs(ctx, sc.UserID)
		if err != nil {
			return nil, err
		}
		ackedSet := map[string]bool{}
		for _, id := range acked {
			ackedSet[id] = true
		}
		visible := alerts[:0]
		for _, a := range alerts {
			if ackedSet[a.ID] {
				continue
			}
			visible = append(visible, a)
		}
		alerts = visible
	}

	return alerts, nil
}

// BroadcastCritical publishes the current critical alerts to the event
// bus. Called from the analytics broadcaster each cycle; consumers are
// expected to dedupe on the deterministic alert id.
func (s *AlertService) BroadcastCritical(ctx context.Context) error {
	alerts, err := s.Active(ctx)
	if err != nil {
		return err
	}

	for _, a := range alerts {
		if a.Severity != SeverityCritical {
			continue
		}
		s.publisher.PublishAlertGenerated(ctx, a.ID, a.Type, a.Severity, a.Branch, a.Message)
	}

	return nil
}

// Acknowledge records that the caller has seen the alert.
func (s *AlertService) Acknowledge(ctx context.Context, alertID string) error {
	sc := scope.FromContext(ctx)
	if sc == nil {
		return nil
	}

	if err := s.ackRepo.Acknowledge(ctx, alertID, sc.UserID); err != nil {
		return err
	}

	s.logger.Debug().Str("alert_id", alertID).Str("user_id", sc.UserID).Msg("alert acknowledged")
	return nil
}
