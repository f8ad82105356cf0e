package service

import (
	"context"
	"encoding/json"

	"github.com/premierlux/premierlux-backend/internal/inventory/events"
	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/errors"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/scope"
)

// LedgerService handles stock ledger business logic.
type LedgerService struct {
	itemRepo     *repository.ItemRepository
	movementRepo *repository.MovementRepository
	auditRepo    *repository.AuditRepository
	publisher    *events.InventoryEventPublisher
	logger       *logger.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	itemRepo *repository.ItemRepository,
	movementRepo *repository.MovementRepository,
	auditRepo *repository.AuditRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *LedgerService {
	return &LedgerService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// AdjustmentInput describes one stock adjustment.
type AdjustmentInput struct {
	Name           string `json:"name" validate:"required"`
	Branch         string `json:"branch" validate:"required"`
	Delta          int    `json:"delta" validate:"required"`
	Reason         string `json:"reason"`
	ReasonCategory string `json:"reason_category"`
}

// AdjustmentResult reports the outcome of an adjustment.
type AdjustmentResult struct {
	Item        *repository.InventoryItem  `json:"item"`
	Movement    *repository.MovementRecord `json:"movement"`
	NewQuantity int                        `json:"new_quantity"`
}

// CreateItem registers a new ledger row.
func (s *LedgerService) CreateItem(ctx context.Context, item *repository.InventoryItem) error {
	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(item.Branch) {
		return errors.Forbidden("cannot create items outside your branch")
	}

	if item.Quantity < 0 {
		return errors.BadRequest("quantity cannot be negative")
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return err
	}

	s.publisher.PublishItemCreated(ctx, item)
	s.audit(ctx, "item.created", "inventory_item", item.ID, item)

	s.logger.Info().Str("name", item.Name).Str("branch", item.Branch).Msg("inventory item created")
	return nil
}

// GetItem returns one ledger row.
func (s *LedgerService) GetItem(ctx context.Context, name, branch string) (*repository.InventoryItem, error) {
	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(branch) {
		return nil, errors.Forbidden("cannot view items outside your branch")
	}
	return s.itemRepo.Get(ctx, name, branch)
}

// ListItems returns ledger rows visible to the caller.
func (s *LedgerService) ListItems(ctx context.Context) ([]repository.InventoryItem, error) {
	return s.itemRepo.List(ctx)
}

// ListLowStock returns visible rows at or below their reorder level.
func (s *LedgerService) ListLowStock(ctx context.Context) ([]repository.InventoryItem, error) {
	return s.itemRepo.ListLowStock(ctx)
}

// Adjust applies a signed stock delta. A zero delta is rejected rather
// than logged as a no-op movement. Quantities clamp at zero; the movement
// records the requested delta, not the clamped one, so the log shows what
// was asked for.
func (s *LedgerService) Adjust(ctx context.Context, input *AdjustmentInput) (*AdjustmentResult, error) {
	if input.Delta == 0 {
		return nil, errors.BadRequest("delta must be non-zero")
	}

	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(input.Branch) {
		return nil, errors.Forbidden("cannot adjust stock outside your branch")
	}

	direction := repository.DirectionIn
	magnitude := input.Delta
	if input.Delta < 0 {
		direction = repository.DirectionOut
		magnitude = -input.Delta
	}

	performedBy := "system"
	if sc != nil {
		performedBy = sc.UserID
	}

	movement := &repository.MovementRecord{
		Name:           input.Name,
		Branch:         input.Branch,
		Direction:      direction,
		Quantity:       magnitude,
		Reason:         input.Reason,
		ReasonCategory: input.ReasonCategory,
		PerformedBy:    performedBy,
	}

	newQuantity, err := s.itemRepo.Adjust(ctx, input.Name, input.Branch, input.Delta, movement)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.Get(ctx, input.Name, input.Branch)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishStockAdjusted(ctx, movement, input.Delta, newQuantity)
	s.audit(ctx, "stock.adjusted", "inventory_item", item.ID, movement)

	s.logger.Info().
		Str("name", input.Name).
		Str("branch", input.Branch).
		Int("delta", input.Delta).
		Int("new_quantity", newQuantity).
		Msg("stock adjusted")

	return &AdjustmentResult{
		Item:        item,
		Movement:    movement,
		NewQuantity: newQuantity,
	}, nil
}

// DeleteItem removes a ledger row and its batches.
func (s *LedgerService) DeleteItem(ctx context.Context, name, branch string) error {
	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(branch) {
		return errors.Forbidden("cannot delete items outside your branch")
	}

	if err := s.itemRepo.Delete(ctx, name, branch); err != nil {
		return err
	}

	s.publisher.PublishItemDeleted(ctx, name, branch)
	s.audit(ctx, "item.deleted", "inventory_item", name, nil)

	s.logger.Info().Str("name", name).Str("branch", branch).Msg("inventory item deleted")
	return nil
}

// RecentMovements returns the newest movement log entries.
func (s *LedgerService) RecentMovements(ctx context.Context, limit int) ([]repository.MovementRecord, error) {
	return s.movementRepo.ListRecent(ctx, limit)
}

// audit appends a best-effort audit entry. A failed write is logged and
// swallowed; the audited operation has already committed.
func (s *LedgerService) audit(ctx context.Context, action, resource, resourceID string, details interface{}) {
	sc := scope.FromContext(ctx)
	if sc == nil {
		sc = scope.System()
	}

	var payload json.RawMessage
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = b
		}
	}

	entry := &repository.AuditEntry{
		UserID:     sc.UserID,
		UserName:   sc.Name,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    payload,
	}

	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to write audit entry")
	}
}
