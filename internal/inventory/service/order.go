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

// OrderService runs the restock order lifecycle.
type OrderService struct {
	orderRepo *repository.OrderRepository
	itemRepo  *repository.ItemRepository
	auditRepo *repository.AuditRepository
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo *repository.OrderRepository,
	itemRepo *repository.ItemRepository,
	auditRepo *repository.AuditRepository,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		logger:    log,
	}
}

// OrderInput describes one new restock order.
type OrderInput struct {
	Name      string  `json:"name" validate:"required"`
	Branch    string  `json:"branch" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
}

// Create submits a pending order. The item must already exist in the
// ledger so receipts always have a row to increment.
func (s *OrderService) Create(ctx context.Context, input *OrderInput) (*repository.RestockOrder, error) {
	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(input.Branch) {
		return nil, errors.Forbidden("cannot order for another branch")
	}

	if input.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be positive")
	}

	item, err := s.itemRepo.Get(ctx, input.Name, input.Branch)
	if err != nil {
		return nil, err
	}

	unitPrice := input.UnitPrice
	if unitPrice == 0 {
		unitPrice = item.Price
	}

	createdBy := "system"
	if sc != nil {
		createdBy = sc.UserID
	}

	order := &repository.RestockOrder{
		Name:      input.Name,
		Branch:    input.Branch,
		Quantity:  input.Quantity,
		UnitPrice: unitPrice,
		CreatedBy: createdBy,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.PublishOrderCreated(ctx, order)

	s.logger.Info().Str("order_id", order.ID).Str("name", order.Name).Str("branch", order.Branch).Msg("restock order created")
	return order, nil
}

// List returns orders visible to the caller, optionally filtered by status.
func (s *OrderService) List(ctx context.Context, status string) ([]repository.RestockOrder, error) {
	switch status {
	case "", repository.OrderStatusPending, repository.OrderStatusApproved,
		repository.OrderStatusRejected, repository.OrderStatusReceived:
	default:
		return nil, errors.BadRequest("unknown order status")
	}
	return s.orderRepo.List(ctx, status)
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*repository.RestockOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sc := scope.FromContext(ctx)
	if sc != nil && !sc.CanWriteBranch(order.Branch) {
		return nil, errors.NotFound("restock order")
	}

	return order, nil
}

// Approve moves a pending order to approved. Owners and admins only.
func (s *OrderService) Approve(ctx context.Context, id string) (*repository.RestockOrder, error) {
	return s.decide(ctx, id, repository.OrderStatusApproved)
}

// Reject moves a pending order to rejected. Owners and admins only.
func (s *OrderService) Reject(ctx context.Context, id string) (*repository.RestockOrder, error) {
	return s.decide(ctx, id, repository.OrderStatusRejected)
}

func (s *OrderService) decide(ctx context.Context, id, newStatus string) (*repository.RestockOrder, error) {
	sc := scope.FromContext(ctx)
	if sc == nil || !sc.CanManageOrders() {
		return nil, errors.Forbidden("only owners and admins can decide orders")
	}

	order, err := s.orderRepo.Decide(ctx, id, newStatus, sc.UserID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishOrderDecision(ctx, order)
	s.audit(ctx, "order."+newStatus, order.ID, map[string]interface{}{
		"name":   order.Name,
		"branch": order.Branch,
	})

	s.logger.Info().Str("order_id", order.ID).Str("status", order.Status).Str("decided_by", sc.UserID).Msg("restock order decided")
	return order, nil
}

// Receive completes an approved order. Exactly-once: a repeat call gets a
// conflict, and the ledger increment happens in the same transaction as
// the status flip.
func (s *OrderService) Receive(ctx context.Context, id string) (*repository.ReceiveResult, error) {
	sc := scope.FromContext(ctx)

	// Branch staff may only receive into their own branch.
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc != nil && !sc.CanWriteBranch(order.Branch) {
		return nil, errors.Forbidden("cannot receive orders for another branch")
	}

	receivedBy := "system"
	if sc != nil {
		receivedBy = sc.UserID
	}

	result, err := s.orderRepo.MarkReceived(ctx, id, receivedBy)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishOrderReceived(ctx, result.Order, result.NewQuantity)
	s.audit(ctx, "order.received", id, map[string]interface{}{
		"name":         result.Order.Name,
		"branch":       result.Order.Branch,
		"quantity":     result.Order.Quantity,
		"new_quantity": result.NewQuantity,
	})

	s.logger.Info().
		Str("order_id", id).
		Int("quantity", result.Order.Quantity).
		Int("new_quantity", result.NewQuantity).
		Msg("restock order received")

	return result, nil
}

// audit appends a best-effort audit entry for one order transition. A
// failed write is logged and swallowed; the transition has already
// committed.
func (s *OrderService) audit(ctx context.Context, action, orderID string, details interface{}) {
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
		Resource:   "restock_order",
		ResourceID: orderID,
		Details:    payload,
	}

	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to write audit entry")
	}
}
