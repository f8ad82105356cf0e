package events

import (
	"context"

	"github.com/premierlux/premierlux-backend/internal/inventory/repository"
	"github.com/premierlux/premierlux-backend/pkg/logger"
	"github.com/premierlux/premierlux-backend/pkg/messaging"
)

// InventoryEventPublisher publishes inventory-related events. A nil
// publisher is safe to call; events are best-effort and never fail the
// operation that produced them.
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishStockAdjusted publishes a stock adjusted event
func (p *InventoryEventPublisher) PublishStockAdjusted(ctx context.Context, m *repository.MovementRecord, delta, newQuantity int) {
	if p == nil {
		return
	}

	data := messaging.StockAdjustedEvent{
		Name:        m.Name,
		Branch:      m.Branch,
		Delta:       delta,
		NewQuantity: newQuantity,
		Reason:      m.Reason,
		PerformedBy: m.PerformedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventStockAdjusted, data); err != nil {
		p.logger.Error().Err(err).Str("name", m.Name).Str("branch", m.Branch).Msg("failed to publish stock adjusted event")
	}
}

// PublishItemCreated publishes an item created event
func (p *InventoryEventPublisher) PublishItemCreated(ctx context.Context, item *repository.InventoryItem) {
	if p == nil {
		return
	}

	data := messaging.ItemCreatedEvent{
		Name:         item.Name,
		Branch:       item.Branch,
		SKU:          item.SKU,
		Quantity:     item.Quantity,
		ReorderLevel: item.ReorderLevel,
		Price:        item.Price,
	}

	if err := p.publisher.Publish(ctx, messaging.EventItemCreated, data); err != nil {
		p.logger.Error().Err(err).Str("name", item.Name).Msg("failed to publish item created event")
	}
}

// PublishItemDeleted publishes an item deleted event
func (p *InventoryEventPublisher) PublishItemDeleted(ctx context.Context, name, branch string) {
	if p == nil {
		return
	}

	data := messaging.ItemDeletedEvent{Name: name, Branch: branch}

	if err := p.publisher.Publish(ctx, messaging.EventItemDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("name", name).Msg("failed to publish item deleted event")
	}
}

// PublishBatchReceived publishes a batch received event
func (p *InventoryEventPublisher) PublishBatchReceived(ctx context.Context, batch *repository.SupplyBatch) {
	if p == nil {
		return
	}

	data := messaging.BatchReceivedEvent{
		BatchNumber: batch.BatchNumber,
		LotNumber:   batch.LotNumber,
		Name:        batch.Name,
		Branch:      batch.Branch,
		Quantity:    batch.Quantity,
		ExpiryDate:  batch.ExpiryDate,
		Supplier:    batch.Supplier,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchReceived, data); err != nil {
		p.logger.Error().Err(err).Str("batch_number", batch.BatchNumber).Msg("failed to publish batch received event")
	}
}

// PublishOrderCreated publishes an order created event
func (p *InventoryEventPublisher) PublishOrderCreated(ctx context.Context, order *repository.RestockOrder) {
	if p == nil {
		return
	}

	data := messaging.OrderCreatedEvent{
		OrderID:   order.ID,
		Name:      order.Name,
		Branch:    order.Branch,
		Quantity:  order.Quantity,
		UnitPrice: order.UnitPrice,
		CreatedBy: order.CreatedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderCreated, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order created event")
	}
}

// PublishOrderDecision publishes an order approved or rejected event
func (p *InventoryEventPublisher) PublishOrderDecision(ctx context.Context, order *repository.RestockOrder) {
	if p == nil {
		return
	}

	decidedBy := ""
	if order.DecidedBy != nil {
		decidedBy = *order.DecidedBy
	}

	data := messaging.OrderDecisionEvent{
		OrderID:   order.ID,
		Status:    order.Status,
		DecidedBy: decidedBy,
	}

	eventType := messaging.EventOrderApproved
	if order.Status == repository.OrderStatusRejected {
		eventType = messaging.EventOrderRejected
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order decision event")
	}
}

// PublishOrderReceived publishes an order received event
func (p *InventoryEventPublisher) PublishOrderReceived(ctx context.Context, order *repository.RestockOrder, newQuantity int) {
	if p == nil {
		return
	}

	receivedBy := ""
	if order.ReceivedBy != nil {
		receivedBy = *order.ReceivedBy
	}

	data := messaging.OrderReceivedEvent{
		OrderID:     order.ID,
		Name:        order.Name,
		Branch:      order.Branch,
		Quantity:    order.Quantity,
		NewQuantity: newQuantity,
		ReceivedBy:  receivedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOrderReceived, data); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order received event")
	}
}

// PublishAlertGenerated publishes an alert generated event
func (p *InventoryEventPublisher) PublishAlertGenerated(ctx context.Context, alertID, alertType, severity, branch, message string) {
	if p == nil {
		return
	}

	data := messaging.AlertGeneratedEvent{
		AlertID:  alertID,
		Type:     alertType,
		Severity: severity,
		Branch:   branch,
		Message:  message,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAlertGenerated, data); err != nil {
		p.logger.Error().Err(err).Str("alert_id", alertID).Msg("failed to publish alert generated event")
	}
}
