package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Stock events
	EventStockAdjusted = "inventory.stock.adjusted"
	EventItemCreated   = "inventory.item.created"
	EventItemDeleted   = "inventory.item.deleted"

	// Intake events
	EventBatchReceived = "inventory.batch.received"

	// Order events
	EventOrderCreated  = "inventory.order.created"
	EventOrderApproved = "inventory.order.approved"
	EventOrderRejected = "inventory.order.rejected"
	EventOrderReceived = "inventory.order.received"

	// Alert events
	EventAlertGenerated = "inventory.alert.generated"

	// Analytics events
	EventAnalyticsSnapshot = "analytics.snapshot"
)

// Exchange names
const (
	ExchangeInventoryEvents    = "inventory.events"
	ExchangeAnalyticsSnapshots = "analytics.snapshots"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Stock Events

// StockAdjustedEvent is published when stock is adjusted
type StockAdjustedEvent struct {
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Delta       int    `json:"delta"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
	PerformedBy string `json:"performed_by"`
}

// ItemCreatedEvent is published when an inventory item is registered
type ItemCreatedEvent struct {
	Name         string  `json:"name"`
	Branch       string  `json:"branch"`
	SKU          string  `json:"sku"`
	Quantity     int     `json:"quantity"`
	ReorderLevel int     `json:"reorder_level"`
	Price        float64 `json:"price"`
}

// ItemDeletedEvent is published when an inventory item is removed
type ItemDeletedEvent struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// Intake Events

// BatchReceivedEvent is published when a supply batch is registered
type BatchReceivedEvent struct {
	BatchNumber string    `json:"batch_number"`
	LotNumber   string    `json:"lot_number"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Supplier    string    `json:"supplier"`
}

// Order Events

// OrderCreatedEvent is published when a restock order is submitted
type OrderCreatedEvent struct {
	OrderID   string  `json:"order_id"`
	Name      string  `json:"name"`
	Branch    string  `json:"branch"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	CreatedBy string  `json:"created_by"`
}

// OrderDecisionEvent is published when an order is approved or rejected
type OrderDecisionEvent struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	DecidedBy string `json:"decided_by"`
}

// OrderReceivedEvent is published when an approved order's goods arrive
type OrderReceivedEvent struct {
	OrderID     string `json:"order_id"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
	ReceivedBy  string `json:"received_by"`
}

// Alert Events

// AlertGeneratedEvent is published when a stock alert is generated
type AlertGeneratedEvent struct {
	AlertID  string `json:"alert_id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Branch   string `json:"branch"`
	Message  string `json:"message"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
