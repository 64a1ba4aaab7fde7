package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeStockDepleted      = "STOCK_DEPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created from a cart
type OrderCreatedEvent struct {
	BaseEvent
	OrderID string           `json:"order_id"`
	UserID  string           `json:"user_id"`
	Total   float64          `json:"total"`
	Items   []OrderItemEvent `json:"items"`
}

// OrderStatusChangedEvent published when an admin updates an order status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// StockDepletedEvent published when an order decrement drives a product's
// stock to zero
type StockDepletedEvent struct {
	BaseEvent
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

// OrderItemEvent represents item data in events
type OrderItemEvent struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
