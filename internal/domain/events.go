package domain

import "time"

const EventTypeOrderPlaced = "order.placed"

// OrderPlacedEvent is published on the order-events topic after an order is stored.
type OrderPlacedEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	PlacedAt    time.Time `json:"placed_at"`
}
