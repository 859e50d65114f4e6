package domain

import "time"

// OrderPlacedEvent is published once an order has been persisted.
type OrderPlacedEvent struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	ItemCount     int           `json:"item_count"`
	TotalCents    int64         `json:"total_cents"`
	Currency      string        `json:"currency"`
	Timestamp     time.Time     `json:"timestamp"`
}

func NewOrderPlacedEvent(o Order) OrderPlacedEvent {
	count := 0
	for _, item := range o.LineItems {
		count += item.Quantity
	}
	return OrderPlacedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		PaymentMethod: o.Payment.Method,
		ItemCount:     count,
		TotalCents:    o.TotalCents,
		Currency:      o.Currency,
		Timestamp:     o.CreatedAt,
	}
}
