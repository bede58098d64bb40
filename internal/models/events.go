package models

import "time"

// Event types
const (
	EventTypePurchaseRecorded = "PURCHASE_RECORDED"
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypeStockAdjusted    = "STOCK_ADJUSTED"
	EventTypeLowStockAlert    = "LOW_STOCK_ALERT"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PurchaseRecordedEvent published when a genuine purchase is recorded
type PurchaseRecordedEvent struct {
	BaseEvent
	PurchaseID         int64    `json:"purchase_id"`
	ItemKind           ItemKind `json:"item_kind"`
	ItemID             int64    `json:"item_id"`
	Quantity           float64  `json:"quantity"`
	TotalCostCents     int64    `json:"total_cost_cents"`
	UnitCostMillicents int64    `json:"unit_cost_millicents"`
}

// OrderCreatedEvent published when an order and its cost snapshots commit
type OrderCreatedEvent struct {
	BaseEvent
	OrderID             int64           `json:"order_id"`
	CustomerID          int64           `json:"customer_id,omitempty"`
	SalePriceTotalCents int64           `json:"sale_price_total_cents"`
	TotalCostCents      int64           `json:"total_cost_cents"`
	Lines               []OrderLineData `json:"lines"`
}

// StockAdjustedEvent published when a reconciliation writes an adjustment
type StockAdjustedEvent struct {
	BaseEvent
	ItemKind ItemKind `json:"item_kind"`
	ItemID   int64    `json:"item_id"`
	Delta    float64  `json:"delta"`
}

// LowStockAlertEvent published by the periodic low-stock check, one per item
type LowStockAlertEvent struct {
	BaseEvent
	ItemKind     ItemKind `json:"item_kind"`
	ItemID       int64    `json:"item_id"`
	Name         string   `json:"name"`
	CurrentStock float64  `json:"current_stock"`
	Threshold    float64  `json:"threshold"`
	Unit         string   `json:"unit"`
}

// OrderLineData represents snapshotted line data in events
type OrderLineData struct {
	ItemKind             ItemKind `json:"item_kind"`
	ItemID               int64    `json:"item_id"`
	Amount               float64  `json:"amount"`
	CostAtTimeOfUseCents int64    `json:"cost_at_time_of_use_cents"`
}
