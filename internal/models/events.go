package models

import "time"

// Event types
const (
	EventTypeStockUpdated = "STOCK_UPDATED"
	EventTypeItemAdded    = "ITEM_ADDED"
	EventTypeAlertCreated = "ALERT_CREATED"
	EventTypeAlertRead    = "ALERT_READ"
	EventTypeAlertDeleted = "ALERT_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// StockUpdatedEvent published after a successful stock mutation
type StockUpdatedEvent struct {
	BaseEvent
	InventoryItemID string `json:"inventory_item_id"`
	ProductID       string `json:"product_id"`
	Size            string `json:"size"`
	PreviousStock   int    `json:"previous_stock"`
	NewStock        int    `json:"new_stock"`
	Status          string `json:"status"`
	UserID          string `json:"user_id"`
}

// ItemAddedEvent published when a new inventory item is seeded
type ItemAddedEvent struct {
	BaseEvent
	InventoryItemID string `json:"inventory_item_id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
}

// AlertCreatedEvent published when the alert engine writes a new alert
type AlertCreatedEvent struct {
	BaseEvent
	AlertID         string `json:"alert_id"`
	InventoryItemID string `json:"inventory_item_id"`
	ProductID       string `json:"product_id"`
	Size            string `json:"size"`
	AlertType       string `json:"alert_type"`
	Severity        string `json:"severity"`
}

// AlertReadEvent published when an alert is marked read
type AlertReadEvent struct {
	BaseEvent
	AlertID string `json:"alert_id"`
}

// AlertDeletedEvent published when an operator deletes an alert
type AlertDeletedEvent struct {
	BaseEvent
	AlertID string `json:"alert_id"`
}
