package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Product types
const (
	ProductTypeCoffee = "Coffee"
	ProductTypeBean   = "Bean"
)

// Inventory statuses
const (
	StatusInStock      = "in_stock"
	StatusLowStock     = "low_stock"
	StatusOutOfStock   = "out_of_stock"
	StatusDiscontinued = "discontinued"
)

// Alert types
const (
	AlertTypeLowStock     = "low_stock"
	AlertTypeOutOfStock   = "out_of_stock"
	AlertTypeReorderPoint = "reorder_point"
)

// Alert severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Movement types
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
	MovementTypeTransfer   = "transfer"
)

// StockLevel is one sellable size within an inventory item. Sizes are
// unique within an item; the level is owned by its parent and never shared.
type StockLevel struct {
	Size          string    `json:"size"`
	CurrentStock  int       `json:"current_stock"`
	MinStock      int       `json:"min_stock"`
	MaxStock      int       `json:"max_stock"`
	ReorderPoint  int       `json:"reorder_point"`
	Cost          float64   `json:"cost"`
	LastRestocked time.Time `json:"last_restocked"`
}

// StockLevels is stored as a JSONB column on the item row, keeping the
// item a single document the way the backing store treats it.
type StockLevels []StockLevel

// Value implements driver.Valuer for JSONB storage.
func (s StockLevels) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB storage.
func (s *StockLevels) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for StockLevels: %T", src)
	}
}

// InventoryItem is one row per product SKU. TotalStock, TotalValue and
// Status are derived from the stock levels on every mutation; Version
// backs the optimistic concurrency check in the store.
type InventoryItem struct {
	ID          string      `db:"id" json:"id"`
	ProductID   string      `db:"product_id" json:"product_id"`
	ProductName string      `db:"product_name" json:"product_name"`
	ProductType string      `db:"product_type" json:"product_type"`
	SKU         string      `db:"sku" json:"sku"`
	StockLevels StockLevels `db:"stock_levels" json:"stock_levels"`
	TotalStock  int         `db:"total_stock" json:"total_stock"`
	TotalValue  float64     `db:"total_value" json:"total_value"`
	Status      string      `db:"status" json:"status"`
	Supplier    string      `db:"supplier" json:"supplier"`
	Location    string      `db:"location" json:"location"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	Version     int64       `db:"version" json:"version"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	LastUpdated time.Time   `db:"last_updated" json:"last_updated"`
}

// LevelBySize returns the stock level matching size, or nil.
func (i *InventoryItem) LevelBySize(size string) *StockLevel {
	for idx := range i.StockLevels {
		if i.StockLevels[idx].Size == size {
			return &i.StockLevels[idx]
		}
	}
	return nil
}

// StockAlert is a derived fact produced by the alert engine. At most one
// unread alert exists per (product, size, alert type) tuple at any time.
type StockAlert struct {
	ID              string    `db:"id" json:"id"`
	ProductID       string    `db:"product_id" json:"product_id"`
	Size            string    `db:"size" json:"size"`
	AlertType       string    `db:"alert_type" json:"alert_type"`
	CurrentStock    int       `db:"current_stock" json:"current_stock"`
	Threshold       int       `db:"threshold" json:"threshold"`
	Severity        string    `db:"severity" json:"severity"`
	IsRead          bool      `db:"is_read" json:"is_read"`
	InventoryItemID string    `db:"inventory_item_id" json:"inventory_item_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// StockMovement is one ledger entry, immutable once written.
// Quantity is a magnitude; the sign lives in MovementType.
type StockMovement struct {
	ID            string    `db:"id" json:"id"`
	ProductID     string    `db:"product_id" json:"product_id"`
	Size          string    `db:"size" json:"size"`
	MovementType  string    `db:"movement_type" json:"movement_type"`
	Quantity      int       `db:"quantity" json:"quantity"`
	PreviousStock int       `db:"previous_stock" json:"previous_stock"`
	NewStock      int       `db:"new_stock" json:"new_stock"`
	Reason        string    `db:"reason" json:"reason"`
	Reference     string    `db:"reference" json:"reference,omitempty"`
	UserID        string    `db:"user_id" json:"user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// MovementTypeForDelta maps a signed stock delta to its movement type.
func MovementTypeForDelta(delta int) string {
	switch {
	case delta > 0:
		return MovementTypeIn
	case delta < 0:
		return MovementTypeOut
	default:
		return MovementTypeAdjustment
	}
}

// StockPercentage breaks item counts down as percentages of the total.
type StockPercentage struct {
	InStock    float64 `json:"in_stock"`
	LowStock   float64 `json:"low_stock"`
	OutOfStock float64 `json:"out_of_stock"`
}

// Stats summarizes an inventory snapshot.
type Stats struct {
	TotalProducts   int             `json:"total_products"`
	InStock         int             `json:"in_stock"`
	LowStock        int             `json:"low_stock"`
	OutOfStock      int             `json:"out_of_stock"`
	TotalValue      float64         `json:"total_value"`
	TotalStock      int             `json:"total_stock"`
	StockPercentage StockPercentage `json:"stock_percentage"`
}
