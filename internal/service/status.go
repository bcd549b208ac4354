package service

import "inventory-service/internal/models"

// ComputeStatus derives an item status from its stock levels. Precedence is
// strict: a single empty size makes the whole item out_of_stock even when
// every other size is healthy. Discontinued is set out-of-band and never
// produced here.
func ComputeStatus(levels models.StockLevels) string {
	for _, level := range levels {
		if level.CurrentStock == 0 {
			return models.StatusOutOfStock
		}
	}
	for _, level := range levels {
		if level.CurrentStock <= level.ReorderPoint {
			return models.StatusLowStock
		}
	}
	return models.StatusInStock
}

// ComputeTotals sums current stock and stock value across all levels.
func ComputeTotals(levels models.StockLevels) (totalStock int, totalValue float64) {
	for _, level := range levels {
		totalStock += level.CurrentStock
		totalValue += float64(level.CurrentStock) * level.Cost
	}
	return totalStock, totalValue
}
