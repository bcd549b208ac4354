package service

import "inventory-service/internal/models"

// ComputeStats summarizes an inventory snapshot. Pure; no I/O. Percentages
// are zero when the snapshot is empty.
func ComputeStats(items []models.InventoryItem) models.Stats {
	stats := models.Stats{TotalProducts: len(items)}

	for _, item := range items {
		switch item.Status {
		case models.StatusInStock:
			stats.InStock++
		case models.StatusLowStock:
			stats.LowStock++
		case models.StatusOutOfStock:
			stats.OutOfStock++
		}
		stats.TotalValue += item.TotalValue
		stats.TotalStock += item.TotalStock
	}

	if stats.TotalProducts > 0 {
		total := float64(stats.TotalProducts)
		stats.StockPercentage = models.StockPercentage{
			InStock:    float64(stats.InStock) / total * 100,
			LowStock:   float64(stats.LowStock) / total * 100,
			OutOfStock: float64(stats.OutOfStock) / total * 100,
		}
	}

	return stats
}
