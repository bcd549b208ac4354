package service

import (
	"context"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertStore is the slice of storage the alert engine needs.
type AlertStore interface {
	FindUnreadAlert(ctx context.Context, productID, size, alertType string) (*models.StockAlert, error)
	InsertAlert(ctx context.Context, alert *models.StockAlert) error
}

// AlertEngine derives stock alerts from an item snapshot. Evaluation is
// idempotent: re-detecting a breach that already has an unread alert for
// the same (product, size, type) tuple writes nothing.
type AlertEngine struct {
	alerts AlertStore
	logger *zap.Logger
}

// NewAlertEngine creates a new alert engine
func NewAlertEngine(alerts AlertStore) *AlertEngine {
	return &AlertEngine{
		alerts: alerts,
		logger: util.GetLogger(),
	}
}

// classifyLevel maps one stock level onto zero or one alert. First match
// wins: out of stock beats reorder point beats low stock.
func classifyLevel(level models.StockLevel) (alertType, severity string, threshold int, ok bool) {
	switch {
	case level.CurrentStock == 0:
		return models.AlertTypeOutOfStock, models.SeverityCritical, 0, true
	case level.CurrentStock <= level.ReorderPoint:
		severity = models.SeverityMedium
		if level.CurrentStock <= level.MinStock {
			severity = models.SeverityHigh
		}
		return models.AlertTypeReorderPoint, severity, level.ReorderPoint, true
	case level.CurrentStock <= level.MinStock:
		// Only reachable when minStock > reorderPoint.
		return models.AlertTypeLowStock, models.SeverityMedium, level.MinStock, true
	default:
		return "", "", 0, false
	}
}

// Evaluate inspects every stock level of the item and persists one alert
// per newly breached threshold. Returns the alerts it created. Storage
// failures are logged and skipped; alerting is a best-effort secondary
// effect of the mutation that triggered it.
func (e *AlertEngine) Evaluate(ctx context.Context, item *models.InventoryItem) []models.StockAlert {
	var created []models.StockAlert

	for _, level := range item.StockLevels {
		alertType, severity, threshold, ok := classifyLevel(level)
		if !ok {
			continue
		}

		existing, err := e.alerts.FindUnreadAlert(ctx, item.ProductID, level.Size, alertType)
		if err != nil {
			e.logger.Error("Failed to check for existing alert",
				zap.String("product_id", item.ProductID),
				zap.String("size", level.Size),
				zap.String("alert_type", alertType),
				zap.Error(err))
			util.SecondaryEffectFailures.WithLabelValues("alert_lookup").Inc()
			continue
		}
		if existing != nil {
			continue
		}

		alert := models.StockAlert{
			ID:              uuid.New().String(),
			ProductID:       item.ProductID,
			Size:            level.Size,
			AlertType:       alertType,
			CurrentStock:    level.CurrentStock,
			Threshold:       threshold,
			Severity:        severity,
			IsRead:          false,
			InventoryItemID: item.ID,
			CreatedAt:       time.Now(),
		}

		if err := e.alerts.InsertAlert(ctx, &alert); err != nil {
			e.logger.Error("Failed to write stock alert",
				zap.String("product_id", item.ProductID),
				zap.String("size", level.Size),
				zap.String("alert_type", alertType),
				zap.Error(err))
			util.SecondaryEffectFailures.WithLabelValues("alert_write").Inc()
			continue
		}

		util.AlertsCreatedTotal.WithLabelValues(alertType).Inc()
		created = append(created, alert)
	}

	return created
}
