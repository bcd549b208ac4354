package store

import (
	"context"
	"database/sql"
	"fmt"

	"inventory-service/internal/models"
)

// InsertAlert creates a new stock alert
func (s *Store) InsertAlert(ctx context.Context, alert *models.StockAlert) error {
	query := `
		INSERT INTO stock_alerts
			(id, product_id, size, alert_type, current_stock, threshold,
			 severity, is_read, inventory_item_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		alert.ID, alert.ProductID, alert.Size, alert.AlertType,
		alert.CurrentStock, alert.Threshold, alert.Severity,
		alert.IsRead, alert.InventoryItemID, alert.CreatedAt)
	if err != nil {
		return storeErr("insert alert", err)
	}
	return nil
}

// FindUnreadAlert looks up the unread alert for a (product, size, type)
// tuple. Returns nil without error when none exists.
func (s *Store) FindUnreadAlert(ctx context.Context, productID, size, alertType string) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := s.db.GetContext(ctx, &alert, `
		SELECT * FROM stock_alerts
		WHERE product_id = $1 AND size = $2 AND alert_type = $3 AND is_read = false
		LIMIT 1`,
		productID, size, alertType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find unread alert", err)
	}
	return &alert, nil
}

// ListAlerts retrieves alerts newest first. With includeRead false only
// unread alerts are returned.
func (s *Store) ListAlerts(ctx context.Context, includeRead bool) ([]models.StockAlert, error) {
	query := "SELECT * FROM stock_alerts ORDER BY created_at DESC"
	if !includeRead {
		query = "SELECT * FROM stock_alerts WHERE is_read = false ORDER BY created_at DESC"
	}

	var alerts []models.StockAlert
	if err := s.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, storeErr("list alerts", err)
	}
	if alerts == nil {
		alerts = []models.StockAlert{}
	}
	return alerts, nil
}

// MarkAlertRead flips is_read on an alert; no other field changes.
func (s *Store) MarkAlertRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE stock_alerts SET is_read = true WHERE id = $1", id)
	if err != nil {
		return storeErr("mark alert read", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return storeErr("mark alert read", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrAlertNotFound, id)
	}
	return nil
}

// DeleteAlert permanently removes an alert
func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM stock_alerts WHERE id = $1", id)
	if err != nil {
		return storeErr("delete alert", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete alert", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", models.ErrAlertNotFound, id)
	}
	return nil
}
