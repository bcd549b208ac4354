package store

import (
	"context"

	"inventory-service/internal/models"
)

// AppendMovement writes one ledger entry. The ledger is append-only; there
// is no update or delete.
func (s *Store) AppendMovement(ctx context.Context, m *models.StockMovement) error {
	query := `
		INSERT INTO stock_movements
			(id, product_id, size, movement_type, quantity, previous_stock,
			 new_stock, reason, reference, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.ProductID, m.Size, m.MovementType, m.Quantity,
		m.PreviousStock, m.NewStock, m.Reason, m.Reference,
		m.UserID, m.CreatedAt)
	if err != nil {
		return storeErr("append movement", err)
	}
	return nil
}

// ListMovements retrieves movements most recent first, optionally filtered
// by product, capped at limit.
func (s *Store) ListMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	var err error

	if productID != "" {
		err = s.db.SelectContext(ctx, &movements, `
			SELECT * FROM stock_movements
			WHERE product_id = $1
			ORDER BY created_at DESC
			LIMIT $2`,
			productID, limit)
	} else {
		err = s.db.SelectContext(ctx, &movements, `
			SELECT * FROM stock_movements
			ORDER BY created_at DESC
			LIMIT $1`,
			limit)
	}
	if err != nil {
		return nil, storeErr("list movements", err)
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	return movements, nil
}
