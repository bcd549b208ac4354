package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// storeErr wraps a driver failure so callers can classify it as transient.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
}

// GetItem retrieves an inventory item by ID
func (s *Store) GetItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get item", err)
	}
	return &item, nil
}

// GetItemByProduct retrieves the inventory item for a product
func (s *Store) GetItemByProduct(ctx context.Context, productID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE product_id = $1", productID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %s", models.ErrItemNotFound, productID)
	}
	if err != nil {
		return nil, storeErr("get item by product", err)
	}
	return &item, nil
}

// ListItems retrieves all inventory items, sorted by product name for a
// deterministic listing.
func (s *Store) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := s.db.SelectContext(ctx, &items, "SELECT * FROM inventory_items ORDER BY product_name")
	if err != nil {
		return nil, storeErr("list items", err)
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return items, nil
}

// InsertItem creates a new inventory item
func (s *Store) InsertItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items
			(id, product_id, product_name, product_type, sku, stock_levels,
			 total_stock, total_value, status, supplier, location, notes,
			 version, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.ProductID, item.ProductName, item.ProductType, item.SKU,
		item.StockLevels, item.TotalStock, item.TotalValue, item.Status,
		item.Supplier, item.Location, item.Notes, item.Version,
		item.CreatedAt, item.LastUpdated)
	if err != nil {
		return storeErr("insert item", err)
	}
	return nil
}

// UpdateItem persists an item with an optimistic version check. The write
// only lands if the stored version still matches the version the caller
// read; otherwise ErrVersionConflict is returned and the caller must
// re-read and retry.
func (s *Store) UpdateItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET stock_levels = $1, total_stock = $2, total_value = $3, status = $4,
		    supplier = $5, location = $6, notes = $7,
		    version = version + 1, last_updated = $8
		WHERE id = $9 AND version = $10`

	res, err := s.db.ExecContext(ctx, query,
		item.StockLevels, item.TotalStock, item.TotalValue, item.Status,
		item.Supplier, item.Location, item.Notes, item.LastUpdated,
		item.ID, item.Version)
	if err != nil {
		return storeErr("update item", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return storeErr("update item", err)
	}
	if rows == 0 {
		// Either the row vanished or someone else won the write.
		if _, getErr := s.GetItem(ctx, item.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: item %s version %d", models.ErrVersionConflict, item.ID, item.Version)
	}

	item.Version++
	return nil
}
