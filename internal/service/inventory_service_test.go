package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, store *fakeStore, levels ...models.StockLevel) *models.InventoryItem {
	t.Helper()

	item := models.InventoryItem{
		ID:          "item-1",
		ProductID:   "prod-1",
		ProductName: "House Blend",
		ProductType: models.ProductTypeCoffee,
		SKU:         "HB-001",
		StockLevels: levels,
		Supplier:    "Roastery North",
		Location:    "Shelf A",
		CreatedAt:   time.Now(),
		LastUpdated: time.Now(),
	}
	item.TotalStock, item.TotalValue = ComputeTotals(item.StockLevels)
	item.Status = ComputeStatus(item.StockLevels)

	require.NoError(t, store.InsertItem(context.Background(), &item))
	return &item
}

func mediumLevel() models.StockLevel {
	return models.StockLevel{
		Size:         "M",
		CurrentStock: 10,
		MinStock:     5,
		MaxStock:     50,
		ReorderPoint: 3,
		Cost:         2.00,
	}
}

func newTestService(store *fakeStore) (*InventoryService, *fakePublisher) {
	pub := &fakePublisher{}
	return NewInventoryService(store, pub, nil, 3, 0), pub
}

func updateReq(size string, newStock int) *UpdateStockRequest {
	return &UpdateStockRequest{
		Size:     size,
		NewStock: newStock,
		Reason:   "cycle count",
		UserID:   "user-1",
	}
}

func TestUpdateStockDropBelowReorderPoint(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 2))
	require.NoError(t, err)

	level := item.LevelBySize("M")
	require.NotNil(t, level)
	assert.Equal(t, 2, level.CurrentStock)
	assert.Equal(t, models.StatusLowStock, item.Status)
	assert.Equal(t, 2, item.TotalStock)
	assert.InDelta(t, 4.00, item.TotalValue, 1e-9)

	movements, err := svc.FetchMovements(context.Background(), "prod-1", 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementTypeOut, movements[0].MovementType)
	assert.Equal(t, 8, movements[0].Quantity)
	assert.Equal(t, 10, movements[0].PreviousStock)
	assert.Equal(t, 2, movements[0].NewStock)

	alerts, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeReorderPoint, alerts[0].AlertType)
	// 2 is at or below minStock 5, so the reorder alert escalates to high.
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 3, alerts[0].Threshold)
	assert.False(t, alerts[0].IsRead)
}

func TestUpdateStockToZeroDeduplicatesAlert(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutOfStock, item.Status)

	alerts, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeOutOfStock, alerts[0].AlertType)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
	assert.Equal(t, 0, alerts[0].Threshold)

	// Re-detecting the same breach must not create a second unread alert.
	_, err = svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)

	alerts, err = svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestUpdateStockIdempotentNoOp(t *testing.T) {
	store := newFakeStore()
	seeded := seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 10))
	require.NoError(t, err)
	assert.Equal(t, seeded.Status, item.Status)

	movements, err := svc.FetchMovements(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementTypeAdjustment, movements[0].MovementType)
	assert.Equal(t, 0, movements[0].Quantity)
}

func TestUpdateStockAggregateInvariant(t *testing.T) {
	store := newFakeStore()
	large := models.StockLevel{Size: "L", CurrentStock: 7, MinStock: 2, MaxStock: 40, ReorderPoint: 4, Cost: 3.50}
	seedItem(t, store, mediumLevel(), large)
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("L", 20))
	require.NoError(t, err)

	wantStock := 0
	wantValue := 0.0
	for _, level := range item.StockLevels {
		wantStock += level.CurrentStock
		wantValue += float64(level.CurrentStock) * level.Cost
	}
	assert.Equal(t, wantStock, item.TotalStock)
	assert.InDelta(t, wantValue, item.TotalValue, 1e-9)
}

func TestUpdateStockStatusPrecedence(t *testing.T) {
	store := newFakeStore()
	healthy := models.StockLevel{Size: "L", CurrentStock: 30, MinStock: 2, MaxStock: 40, ReorderPoint: 4, Cost: 3.50}
	seedItem(t, store, mediumLevel(), healthy)
	svc, _ := newTestService(store)

	// One empty size outranks every healthy one.
	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutOfStock, item.Status)
}

func TestUpdateStockValidation(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	req := updateReq("M", -1)
	_, err := svc.UpdateStock(context.Background(), "item-1", req)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	// Fail-fast: nothing was written.
	movements, merr := svc.FetchMovements(context.Background(), "", 10)
	require.NoError(t, merr)
	assert.Empty(t, movements)

	item, gerr := store.GetItem(context.Background(), "item-1")
	require.NoError(t, gerr)
	assert.Equal(t, 10, item.LevelBySize("M").CurrentStock)
}

func TestUpdateStockItemNotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "missing", updateReq("M", 5))
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestUpdateStockSizeNotFound(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("XL", 5))
	assert.ErrorIs(t, err, models.ErrSizeNotFound)
}

func TestUpdateStockRetriesOnVersionConflict(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	store.conflictsRemaining = 1
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 8))
	require.NoError(t, err)
	assert.Equal(t, 8, item.LevelBySize("M").CurrentStock)

	// Exactly one movement despite the retried attempt.
	movements, err := svc.FetchMovements(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestUpdateStockConflictExhaustsRetries(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	store.conflictsRemaining = 10
	svc, _ := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 8))
	assert.ErrorIs(t, err, models.ErrVersionConflict)
}

func TestUpdateStockLedgerFailureDoesNotFailMutation(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	store.appendMovementErr = errors.New("ledger write timed out")
	svc, _ := newTestService(store)

	item, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 4))
	require.NoError(t, err)
	assert.Equal(t, 4, item.LevelBySize("M").CurrentStock)

	movements, merr := svc.FetchMovements(context.Background(), "", 10)
	require.NoError(t, merr)
	assert.Empty(t, movements)
}

func TestUpdateStockPreservesDiscontinued(t *testing.T) {
	store := newFakeStore()
	item := seedItem(t, store, mediumLevel())
	item.Status = models.StatusDiscontinued
	require.NoError(t, store.UpdateItem(context.Background(), item))
	svc, _ := newTestService(store)

	updated, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDiscontinued, updated.Status)
}

func TestAlertReadLifecycle(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)

	alerts, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.NoError(t, svc.MarkAlertRead(context.Background(), alerts[0].ID))

	unread, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.FetchAlerts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRead)
}

func TestDeleteAlert(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 0))
	require.NoError(t, err)

	alerts, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	require.NoError(t, svc.DeleteAlert(context.Background(), alerts[0].ID))

	all, err := svc.FetchAlerts(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = svc.DeleteAlert(context.Background(), alerts[0].ID)
	assert.ErrorIs(t, err, models.ErrAlertNotFound)
}

func TestAddInventoryItemDerivesFields(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	item := &models.InventoryItem{
		ProductID:   "prod-2",
		ProductName: "Single Origin Beans",
		ProductType: models.ProductTypeBean,
		SKU:         "SO-250",
		StockLevels: models.StockLevels{
			{Size: "250g", CurrentStock: 12, MinStock: 4, MaxStock: 60, ReorderPoint: 6, Cost: 8.50},
			{Size: "1kg", CurrentStock: 3, MinStock: 1, MaxStock: 20, ReorderPoint: 4, Cost: 30.00},
		},
		Supplier: "Roastery North",
		Location: "Shelf B",
	}

	id, err := svc.AddInventoryItem(context.Background(), item)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := store.GetItem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 15, stored.TotalStock)
	assert.InDelta(t, 12*8.50+3*30.00, stored.TotalValue, 1e-9)
	// 1kg is at its reorder point, so the seed lands as low stock.
	assert.Equal(t, models.StatusLowStock, stored.Status)

	alerts, err := svc.FetchAlerts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeReorderPoint, alerts[0].AlertType)
	assert.Equal(t, "1kg", alerts[0].Size)
}

func TestAddInventoryItemValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	cases := []struct {
		name string
		item *models.InventoryItem
	}{
		{"missing product id", &models.InventoryItem{ProductName: "X", ProductType: models.ProductTypeBean, SKU: "S", StockLevels: models.StockLevels{{Size: "M"}}}},
		{"bad product type", &models.InventoryItem{ProductID: "p", ProductName: "X", ProductType: "Tea", SKU: "S", StockLevels: models.StockLevels{{Size: "M"}}}},
		{"no levels", &models.InventoryItem{ProductID: "p", ProductName: "X", ProductType: models.ProductTypeBean, SKU: "S"}},
		{"duplicate size", &models.InventoryItem{ProductID: "p", ProductName: "X", ProductType: models.ProductTypeBean, SKU: "S",
			StockLevels: models.StockLevels{{Size: "M"}, {Size: "M"}}}},
		{"negative stock", &models.InventoryItem{ProductID: "p", ProductName: "X", ProductType: models.ProductTypeBean, SKU: "S",
			StockLevels: models.StockLevels{{Size: "M", CurrentStock: -1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddInventoryItem(context.Background(), tc.item)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
		})
	}
}

func TestFetchItemByProduct(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	item, err := svc.FetchItemByProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)

	_, err = svc.FetchItemByProduct(context.Background(), "prod-404")
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestFetchMovementsDefaultLimit(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, _ := newTestService(store)

	for i := 0; i < 3; i++ {
		_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 10+i))
		require.NoError(t, err)
	}

	movements, err := svc.FetchMovements(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, movements, 3)

	limited, err := svc.FetchMovements(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpdateStockPublishesEvent(t *testing.T) {
	store := newFakeStore()
	seedItem(t, store, mediumLevel())
	svc, pub := newTestService(store)

	_, err := svc.UpdateStock(context.Background(), "item-1", updateReq("M", 2))
	require.NoError(t, err)

	var sawStockUpdated, sawAlertCreated bool
	for _, event := range pub.events {
		switch e := event.(type) {
		case *models.StockUpdatedEvent:
			sawStockUpdated = true
			assert.Equal(t, 10, e.PreviousStock)
			assert.Equal(t, 2, e.NewStock)
		case *models.AlertCreatedEvent:
			sawAlertCreated = true
		}
	}
	assert.True(t, sawStockUpdated)
	assert.True(t, sawAlertCreated)
}
