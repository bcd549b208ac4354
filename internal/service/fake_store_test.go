package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"inventory-service/internal/models"
)

// fakeStore is an in-memory Store for service tests. UpdateItem enforces
// the same optimistic version check as the Postgres store.
type fakeStore struct {
	mu        sync.Mutex
	items     map[string]models.InventoryItem
	movements []models.StockMovement
	alerts    map[string]models.StockAlert

	// fault injection
	conflictsRemaining int
	appendMovementErr  error
	insertAlertErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  make(map[string]models.InventoryItem),
		alerts: make(map[string]models.StockAlert),
	}
}

func (f *fakeStore) GetItem(_ context.Context, id string) (*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrItemNotFound, id)
	}
	copied := item
	return &copied, nil
}

func (f *fakeStore) GetItemByProduct(_ context.Context, productID string) (*models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ProductID == productID {
			copied := item
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", models.ErrItemNotFound, productID)
}

func (f *fakeStore) ListItems(_ context.Context) ([]models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]models.InventoryItem, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductName < items[j].ProductName })
	return items, nil
}

func (f *fakeStore) InsertItem(_ context.Context, item *models.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) UpdateItem(_ context.Context, item *models.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflictsRemaining > 0 {
		f.conflictsRemaining--
		return fmt.Errorf("%w: item %s", models.ErrVersionConflict, item.ID)
	}

	stored, ok := f.items[item.ID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrItemNotFound, item.ID)
	}
	if stored.Version != item.Version {
		return fmt.Errorf("%w: item %s version %d", models.ErrVersionConflict, item.ID, item.Version)
	}

	item.Version++
	f.items[item.ID] = *item
	return nil
}

func (f *fakeStore) AppendMovement(_ context.Context, m *models.StockMovement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendMovementErr != nil {
		return f.appendMovementErr
	}
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeStore) ListMovements(_ context.Context, productID string, limit int) ([]models.StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StockMovement
	for i := len(f.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if productID == "" || f.movements[i].ProductID == productID {
			out = append(out, f.movements[i])
		}
	}
	return out, nil
}

func (f *fakeStore) InsertAlert(_ context.Context, alert *models.StockAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertAlertErr != nil {
		return f.insertAlertErr
	}
	f.alerts[alert.ID] = *alert
	return nil
}

func (f *fakeStore) FindUnreadAlert(_ context.Context, productID, size, alertType string) (*models.StockAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if !alert.IsRead && alert.ProductID == productID && alert.Size == size && alert.AlertType == alertType {
			copied := alert
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAlerts(_ context.Context, includeRead bool) ([]models.StockAlert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var alerts []models.StockAlert
	for _, alert := range f.alerts {
		if includeRead || !alert.IsRead {
			alerts = append(alerts, alert)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	return alerts, nil
}

func (f *fakeStore) MarkAlertRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	alert, ok := f.alerts[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrAlertNotFound, id)
	}
	alert.IsRead = true
	f.alerts[id] = alert
	return nil
}

func (f *fakeStore) DeleteAlert(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.alerts[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrAlertNotFound, id)
	}
	delete(f.alerts, id)
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *fakePublisher) record(event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) PublishStockUpdated(_ context.Context, e *models.StockUpdatedEvent) error {
	return p.record(e)
}

func (p *fakePublisher) PublishItemAdded(_ context.Context, e *models.ItemAddedEvent) error {
	return p.record(e)
}

func (p *fakePublisher) PublishAlertCreated(_ context.Context, e *models.AlertCreatedEvent) error {
	return p.record(e)
}

func (p *fakePublisher) PublishAlertRead(_ context.Context, e *models.AlertReadEvent) error {
	return p.record(e)
}

func (p *fakePublisher) PublishAlertDeleted(_ context.Context, e *models.AlertDeletedEvent) error {
	return p.record(e)
}
