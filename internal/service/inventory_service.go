package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence surface the inventory service depends on,
// satisfied by *store.Store.
type Store interface {
	AlertStore

	GetItem(ctx context.Context, id string) (*models.InventoryItem, error)
	GetItemByProduct(ctx context.Context, productID string) (*models.InventoryItem, error)
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	InsertItem(ctx context.Context, item *models.InventoryItem) error
	UpdateItem(ctx context.Context, item *models.InventoryItem) error

	AppendMovement(ctx context.Context, m *models.StockMovement) error
	ListMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error)

	ListAlerts(ctx context.Context, includeRead bool) ([]models.StockAlert, error)
	MarkAlertRead(ctx context.Context, id string) error
	DeleteAlert(ctx context.Context, id string) error
}

// EventPublisher pushes domain events onto the bus, satisfied by
// *broker.EventPublisher. Publish failures never fail the triggering write.
type EventPublisher interface {
	PublishStockUpdated(ctx context.Context, event *models.StockUpdatedEvent) error
	PublishItemAdded(ctx context.Context, event *models.ItemAddedEvent) error
	PublishAlertCreated(ctx context.Context, event *models.AlertCreatedEvent) error
	PublishAlertRead(ctx context.Context, event *models.AlertReadEvent) error
	PublishAlertDeleted(ctx context.Context, event *models.AlertDeletedEvent) error
}

// SnapshotCache is the read-side cache for full item listings, satisfied
// by *redisclient.Client. May be nil; all use is best-effort.
type SnapshotCache interface {
	GetCachedItems(ctx context.Context) ([]models.InventoryItem, bool, error)
	CacheItems(ctx context.Context, items []models.InventoryItem) error
}

// InventoryService orchestrates stock mutations: validate, recompute
// aggregates and status, persist, append the ledger entry, run the alert
// engine and publish events.
type InventoryService struct {
	store         Store
	alertEngine   *AlertEngine
	publisher     EventPublisher
	cache         SnapshotCache
	maxRetries    int
	movementLimit int
	logger        *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store Store, publisher EventPublisher, cache SnapshotCache, maxRetries, movementLimit int) *InventoryService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if movementLimit < 1 {
		movementLimit = DefaultMovementLimit
	}
	return &InventoryService{
		store:         store,
		alertEngine:   NewAlertEngine(store),
		publisher:     publisher,
		cache:         cache,
		maxRetries:    maxRetries,
		movementLimit: movementLimit,
		logger:        util.GetLogger(),
	}
}

// UpdateStockRequest carries one stock mutation.
type UpdateStockRequest struct {
	Size     string `json:"size" binding:"required"`
	NewStock int    `json:"new_stock"`
	Reason   string `json:"reason" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
}

// UpdateStock sets the stock of one size on one item and derives everything
// that follows from it. The read-compute-write sequence is guarded by the
// item version and retried as a whole on conflict. The ledger append and
// alert evaluation are best-effort: their failure is logged and counted but
// the caller is still told the stock update succeeded.
func (s *InventoryService) UpdateStock(ctx context.Context, inventoryID string, req *UpdateStockRequest) (*models.InventoryItem, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.UpdateStock")
	defer span.End()

	if err := validateUpdateStock(inventoryID, req); err != nil {
		util.StockUpdatesTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}

	start := time.Now()
	defer func() {
		util.StockUpdateLatency.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		item, prev, err := s.tryUpdateStock(ctx, inventoryID, req)
		if errors.Is(err, models.ErrVersionConflict) {
			util.StockUpdateConflicts.Inc()
			s.logger.Warn("Stock update lost the version race, retrying",
				zap.String("inventory_id", inventoryID),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		if err != nil {
			util.StockUpdatesTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		util.StockUpdatesTotal.WithLabelValues("ok").Inc()
		s.logger.Info("Stock updated",
			zap.String("inventory_id", item.ID),
			zap.String("size", req.Size),
			zap.Int("previous_stock", prev),
			zap.Int("new_stock", req.NewStock),
			zap.String("status", item.Status))

		s.recordMovement(ctx, item, req, prev)
		s.evaluateAlerts(ctx, item)
		s.publishStockUpdated(ctx, item, req, prev)

		return item, nil
	}

	util.StockUpdatesTotal.WithLabelValues("conflict").Inc()
	return nil, fmt.Errorf("stock update failed after %d attempts: %w", s.maxRetries, lastErr)
}

// tryUpdateStock runs one attempt of the read-compute-write sequence and
// reports the previous stock of the mutated size.
func (s *InventoryService) tryUpdateStock(ctx context.Context, inventoryID string, req *UpdateStockRequest) (*models.InventoryItem, int, error) {
	item, err := s.store.GetItem(ctx, inventoryID)
	if err != nil {
		return nil, 0, err
	}

	level := item.LevelBySize(req.Size)
	if level == nil {
		return nil, 0, fmt.Errorf("%w: %q on item %s", models.ErrSizeNotFound, req.Size, inventoryID)
	}

	now := time.Now()
	prev := level.CurrentStock
	level.CurrentStock = req.NewStock
	level.LastRestocked = now

	item.TotalStock, item.TotalValue = ComputeTotals(item.StockLevels)
	if item.Status != models.StatusDiscontinued {
		item.Status = ComputeStatus(item.StockLevels)
	}
	item.LastUpdated = now

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, 0, err
	}
	return item, prev, nil
}

func validateUpdateStock(inventoryID string, req *UpdateStockRequest) error {
	switch {
	case inventoryID == "":
		return models.NewValidationError("inventory_id", "must not be empty")
	case req.Size == "":
		return models.NewValidationError("size", "must not be empty")
	case req.NewStock < 0:
		return models.NewValidationError("new_stock", "must not be negative")
	case req.Reason == "":
		return models.NewValidationError("reason", "must not be empty")
	case req.UserID == "":
		return models.NewValidationError("user_id", "must not be empty")
	}
	return nil
}

// recordMovement appends the ledger entry for a committed mutation.
func (s *InventoryService) recordMovement(ctx context.Context, item *models.InventoryItem, req *UpdateStockRequest, prev int) {
	delta := req.NewStock - prev
	quantity := delta
	if quantity < 0 {
		quantity = -quantity
	}

	movement := &models.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     item.ProductID,
		Size:          req.Size,
		MovementType:  models.MovementTypeForDelta(delta),
		Quantity:      quantity,
		PreviousStock: prev,
		NewStock:      req.NewStock,
		Reason:        req.Reason,
		UserID:        req.UserID,
		CreatedAt:     time.Now(),
	}

	if err := s.store.AppendMovement(ctx, movement); err != nil {
		s.logger.Error("Failed to append stock movement",
			zap.String("inventory_id", item.ID),
			zap.String("size", req.Size),
			zap.Error(err))
		util.SecondaryEffectFailures.WithLabelValues("ledger_append").Inc()
		return
	}
	util.MovementsAppendedTotal.Inc()
}

func (s *InventoryService) evaluateAlerts(ctx context.Context, item *models.InventoryItem) {
	for _, alert := range s.alertEngine.Evaluate(ctx, item) {
		event := &models.AlertCreatedEvent{
			BaseEvent:       newBaseEvent(models.EventTypeAlertCreated),
			AlertID:         alert.ID,
			InventoryItemID: alert.InventoryItemID,
			ProductID:       alert.ProductID,
			Size:            alert.Size,
			AlertType:       alert.AlertType,
			Severity:        alert.Severity,
		}
		if err := s.publisher.PublishAlertCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish AlertCreated event", zap.Error(err))
		}
	}
}

func (s *InventoryService) publishStockUpdated(ctx context.Context, item *models.InventoryItem, req *UpdateStockRequest, prev int) {
	event := &models.StockUpdatedEvent{
		BaseEvent:       newBaseEvent(models.EventTypeStockUpdated),
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		Size:            req.Size,
		PreviousStock:   prev,
		NewStock:        req.NewStock,
		Status:          item.Status,
		UserID:          req.UserID,
	}
	if err := s.publisher.PublishStockUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockUpdated event", zap.Error(err))
	}
}

// AddInventoryItem seeds a new item. Aggregates and status are derived
// from the supplied levels before the insert; thresholds breached at seed
// time produce alerts immediately.
func (s *InventoryService) AddInventoryItem(ctx context.Context, item *models.InventoryItem) (string, error) {
	if err := validateNewItem(item); err != nil {
		return "", err
	}

	now := time.Now()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.TotalStock, item.TotalValue = ComputeTotals(item.StockLevels)
	if item.Status != models.StatusDiscontinued {
		item.Status = ComputeStatus(item.StockLevels)
	}
	item.Version = 0
	item.CreatedAt = now
	item.LastUpdated = now

	if err := s.store.InsertItem(ctx, item); err != nil {
		return "", err
	}

	s.logger.Info("Inventory item added",
		zap.String("inventory_id", item.ID),
		zap.String("product_id", item.ProductID),
		zap.String("status", item.Status))

	s.evaluateAlerts(ctx, item)

	event := &models.ItemAddedEvent{
		BaseEvent:       newBaseEvent(models.EventTypeItemAdded),
		InventoryItemID: item.ID,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
	}
	if err := s.publisher.PublishItemAdded(ctx, event); err != nil {
		s.logger.Error("Failed to publish ItemAdded event", zap.Error(err))
	}

	return item.ID, nil
}

func validateNewItem(item *models.InventoryItem) error {
	switch {
	case item.ProductID == "":
		return models.NewValidationError("product_id", "must not be empty")
	case item.ProductName == "":
		return models.NewValidationError("product_name", "must not be empty")
	case item.ProductType != models.ProductTypeCoffee && item.ProductType != models.ProductTypeBean:
		return models.NewValidationError("product_type", "must be Coffee or Bean")
	case item.SKU == "":
		return models.NewValidationError("sku", "must not be empty")
	case len(item.StockLevels) == 0:
		return models.NewValidationError("stock_levels", "must not be empty")
	}

	seen := make(map[string]bool, len(item.StockLevels))
	for _, level := range item.StockLevels {
		if level.Size == "" {
			return models.NewValidationError("stock_levels", "size must not be empty")
		}
		if seen[level.Size] {
			return models.NewValidationError("stock_levels", fmt.Sprintf("duplicate size %q", level.Size))
		}
		seen[level.Size] = true
		if level.CurrentStock < 0 {
			return models.NewValidationError("stock_levels", "current stock must not be negative")
		}
		if level.Cost < 0 {
			return models.NewValidationError("stock_levels", "cost must not be negative")
		}
	}
	return nil
}

// FetchItems returns the full item list, preferring the read-side cache
// when one is wired in. Cache errors degrade to a direct store read.
func (s *InventoryService) FetchItems(ctx context.Context) ([]models.InventoryItem, error) {
	if s.cache != nil {
		items, hit, err := s.cache.GetCachedItems(ctx)
		if err != nil {
			s.logger.Warn("Snapshot cache read failed", zap.Error(err))
		} else if hit {
			util.SnapshotCacheHits.Inc()
			return items, nil
		}
		util.SnapshotCacheMisses.Inc()
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheItems(ctx, items); err != nil {
			s.logger.Warn("Snapshot cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// FetchItemByProduct returns the item owning the given product.
func (s *InventoryService) FetchItemByProduct(ctx context.Context, productID string) (*models.InventoryItem, error) {
	if productID == "" {
		return nil, models.NewValidationError("product_id", "must not be empty")
	}
	return s.store.GetItemByProduct(ctx, productID)
}

// FetchAlerts lists alerts newest first, unread only unless includeRead.
func (s *InventoryService) FetchAlerts(ctx context.Context, includeRead bool) ([]models.StockAlert, error) {
	return s.store.ListAlerts(ctx, includeRead)
}

// MarkAlertRead flips an alert to read.
func (s *InventoryService) MarkAlertRead(ctx context.Context, alertID string) error {
	if err := s.store.MarkAlertRead(ctx, alertID); err != nil {
		return err
	}

	event := &models.AlertReadEvent{
		BaseEvent: newBaseEvent(models.EventTypeAlertRead),
		AlertID:   alertID,
	}
	if err := s.publisher.PublishAlertRead(ctx, event); err != nil {
		s.logger.Error("Failed to publish AlertRead event", zap.Error(err))
	}
	return nil
}

// DeleteAlert permanently removes an alert.
func (s *InventoryService) DeleteAlert(ctx context.Context, alertID string) error {
	if err := s.store.DeleteAlert(ctx, alertID); err != nil {
		return err
	}

	event := &models.AlertDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeAlertDeleted),
		AlertID:   alertID,
	}
	if err := s.publisher.PublishAlertDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish AlertDeleted event", zap.Error(err))
	}
	return nil
}

// FetchMovements lists ledger entries most recent first.
func (s *InventoryService) FetchMovements(ctx context.Context, productID string, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = s.movementLimit
	}
	return s.store.ListMovements(ctx, productID, limit)
}

// DefaultMovementLimit caps a movement query when the caller does not.
const DefaultMovementLimit = 50

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
