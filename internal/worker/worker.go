package worker

import (
	"context"
	"log"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/notifier"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/service"
)

// SnapshotWorker realizes the live-query read side: it consumes inventory
// events from the bus, re-reads the full item or alert list, refreshes the
// Redis snapshot cache and pushes the new full state through the notifier
// registry.
type SnapshotWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        service.Store
	cache        *redisclient.Client
	registry     *notifier.Registry
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(
	consumer *broker.Consumer,
	store service.Store,
	cache *redisclient.Client,
	registry *notifier.Registry,
) *SnapshotWorker {
	w := &SnapshotWorker{
		consumer: consumer,
		store:    store,
		cache:    cache,
		registry: registry,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnInventoryChanged(w.refreshItems)
	eventHandler.OnAlertsChanged(w.refreshAlerts)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *SnapshotWorker) Start(ctx context.Context) error {
	log.Println("Starting snapshot worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SnapshotWorker) Stop() error {
	log.Println("Stopping snapshot worker...")
	return w.consumer.Close()
}

func (w *SnapshotWorker) refreshItems(ctx context.Context, _ *models.BaseEvent) error {
	items, err := w.store.ListItems(ctx)
	if err != nil {
		return err
	}

	if w.cache != nil {
		if err := w.cache.CacheItems(ctx, items); err != nil {
			log.Printf("Failed to refresh item snapshot cache: %v", err)
		}
	}

	w.registry.PublishItems(items)
	return nil
}

// refreshAlerts pushes the full alert list, read and unread. Subscribers
// filter unread on their side of the boundary.
func (w *SnapshotWorker) refreshAlerts(ctx context.Context, _ *models.BaseEvent) error {
	alerts, err := w.store.ListAlerts(ctx, true)
	if err != nil {
		return err
	}

	w.registry.PublishAlerts(alerts)
	return nil
}
