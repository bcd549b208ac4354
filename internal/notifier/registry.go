// Package notifier fans full-state snapshots of the item and alert sets
// out to registered subscribers. Each callback receives the complete
// current list, never a diff; consumers treat every delivery as a full
// state replacement. Unread filtering is the consumer's job.
package notifier

import (
	"sync"

	"inventory-service/internal/models"
	"inventory-service/internal/util"
)

// ItemsCallback receives the complete current item list.
type ItemsCallback func(items []models.InventoryItem)

// AlertsCallback receives the complete current alert list.
type AlertsCallback func(alerts []models.StockAlert)

// Registry is the subscription registry behind subscribeToInventory and
// subscribeToStockAlerts. Callbacks run synchronously on the publishing
// goroutine in registration order.
type Registry struct {
	mu         sync.Mutex
	nextID     int
	itemSubs   map[int]ItemsCallback
	alertSubs  map[int]AlertsCallback
	lastItems  []models.InventoryItem
	lastAlerts []models.StockAlert
	hasItems   bool
	hasAlerts  bool
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		itemSubs:  make(map[int]ItemsCallback),
		alertSubs: make(map[int]AlertsCallback),
	}
}

// SubscribeItems registers cb for item snapshots and returns its
// unsubscribe func. If a snapshot has already been published the callback
// is invoked immediately with the current state.
func (r *Registry) SubscribeItems(cb ItemsCallback) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.itemSubs[id] = cb
	replay := r.hasItems
	snapshot := r.lastItems
	r.mu.Unlock()

	if replay {
		cb(snapshot)
	}

	return func() {
		r.mu.Lock()
		delete(r.itemSubs, id)
		r.mu.Unlock()
	}
}

// SubscribeAlerts registers cb for alert snapshots and returns its
// unsubscribe func.
func (r *Registry) SubscribeAlerts(cb AlertsCallback) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.alertSubs[id] = cb
	replay := r.hasAlerts
	snapshot := r.lastAlerts
	r.mu.Unlock()

	if replay {
		cb(snapshot)
	}

	return func() {
		r.mu.Lock()
		delete(r.alertSubs, id)
		r.mu.Unlock()
	}
}

// PublishItems delivers a fresh item snapshot to every item subscriber.
func (r *Registry) PublishItems(items []models.InventoryItem) {
	r.mu.Lock()
	r.lastItems = items
	r.hasItems = true
	subs := make([]ItemsCallback, 0, len(r.itemSubs))
	for _, cb := range r.itemSubs {
		subs = append(subs, cb)
	}
	r.mu.Unlock()

	for _, cb := range subs {
		cb(items)
	}
	util.SnapshotsPushedTotal.WithLabelValues("items").Add(float64(len(subs)))
}

// PublishAlerts delivers a fresh alert snapshot to every alert subscriber.
func (r *Registry) PublishAlerts(alerts []models.StockAlert) {
	r.mu.Lock()
	r.lastAlerts = alerts
	r.hasAlerts = true
	subs := make([]AlertsCallback, 0, len(r.alertSubs))
	for _, cb := range r.alertSubs {
		subs = append(subs, cb)
	}
	r.mu.Unlock()

	for _, cb := range subs {
		cb(alerts)
	}
	util.SnapshotsPushedTotal.WithLabelValues("alerts").Add(float64(len(subs)))
}
