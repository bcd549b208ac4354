package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"inventory-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing inventory domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishStockUpdated publishes a StockUpdated event
func (ep *EventPublisher) PublishStockUpdated(ctx context.Context, event *models.StockUpdatedEvent) error {
	key := fmt.Sprintf("item-%s", event.InventoryItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishItemAdded publishes an ItemAdded event
func (ep *EventPublisher) PublishItemAdded(ctx context.Context, event *models.ItemAddedEvent) error {
	key := fmt.Sprintf("item-%s", event.InventoryItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAlertCreated publishes an AlertCreated event
func (ep *EventPublisher) PublishAlertCreated(ctx context.Context, event *models.AlertCreatedEvent) error {
	key := fmt.Sprintf("alert-%s", event.AlertID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAlertRead publishes an AlertRead event
func (ep *EventPublisher) PublishAlertRead(ctx context.Context, event *models.AlertReadEvent) error {
	key := fmt.Sprintf("alert-%s", event.AlertID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAlertDeleted publishes an AlertDeleted event
func (ep *EventPublisher) PublishAlertDeleted(ctx context.Context, event *models.AlertDeletedEvent) error {
	key := fmt.Sprintf("alert-%s", event.AlertID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onInventoryChanged func(context.Context, *models.BaseEvent) error
	onAlertsChanged    func(context.Context, *models.BaseEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnInventoryChanged registers a handler for events that change the item set
func (eh *EventHandler) OnInventoryChanged(handler func(context.Context, *models.BaseEvent) error) {
	eh.onInventoryChanged = handler
}

// OnAlertsChanged registers a handler for events that change the alert set
func (eh *EventHandler) OnAlertsChanged(handler func(context.Context, *models.BaseEvent) error) {
	eh.onAlertsChanged = handler
}

// HandleMessage routes messages to appropriate handlers. A stock update can
// also create alerts, but those arrive as their own AlertCreated events, so
// each message touches exactly one of the two read sides.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeStockUpdated, models.EventTypeItemAdded:
		if eh.onInventoryChanged != nil {
			return eh.onInventoryChanged(ctx, &baseEvent)
		}

	case models.EventTypeAlertCreated, models.EventTypeAlertRead, models.EventTypeAlertDeleted:
		if eh.onAlertsChanged != nil {
			return eh.onAlertsChanged(ctx, &baseEvent)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
