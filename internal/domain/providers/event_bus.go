package providers

import (
	"context"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to agenda change events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AgendaEvent) error

	// Subscribe subscribes to events on a channel. The returned channel is
	// closed when ctx is done or the bus is closed.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AgendaEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelAgendaChanges is the default channel agenda writers publish to
const EventChannelAgendaChanges = "agenda:changes"
