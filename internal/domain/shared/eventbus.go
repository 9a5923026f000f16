package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	// Publish delivers events to their handlers before returning.
	Publish(ctx context.Context, events ...DomainEvent) error
	// PublishAsync hands events to their handlers on detached goroutines.
	// Handler failures are logged by the bus and never reach the caller.
	PublishAsync(ctx context.Context, events ...DomainEvent)
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	// Subscribe registers a handler for specific event types
	// If no event types are provided, the handler receives all events
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from the subscription list
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	// Start starts the event bus
	Start(ctx context.Context) error
	// Stop waits for in-flight async handlers, bounded by ctx
	Stop(ctx context.Context) error
}
