package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/boutique/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub.
// PublishAsync runs handlers on detached goroutines that Stop waits for.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("event_bus"),
	}
}

// Publish delivers events to all registered handlers synchronously.
// Handler failures are logged and do not stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.dispatch(ctx, handler, event)
		}
	}
	return nil
}

// PublishAsync delivers every (event, handler) pair on its own goroutine. The handler
// context keeps the caller's values but is never cancelled with it, so a finished
// HTTP request does not abort its side effects.
func (b *InMemoryEventBus) PublishAsync(ctx context.Context, events ...shared.DomainEvent) {
	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.wg.Add(1)
			go func(h shared.EventHandler, e shared.DomainEvent) {
				defer b.wg.Done()
				b.dispatch(detached, h, e)
			}(handler, event)
		}
	}
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop waits for in-flight async handlers or for ctx to end, whichever comes first
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped with handlers still running")
		return ctx.Err()
	}
}

// dispatch runs one handler, logging its error or panic
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.Int64("order_id", event.AggregateID()),
		zap.String("handler", fmt.Sprintf("%T", handler)),
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				append(fields, zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))...,
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("handler failed to process event", append(fields, zap.Error(err))...)
	}
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
