// Package testutil provides helpers shared by the storefront integration tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/boutique/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RecordingHandler is an event handler that keeps every event it receives
type RecordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingHandler creates a handler subscribed to eventTypes; none means all events
func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{eventTypes: eventTypes}
}

// EventTypes implements shared.EventHandler
func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle implements shared.EventHandler
func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// SetError makes subsequent Handle calls fail with err
func (h *RecordingHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Handled returns a copy of the received events
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// Count returns the number of received events of eventType
func (h *RecordingHandler) Count(eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.handled {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// ContextWithTimeout returns a context cancelled when the test ends or after timeout
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually fails the test immediately if condition does not hold within timeout
func RequireEventually(t *testing.T, condition func() bool, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, condition, timeout, 10*time.Millisecond, msgAndArgs...)
}

// AssertNever asserts that condition stays false for the whole duration
func AssertNever(t *testing.T, condition func() bool, duration time.Duration, msgAndArgs ...any) bool {
	t.Helper()
	return assert.Never(t, condition, duration, 10*time.Millisecond, msgAndArgs...)
}
