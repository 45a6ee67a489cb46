// Package events carries the session notices and the coordination glue
// between the monitor, the refresh coordinator, and draft persistence.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Handler handles a published event.
type Handler func(context.Context, Event) error

// Dispatcher publishes events to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler Handler)
}

// inMemoryDispatcher invokes handlers synchronously in subscription
// order. A failing handler never prevents the remaining handlers from
// running; an uncaught error inside a timer-driven publisher must not
// kill the publisher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]Handler
	log       zerolog.Logger
}

// NewInMemoryDispatcher creates a synchronous dispatcher.
func NewInMemoryDispatcher(log zerolog.Logger) Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]Handler),
		log:       log,
	}
}

func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]Handler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.log.Error().Err(err).Str("event", string(event.Type)).Msg("event handler failed")
		}
	}
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
