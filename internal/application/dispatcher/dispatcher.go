// Package dispatcher routes application workflow events to their
// subscribers: the audit recorder, the notification log, and anything
// else wired in at startup.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
)

// Dispatcher fans workflow events out to registered handlers.
type Dispatcher interface {
	// Subscribe registers a handler under an auto-generated name.
	Subscribe(eventType event.Type, handler Handler)

	// SubscribeNamed registers a handler under an explicit name so it
	// can be unsubscribed or found again.
	SubscribeNamed(eventType event.Type, name string, handler Handler)

	// Unsubscribe removes the handler registered under name.
	Unsubscribe(eventType event.Type, name string)

	// Dispatch runs every handler for the event in registration order
	// and stops at the first error.
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs the handlers in goroutines without waiting.
	DispatchAsync(ctx context.Context, evt *event.Event)

	// ListHandlers returns the registrations for an event type, without
	// the handler functions.
	ListHandlers(eventType event.Type) []HandlerInfo

	// Close rejects further dispatches and waits for in-flight async
	// handlers to finish.
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type dispatcherImpl struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	logger   Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*dispatcherImpl)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *dispatcherImpl) {
		d.logger = logger
	}
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &dispatcherImpl{
		handlers: make(map[event.Type][]HandlerInfo),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *dispatcherImpl) Subscribe(eventType event.Type, handler Handler) {
	d.mu.RLock()
	name := fmt.Sprintf("handler-%d", len(d.handlers[eventType]))
	d.mu.RUnlock()

	d.SubscribeNamed(eventType, name, handler)
}

func (d *dispatcherImpl) SubscribeNamed(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})
	d.mu.Unlock()

	d.info("Handler registered", "event_type", eventType, "handler_name", name)
}

func (d *dispatcherImpl) Unsubscribe(eventType event.Type, name string) {
	d.mu.Lock()
	kept := d.handlers[eventType][:0]
	for _, h := range d.handlers[eventType] {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	d.handlers[eventType] = kept
	d.mu.Unlock()

	d.info("Handler unregistered", "event_type", eventType, "handler_name", name)
}

func (d *dispatcherImpl) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}

	for _, info := range d.handlersFor(evt.Type) {
		if err := d.runHandler(ctx, evt, info); err != nil {
			return fmt.Errorf("handler %s failed: %w", info.Name, err)
		}
	}
	return nil
}

func (d *dispatcherImpl) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		d.error("Dropping event, dispatcher is closed",
			"event_type", evt.Type, "event_id", evt.ID)
		return
	}

	for _, info := range d.handlersFor(evt.Type) {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()
			// Errors are logged inside runHandler; an async handler has
			// no caller to return them to.
			_ = d.runHandler(ctx, evt, h)
		}(info)
	}
}

func (d *dispatcherImpl) ListHandlers(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]HandlerInfo, 0, len(d.handlers[eventType]))
	for _, h := range d.handlers[eventType] {
		result = append(result, HandlerInfo{Name: h.Name, EventType: h.EventType})
	}
	return result
}

func (d *dispatcherImpl) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}

	d.wg.Wait()
	d.info("Dispatcher closed")
	return nil
}

func (d *dispatcherImpl) handlersFor(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[eventType]
}

// runHandler invokes one handler with panic recovery, so a broken
// subscriber never takes down the workflow operation that emitted the
// event.
func (d *dispatcherImpl) runHandler(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		if err != nil {
			d.error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"application_id", evt.ApplicationID,
				"handler_name", info.Name,
				"error", err,
			)
		}
	}()

	return info.Handler(ctx, evt)
}

func (d *dispatcherImpl) info(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, keysAndValues...)
	}
}

func (d *dispatcherImpl) error(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, keysAndValues...)
	}
}
