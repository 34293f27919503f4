package dispatcher

import (
	"context"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
)

// Handler processes workflow events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
