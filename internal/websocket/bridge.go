package websocket

import (
	"context"

	"github.com/lemonqwest/lemonqwest/internal/events"
)

// Bridge forwards domain events from the bus to all connected clients.
// It blocks until ctx is cancelled.
func Bridge(ctx context.Context, bus *events.Bus, hub *Hub) {
	ch, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			hub.Broadcast(FromEvent(e))
		case <-ctx.Done():
			return
		}
	}
}
