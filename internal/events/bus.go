// Package events provides the in-process broadcast channel domain services
// publish into and UI-facing layers consume. Delivery is at-most-once per
// subscriber: a subscriber that cannot keep up drops events, and nothing is
// replayed or persisted.
package events

import (
	"log/slog"
	"sync"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

const subscriberBuffer = 16

// Event describes a domain state change worth showing on a family device.
type Event struct {
	Kind         string              `json:"kind"`
	UserID       int64               `json:"user_id"`
	TaskID       int64               `json:"task_id,omitempty"`
	RewardID     int64               `json:"reward_id,omitempty"`
	Tokens       int                 `json:"tokens,omitempty"`
	Balance      int                 `json:"balance,omitempty"`
	Achievements []model.Achievement `json:"achievements,omitempty"`
}

// Event kinds published by the services.
const (
	KindTaskCompleted       = "task_completed"
	KindTaskUndone          = "task_undone"
	KindAchievementUnlocked = "achievement_unlocked"
	KindRewardRedeemed      = "reward_redeemed"
	KindBalanceAdjusted     = "balance_adjusted"
)

// Bus fans events out to all current subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription; the channel is closed by cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers e to every subscriber without blocking. A full subscriber
// channel drops the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			if b.logger != nil {
				b.logger.Debug("dropping event for slow subscriber", "kind", e.Kind)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
