// Package eventbus carries the committed-mutation feed of the store. Each
// event holds the full current row, never a diff. Delivery is at-least-once
// and unordered across distinct rows; consumers that care about final state
// must re-read from the store rather than apply payloads directly.
package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Mutation is one committed change on a table.
type Mutation struct {
	Type  EventType
	Table string
	Row   interface{}
}

// Listener handles one mutation. Errors are logged, not propagated: feed
// consumption must never fail the business operation that produced it.
type Listener func(ctx context.Context, m Mutation) error

type Bus struct {
	listeners map[string][]Listener
	mu        sync.RWMutex
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

// Subscribe registers a listener for one table's feed.
func (b *Bus) Subscribe(table string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[table] = append(b.listeners[table], listener)
}

// Publish delivers the mutation to every subscriber of its table. Listeners
// run asynchronously with a bounded context so a stuck consumer cannot hold
// the publisher.
func (b *Bus) Publish(ctx context.Context, m Mutation) {
	b.mu.RLock()
	listeners := b.listeners[m.Table]
	b.mu.RUnlock()

	for _, listener := range listeners {
		go func(l Listener) {
			lctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := l(lctx, m); err != nil {
				b.logger.Error("feed listener failed",
					zap.String("table", m.Table),
					zap.String("event", string(m.Type)),
					zap.Error(err),
				)
			}
		}(listener)
	}
}
