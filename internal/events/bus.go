package events

import (
	"sync"
	"time"

	"github.com/Gavin-McEllistrem/trading-simulator/internal/queue"
)

// Bus is the aggregator side of the event pipeline: every runner holds a
// Sender that feeds it, and any number of outside
// listeners can Subscribe to the merged stream. Ingestion off of Senders is
// unbounded (a slow bus never blocks a runner's bar loop); fan-out to each
// subscriber is bounded and, for non-critical kinds, droppable — a
// non-blocking send per subscriber rather than per named topic, since this
// bus carries one merged Event stream instead of separate named topics.
type Bus struct {
	mu          sync.RWMutex
	subs        map[uint64]chan Event
	nextID      uint64
	ingest      *queue.Unbounded[Event]
	critTimeout time.Duration

	closeMu sync.RWMutex
	closed  bool
}

// NewBus creates a bus and starts its dispatch loop. Close must be called
// to release the loop's goroutine.
func NewBus() *Bus {
	b := &Bus{
		subs:        make(map[uint64]chan Event),
		ingest:      queue.NewUnbounded[Event](),
		critTimeout: 50 * time.Millisecond,
	}
	go b.run()
	return b
}

func (b *Bus) run() {
	for ev := range b.ingest.Out() {
		b.dispatch(ev)
	}
	b.mu.Lock()
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.mu.Unlock()
}

func (b *Bus) dispatch(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	critical := ev.Kind.Critical()
	for _, ch := range b.subs {
		if critical {
			select {
			case ch <- ev:
			case <-time.After(b.critTimeout):
				// subscriber did not drain in time even for a must-deliver
				// event; drop rather than stall the whole bus.
			}
			continue
		}
		select {
		case ch <- ev:
		default:
			// high-frequency kind and a slow subscriber: drop, keep the bus
			// non-blocking for everyone else.
		}
	}
}

// Publish enqueues ev for dispatch. Never blocks the caller beyond handing
// the value to the relay. Events published after Close are dropped.
func (b *Bus) Publish(ev Event) {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		return
	}
	b.ingest.Send(ev)
}

// Subscribe registers a new listener with the given buffer size and returns
// its channel plus an unsubscribe function. The channel is closed when
// unsubscribed or when the bus itself is closed.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
	return ch, unsub
}

// Close stops accepting new events and shuts down the dispatch loop,
// closing every subscriber channel once the ingest queue drains.
func (b *Bus) Close() {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.ingest.Close()
}
