package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

const DefaultBufferSize = 16

// Hub delivers events to every subscriber currently attached to this process.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	bufferSize  int
	metrics     *Metrics
	logger      zerolog.Logger
	closed      bool
}

func NewHub(bufferSize int, logger zerolog.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subscribers: make(map[uint64]chan Event),
		bufferSize:  bufferSize,
		metrics:     NewMetrics(),
		logger:      logger.With().Str("component", "notify").Logger(),
	}
}

// Publish hands event to every subscriber without waiting. Subscribers with a
// full buffer miss it.
func (h *Hub) Publish(event Event) {
	h.metrics.RecordPublish()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
			h.metrics.RecordDelivery()
		default:
			h.metrics.RecordDrop()
			h.logger.Debug().Uint64("subscriber", id).Str("event", event.Type).Msg("subscriber buffer full, event dropped")
		}
	}
}

// Subscribe attaches a new client. The returned func detaches it and closes
// the channel; calling it more than once is harmless.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.bufferSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.metrics.setSubscribers(len(h.subscribers))
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[id]; !ok {
				return
			}
			delete(h.subscribers, id)
			h.metrics.setSubscribers(len(h.subscribers))
			close(ch)
		})
	}
}

// Close ends every live subscription and refuses new ones. Streams reading
// from a closed hub see their channel closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
	h.metrics.setSubscribers(0)
	h.logger.Debug().Msg("hub closed")
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) Metrics() *Metrics {
	return h.metrics
}
