package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает агента на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(agentID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	agentSubs, ok := h.subscribers[agentID]
	if !ok {
		agentSubs = make(map[chan Event]struct{})
		h.subscribers[agentID] = agentSubs
	}
	agentSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[agentID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, agentID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам агента.
func (h *Hub) Publish(agentID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[agentID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
