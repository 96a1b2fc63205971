package realtime

import (
	"errors"
	"sync"
)

var ErrNotConnected = errors.New("user not connected")

// Sender is one live connection able to receive a pushed frame.
type Sender interface {
	Send(payload []byte) error
}

// Hub tracks live connections per user. A user may hold several at once
// (tabs, devices); every push goes to all of them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[int64]map[int64]Sender
	nextID int64
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[int64]Sender)}
}

// Register adds s for userID and returns the id to unregister it with.
func (h *Hub) Register(userID int64, s Sender) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[userID]; !ok {
		h.conns[userID] = make(map[int64]Sender)
	}

	h.nextID++
	h.conns[userID][h.nextID] = s
	return h.nextID
}

func (h *Hub) Unregister(userID, connID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// SendToUser pushes payload to every connection of userID. Connections that
// fail are dropped. It returns ErrNotConnected when the user has none, else
// the first send error encountered.
func (h *Hub) SendToUser(userID int64, payload []byte) error {
	h.mu.RLock()
	targets := make(map[int64]Sender, len(h.conns[userID]))
	for id, s := range h.conns[userID] {
		targets[id] = s
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return ErrNotConnected
	}

	var firstErr error
	for id, s := range targets {
		if err := s.Send(payload); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			h.Unregister(userID, id)
		}
	}

	return firstErr
}

func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
