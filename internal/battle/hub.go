package battle

import (
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// hubBufferSize is the bounded broadcast channel capacity per subscriber
// (128); on overflow the oldest pending message is dropped, not the new
// one — ephemeral gameplay events tolerate loss.
const hubBufferSize = 128

// Hub is the engine's broadcast channel: one buffered Go channel per
// subscribed player, fed by Publish's receiver-list addressing. It plays
// the role dispatcher.BroadcastMessage(opCode, data,
// presences, nil, true) plays for a live Nakama match, generalized to
// plain channels since this engine's worlds live outside any single
// Nakama match handler — a session match subscribes on behalf of its
// one connected presence instead.
type Hub struct {
	logger runtime.Logger

	mu   sync.RWMutex
	subs map[PlayerID]chan Response
}

// NewHub constructs an empty Hub.
func NewHub(logger runtime.Logger) *Hub {
	return &Hub{logger: logger, subs: make(map[PlayerID]chan Response)}
}

// Subscribe opens (or reopens) a player's inbound response channel.
func (h *Hub) Subscribe(pid PlayerID) <-chan Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Response, hubBufferSize)
	h.subs[pid] = ch
	return ch
}

// Unsubscribe closes and removes a player's channel. Safe to call on a
// player with no subscription.
func (h *Hub) Unsubscribe(pid PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[pid]; ok {
		close(ch)
		delete(h.subs, pid)
	}
}

// Publish addresses r to every player in r.Receivers currently
// subscribed. A player who isn't subscribed (disconnected) is skipped
// silently; it is neither logged nor propagated as an engine error.
func (h *Hub) Publish(r Response) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, pid := range r.Receivers {
		ch, ok := h.subs[pid]
		if !ok {
			continue
		}
		h.send(pid, ch, r)
	}
}

func (h *Hub) send(pid PlayerID, ch chan Response, r Response) {
	select {
	case ch <- r:
		return
	default:
	}
	// Full: drop the oldest pending message and retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- r:
	default:
		h.logger.Warn("hub: dropped response %s for player %d, channel still full", r.Type, pid)
	}
}
