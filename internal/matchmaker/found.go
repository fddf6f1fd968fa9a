package matchmaker

import "sync"

// foundBufferSize mirrors battle.Hub's bounded broadcast channel capacity
// and drop-oldest-on-overflow policy (128): a MatchFound notification is
// as ephemeral as a battle.Response, and a player who is slow to drain
// only cares about the most recent pairing outcome.
const foundBufferSize = 128

// foundHub is the matchmaker's broadcast channel: one buffered Go channel
// per subscribed player, addressed directly by player id rather than a
// receivers list, since every MatchFound notification is built for
// exactly one recipient. It plays the same role for pair() that
// battle.Hub plays for the engine.
type foundHub struct {
	mu   sync.Mutex
	subs map[PlayerID]chan MatchFound
}

func newFoundHub() *foundHub {
	return &foundHub{subs: make(map[PlayerID]chan MatchFound)}
}

// Subscribe opens (or reopens) a player's inbound MatchFound channel.
func (h *foundHub) Subscribe(pid PlayerID) <-chan MatchFound {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan MatchFound, foundBufferSize)
	h.subs[pid] = ch
	return ch
}

// Unsubscribe closes and removes a player's channel. Safe to call on a
// player with no subscription.
func (h *foundHub) Unsubscribe(pid PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[pid]; ok {
		close(ch)
		delete(h.subs, pid)
	}
}

// Publish addresses ev to pid if it is currently subscribed. A player who
// isn't subscribed (no live session) is skipped silently.
func (h *foundHub) Publish(pid PlayerID, ev MatchFound) {
	h.mu.Lock()
	ch, ok := h.subs[pid]
	h.mu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- ev:
		return
	default:
	}
	// Full: drop the oldest pending notification and retry once.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}
