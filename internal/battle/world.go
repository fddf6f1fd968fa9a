package battle

import (
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/config"
)

// World is the authoritative per-match state the BattleEngine owns.
// Exactly one goroutine — the engine's Run loop — ever touches a World's
// fields; no locking is needed.
type World struct {
	ID      MatchID
	Map     catalog.Map
	Player1 PlayerID
	Player2 PlayerID

	Phase       Phase
	CurrentTurn PlayerID
	Deadline    time.Time
	Ready       map[PlayerID]bool
	Animals     map[string]*AnimalInstance

	pickCount int

	inbox  []Command
	outbox []Response

	registry *catalog.Registry
	cfg      config.Config
	logger   runtime.Logger
	rnd      *rand.Rand
}

// NewWorld allocates a fresh World in the Pick phase, per CreateBattle's
// contract: current_turn is initialized uniformly at
// random between the two players.
func NewWorld(id MatchID, p1, p2 PlayerID, m catalog.Map, registry *catalog.Registry, cfg config.Config, logger runtime.Logger, rnd *rand.Rand) *World {
	first := p1
	if rnd.Intn(2) == 1 {
		first = p2
	}
	return &World{
		ID:          id,
		Map:         m,
		Player1:     p1,
		Player2:     p2,
		Phase:       PhasePick,
		CurrentTurn: first,
		Ready:       make(map[PlayerID]bool, 2),
		Animals:     make(map[string]*AnimalInstance),
		registry:    registry,
		cfg:         cfg,
		logger:      logger,
		rnd:         rnd,
	}
}

func (w *World) emit(r Response) {
	w.outbox = append(w.outbox, r)
}

func (w *World) emitError(pid PlayerID, kind ErrorKind, message string) {
	w.emit(Response{Type: EventError, Receivers: []PlayerID{pid}, ErrKind: kind, Message: message})
}

func (w *World) bothPlayers() []PlayerID {
	return []PlayerID{w.Player1, w.Player2}
}

func (w *World) other(pid PlayerID) PlayerID {
	if pid == w.Player1 {
		return w.Player2
	}
	return w.Player1
}

func (w *World) bothReady() bool {
	return w.Ready[w.Player1] && w.Ready[w.Player2]
}

func (w *World) deadlineExpired(now time.Time) bool {
	return !w.Deadline.IsZero() && !now.Before(w.Deadline)
}

// invert applies the egocentric-coordinate flip:
// player2's client-frame y is mirrored to the server's canonical frame.
func (w *World) invert(pid PlayerID, pos Position) Position {
	if pid == w.Player2 {
		pos.Y = 23 - pos.Y
	}
	return pos
}

func (w *World) animalAt(pos Position) *AnimalInstance {
	for _, a := range w.Animals {
		if a.Position != nil && *a.Position == pos {
			return a
		}
	}
	return nil
}

func (w *World) unplacedOwnedBy(pid PlayerID) []*AnimalInstance {
	var out []*AnimalInstance
	for _, a := range w.Animals {
		if a.Owner == pid && !a.placed() {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) usedAnimalOf(pid PlayerID) *AnimalInstance {
	for _, a := range w.Animals {
		if a.Owner == pid && a.Flags&FlagUsed != 0 {
			return a
		}
	}
	return nil
}

func (w *World) livingCount(pid PlayerID) int {
	n := 0
	for _, a := range w.Animals {
		if a.Owner == pid {
			n++
		}
	}
	return n
}

// halfRange returns the inclusive-exclusive y range of pid's board half,
// per the place_timeout rule.
func (w *World) halfRange(pid PlayerID) (lo, hi int) {
	if pid == w.Player1 {
		return 0, 12
	}
	return 12, 24
}

// randomEmptyCellInHalf picks a uniformly random unoccupied, unblocked
// cell within pid's half, for place_timeout auto-placement.
func (w *World) randomEmptyCellInHalf(pid PlayerID) Position {
	lo, hi := w.halfRange(pid)
	for {
		pos := Position{X: w.rnd.Intn(catalog.GridWidth), Y: lo + w.rnd.Intn(hi-lo)}
		if w.Map.Blocked(pos.X, pos.Y) {
			continue
		}
		if w.animalAt(pos) != nil {
			continue
		}
		return pos
	}
}

// flushEvents drains and clears the world's command buffer.
func (w *World) flushEvents() []Command {
	cmds := w.inbox
	w.inbox = nil
	return cmds
}

// drainOutbox drains and clears the world's pending response buffer.
func (w *World) drainOutbox() []Response {
	r := w.outbox
	w.outbox = nil
	return r
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}
