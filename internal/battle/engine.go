package battle

import (
	"context"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/config"
)

// MatchSpec is what the Matchmaker hands the engine via CreateBattle: two
// paired players and the map they'll fight on.
type MatchSpec struct {
	ID      MatchID
	Player1 PlayerID
	Player2 PlayerID
	Map     catalog.Map
}

type engineMsg struct {
	createBattle *MatchSpec
	playerCmd    *Command
}

// Engine owns every active World, keyed by match id, plus the
// player->world index that must be kept
// consistent. It is driven by a single goroutine (Run); CreateBattle and
// Submit reach it through a channel, and Subscribe/Unsubscribe go through
// the Hub's own lock.
type Engine struct {
	logger   runtime.Logger
	registry *catalog.Registry
	cfg      config.Config
	hub      *Hub
	rnd      *rand.Rand

	in       chan engineMsg
	worlds   map[MatchID]*World
	byPlayer map[PlayerID]MatchID
}

// NewEngine constructs an Engine. Run must be started in its own
// goroutine before CreateBattle/Submit are called.
func NewEngine(logger runtime.Logger, registry *catalog.Registry, cfg config.Config) *Engine {
	return &Engine{
		logger:   logger,
		registry: registry,
		cfg:      cfg,
		hub:      NewHub(logger),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		in:       make(chan engineMsg, 256),
		worlds:   make(map[MatchID]*World),
		byPlayer: make(map[PlayerID]MatchID),
	}
}

// Subscribe opens a player's response channel on the broadcast hub.
func (e *Engine) Subscribe(pid PlayerID) <-chan Response { return e.hub.Subscribe(pid) }

// Unsubscribe closes a player's response channel.
func (e *Engine) Unsubscribe(pid PlayerID) { e.hub.Unsubscribe(pid) }

// CreateBattle enqueues a new match for the engine loop to allocate.
func (e *Engine) CreateBattle(spec MatchSpec) {
	e.in <- engineMsg{createBattle: &spec}
}

// Submit enqueues a trusted player command for the engine loop to route
// to that player's world.
func (e *Engine) Submit(cmd Command) {
	e.in <- engineMsg{playerCmd: &cmd}
}

// Run is the engine's single cooperative task: it suspends only at the
// select between the next inbound message and the next tick; each
// pipeline run completes without yielding.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case msg := <-e.in:
			e.handle(msg)
		case <-ticker.C:
			e.tick()
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) handle(msg engineMsg) {
	switch {
	case msg.createBattle != nil:
		e.handleCreateBattle(*msg.createBattle)
	case msg.playerCmd != nil:
		e.handlePlayerCommand(*msg.playerCmd)
	}
}

func (e *Engine) handleCreateBattle(spec MatchSpec) {
	w := NewWorld(spec.ID, spec.Player1, spec.Player2, spec.Map, e.registry, e.cfg, e.logger, e.rnd)
	e.worlds[spec.ID] = w
	e.byPlayer[spec.Player1] = spec.ID
	e.byPlayer[spec.Player2] = spec.ID
	e.logger.Info("battle engine: created match %s between %d and %d", spec.ID, spec.Player1, spec.Player2)
}

func (e *Engine) handlePlayerCommand(cmd Command) {
	id, ok := e.byPlayer[cmd.Player]
	if !ok {
		e.hub.Publish(Response{Type: EventError, Receivers: []PlayerID{cmd.Player}, ErrKind: KindUnknown, Message: "player is not in a match"})
		return
	}
	w := e.worlds[id]
	w.inbox = append(w.inbox, cmd)
	e.runPipeline(w, time.Now())
}

func (e *Engine) tick() {
	now := time.Now()
	for _, w := range e.worlds {
		e.runPipeline(w, now)
	}
}

// runPipeline is the engine's ordered four-stage invocation of a single
// world: FlushEvents, Preparations, Gameplay, EndTurn
// sweep. A world already in Terminal rejects any buffered commands and
// is reclaimed from the engine's indices.
func (e *Engine) runPipeline(w *World, now time.Time) {
	cmds := w.flushEvents()
	if w.Phase == PhaseTerminal {
		for _, c := range cmds {
			w.emitError(c.Player, KindUnknown, "match is over")
		}
	} else {
		w.preparations(cmds, now)
		w.gameplay(cmds, now)
		w.endTurnSweep(now)
	}

	for _, r := range w.drainOutbox() {
		e.hub.Publish(r)
	}

	if w.Phase == PhaseTerminal {
		e.reclaimWorld(w.ID)
	}
}

func (e *Engine) reclaimWorld(id MatchID) {
	w, ok := e.worlds[id]
	if !ok {
		return
	}
	delete(e.byPlayer, w.Player1)
	delete(e.byPlayer, w.Player2)
	delete(e.worlds, id)
}
