// Package matchmaker implements the rating-windowed pairing loop: a
// single goroutine owns the waiting-player set and runs the pairing
// algorithm on every 1s tick, structurally grounded on
// vimsent-L3/matchmaker's runMatchLoop/tryCreateMatch ticker-select
// shape — but de-mutexed, since this state must be touched only by its
// own loop goroutine, reached exclusively through a command channel.
package matchmaker

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/google/uuid"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/directory"
	"github.com/embergrid/animalcombat/internal/rating"
)

// PlayerID matches the engine's player identity type.
type PlayerID = battle.PlayerID

// MatchFound is delivered to exactly one player once it has been paired:
// the opponent's public profile, the chosen map, and whether this player
// is player2 (and should render its board inverted). It carries
// everything a client needs to go straight from this notification to
// battle_create_session.
type MatchFound struct {
	OpponentID          PlayerID
	OpponentDisplayName string
	OpponentClanName    string
	OpponentGlory       float64
	Map                 catalog.Map
	Invert              bool
}

type queuedPlayer struct {
	id       PlayerID
	rating   rating.Rating
	joinedAt time.Time
}

type command struct {
	join  *queuedPlayer
	leave *PlayerID
}

// Engine is the interface the Matchmaker needs from the battle engine:
// just enough to hand off a paired match.
type Engine interface {
	CreateBattle(spec battle.MatchSpec)
}

// Matchmaker holds the waiting-player set. Join, Leave, and the tick are
// only ever observed by the Run goroutine; callers reach it exclusively
// through the command channel.
type Matchmaker struct {
	logger    runtime.Logger
	registry  *catalog.Registry
	engine    Engine
	directory directory.Directory
	rnd       *rand.Rand

	in        chan command
	found     *foundHub
	tickEvery time.Duration

	waiting map[PlayerID]*queuedPlayer
}

// New constructs a Matchmaker. Run must be started in its own goroutine
// before Join/Leave are called.
func New(logger runtime.Logger, registry *catalog.Registry, engine Engine, dir directory.Directory, tickEvery time.Duration) *Matchmaker {
	return &Matchmaker{
		logger:    logger,
		registry:  registry,
		engine:    engine,
		directory: dir,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		in:        make(chan command, 256),
		found:     newFoundHub(),
		tickEvery: tickEvery,
		waiting:   make(map[PlayerID]*queuedPlayer),
	}
}

// Subscribe opens a player's MatchFound channel; a Session subscribes to
// it the same way it subscribes to the engine's Hub, and unsubscribes on
// Close.
func (m *Matchmaker) Subscribe(id PlayerID) <-chan MatchFound { return m.found.Subscribe(id) }

// Unsubscribe closes a player's MatchFound channel.
func (m *Matchmaker) Unsubscribe(id PlayerID) { m.found.Unsubscribe(id) }

// Join enqueues a player, or replaces its rating and resets joined_at if
// already waiting (idempotent-by-id).
func (m *Matchmaker) Join(id PlayerID, r rating.Rating) {
	m.in <- command{join: &queuedPlayer{id: id, rating: r, joinedAt: time.Now()}}
}

// Leave removes a player from the waiting set; a no-op if absent.
func (m *Matchmaker) Leave(id PlayerID) {
	m.in <- command{leave: &id}
}

// Run is the matchmaker's single cooperative task.
func (m *Matchmaker) Run(ctx context.Context) {
	ticker := time.NewTicker(m.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case cmd := <-m.in:
			m.handle(cmd)
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Matchmaker) handle(cmd command) {
	switch {
	case cmd.join != nil:
		m.waiting[cmd.join.id] = cmd.join
	case cmd.leave != nil:
		delete(m.waiting, *cmd.leave)
	}
}

// tick runs the pairing algorithm: oldest-first fairness order, a
// time-expanding rating window per player, uniformly random tie-break
// among eligible opponents, uniformly random map choice.
func (m *Matchmaker) tick(ctx context.Context) {
	order := make([]*queuedPlayer, 0, len(m.waiting))
	for _, p := range m.waiting {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].joinedAt.Before(order[j].joinedAt) })

	now := time.Now()
	for _, p := range order {
		if _, stillWaiting := m.waiting[p.id]; !stillWaiting {
			continue
		}
		window := rating.Window(now.Sub(p.joinedAt))
		candidates := m.eligible(p, window)
		if len(candidates) == 0 {
			continue
		}
		opponent := candidates[m.rnd.Intn(len(candidates))]
		m.pair(ctx, p, opponent)
	}
}

func (m *Matchmaker) eligible(p *queuedPlayer, window float64) []*queuedPlayer {
	var out []*queuedPlayer
	for id, q := range m.waiting {
		if id == p.id {
			continue
		}
		if rating.Gap(p.rating, q.rating) <= window {
			out = append(out, q)
		}
	}
	return out
}

func (m *Matchmaker) pair(ctx context.Context, p, q *queuedPlayer) {
	delete(m.waiting, p.id)
	delete(m.waiting, q.id)

	chosenMap := m.registry.RandomMap(m.rnd)

	m.publishFound(ctx, p.id, q.id, chosenMap, false)
	m.publishFound(ctx, q.id, p.id, chosenMap, true)

	m.engine.CreateBattle(battle.MatchSpec{
		ID:      battle.MatchID(uuid.NewString()),
		Player1: p.id,
		Player2: q.id,
		Map:     chosenMap,
	})
}

// publishFound resolves opponent's public profile and addresses a
// MatchFound notification to self, invert set according to which side of
// the pairing self ended up on.
func (m *Matchmaker) publishFound(ctx context.Context, self, opponent PlayerID, chosenMap catalog.Map, invert bool) {
	ev := MatchFound{OpponentID: opponent, Map: chosenMap, Invert: invert}

	profile, err := m.directory.GetOpponentProfile(ctx, int64(opponent))
	if err != nil {
		m.logger.Error("matchmaker: loading opponent profile for %d: %v", opponent, err)
	} else {
		ev.OpponentDisplayName = profile.DisplayName
		ev.OpponentClanName = profile.ClanName
		ev.OpponentGlory = profile.Rating.Mean
	}

	m.found.Publish(self, ev)
}
