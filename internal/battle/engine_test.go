package battle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/embergrid/animalcombat/internal/logging"
)

func newTestEngine() *Engine {
	return NewEngine(logging.NewDefault(), testRegistry(), testConfig())
}

func TestHandleCreateBattleIndexesBothPlayers(t *testing.T) {
	e := newTestEngine()
	spec := MatchSpec{ID: "m1", Player1: 1, Player2: 2, Map: testRegistry().Maps[0]}
	e.handleCreateBattle(spec)

	if _, ok := e.worlds["m1"]; !ok {
		t.Fatal("expected world m1 to be created")
	}
	if e.byPlayer[1] != "m1" || e.byPlayer[2] != "m1" {
		t.Fatal("expected both players to index to m1")
	}
}

func TestHandlePlayerCommandErrorsForUnknownPlayer(t *testing.T) {
	e := newTestEngine()
	ch := e.hub.Subscribe(99)
	e.handlePlayerCommand(Command{Kind: CmdReady, Player: 99})

	select {
	case r := <-ch:
		if r.Type != EventError || r.ErrKind != KindUnknown {
			t.Fatalf("expected an unknown-kind error, got %+v", r)
		}
	default:
		t.Fatal("expected an error response to be published for an unrouted command")
	}
}

func TestHandlePlayerCommandRoutesToTheirWorld(t *testing.T) {
	e := newTestEngine()
	e.handleCreateBattle(MatchSpec{ID: "m1", Player1: 1, Player2: 2, Map: testRegistry().Maps[0]})
	w := e.worlds["m1"]
	w.CurrentTurn = w.Player1

	e.handlePlayerCommand(Command{Kind: CmdReady, Player: 1})
	if !w.Ready[1] {
		t.Fatal("expected player 1's ready command to reach world m1")
	}
}

func TestRunPipelineReclaimsTerminalWorld(t *testing.T) {
	e := newTestEngine()
	e.handleCreateBattle(MatchSpec{ID: "m1", Player1: 1, Player2: 2, Map: testRegistry().Maps[0]})
	w := e.worlds["m1"]
	for id := range w.Animals {
		delete(w.Animals, id)
	}
	w.Phase = PhaseGame
	w.Animals["only"] = &AnimalInstance{StatID: "only", Owner: w.Player1, HP: 0}

	e.runPipeline(w, time.Now())

	if _, ok := e.worlds["m1"]; ok {
		t.Fatal("expected the terminal world to be reclaimed")
	}
	if _, ok := e.byPlayer[1]; ok {
		t.Fatal("expected player 1's index entry to be removed")
	}
	if _, ok := e.byPlayer[2]; ok {
		t.Fatal("expected player 2's index entry to be removed")
	}
}

func TestRunPipelineRejectsCommandsAfterTerminal(t *testing.T) {
	e := newTestEngine()
	w := NewWorld("m1", 1, 2, testRegistry().Maps[0], testRegistry(), testConfig(), logging.NewDefault(), rand.New(rand.NewSource(1)))
	w.Phase = PhaseTerminal
	w.inbox = []Command{{Kind: CmdReady, Player: 1}}
	ch := e.hub.Subscribe(1)

	e.runPipeline(w, time.Now())
	var events []Response
	for len(ch) > 0 {
		events = append(events, <-ch)
	}
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error for a command against a terminal world, got %+v", events)
	}
}
