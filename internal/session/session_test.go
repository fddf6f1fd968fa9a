package session

import (
	"context"
	"testing"
	"time"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/config"
	"github.com/embergrid/animalcombat/internal/directory"
	"github.com/embergrid/animalcombat/internal/logging"
	"github.com/embergrid/animalcombat/internal/matchmaker"
	"github.com/embergrid/animalcombat/internal/rating"
)

// fakeDirectory answers every opponent-profile lookup with a fixed
// profile so tests don't need a live database.
type fakeDirectory struct{}

func (fakeDirectory) GetOwnRating(ctx context.Context, playerID int64) (rating.Rating, error) {
	return rating.Rating{Mean: 1500}, nil
}

func (fakeDirectory) GetOpponentProfile(ctx context.Context, playerID int64) (directory.Profile, error) {
	return directory.Profile{ID: playerID, DisplayName: "opponent", Rating: rating.Rating{Mean: 1500}}, nil
}

func testEngine() *battle.Engine {
	reg := catalog.NewRegistry([]catalog.Map{{Name: "plain"}}, []catalog.AnimalStat{
		{ID: "wolf", HP: 30, Damage: 8, Mobility: 4},
	})
	cfg := config.Config{PickTime: time.Second, PlaceTime: time.Second, TurnTime: time.Second, PickCount: 2, TickInterval: time.Second}
	return battle.NewEngine(logging.NewDefault(), reg, cfg)
}

func TestNewSubscribesAndCloseUnsubscribes(t *testing.T) {
	e := testEngine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	s := New(42, e, nil)
	defer s.Close()

	e.CreateBattle(battle.MatchSpec{ID: "m1", Player1: 42, Player2: 43, Map: catalog.Map{Name: "plain"}})
	e.Submit(battle.Command{Kind: battle.CmdReady, Player: 42})
	e.Submit(battle.Command{Kind: battle.CmdReady, Player: 43})

	select {
	case r := <-s.Responses():
		if r.Type != battle.EventTurnToPick {
			t.Fatalf("expected a TurnToPick once both players are ready, got %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a response on this session's channel")
	}

	s.Close()
	closed := make(chan struct{})
	go func() {
		for range s.Responses() {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("expected Close to close this session's response channel")
	}
}

func TestSessionCommandsStampTrustedPlayerID(t *testing.T) {
	e := testEngine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	s1 := New(1, e, nil)
	s2 := New(2, e, nil)
	defer s1.Close()
	defer s2.Close()

	e.CreateBattle(battle.MatchSpec{ID: "m1", Player1: 1, Player2: 2, Map: catalog.Map{Name: "plain"}})
	s1.Ready()
	s2.Ready()

	drain := func(s *Session) battle.Response {
		select {
		case r := <-s.Responses():
			return r
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a response")
			return battle.Response{}
		}
	}
	r1 := drain(s1)
	r2 := drain(s2)
	if r1.Type != battle.EventTurnToPick || r2.Type != battle.EventTurnToPick {
		t.Fatalf("expected both sessions to observe TurnToPick, got %+v / %+v", r1, r2)
	}
}

func TestJoinMatchmakingForwardsTrustedID(t *testing.T) {
	e := testEngine()
	mm := matchmaker.New(logging.NewDefault(), catalog.NewRegistry([]catalog.Map{{Name: "plain"}}, nil), e, fakeDirectory{}, time.Second)
	s := New(7, e, mm)
	defer s.Close()

	s.JoinMatchmaking(rating.Rating{Mean: 1500})
	mm.Leave(7) // a direct matchmaker call, alongside the session's own LeaveMatchmaking below
	s.LeaveMatchmaking()
}
