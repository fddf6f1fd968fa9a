package matchmaker

import (
	"context"
	"testing"
	"time"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/directory"
	"github.com/embergrid/animalcombat/internal/logging"
	"github.com/embergrid/animalcombat/internal/rating"
)

type fakeEngine struct {
	specs []battle.MatchSpec
}

func (f *fakeEngine) CreateBattle(spec battle.MatchSpec) {
	f.specs = append(f.specs, spec)
}

// fakeDirectory answers every opponent-profile lookup with a fixed,
// deterministic profile so pairing tests don't need a live database.
type fakeDirectory struct{}

func (fakeDirectory) GetOwnRating(ctx context.Context, playerID int64) (rating.Rating, error) {
	return rating.Rating{Mean: 1500}, nil
}

func (fakeDirectory) GetOpponentProfile(ctx context.Context, playerID int64) (directory.Profile, error) {
	return directory.Profile{ID: playerID, DisplayName: "opponent", Rating: rating.Rating{Mean: 1500}}, nil
}

func testMatchmaker(e Engine) *Matchmaker {
	reg := catalog.NewRegistry([]catalog.Map{{Name: "plain"}}, nil)
	return New(logging.NewDefault(), reg, e, fakeDirectory{}, time.Second)
}

func TestTickPairsEligiblePlayers(t *testing.T) {
	fe := &fakeEngine{}
	m := testMatchmaker(fe)
	now := time.Now()

	m.waiting[1] = &queuedPlayer{id: 1, rating: rating.Rating{Mean: 1500}, joinedAt: now}
	m.waiting[2] = &queuedPlayer{id: 2, rating: rating.Rating{Mean: 1520}, joinedAt: now}

	m.tick(context.Background())

	if len(fe.specs) != 1 {
		t.Fatalf("expected exactly one match created, got %d", len(fe.specs))
	}
	if len(m.waiting) != 0 {
		t.Fatalf("expected both players removed from the waiting set, got %d left", len(m.waiting))
	}
}

func TestTickLeavesOutOfWindowPlayersWaiting(t *testing.T) {
	fe := &fakeEngine{}
	m := testMatchmaker(fe)
	now := time.Now()

	m.waiting[1] = &queuedPlayer{id: 1, rating: rating.Rating{Mean: 1000}, joinedAt: now}
	m.waiting[2] = &queuedPlayer{id: 2, rating: rating.Rating{Mean: 2000}, joinedAt: now}

	m.tick(context.Background())

	if len(fe.specs) != 0 {
		t.Fatalf("expected no match for a 1000-point gap with a fresh window, got %d", len(fe.specs))
	}
	if len(m.waiting) != 2 {
		t.Fatalf("expected both players to remain waiting, got %d", len(m.waiting))
	}
}

func TestTickWidensWindowOverTime(t *testing.T) {
	fe := &fakeEngine{}
	m := testMatchmaker(fe)
	longWait := time.Now().Add(-30 * time.Second) // window = min(500, (30/6+1)*100) = 500

	m.waiting[1] = &queuedPlayer{id: 1, rating: rating.Rating{Mean: 1000}, joinedAt: longWait}
	m.waiting[2] = &queuedPlayer{id: 2, rating: rating.Rating{Mean: 1450}, joinedAt: longWait}

	m.tick(context.Background())

	if len(fe.specs) != 1 {
		t.Fatalf("expected the widened window to admit a 450-point gap after 30s waiting, got %d matches", len(fe.specs))
	}
}

func TestHandleJoinAndLeave(t *testing.T) {
	m := testMatchmaker(&fakeEngine{})
	m.handle(command{join: &queuedPlayer{id: 1, rating: rating.Rating{Mean: 1500}, joinedAt: time.Now()}})
	if _, ok := m.waiting[1]; !ok {
		t.Fatal("expected player 1 to be waiting after join")
	}

	leave := PlayerID(1)
	m.handle(command{leave: &leave})
	if _, ok := m.waiting[1]; ok {
		t.Fatal("expected player 1 to be removed after leave")
	}
}

func TestPairRemovesBothAndEmitsMatchFound(t *testing.T) {
	fe := &fakeEngine{}
	m := testMatchmaker(fe)
	p := &queuedPlayer{id: 1, rating: rating.Rating{Mean: 1500}, joinedAt: time.Now()}
	q := &queuedPlayer{id: 2, rating: rating.Rating{Mean: 1500}, joinedAt: time.Now()}
	m.waiting[1] = p
	m.waiting[2] = q

	ch1 := m.Subscribe(1)
	ch2 := m.Subscribe(2)

	m.pair(context.Background(), p, q)

	if len(m.waiting) != 0 {
		t.Fatal("expected both players removed from waiting")
	}
	select {
	case mf := <-ch1:
		if mf.OpponentID != 2 || mf.Invert {
			t.Fatalf("expected player 1 to see opponent 2 and invert=false, got %+v", mf)
		}
		if mf.OpponentDisplayName != "opponent" {
			t.Fatalf("expected the opponent's profile to be resolved, got %+v", mf)
		}
	default:
		t.Fatal("expected a MatchFound event addressed to player 1")
	}
	select {
	case mf := <-ch2:
		if mf.OpponentID != 1 || !mf.Invert {
			t.Fatalf("expected player 2 to see opponent 1 and invert=true, got %+v", mf)
		}
	default:
		t.Fatal("expected a MatchFound event addressed to player 2")
	}
	if len(fe.specs) != 1 {
		t.Fatalf("expected CreateBattle to be called once, got %d", len(fe.specs))
	}
}
