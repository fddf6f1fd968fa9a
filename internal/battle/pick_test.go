package battle

import (
	"testing"
	"time"
)

func TestPickABBATurnOrder(t *testing.T) {
	w := newTestWorld()
	now := time.Now()

	// cfg.PickCount = 4: expect A, B, B, A as current_turn for each pick.
	wantTurns := []PlayerID{w.Player1, w.Player2, w.Player2, w.Player1}
	picks := []string{"wolf", "bear", "hare", "fox"}

	for i, animalID := range picks {
		acting := w.CurrentTurn
		if acting != wantTurns[i] {
			t.Fatalf("pick %d: current_turn = %d, want %d", i, acting, wantTurns[i])
		}
		w.handlePick(acting, animalID, now)
	}

	if w.Phase != PhasePlacement {
		t.Fatalf("expected Phase to be Placement after %d picks, got %v", len(picks), w.Phase)
	}

	p1Count, p2Count := 0, 0
	for _, a := range w.Animals {
		if a.Owner == w.Player1 {
			p1Count++
		} else {
			p2Count++
		}
	}
	if p1Count != 2 || p2Count != 2 {
		t.Fatalf("expected 2 animals per player, got p1=%d p2=%d", p1Count, p2Count)
	}
}

func TestHandlePickRejectsOutOfTurn(t *testing.T) {
	w := newTestWorld()
	other := w.other(w.CurrentTurn)
	w.handlePick(other, "wolf", time.Now())

	if len(w.Animals) != 0 {
		t.Fatalf("expected no animal to be spawned, got %d", len(w.Animals))
	}
	errs := w.drainOutbox()
	if len(errs) != 1 || errs[0].Type != EventError || errs[0].ErrKind != KindOutOfTurn {
		t.Fatalf("expected a single out-of-turn error, got %+v", errs)
	}
}

func TestHandlePickRejectsAlreadyPicked(t *testing.T) {
	w := newTestWorld()
	now := time.Now()
	w.handlePick(w.CurrentTurn, "wolf", now)
	w.drainOutbox()

	w.handlePick(w.CurrentTurn, "wolf", now)
	errs := w.drainOutbox()
	if len(errs) != 1 || errs[0].ErrKind != KindUnknown {
		t.Fatalf("expected a single unknown-kind error for a duplicate pick, got %+v", errs)
	}
}

func TestHandlePickTimeoutSynthesizesAPick(t *testing.T) {
	w := newTestWorld()
	before := len(w.Animals)
	w.handlePickTimeout(time.Now())
	if len(w.Animals) != before+1 {
		t.Fatalf("expected pick_timeout to spawn exactly one animal, got %d -> %d", before, len(w.Animals))
	}
}

func TestPreparationsRunsPickTimeoutOnDeadlineExpiry(t *testing.T) {
	w := newTestWorld()
	w.Ready[w.Player1] = true
	w.Ready[w.Player2] = true
	past := time.Now().Add(-time.Minute)
	w.Deadline = past

	w.preparations(nil, time.Now())
	if len(w.Animals) != 1 {
		t.Fatalf("expected exactly one synthesized pick after deadline expiry, got %d", len(w.Animals))
	}
}

func TestHandleReadyIsIdempotent(t *testing.T) {
	w := newTestWorld()
	now := time.Now()
	w.handleReady(w.Player1, now)
	if len(w.drainOutbox()) != 0 {
		t.Fatal("expected no broadcast until both players are ready")
	}
	w.handleReady(w.Player2, now)
	resp := w.drainOutbox()
	if len(resp) != 1 || resp[0].Type != EventTurnToPick {
		t.Fatalf("expected a single TurnToPick broadcast, got %+v", resp)
	}
	// Calling Ready again for an already-ready player must not re-broadcast.
	w.handleReady(w.Player1, now)
	if len(w.drainOutbox()) != 0 {
		t.Fatal("expected Ready to be idempotent once both players are ready")
	}
}
