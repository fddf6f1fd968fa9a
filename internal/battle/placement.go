package battle

import (
	"fmt"
	"time"
)

// applyInversion maps every entry's client-frame position to the
// server's canonical frame (egocentric placement, constraint 7).
func (w *World) applyInversion(pid PlayerID, raw []PlacementEntry) []PlacementEntry {
	out := make([]PlacementEntry, len(raw))
	for i, e := range raw {
		out[i] = PlacementEntry{AnimalID: e.AnimalID, Position: w.invert(pid, e.Position)}
	}
	return out
}

// validatePlacement enumerates the seven placement constraints
// explicitly, rather than mirroring the reference implementation's
// inverted-conjunction expression flagged in §9 as possibly buggy.
func (w *World) validatePlacement(pid PlayerID, entries []PlacementEntry) error {
	half := w.cfg.PickCount / 2

	unplaced := w.unplacedOwnedBy(pid)
	if len(unplaced) != half {
		return fmt.Errorf("player does not have exactly %d unplaced animals", half)
	}
	if len(entries) != half {
		return fmt.Errorf("expected exactly %d placement entries", half)
	}

	seenIDs := make(map[string]bool, len(entries))
	seenPos := make(map[Position]bool, len(entries))
	for _, e := range entries {
		a, ok := w.Animals[e.AnimalID]
		if !ok || a.Owner != pid || a.placed() {
			return fmt.Errorf("animal %s is not an unplaced animal owned by this player", e.AnimalID)
		}
		if seenIDs[e.AnimalID] {
			return fmt.Errorf("duplicate animal id %s", e.AnimalID)
		}
		seenIDs[e.AnimalID] = true
		if seenPos[e.Position] {
			return fmt.Errorf("duplicate position %v", e.Position)
		}
		seenPos[e.Position] = true
		if w.Map.Blocked(e.Position.X, e.Position.Y) {
			return fmt.Errorf("position %v is out of bounds or an obstacle", e.Position)
		}
		if w.animalAt(e.Position) != nil {
			return fmt.Errorf("position %v is already occupied", e.Position)
		}
	}
	return nil
}

func (w *World) handlePlace(pid PlayerID, raw []PlacementEntry, now time.Time) {
	entries := w.applyInversion(pid, raw)
	if err := w.validatePlacement(pid, entries); err != nil {
		w.logger.Debug("place rejected for player %d: %v", pid, err)
		w.emitError(pid, KindInvalidCommand, "Not all animals position send")
		return
	}
	for _, e := range entries {
		pos := e.Position
		w.Animals[e.AnimalID].Position = &pos
	}
	w.maybeCompletePlacement(now)
}

// handlePlaceTimeout auto-places every remaining unplaced animal within
// its owner's half of the board.
func (w *World) handlePlaceTimeout(now time.Time) {
	for _, pid := range w.bothPlayers() {
		for _, a := range w.unplacedOwnedBy(pid) {
			pos := w.randomEmptyCellInHalf(pid)
			a.Position = &pos
		}
	}
	w.maybeCompletePlacement(now)
}

// maybeCompletePlacement emits the single Placed event and transitions
// to Game only once both players have no unplaced animals left.
func (w *World) maybeCompletePlacement(now time.Time) {
	if w.hasUnplaced() {
		return
	}
	w.emit(Response{Type: EventPlaced, Receivers: w.bothPlayers(), Animals: w.allPlacedAnimals()})
	w.Phase = PhaseGame
	w.emit(Response{Type: EventSetState, Receivers: w.bothPlayers(), Phase: PhaseGame})
	w.Deadline = now.Add(w.cfg.TurnTime)
	w.emit(Response{Type: EventTurnToPick, Receivers: w.bothPlayers(), CurrentTurn: w.CurrentTurn, HasTurn: true, Deadline: w.Deadline})
}

func (w *World) allPlacedAnimals() []PlacedAnimal {
	out := make([]PlacedAnimal, 0, len(w.Animals))
	for _, a := range w.Animals {
		if a.Position == nil {
			continue
		}
		out = append(out, PlacedAnimal{AnimalID: a.StatID, Owner: a.Owner, Position: *a.Position})
	}
	return out
}
