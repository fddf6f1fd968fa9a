package battle

import "time"

// preparations runs the Pick/Placement-only handlers: pick_timeout,
// ready, pick, place, place_timeout. A no-op outside those two phases.
func (w *World) preparations(cmds []Command, now time.Time) {
	switch w.Phase {
	case PhasePick:
		for _, c := range cmds {
			switch c.Kind {
			case CmdReady:
				w.handleReady(c.Player, now)
			case CmdPick:
				w.handlePick(c.Player, c.AnimalID, now)
			default:
				w.emitError(c.Player, KindOutOfTurn, "command not valid during pick phase")
			}
		}
		if w.Phase == PhasePick && w.bothReady() && w.pickCount < w.cfg.PickCount && w.deadlineExpired(now) {
			w.handlePickTimeout(now)
		}
	case PhasePlacement:
		for _, c := range cmds {
			if c.Kind == CmdPlace {
				w.handlePlace(c.Player, c.Placements, now)
			} else {
				w.emitError(c.Player, KindOutOfTurn, "command not valid during placement phase")
			}
		}
		if w.Phase == PhasePlacement && w.deadlineExpired(now) && w.hasUnplaced() {
			w.handlePlaceTimeout(now)
		}
	}
}

func (w *World) hasUnplaced() bool {
	return len(w.unplacedOwnedBy(w.Player1)) > 0 || len(w.unplacedOwnedBy(w.Player2)) > 0
}

func (w *World) handleReady(pid PlayerID, now time.Time) {
	alreadyBoth := w.bothReady()
	w.Ready[pid] = true
	if !alreadyBoth && w.bothReady() {
		w.Deadline = now.Add(w.cfg.PickTime)
		w.emit(Response{Type: EventTurnToPick, Receivers: w.bothPlayers(), CurrentTurn: w.CurrentTurn, HasTurn: true, Deadline: w.Deadline})
	}
}

func (w *World) validPick(animalID string) bool {
	if w.pickCount >= w.cfg.PickCount {
		return false
	}
	if _, ok := w.registry.Animal(animalID); !ok {
		return false
	}
	if _, taken := w.Animals[animalID]; taken {
		return false
	}
	return true
}

func (w *World) handlePick(pid PlayerID, animalID string, now time.Time) {
	if pid != w.CurrentTurn {
		w.emitError(pid, KindOutOfTurn, "animal is not available to pick")
		return
	}
	if !w.validPick(animalID) {
		w.emitError(pid, KindUnknown, "animal is not available to pick")
		return
	}
	w.spawnPick(pid, animalID)
	w.emit(Response{Type: EventPicked, Receivers: w.bothPlayers(), AnimalID: animalID, PlayerID: pid})
	w.advancePickTurn(now)
}

// handlePickTimeout synthesizes a pick for current_turn from a uniformly
// random still-available catalog animal, per the pick_timeout
// rule.
func (w *World) handlePickTimeout(now time.Time) {
	taken := make(map[string]bool, len(w.Animals))
	for id := range w.Animals {
		taken[id] = true
	}
	id, err := w.registry.RandomAvailableAnimal(w.rnd, taken)
	if err != nil {
		w.logger.Error("pick_timeout: %v", err)
		return
	}
	w.spawnPick(w.CurrentTurn, id)
	w.emit(Response{Type: EventPicked, Receivers: w.bothPlayers(), AnimalID: id, PlayerID: w.CurrentTurn})
	w.advancePickTurn(now)
}

func (w *World) spawnPick(pid PlayerID, animalID string) {
	stat, _ := w.registry.Animal(animalID)
	w.Animals[animalID] = &AnimalInstance{
		StatID:            animalID,
		Owner:             pid,
		HP:                stat.HP,
		Damage:            stat.Damage,
		ResistancePct:     stat.ResistancePct,
		Mobility:          stat.Mobility,
		MobilityRemaining: stat.Mobility,
	}
	w.pickCount++
}

// advancePickTurn applies the ABBA turn order after a pick lands: first
// pick by current_turn, then the opponent picks two, then current picks
// two, then the opponent picks one. Worked through against the worked
// example scenario, that resolves to a flip after the 1st, 3rd, and 5th pick
// (odd running totals) — the reverse of the parenthetical "if the pick
// count just became even" in the original wording, which the enumerated ABBA
// example (and the ownership-count invariant) take priority over.
func (w *World) advancePickTurn(now time.Time) {
	if w.pickCount >= w.cfg.PickCount {
		w.transitionToPlacement(now)
		return
	}
	if w.pickCount%2 == 1 {
		w.CurrentTurn = w.other(w.CurrentTurn)
	}
	w.Deadline = now.Add(w.cfg.PickTime)
	w.emit(Response{Type: EventTurnToPick, Receivers: w.bothPlayers(), CurrentTurn: w.CurrentTurn, HasTurn: true, Deadline: w.Deadline})
}

func (w *World) transitionToPlacement(now time.Time) {
	w.Phase = PhasePlacement
	w.emit(Response{Type: EventSetState, Receivers: w.bothPlayers(), Phase: PhasePlacement})
	w.Deadline = now.Add(w.cfg.PlaceTime)
	w.emit(Response{Type: EventTurnToPick, Receivers: w.bothPlayers(), HasTurn: false, Deadline: w.Deadline})
}
