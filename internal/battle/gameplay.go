package battle

import (
	"math"
	"sort"
	"time"

	"github.com/embergrid/animalcombat/internal/catalog"
)

// gameplay runs the Game-phase-only handlers: use_animal, move_animal,
// damage, end_turn, turn_timeout. A no-op outside the Game phase.
func (w *World) gameplay(cmds []Command, now time.Time) {
	if w.Phase != PhaseGame {
		return
	}
	for _, c := range cmds {
		switch c.Kind {
		case CmdUse:
			w.handleUse(c.Player, c.AnimalID)
		case CmdMove:
			w.handleMove(c.Player, c.Target, now)
		case CmdDamage:
			w.handleDamage(c.Player, c.Target)
		case CmdEndTurn:
			w.handleEndTurnCmd(c.Player, now)
		default:
			w.emitError(c.Player, KindOutOfTurn, "command not valid during game phase")
		}
	}
	if w.Phase == PhaseGame && w.deadlineExpired(now) {
		w.doEndTurn(now)
	}
}

func (w *World) handleUse(pid PlayerID, animalID string) {
	if pid != w.CurrentTurn {
		w.emitError(pid, KindOutOfTurn, "not your turn")
		return
	}
	if w.usedAnimalOf(pid) != nil {
		w.emitError(pid, KindOutOfTurn, "an animal is already active this turn")
		return
	}
	a, ok := w.Animals[animalID]
	if !ok || a.Owner != pid || a.Flags&FlagUsed != 0 || a.HP <= 0 {
		w.emitError(pid, KindUnknown, "animal is not available to use")
		return
	}
	a.Flags |= FlagUsed
}

// axisPath validates an axis-aligned move and returns the number of
// squares traversed. Every traversed cell, destination included, must be
// free of obstacles; only the destination must be free of other animals.
// Move-to-own-cell
// (squares=0) is accepted as a no-op, a resolved open
// question.
func (w *World) axisPath(origin, dest Position) (int, bool) {
	var squares, dx, dy int
	switch {
	case origin == dest:
		return 0, true
	case origin.X == dest.X:
		squares = abs(dest.Y - origin.Y)
		dy = sign(dest.Y - origin.Y)
	case origin.Y == dest.Y:
		squares = abs(dest.X - origin.X)
		dx = sign(dest.X - origin.X)
	default:
		return 0, false
	}

	x, y := origin.X, origin.Y
	for i := 0; i < squares; i++ {
		x += dx
		y += dy
		if w.Map.Blocked(x, y) {
			return 0, false
		}
	}
	if w.animalAt(dest) != nil {
		return 0, false
	}
	return squares, true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func (w *World) handleMove(pid PlayerID, target Position, now time.Time) {
	if pid != w.CurrentTurn {
		w.emitError(pid, KindOutOfTurn, "not your turn")
		return
	}
	a := w.usedAnimalOf(pid)
	if a == nil {
		w.emitError(pid, KindOutOfTurn, "no active animal")
		return
	}
	dest := w.invert(pid, target)
	if !catalog.InBounds(dest.X, dest.Y) {
		w.emitError(pid, KindInvalidCommand, "target is out of bounds")
		return
	}
	squares, ok := w.axisPath(*a.Position, dest)
	if !ok {
		w.emitError(pid, KindInvalidCommand, "move must be axis-aligned with a clear destination")
		return
	}
	if squares > a.MobilityRemaining {
		w.emitError(pid, KindInvalidCommand, "not enough mobility remaining")
		return
	}
	a.MobilityRemaining -= squares
	a.Position = &dest

	sq := squares
	w.emit(Response{Type: EventMoved, Receivers: []PlayerID{pid}, PlayerID: pid, AnimalID: a.StatID, Position: dest, Squares: &sq})
	w.emit(Response{Type: EventMoved, Receivers: []PlayerID{w.other(pid)}, PlayerID: pid, AnimalID: a.StatID, Position: dest})
}

func (w *World) handleDamage(pid PlayerID, target Position) {
	if pid != w.CurrentTurn {
		w.emitError(pid, KindOutOfTurn, "not your turn")
		return
	}
	a := w.usedAnimalOf(pid)
	if a == nil {
		w.emitError(pid, KindOutOfTurn, "no active animal")
		return
	}
	if a.Flags&FlagHit != 0 {
		w.emitError(pid, KindOutOfTurn, "animal has already attacked this turn")
		return
	}
	dest := w.invert(pid, target)
	if manhattan(*a.Position, dest) != 1 {
		w.emitError(pid, KindInvalidCommand, "target must be orthogonally adjacent")
		return
	}
	defender := w.animalAt(dest)
	if defender == nil || defender.Owner == pid || defender.HP <= 0 {
		w.emitError(pid, KindUnknown, "no enemy animal at target")
		return
	}

	dmg := int(math.Floor((1 - float64(defender.ResistancePct)/100) * float64(a.Damage)))
	if dmg < 0 {
		dmg = 0
	}
	if dmg > defender.HP {
		dmg = defender.HP
	}
	defender.HP -= dmg
	a.Flags |= FlagHit

	w.emit(Response{Type: EventDamaged, Receivers: w.bothPlayers(), PlayerID: pid, DamagerAnimalID: a.StatID, DamagedAnimalID: defender.StatID, Damage: dmg})
}

func (w *World) handleEndTurnCmd(pid PlayerID, now time.Time) {
	if pid != w.CurrentTurn {
		w.emitError(pid, KindOutOfTurn, "not your turn")
		return
	}
	w.doEndTurn(now)
}

func (w *World) doEndTurn(now time.Time) {
	for _, a := range w.Animals {
		if a.Owner == w.CurrentTurn && a.Flags&FlagUsed != 0 {
			a.Flags = 0
			a.MobilityRemaining = a.Mobility
		}
	}
	w.CurrentTurn = w.other(w.CurrentTurn)
	w.Deadline = now.Add(w.cfg.TurnTime)
	w.emit(Response{Type: EventTurnToPick, Receivers: w.bothPlayers(), CurrentTurn: w.CurrentTurn, HasTurn: true, Deadline: w.Deadline})
}

// endTurnSweep is the pipeline's fourth stage: despawn every animal at
// hp<=0 and broadcast Dead, then resolve the victory condition: a player
// left with no animals loses, and a mutual wipe is a draw.
func (w *World) endTurnSweep(now time.Time) {
	if w.Phase != PhaseGame {
		return
	}
	var dead []string
	for id, a := range w.Animals {
		if a.HP <= 0 {
			dead = append(dead, id)
		}
	}
	if len(dead) == 0 {
		return
	}
	sort.Strings(dead)
	for _, id := range dead {
		delete(w.Animals, id)
		w.emit(Response{Type: EventDead, Receivers: w.bothPlayers(), AnimalID: id})
	}
	w.checkVictory()
}

func (w *World) checkVictory() {
	p1Alive := w.livingCount(w.Player1)
	p2Alive := w.livingCount(w.Player2)
	if p1Alive > 0 && p2Alive > 0 {
		return
	}
	w.Phase = PhaseTerminal
	switch {
	case p1Alive == 0 && p2Alive == 0:
		w.emit(Response{Type: EventGameOver, Receivers: w.bothPlayers(), Draw: true})
	case p1Alive == 0:
		winner := w.Player2
		w.emit(Response{Type: EventGameOver, Receivers: w.bothPlayers(), Winner: &winner})
	default:
		winner := w.Player1
		w.emit(Response{Type: EventGameOver, Receivers: w.bothPlayers(), Winner: &winner})
	}
}

