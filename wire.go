package main

import (
	"encoding/json"
	"fmt"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/matchmaker"
)

// clientMessage is the one JSON shape every inbound session match frame
// takes; kind selects which fields are meaningful, mirroring the
// teacher's input_processor.go flat-payload convention.
type clientMessage struct {
	Kind       string          `json:"kind"`
	AnimalID   string          `json:"animal_id,omitempty"`
	Target     *wirePosition   `json:"target,omitempty"`
	Placements []wirePlacement `json:"placements,omitempty"`
}

type wirePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type wirePlacement struct {
	AnimalID string       `json:"animal_id"`
	Position wirePosition `json:"position"`
}

// applyTo dispatches a decoded clientMessage onto the session that owns
// this connection.
func (m clientMessage) applyTo(s *sessionHandle) error {
	switch m.Kind {
	case "ready":
		s.session.Ready()
	case "pick":
		s.session.Pick(m.AnimalID)
	case "place":
		entries := make([]battle.PlacementEntry, len(m.Placements))
		for i, p := range m.Placements {
			entries[i] = battle.PlacementEntry{
				AnimalID: p.AnimalID,
				Position: battle.Position{X: p.Position.X, Y: p.Position.Y},
			}
		}
		s.session.Place(entries)
	case "move":
		if m.Target == nil {
			return fmt.Errorf("wire: move requires a target")
		}
		s.session.Move(battle.Position{X: m.Target.X, Y: m.Target.Y})
	case "use":
		s.session.Use(m.AnimalID)
	case "damage":
		if m.Target == nil {
			return fmt.Errorf("wire: damage requires a target")
		}
		s.session.Damage(battle.Position{X: m.Target.X, Y: m.Target.Y})
	case "end_turn":
		s.session.EndTurn()
	default:
		return fmt.Errorf("wire: unknown message kind %q", m.Kind)
	}
	return nil
}

// serverMessage is the wire form of a battle.Response. Receivers is
// dropped: the session match is already addressed to exactly one player,
// so Hub has done the filtering before this is ever built.
type serverMessage struct {
	Type string `json:"type"`

	CurrentTurn *int64 `json:"current_turn,omitempty"`
	HasTurn     *bool  `json:"has_turn,omitempty"`
	Deadline    *int64 `json:"deadline,omitempty"`

	PlayerID *int64 `json:"player_id,omitempty"`
	AnimalID string `json:"animal_id,omitempty"`

	Phase string `json:"phase,omitempty"`

	Animals []wirePlacedAnimal `json:"animals,omitempty"`

	Position *wirePosition `json:"position,omitempty"`
	Squares  *int          `json:"squares,omitempty"`

	DamagerAnimalID string `json:"damager_animal_id,omitempty"`
	DamagedAnimalID string `json:"damaged_animal_id,omitempty"`
	Damage          *int   `json:"damage,omitempty"`

	Winner *int64 `json:"winner,omitempty"`
	Draw   bool   `json:"draw,omitempty"`

	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

type wirePlacedAnimal struct {
	AnimalID string       `json:"animal_id"`
	Owner    int64        `json:"owner"`
	Position wirePosition `json:"position"`
}

// toWire translates an engine Response into its addressed player's wire
// payload. The caller has already confirmed this Response is meant for
// the single presence this session match serves.
func toWire(r battle.Response) serverMessage {
	out := serverMessage{Type: string(r.Type)}

	switch r.Type {
	case battle.EventTurnToPick:
		ct := int64(r.CurrentTurn)
		out.CurrentTurn = &ct
		hasTurn := r.HasTurn
		out.HasTurn = &hasTurn
		dl := r.Deadline.Unix()
		out.Deadline = &dl
	case battle.EventPicked:
		pid := int64(r.PlayerID)
		out.PlayerID = &pid
		out.AnimalID = r.AnimalID
	case battle.EventSetState:
		out.Phase = string(r.Phase)
	case battle.EventPlaced:
		out.Animals = make([]wirePlacedAnimal, len(r.Animals))
		for i, a := range r.Animals {
			out.Animals[i] = wirePlacedAnimal{
				AnimalID: a.AnimalID,
				Owner:    int64(a.Owner),
				Position: wirePosition{X: a.Position.X, Y: a.Position.Y},
			}
		}
	case battle.EventMoved:
		pid := int64(r.PlayerID)
		out.PlayerID = &pid
		out.AnimalID = r.AnimalID
		out.Position = &wirePosition{X: r.Position.X, Y: r.Position.Y}
		out.Squares = r.Squares
	case battle.EventDamaged:
		pid := int64(r.PlayerID)
		out.PlayerID = &pid
		out.DamagerAnimalID = r.DamagerAnimalID
		out.DamagedAnimalID = r.DamagedAnimalID
		dmg := r.Damage
		out.Damage = &dmg
	case battle.EventDead:
		out.AnimalID = r.AnimalID
	case battle.EventGameOver:
		if r.Winner != nil {
			w := int64(*r.Winner)
			out.Winner = &w
		}
		out.Draw = r.Draw
	case battle.EventError:
		out.ErrorCode = r.ErrKind.Code()
		out.Message = r.Message
	}
	return out
}

func encodeServerMessage(r battle.Response) ([]byte, error) {
	return json.Marshal(toWire(r))
}

// wireMatchFound is the wire form of a matchmaker.MatchFound: everything a
// client needs to go straight from this notification to
// battle_create_session, including whether to render its board inverted.
type wireMatchFound struct {
	OpponentID          int64   `json:"opponent_id"`
	OpponentDisplayName string  `json:"opponent_display_name"`
	OpponentClanName    string  `json:"opponent_clan_name"`
	OpponentGlory       float64 `json:"opponent_glory"`
	Map                 string  `json:"map"`
	Invert              bool    `json:"invert"`
}

func toWireMatchFound(mf matchmaker.MatchFound) wireMatchFound {
	return wireMatchFound{
		OpponentID:          int64(mf.OpponentID),
		OpponentDisplayName: mf.OpponentDisplayName,
		OpponentClanName:    mf.OpponentClanName,
		OpponentGlory:       mf.OpponentGlory,
		Map:                 mf.Map.Name,
		Invert:              mf.Invert,
	}
}

func encodeMatchFound(mf matchmaker.MatchFound) ([]byte, error) {
	return json.Marshal(toWireMatchFound(mf))
}
