// Package session implements the per-connected-player fan-out glue from
// one Session per connection, forwarding trusted commands
// into the battle engine and matchmaker, and exposing the engine's
// addressed responses as a channel for the RPC layer to drain.
//
// Grounded on original_source/src/services/battle.rs's battle_messages
// handler: a tokio::select! between the inbound client stream and
// battle_rx.resubscribe(), filtering on receivers.contains(&player_id).
// Here the filter is already applied by battle.Hub (one buffered channel
// per subscriber, addressed by Publish), so Session only has to drain
// its own channel — translated from tokio broadcast+filter to a Go
// channel that is already narrowed to this player.
package session

import (
	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/matchmaker"
	"github.com/embergrid/animalcombat/internal/rating"
)

// Session is the per-connection glue between an authenticated player and
// the matchmaker/battle engine.
type Session struct {
	player     battle.PlayerID
	engine     *battle.Engine
	mm         *matchmaker.Matchmaker
	responses  <-chan battle.Response
	matchFound <-chan matchmaker.MatchFound
}

// New opens a Session for player, subscribing it to both the engine's
// broadcast hub and the matchmaker's per-player MatchFound channel. Close
// must be called when the connection ends. mm may be nil for tests that
// never exercise matchmaking.
func New(player battle.PlayerID, engine *battle.Engine, mm *matchmaker.Matchmaker) *Session {
	s := &Session{
		player:    player,
		engine:    engine,
		mm:        mm,
		responses: engine.Subscribe(player),
	}
	if mm != nil {
		s.matchFound = mm.Subscribe(player)
	}
	return s
}

// Responses is the stream of battle.Response events addressed to this
// player; the RPC layer drains it into the outbound BattleMessages
// stream.
func (s *Session) Responses() <-chan battle.Response { return s.responses }

// MatchFound is the stream of matchmaker pairing notifications addressed
// to this player; drained by the same relay loop that drains Responses
// so a client only ever needs the one connection to learn it has been
// matched, get the map, and know whether to render inverted.
func (s *Session) MatchFound() <-chan matchmaker.MatchFound { return s.matchFound }

// Close unsubscribes this player's connection from both the engine hub
// and the matchmaker. The world it was part of is unaffected:
// disconnecting only drops the socket, not the world.
func (s *Session) Close() {
	s.engine.Unsubscribe(s.player)
	if s.mm != nil {
		s.mm.Unsubscribe(s.player)
	}
}

// JoinMatchmaking and LeaveMatchmaking forward to the matchmaker with
// the trusted player id — never one supplied by the caller.
func (s *Session) JoinMatchmaking(r rating.Rating) { s.mm.Join(s.player, r) }
func (s *Session) LeaveMatchmaking()               { s.mm.Leave(s.player) }

// Ready, Pick, Place, Move, Use, Damage, and EndTurn translate one
// inbound ClientBattleMessage variant into a battle.Command stamped with
// this session's trusted player id, and forward it to the engine.
func (s *Session) Ready() {
	s.submit(battle.Command{Kind: battle.CmdReady, Player: s.player})
}

func (s *Session) Pick(animalID string) {
	s.submit(battle.Command{Kind: battle.CmdPick, Player: s.player, AnimalID: animalID})
}

func (s *Session) Place(entries []battle.PlacementEntry) {
	s.submit(battle.Command{Kind: battle.CmdPlace, Player: s.player, Placements: entries})
}

func (s *Session) Move(target battle.Position) {
	s.submit(battle.Command{Kind: battle.CmdMove, Player: s.player, Target: target})
}

func (s *Session) Use(animalID string) {
	s.submit(battle.Command{Kind: battle.CmdUse, Player: s.player, AnimalID: animalID})
}

func (s *Session) Damage(target battle.Position) {
	s.submit(battle.Command{Kind: battle.CmdDamage, Player: s.player, Target: target})
}

func (s *Session) EndTurn() {
	s.submit(battle.Command{Kind: battle.CmdEndTurn, Player: s.player})
}

func (s *Session) submit(cmd battle.Command) {
	s.engine.Submit(cmd)
}
