package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/matchmaker"
	"github.com/embergrid/animalcombat/internal/session"
)

// sessionMatchModule is the factory every session match instance shares;
// RegisterMatch only gives us a (ctx, logger, db, nk) -> (Match, error)
// closure, so the engine and matchmaker are captured here once at
// InitModule time rather than threaded through match state.
type sessionMatchModule struct {
	engine *battle.Engine
	mm     *matchmaker.Matchmaker
}

func (f *sessionMatchModule) new(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &SessionMatch{engine: f.engine, mm: f.mm}, nil
}

// SessionMatch is a one-presence-only relay: it owns no game state of its
// own, translating MatchData frames into internal/session.Session calls
// and draining that Session's Responses channel back out over the
// socket. The actual battle/matchmaking state lives in the engine and
// matchmaker goroutines, grounded on original_source/src/services/
// battle.rs's per-connection duplex relay, adapted from a gRPC stream to
// a Nakama realtime match (see game.go's MatchJoin/MatchLoop shape for
// the hosting convention this follows).
type SessionMatch struct {
	engine *battle.Engine
	mm     *matchmaker.Matchmaker
}

// sessionHandle is the match's per-instance state: the one session it
// owns, and the presence it is allowed to exchange data with.
type sessionHandle struct {
	session  *session.Session
	presence runtime.Presence
	owner    string
}

const sessionMatchTickRate = 10

func (m *SessionMatch) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	ownerStr, _ := params["owner"].(string)
	playerID, err := strconv.ParseInt(ownerStr, 10, 64)
	if err != nil {
		logger.Error("session match: invalid owner param %q: %v", ownerStr, err)
		return nil, sessionMatchTickRate, ""
	}

	sess := session.New(battle.PlayerID(playerID), m.engine, m.mm)
	state := &sessionHandle{session: sess, owner: ownerStr}
	return state, sessionMatchTickRate, "battle_session"
}

func (m *SessionMatch) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	h, ok := state.(*sessionHandle)
	if !ok {
		return nil, false, "Internal server error"
	}
	if presence.GetUserId() != h.owner {
		return state, false, "this session belongs to another player"
	}
	if h.presence != nil {
		return state, false, "session already has a connected presence"
	}
	return state, true, ""
}

func (m *SessionMatch) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	h, ok := state.(*sessionHandle)
	if !ok || len(presences) == 0 {
		return state
	}
	h.presence = presences[0]
	return h
}

func (m *SessionMatch) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	h, ok := state.(*sessionHandle)
	if !ok {
		return state
	}
	// a disconnect does not end the match the player is in,
	// so the underlying battle Session stays subscribed — only the
	// socket-facing presence is dropped here.
	h.presence = nil
	return h
}

func (m *SessionMatch) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	h, ok := state.(*sessionHandle)
	if ok {
		h.session.Close()
	}
	return state
}

func (m *SessionMatch) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func (m *SessionMatch) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	h, ok := state.(*sessionHandle)
	if !ok {
		logger.Error("session match: state is not a sessionHandle")
		return nil
	}

	for _, msg := range messages {
		var cm clientMessage
		if err := json.Unmarshal(msg.GetData(), &cm); err != nil {
			logger.Warn("session match: malformed client message: %v", err)
			continue
		}
		if err := cm.applyTo(h); err != nil {
			logger.Warn("session match: %v", err)
		}
	}

	if h.presence != nil {
		m.drainResponses(h, dispatcher, logger)
		m.drainMatchFound(h, dispatcher, logger)
	}
	return h
}

// drainResponses flushes every buffered battle.Response to this match's
// presence without blocking the tick loop.
func (m *SessionMatch) drainResponses(h *sessionHandle, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for {
		select {
		case r, ok := <-h.session.Responses():
			if !ok {
				return
			}
			data, err := encodeServerMessage(r)
			if err != nil {
				logger.Error("session match: encoding response: %v", err)
				continue
			}
			if err := dispatcher.BroadcastMessage(OpCodeResponse, data, []runtime.Presence{h.presence}, nil, true); err != nil {
				logger.Error("session match: broadcast failed: %v", err)
			}
		default:
			return
		}
	}
}

// drainMatchFound flushes every buffered matchmaker.MatchFound to this
// match's presence, the same non-blocking way drainResponses does for
// battle responses — one socket carries both.
func (m *SessionMatch) drainMatchFound(h *sessionHandle, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	ch := h.session.MatchFound()
	if ch == nil {
		return
	}
	for {
		select {
		case mf, ok := <-ch:
			if !ok {
				return
			}
			data, err := encodeMatchFound(mf)
			if err != nil {
				logger.Error("session match: encoding match found: %v", err)
				continue
			}
			if err := dispatcher.BroadcastMessage(OpCodeMatchFound, data, []runtime.Presence{h.presence}, nil, true); err != nil {
				logger.Error("session match: broadcast failed: %v", err)
			}
		default:
			return
		}
	}
}
