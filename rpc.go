package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/directory"
	"github.com/embergrid/animalcombat/internal/matchmaker"
)

// rpcModule bundles every unary RPC handler's shared collaborators,
// mirroring items.* RPC functions closing over a database
// manager — generalized here to a receiver struct since these handlers
// close over the engine/matchmaker/directory instead.
type rpcModule struct {
	mm        *matchmaker.Matchmaker
	directory directory.Directory
}

func trustedPlayerID(ctx context.Context) (battle.PlayerID, error) {
	raw, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || raw == "" {
		return 0, runtime.NewError("user id not found in session context", 16)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, runtime.NewError("session user id is not a valid player id", 16)
	}
	return battle.PlayerID(id), nil
}

// RpcJoinMatchmaking enqueues the caller into the matchmaker's waiting
// set, using its own rating from the Directory — never a client-supplied
// one.
func (rm *rpcModule) RpcJoinMatchmaking(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	pid, err := trustedPlayerID(ctx)
	if err != nil {
		return "", err
	}
	r, err := rm.directory.GetOwnRating(ctx, int64(pid))
	if err != nil {
		logger.Error("join_matchmaking: loading rating for %d: %v", pid, err)
		return "", runtime.NewError("could not load player rating", 13)
	}
	rm.mm.Join(pid, r)
	return "{}", nil
}

// RpcLeaveMatchmaking removes the caller from the waiting set; a no-op
// if it was not waiting.
func (rm *rpcModule) RpcLeaveMatchmaking(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	pid, err := trustedPlayerID(ctx)
	if err != nil {
		return "", err
	}
	rm.mm.Leave(pid)
	return "{}", nil
}

// RpcCreateSession mints the one Nakama match this player's connection
// will relay battle traffic through (see SessionMatch). The client joins
// the returned match id over its realtime socket exactly like any other
// Nakama match.
func (rm *rpcModule) RpcCreateSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	pid, err := trustedPlayerID(ctx)
	if err != nil {
		return "", err
	}
	matchID, err := nk.MatchCreate(ctx, "session", map[string]interface{}{
		"owner": strconv.FormatInt(int64(pid), 10),
	})
	if err != nil {
		logger.Error("create_session: %v", err)
		return "", runtime.NewError("could not create session match", 13)
	}
	resp, _ := json.Marshal(struct {
		MatchID string `json:"match_id"`
	}{MatchID: matchID})
	return string(resp), nil
}

// RpcGetOpponentProfile resolves the public profile fields a FindMatch
// event's client rendering needs for the opponent it was paired with.
func (rm *rpcModule) RpcGetOpponentProfile(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		PlayerID int64 `json:"player_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3)
	}
	profile, err := rm.directory.GetOpponentProfile(ctx, req.PlayerID)
	if err != nil {
		logger.Error("get_opponent_profile: %v", err)
		return "", runtime.NewError("could not load opponent profile", 13)
	}
	resp, _ := json.Marshal(profile)
	return string(resp), nil
}
