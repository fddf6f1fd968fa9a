package main

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embergrid/animalcombat/internal/ability"
	"github.com/embergrid/animalcombat/internal/auth"
	"github.com/embergrid/animalcombat/internal/battle"
	"github.com/embergrid/animalcombat/internal/catalog"
	"github.com/embergrid/animalcombat/internal/config"
	"github.com/embergrid/animalcombat/internal/directory"
	"github.com/embergrid/animalcombat/internal/matchmaker"
)

// InitModule wires the core's two long-lived goroutines (the battle
// engine and the matchmaker), the session relay match type, and the
// handful of unary RPCs this core exposes, following the original server's
// RegisterMatch/RegisterRpc sequencing in its own InitModule.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		return err
	}

	maps, err := catalog.NewMapLoader(logger, cfg.MapDir).LoadAll()
	if err != nil {
		logger.Error("loading maps: %v", err)
		return err
	}
	animals, err := catalog.NewAnimalLoader(logger, cfg.AnimalDir).LoadAll()
	if err != nil {
		logger.Error("loading animals: %v", err)
		return err
	}
	registry := catalog.NewRegistry(maps, animals)

	if _, err := ability.Load(logger, cfg.AbilityScriptDir, animals); err != nil {
		logger.Error("loading ability scripts: %v", err)
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connecting to directory database: %v", err)
		return err
	}
	dir := directory.NewPostgresDirectory(pool)

	engine := battle.NewEngine(logger, registry, cfg)
	mm := matchmaker.New(logger, registry, engine, dir, cfg.TickInterval)

	// The engine and matchmaker loops outlive InitModule: they run for
	// the life of the process, driven only by their own channels and
	// ticker.
	go engine.Run(context.Background())
	go mm.Run(context.Background())

	matches := &sessionMatchModule{engine: engine, mm: mm}
	if err := initializer.RegisterMatch("session", matches.new); err != nil {
		logger.Error("registering session match: %v", err)
		return err
	}

	rm := &rpcModule{mm: mm, directory: dir}
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		"battle_join_matchmaking":  rm.RpcJoinMatchmaking,
		"battle_leave_matchmaking": rm.RpcLeaveMatchmaking,
		"battle_create_session":    rm.RpcCreateSession,
		"battle_opponent_profile":  rm.RpcGetOpponentProfile,
	}
	for name, fn := range rpcs {
		if err := initializer.RegisterRpc(name, fn); err != nil {
			logger.Error("registering rpc %s: %v", name, err)
			return err
		}
	}

	if err := initializer.RegisterBeforeAuthenticateCustom(beforeAuthenticateCustom(cfg)); err != nil {
		logger.Error("registering before-authenticate hook: %v", err)
		return err
	}

	logger.Info("module loaded: %d maps, %d animals, battle engine and matchmaker running", len(maps), len(animals))
	return nil
}

// beforeAuthenticateCustom rewrites the incoming custom-auth id — the
// auth boundary between the client and this core — from the external
// JWT's integer player id into its decimal-string form before Nakama
// mints its own session, so every later RUNTIME_CTX_USER_ID is exactly
// that string, parseable straight back into a battle.PlayerID.
func beforeAuthenticateCustom(cfg config.Config) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, *api.AuthenticateCustomRequest) (*api.AuthenticateCustomRequest, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, in *api.AuthenticateCustomRequest) (*api.AuthenticateCustomRequest, error) {
		token := in.Account.Id
		playerID, err := auth.Parse(token, cfg.JWTSecret)
		if err != nil {
			return nil, runtime.NewError("invalid or expired token", 16)
		}
		in.Account.Id = strconv.FormatInt(playerID, 10)
		return in, nil
	}
}
