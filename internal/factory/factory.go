package factory

import (
	"fmt"
	"log/slog"

	"github.com/spotcell-game/server/internal/config"
	"github.com/spotcell-game/server/internal/dependencies/random"
	"github.com/spotcell-game/server/internal/server"
	"github.com/spotcell-game/server/internal/services/auth"
	"github.com/spotcell-game/server/internal/services/lobby"
	"github.com/spotcell-game/server/internal/services/round"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
	"github.com/spotcell-game/server/internal/storage/memory"
	redisstorage "github.com/spotcell-game/server/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Directory *storage.Directory
	Sessions  *session.Registry

	AuthGateway     *auth.Gateway
	LobbyController *lobby.Controller
	RoundEngine     *round.Engine

	Server *server.Server
	Reaper *server.Reaper
}

// New wires every component from the process configuration
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	var store storage.Storage
	switch cfg.StorageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	directory := storage.NewDirectory(store)
	sessions := session.NewRegistry(logger)

	identityCfg := auth.DefaultIdentityConfig()
	identityCfg.BaseURL = cfg.IdentityBaseURL
	identityCfg.InsecureSkipVerify = cfg.IdentityInsecureSkipVerify
	identityCfg.Timeout = cfg.IdentityTimeout
	identity := auth.NewHTTPIdentityClient(identityCfg)

	authGateway := auth.New(identity, sessions, logger)
	lobbyController := lobby.NewController(directory, sessions, random.New(), logger)
	roundEngine := round.NewEngine(directory, sessions, logger)

	dispatcher := server.NewDispatcher(authGateway, lobbyController, roundEngine, logger)
	srv := server.New(cfg.ListenAddr, dispatcher, lobbyController, sessions, logger)
	reaper := server.NewReaper(directory, cfg.ReaperInterval, logger)

	return &App{
		Directory:       directory,
		Sessions:        sessions,
		AuthGateway:     authGateway,
		LobbyController: lobbyController,
		RoundEngine:     roundEngine,
		Server:          srv,
		Reaper:          reaper,
	}, nil
}
