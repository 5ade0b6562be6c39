package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/hexwall/skirmish/internal/api"
	"github.com/hexwall/skirmish/internal/config"
	"github.com/hexwall/skirmish/internal/dependencies/clock"
	"github.com/hexwall/skirmish/internal/dependencies/random"
	"github.com/hexwall/skirmish/internal/gateway"
	"github.com/hexwall/skirmish/internal/services/auth"
	"github.com/hexwall/skirmish/internal/services/match"
	"github.com/hexwall/skirmish/internal/services/matchmaker"
	"github.com/hexwall/skirmish/internal/storage"
	filestorage "github.com/hexwall/skirmish/internal/storage/file"
	"github.com/hexwall/skirmish/internal/storage/memory"
	redisstorage "github.com/hexwall/skirmish/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Store storage.Store

	Clock  clock.Clock
	Random random.Random

	AuthService *auth.Service
	Matchmaker  *matchmaker.Matchmaker
	Pool        *match.Pool
	Gateway     *gateway.Gateway
	AdminRouter *api.Server
}

// New creates an application with all dependencies wired from configuration
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	rnd := random.New()

	authService := auth.New(store, rnd, logger)

	mm := matchmaker.New(matchmaker.Config{
		MaxGames:       cfg.MaxGames,
		PlayersPerGame: cfg.PlayersPerGame,
		Window:         cfg.MMRWindow,
	}, logger)

	pool := match.NewPool(cfg.MaxGames, logger)

	matchCfg := match.Config{
		PlayersPerGame: cfg.PlayersPerGame,
		EndThreshold:   cfg.EndThreshold,
	}

	gw := gateway.New(gateway.Config{
		Addr:          cfg.Addr,
		RelaxInterval: cfg.RelaxInterval,
	}, authService, mm, pool, matchCfg, clk, rnd, logger)

	adminCfg := api.DefaultServerConfig()
	adminCfg.Addr = cfg.AdminAddr
	adminRouter := api.NewServer(api.NewRouter(api.RouterConfig{
		Logger: logger,
		Status: gw,
		Store:  store,
	}), adminCfg, logger)

	return &App{
		Store:       store,
		Clock:       clk,
		Random:      rnd,
		AuthService: authService,
		Matchmaker:  mm,
		Pool:        pool,
		Gateway:     gw,
		AdminRouter: adminRouter,
	}, nil
}

func newStore(cfg config.Config) (storage.Store, error) {
	switch cfg.StorageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		return filestorage.New(cfg.UsersFile, cfg.RanksFile)
	case StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("SKIRMISH_REDIS_URL required when storage type is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg)
	default:
		return nil, errors.New("invalid storage type: must be 'memory', 'file', or 'redis'")
	}
}
