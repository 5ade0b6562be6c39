package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, loaded from the environment
type Config struct {
	// Addr is the TCP listen address for the game gateway
	Addr string `env:"SKIRMISH_ADDR" envDefault:":8080"`
	// AdminAddr is the listen address for the admin HTTP API
	AdminAddr string `env:"SKIRMISH_ADMIN_ADDR" envDefault:":8081"`

	// MaxGames is the number of slots (simultaneous matches)
	MaxGames int `env:"SKIRMISH_MAX_GAMES" envDefault:"10"`
	// PlayersPerGame is the fixed slot capacity; must be even
	PlayersPerGame int `env:"SKIRMISH_PLAYERS_PER_GAME" envDefault:"2"`
	// MMRWindow is the rank-band half-width and relaxation step
	MMRWindow int `env:"SKIRMISH_MMR_WINDOW" envDefault:"100"`
	// RelaxInterval is how often stalled slots widen their bands
	RelaxInterval time.Duration `env:"SKIRMISH_RELAX_INTERVAL" envDefault:"10s"`
	// EndThreshold is the number of resolved actions that ends a match
	EndThreshold int `env:"SKIRMISH_END_THRESHOLD" envDefault:"4"`

	// StorageType selects the storage backend: memory, file, or redis
	StorageType string `env:"SKIRMISH_STORAGE_TYPE" envDefault:"file"`
	// UsersFile and RanksFile back the file storage type
	UsersFile string `env:"SKIRMISH_USERS_FILE" envDefault:"users.txt"`
	RanksFile string `env:"SKIRMISH_RANKS_FILE" envDefault:"ranks.txt"`
	// RedisURL backs the redis storage type
	RedisURL string `env:"SKIRMISH_REDIS_URL" envDefault:""`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the matchmaker cannot run with
func (c Config) Validate() error {
	if c.MaxGames < 1 {
		return fmt.Errorf("max games must be at least 1, got %d", c.MaxGames)
	}
	if c.PlayersPerGame < 2 || c.PlayersPerGame%2 != 0 {
		return fmt.Errorf("players per game must be even and at least 2, got %d", c.PlayersPerGame)
	}
	if c.MMRWindow < 0 {
		return fmt.Errorf("mmr window must not be negative, got %d", c.MMRWindow)
	}
	if c.EndThreshold < 1 {
		return fmt.Errorf("end threshold must be at least 1, got %d", c.EndThreshold)
	}
	return nil
}
