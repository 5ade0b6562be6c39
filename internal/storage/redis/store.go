package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/storage"
)

// Store is a Redis-backed implementation of the storage interface.
// Credentials live in one string key per account; ranks live in a single
// hash so the leaderboard can be read in one round trip.
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis store
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// Credential operations

func (s *Store) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	return s.client.Set(ctx, credentialsKey(creds.Username), creds.PasswordHash, 0).Err()
}

func (s *Store) GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error) {
	hash, err := s.client.Get(ctx, credentialsKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return &model.Credentials{
		Username:     username,
		PasswordHash: hash,
	}, nil
}

// Rank operations

func (s *Store) SaveRank(ctx context.Context, username model.Username, rank int) error {
	return s.client.HSet(ctx, ranksKey(), string(username), rank).Err()
}

func (s *Store) GetRank(ctx context.Context, username model.Username) (int, error) {
	value, err := s.client.HGet(ctx, ranksKey(), string(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, model.ErrRankNotFound
		}
		return 0, err
	}
	return strconv.Atoi(value)
}

func (s *Store) ListRanks(ctx context.Context) (map[model.Username]int, error) {
	values, err := s.client.HGetAll(ctx, ranksKey()).Result()
	if err != nil {
		return nil, err
	}

	ranks := make(map[model.Username]int, len(values))
	for username, value := range values {
		rank, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		ranks[model.Username(username)] = rank
	}
	return ranks, nil
}
