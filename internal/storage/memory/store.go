package memory

import (
	"context"
	"sync"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/storage"
)

// Store is an in-memory implementation of the storage interface
type Store struct {
	mu sync.RWMutex

	credentials map[model.Username]*model.Credentials
	ranks       map[model.Username]int
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		credentials: make(map[model.Username]*model.Credentials),
		ranks:       make(map[model.Username]int),
	}
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// Credential operations

func (s *Store) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[creds.Username] = creds
	return nil
}

func (s *Store) GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return creds, nil
}

// Rank operations

func (s *Store) SaveRank(ctx context.Context, username model.Username, rank int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranks[username] = rank
	return nil
}

func (s *Store) GetRank(ctx context.Context, username model.Username) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rank, ok := s.ranks[username]
	if !ok {
		return 0, model.ErrRankNotFound
	}
	return rank, nil
}

func (s *Store) ListRanks(ctx context.Context) (map[model.Username]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ranks := make(map[model.Username]int, len(s.ranks))
	for username, rank := range s.ranks {
		ranks[username] = rank
	}
	return ranks, nil
}
