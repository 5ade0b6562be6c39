package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/storage"
)

// Store persists credentials and ranks as flat key:value text files.
// Credentials are appended on registration; the rank file is rewritten
// whole on any rank change.
type Store struct {
	mu sync.Mutex

	usersPath string
	ranksPath string

	credentials map[model.Username]*model.Credentials
	ranks       map[model.Username]int
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// New opens a file-backed store, creating the files if they do not exist
func New(usersPath, ranksPath string) (*Store, error) {
	s := &Store{
		usersPath:   usersPath,
		ranksPath:   ranksPath,
		credentials: make(map[model.Username]*model.Credentials),
		ranks:       make(map[model.Username]int),
	}

	if err := s.loadUsers(); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := s.loadRanks(); err != nil {
		return nil, fmt.Errorf("load ranks: %w", err)
	}

	return s, nil
}

// Credential operations

func (s *Store) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.usersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s:%s\n", creds.Username, creds.PasswordHash); err != nil {
		return err
	}

	s.credentials[creds.Username] = creds
	return nil
}

func (s *Store) GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	return s.writeRanks()
}

func (s *Store) GetRank(ctx context.Context, username model.Username) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rank, ok := s.ranks[username]
	if !ok {
		return 0, model.ErrRankNotFound
	}
	return rank, nil
}

func (s *Store) ListRanks(ctx context.Context) (map[model.Username]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ranks := make(map[model.Username]int, len(s.ranks))
	for username, rank := range s.ranks {
		ranks[username] = rank
	}
	return ranks, nil
}

// loadUsers reads username:password lines into memory
func (s *Store) loadUsers() error {
	return s.loadFile(s.usersPath, func(key, value string) {
		s.credentials[model.Username(key)] = &model.Credentials{
			Username:     model.Username(key),
			PasswordHash: value,
		}
	})
}

// loadRanks reads username:rank lines into memory, skipping unparseable ranks
func (s *Store) loadRanks() error {
	return s.loadFile(s.ranksPath, func(key, value string) {
		rank, err := strconv.Atoi(value)
		if err != nil {
			return
		}
		s.ranks[model.Username(key)] = rank
	})
}

func (s *Store) loadFile(path string, record func(key, value string)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || key == "" {
			continue
		}
		record(key, value)
	}
	return scanner.Err()
}

// writeRanks rewrites the whole rank file from memory. Caller holds the lock.
func (s *Store) writeRanks() error {
	f, err := os.Create(s.ranksPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for username, rank := range s.ranks {
		if _, err := fmt.Fprintf(w, "%s:%d\n", username, rank); err != nil {
			return err
		}
	}
	return w.Flush()
}
