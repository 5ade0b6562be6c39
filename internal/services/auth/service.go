package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hexwall/skirmish/internal/dependencies/random"
	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/storage"
)

const (
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLength   = 22
)

// Service handles account registration, login, and session tokens.
// All mutating operations are serialized: the gateway loop and game engine
// workers may call concurrently at match end.
type Service struct {
	store  storage.Store
	rnd    random.Random
	logger *slog.Logger

	mu      sync.Mutex
	byToken map[model.Token]model.Username
	byUser  map[model.Username]model.Token
}

// New creates a new auth service
func New(store storage.Store, rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		rnd:     rnd,
		logger:  logger,
		byToken: make(map[model.Token]model.Username),
		byUser:  make(map[model.Username]model.Token),
	}
}

// Register creates a new account with the default rank and issues a token.
// Fails with model.ErrUsernameExists if the username is taken.
func (s *Service) Register(ctx context.Context, username model.Username, password string) (model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.store.GetCredentials(ctx, username)
	if err == nil {
		return "", model.ErrUsernameExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	creds := &model.Credentials{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.store.SaveCredentials(ctx, creds); err != nil {
		return "", err
	}
	if err := s.store.SaveRank(ctx, username, model.DefaultRank); err != nil {
		return "", err
	}

	s.logger.Info("account registered", slog.String("username", string(username)))

	return s.issueToken(username), nil
}

// Login validates credentials and issues a token. Rejected with
// model.ErrAlreadyLoggedIn while a live token exists for the username.
func (s *Service) Login(ctx context.Context, username model.Username, password string) (model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, live := s.byUser[username]; live {
		return "", model.ErrAlreadyLoggedIn
	}

	creds, err := s.store.GetCredentials(ctx, username)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return "", model.ErrIncorrectPassword
	}

	return s.issueToken(username), nil
}

// Logout invalidates a token. Unknown tokens fail with model.ErrInvalidToken
// and leave no other state touched, so a double logout is harmless.
func (s *Service) Logout(token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.byToken[token]
	if !ok {
		return model.ErrInvalidToken
	}

	delete(s.byToken, token)
	delete(s.byUser, username)
	return nil
}

// UsernameForToken resolves a live token to its owner
func (s *Service) UsernameForToken(token model.Token) (model.Username, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.byToken[token]
	return username, ok
}

// IsLoggedIn reports whether a live token exists for the username
func (s *Service) IsLoggedIn(username model.Username) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byUser[username]
	return ok
}

// Rank looks up the persisted rank for a username. Accounts with no stored
// rank report the default.
func (s *Service) Rank(ctx context.Context, username model.Username) (int, error) {
	rank, err := s.store.GetRank(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrRankNotFound) {
			return model.DefaultRank, nil
		}
		return 0, err
	}
	return rank, nil
}

// AdjustRank adds delta to a username's persisted rank. This is the only
// path that changes rank after registration.
func (s *Service) AdjustRank(ctx context.Context, username model.Username, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rank, err := s.store.GetRank(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrRankNotFound) {
			return err
		}
		rank = model.DefaultRank
	}

	if err := s.store.SaveRank(ctx, username, rank+delta); err != nil {
		return err
	}

	s.logger.Info("rank adjusted",
		slog.String("username", string(username)),
		slog.Int("delta", delta),
		slog.Int("rank", rank+delta),
	)
	return nil
}

// issueToken creates and records a token for a username. Caller holds the lock.
func (s *Service) issueToken(username model.Username) model.Token {
	token := model.Token("tok_" + s.rnd.String(tokenLength, tokenAlphabet))

	s.byToken[token] = username
	s.byUser[username] = token
	return token
}
