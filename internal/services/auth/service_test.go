package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hexwall/skirmish/internal/dependencies/random"
	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/storage/memory"
	"github.com/hexwall/skirmish/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Store
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.service = New(s.store, random.New(), testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterIssuesToken() {
	token, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.NotEmpty(token)
	s.True(s.service.IsLoggedIn("alice"))
}

func (s *ServiceSuite) TestRegisterPersistsHashedPassword() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	creds, err := s.store.GetCredentials(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(creds.PasswordHash)
	s.NotEqual("pw1", creds.PasswordHash)
}

func (s *ServiceSuite) TestRegisterAssignsDefaultRank() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	rank, err := s.store.GetRank(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.DefaultRank, rank)
}

func (s *ServiceSuite) TestRegisterFailsIfUsernameExists() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "different")
	s.ErrorIs(err, model.ErrUsernameExists)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	token, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Logout(token))

	token, err = s.service.Login(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.NotEmpty(token)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "pw1")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	token, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Logout(token))

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrIncorrectPassword)
}

func (s *ServiceSuite) TestLoginRejectedWhileTokenLive() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "pw1")
	s.ErrorIs(err, model.ErrAlreadyLoggedIn)
}

func (s *ServiceSuite) TestTokensAreUniquePerIssue() {
	seen := make(map[model.Token]bool)
	for i := 0; i < 10; i++ {
		username := model.Username(string(rune('a' + i)))
		token, err := s.service.Register(s.ctx, username, "pw")
		s.Require().NoError(err)
		s.False(seen[token])
		seen[token] = true
	}
}

// Logout tests

func (s *ServiceSuite) TestLogoutInvalidatesToken() {
	token, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(token))

	s.False(s.service.IsLoggedIn("alice"))
	_, ok := s.service.UsernameForToken(token)
	s.False(ok)
}

func (s *ServiceSuite) TestDoubleLogoutFailsWithInvalidToken() {
	token, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(token))
	s.ErrorIs(s.service.Logout(token), model.ErrInvalidToken)
}

func (s *ServiceSuite) TestLogoutUnknownTokenFails() {
	s.ErrorIs(s.service.Logout("tok_bogus"), model.ErrInvalidToken)
}

// Rank tests

func (s *ServiceSuite) TestRankDefaultsWhenUnstored() {
	rank, err := s.service.Rank(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(model.DefaultRank, rank)
}

func (s *ServiceSuite) TestAdjustRankIsAdditive() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.Require().NoError(s.service.AdjustRank(s.ctx, "alice", 3))
	s.Require().NoError(s.service.AdjustRank(s.ctx, "alice", -1))

	rank, err := s.service.Rank(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.DefaultRank+2, rank)
}
