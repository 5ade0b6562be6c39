package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/hexwall/skirmish/internal/model"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *StoreSuite) TestCredentialsRoundTrip() {
	creds := &model.Credentials{Username: "alice", PasswordHash: "hash-a"}
	s.Require().NoError(s.store.SaveCredentials(s.ctx, creds))

	got, err := s.store.GetCredentials(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(creds, got)
}

func (s *StoreSuite) TestGetCredentialsUnknownUser() {
	_, err := s.store.GetCredentials(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StoreSuite) TestCredentialsKeyLayout() {
	creds := &model.Credentials{Username: "alice", PasswordHash: "hash-a"}
	s.Require().NoError(s.store.SaveCredentials(s.ctx, creds))

	value, err := s.mini.Get("skirmish:creds:alice")
	s.Require().NoError(err)
	s.Equal("hash-a", value)
}

func (s *StoreSuite) TestRankRoundTrip() {
	s.Require().NoError(s.store.SaveRank(s.ctx, "alice", 512))

	rank, err := s.store.GetRank(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(512, rank)
}

func (s *StoreSuite) TestGetRankUnknownUser() {
	_, err := s.store.GetRank(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrRankNotFound)
}

func (s *StoreSuite) TestRanksShareOneHash() {
	s.Require().NoError(s.store.SaveRank(s.ctx, "alice", 512))
	s.Require().NoError(s.store.SaveRank(s.ctx, "bob", 488))

	s.Equal("512", s.mini.HGet("skirmish:ranks", "alice"))
	s.Equal("488", s.mini.HGet("skirmish:ranks", "bob"))
}

func (s *StoreSuite) TestListRanks() {
	s.Require().NoError(s.store.SaveRank(s.ctx, "alice", 512))
	s.Require().NoError(s.store.SaveRank(s.ctx, "bob", 488))

	ranks, err := s.store.ListRanks(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[model.Username]int{"alice": 512, "bob": 488}, ranks)
}

func (s *StoreSuite) TestListRanksSkipsUnparseableValues() {
	s.mini.HSet("skirmish:ranks", "alice", "512")
	s.mini.HSet("skirmish:ranks", "broken", "oops")

	ranks, err := s.store.ListRanks(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[model.Username]int{"alice": 512}, ranks)
}
