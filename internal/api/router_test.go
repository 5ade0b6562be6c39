package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hexwall/skirmish/internal/gateway"
	"github.com/hexwall/skirmish/internal/storage/memory"
	"github.com/hexwall/skirmish/internal/testutil"
)

// stubStatus returns a fixed snapshot or error
type stubStatus struct {
	status gateway.Status
	err    error
}

func (s *stubStatus) Status(ctx context.Context) (gateway.Status, error) {
	return s.status, s.err
}

type RouterSuite struct {
	suite.Suite
	store  *memory.Store
	status *stubStatus
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.store = memory.New()
	s.status = &stubStatus{}
	s.router = NewRouter(RouterConfig{
		Logger: testutil.NopLogger(),
		Status: s.status,
		Store:  s.store,
	})
}

func (s *RouterSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestHealth() {
	rec := s.get("/api/health")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.JSONEq(`{"status": "ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestStatus() {
	s.status.status = gateway.Status{
		Slots: []gateway.SlotInfo{
			{ID: 0, Status: "filling", Occupancy: 1, Capacity: 2, Band: "[400, 600]"},
		},
		Queue: []string{"erin"},
	}

	rec := s.get("/api/status")

	s.Equal(http.StatusOK, rec.Code)

	var got gateway.Status
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(s.status.status, got)
}

func (s *RouterSuite) TestStatusUnavailable() {
	s.status.err = errors.New("loop stopped")

	rec := s.get("/api/status")

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"error": "status unavailable"}`, rec.Body.String())
}

func (s *RouterSuite) TestLeaderboardSortsByRankThenUsername() {
	ctx := context.Background()
	s.Require().NoError(s.store.SaveRank(ctx, "alice", 503))
	s.Require().NoError(s.store.SaveRank(ctx, "bob", 499))
	s.Require().NoError(s.store.SaveRank(ctx, "carol", 503))

	rec := s.get("/api/leaderboard")

	s.Equal(http.StatusOK, rec.Code)

	var entries []LeaderboardEntry
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &entries))
	s.Equal([]LeaderboardEntry{
		{Username: "alice", Rank: 503},
		{Username: "carol", Rank: 503},
		{Username: "bob", Rank: 499},
	}, entries)
}

func (s *RouterSuite) TestLeaderboardEmpty() {
	rec := s.get("/api/leaderboard")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *RouterSuite) TestUnknownRouteIs404() {
	rec := s.get("/api/nope")
	s.Equal(http.StatusNotFound, rec.Code)
}
