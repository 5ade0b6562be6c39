package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"github.com/hexwall/skirmish/internal/api/response"
	"github.com/hexwall/skirmish/internal/gateway"
	"github.com/hexwall/skirmish/internal/storage"
)

// StatusProvider resolves a matchmaking snapshot; the gateway implements it
type StatusProvider interface {
	Status(ctx context.Context) (gateway.Status, error)
}

// RouterConfig holds configuration for the admin API router
type RouterConfig struct {
	Logger *slog.Logger
	Status StatusProvider
	Store  storage.Store
}

// LeaderboardEntry is one ranked account in the leaderboard response
type LeaderboardEntry struct {
	Username string `json:"username"`
	Rank     int    `json:"rank"`
}

// NewRouter creates the admin API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(recovery(cfg.Logger))
	api.Use(logging(cfg.Logger))

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status, err := cfg.Status.Status(ctx)
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "status unavailable")
			return
		}
		response.JSON(w, http.StatusOK, status)
	}).Methods(http.MethodGet)

	api.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		ranks, err := cfg.Store.ListRanks(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "leaderboard unavailable")
			return
		}

		entries := make([]LeaderboardEntry, 0, len(ranks))
		for username, rank := range ranks {
			entries = append(entries, LeaderboardEntry{Username: string(username), Rank: rank})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Rank != entries[j].Rank {
				return entries[i].Rank > entries[j].Rank
			}
			return entries[i].Username < entries[j].Username
		})
		response.JSON(w, http.StatusOK, entries)
	}).Methods(http.MethodGet)

	return r
}

// logging logs each request with method, path, status, and duration
func logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// recovery converts handler panics into 500 responses
func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
					)
					response.Error(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
