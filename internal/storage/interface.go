package storage

import (
	"context"

	"github.com/hexwall/skirmish/internal/model"
)

// Store defines the interface for credential and rank persistence
type Store interface {
	// Credential operations
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentials(ctx context.Context, username model.Username) (*model.Credentials, error)

	// Rank operations
	SaveRank(ctx context.Context, username model.Username, rank int) error
	GetRank(ctx context.Context, username model.Username) (int, error)
	ListRanks(ctx context.Context) (map[model.Username]int, error)
}
