package model

// Username uniquely identifies an account across the system
type Username string

// Token is an opaque session token. At most one live token exists per
// username at any time.
type Token string

// DefaultRank is the rank assigned to every newly registered account
const DefaultRank = 500

// Credentials is a persisted account record
// The password is stored as a bcrypt hash, never in the clear
type Credentials struct {
	Username     Username
	PasswordHash string
}
