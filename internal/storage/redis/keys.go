package redis

import (
	"fmt"

	"github.com/hexwall/skirmish/internal/model"
)

// Key prefix for all server data
const keyPrefix = "skirmish"

// credentialsKey returns the Redis key for an account's credentials
func credentialsKey(username model.Username) string {
	return fmt.Sprintf("%s:creds:%s", keyPrefix, username)
}

// ranksKey returns the Redis key for the username -> rank hash
func ranksKey() string {
	return fmt.Sprintf("%s:ranks", keyPrefix)
}
