package cache

import (
	"time"
)

// Cooldown tracks which URLs were fetched recently so the scout flow
// never re-hits a host before its cooldown expires, including across
// process restarts when backed by a shared store.
type Cooldown interface {
	// Active reports whether the URL is still cooling down
	Active(url string) bool

	// Start begins a cooldown period for the URL
	Start(url string, ttl time.Duration) error
}
