package cache

import (
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheCooldown implements Cooldown using memcache, so several worker
// instances can share one cooldown view.
type MemcacheCooldown struct {
	client *memcache.Client
}

// NewMemcacheCooldown creates a memcache-backed cooldown tracker
func NewMemcacheCooldown(serverAddr string) *MemcacheCooldown {
	return &MemcacheCooldown{
		client: memcache.New(serverAddr),
	}
}

// cooldownKey hashes the URL: memcache keys must stay short and free of
// whitespace, which URLs do not guarantee.
func cooldownKey(url string) string {
	return fmt.Sprintf("cooldown:%x", sha1.Sum([]byte(url)))
}

// Active reports whether the URL is still cooling down
func (m *MemcacheCooldown) Active(url string) bool {
	_, err := m.client.Get(cooldownKey(url))
	return err == nil
}

// Start begins a cooldown period for the URL
func (m *MemcacheCooldown) Start(url string, ttl time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        cooldownKey(url),
		Value:      []byte("1"),
		Expiration: int32(ttl.Seconds()),
	})
}
