package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	stream := "test_price_observations"
	client.Del(ctx, stream)

	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, stream, 100)
	defer publisher.Close()

	err = publisher.Publish("p1", []byte(`{"entity_id":"p1"}`))
	assert.NoError(t, err)

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	// The message is stored base64 encoded under the entity key
	encoded, ok := entries[0].Values["p1"].(string)
	assert.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)
	assert.Equal(t, `{"entity_id":"p1"}`, string(decoded))

	client.Del(ctx, stream)
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher()
	assert.NoError(t, p.Publish("p1", []byte("anything")))
	assert.NoError(t, p.Close())
}
