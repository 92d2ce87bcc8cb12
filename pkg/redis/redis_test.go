package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	goredis "github.com/redis/go-redis/v9"
)

func TestOptions(t *testing.T) {
	var o goredis.Options

	opts := []Option{
		WithPassword("secret"),
		WithDB(2),
		WithDialTimeout(time.Second),
		WithReadTimeout(2 * time.Second),
		WithWriteTimeout(3 * time.Second),
		WithPoolSize(42),
	}
	for _, opt := range opts {
		opt(&o)
	}

	assert.Equal(t, "secret", o.Password)
	assert.Equal(t, 2, o.DB)
	assert.Equal(t, time.Second, o.DialTimeout)
	assert.Equal(t, 2*time.Second, o.ReadTimeout)
	assert.Equal(t, 3*time.Second, o.WriteTimeout)
	assert.Equal(t, 42, o.PoolSize)
}

func TestNew(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		client, err := New(ctx, "127.0.0.1:1", WithDialTimeout(200*time.Millisecond))

		assert.Error(t, err)
		assert.Nil(t, client)
	})
}
