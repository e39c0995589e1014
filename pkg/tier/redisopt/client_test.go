package redisopt

import (
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
	"github.com/redis/go-redis/v9"
)

func TestApplyOptions(t *testing.T) {
	opt := &redis.Options{}

	ApplyOptions(opt,
		WithAddr("localhost:6379"),
		WithUsername("user"),
		WithPassword("secret"),
		WithDB(2),
		WithMaxRetries(5),
		WithDialTimeout(time.Second),
		WithReadTimeout(2*time.Second),
		WithWriteTimeout(3*time.Second),
		WithPoolSize(20),
		WithMinIdleConns(4),
		WithPoolTimeout(4*time.Second),
	)

	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "user", opt.Username)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 5, opt.MaxRetries)
	assert.Equal(t, time.Second, opt.DialTimeout)
	assert.Equal(t, 2*time.Second, opt.ReadTimeout)
	assert.Equal(t, 3*time.Second, opt.WriteTimeout)
	assert.Equal(t, 20, opt.PoolSize)
	assert.Equal(t, 4, opt.MinIdleConns)
	assert.Equal(t, 4*time.Second, opt.PoolTimeout)
}

func TestNewClient(t *testing.T) {
	// no address configured
	_, err := NewClient()
	assert.True(t, err != nil)

	client, err := NewClient(WithAddr("localhost:6379"))
	assert.Nil(t, err)
	assert.True(t, client != nil)

	_ = client.Close()
}
