package tier

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/credcache/internal/constants"
	"github.com/hyp3rd/credcache/internal/libs/serializer"
	"github.com/hyp3rd/credcache/internal/sentinel"
	"github.com/hyp3rd/credcache/pkg/cache"
)

// Redis is a distributed tier backed by a Redis server. Entries are stored as
// hashes holding the serialized payload; a companion set tracks the keys owned
// by this tier so membership checks stay cheap.
type Redis struct {
	rdb         *redis.Client          // redis client to interact with the redis server
	entryPool   *cache.EntryPool       // entryPool recycles transient entries used during decoding
	keysSetName string                 // keysSetName is the name of the set that holds the keys owned by the tier
	Serializer  serializer.ISerializer // Serializer encodes entries before storing them
}

// RedisOption is a function type that can be used to configure the `Redis` tier.
type RedisOption func(*Redis)

// WithRedisClient sets the go-redis client backing the tier.
func WithRedisClient(client *redis.Client) RedisOption {
	return func(t *Redis) {
		t.rdb = client
	}
}

// WithKeysSetName overrides the name of the set tracking the tier's keys.
func WithKeysSetName(name string) RedisOption {
	return func(t *Redis) {
		t.keysSetName = name
	}
}

// WithSerializer overrides the serializer used to encode entries.
func WithSerializer(ser serializer.ISerializer) RedisOption {
	return func(t *Redis) {
		t.Serializer = ser
	}
}

// NewRedis creates a new Redis tier with the given options.
func NewRedis(options ...RedisOption) (*Redis, error) {
	t := &Redis{
		entryPool: cache.NewEntryPool(),
	}
	for _, option := range options {
		option(t)
	}

	// Check if the client is nil
	if t.rdb == nil {
		return nil, sentinel.ErrNilClient
	}

	// Check if the `keysSetName` is empty
	if t.keysSetName == "" {
		t.keysSetName = constants.RedisKeySetName
	}

	// Check if the serializer is nil
	if t.Serializer == nil {
		var err error
		// Default to `msgpack`
		t.Serializer, err = serializer.New("msgpack")
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Name identifies the tier.
func (*Redis) Name() string {
	return "redis"
}

// Get retrieves the entry with the given key from Redis. A missing key, an
// expired key, or a key outside the tier's set all report a plain miss.
func (t *Redis) Get(ctx context.Context, key string) (*cache.Entry, bool, error) {
	// Check if the key is in the set of keys owned by the tier
	isMember, err := t.rdb.SIsMember(ctx, t.keysSetName, key).Result()
	if err != nil {
		return nil, false, ewrap.Wrap(err, "checking key membership")
	}

	if !isMember {
		return nil, false, nil
	}

	data, err := t.rdb.HGet(ctx, key, "data").Bytes()
	if err != nil {
		// The hash may have expired between the membership check and the read
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, ewrap.Wrap(err, "reading entry data")
	}

	// Deserialize into a pooled entry, then clone before returning so the
	// pooled pointer never escapes to the caller.
	pooled := t.entryPool.Get()

	err = t.Serializer.Unmarshal(data, pooled)
	if err != nil {
		t.entryPool.Put(pooled)

		return nil, false, ewrap.Wrap(err, "decoding entry")
	}

	out := *pooled
	t.entryPool.Put(pooled)

	return &out, true, nil
}

// Set stores the entry in Redis, propagating its remaining TTL.
func (t *Redis) Set(ctx context.Context, entry *cache.Entry) error {
	err := entry.Valid()
	if err != nil {
		return err
	}

	data, err := t.Serializer.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := t.rdb.TxPipeline()

	err = pipe.HSet(
		ctx,
		entry.Key,
		map[string]any{
			"data": data,
		},
	).Err()
	if err != nil {
		return ewrap.Wrap(err, "failed to set entry in redis")
	}

	// Track key and TTL
	pipe.SAdd(ctx, t.keysSetName, entry.Key)

	if ttl := entry.TTL(); ttl > 0 {
		pipe.Expire(ctx, entry.Key, ttl)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return ewrap.Wrap(err, "failed to execute redis pipeline")
	}

	return nil
}

// Remove deletes the entries with the given keys from Redis.
func (t *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := t.rdb.TxPipeline()

	pipe.SRem(ctx, t.keysSetName, keys)
	pipe.Del(ctx, keys...)

	_, err := pipe.Exec(ctx)

	return ewrap.Wrap(err, "executing pipeline")
}

// Clear removes all keys owned by the tier, leaving unrelated keys in the
// database untouched.
func (t *Redis) Clear(ctx context.Context) error {
	keys, err := t.rdb.SMembers(ctx, t.keysSetName).Result()
	if err != nil {
		return ewrap.Wrap(err, "listing tier keys")
	}

	pipe := t.rdb.TxPipeline()

	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}

	pipe.Del(ctx, t.keysSetName)

	_, err = pipe.Exec(ctx)

	return ewrap.Wrap(err, "clearing tier keys")
}
