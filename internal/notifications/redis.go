package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/google/uuid"
)

// NewRedisPool creates a connection pool for a redis:// URL.
func NewRedisPool(url string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 4 * time.Minute,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, url)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// RedisQueue is a Queue backed by a Redis list. Intents survive restarts
// and can be shared by several server processes.
type RedisQueue struct {
	pool        *redis.Pool
	key         string
	deadKey     string
	pollTimeout time.Duration
}

// NewRedisQueue creates a queue stored under key. Dead letters go to key:dead.
func NewRedisQueue(pool *redis.Pool, key string) *RedisQueue {
	return &RedisQueue{
		pool:        pool,
		key:         key,
		deadKey:     key + ":dead",
		pollTimeout: time.Second,
	}
}

func (q *RedisQueue) push(ctx context.Context, key string, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode intent: %w", err)
	}

	conn, err := q.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "LPUSH", key, payload); err != nil {
		return fmt.Errorf("failed to push intent: %w", err)
	}
	return nil
}

// Enqueue pushes the intent onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, intent Intent) error {
	return q.push(ctx, q.key, intent)
}

// DeadLetter pushes the intent onto the dead letter list.
func (q *RedisQueue) DeadLetter(ctx context.Context, intent Intent) error {
	return q.push(ctx, q.deadKey, intent)
}

// Dequeue pops the oldest intent, polling with BRPOP until ctx is done.
func (q *RedisQueue) Dequeue(ctx context.Context) (Intent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Intent{}, err
		}

		intent, ok, err := q.pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Intent{}, ctx.Err()
			}
			return Intent{}, err
		}
		if ok {
			return intent, nil
		}
	}
}

func (q *RedisQueue) pop(ctx context.Context) (Intent, bool, error) {
	conn, err := q.pool.GetContext(ctx)
	if err != nil {
		return Intent{}, false, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	reply, err := redis.Strings(redis.DoContext(conn, ctx, "BRPOP", q.key, int(q.pollTimeout/time.Second)))
	if errors.Is(err, redis.ErrNil) {
		return Intent{}, false, nil
	}
	if err != nil {
		return Intent{}, false, fmt.Errorf("failed to pop intent: %w", err)
	}

	var intent Intent
	if err := json.Unmarshal([]byte(reply[1]), &intent); err != nil {
		return Intent{}, false, fmt.Errorf("failed to decode intent: %w", err)
	}
	return intent, true, nil
}

// Close is a no-op. The pool is owned by the caller.
func (q *RedisQueue) Close() error {
	return nil
}

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker shared by every process using the same Redis.
type RedisLocker struct {
	pool   *redis.Pool
	prefix string
}

// NewRedisLocker creates a locker whose keys start with prefix.
func NewRedisLocker(pool *redis.Pool, prefix string) *RedisLocker {
	return &RedisLocker{pool: pool, prefix: prefix}
}

// TryLock sets the key with NX and a millisecond expiry.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	conn, err := l.pool.GetContext(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get redis connection: %w", err)
	}
	defer conn.Close()

	fullKey := l.prefix + key
	token := uuid.NewString()

	_, err = redis.String(redis.DoContext(conn, ctx, "SET", fullKey, token, "NX", "PX", ttl.Milliseconds()))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
	}

	unlock := func() {
		c := l.pool.Get()
		defer c.Close()
		_, _ = releaseScript.Do(c, fullKey, token)
	}
	return unlock, true, nil
}
