// Package outbox hands messages to the mail worker through a Redis list and
// keeps the per-address rate limit counters next to it.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KindPasswordReset marks a reset link message.
const KindPasswordReset = "password_reset"

// Message is one queued email. The mail worker pops from the right of the
// list, so messages are delivered in order.
type Message struct {
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Username  string    `json:"username,omitempty"`
	Link      string    `json:"link,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	CreatedAt time.Time `json:"created_at"`
}

// Connect opens a Redis client and checks it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisOutbox enqueues JSON messages with LPUSH.
type RedisOutbox struct {
	client redis.Cmdable
	key    string
}

func NewRedisOutbox(client redis.Cmdable, key string) *RedisOutbox {
	return &RedisOutbox{client: client, key: key}
}

func (o *RedisOutbox) Enqueue(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("outbox: failed to marshal: %w", err)
	}
	if err := o.client.LPush(ctx, o.key, data).Err(); err != nil {
		return fmt.Errorf("outbox: %w", err)
	}
	return nil
}

// Len reports the number of undelivered messages.
func (o *RedisOutbox) Len(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.key).Result()
}

// RedisLimiter allows limit hits per key within window. The counter expiry
// is refreshed on every hit, so a caller that keeps trying stays blocked.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow counts a hit for key and reports whether it is within the limit.
// Keys are case-insensitive.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + strings.ToLower(key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= int64(l.limit), nil
}
