package autosave

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink stores each snapshot as a hash. Keys expire after ttl so a stale
// snapshot disappears even if nobody loads it.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSink wraps client. A ttl <= 0 keeps snapshots until deleted.
func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	if client == nil {
		panic("autosave.NewRedisSink: client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisSink{client: client, ttl: ttl}
}

func (r *RedisSink) Save(ctx context.Context, key string, snap Snapshot) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"payload", snap.Payload,
		"savedAt", strconv.FormatInt(snap.SavedAt.UTC().UnixMilli(), 10),
		"sessionId", snap.SessionID,
		"digest", snap.Digest,
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisSink) Load(ctx context.Context, key string) (Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Snapshot{}, err
	}
	payload, ok := fields["payload"]
	if !ok {
		return Snapshot{}, ErrNoSnapshot
	}
	ms, err := strconv.ParseInt(fields["savedAt"], 10, 64)
	if err != nil {
		// Unreadable timestamp; treat as missing and clear it.
		_ = r.client.Del(ctx, key).Err()
		return Snapshot{}, ErrNoSnapshot
	}
	return Snapshot{
		Payload:   []byte(payload),
		SavedAt:   time.UnixMilli(ms).UTC(),
		SessionID: fields["sessionId"],
		Digest:    fields["digest"],
	}, nil
}

func (r *RedisSink) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisSink) Close() error { return r.client.Close() }
