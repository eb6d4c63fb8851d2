// internal/infrastructure/database/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL      = 30 * time.Second
	lockPollWait = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock takes a cross-instance lock on key with SET NX, polling until ctx
// is done. The lock expires on its own after lockTTL.
func (c *Client) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := key + ":lock"
	token := uuid.NewString()

	for {
		ok, err := c.Redis.SetNX(ctx, lockKey, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollWait):
		}
	}

	return func() {
		// The request context may already be done by the time we release
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, c.Redis, []string{lockKey}, token).Err()
	}, nil
}
