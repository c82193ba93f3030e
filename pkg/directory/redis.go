package directory

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	channelKeyPrefix = "directory:channel:"
	connKeyPrefix    = "directory:conn:"

	// connTTL bounds how long a stale reverse-lookup key survives a process
	// crash. Live connections are re-registered well within this window by
	// the handler's keepalive.
	connTTL = 24 * time.Hour
)

// Redis is a Directory backed by shared Redis sets, usable from multiple
// processes. Each channel name owns a set of connection ids; each connection
// id owns a reverse-lookup key holding its channel name.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed directory on an established client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Register(ctx context.Context, userID, connID string) error {
	name := ChannelName(userID)

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, channelKeyPrefix+name, connID)
	pipe.Set(ctx, connKeyPrefix+connID, name, connTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrDirectoryUnavailable, err)
	}
	return nil
}

func (r *Redis) Unregister(ctx context.Context, userID, connID string) error {
	name := ChannelName(userID)

	pipe := r.client.TxPipeline()
	pipe.SRem(ctx, channelKeyPrefix+name, connID)
	pipe.Del(ctx, connKeyPrefix+connID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrDirectoryUnavailable, err)
	}
	return nil
}

func (r *Redis) Exists(ctx context.Context, connID string) (bool, error) {
	n, err := r.client.Exists(ctx, connKeyPrefix+connID).Result()
	if err != nil {
		return false, errors.Join(ErrDirectoryUnavailable, err)
	}
	return n > 0, nil
}

func (r *Redis) Connections(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, channelKeyPrefix+ChannelName(userID)).Result()
	if err != nil {
		return nil, errors.Join(ErrDirectoryUnavailable, err)
	}
	return ids, nil
}
