package infra_redis_roomcode_set

import (
	"context"

	"github.com/bortnikau/quizparty/core/internal/model"
	"github.com/go-redis/redis"
)

// Driver keeps the set of live room codes in redis, so a code held by a room
// from a previous process life is never handed out again.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

func (d *Driver) Add(ctx context.Context, roomID model.RoomID) error {
	if roomID == model.EmptyRoomID {
		return nil
	}

	if err := d.client.SAdd(d.key, string(roomID)).Err(); err != nil {
		return err
	}
	return nil
}

func (d *Driver) Remove(ctx context.Context, roomID model.RoomID) error {
	if err := d.client.SRem(d.key, string(roomID)).Err(); err != nil {
		return err
	}
	return nil
}

func (d *Driver) Contains(ctx context.Context, roomID model.RoomID) (bool, error) {
	held, err := d.client.SIsMember(d.key, string(roomID)).Result()
	if err != nil {
		return false, err
	}
	return held, nil
}
