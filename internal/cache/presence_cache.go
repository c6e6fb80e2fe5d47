package cache

import (
	"classroomlive/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceCache tracks which users are currently connected to each
// classroom. Membership is ephemeral hub state mirrored into Redis so
// the participants endpoint (and other processes) can read it; the TTL
// bounds staleness after an unclean shutdown.
type PresenceCache interface {
	Join(ctx context.Context, classroomID, userID, username string) error
	Leave(ctx context.Context, classroomID, userID string) error
	List(ctx context.Context, classroomID string) ([]model.Participant, error)
}

type presenceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresenceCache(client *redis.Client) PresenceCache {
	return &presenceCache{
		client: client,
		ttl:    4 * time.Hour,
	}
}

func (c *presenceCache) key(classroomID string) string {
	return fmt.Sprintf("classroom:presence:%s", classroomID)
}

func (c *presenceCache) Join(ctx context.Context, classroomID, userID, username string) error {
	key := c.key(classroomID)
	if err := c.client.HSet(ctx, key, userID, username).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.ttl).Err()
}

func (c *presenceCache) Leave(ctx context.Context, classroomID, userID string) error {
	return c.client.HDel(ctx, c.key(classroomID), userID).Err()
}

func (c *presenceCache) List(ctx context.Context, classroomID string) ([]model.Participant, error) {
	members, err := c.client.HGetAll(ctx, c.key(classroomID)).Result()
	if err != nil {
		return nil, err
	}
	participants := make([]model.Participant, 0, len(members))
	for userID, username := range members {
		participants = append(participants, model.Participant{UserID: userID, Username: username})
	}
	return participants, nil
}
