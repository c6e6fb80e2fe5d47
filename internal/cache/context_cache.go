package cache

import (
	"classroomlive/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContextCache memoizes resolved classroom contexts so the authorization
// gate does not hit the directory store on every WebSocket frame. Entries
// are short-lived: teacher reassignment must take effect within the TTL.
type ContextCache interface {
	Get(ctx context.Context, classroomID string) (*model.ClassroomContext, error)
	Set(ctx context.Context, classroomID string, cc *model.ClassroomContext) error
}

type contextCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewContextCache(client *redis.Client) ContextCache {
	return &contextCache{
		client: client,
		ttl:    30 * time.Second,
	}
}

func (c *contextCache) key(classroomID string) string {
	return fmt.Sprintf("classroom:ctx:%s", classroomID)
}

func (c *contextCache) Get(ctx context.Context, classroomID string) (*model.ClassroomContext, error) {
	data, err := c.client.Get(ctx, c.key(classroomID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cc model.ClassroomContext
	if err := json.Unmarshal([]byte(data), &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *contextCache) Set(ctx context.Context, classroomID string, cc *model.ClassroomContext) error {
	data, err := json.Marshal(cc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(classroomID), data, c.ttl).Err()
}
