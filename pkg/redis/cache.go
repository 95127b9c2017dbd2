package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coogplanner/backend/pkg/logger"
)

// Cache kinds for course entries.
const (
	KindCourseHeader = "course-header"
	KindCourse       = "course"
)

// Cache is the edge cache for serialized course payloads. Values are JSON
// with a TTL applied at write time; the loader trusts TTL eviction and does
// not track staleness separately.
//
// Cache failures are never fatal. A read or parse error counts as a miss and
// the caller recomputes from source; a write error is dropped. Both are
// counted so a degraded cache is visible to operators.
type Cache struct {
	client  *Client
	version string
	ttl     time.Duration
	logger  *logger.Logger

	errors atomic.Int64
}

// NewCache creates a new edge cache helper
func NewCache(client *Client, version string, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		client:  client,
		version: version,
		ttl:     ttl,
		logger:  log,
	}
}

// CourseKey builds the cache key for a course entry:
// {version}/{kind}/{SUBJECT}-{NUMBER}.json
func (c *Cache) CourseKey(kind, subject, number string) string {
	return fmt.Sprintf("%s/%s/%s-%s.json", c.version, kind, subject, number)
}

// Get retrieves a cached value into dest. Returns false on absence and on
// any read or unmarshal error.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if !c.client.Enabled() {
		return false
	}

	data, err := c.client.Redis().Get(ctx, key).Bytes()
	if err != nil {
		// Absent key and transport failure both degrade to a miss; only
		// the latter is counted as an error.
		if !errors.Is(err, redis.Nil) {
			c.errors.Add(1)
			c.logger.WithError(err).WithField("key", key).Debug("edge cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.errors.Add(1)
		c.logger.WithError(err).WithField("key", key).Debug("edge cache entry unreadable")
		return false
	}

	return true
}

// Set stores a value best-effort with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if !c.client.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.errors.Add(1)
		c.logger.WithError(err).WithField("key", key).Debug("edge cache marshal failed")
		return
	}

	if err := c.client.Redis().Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.errors.Add(1)
		c.logger.WithError(err).WithField("key", key).Debug("edge cache write failed")
	}
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) {
	if !c.client.Enabled() {
		return
	}
	if err := c.client.Redis().Del(ctx, key).Err(); err != nil {
		c.errors.Add(1)
	}
}

// Errors returns the number of swallowed cache failures since startup.
func (c *Cache) Errors() int64 {
	return c.errors.Load()
}
