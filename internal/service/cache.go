package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/orbitdesk/portal/internal/erp"
)

// CachedDirectory caches full employee records for a short window so
// repeated sign-ins do not hammer the directory. Searches pass through
// untouched: the status policy check must see fresh summaries.
type CachedDirectory struct {
	dir   Directory
	redis redis.Cmdable
	ttl   time.Duration
}

// NewCachedDirectory wraps a directory with a redis-backed record cache.
func NewCachedDirectory(dir Directory, client redis.Cmdable, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedDirectory{dir: dir, redis: client, ttl: ttl}
}

func (c *CachedDirectory) SearchByCell(ctx context.Context, cell string) ([]erp.EmployeeSummary, error) {
	return c.dir.SearchByCell(ctx, cell)
}

func (c *CachedDirectory) SearchByEmail(ctx context.Context, email string) ([]erp.EmployeeSummary, error) {
	return c.dir.SearchByEmail(ctx, email)
}

func (c *CachedDirectory) Get(ctx context.Context, id string) (*erp.Employee, error) {
	key := "employee:" + id

	if cached, err := c.redis.Get(ctx, key).Result(); err == nil {
		var record erp.Employee
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			return &record, nil
		}
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("employee", id).Msg("directory cache: read failed")
	}

	record, err := c.dir.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if serialized, err := json.Marshal(record); err == nil {
		if err := c.redis.Set(ctx, key, serialized, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("employee", id).Msg("directory cache: write failed")
		}
	}

	return record, nil
}
