package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusgrid/campus-api/utils/cache"
	"github.com/campusgrid/campus-api/utils/response"
)

const (
	// maxBulkCalls is the number of bulk-delete calls one client may
	// issue per window. Bulk deletes are destructive and non-atomic, so
	// they get a much tighter budget than the global limiter.
	maxBulkCalls = 10
	bulkWindow   = 1 * time.Minute
)

// BulkGuard throttles bulk operations per client IP, backed by Redis so
// the counter survives restarts and is shared between replicas.
type BulkGuard struct {
	cache *cache.RedisCache
}

// NewBulkGuard creates a new bulk operation guard
func NewBulkGuard(cache *cache.RedisCache) *BulkGuard {
	return &BulkGuard{cache: cache}
}

// Limit returns the middleware handler.
func (g *BulkGuard) Limit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("bulk:%s", c.IP())

		count, err := g.cache.Increment(c.Context(), key)
		if err != nil {
			// Redis being down should not take bulk operations with it.
			log.Printf("bulk guard: redis unavailable: %v", err)
			return c.Next()
		}
		if count == 1 {
			if err := g.cache.Expire(c.Context(), key, bulkWindow); err != nil {
				log.Printf("bulk guard: failed to set window on %s: %v", key, err)
			}
		}

		if count > maxBulkCalls {
			return response.TooManyRequests(c, "Too many bulk operations. Please slow down.")
		}

		return c.Next()
	}
}
