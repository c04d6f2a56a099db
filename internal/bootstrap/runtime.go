// Package bootstrap wires up process-wide runtime dependencies: the
// database handle, the Redis client, and optional fixture seeding.
package bootstrap

import (
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplyFixtures loads the YAML fixture named by SEED_FIXTURES after
	// connecting. Ignored in production.
	ApplyFixtures bool
}

// InitRuntime connects to the database and Redis. Redis being unreachable is
// not fatal; the client comes back nil and callers degrade gracefully.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()

	if opts.ApplyFixtures && cfg.SeedFixtures != "" && !cfg.Production() {
		if err := seed.LoadFixtureFile(db, cfg.SeedFixtures); err != nil {
			return nil, nil, fmt.Errorf("failed to apply seed fixtures: %w", err)
		}
		middleware.Logger.Info("seed fixtures applied", "path", cfg.SeedFixtures)
	}

	return db, rdb, nil
}
