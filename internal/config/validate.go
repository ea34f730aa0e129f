package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate checks the settings every command depends on, plus the settings
// of whichever optional features are switched on.
func (c *Config) Validate() error {
	// Logging
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}

	// Taxonomy
	if c.Taxonomy.Path == "" {
		return errors.New("taxonomy.path is required")
	}
	if c.Taxonomy.Watch && c.Taxonomy.WatchDebounce < 0 {
		return errors.New("taxonomy.watch_debounce must not be negative")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.MaxConnections < 0 {
		return errors.New("server.max_connections must not be negative")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	// Inventory
	switch c.Inventory.Driver {
	case "":
	case "postgres", "sqlite":
		if c.Inventory.DSN == "" {
			return fmt.Errorf("inventory.dsn is required when inventory.driver is %q", c.Inventory.Driver)
		}
	default:
		return fmt.Errorf("inventory.driver must be empty, 'postgres' or 'sqlite', got %q", c.Inventory.Driver)
	}
	if c.Inventory.CandidateLimit < 0 {
		return errors.New("inventory.candidate_limit must not be negative")
	}

	// Ranking
	if c.Ranking.DefaultLimit <= 0 {
		return errors.New("ranking.default_limit must be a positive integer")
	}
	if c.Ranking.MaxLimit < c.Ranking.DefaultLimit {
		return fmt.Errorf("ranking.max_limit (%d) must be at least ranking.default_limit (%d)", c.Ranking.MaxLimit, c.Ranking.DefaultLimit)
	}

	// Reload broadcast
	if c.Reload.Broadcast {
		if c.Redis.Address == "" {
			return errors.New("redis.address is required when reload.broadcast is true")
		}
		if c.Reload.Channel == "" {
			return errors.New("reload.channel is required when reload.broadcast is true")
		}
	}

	// Worker config
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	// Audit
	if c.Audit.ReportTTL <= 0 {
		return errors.New("audit.report_ttl must be positive")
	}

	return nil
}
