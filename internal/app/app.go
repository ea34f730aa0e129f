package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"admatch/internal/config"
	"admatch/internal/metrics"
	"admatch/internal/services"
	"admatch/internal/store"
	"admatch/internal/store/primary"
	"admatch/internal/store/sqlite"
	"admatch/internal/taxonomy"
)

type App struct {
	Config *config.Config

	// InstanceID names this process on the reload bus.
	InstanceID   string
	TaxonomyPath string
	Taxonomy     *taxonomy.Registry

	// Optional backends; nil when not configured.
	Inventory store.Inventory
	Redis     *redis.Client
	JobClient store.JobClient
	Reports   store.ReportStore
	ReloadBus store.ReloadBus

	// --- Initialized Services ---
	MatchService  *services.MatchService
	ReloadService *services.ReloadService
	AuditService  *services.AuditService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, InstanceID: instanceID()}

	if err := app.initTaxonomy(ctx); err != nil {
		return nil, err
	}
	if err := app.initInventory(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initRedis(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initServices()

	log.WithFields(log.Fields{
		"instance":  app.InstanceID,
		"taxonomy":  app.Taxonomy.Current().Version(),
		"inventory": cfg.Inventory.Driver,
		"redis":     app.Redis != nil,
	}).Debug("application initialization complete")
	return app, nil
}

// Close releases every backend the app opened.
func (a *App) Close() {
	a.cleanupPartialInit()
}

// --- Private Helper Methods ---

func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "admatch"
	}
	return host + "-" + uuid.NewString()[:8]
}

func (a *App) initTaxonomy(ctx context.Context) error {
	path, err := config.ResolveTaxonomyPath(a.Config.Taxonomy.Path)
	if err != nil {
		return fmt.Errorf("init taxonomy: %w", err)
	}
	reg, err := taxonomy.NewRegistry(ctx, taxonomy.FileSource{Path: path})
	if err != nil {
		return fmt.Errorf("init taxonomy: %w", err)
	}
	publishGraphStats(nil, reg.Current())
	reg.OnSwap(publishGraphStats)

	a.TaxonomyPath = path
	a.Taxonomy = reg
	return nil
}

func publishGraphStats(_, next *taxonomy.Graph) {
	metrics.SetGraphStats(next.CategoryCount(), next.EdgeCount(), next.LoadedAt())
}

func (a *App) initInventory(ctx context.Context) error {
	inv, err := OpenInventory(ctx, a.Config.Inventory.Driver, a.Config.Inventory.DSN)
	if err != nil {
		return fmt.Errorf("init inventory: %w", err)
	}
	a.Inventory = inv
	return nil
}

// OpenInventory opens the inventory backend named by driver. An empty
// driver returns a nil inventory and no error.
func OpenInventory(ctx context.Context, driver, dsn string) (store.Inventory, error) {
	switch driver {
	case "":
		return nil, nil
	case "postgres":
		s, err := primary.NewPrimaryStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown inventory driver %q", driver)
	}
}

func (a *App) initRedis(ctx context.Context) error {
	cfg := a.Config
	if cfg.Redis.Address == "" {
		log.Debug("redis.address not set; coverage audits and reload broadcast are disabled")
		return nil
	}
	client, err := store.NewRedisClient(ctx, store.RedisOptions{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	a.Redis = client
	a.Reports = store.NewRedisReportStore(client, cfg.Audit.ReportTTL)
	a.JobClient = store.NewAsynqJobClient(a.RedisClientOpt())
	if cfg.Reload.Broadcast {
		a.ReloadBus = store.NewRedisReloadBus(client, cfg.Reload.Channel)
	}
	return nil
}

// RedisClientOpt is the asynq view of the redis settings.
func (a *App) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

func (a *App) initServices() {
	a.MatchService = services.NewMatchService(a.Taxonomy, a.Inventory, a.Config.Inventory.CandidateLimit)
	a.ReloadService = services.NewReloadService(a.Taxonomy, a.ReloadBus, a.InstanceID)
	a.AuditService = services.NewAuditService(a.Taxonomy, a.Inventory, a.JobClient, a.Reports)
}

func (a *App) cleanupPartialInit() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.WithError(err).Warn("error closing job client")
		}
	}
	if a.ReloadBus != nil {
		_ = a.ReloadBus.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.WithError(err).Warn("error closing redis client")
		}
	}
	if a.Inventory != nil {
		if err := a.Inventory.Close(); err != nil {
			log.WithError(err).Warn("error closing inventory")
		}
	}
}
