package store

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"admatch/internal/models"
)

// --- Inventory ---

// AdInventory serves the candidate ads the ranker scores.
type AdInventory interface {
	// ListCandidateAds reads up to limit ads ordered by id. limit <= 0
	// means no limit. Rows that cannot be decoded are reported in the
	// set, not returned as an error.
	ListCandidateAds(ctx context.Context, limit int) (*CandidateSet, error)
	GetAd(ctx context.Context, id string) (*models.Ad, error)
}

// CandidateSet is one read of the candidate ads.
type CandidateSet struct {
	Ads     []*models.Ad
	Corrupt []CorruptAd
	// Truncated is set when the listing stopped at the limit with more
	// ads left in the inventory.
	Truncated bool
}

// Rows is the number of inventory rows read, decodable or not.
func (c *CandidateSet) Rows() int {
	return len(c.Ads) + len(c.Corrupt)
}

// CorruptAd is an inventory row that could not be decoded into an Ad.
type CorruptAd struct {
	// Row is the position of the row in the id-ordered listing.
	Row    int
	AdID   string
	Reason string
}

// ContentCatalog serves content items and the set of categories currently
// carried by inventory.
type ContentCatalog interface {
	GetContentItem(ctx context.Context, id string) (*models.ContentItem, error)
	ListInventoryCategories(ctx context.Context) ([]string, error)
}

// InventoryWriter loads inventory records. Saves are upserts keyed by id.
type InventoryWriter interface {
	SaveAd(ctx context.Context, ad *models.Ad) error
	SaveContentItem(ctx context.Context, item *models.ContentItem) error
}

// Inventory is a complete inventory backend.
type Inventory interface {
	AdInventory
	ContentCatalog
	InventoryWriter

	Ping(ctx context.Context) error
	Close() error
}

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueCoverageAudit(ctx context.Context, auditID string, categories []string) (*asynq.TaskInfo, error)
	Close() error
}

// --- Audit Reports ---

// ReportStore keeps coverage audit reports for a bounded time.
type ReportStore interface {
	SaveAudit(ctx context.Context, audit *models.CoverageAudit) error
	GetAudit(ctx context.Context, id string) (*models.CoverageAudit, error)
}

// --- Reload Broadcast ---

// ReloadNotice announces that an instance swapped in a new taxonomy.
type ReloadNotice struct {
	Origin       string    `json:"origin"`
	GraphVersion string    `json:"graph_version"`
	SnapshotID   string    `json:"snapshot_id"`
	At           time.Time `json:"at"`
}

// ReloadBus fans reload notices out to every serving instance.
type ReloadBus interface {
	Publish(ctx context.Context, notice ReloadNotice) error
	// Subscribe blocks, calling handle for each notice, until ctx is done.
	Subscribe(ctx context.Context, handle func(ReloadNotice)) error
	Close() error
}
