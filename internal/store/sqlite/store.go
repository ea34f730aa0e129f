// Package sqlite provides a SQLite-backed inventory store for single-node
// deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
	"admatch/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var _ store.Inventory = (*Store)(nil)

// Store persists inventory in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite inventory store and applies the embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		dsn = "file:" + filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListCandidateAds returns ads ordered by id, at most limit when limit > 0.
// Rows whose stored interests cannot be decoded are logged and reported in
// the set's Corrupt list.
func (s *Store) ListCandidateAds(ctx context.Context, limit int) (*store.CandidateSet, error) {
	query := `SELECT id, interests, created_at, remaining_budget, frequency_cap_remaining FROM ads ORDER BY id`
	args := []any{}
	if limit > 0 {
		// One extra row tells a full page apart from a truncated one.
		query += ` LIMIT ?`
		args = append(args, limit+1)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	set := &store.CandidateSet{Ads: []*models.Ad{}}
	for row := 0; rows.Next(); row++ {
		if limit > 0 && row == limit {
			set.Truncated = true
			break
		}
		ad, err := scanAd(rows)
		if errors.Is(err, store.ErrCorrupt) {
			log.WithFields(log.Fields{"ad_id": ad.ID, "row": row}).WithError(err).Warn("skipping undecodable ad row")
			set.Corrupt = append(set.Corrupt, store.CorruptAd{Row: row, AdID: ad.ID, Reason: err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		set.Ads = append(set.Ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ads: %w", err)
	}
	return set, nil
}

// GetAd returns one ad by id.
func (s *Store) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, interests, created_at, remaining_budget, frequency_cap_remaining FROM ads WHERE id = ?`, id)
	ad, err := scanAd(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return ad, nil
}

// SaveAd inserts or replaces one ad.
func (s *Store) SaveAd(ctx context.Context, ad *models.Ad) error {
	if err := ad.Validate(); err != nil {
		return err
	}
	interests := ad.Interests
	if interests == nil {
		interests = []string{}
	}
	encoded, err := json.Marshal(interests)
	if err != nil {
		return fmt.Errorf("encode interests for ad %s: %w", ad.ID, err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO ads (id, interests, created_at, remaining_budget, frequency_cap_remaining, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   interests = excluded.interests,
		   created_at = excluded.created_at,
		   remaining_budget = excluded.remaining_budget,
		   frequency_cap_remaining = excluded.frequency_cap_remaining,
		   updated_at = excluded.updated_at`,
		ad.ID,
		string(encoded),
		toMillis(ad.CreatedAt),
		ad.RemainingBudget,
		ad.FrequencyCapRemaining,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save ad %s: %w", ad.ID, err)
	}
	return nil
}

// GetContentItem returns one content item by id.
func (s *Store) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id, category FROM content_items WHERE id = ?`, id).
		Scan(&item.ID, &item.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get content item %s: %w", id, err)
	}
	return item, nil
}

// SaveContentItem inserts or replaces one content item.
func (s *Store) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO content_items (id, category, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET category = excluded.category, updated_at = excluded.updated_at`,
		item.ID, item.Category, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save content item %s: %w", item.ID, err)
	}
	return nil
}

// ListInventoryCategories returns the distinct categories carried by
// content items, as stored.
func (s *Store) ListInventoryCategories(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT DISTINCT category FROM content_items ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list inventory categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan inventory category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAd decodes one ads row. On store.ErrCorrupt the returned ad carries
// only its id.
func scanAd(row rowScanner) (*models.Ad, error) {
	var (
		ad        models.Ad
		interests string
		created   int64
	)
	if err := row.Scan(&ad.ID, &interests, &created, &ad.RemainingBudget, &ad.FrequencyCapRemaining); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(interests), &ad.Interests); err != nil {
		return &models.Ad{ID: ad.ID}, fmt.Errorf("%w: ad %s interests: %v", store.ErrCorrupt, ad.ID, err)
	}
	ad.CreatedAt = fromMillis(created)
	return &ad, nil
}
