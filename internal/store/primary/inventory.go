package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
	"admatch/internal/store"
)

// --- Ads ---

// ListCandidateAds reads up to limit ads ordered by id. Rows that do not
// decode are logged and reported in the set instead of failing the read.
func (s *StoreImpl) ListCandidateAds(ctx context.Context, limit int) (*store.CandidateSet, error) {
	query := `SELECT ` + adColumns + ` FROM ads ORDER BY id`
	args := []any{}
	if limit > 0 {
		// One extra row tells a full page apart from a truncated one.
		query += ` LIMIT $1`
		args = append(args, limit+1)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
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
			set.Corrupt = append(set.Corrupt, corruptAd(row, ad, err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad row: %w", err)
		}
		set.Ads = append(set.Ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ad rows: %w", err)
	}
	return set, nil
}

func corruptAd(row int, ad *models.Ad, err error) store.CorruptAd {
	c := store.CorruptAd{Row: row, Reason: err.Error()}
	if ad != nil {
		c.AdID = ad.ID
	}
	log.WithFields(log.Fields{"ad_id": c.AdID, "row": row}).WithError(err).Warn("skipping undecodable ad row")
	return c
}

func (s *StoreImpl) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE id = $1`
	ad, err := scanAd(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ad %s: %w", id, err)
	}
	return ad, nil
}

func (s *StoreImpl) SaveAd(ctx context.Context, ad *models.Ad) error {
	if err := ad.Validate(); err != nil {
		return err
	}
	interests := ad.Interests
	if interests == nil {
		interests = []string{}
	}
	query := `
		INSERT INTO ads (id, interests, created_at, remaining_budget, frequency_cap_remaining, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			interests = EXCLUDED.interests,
			created_at = EXCLUDED.created_at,
			remaining_budget = EXCLUDED.remaining_budget,
			frequency_cap_remaining = EXCLUDED.frequency_cap_remaining,
			updated_at = now()`
	_, err := s.db.Exec(ctx, query,
		ad.ID, interests, ad.CreatedAt, ad.RemainingBudget, ad.FrequencyCapRemaining,
	)
	if err != nil {
		return fmt.Errorf("failed to save ad %s: %w", ad.ID, err)
	}
	return nil
}

// --- Content ---

func (s *StoreImpl) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	query := `SELECT id, category FROM content_items WHERE id = $1`
	item := &models.ContentItem{}
	err := s.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content item %s: %w", id, err)
	}
	return item, nil
}

func (s *StoreImpl) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO content_items (id, category, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET category = EXCLUDED.category, updated_at = now()`
	if _, err := s.db.Exec(ctx, query, item.ID, item.Category); err != nil {
		return fmt.Errorf("failed to save content item %s: %w", item.ID, err)
	}
	return nil
}

// ListInventoryCategories returns the distinct categories carried by
// content items, as stored.
func (s *StoreImpl) ListInventoryCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT category FROM content_items ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan inventory categories: %w", err)
	}
	return categories, nil
}
