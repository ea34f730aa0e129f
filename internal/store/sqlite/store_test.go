package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admatch/internal/models"
	"admatch/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func TestStore_AdsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "b", Interests: []string{"ai", "Machine Learning"}, CreatedAt: created, RemainingBudget: 12.5, FrequencyCapRemaining: 3}))
	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "a", CreatedAt: created.Add(time.Hour)}))
	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "c", Interests: []string{"travel"}, CreatedAt: created}))

	set, err := s.ListCandidateAds(ctx, 0)
	require.NoError(t, err)
	assert.False(t, set.Truncated)
	assert.Empty(t, set.Corrupt)
	ads := set.Ads
	require.Len(t, ads, 3)
	assert.Equal(t, "a", ads[0].ID)
	assert.Equal(t, []string{}, ads[0].Interests)
	assert.Equal(t, "b", ads[1].ID)
	assert.Equal(t, []string{"ai", "Machine Learning"}, ads[1].Interests)
	assert.Equal(t, 12.5, ads[1].RemainingBudget)
	assert.Equal(t, 3, ads[1].FrequencyCapRemaining)
	assert.True(t, created.Equal(ads[1].CreatedAt))

	limited, err := s.ListCandidateAds(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited.Ads, 2)
	assert.True(t, limited.Truncated)

	exact, err := s.ListCandidateAds(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, exact.Ads, 3)
	assert.False(t, exact.Truncated)

	got, err := s.GetAd(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"travel"}, got.Interests)
}

func TestStore_SaveAdUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "a", Interests: []string{"ai"}, CreatedAt: created, RemainingBudget: 1}))
	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "a", Interests: []string{"food"}, CreatedAt: created, RemainingBudget: 7}))

	got, err := s.GetAd(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"food"}, got.Interests)
	assert.Equal(t, 7.0, got.RemainingBudget)
}

func TestStore_SaveRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.SaveAd(ctx, &models.Ad{ID: "x"})
	assert.True(t, models.IsMalformed(err))

	err = s.SaveContentItem(ctx, &models.ContentItem{ID: "v"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetAd(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetContentItem(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ContentAndCategories(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, item := range []*models.ContentItem{
		{ID: "v1", Category: "technology"},
		{ID: "v2", Category: "ai"},
		{ID: "v3", Category: "technology"},
	} {
		require.NoError(t, s.SaveContentItem(ctx, item))
	}

	item, err := s.GetContentItem(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, "ai", item.Category)

	categories, err := s.ListInventoryCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai", "technology"}, categories)
}

func TestStore_CorruptInterests(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO ads (id, interests, created_at, remaining_budget, frequency_cap_remaining, updated_at) VALUES ('bad', 'not json', 1, 0, 0, 1)`)
	require.NoError(t, err)

	_, err = s.GetAd(ctx, "bad")
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestStore_ListSkipsCorruptRows(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "a", Interests: []string{"ai"}, CreatedAt: created}))
	require.NoError(t, s.SaveAd(ctx, &models.Ad{ID: "c", Interests: []string{"food"}, CreatedAt: created}))
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO ads (id, interests, created_at, remaining_budget, frequency_cap_remaining, updated_at) VALUES ('b', 'not json', 1, 0, 0, 1)`)
	require.NoError(t, err)

	set, err := s.ListCandidateAds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, set.Ads, 2)
	assert.Equal(t, "a", set.Ads[0].ID)
	assert.Equal(t, "c", set.Ads[1].ID)
	require.Len(t, set.Corrupt, 1)
	assert.Equal(t, 1, set.Corrupt[0].Row)
	assert.Equal(t, "b", set.Corrupt[0].AdID)
	assert.Contains(t, set.Corrupt[0].Reason, "interests")
	assert.Equal(t, 3, set.Rows())

	// Corrupt rows count toward the limit.
	limited, err := s.ListCandidateAds(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited.Ads, 1)
	assert.Len(t, limited.Corrupt, 1)
	assert.True(t, limited.Truncated)
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())

	_, err = Open("  ")
	assert.Error(t, err)
}
