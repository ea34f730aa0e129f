package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"admatch/internal/matching"
	"admatch/internal/metrics"
	"admatch/internal/models"
	"admatch/internal/store"
	"admatch/internal/taxonomy"
)

// MatchService runs matching operations against the taxonomy snapshot in
// effect when each call starts. A reload during a call does not affect it.
type MatchService struct {
	registry       *taxonomy.Registry
	inventory      store.Inventory
	candidateLimit int
}

// NewMatchService builds a MatchService. inventory may be nil, in which case
// the inventory-backed operations return models.ErrInventoryUnavailable.
func NewMatchService(registry *taxonomy.Registry, inventory store.Inventory, candidateLimit int) *MatchService {
	return &MatchService{registry: registry, inventory: inventory, candidateLimit: candidateLimit}
}

// HasInventory reports whether an inventory backend is wired.
func (s *MatchService) HasInventory() bool { return s.inventory != nil }

func (s *MatchService) engine() *matching.Engine {
	return matching.NewEngine(s.registry.Current())
}

// ScoreInterest scores one interest against one category.
func (s *MatchService) ScoreInterest(interest, category string) ScoreOutcome {
	e := s.engine()
	tier, score := e.ScoreInterestToCategory(interest, category)
	metrics.RecordMatchTier(tier.String())
	return ScoreOutcome{
		Interest:     interest,
		Category:     category,
		CategoryName: e.Graph().DisplayName(category),
		Tier:         tier.String(),
		Score:        score,
		GraphVersion: e.Graph().Version(),
	}
}

// ScoreAd scores one ad against one category. A malformed ad is a
// validation error here because the caller supplied it directly.
func (s *MatchService) ScoreAd(ad *models.Ad, category string) (models.MatchResult, error) {
	if err := ad.Validate(); err != nil {
		return models.MatchResult{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	result := s.engine().ScoreAdToCategory(ad, category)
	metrics.RecordMatchTier(result.Tier)
	return result, nil
}

// ScoreStoredAd loads one ad from the inventory and scores it against
// category.
func (s *MatchService) ScoreStoredAd(ctx context.Context, adID, category string) (*StoredAdScore, error) {
	if s.inventory == nil {
		return nil, models.ErrInventoryUnavailable
	}
	ad, err := s.inventory.GetAd(ctx, adID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("ad %s: %w", adID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("load ad %s: %w", adID, err)
	}
	if err := ad.Validate(); err != nil {
		return nil, fmt.Errorf("stored ad %s: %w", adID, err)
	}

	e := s.engine()
	result := e.ScoreAdToCategory(ad, category)
	metrics.RecordMatchTier(result.Tier)
	return &StoredAdScore{
		Ad:           ad,
		CategoryName: e.Graph().DisplayName(category),
		GraphVersion: e.Graph().Version(),
		Result:       result,
	}, nil
}

// Rank orders ads for category.
func (s *MatchService) Rank(category string, ads []*models.Ad, opts RankOptions) *RankOutcome {
	return s.rank(s.engine(), "rank", category, &store.CandidateSet{Ads: ads}, opts)
}

// RankForContent ranks the inventory's candidate ads for the category of
// the given content item.
func (s *MatchService) RankForContent(ctx context.Context, contentID string, opts RankOptions) (*RankOutcome, error) {
	if s.inventory == nil {
		return nil, models.ErrInventoryUnavailable
	}
	e := s.engine()

	item, err := s.inventory.GetContentItem(ctx, contentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("content item %s: %w", contentID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("load content item %s: %w", contentID, err)
	}
	set, err := s.inventory.ListCandidateAds(ctx, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("load candidate ads: %w", err)
	}
	if set.Truncated {
		log.WithFields(log.Fields{
			"content_id":      item.ID,
			"candidate_limit": s.candidateLimit,
		}).Warn("candidate limit reached; ranking a partial inventory")
	}

	outcome := s.rank(e, "rank_content", item.Category, set, opts)
	outcome.ContentID = item.ID
	return outcome, nil
}

func (s *MatchService) rank(e *matching.Engine, operation, category string, set *store.CandidateSet, opts RankOptions) *RankOutcome {
	start := time.Now()
	report := e.Rank(category, set.Ads)
	skipped := mergeSkipped(set, report.Skipped)

	results := report.Results
	if opts.ExcludeZero {
		results = matching.DropZero(results)
	}
	if opts.Limit > 0 {
		results = matching.TopN(results, opts.Limit)
	}

	elapsed := time.Since(start)
	metrics.RecordRank(operation, set.Rows(), len(skipped), elapsed)
	for _, r := range results {
		metrics.RecordMatchTier(r.Tier)
	}
	log.WithFields(log.Fields{
		"operation":     operation,
		"category":      report.Category,
		"candidates":    set.Rows(),
		"skipped":       len(skipped),
		"truncated":     set.Truncated,
		"returned":      len(results),
		"graph_version": e.Graph().Version(),
		"elapsed":       elapsed,
	}).Debug("ranked ads")

	return &RankOutcome{
		Category:     report.Category,
		GraphVersion: e.Graph().Version(),
		Candidates:   set.Rows(),
		Truncated:    set.Truncated,
		Results:      results,
		Skipped:      skipped,
	}
}

// mergeSkipped combines the rows the inventory could not decode with the ads
// the engine skipped. Engine indexes point into set.Ads and are rewritten to
// listing row positions so every entry uses the same numbering.
func mergeSkipped(set *store.CandidateSet, ranked []models.SkippedAd) []models.SkippedAd {
	if len(set.Corrupt) == 0 {
		return ranked
	}

	corruptRows := make(map[int]bool, len(set.Corrupt))
	for _, c := range set.Corrupt {
		corruptRows[c.Row] = true
	}
	positions := make([]int, 0, len(set.Ads))
	for row := 0; len(positions) < len(set.Ads); row++ {
		if !corruptRows[row] {
			positions = append(positions, row)
		}
	}

	merged := make([]models.SkippedAd, 0, len(ranked)+len(set.Corrupt))
	for _, skip := range ranked {
		skip.Index = positions[skip.Index]
		merged = append(merged, skip)
	}
	for _, c := range set.Corrupt {
		merged = append(merged, models.SkippedAd{Index: c.Row, AdID: c.AdID, Reason: c.Reason})
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Index < merged[j].Index })
	return merged
}

// ValidateInterests checks interests against available categories. When
// available is empty the inventory's current category set is used.
func (s *MatchService) ValidateInterests(ctx context.Context, interests, available []string) (*CoverageOutcome, error) {
	e := s.engine()

	if len(available) == 0 {
		if s.inventory == nil {
			return nil, fmt.Errorf("%w: no available categories supplied", models.ErrInventoryUnavailable)
		}
		categories, err := s.inventory.ListInventoryCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("load inventory categories: %w", err)
		}
		available = categories
	}

	reports := e.ValidateInterests(interests, available)
	for _, r := range reports {
		metrics.RecordCoverage(r.HasCoverage)
	}
	return &CoverageOutcome{
		GraphVersion:        e.Graph().Version(),
		AvailableCategories: available,
		Reports:             reports,
	}, nil
}

// ListCategories describes the taxonomy snapshot in effect.
func (s *MatchService) ListCategories() *CategoryListing {
	g := s.registry.Current()
	return &CategoryListing{
		GraphVersion: g.Version(),
		SnapshotID:   g.SnapshotID(),
		Source:       g.Source(),
		LoadedAt:     g.LoadedAt(),
		EdgeCount:    g.EdgeCount(),
		Categories:   g.Categories(),
	}
}

// Graph returns the snapshot in effect.
func (s *MatchService) Graph() *taxonomy.Graph {
	return s.registry.Current()
}
