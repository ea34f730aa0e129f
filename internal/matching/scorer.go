// Package matching scores ads and interests against content categories over
// a single immutable taxonomy snapshot. Everything here is pure: an Engine
// may be shared by any number of goroutines.
package matching

import (
	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

const (
	ScoreExact     = 100
	ScorePrimary   = 90
	ScoreRelated   = 60
	ScoreFallback  = 30
	ScoreUniversal = 10
	ScoreNone      = 0
)

// CoverageThreshold is the minimum score counted as coverage.
const CoverageThreshold = ScoreRelated

var tierScores = map[taxonomy.Tier]int{
	taxonomy.TierExact:     ScoreExact,
	taxonomy.TierPrimary:   ScorePrimary,
	taxonomy.TierRelated:   ScoreRelated,
	taxonomy.TierFallback:  ScoreFallback,
	taxonomy.TierUniversal: ScoreUniversal,
	taxonomy.TierNone:      ScoreNone,
}

// ScoreForTier maps a tier onto the fixed score table.
func ScoreForTier(t taxonomy.Tier) int {
	return tierScores[t]
}

// Engine evaluates matches against one graph snapshot.
type Engine struct {
	graph *taxonomy.Graph
}

// NewEngine binds an engine to g. Callers take one snapshot per request so
// a concurrent reload cannot change the graph halfway through a ranking.
func NewEngine(g *taxonomy.Graph) *Engine {
	return &Engine{graph: g}
}

// Graph returns the snapshot the engine scores against.
func (e *Engine) Graph() *taxonomy.Graph { return e.graph }

// ScoreInterestToCategory returns the tier and score of interest against category.
func (e *Engine) ScoreInterestToCategory(interest, category string) (taxonomy.Tier, int) {
	return e.scoreKeys(taxonomy.Normalize(interest), taxonomy.Normalize(category))
}

func (e *Engine) scoreKeys(interest, category string) (taxonomy.Tier, int) {
	if interest == "" || category == "" {
		return taxonomy.TierNone, ScoreNone
	}
	if interest == category {
		return taxonomy.TierExact, ScoreExact
	}
	tier := e.graph.TierOfKeys(interest, category)
	return tier, ScoreForTier(tier)
}

// ScoreAdToCategory scores an ad by its best matching interest. Ads without
// usable interests are universal. When several interests share the best
// score, the lexicographically smallest normalized interest is reported.
// The ad is not validated here; see Ad.Validate.
func (e *Engine) ScoreAdToCategory(ad *models.Ad, category string) models.MatchResult {
	return e.scoreAd(ad, taxonomy.Normalize(category))
}

func (e *Engine) scoreAd(ad *models.Ad, category string) models.MatchResult {
	result := models.MatchResult{
		AdID:            ad.ID,
		ContentCategory: category,
		Tier:            taxonomy.TierNone.String(),
		Score:           ScoreNone,
	}

	var (
		declared  bool
		bestTier  = taxonomy.TierNone
		bestScore = -1
		bestKey   string
	)
	for _, raw := range ad.Interests {
		key := taxonomy.Normalize(raw)
		if key == "" {
			continue
		}
		declared = true
		tier, score := e.scoreKeys(key, category)
		if score > bestScore || (score == bestScore && key < bestKey) {
			bestTier, bestScore, bestKey = tier, score, key
			result.MatchedInterest = raw
		}
	}

	if !declared {
		result.Tier = taxonomy.TierUniversal.String()
		result.Score = ScoreUniversal
		return result
	}
	result.Tier = bestTier.String()
	result.Score = bestScore
	if bestScore == ScoreNone {
		result.MatchedInterest = ""
	}
	return result
}
