package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"admatch/internal/taxonomy"
)

func TestScoreInterestToCategory_WorkedExample(t *testing.T) {
	e := testEngine(t)

	testCases := []struct {
		interest string
		category string
		tier     taxonomy.Tier
		score    int
	}{
		{"ai", "ai", taxonomy.TierExact, 100},
		{"ai", "machine learning", taxonomy.TierPrimary, 90},
		{"ai", "technology", taxonomy.TierRelated, 60},
		{"ai", "education", taxonomy.TierFallback, 30},
		{"ai", "cooking", taxonomy.TierNone, 0},
		{"AI ", " Machine   Learning", taxonomy.TierPrimary, 90},
		{"", "ai", taxonomy.TierNone, 0},
		{"  ", "  ", taxonomy.TierNone, 0},
	}
	for _, tc := range testCases {
		tier, score := e.ScoreInterestToCategory(tc.interest, tc.category)
		assert.Equal(t, tc.tier, tier, "%q vs %q", tc.interest, tc.category)
		assert.Equal(t, tc.score, score, "%q vs %q", tc.interest, tc.category)
	}
}

func TestScoreInterestToCategory_Reflexive(t *testing.T) {
	e := testEngine(t)
	for _, info := range e.Graph().Categories() {
		_, score := e.ScoreInterestToCategory(info.Key, info.Key)
		assert.Equal(t, ScoreExact, score, info.Key)
	}
	// Categories the graph has never seen are still reflexive.
	_, score := e.ScoreInterestToCategory("Underwater Basket Weaving", "underwater basket weaving")
	assert.Equal(t, ScoreExact, score)
}

func TestScoreAdToCategory(t *testing.T) {
	e := testEngine(t)

	t.Run("best interest wins", func(t *testing.T) {
		res := e.ScoreAdToCategory(newAd("a1", "travel", "ai", "technology"), "Programming")
		assert.Equal(t, "a1", res.AdID)
		assert.Equal(t, "programming", res.ContentCategory)
		assert.Equal(t, 60, res.Score)
		assert.Equal(t, "RELATED", res.Tier)
		// ai and technology both relate to programming; the smaller key is reported.
		assert.Equal(t, "ai", res.MatchedInterest)
	})

	t.Run("exact beats related", func(t *testing.T) {
		res := e.ScoreAdToCategory(newAd("a2", "ai", "Technology"), "technology")
		assert.Equal(t, 100, res.Score)
		assert.Equal(t, "EXACT", res.Tier)
		assert.Equal(t, "Technology", res.MatchedInterest)
	})

	t.Run("universal ad", func(t *testing.T) {
		res := e.ScoreAdToCategory(newAd("u"), "cooking")
		assert.Equal(t, ScoreUniversal, res.Score)
		assert.Equal(t, "UNIVERSAL", res.Tier)
		assert.Empty(t, res.MatchedInterest)
	})

	t.Run("blank interests are universal", func(t *testing.T) {
		res := e.ScoreAdToCategory(newAd("b", " ", ""), "cooking")
		assert.Equal(t, ScoreUniversal, res.Score)
	})

	t.Run("no match", func(t *testing.T) {
		res := e.ScoreAdToCategory(newAd("n", "travel"), "ai")
		assert.Equal(t, ScoreNone, res.Score)
		assert.Equal(t, "NONE", res.Tier)
		assert.Empty(t, res.MatchedInterest)
	})
}

func TestScoreAdToCategory_Monotonic(t *testing.T) {
	e := testEngine(t)
	pool := []string{"ai", "technology", "travel", "food", "gadgets", "education", "nonsense"}
	categories := []string{"ai", "machine learning", "technology", "programming", "education", "gadgets", "cooking", "food", "unknown"}

	for _, base := range pool {
		for _, extra := range pool {
			for _, category := range categories {
				before := e.ScoreAdToCategory(newAd("x", base), category)
				after := e.ScoreAdToCategory(newAd("x", base, extra), category)
				assert.GreaterOrEqual(t, after.Score, before.Score, "%q + %q against %q", base, extra, category)
			}
		}
	}
}

func TestScoreForTier(t *testing.T) {
	assert.Equal(t, 100, ScoreForTier(taxonomy.TierExact))
	assert.Equal(t, 90, ScoreForTier(taxonomy.TierPrimary))
	assert.Equal(t, 60, ScoreForTier(taxonomy.TierRelated))
	assert.Equal(t, 30, ScoreForTier(taxonomy.TierFallback))
	assert.Equal(t, 10, ScoreForTier(taxonomy.TierUniversal))
	assert.Equal(t, 0, ScoreForTier(taxonomy.TierNone))
}
