package matching

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admatch/internal/models"
)

func ids(results []models.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.AdID
	}
	return out
}

func TestRankAds_OrdersByScoreThenTieBreaks(t *testing.T) {
	e := testEngine(t)

	exact := newAd("exact", "technology")
	unlinked := newAd("gadgets", "gadgets")
	related := newAd("related", "ai")

	richer := newAd("richer", "ai")
	richer.RemainingBudget = 500

	moreCap := newAd("more-cap", "ai")
	moreCap.FrequencyCapRemaining = 9

	older := newAd("older", "ai")
	older.CreatedAt = baseTime.Add(-time.Hour)

	universal := newAd("universal")
	none := newAd("none", "travel")

	ads := []*models.Ad{none, universal, related, older, moreCap, richer, exact, unlinked}

	// Edges are directed: technology lists gadgets, not the other way round.
	_, score := e.ScoreInterestToCategory("gadgets", "technology")
	require.Equal(t, ScoreNone, score)

	got := ids(e.RankAds("technology", ads))
	assert.Equal(t, []string{"exact", "richer", "more-cap", "older", "related", "universal", "gadgets", "none"}, got)
}

func TestRankAds_TieBreakExamples(t *testing.T) {
	e := testEngine(t)

	a := newAd("a", "ai")
	b := newAd("b", "ai")
	b.RemainingBudget = 200
	assert.Equal(t, []string{"b", "a"}, ids(e.RankAds("technology", []*models.Ad{a, b})))

	c := newAd("c", "ai")
	d := newAd("d", "ai")
	d.CreatedAt = baseTime.Add(-24 * time.Hour)
	assert.Equal(t, []string{"d", "c"}, ids(e.RankAds("technology", []*models.Ad{c, d})))

	// Everything equal: ad id decides.
	x := newAd("x", "ai")
	w := newAd("w", "ai")
	assert.Equal(t, []string{"w", "x"}, ids(e.RankAds("technology", []*models.Ad{x, w})))
}

func TestRankAds_Deterministic(t *testing.T) {
	e := testEngine(t)
	build := func() []*models.Ad {
		var ads []*models.Ad
		for i, interest := range []string{"ai", "technology", "travel", "", "food", "ai", "gadgets"} {
			ad := newAd(string(rune('a'+i)), interest)
			ad.RemainingBudget = float64(i % 3)
			ads = append(ads, ad)
		}
		return ads
	}

	first := e.RankAds("programming", build())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, e.RankAds("programming", build()))
	}
}

func TestRankAds_UniversalAboveNone(t *testing.T) {
	e := testEngine(t)
	results := e.RankAds("ai", []*models.Ad{newAd("zero", "cooking"), newAd("universal")})
	require.Len(t, results, 2)
	assert.Equal(t, "universal", results[0].AdID)
	assert.Equal(t, ScoreUniversal, results[0].Score)
	assert.Equal(t, "zero", results[1].AdID)
	assert.Equal(t, ScoreNone, results[1].Score)
}

func TestRank_SkipsMalformedAds(t *testing.T) {
	e := testEngine(t)

	noID := newAd(" ", "ai")
	noDate := newAd("no-date", "ai")
	noDate.CreatedAt = time.Time{}
	nanBudget := newAd("nan", "ai")
	nanBudget.RemainingBudget = math.NaN()
	negCap := newAd("neg-cap", "ai")
	negCap.FrequencyCapRemaining = -1
	good := newAd("good", "ai")

	report := e.Rank("ai", []*models.Ad{nil, noID, noDate, good, nanBudget, negCap})
	assert.Equal(t, "ai", report.Category)
	assert.Equal(t, []string{"good"}, ids(report.Results))
	require.Len(t, report.Skipped, 5)

	indexes := make([]int, len(report.Skipped))
	for i, s := range report.Skipped {
		indexes[i] = s.Index
		assert.NotEmpty(t, s.Reason)
	}
	assert.Equal(t, []int{0, 1, 2, 4, 5}, indexes)
	assert.Equal(t, "no-date", report.Skipped[2].AdID)
}

func TestSelectTopN(t *testing.T) {
	e := testEngine(t)
	ads := []*models.Ad{newAd("a", "ai"), newAd("b", "travel"), newAd("c", "technology")}

	assert.Equal(t, []string{"c", "a"}, ids(e.SelectTopN("technology", ads, 2)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(e.SelectTopN("technology", ads, 10)))
	assert.Empty(t, e.SelectTopN("technology", ads, 0))
	assert.Empty(t, e.SelectTopN("technology", ads, -3))

	// Zero scores are kept by default.
	all := e.SelectTopN("technology", ads, 3)
	assert.Equal(t, 0, all[2].Score)
	assert.Equal(t, []string{"c", "a"}, ids(DropZero(all)))
}

func TestRankAds_EmptyInput(t *testing.T) {
	e := testEngine(t)
	assert.Empty(t, e.RankAds("ai", nil))
}
