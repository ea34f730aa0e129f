package matching

import (
	"cmp"
	"slices"

	log "github.com/sirupsen/logrus"

	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

// RankReport is the ordered outcome of one ranking call plus the candidates
// that could not be scored.
type RankReport struct {
	Category string               `json:"category"`
	Results  []models.MatchResult `json:"results"`
	Skipped  []models.SkippedAd   `json:"skipped,omitempty"`
}

type scoredAd struct {
	ad     *models.Ad
	result models.MatchResult
}

// Rank scores every candidate against category and orders them by
// score desc, remaining budget desc, frequency cap remaining desc,
// created_at asc, then ad id asc. Malformed candidates are skipped and
// logged; they never abort the ranking of the rest.
func (e *Engine) Rank(category string, ads []*models.Ad) RankReport {
	key := taxonomy.Normalize(category)
	report := RankReport{Category: key}

	scored := make([]scoredAd, 0, len(ads))
	for i, ad := range ads {
		if err := ad.Validate(); err != nil {
			skip := models.SkippedAd{Index: i, Reason: err.Error()}
			if ad != nil {
				skip.AdID = ad.ID
			}
			report.Skipped = append(report.Skipped, skip)
			log.WithFields(log.Fields{
				"index":    i,
				"ad_id":    skip.AdID,
				"category": key,
			}).WithError(err).Warn("skipping unscorable ad")
			continue
		}
		scored = append(scored, scoredAd{ad: ad, result: e.scoreAd(ad, key)})
	}

	slices.SortStableFunc(scored, compareScored)

	report.Results = make([]models.MatchResult, len(scored))
	for i, s := range scored {
		report.Results[i] = s.result
	}
	return report
}

// RankAds returns the full deterministic ordering of the scorable candidates.
func (e *Engine) RankAds(category string, ads []*models.Ad) []models.MatchResult {
	return e.Rank(category, ads).Results
}

// SelectTopN returns the first n entries of RankAds. Zero-score entries are
// kept; callers decide whether to drop them. n <= 0 selects nothing.
func (e *Engine) SelectTopN(category string, ads []*models.Ad, n int) []models.MatchResult {
	return TopN(e.RankAds(category, ads), n)
}

// TopN truncates an already ranked list.
func TopN(results []models.MatchResult, n int) []models.MatchResult {
	if n <= 0 {
		return []models.MatchResult{}
	}
	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}

// DropZero removes entries that scored NONE.
func DropZero(results []models.MatchResult) []models.MatchResult {
	kept := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Score > ScoreNone {
			kept = append(kept, r)
		}
	}
	return kept
}

func compareScored(a, b scoredAd) int {
	if c := cmp.Compare(b.result.Score, a.result.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ad.RemainingBudget, a.ad.RemainingBudget); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ad.FrequencyCapRemaining, a.ad.FrequencyCapRemaining); c != 0 {
		return c
	}
	if c := a.ad.CreatedAt.Compare(b.ad.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ad.ID, b.ad.ID)
}
