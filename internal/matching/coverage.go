package matching

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

type availableCategory struct {
	key   string
	label string
}

// ValidateInterests reports, for each proposed interest, whether the
// available inventory categories cover it at RELATED or better and, if not,
// which inventory categories are worth targeting instead. It is advisory
// only and never fails.
func (e *Engine) ValidateInterests(interests, availableCategories []string) []models.InterestReport {
	available := dedupeCategories(availableCategories)
	byKey := make(map[string]availableCategory, len(available))
	for _, c := range available {
		byKey[c.key] = c
	}

	reports := make([]models.InterestReport, 0, len(interests))
	for _, interest := range interests {
		reports = append(reports, e.validateInterest(interest, available, byKey))
	}
	return reports
}

func (e *Engine) validateInterest(interest string, available []availableCategory, byKey map[string]availableCategory) models.InterestReport {
	key := taxonomy.Normalize(interest)
	report := models.InterestReport{
		Interest:            interest,
		NormalizedInterest:  key,
		MatchingCategories:  []string{},
		SuggestedCategories: []string{},
	}

	type match struct {
		category availableCategory
		score    int
	}
	var matches []match
	for _, c := range available {
		_, score := e.scoreKeys(key, c.key)
		if score > report.BestScore {
			report.BestScore = score
		}
		if score >= CoverageThreshold {
			matches = append(matches, match{category: c, score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b match) int {
		return cmp.Compare(b.score, a.score)
	})
	for _, m := range matches {
		report.MatchingCategories = append(report.MatchingCategories, m.category.label)
	}

	report.HasCoverage = len(report.MatchingCategories) > 0
	if report.HasCoverage {
		return report
	}

	report.SuggestedCategories = e.suggest(key, taxonomy.TierRelated, byKey)
	if len(report.SuggestedCategories) == 0 {
		report.SuggestedCategories = e.suggest(key, taxonomy.TierFallback, byKey)
	}
	report.Warning = coverageWarning(interest, key, report.SuggestedCategories)
	return report
}

func (e *Engine) suggest(key string, atLeast taxonomy.Tier, byKey map[string]availableCategory) []string {
	suggestions := []string{}
	for _, n := range e.graph.NeighborsOf(key, atLeast) {
		if c, ok := byKey[n.Category]; ok {
			suggestions = append(suggestions, c.label)
		}
	}
	return suggestions
}

func coverageWarning(interest, key string, suggestions []string) string {
	if key == "" {
		return fmt.Sprintf("interest %q is blank after normalization and can never match a category", interest)
	}
	msg := fmt.Sprintf("no inventory category matches interest %q at RELATED or better; the ad will only serve through fallback or universal placement", interest)
	if len(suggestions) > 0 {
		msg += "; consider targeting: " + strings.Join(suggestions, ", ")
	}
	return msg
}

// dedupeCategories keeps the first spelling of each normalized category and
// drops blanks.
func dedupeCategories(categories []string) []availableCategory {
	seen := make(map[string]struct{}, len(categories))
	out := make([]availableCategory, 0, len(categories))
	for _, raw := range categories {
		key := taxonomy.Normalize(raw)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, availableCategory{key: key, label: strings.TrimSpace(raw)})
	}
	return out
}
