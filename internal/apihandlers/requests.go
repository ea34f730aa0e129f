package apihandlers

import "admatch/internal/models"

// ScoreAdRequest is the body of POST /api/v1/score.
type ScoreAdRequest struct {
	Ad       *models.Ad `json:"ad"`
	Category string     `json:"category"`
}

// RankRequest is the body of POST /api/v1/rank. Limit defaults to the
// configured ranking.default_limit.
type RankRequest struct {
	Category    string       `json:"category"`
	Ads         []*models.Ad `json:"ads"`
	Limit       *int         `json:"limit,omitempty"`
	ExcludeZero bool         `json:"exclude_zero"`
}

// CoverageRequest is the body of POST /api/v1/coverage. When
// AvailableCategories is empty the inventory category set is used.
type CoverageRequest struct {
	Interests           []string `json:"interests"`
	AvailableCategories []string `json:"available_categories"`
}

// AuditRequest is the optional body of POST /api/v1/admin/coverage-audits.
type AuditRequest struct {
	Categories []string `json:"categories"`
}
