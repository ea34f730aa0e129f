package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Ad is a read-only snapshot of a campaign supplied by the ad inventory.
// An ad whose interests are all blank is a universal ad.
type Ad struct {
	ID                    string    `json:"id" db:"id"`
	Interests             []string  `json:"interests" db:"interests"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	RemainingBudget       float64   `json:"remaining_budget" db:"remaining_budget"`
	FrequencyCapRemaining int       `json:"frequency_cap_remaining" db:"frequency_cap_remaining"`
}

// Validate reports whether the ad carries the fields ranking depends on.
func (a *Ad) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil ad", ErrMalformedAd)
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedAd)
	}
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("%w: ad %s has no created_at", ErrMalformedAd, a.ID)
	}
	if math.IsNaN(a.RemainingBudget) || math.IsInf(a.RemainingBudget, 0) {
		return fmt.Errorf("%w: ad %s has non-finite remaining_budget", ErrMalformedAd, a.ID)
	}
	if a.FrequencyCapRemaining < 0 {
		return fmt.Errorf("%w: ad %s has negative frequency_cap_remaining", ErrMalformedAd, a.ID)
	}
	return nil
}

// IsMalformed reports whether err came from Ad.Validate.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedAd)
}

// ContentItem is a video (or similar unit) carrying exactly one category.
type ContentItem struct {
	ID       string `json:"id" db:"id"`
	Category string `json:"category" db:"category"`
}

// Validate checks that the item can be stored and ranked against.
func (c *ContentItem) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil content item", ErrValidation)
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: content item has no id", ErrValidation)
	}
	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("%w: content item %s has no category", ErrValidation, c.ID)
	}
	return nil
}

// MatchResult is produced fresh for every scoring call and never stored by the engine.
type MatchResult struct {
	AdID            string `json:"ad_id"`
	ContentCategory string `json:"content_category"`
	Tier            string `json:"tier"`
	Score           int    `json:"score"`
	MatchedInterest string `json:"matched_interest,omitempty"`
}

// SkippedAd records a candidate that could not be scored during ranking.
type SkippedAd struct {
	Index  int    `json:"index"`
	AdID   string `json:"ad_id,omitempty"`
	Reason string `json:"reason"`
}

// InterestReport is the advisory coverage finding for one proposed interest.
type InterestReport struct {
	Interest            string   `json:"interest"`
	NormalizedInterest  string   `json:"normalized_interest"`
	HasCoverage         bool     `json:"has_coverage"`
	BestScore           int      `json:"best_score"`
	MatchingCategories  []string `json:"matching_categories"`
	SuggestedCategories []string `json:"suggested_categories"`
	Warning             string   `json:"warning,omitempty"`
}

// AdCoverage groups the interest reports of one inventory ad.
type AdCoverage struct {
	AdID      string           `json:"ad_id"`
	Universal bool             `json:"universal"`
	Reports   []InterestReport `json:"reports"`
}

// CoverageAudit is the stored outcome of a background coverage audit.
type CoverageAudit struct {
	ID                  string       `json:"id"`
	Status              string       `json:"status"`
	GraphVersion        string       `json:"graph_version,omitempty"`
	InventoryCategories []string     `json:"inventory_categories,omitempty"`
	AdsScanned          int          `json:"ads_scanned"`
	AdsSkipped          int          `json:"ads_skipped,omitempty"`
	UncoveredInterests  int          `json:"uncovered_interests"`
	Ads                 []AdCoverage `json:"ads,omitempty"`
	Error               string       `json:"error,omitempty"`
	EnqueuedAt          time.Time    `json:"enqueued_at"`
	CompletedAt         *time.Time   `json:"completed_at,omitempty"`
}
