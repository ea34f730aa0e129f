package services

import (
	"time"

	"admatch/internal/models"
	"admatch/internal/taxonomy"
)

// ScoreOutcome is the result of scoring one interest against one category.
type ScoreOutcome struct {
	Interest     string `json:"interest"`
	Category     string `json:"category"`
	CategoryName string `json:"category_name,omitempty"`
	Tier         string `json:"tier"`
	Score        int    `json:"score"`
	GraphVersion string `json:"graph_version"`
}

// StoredAdScore is the result of scoring an inventory ad by id.
type StoredAdScore struct {
	Ad           *models.Ad         `json:"ad"`
	CategoryName string             `json:"category_name,omitempty"`
	GraphVersion string             `json:"graph_version"`
	Result       models.MatchResult `json:"result"`
}

// RankOptions trims a ranking. Zero values return the full ordering.
type RankOptions struct {
	// Limit keeps the first Limit results when positive.
	Limit int
	// ExcludeZero drops NONE results before Limit is applied.
	ExcludeZero bool
}

// RankOutcome is a ranking plus the diagnostics gathered while producing it.
type RankOutcome struct {
	Category     string               `json:"category"`
	ContentID    string               `json:"content_id,omitempty"`
	GraphVersion string               `json:"graph_version"`
	Candidates   int                  `json:"candidates"`
	Truncated    bool                 `json:"truncated,omitempty"`
	Results      []models.MatchResult `json:"results"`
	Skipped      []models.SkippedAd   `json:"skipped,omitempty"`
}

// CoverageOutcome is the advisory result of ValidateInterests.
type CoverageOutcome struct {
	GraphVersion        string                  `json:"graph_version"`
	AvailableCategories []string                `json:"available_categories"`
	Reports             []models.InterestReport `json:"reports"`
}

// CategoryListing describes a taxonomy snapshot.
type CategoryListing struct {
	GraphVersion string                  `json:"graph_version"`
	SnapshotID   string                  `json:"snapshot_id"`
	Source       string                  `json:"source"`
	LoadedAt     time.Time               `json:"loaded_at"`
	EdgeCount    int                     `json:"edge_count"`
	Categories   []taxonomy.CategoryInfo `json:"categories"`
}

// ReloadOutcome reports what a taxonomy reload swapped.
type ReloadOutcome struct {
	PreviousVersion string `json:"previous_version"`
	GraphVersion    string `json:"graph_version"`
	SnapshotID      string `json:"snapshot_id"`
	Categories      int    `json:"categories"`
	Edges           int    `json:"edges"`
	Broadcast       bool   `json:"broadcast"`
}
