package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"admatch/internal/matching"
	"admatch/internal/metrics"
	"admatch/internal/models"
	"admatch/internal/store"
	"admatch/internal/taxonomy"
)

// AuditService runs coverage audits over the whole ad inventory in the
// background and keeps their reports.
type AuditService struct {
	registry  *taxonomy.Registry
	inventory store.Inventory
	jobs      store.JobClient
	reports   store.ReportStore
}

// NewAuditService builds an AuditService. Any dependency may be nil; the
// operations that need it then report it as unavailable.
func NewAuditService(registry *taxonomy.Registry, inventory store.Inventory, jobs store.JobClient, reports store.ReportStore) *AuditService {
	return &AuditService{registry: registry, inventory: inventory, jobs: jobs, reports: reports}
}

// Enqueue records a new audit and schedules it. categories overrides the
// inventory category set when non-empty.
func (s *AuditService) Enqueue(ctx context.Context, categories []string) (*models.CoverageAudit, error) {
	if s.jobs == nil || s.reports == nil {
		return nil, models.ErrJobsUnavailable
	}

	audit := &models.CoverageAudit{
		ID:                  uuid.NewString(),
		Status:              models.AuditStatusEnqueued,
		InventoryCategories: categories,
		EnqueuedAt:          time.Now().UTC(),
	}
	if err := s.reports.SaveAudit(ctx, audit); err != nil {
		return nil, fmt.Errorf("record audit %s: %w", audit.ID, err)
	}

	if _, err := s.jobs.EnqueueCoverageAudit(ctx, audit.ID, categories); err != nil {
		audit.Status = models.AuditStatusFailed
		audit.Error = err.Error()
		if saveErr := s.reports.SaveAudit(ctx, audit); saveErr != nil {
			log.WithField("audit_id", audit.ID).WithError(saveErr).Warn("could not mark audit as failed")
		}
		metrics.RecordAudit(audit.Status)
		return nil, fmt.Errorf("enqueue audit %s: %w", audit.ID, err)
	}
	return audit, nil
}

// Get returns a stored audit report.
func (s *AuditService) Get(ctx context.Context, id string) (*models.CoverageAudit, error) {
	if s.reports == nil {
		return nil, models.ErrJobsUnavailable
	}
	audit, err := s.reports.GetAudit(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("audit %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}
	return audit, nil
}

// Run executes the audit identified by auditID and stores the report. It
// is called by the worker.
func (s *AuditService) Run(ctx context.Context, auditID string, categories []string) (*models.CoverageAudit, error) {
	audit := s.load(ctx, auditID)
	if s.inventory == nil {
		audit.Status = models.AuditStatusFailed
		audit.Error = models.ErrInventoryUnavailable.Error()
		s.finish(ctx, audit)
		return audit, models.ErrInventoryUnavailable
	}

	audit.Status = models.AuditStatusRunning
	s.save(ctx, audit)

	if err := s.evaluate(ctx, audit, categories); err != nil {
		audit.Status = models.AuditStatusFailed
		audit.Error = err.Error()
		s.finish(ctx, audit)
		return audit, err
	}
	audit.Status = models.AuditStatusCompleted
	s.finish(ctx, audit)
	return audit, nil
}

func (s *AuditService) evaluate(ctx context.Context, audit *models.CoverageAudit, categories []string) error {
	if len(categories) == 0 {
		inv, err := s.inventory.ListInventoryCategories(ctx)
		if err != nil {
			return fmt.Errorf("load inventory categories: %w", err)
		}
		categories = inv
	}
	set, err := s.inventory.ListCandidateAds(ctx, 0)
	if err != nil {
		return fmt.Errorf("load inventory ads: %w", err)
	}

	e := matching.NewEngine(s.registry.Current())
	audit.GraphVersion = e.Graph().Version()
	audit.InventoryCategories = categories
	audit.Ads = nil
	audit.AdsScanned = 0
	audit.AdsSkipped = len(set.Corrupt)
	audit.UncoveredInterests = 0

	for _, ad := range set.Ads {
		if err := ad.Validate(); err != nil {
			log.WithFields(log.Fields{"audit_id": audit.ID, "ad_id": ad.ID}).WithError(err).Warn("audit skipping malformed ad")
			audit.AdsSkipped++
			continue
		}
		audit.AdsScanned++
		if coverage, uncovered := auditAd(e, ad, categories); uncovered > 0 {
			audit.Ads = append(audit.Ads, coverage)
			audit.UncoveredInterests += uncovered
		}
	}
	return nil
}

// auditAd reports the uncovered, non-blank interests of ad.
func auditAd(e *matching.Engine, ad *models.Ad, categories []string) (models.AdCoverage, int) {
	coverage := models.AdCoverage{AdID: ad.ID, Universal: true}
	for _, r := range e.ValidateInterests(ad.Interests, categories) {
		if r.NormalizedInterest == "" {
			continue
		}
		coverage.Universal = false
		if !r.HasCoverage {
			coverage.Reports = append(coverage.Reports, r)
		}
	}
	return coverage, len(coverage.Reports)
}

func (s *AuditService) load(ctx context.Context, id string) *models.CoverageAudit {
	if s.reports != nil {
		if audit, err := s.reports.GetAudit(ctx, id); err == nil {
			return audit
		} else if !errors.Is(err, store.ErrNotFound) {
			log.WithField("audit_id", id).WithError(err).Warn("could not load audit record; starting a new one")
		}
	}
	return &models.CoverageAudit{ID: id, EnqueuedAt: time.Now().UTC()}
}

func (s *AuditService) save(ctx context.Context, audit *models.CoverageAudit) {
	if s.reports == nil {
		return
	}
	if err := s.reports.SaveAudit(ctx, audit); err != nil {
		log.WithFields(log.Fields{"audit_id": audit.ID, "status": audit.Status}).WithError(err).Warn("could not save audit record")
	}
}

func (s *AuditService) finish(ctx context.Context, audit *models.CoverageAudit) {
	now := time.Now().UTC()
	audit.CompletedAt = &now
	s.save(ctx, audit)
	metrics.RecordAudit(audit.Status)
	log.WithFields(log.Fields{
		"audit_id":            audit.ID,
		"status":              audit.Status,
		"ads_scanned":         audit.AdsScanned,
		"ads_skipped":         audit.AdsSkipped,
		"uncovered_interests": audit.UncoveredInterests,
	}).Info("coverage audit finished")
}
