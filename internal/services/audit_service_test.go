package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admatch/internal/models"
	"admatch/internal/store"
	"admatch/internal/store/mocks"
)

func TestAuditService_Enqueue(t *testing.T) {
	ctx := context.Background()
	reports := new(mocks.ReportStore)
	jobs := new(mocks.JobClient)

	reports.On("SaveAudit", mock.Anything, mock.MatchedBy(func(a *models.CoverageAudit) bool {
		return a.ID != "" && a.Status == models.AuditStatusEnqueued
	})).Return(nil).Once()
	jobs.On("EnqueueCoverageAudit", mock.Anything, mock.AnythingOfType("string"), []string{"ai"}).
		Return(&asynq.TaskInfo{Queue: "audits"}, nil).Once()

	svc := NewAuditService(staticRegistry(t), nil, jobs, reports)
	audit, err := svc.Enqueue(ctx, []string{"ai"})
	require.NoError(t, err)
	assert.Equal(t, models.AuditStatusEnqueued, audit.Status)
	assert.NotEmpty(t, audit.ID)
	assert.False(t, audit.EnqueuedAt.IsZero())
	reports.AssertExpectations(t)
	jobs.AssertExpectations(t)
}

func TestAuditService_EnqueueFailureMarksAudit(t *testing.T) {
	ctx := context.Background()
	reports := new(mocks.ReportStore)
	jobs := new(mocks.JobClient)

	var saved []string
	reports.On("SaveAudit", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, args.Get(1).(*models.CoverageAudit).Status)
	}).Return(nil)
	jobs.On("EnqueueCoverageAudit", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()

	_, err := NewAuditService(staticRegistry(t), nil, jobs, reports).Enqueue(ctx, nil)
	assert.ErrorContains(t, err, "redis down")
	assert.Equal(t, []string{models.AuditStatusEnqueued, models.AuditStatusFailed}, saved)
}

func TestAuditService_Unavailable(t *testing.T) {
	ctx := context.Background()
	svc := NewAuditService(staticRegistry(t), nil, nil, nil)

	_, err := svc.Enqueue(ctx, nil)
	assert.ErrorIs(t, err, models.ErrJobsUnavailable)
	_, err = svc.Get(ctx, "x")
	assert.ErrorIs(t, err, models.ErrJobsUnavailable)
	_, err = svc.Run(ctx, "x", nil)
	assert.ErrorIs(t, err, models.ErrInventoryUnavailable)
}

func TestAuditService_Get(t *testing.T) {
	ctx := context.Background()
	reports := new(mocks.ReportStore)
	reports.On("GetAudit", mock.Anything, "known").Return(&models.CoverageAudit{ID: "known", Status: models.AuditStatusCompleted}, nil)
	reports.On("GetAudit", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	svc := NewAuditService(staticRegistry(t), nil, nil, reports)

	audit, err := svc.Get(ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, models.AuditStatusCompleted, audit.Status)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuditService_Run(t *testing.T) {
	ctx := context.Background()
	inv := new(mocks.Inventory)
	reports := new(mocks.ReportStore)

	inv.On("ListInventoryCategories", mock.Anything).Return([]string{"technology", "programming"}, nil).Once()
	inv.On("ListCandidateAds", mock.Anything, 0).Return(&store.CandidateSet{
		Ads: []*models.Ad{
			ad("covered", "ai"),
			ad("gap", "ai", "travel", " "),
			ad("universal"),
			{ID: "broken"},
		},
		Corrupt: []store.CorruptAd{{Row: 4, AdID: "garbled", Reason: "corrupt record"}},
	}, nil).Once()
	reports.On("GetAudit", mock.Anything, "audit-1").Return(nil, store.ErrNotFound).Once()
	reports.On("SaveAudit", mock.Anything, mock.Anything).Return(nil)

	audit, err := NewAuditService(staticRegistry(t), inv, nil, reports).Run(ctx, "audit-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "audit-1", audit.ID)
	assert.Equal(t, models.AuditStatusCompleted, audit.Status)
	assert.Equal(t, "svc-1", audit.GraphVersion)
	assert.Equal(t, []string{"technology", "programming"}, audit.InventoryCategories)
	assert.Equal(t, 3, audit.AdsScanned)
	assert.Equal(t, 2, audit.AdsSkipped)
	assert.Equal(t, 1, audit.UncoveredInterests)
	require.Len(t, audit.Ads, 1)
	assert.Equal(t, "gap", audit.Ads[0].AdID)
	assert.False(t, audit.Ads[0].Universal)
	require.Len(t, audit.Ads[0].Reports, 1)
	assert.Equal(t, "travel", audit.Ads[0].Reports[0].Interest)
	require.NotNil(t, audit.CompletedAt)
	inv.AssertExpectations(t)
}

func TestAuditService_RunFailure(t *testing.T) {
	ctx := context.Background()
	inv := new(mocks.Inventory)
	reports := new(mocks.ReportStore)

	inv.On("ListCandidateAds", mock.Anything, 0).Return(nil, errors.New("db gone")).Once()
	reports.On("GetAudit", mock.Anything, "audit-2").Return(&models.CoverageAudit{ID: "audit-2", Status: models.AuditStatusEnqueued}, nil).Once()
	reports.On("SaveAudit", mock.Anything, mock.Anything).Return(nil)

	audit, err := NewAuditService(staticRegistry(t), inv, nil, reports).Run(ctx, "audit-2", []string{"ai"})
	assert.ErrorContains(t, err, "db gone")
	assert.Equal(t, models.AuditStatusFailed, audit.Status)
	assert.Contains(t, audit.Error, "db gone")
}

func TestAuditService_RunWithoutInventoryMarksFailed(t *testing.T) {
	ctx := context.Background()
	reports := new(mocks.ReportStore)

	reports.On("GetAudit", mock.Anything, "audit-3").Return(&models.CoverageAudit{ID: "audit-3", Status: models.AuditStatusEnqueued}, nil).Once()
	reports.On("SaveAudit", mock.Anything, mock.MatchedBy(func(a *models.CoverageAudit) bool {
		return a.ID == "audit-3" && a.Status == models.AuditStatusFailed && a.Error != "" && a.CompletedAt != nil
	})).Return(nil).Once()

	audit, err := NewAuditService(staticRegistry(t), nil, nil, reports).Run(ctx, "audit-3", nil)
	assert.ErrorIs(t, err, models.ErrInventoryUnavailable)
	require.NotNil(t, audit)
	assert.Equal(t, models.AuditStatusFailed, audit.Status)
	assert.Equal(t, models.ErrInventoryUnavailable.Error(), audit.Error)
	reports.AssertExpectations(t)
}
