// Package mocks holds testify mocks for the store interfaces.
package mocks

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"admatch/internal/models"
	"admatch/internal/store"
)

var (
	_ store.Inventory   = (*Inventory)(nil)
	_ store.JobClient   = (*JobClient)(nil)
	_ store.ReportStore = (*ReportStore)(nil)
	_ store.ReloadBus   = (*ReloadBus)(nil)
)

// Inventory mocks store.Inventory.
type Inventory struct {
	mock.Mock
}

func (m *Inventory) ListCandidateAds(ctx context.Context, limit int) (*store.CandidateSet, error) {
	args := m.Called(ctx, limit)
	set, _ := args.Get(0).(*store.CandidateSet)
	return set, args.Error(1)
}

func (m *Inventory) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	args := m.Called(ctx, id)
	ad, _ := args.Get(0).(*models.Ad)
	return ad, args.Error(1)
}

func (m *Inventory) GetContentItem(ctx context.Context, id string) (*models.ContentItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.ContentItem)
	return item, args.Error(1)
}

func (m *Inventory) ListInventoryCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

func (m *Inventory) SaveAd(ctx context.Context, ad *models.Ad) error {
	return m.Called(ctx, ad).Error(0)
}

func (m *Inventory) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *Inventory) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *Inventory) Close() error {
	return m.Called().Error(0)
}

// JobClient mocks store.JobClient.
type JobClient struct {
	mock.Mock
}

func (m *JobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *JobClient) EnqueueCoverageAudit(ctx context.Context, auditID string, categories []string) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, auditID, categories)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *JobClient) Close() error {
	return m.Called().Error(0)
}

// ReportStore mocks store.ReportStore.
type ReportStore struct {
	mock.Mock
}

func (m *ReportStore) SaveAudit(ctx context.Context, audit *models.CoverageAudit) error {
	return m.Called(ctx, audit).Error(0)
}

func (m *ReportStore) GetAudit(ctx context.Context, id string) (*models.CoverageAudit, error) {
	args := m.Called(ctx, id)
	audit, _ := args.Get(0).(*models.CoverageAudit)
	return audit, args.Error(1)
}

// ReloadBus mocks store.ReloadBus.
type ReloadBus struct {
	mock.Mock
}

func (m *ReloadBus) Publish(ctx context.Context, notice store.ReloadNotice) error {
	return m.Called(ctx, notice).Error(0)
}

func (m *ReloadBus) Subscribe(ctx context.Context, handle func(store.ReloadNotice)) error {
	return m.Called(ctx, handle).Error(0)
}

func (m *ReloadBus) Close() error {
	return m.Called().Error(0)
}
