package service

import (
	"context"
	"time"

	"botpanel/internal/models"
	"botpanel/internal/repository"
)

// mockCampaignRepo is a func-field mock of repository.CampaignRepository.
// Unset methods return zero values.
type mockCampaignRepo struct {
	CreateFunc      func(ctx context.Context, campaign *models.Campaign) error
	GetByIDFunc     func(ctx context.Context, id int64) (*models.Campaign, error)
	ListFunc        func(ctx context.Context, filters repository.CampaignFilters) ([]*models.Campaign, int, error)
	DeleteFunc      func(ctx context.Context, id int64) error
	NextActiveFunc  func(ctx context.Context) (*models.Campaign, error)
	MarkSendingFunc func(ctx context.Context, id int64, totalUsers int) error
	CheckpointFunc  func(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int) error
	CompleteFunc    func(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int, completedAt time.Time) error
}

func (m *mockCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, campaign)
	}
	return nil
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCampaignRepo) List(ctx context.Context, filters repository.CampaignFilters) ([]*models.Campaign, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	return nil, 0, nil
}

func (m *mockCampaignRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCampaignRepo) NextActive(ctx context.Context) (*models.Campaign, error) {
	if m.NextActiveFunc != nil {
		return m.NextActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockCampaignRepo) MarkSending(ctx context.Context, id int64, totalUsers int) error {
	if m.MarkSendingFunc != nil {
		return m.MarkSendingFunc(ctx, id, totalUsers)
	}
	return nil
}

func (m *mockCampaignRepo) Checkpoint(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int) error {
	if m.CheckpointFunc != nil {
		return m.CheckpointFunc(ctx, id, prevOffset, newOffset, successCount, failedCount)
	}
	return nil
}

func (m *mockCampaignRepo) Complete(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int, completedAt time.Time) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, prevOffset, newOffset, successCount, failedCount, completedAt)
	}
	return nil
}

// mockRecipientRepo is a func-field mock of repository.RecipientRepository
type mockRecipientRepo struct {
	UpsertFunc         func(ctx context.Context, recipient *models.Recipient) error
	ListFunc           func(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error)
	SetBlockedFunc     func(ctx context.Context, telegramID int64, blocked bool) error
	CountEligibleFunc  func(ctx context.Context) (int, error)
	EligibleWindowFunc func(ctx context.Context, offset, limit int) ([]int64, error)
}

func (m *mockRecipientRepo) Upsert(ctx context.Context, recipient *models.Recipient) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, recipient)
	}
	return nil
}

func (m *mockRecipientRepo) List(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockRecipientRepo) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(ctx, telegramID, blocked)
	}
	return nil
}

func (m *mockRecipientRepo) CountEligible(ctx context.Context) (int, error) {
	if m.CountEligibleFunc != nil {
		return m.CountEligibleFunc(ctx)
	}
	return 0, nil
}

func (m *mockRecipientRepo) EligibleWindow(ctx context.Context, offset, limit int) ([]int64, error) {
	if m.EligibleWindowFunc != nil {
		return m.EligibleWindowFunc(ctx, offset, limit)
	}
	return nil, nil
}
