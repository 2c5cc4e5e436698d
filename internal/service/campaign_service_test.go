package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/models"
	"botpanel/internal/repository"
)

func TestCreateCampaign(t *testing.T) {
	var created *models.Campaign
	campaignRepo := &mockCampaignRepo{
		CreateFunc: func(ctx context.Context, campaign *models.Campaign) error {
			campaign.ID = 5
			created = campaign
			return nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	campaign, err := svc.CreateCampaign(context.Background(), &CreateCampaignRequest{
		Message: "hello everyone",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), campaign.ID)
	assert.Equal(t, models.CampaignStatusPending, created.Status)
	assert.False(t, created.ScheduledAt.IsZero())
}

func TestCreateCampaignHonorsSchedule(t *testing.T) {
	campaignRepo := &mockCampaignRepo{}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})
	scheduledAt := time.Now().Add(2 * time.Hour)

	campaign, err := svc.CreateCampaign(context.Background(), &CreateCampaignRequest{
		Message:     "scheduled post",
		ScheduledAt: &scheduledAt,
	})

	require.NoError(t, err)
	assert.Equal(t, scheduledAt, campaign.ScheduledAt)
}

func TestCreateCampaignEmptyMessage(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, &mockRecipientRepo{})

	_, err := svc.CreateCampaign(context.Background(), &CreateCampaignRequest{})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateCampaignInvalidButton(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, &mockRecipientRepo{})

	_, err := svc.CreateCampaign(context.Background(), &CreateCampaignRequest{
		Message: "check this out",
		Buttons: models.ButtonRows{{{Text: "Open", URL: ""}}},
	})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestGetCampaignNotFound(t *testing.T) {
	svc := NewCampaignService(&mockCampaignRepo{}, &mockRecipientRepo{})

	_, err := svc.GetCampaign(context.Background(), 99)

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, int64(99), notFoundErr.ID)
}

func TestGetCampaignProgress(t *testing.T) {
	campaignRepo := &mockCampaignRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Campaign, error) {
			return &models.Campaign{
				ID:            id,
				Status:        models.CampaignStatusSending,
				CurrentOffset: 30,
				TotalUsers:    120,
			}, nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	campaign, err := svc.GetCampaign(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 25.0, campaign.ProgressPercent)
}

func TestGetCampaignProgressCapped(t *testing.T) {
	// The pool can shrink below the snapshot mid-campaign; progress must
	// still top out at 100.
	campaignRepo := &mockCampaignRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Campaign, error) {
			return &models.Campaign{
				ID:            id,
				Status:        models.CampaignStatusSent,
				CurrentOffset: 130,
				TotalUsers:    120,
			}, nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	campaign, err := svc.GetCampaign(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 100.0, campaign.ProgressPercent)
}

func TestDeleteCampaignPending(t *testing.T) {
	deleted := false
	campaignRepo := &mockCampaignRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Campaign, error) {
			return &models.Campaign{ID: id, Status: models.CampaignStatusPending}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	err := svc.DeleteCampaign(context.Background(), 7)

	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestDeleteCampaignAlreadySending(t *testing.T) {
	campaignRepo := &mockCampaignRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Campaign, error) {
			return &models.Campaign{ID: id, Status: models.CampaignStatusSending}, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			t.Fatal("delete must not be called for a started campaign")
			return nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	err := svc.DeleteCampaign(context.Background(), 7)

	var businessErr *BusinessLogicError
	assert.ErrorAs(t, err, &businessErr)
}

func TestListCampaignsPagination(t *testing.T) {
	campaignRepo := &mockCampaignRepo{
		ListFunc: func(ctx context.Context, filters repository.CampaignFilters) ([]*models.Campaign, int, error) {
			return []*models.Campaign{{ID: 1}, {ID: 2}}, 45, nil
		},
	}
	svc := NewCampaignService(campaignRepo, &mockRecipientRepo{})

	campaigns, pagination, err := svc.ListCampaigns(context.Background(), repository.CampaignFilters{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Len(t, campaigns, 2)
	assert.Equal(t, 45, pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages)
}

func TestListRecipients(t *testing.T) {
	recipientRepo := &mockRecipientRepo{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 20, offset)
			return []*models.Recipient{{ID: 21, TelegramID: 1021}}, 33, nil
		},
	}
	svc := NewCampaignService(&mockCampaignRepo{}, recipientRepo)

	recipients, pagination, err := svc.ListRecipients(context.Background(), 2, 20)

	require.NoError(t, err)
	assert.Len(t, recipients, 1)
	assert.Equal(t, 2, pagination.TotalPages)
}

func TestListRecipientsRepoError(t *testing.T) {
	recipientRepo := &mockRecipientRepo{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error) {
			return nil, 0, errors.New("connection refused")
		},
	}
	svc := NewCampaignService(&mockCampaignRepo{}, recipientRepo)

	_, _, err := svc.ListRecipients(context.Background(), 1, 20)

	assert.Error(t, err)
}
