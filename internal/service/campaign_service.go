package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"botpanel/internal/models"
	"botpanel/internal/repository"
)

// CampaignService handles campaign business logic for the admin API
type CampaignService struct {
	campaignRepo  repository.CampaignRepository
	recipientRepo repository.RecipientRepository
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	recipientRepo repository.RecipientRepository,
) *CampaignService {
	return &CampaignService{
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
	}
}

// CreateCampaign creates a new campaign in pending state
func (s *CampaignService) CreateCampaign(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error) {
	campaign := &models.Campaign{
		Status:      models.CampaignStatusPending,
		Message:     req.Message,
		ImageFileID: req.ImageFileID,
		Buttons:     req.Buttons,
		CreatorID:   req.CreatorID,
		ScheduledAt: time.Now(),
	}
	if req.ScheduledAt != nil {
		campaign.ScheduledAt = *req.ScheduledAt
	}

	if err := campaign.Validate(); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return campaign, nil
}

// GetCampaign retrieves a campaign with its delivery progress
func (s *CampaignService) GetCampaign(ctx context.Context, id int64) (*CampaignWithProgress, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Resource: "campaign", ID: id}
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return withProgress(campaign), nil
}

// ListCampaigns lists campaigns with filters and pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, filters repository.CampaignFilters) ([]*CampaignWithProgress, *PaginationInfo, error) {
	campaigns, total, err := s.campaignRepo.List(ctx, filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	result := make([]*CampaignWithProgress, 0, len(campaigns))
	for _, campaign := range campaigns {
		result = append(result, withProgress(campaign))
	}

	pagination := &PaginationInfo{
		Page:       filters.Page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	return result, pagination, nil
}

// DeleteCampaign deletes a campaign that has not started sending yet.
// Campaigns that entered delivery keep their row for reporting.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id int64) error {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Resource: "campaign", ID: id}
		}
		return fmt.Errorf("failed to get campaign: %w", err)
	}

	if campaign.Status != models.CampaignStatusPending {
		return &BusinessLogicError{
			Message: fmt.Sprintf("campaign cannot be deleted: status is %s", campaign.Status),
		}
	}

	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	return nil
}

// ListRecipients lists broadcast recipients with pagination
func (s *CampaignService) ListRecipients(ctx context.Context, page, pageSize int) ([]*models.Recipient, *PaginationInfo, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	recipients, total, err := s.recipientRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	pagination := &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	return recipients, pagination, nil
}

func withProgress(campaign *models.Campaign) *CampaignWithProgress {
	progress := 0.0
	if campaign.TotalUsers > 0 {
		progress = float64(campaign.CurrentOffset) / float64(campaign.TotalUsers) * 100
		if progress > 100 {
			progress = 100
		}
	}
	return &CampaignWithProgress{
		Campaign:        *campaign,
		ProgressPercent: progress,
	}
}

// Request/Response types

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Message     string            `json:"message"`
	ImageFileID *string           `json:"image_file_id,omitempty"`
	Buttons     models.ButtonRows `json:"buttons,omitempty"`
	CreatorID   *int64            `json:"creator_id,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
}

// CampaignWithProgress is a campaign plus its delivery progress
type CampaignWithProgress struct {
	models.Campaign
	ProgressPercent float64 `json:"progress_percent"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
