package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"botpanel/internal/models"
)

const campaignColumns = `id, status, message, image_file_id, buttons, creator_id, scheduled_at,
		current_offset, total_users, success_count, failed_count, sent_count,
		completed_at, created_at, updated_at`

type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := row.Scan(
		&campaign.ID,
		&campaign.Status,
		&campaign.Message,
		&campaign.ImageFileID,
		&campaign.Buttons,
		&campaign.CreatorID,
		&campaign.ScheduledAt,
		&campaign.CurrentOffset,
		&campaign.TotalUsers,
		&campaign.SuccessCount,
		&campaign.FailedCount,
		&campaign.SentCount,
		&campaign.CompletedAt,
		&campaign.CreatedAt,
		&campaign.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// Create creates a new campaign in pending state
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (status, message, image_file_id, buttons, creator_id, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.Status,
		campaign.Message,
		campaign.ImageFileID,
		campaign.Buttons,
		campaign.CreatorID,
		campaign.ScheduledAt,
	).Scan(&campaign.ID, &campaign.CreatedAt, &campaign.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// NextActive returns the pending/sending campaign with the earliest schedule.
// Selection is re-evaluated fresh every tick; nothing is cached.
func (r *campaignRepository) NextActive(ctx context.Context) (*models.Campaign, error) {
	query := `
		SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE status IN ('pending', 'sending')
		ORDER BY scheduled_at ASC
		LIMIT 1
	`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select next campaign: %w", err)
	}

	return campaign, nil
}

// MarkSending transitions a pending campaign to sending and fixes the
// total_users snapshot. Guarded on status so the transition happens at most
// once per campaign.
func (r *campaignRepository) MarkSending(ctx context.Context, id int64, totalUsers int) error {
	query := `
		UPDATE campaigns
		SET status = 'sending', total_users = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, id, totalUsers)
	if err != nil {
		return fmt.Errorf("failed to mark campaign sending: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleCheckpoint
	}

	return nil
}

// Checkpoint persists the new offset and cumulative counters after a full
// window. The prevOffset guard makes concurrent ticks unable to double-count:
// the loser of the race matches no row and gets ErrStaleCheckpoint.
func (r *campaignRepository) Checkpoint(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int) error {
	query := `
		UPDATE campaigns
		SET current_offset = $3, success_count = $4, failed_count = $5,
			sent_count = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'sending' AND current_offset = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, prevOffset, newOffset, successCount, failedCount)
	if err != nil {
		return fmt.Errorf("failed to checkpoint campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleCheckpoint
	}

	return nil
}

// Complete transitions a sending campaign to its terminal sent state.
// Once sent no further tick touches the row.
func (r *campaignRepository) Complete(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int, completedAt time.Time) error {
	query := `
		UPDATE campaigns
		SET status = 'sent', current_offset = $3, success_count = $4,
			failed_count = $5, sent_count = $4, completed_at = $6, updated_at = NOW()
		WHERE id = $1 AND status = 'sending' AND current_offset = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, prevOffset, newOffset, successCount, failedCount, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleCheckpoint
	}

	return nil
}

// List retrieves campaigns with filters and pagination
func (r *campaignRepository) List(ctx context.Context, filters CampaignFilters) ([]*models.Campaign, int, error) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`)

	args := []interface{}{}
	argPos := 1

	if filters.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	// Order by ID DESC for stable pagination
	queryBuilder.WriteString(" ORDER BY id DESC")

	limit := filters.PageSize
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := (filters.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	countQuery := "SELECT COUNT(*) FROM campaigns WHERE 1=1"
	countArgs := []interface{}{}

	if filters.Status != nil {
		countQuery += " AND status = $1"
		countArgs = append(countArgs, *filters.Status)
	}

	var totalCount int
	err = r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total count: %w", err)
	}

	return campaigns, totalCount, nil
}

// Delete deletes a campaign
func (r *campaignRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM campaigns WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
