package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"botpanel/internal/models"
)

// ErrStaleCheckpoint is returned when a guarded campaign update matches no
// row, meaning another tick already advanced the campaign past the state
// this tick observed. The tick must abort without writing anything else.
var ErrStaleCheckpoint = errors.New("campaign checkpoint is stale")

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// CampaignStore is the narrow view of campaign persistence consumed by the
// delivery engine. All mutations are guarded updates: they only apply when
// the row is still in the state the caller observed, and report
// ErrStaleCheckpoint otherwise.
type CampaignStore interface {
	// NextActive returns the pending or sending campaign with the earliest
	// schedule, or (nil, nil) when there is nothing to do.
	NextActive(ctx context.Context) (*models.Campaign, error)
	// MarkSending transitions a pending campaign to sending and snapshots
	// the eligible-recipient count.
	MarkSending(ctx context.Context, id int64, totalUsers int) error
	// Checkpoint advances the offset and cumulative counters of a sending
	// campaign. prevOffset guards against concurrent ticks.
	Checkpoint(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int) error
	// Complete transitions a sending campaign to its terminal sent state.
	Complete(ctx context.Context, id int64, prevOffset, newOffset, successCount, failedCount int, completedAt time.Time) error
}

// RecipientStore is the narrow view of recipient persistence consumed by
// the delivery engine. EligibleWindow must enumerate recipients in a stable
// order so that offset-based windowing never skips or repeats rows as the
// pool mutates.
type RecipientStore interface {
	CountEligible(ctx context.Context) (int, error)
	EligibleWindow(ctx context.Context, offset, limit int) ([]int64, error)
}

// CampaignRepository defines campaign data access operations
type CampaignRepository interface {
	CampaignStore

	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	List(ctx context.Context, filters CampaignFilters) ([]*models.Campaign, int, error)
	Delete(ctx context.Context, id int64) error
}

// RecipientRepository defines recipient data access operations
type RecipientRepository interface {
	RecipientStore

	Upsert(ctx context.Context, recipient *models.Recipient) error
	List(ctx context.Context, limit, offset int) ([]*models.Recipient, int, error)
	SetBlocked(ctx context.Context, telegramID int64, blocked bool) error
}

// CampaignFilters defines filters for listing campaigns
type CampaignFilters struct {
	Page     int
	PageSize int
	Status   *models.CampaignStatus
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
