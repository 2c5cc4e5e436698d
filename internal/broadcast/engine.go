package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"botpanel/internal/metrics"
	"botpanel/internal/models"
	"botpanel/internal/repository"
)

const (
	// DefaultBatchSize is the recipient window processed per tick
	DefaultBatchSize = 50
	// DefaultSendDelay is the minimum pause between consecutive sends
	DefaultSendDelay = 350 * time.Millisecond
)

// TickEvent is the per-tick delivery report published to the activity feed
type TickEvent struct {
	CampaignID  int64     `json:"campaign_id"`
	BatchSent   int       `json:"batch_sent"`
	BatchFailed int       `json:"batch_failed"`
	NextOffset  int       `json:"next_offset"`
	Completed   bool      `json:"completed"`
	At          time.Time `json:"at"`
}

// Events receives best-effort per-tick delivery reports. Implementations
// must never block the tick; publish failures are swallowed.
type Events interface {
	TickCompleted(ctx context.Context, event TickEvent)
}

// TickResult is the summary returned to the trigger caller
type TickResult struct {
	Idle        bool  `json:"-"`
	CampaignID  int64 `json:"campaign_id"`
	BatchSent   int   `json:"batch_sent"`
	BatchFailed int   `json:"batch_failed"`
	NextOffset  int   `json:"next_offset"`
	TotalUsers  int   `json:"total_users"`
	Completed   bool  `json:"completed"`
	DurationMS  int64 `json:"duration_ms"`
}

// Config holds engine tuning knobs
type Config struct {
	BatchSize int
	SendDelay time.Duration
}

// Engine is the broadcast batch-delivery engine. It is invoked as short,
// stateless, non-overlapping ticks: each tick reads the campaign's persisted
// checkpoint, does one bounded window of work, and writes the updated
// checkpoint before returning. No state survives between ticks except
// through the store.
type Engine struct {
	campaigns  repository.CampaignStore
	recipients repository.RecipientStore
	transport  Transport
	pacer      *Pacer
	events     Events
	batchSize  int
	log        zerolog.Logger
}

// NewEngine wires the delivery engine. events may be nil.
func NewEngine(
	campaigns repository.CampaignStore,
	recipients repository.RecipientStore,
	transport Transport,
	events Events,
	cfg Config,
	log zerolog.Logger,
) *Engine {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	delay := cfg.SendDelay
	if delay == 0 {
		delay = DefaultSendDelay
	}

	return &Engine{
		campaigns:  campaigns,
		recipients: recipients,
		transport:  transport,
		pacer:      NewPacer(transport, delay, log),
		events:     events,
		batchSize:  batchSize,
		log:        log,
	}
}

// Tick advances at most one campaign by at most one recipient window.
//
// Control flow: select the earliest pending/sending campaign, normalize it
// to sending, fetch the window at the persisted offset, deliver it, then
// checkpoint or finalize. A nil error with Idle set means there was nothing
// to do. Any error aborts the tick before the checkpoint write, so the next
// tick resumes from the last committed offset.
func (e *Engine) Tick(ctx context.Context) (*TickResult, error) {
	start := time.Now()

	campaign, err := e.campaigns.NextActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select campaign: %w", err)
	}
	if campaign == nil {
		e.log.Debug().Msg("tick idle, no pending campaign")
		return &TickResult{Idle: true}, nil
	}

	log := e.log.With().Int64("campaign_id", campaign.ID).Logger()

	// First tick for this campaign: snapshot the eligible-recipient count
	// and enter sending. The snapshot is used for the rest of the tick
	// without re-querying.
	if campaign.Status == models.CampaignStatusPending {
		total, err := e.recipients.CountEligible(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count recipients: %w", err)
		}
		if err := e.campaigns.MarkSending(ctx, campaign.ID, total); err != nil {
			return nil, fmt.Errorf("failed to start campaign %d: %w", campaign.ID, err)
		}
		campaign.Status = models.CampaignStatusSending
		campaign.TotalUsers = total
		log.Info().Int("total_users", total).Msg("campaign started")
	}

	window, err := e.recipients.EligibleWindow(ctx, campaign.CurrentOffset, e.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipient window: %w", err)
	}

	success, failed, err := e.pacer.Deliver(ctx, campaign, window)
	if err != nil {
		return nil, fmt.Errorf("delivery interrupted: %w", err)
	}

	newOffset := campaign.CurrentOffset + len(window)
	newSuccess := campaign.SuccessCount + success
	newFailed := campaign.FailedCount + failed

	// A window shorter than the batch size means the stable enumeration has
	// no more eligible recipients beyond the offset: this tick is final.
	completed := len(window) < e.batchSize

	if completed {
		completedAt := time.Now()
		if err := e.campaigns.Complete(ctx, campaign.ID, campaign.CurrentOffset, newOffset, newSuccess, newFailed, completedAt); err != nil {
			return nil, fmt.Errorf("failed to complete campaign %d: %w", campaign.ID, err)
		}
		log.Info().
			Int("success", newSuccess).
			Int("failed", newFailed).
			Int("total_users", campaign.TotalUsers).
			Msg("campaign completed")
		metrics.CampaignsCompleted.Inc()
		e.notifyCreator(ctx, campaign, newSuccess, newFailed)
	} else {
		if err := e.campaigns.Checkpoint(ctx, campaign.ID, campaign.CurrentOffset, newOffset, newSuccess, newFailed); err != nil {
			return nil, fmt.Errorf("failed to checkpoint campaign %d: %w", campaign.ID, err)
		}
		log.Info().
			Int("batch_sent", success).
			Int("batch_failed", failed).
			Int("next_offset", newOffset).
			Msg("batch checkpointed")
	}

	result := &TickResult{
		CampaignID:  campaign.ID,
		BatchSent:   success,
		BatchFailed: failed,
		NextOffset:  newOffset,
		TotalUsers:  campaign.TotalUsers,
		Completed:   completed,
		DurationMS:  time.Since(start).Milliseconds(),
	}

	if e.events != nil {
		e.events.TickCompleted(ctx, TickEvent{
			CampaignID:  result.CampaignID,
			BatchSent:   result.BatchSent,
			BatchFailed: result.BatchFailed,
			NextOffset:  result.NextOffset,
			Completed:   result.Completed,
			At:          time.Now(),
		})
	}
	metrics.RecordTick(time.Since(start).Seconds())

	return result, nil
}

// notifyCreator tells the campaign creator the final totals. Failures here
// never affect the already persisted terminal state.
func (e *Engine) notifyCreator(ctx context.Context, campaign *models.Campaign, success, failed int) {
	if campaign.CreatorID == nil {
		return
	}

	text := fmt.Sprintf(
		"Broadcast #%d finished.\nDelivered: %d\nFailed: %d\nAudience: %d",
		campaign.ID, success, failed, campaign.TotalUsers,
	)
	if err := e.transport.SendText(ctx, *campaign.CreatorID, text, nil); err != nil {
		e.log.Warn().
			Int64("campaign_id", campaign.ID).
			Int64("creator_id", *campaign.CreatorID).
			Err(err).
			Msg("failed to notify campaign creator")
	}
}
