package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"botpanel/internal/metrics"
	"botpanel/internal/models"
)

// Pacer delivers one recipient window sequentially, enforcing a minimum
// delay between consecutive sends to respect the Telegram rate limit.
type Pacer struct {
	transport Transport
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewPacer creates a pacer with the given minimum inter-send delay.
// A non-positive delay disables pacing (used in tests).
func NewPacer(transport Transport, delay time.Duration, log zerolog.Logger) *Pacer {
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Pacer{
		transport: transport,
		limiter:   limiter,
		log:       log,
	}
}

// Deliver attempts exactly one send per recipient, in order, and classifies
// each outcome. Per-recipient failures never escalate: the returned error is
// non-nil only when the context is cancelled, and success+failed always
// equals the number of recipients attempted.
func (p *Pacer) Deliver(ctx context.Context, campaign *models.Campaign, window []int64) (success, failed int, err error) {
	for _, recipientID := range window {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return success, failed, err
			}
		}

		if err := p.sendOne(ctx, campaign, recipientID); err != nil {
			failed++
			p.classify(campaign.ID, recipientID, err)
		} else {
			success++
			metrics.RecordSend("success")
		}
	}

	return success, failed, nil
}

func (p *Pacer) sendOne(ctx context.Context, campaign *models.Campaign, recipientID int64) error {
	if campaign.HasImage() {
		return p.transport.SendPhoto(ctx, recipientID, *campaign.ImageFileID, campaign.Message, campaign.Buttons)
	}
	return p.transport.SendText(ctx, recipientID, campaign.Message, campaign.Buttons)
}

// classify routes a delivery failure to the right visibility level.
// Expected failures (blocked, deactivated, not found) are a normal part of
// broadcasting to a stale audience and stay out of operator logs.
func (p *Pacer) classify(campaignID, recipientID int64, err error) {
	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.Expected() {
		metrics.RecordSend("expected_failure")
		p.log.Debug().
			Int64("campaign_id", campaignID).
			Int64("recipient_id", recipientID).
			Str("kind", sendErr.Kind.String()).
			Msg("recipient unreachable")
		return
	}

	metrics.RecordSend("unexpected_failure")
	p.log.Warn().
		Int64("campaign_id", campaignID).
		Int64("recipient_id", recipientID).
		Err(err).
		Msg("unexpected delivery failure")
}
