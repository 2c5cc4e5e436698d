package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CampaignStatus represents valid campaign statuses
type CampaignStatus string

const (
	CampaignStatusPending CampaignStatus = "pending"
	CampaignStatusSending CampaignStatus = "sending"
	CampaignStatusSent    CampaignStatus = "sent"
	CampaignStatusFailed  CampaignStatus = "failed"
)

// Button is a single inline button attached to a broadcast message
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ButtonRows is the inline keyboard layout stored as JSONB.
// The payload is opaque to the delivery engine; it is composed by the admin
// panel and passed through to Telegram unchanged.
type ButtonRows [][]Button

// Value implements driver.Valuer for JSONB storage
func (b ButtonRows) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB storage
func (b *ButtonRows) Scan(src interface{}) error {
	if src == nil {
		*b = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("buttons: unsupported scan type %T", src)
	}
	return json.Unmarshal(data, b)
}

// Campaign represents one unit of broadcast work.
//
// CurrentOffset is the count of recipients already attempted (success or
// failure) and is the sole resumption checkpoint between ticks. TotalUsers
// is snapshotted once when the campaign enters "sending" and is never
// recomputed afterwards; it is authoritative for reporting only.
type Campaign struct {
	ID            int64          `json:"id" db:"id"`
	Status        CampaignStatus `json:"status" db:"status"`
	Message       string         `json:"message" db:"message"`
	ImageFileID   *string        `json:"image_file_id,omitempty" db:"image_file_id"`
	Buttons       ButtonRows     `json:"buttons,omitempty" db:"buttons"`
	CreatorID     *int64         `json:"creator_id,omitempty" db:"creator_id"`
	ScheduledAt   time.Time      `json:"scheduled_at" db:"scheduled_at"`
	CurrentOffset int            `json:"current_offset" db:"current_offset"`
	TotalUsers    int            `json:"total_users" db:"total_users"`
	SuccessCount  int            `json:"success_count" db:"success_count"`
	FailedCount   int            `json:"failed_count" db:"failed_count"`
	SentCount     int            `json:"sent_count" db:"sent_count"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks if the campaign fields are valid
func (c *Campaign) Validate() error {
	if c.Message == "" {
		return fmt.Errorf("campaign message is required")
	}
	for _, row := range c.Buttons {
		for _, btn := range row {
			if btn.Text == "" || btn.URL == "" {
				return fmt.Errorf("inline buttons require both text and url")
			}
		}
	}
	return nil
}

// IsTerminal reports whether the campaign reached a terminal state
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignStatusSent || c.Status == CampaignStatusFailed
}

// HasImage reports whether the campaign carries a photo payload
func (c *Campaign) HasImage() bool {
	return c.ImageFileID != nil && *c.ImageFileID != ""
}
