package models

import "time"

// Recipient represents a bot user eligible to receive broadcasts.
//
// The primary key is a monotone creation-order id, which gives the
// delivery engine a stable enumeration order for offset-based windowing.
type Recipient struct {
	ID         int64     `json:"id" db:"id"`
	TelegramID int64     `json:"telegram_id" db:"telegram_id"`
	Username   *string   `json:"username,omitempty" db:"username"`
	FirstName  *string   `json:"first_name,omitempty" db:"first_name"`
	IsBlocked  bool      `json:"is_blocked" db:"is_blocked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DisplayName returns a human-readable name for admin listings
func (r *Recipient) DisplayName() string {
	if r.Username != nil && *r.Username != "" {
		return "@" + *r.Username
	}
	if r.FirstName != nil && *r.FirstName != "" {
		return *r.FirstName
	}
	return "Recipient"
}
