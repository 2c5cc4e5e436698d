package broadcast

import (
	"context"
	"fmt"

	"botpanel/internal/models"
)

// SendErrorKind classifies delivery failures without coupling the engine to
// any particular transport library's error wording.
type SendErrorKind int

const (
	// SendErrOther is any failure not attributable to the recipient
	SendErrOther SendErrorKind = iota
	// SendErrBlocked means the recipient blocked the bot
	SendErrBlocked
	// SendErrDeactivated means the recipient account no longer exists
	SendErrDeactivated
	// SendErrNotFound means the chat or user could not be found
	SendErrNotFound
)

// String returns a short label for logs and metrics
func (k SendErrorKind) String() string {
	switch k {
	case SendErrBlocked:
		return "blocked"
	case SendErrDeactivated:
		return "deactivated"
	case SendErrNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// SendError is a classified delivery failure returned by a Transport
type SendError struct {
	Kind SendErrorKind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Expected reports whether the failure is permanent recipient
// unavailability rather than a system fault. Expected failures are counted
// but kept out of operator-level error logs.
func (e *SendError) Expected() bool {
	switch e.Kind {
	case SendErrBlocked, SendErrDeactivated, SendErrNotFound:
		return true
	default:
		return false
	}
}

// Transport sends a message to a single recipient, synchronously, one call
// at a time. Implementations classify failures by returning *SendError.
type Transport interface {
	SendText(ctx context.Context, to int64, text string, buttons models.ButtonRows) error
	SendPhoto(ctx context.Context, to int64, fileID, caption string, buttons models.ButtonRows) error
}
