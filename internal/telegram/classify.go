package telegram

import (
	"errors"

	tele "gopkg.in/telebot.v4"

	"botpanel/internal/broadcast"
)

// Classify maps a telebot error to a structured broadcast.SendError so the
// engine never has to match on Bot API error strings. A nil error stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	kind := broadcast.SendErrOther
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrNotStartedByUser):
		kind = broadcast.SendErrBlocked
	case errors.Is(err, tele.ErrUserIsDeactivated):
		kind = broadcast.SendErrDeactivated
	case errors.Is(err, tele.ErrChatNotFound):
		kind = broadcast.SendErrNotFound
	}

	return &broadcast.SendError{Kind: kind, Err: err}
}
