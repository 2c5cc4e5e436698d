package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"botpanel/internal/models"
)

// Client is a send-only Telegram transport backed by telebot. It never
// starts a poller; the admin backend only pushes messages out.
type Client struct {
	bot *tele.Bot
}

// New creates a Telegram client for the given bot token
func New(token string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Client: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &Client{bot: bot}, nil
}

// SendText delivers a plain text message with an optional inline keyboard
func (c *Client) SendText(ctx context.Context, to int64, text string, buttons models.ButtonRows) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(&tele.User{ID: to}, text, sendOptions(buttons))
	return Classify(err)
}

// SendPhoto delivers a photo by file id with a caption and an optional
// inline keyboard
func (c *Client) SendPhoto(ctx context.Context, to int64, fileID, caption string, buttons models.ButtonRows) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	photo := &tele.Photo{
		File:    tele.File{FileID: fileID},
		Caption: caption,
	}
	_, err := c.bot.Send(&tele.User{ID: to}, photo, sendOptions(buttons))
	return Classify(err)
}

func sendOptions(buttons models.ButtonRows) *tele.SendOptions {
	opts := &tele.SendOptions{DisableWebPagePreview: true}
	if len(buttons) == 0 {
		return opts
	}

	keyboard := make([][]tele.InlineButton, 0, len(buttons))
	for _, row := range buttons {
		line := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			line = append(line, tele.InlineButton{Text: btn.Text, URL: btn.URL})
		}
		keyboard = append(keyboard, line)
	}
	opts.ReplyMarkup = &tele.ReplyMarkup{InlineKeyboard: keyboard}
	return opts
}
