package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sonarrbot/internal/logging"
)

// Update is one inbound message, reduced to the fields handlers need.
type Update struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Text      string
}

// Client is the production messenger backed by the Telegram Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewClient authenticates against the Bot API with the given token.
func NewClient(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log := logging.NewComponentLogger(logger, "telegram")
	log.Info("bot authenticated", logging.String("username", api.Self.UserName))
	return &Client{api: api, logger: log}, nil
}

// Send delivers one outgoing message.
func (c *Client) Send(msg Outgoing) error {
	out := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if msg.Markdown {
		out.ParseMode = tgbotapi.ModeMarkdown
	}
	out.DisableWebPagePreview = msg.NoPreview

	switch {
	case len(msg.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.Keyboard))
		for _, row := range msg.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.OneTimeKeyboard = msg.OneTime
		keyboard.ResizeKeyboard = true
		out.ReplyMarkup = keyboard
	case msg.HideKeyboard:
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := c.api.Send(out); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Updates streams inbound messages. Non-message updates are dropped.
func (c *Client) Updates() <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60

	out := make(chan Update)
	go func() {
		defer close(out)
		for update := range c.api.GetUpdatesChan(cfg) {
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			out <- Update{
				ChatID:    update.Message.Chat.ID,
				UserID:    update.Message.From.ID,
				Username:  update.Message.From.UserName,
				FirstName: update.Message.From.FirstName,
				LastName:  update.Message.From.LastName,
				Text:      update.Message.Text,
			}
		}
	}()
	return out
}

// Stop shuts down the long-polling update loop.
func (c *Client) Stop() {
	c.api.StopReceivingUpdates()
}
