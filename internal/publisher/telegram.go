package publisher

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kayz/muse/internal/logger"
)

// TelegramClient mirrors posts into a Telegram channel.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// TelegramConfig holds the bot token and target channel.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// NewTelegramClient creates the Telegram publisher.
func NewTelegramClient(cfg TelegramConfig) (*TelegramClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram init failed: %w", err)
	}
	return &TelegramClient{bot: bot, chatID: cfg.ChatID}, nil
}

// Name returns the publisher name.
func (t *TelegramClient) Name() string { return "telegram" }

// Publish sends a single photo with caption, or a media group when the post
// carries several images. Telegram captions allow more room than X, so the
// text goes through unmodified.
func (t *TelegramClient) Publish(ctx context.Context, post Post) error {
	if err := validate(post); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(post.Images) == 1 {
		photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{
			Name:  "artwork.jpg",
			Bytes: post.Images[0],
		})
		photo.Caption = post.Text
		if _, err := t.bot.Send(photo); err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
		logger.Info("posted to telegram chat %d", t.chatID)
		return nil
	}

	media := make([]interface{}, 0, len(post.Images))
	for i, img := range post.Images {
		photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileBytes{
			Name:  fmt.Sprintf("artwork-%d.jpg", i+1),
			Bytes: img,
		})
		if i == 0 {
			photo.Caption = post.Text
		}
		media = append(media, photo)
	}
	group := tgbotapi.NewMediaGroup(t.chatID, media)
	if _, err := t.bot.SendMediaGroup(group); err != nil {
		return fmt.Errorf("telegram media group failed: %w", err)
	}
	logger.Info("posted %d images to telegram chat %d", len(post.Images), t.chatID)
	return nil
}
