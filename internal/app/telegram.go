package app

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"greenleaf/internal/config"
	"greenleaf/internal/handlers"
	"greenleaf/internal/logger"
	"greenleaf/internal/services"
)

const modeWebhook = "webhook"

// webhookHandler возвращает обработчик только в режиме webhook;
// при long polling маршрут не регистрируется.
func webhookHandler(tc config.TelegramConfig, h *handlers.IntegrationsHandler) *handlers.IntegrationsHandler {
	if tc.Mode != modeWebhook {
		return nil
	}
	return h
}

func checkWebhookConfig(tc config.TelegramConfig) error {
	if tc.WebhookURL == "" {
		return errors.New("telegram webhook mode requires telegram.webhook_url")
	}
	if tc.WebhookSecret == "" {
		return errors.New("telegram webhook mode requires telegram.webhook_secret")
	}
	return nil
}

// startUpdates регистрирует webhook либо снимает его и запускает long polling.
func startUpdates(ctx context.Context, tc config.TelegramConfig, bot *tgbotapi.BotAPI, tg *services.TelegramService, h *handlers.IntegrationsHandler) error {
	if tc.Mode == modeWebhook {
		if err := checkWebhookConfig(tc); err != nil {
			return err
		}
		if err := tg.SetWebhook(tc.WebhookURL, tc.WebhookSecret); err != nil {
			return err
		}
		logger.Info(ctx, "telegram webhook registered", "url", tc.WebhookURL)
		return nil
	}

	if err := tg.DeleteWebhook(); err != nil {
		logger.Warn(ctx, "telegram deleteWebhook failed", "error", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	go h.Poll(ctx, bot.GetUpdatesChan(u))
	logger.Info(ctx, "telegram long polling started")
	return nil
}
