package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"greenleaf/internal/logger"
	"greenleaf/internal/menu"
)

// botAPI is the part of *tgbotapi.BotAPI the service uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// TelegramService renders menu views as HTML messages with inline
// keyboards and delivers them to operator chats.
type TelegramService struct {
	bot       botAPI
	operators []int64
}

func NewTelegramService(bot botAPI, operatorChatIDs []int64) *TelegramService {
	return &TelegramService{bot: bot, operators: operatorChatIDs}
}

// Push отправляет v во все чаты операторов.
func (t *TelegramService) Push(ctx context.Context, v menu.View) error {
	if t == nil || len(t.operators) == 0 {
		logger.Warn(ctx, "tg push skipped: no operator chats configured")
		return nil
	}
	var errs []error
	for _, chatID := range t.operators {
		if err := t.SendView(chatID, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TelegramService) SendView(chatID int64, v menu.View) error {
	msg := tgbotapi.NewMessage(chatID, v.Text())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(v.Buttons) > 0 {
		msg.ReplyMarkup = Keyboard(v)
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage chat=%d: %w", chatID, err)
	}
	return nil
}

// EditView меняет текст и клавиатуру уже отправленного сообщения меню.
func (t *TelegramService) EditView(chatID int64, messageID int, v menu.View) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(v.Buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, v.Text(), Keyboard(v))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, v.Text())
	}
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	if _, err := t.bot.Send(edit); err != nil {
		// "Обновить" без изменений API отклоняет, это не ошибка
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("telegram editMessageText chat=%d msg=%d: %w", chatID, messageID, err)
	}
	return nil
}

func (t *TelegramService) AnswerCallback(callbackID, text string) error {
	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("telegram answerCallbackQuery: %w", err)
	}
	return nil
}

// SetWebhook registers url; secret is echoed by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header.
func (t *TelegramService) SetWebhook(url, secret string) error {
	params := tgbotapi.Params{"url": url}
	if secret != "" {
		params["secret_token"] = secret
	}
	if _, err := t.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	return nil
}

// DeleteWebhook нужен перед запуском long polling.
func (t *TelegramService) DeleteWebhook() error {
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("telegram deleteWebhook: %w", err)
	}
	return nil
}

// Keyboard превращает кнопки экрана в inline-клавиатуру.
func Keyboard(v menu.View) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Buttons))
	for _, row := range v.Buttons {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Event.Encode()))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
