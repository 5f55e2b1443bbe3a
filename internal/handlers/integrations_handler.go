package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"greenleaf/internal/logger"
	"greenleaf/internal/menu"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// MenuTransport delivers menu views to a chat.
type MenuTransport interface {
	SendView(chatID int64, v menu.View) error
	EditView(chatID int64, messageID int, v menu.View) error
	AnswerCallback(callbackID, text string) error
}

// IntegrationsHandler drives the operator triage menu from Telegram
// updates, received by webhook or long polling.
type IntegrationsHandler struct {
	TG         MenuTransport
	Menu       *menu.Builder
	IsOperator func(chatID int64) bool
	Secret     string
}

func NewIntegrationsHandler(tg MenuTransport, builder *menu.Builder, isOperator func(int64) bool, secret string) *IntegrationsHandler {
	return &IntegrationsHandler{TG: tg, Menu: builder, IsOperator: isOperator, Secret: secret}
}

// Webhook после проверки секрета всегда отвечает 200, иначе Telegram
// будет повторять апдейты, упавшие у нас.
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()
	// без секрета webhook закрыт полностью
	got := c.GetHeader(secretHeader)
	if h.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
		logger.Warn(ctx, "tg webhook: bad secret token")
		c.Status(http.StatusUnauthorized)
		return
	}
	if h.TG == nil {
		logger.Warn(ctx, "tg webhook: telegram disabled, update ignored")
		c.Status(http.StatusOK)
		return
	}

	var up tgbotapi.Update
	if err := c.ShouldBindJSON(&up); err != nil {
		logger.Warn(ctx, "tg webhook: bind json failed", "error", err)
		c.Status(http.StatusOK)
		return
	}
	h.HandleUpdate(ctx, up)
	c.Status(http.StatusOK)
}

// Poll читает апдейты, пока не отменён ctx или не закрыт канал.
func (h *IntegrationsHandler) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, up)
		}
	}
}

func (h *IntegrationsHandler) HandleUpdate(ctx context.Context, up tgbotapi.Update) {
	switch {
	case up.CallbackQuery != nil:
		h.handleCallback(ctx, up.CallbackQuery)
	case up.Message != nil && up.Message.Chat != nil:
		h.handleMessage(ctx, up.Message)
	}
}

func (h *IntegrationsHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ctx = context.WithValue(ctx, logger.ChatIDKey, chatID)
	text := strings.TrimSpace(msg.Text)
	logger.Debug(ctx, "tg message", "text", text)

	if !h.operator(chatID) {
		logger.Warn(ctx, "tg message from non-operator chat")
		_ = h.TG.SendView(chatID, menu.View{Title: h.Menu.Labels.AccessDenied})
		return
	}

	// /start, /menu и обычный текст открывают главное меню
	if msg.IsCommand() && msg.Command() != "start" && msg.Command() != "menu" {
		_ = h.TG.SendView(chatID, menu.View{Title: h.Menu.Labels.UnknownAction})
		return
	}

	v, err := h.Menu.Render(ctx, menu.MainMenu())
	if err != nil {
		logger.Error(ctx, "tg menu render failed", "error", err)
		_ = h.TG.SendView(chatID, menu.View{Title: h.Menu.Labels.Failure})
		return
	}
	if err := h.TG.SendView(chatID, v); err != nil {
		logger.Error(ctx, "tg send menu failed", "error", err)
	}
}

func (h *IntegrationsHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		_ = h.TG.AnswerCallback(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	ctx = context.WithValue(ctx, logger.ChatIDKey, chatID)

	if !h.operator(chatID) {
		logger.Warn(ctx, "tg callback from non-operator chat")
		_ = h.TG.AnswerCallback(cq.ID, h.Menu.Labels.AccessDenied)
		return
	}

	ev, err := menu.ParseEvent(cq.Data)
	if err != nil {
		logger.Warn(ctx, "tg callback: bad data", "data", cq.Data, "error", err)
		_ = h.TG.AnswerCallback(cq.ID, h.Menu.Labels.UnknownAction)
		return
	}

	v, err := h.Menu.Handle(ctx, ev)
	if err != nil {
		logger.Error(ctx, "tg menu event failed", "data", cq.Data, "error", err)
		_ = h.TG.AnswerCallback(cq.ID, h.Menu.Labels.Failure)
		return
	}
	if err := h.TG.EditView(chatID, cq.Message.MessageID, v); err != nil {
		logger.Error(ctx, "tg edit menu failed", "error", err)
	}
	if err := h.TG.AnswerCallback(cq.ID, v.Notice); err != nil {
		logger.Warn(ctx, "tg answer callback failed", "error", err)
	}
}

func (h *IntegrationsHandler) operator(chatID int64) bool {
	return h.IsOperator != nil && h.IsOperator(chatID)
}
