package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenleaf/internal/menu"
	"greenleaf/internal/models"
)

const operatorChat int64 = 1575864216

func newTelegramHandler(leads *fakeLeads, secret string) (*IntegrationsHandler, *fakeTransport) {
	tg := newFakeTransport()
	builder := menu.NewBuilder(leads, menu.DefaultLabels()).WithLocation(time.UTC)
	isOp := func(id int64) bool { return id == operatorChat }
	return NewIntegrationsHandler(tg, builder, isOp, secret), tg
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return msg
}

func callbackQuery(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func TestTelegram_StartOpensMainMenu(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "")

	h.HandleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(operatorChat, "/start")})

	require.Len(t, tg.sent, 1)
	v := tg.sent[0].view
	assert.Equal(t, menu.ScreenMain, v.State.Screen)
	assert.Equal(t, menu.DefaultLabels().MainTitle, v.Title)
}

func TestTelegram_RefusesUnknownChat(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "")
	ctx := context.Background()

	h.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(7, "/menu")})
	require.Len(t, tg.sent, 1)
	assert.Equal(t, menu.DefaultLabels().AccessDenied, tg.sent[0].view.Title)

	h.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: callbackQuery(7, "done:1")})
	assert.Empty(t, tg.edited)
	assert.Equal(t, menu.DefaultLabels().AccessDenied, tg.answers["cb-done:1"])
}

func TestTelegram_UnknownCommand(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "")
	h.HandleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(operatorChat, "/weather")})

	require.Len(t, tg.sent, 1)
	assert.Equal(t, menu.DefaultLabels().UnknownAction, tg.sent[0].view.Title)
}

func TestTelegram_CallbackEditsMessageInPlace(t *testing.T) {
	leads := seeded()
	h, tg := newTelegramHandler(leads, "")
	ctx := context.Background()

	h.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: callbackQuery(operatorChat, "lead:1")})
	require.Len(t, tg.edited, 1)
	assert.Equal(t, 42, tg.edited[0].messageID)
	assert.Equal(t, menu.LeadDetail(1), tg.edited[0].view.State)
	assert.Equal(t, models.StatusViewed, leads.leads[1].Status)

	h.HandleUpdate(ctx, tgbotapi.Update{CallbackQuery: callbackQuery(operatorChat, "done:1")})
	require.Len(t, tg.edited, 2)
	assert.Equal(t, menu.TypeList(models.KindCallback), tg.edited[1].view.State)
	assert.Equal(t, models.StatusCompleted, leads.leads[1].Status)
	assert.Contains(t, tg.answers["cb-done:1"], "#1")
}

func TestTelegram_BadCallbackData(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "")
	h.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callbackQuery(operatorChat, "launch:rockets")})

	assert.Empty(t, tg.edited)
	assert.Equal(t, menu.DefaultLabels().UnknownAction, tg.answers["cb-launch:rockets"])
}

func TestTelegram_StorageFailureAnswersFailure(t *testing.T) {
	leads := seeded()
	leads.err = errStorage
	h, tg := newTelegramHandler(leads, "")
	h.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: callbackQuery(operatorChat, "list:callback")})

	assert.Empty(t, tg.edited)
	assert.Equal(t, menu.DefaultLabels().Failure, tg.answers["cb-list:callback"])
}

func TestTelegram_WebhookSecret(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "s3cret")
	r := gin.New()
	r.POST("/integrations/telegram/webhook", h.Webhook)

	body := `{"update_id":1,"message":{"message_id":5,"chat":{"id":1575864216,"type":"private"},"text":"menu"}}`

	req := httptest.NewRequest(http.MethodPost, "/integrations/telegram/webhook", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, tg.sent)

	req = httptest.NewRequest(http.MethodPost, "/integrations/telegram/webhook", strings.NewReader(body))
	req.Header.Set(secretHeader, "s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, tg.sent, 1)
	assert.Equal(t, menu.ScreenMain, tg.sent[0].view.State.Screen)
}

func TestTelegram_PollStopsOnClose(t *testing.T) {
	h, tg := newTelegramHandler(seeded(), "")
	updates := make(chan tgbotapi.Update, 1)
	updates <- tgbotapi.Update{Message: commandMessage(operatorChat, "/menu")}
	close(updates)

	h.Poll(context.Background(), updates)
	assert.Len(t, tg.sent, 1)
}

func TestTelegram_WebhookWithoutSecretRejectsEverything(t *testing.T) {
	leads := seeded()
	h, tg := newTelegramHandler(leads, "")
	r := gin.New()
	r.POST("/integrations/telegram/webhook", h.Webhook)

	body := `{"update_id":2,"callback_query":{"id":"9","data":"done:1","message":{"message_id":3,"chat":{"id":1575864216,"type":"private"}}}}`
	for _, header := range []string{"", "anything"} {
		req := httptest.NewRequest(http.MethodPost, "/integrations/telegram/webhook", strings.NewReader(body))
		if header != "" {
			req.Header.Set(secretHeader, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	assert.Equal(t, models.StatusNew, leads.leads[1].Status)
	assert.Nil(t, leads.leads[1].CompletedAt)
	assert.Empty(t, tg.edited)
	assert.Empty(t, tg.answers)
}
