package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"greenleaf/internal/handlers"
	"greenleaf/internal/middleware"
)

func newRouter(intakeLimit, loginLimit gin.HandlerFunc, webhook *handlers.IntegrationsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return SetupRoutes(r,
		middleware.AuthMiddleware([]byte("k")),
		intakeLimit,
		loginLimit,
		handlers.NewHealthHandler(nil),
		handlers.NewIntakeHandler(nil),
		handlers.NewLeadHandler(nil),
		handlers.NewReportHandler(nil, nil),
		handlers.NewAuthHandler(nil, []byte("k"), time.Hour),
		webhook,
	)
}

func TestSetupRoutes(t *testing.T) {
	r := newRouter(middleware.RateLimit(10, time.Minute), middleware.RateLimit(10, time.Minute), nil)

	registered := map[string]bool{}
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"POST /api/callback",
		"POST /api/partner",
		"POST /admin/login",
		"GET /admin/leads",
		"GET /admin/leads/:id",
		"POST /admin/leads/:id/view",
		"POST /admin/leads/:id/complete",
		"GET /admin/history",
		"GET /admin/history/report",
		"POST /admin/cleanup",
	} {
		assert.True(t, registered[want], want)
	}
	assert.False(t, registered["POST /integrations/telegram/webhook"])

	for _, target := range []string{"/admin/leads", "/admin/history"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_WebhookAbsentWithoutHandler(t *testing.T) {
	r := newRouter(middleware.RateLimit(10, time.Minute), middleware.RateLimit(10, time.Minute), nil)

	body := `{"callback_query":{"id":"1","data":"done:9","message":{"message_id":1,"chat":{"id":1575864216}}}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/integrations/telegram/webhook", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRoutes_WebhookRegisteredWithHandler(t *testing.T) {
	r := newRouter(middleware.RateLimit(10, time.Minute), middleware.RateLimit(10, time.Minute),
		handlers.NewIntegrationsHandler(nil, nil, nil, "s3cret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/integrations/telegram/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetupRoutes_SeparateLimits(t *testing.T) {
	r := newRouter(middleware.RateLimit(1, time.Minute), middleware.RateLimit(1, time.Minute), nil)

	post := func(target string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, strings.NewReader("{")))
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, post("/api/callback"))
	assert.Equal(t, http.StatusTooManyRequests, post("/api/partner"))
	// форма не расходует лимит логина
	assert.Equal(t, http.StatusBadRequest, post("/admin/login"))
	assert.Equal(t, http.StatusTooManyRequests, post("/admin/login"))
}
