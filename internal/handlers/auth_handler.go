package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"greenleaf/internal/authz"
	"greenleaf/internal/config"
	"greenleaf/internal/logger"
	"greenleaf/internal/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// AdminDirectory looks up admin accounts by username.
type AdminDirectory interface {
	FindAdmin(username string) *config.AdminUser
}

type AuthHandler struct {
	admins AdminDirectory
	secret []byte
	ttl    time.Duration
}

func NewAuthHandler(admins AdminDirectory, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{admins: admins, secret: secret, ttl: ttl}
}

// @Summary      Вход в админ-API
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Учётные данные"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)

	admin := h.admins.FindAdmin(username)
	if admin == nil || strings.TrimSpace(admin.PasswordHash) == "" {
		logger.Warn(ctx, "admin login: unknown user", "username", username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(admin.PasswordHash)), []byte(req.Password)); err != nil {
		logger.Warn(ctx, "admin login: password mismatch", "username", username)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	role := authz.Normalize(admin.Role)
	token, exp, err := middleware.IssueToken(h.secret, admin.Username, role, h.ttl)
	if err != nil {
		logger.Error(ctx, "admin login: sign token failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	logger.Info(ctx, "admin login ok", "username", admin.Username, "role", role)
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp, Role: role})
}
