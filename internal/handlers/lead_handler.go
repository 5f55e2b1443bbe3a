package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/logger"
	"greenleaf/internal/middleware"
	"greenleaf/internal/models"
)

// LeadHandler is the admin view over the lead lifecycle.
type LeadHandler struct {
	Leads LeadLifecycle
}

func NewLeadHandler(leads LeadLifecycle) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

// @Summary      Активные заявки
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        kind  query     string  false  "callback | partner"
// @Success      200   {array}   models.Lead
// @Failure      400   {object}  map[string]interface{}
// @Router       /admin/leads [get]
func (h *LeadHandler) ListActive(c *gin.Context) {
	kind := models.LeadKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown kind"})
		return
	}
	leads, err := h.Leads.ListActive(c.Request.Context(), kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(leads))
}

// @Summary      Заявка по ID
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID заявки"
// @Success      200  {object}  models.Lead
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.Leads.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      Отметить просмотренной
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID заявки"
// @Success      200  {object}  models.Lead
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/leads/{id}/view [post]
func (h *LeadHandler) MarkViewed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.Leads.MarkViewed(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// @Summary      Отметить выполненной
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID заявки"
// @Success      200  {object}  models.Lead
// @Failure      404  {object}  map[string]interface{}
// @Router       /admin/leads/{id}/complete [post]
func (h *LeadHandler) MarkCompleted(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.Leads.MarkCompleted(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "lead completed via admin api", "lead_id", id, "admin", middleware.GetUsername(c))
	c.JSON(http.StatusOK, lead)
}

// @Summary      История выполненных заявок
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Не больше"
// @Success      200    {array}   models.Lead
// @Router       /admin/history [get]
func (h *LeadHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	leads, err := h.Leads.ListHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(leads))
}

// @Summary      Очистка истории
// @Description  Удаляет выполненные заявки сверх лимита хранения
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  services.CleanupResult
// @Router       /admin/cleanup [post]
func (h *LeadHandler) Cleanup(c *gin.Context) {
	c.JSON(http.StatusOK, h.Leads.Cleanup(c.Request.Context()))
}

func nonNil(leads []models.Lead) []models.Lead {
	if leads == nil {
		return []models.Lead{}
	}
	return leads
}
