package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/models"
	"greenleaf/internal/services"
)

// LeadLifecycle is what the HTTP layer needs from services.LeadService.
type LeadLifecycle interface {
	Create(ctx context.Context, kind models.LeadKind, in models.LeadInput) (*models.Lead, error)
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	MarkViewed(ctx context.Context, id int64) (*models.Lead, error)
	MarkCompleted(ctx context.Context, id int64) (*models.Lead, error)
	ListActive(ctx context.Context, kind models.LeadKind) ([]models.Lead, error)
	ListHistory(ctx context.Context, limit int) ([]models.Lead, error)
	Cleanup(ctx context.Context) services.CleanupResult
}

type IntakeHandler struct {
	Leads LeadLifecycle
}

func NewIntakeHandler(leads LeadLifecycle) *IntakeHandler {
	return &IntakeHandler{Leads: leads}
}

type IntakeResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// @Summary      Заявка на обратный звонок
// @Description  Сохраняет заявку и уведомляет операторов
// @Tags         Intake
// @Accept       json
// @Produce      json
// @Param        request  body      models.LeadInput  true  "Телефон"
// @Success      200      {object}  IntakeResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/callback [post]
func (h *IntakeHandler) CreateCallback(c *gin.Context) {
	h.create(c, models.KindCallback)
}

// @Summary      Заявка на партнёрство
// @Description  Сохраняет анкету партнёра и уведомляет операторов
// @Tags         Intake
// @Accept       json
// @Produce      json
// @Param        request  body      models.LeadInput  true  "Анкета"
// @Success      200      {object}  IntakeResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]interface{}
// @Router       /api/partner [post]
func (h *IntakeHandler) CreatePartner(c *gin.Context) {
	h.create(c, models.KindPartner)
}

func (h *IntakeHandler) create(c *gin.Context, kind models.LeadKind) {
	var in models.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json body"})
		return
	}

	lead, err := h.Leads.Create(c.Request.Context(), kind, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, IntakeResponse{Success: true, ID: lead.ID})
}
