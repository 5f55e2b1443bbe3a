package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/pdf"
)

type ReportHandler struct {
	Leads  LeadLifecycle
	Report *pdf.HistoryReport
	now    func() time.Time
}

func NewReportHandler(leads LeadLifecycle, report *pdf.HistoryReport) *ReportHandler {
	return &ReportHandler{Leads: leads, Report: report, now: time.Now}
}

// @Summary      PDF-отчёт по истории
// @Tags         Reports
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        limit  query  int  false  "Не больше"
// @Success      200
// @Router       /admin/history/report [get]
func (h *ReportHandler) HistoryPDF(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	leads, err := h.Leads.ListHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	now := h.now()
	body, err := h.Report.Bytes(leads, now)
	if err != nil {
		writeError(c, err)
		return
	}
	filename := fmt.Sprintf("history_%s.pdf", now.Format("20060102_1504"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
