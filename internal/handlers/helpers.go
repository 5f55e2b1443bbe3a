package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/logger"
	"greenleaf/internal/models"
)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return 0, false
	}
	return id, true
}

// writeError: валидация 400, не найдено 404, остальное 500.
func writeError(c *gin.Context, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "fields": verrs.Fields()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "lead not found"})
	default:
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}
}
