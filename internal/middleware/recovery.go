package middleware

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/logger"
)

// Recovery перехватывает панику обработчика: стек уходит в лог,
// клиент получает 500 с request_id для поиска по логам.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "handler panic",
			"panic", fmt.Sprint(recovered),
			"route", c.FullPath(),
			"stack", string(debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":      "internal error",
			"request_id": GetRequestID(c),
		})
	})
}
