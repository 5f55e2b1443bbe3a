package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenleaf/internal/authz"
)

// ReadOnlyGuard запрещает небезопасные методы для роли viewer.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authz.IsReadOnly(GetRole(c)) {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only role"})
				return
			}
		}
		c.Next()
	}
}
