package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextOperatorIDKey   = "operatorID"
	ContextOperatorNameKey = "operatorName"
)

// AuthMiddleware проверяет JWT access токен оператора.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		operatorID, name, err := tokens.ParseAccess(raw)
		if err != nil || operatorID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextOperatorIDKey, operatorID)
		c.Set(ContextOperatorNameKey, name)
		c.Next()
	}
}
