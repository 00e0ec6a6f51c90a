package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/http/middleware"
	"github.com/ignatzorin/complaint-voice-backend/internal/pkg/apperror"
)

var errOperatorNotFound = errors.New("оператор не найден в контексте")

// currentOperatorID извлекает operatorID из контекста.
func currentOperatorID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextOperatorIDKey)
	if !exists {
		return uuid.Nil, errOperatorNotFound
	}

	operatorID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errOperatorNotFound
	}

	return operatorID, nil
}

// writeError переводит ошибку сервиса в HTTP ответ. Известные ошибки
// несут свой статус и сообщение, всё остальное маскируется.
func writeError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервера"})
}
