package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/complaint-voice-backend/internal/service"
)

// ComplaintHandler предоставляет ops API для работы с жалобами.
// Изменение статусов идёт отсюда: голосовой агент статусы не меняет.
type ComplaintHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintHandler создаёт хэндлер.
func NewComplaintHandler(complaints *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

// Get обрабатывает GET /api/complaints/:ref. Принимает то же, что и
// голосовой агент: номер жалобы, полный uuid или его начало.
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Lookup(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// List обрабатывает GET /api/complaints?limit=&offset=.
func (h *ComplaintHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	complaints, err := h.complaints.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// UpdateStatus обрабатывает PATCH /api/complaints/:ref/status.
// В отличие от Get здесь принимается только полный uuid: менять статус
// по неоднозначной ссылке нельзя.
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	operatorID, err := currentOperatorID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	complaintID, err := uuid.Parse(c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор жалобы"})
		return
	}

	var req struct {
		Status         string  `json:"status" binding:"required"`
		EstimationTime *string `json:"estimation_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.complaints.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		ComplaintID:    complaintID,
		Status:         req.Status,
		EstimationTime: req.EstimationTime,
		OperatorID:     operatorID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}
