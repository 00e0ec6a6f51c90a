package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/complaint-voice-backend/internal/http/middleware"
)

func TestComplaintHandler_UpdateStatus_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ComplaintHandler{complaints: nil}
	r.PATCH("/complaints/:ref/status", handler.UpdateStatus)

	req, _ := http.NewRequest("PATCH", "/complaints/"+uuid.New().String()+"/status", strings.NewReader(`{"status":"crew assigned"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestComplaintHandler_UpdateStatus_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextOperatorIDKey, uuid.New())
	})
	handler := &ComplaintHandler{complaints: nil}
	r.PATCH("/complaints/:ref/status", handler.UpdateStatus)

	req, _ := http.NewRequest("PATCH", "/complaints/not-a-uuid/status", strings.NewReader(`{"status":"crew assigned"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComplaintHandler_UpdateStatus_RequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextOperatorIDKey, uuid.New())
	})
	handler := &ComplaintHandler{complaints: nil}
	r.PATCH("/complaints/:ref/status", handler.UpdateStatus)

	req, _ := http.NewRequest("PATCH", "/complaints/"+uuid.New().String()+"/status", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_BadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &AuthHandler{auth: nil}
	r.POST("/auth/login", handler.Login)

	req, _ := http.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"op"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoiceHandler_ReturnsTwiML(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewVoiceHandler("calls.example.com")
	r.POST("/twilio/voice", handler.Handle)

	req, _ := http.NewRequest("POST", "/twilio/voice", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/xml")
	assert.Contains(t, w.Body.String(), `<Stream url="wss://calls.example.com/twilio/stream"/>`)
	assert.Contains(t, w.Body.String(), "<Connect>")
}
