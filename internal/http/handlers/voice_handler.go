package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
)

// VoiceHandler отвечает на вебхук входящего звонка Twilio.
// Отвечает TwiML, который переводит звонок в двунаправленный Media Stream
// на наш websocket endpoint.
type VoiceHandler struct {
	publicHost string
}

// NewVoiceHandler создаёт хэндлер. publicHost задаёт внешний хост сервиса,
// по которому Twilio откроет websocket.
func NewVoiceHandler(publicHost string) *VoiceHandler {
	return &VoiceHandler{publicHost: publicHost}
}

// Handle обрабатывает POST /twilio/voice.
func (h *VoiceHandler) Handle(c *gin.Context) {
	callSID := c.PostForm("CallSid")
	logger.L().WithField("call_sid", callSID).Info("входящий звонок")

	twiml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
    <Connect>
        <Stream url="wss://%s/twilio/stream"/>
    </Connect>
</Response>`, h.publicHost)

	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(twiml))
}
