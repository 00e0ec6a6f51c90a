package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/complaint-voice-backend/internal/agent"
	"github.com/ignatzorin/complaint-voice-backend/internal/bridge"
	"github.com/ignatzorin/complaint-voice-backend/internal/config"
	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
	"github.com/ignatzorin/complaint-voice-backend/pkg/metrics"
)

// StreamHandler отвечает за websocket соединения Twilio Media Streams.
// На каждое соединение поднимается свой мост к голосовому агенту.
type StreamHandler struct {
	cfg        *config.Config
	dispatcher bridge.FunctionDispatcher
	registry   *bridge.Registry
	m          *metrics.Metrics
	upgrader   websocket.Upgrader
}

// NewStreamHandler создаёт новый хэндлер.
func NewStreamHandler(cfg *config.Config, dispatcher bridge.FunctionDispatcher, registry *bridge.Registry, m *metrics.Metrics) *StreamHandler {
	return &StreamHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		registry:   registry,
		m:          m,
		upgrader: websocket.Upgrader{
			// Twilio не шлёт Origin браузера.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle обслуживает GET /twilio/stream.
func (h *StreamHandler) Handle(c *gin.Context) {
	twilioConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	agentConn, err := agent.Dial(c.Request.Context(), h.cfg.AgentURL, h.cfg.AgentAPIKey)
	if err != nil {
		logger.L().WithError(err).Error("не удалось подключиться к голосовому агенту")
		_ = twilioConn.Close()
		return
	}

	settings := agent.NewSettings(h.cfg.AgentPrompt, h.cfg.AgentGreeting)
	b := bridge.New(twilioConn, agentConn, settings, h.dispatcher, h.registry, h.m)

	// Run блокируется до конца звонка: gin хэндлер и есть жизненный цикл
	// соединения.
	if err := b.Run(c.Request.Context()); err != nil {
		logger.L().WithError(err).Error("мост завершился с ошибкой")
	}
}
