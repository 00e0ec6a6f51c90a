package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ignatzorin/complaint-voice-backend/internal/agent"
	"github.com/ignatzorin/complaint-voice-backend/internal/goroutine"
	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
	"github.com/ignatzorin/complaint-voice-backend/pkg/metrics"
)

// twilioChunkSize задаёт, сколько байт mulaw (0.4 сек при 8kHz) накапливается из
// media событий перед отправкой агенту одним бинарным фреймом.
const twilioChunkSize = 20 * 160

// audioQueueSize ограничивает очередь аудио к агенту. Если агент перестал
// читать, цикл чтения Twilio блокируется, а не копит память.
const audioQueueSize = 64

// Conn описывает минимальный интерфейс websocket-соединения. *websocket.Conn ему
// удовлетворяет; в тестах мост работает на фейках.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// FunctionDispatcher выполняет function call запросы агента.
type FunctionDispatcher interface {
	Dispatch(ctx context.Context, call agent.FunctionCall) agent.FunctionCallResponse
}

// Bridge обслуживает один звонок: два соединения, пересылка аудио в обе
// стороны и обработка событий агента. Состояние моста не разделяется с
// другими звонками.
type Bridge struct {
	twilio     Conn
	agent      Conn
	dispatcher FunctionDispatcher
	registry   *Registry
	m          *metrics.Metrics
	settings   agent.Settings

	audioToAgent chan []byte
	streamSIDCh  chan string
	done         chan struct{}
	closeOnce    sync.Once

	// Бинарные аудиофреймы и текстовые ответы функций пишутся в agent
	// из разных горутин; мьютекс не даёт им перемешаться.
	agentWriteMu sync.Mutex

	mu         sync.Mutex
	streamSID  string
	transcript []transcriptLine
}

type transcriptLine struct {
	Role    string
	Content string
}

// New создаёт мост для одного звонка. Соединения уже установлены, settings
// будет отправлен агенту при запуске.
func New(twilioConn, agentConn Conn, settings agent.Settings, dispatcher FunctionDispatcher, registry *Registry, m *metrics.Metrics) *Bridge {
	return &Bridge{
		twilio:       twilioConn,
		agent:        agentConn,
		dispatcher:   dispatcher,
		registry:     registry,
		m:            m,
		settings:     settings,
		audioToAgent: make(chan []byte, audioQueueSize),
		streamSIDCh:  make(chan string, 1),
		done:         make(chan struct{}),
	}
}

// Run отправляет агенту конфигурацию и запускает циклы пересылки.
// Блокируется до завершения звонка; после возврата оба соединения закрыты
// и мост убран из реестра.
func (b *Bridge) Run(ctx context.Context) error {
	raw, err := json.Marshal(b.settings)
	if err != nil {
		b.Close()
		return fmt.Errorf("bridge: не удалось сериализовать settings: %w", err)
	}
	if err := b.agent.WriteMessage(websocket.TextMessage, raw); err != nil {
		b.Close()
		return fmt.Errorf("bridge: не удалось отправить settings агенту: %w", err)
	}

	if b.m != nil {
		b.m.CallsTotal.Inc()
		b.m.ActiveCalls.Inc()
	}

	var wg sync.WaitGroup
	wg.Add(3)
	goroutine.SafeGo(func() {
		defer wg.Done()
		defer b.Close()
		b.twilioReadLoop()
	})
	goroutine.SafeGo(func() {
		defer wg.Done()
		defer b.Close()
		b.agentSendLoop()
	})
	goroutine.SafeGo(func() {
		defer wg.Done()
		defer b.Close()
		b.agentReadLoop(ctx)
	})

	// Остановка процесса завершает звонок.
	goroutine.SafeGo(func() {
		select {
		case <-ctx.Done():
			b.Close()
		case <-b.done:
		}
	})

	wg.Wait()

	if b.m != nil {
		b.m.ActiveCalls.Dec()
	}
	b.logTranscript()
	return nil
}

// Close завершает звонок: закрывает оба соединения и убирает мост из
// реестра. Безопасен для повторных вызовов из любых горутин.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		_ = b.twilio.Close()
		_ = b.agent.Close()

		b.mu.Lock()
		sid := b.streamSID
		b.mu.Unlock()
		if b.registry != nil {
			b.registry.Unregister(sid)
		}
	})
}

// StreamSID возвращает идентификатор звонка (пустая строка до события start).
func (b *Bridge) StreamSID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamSID
}

// twilioReadLoop читает события Twilio: собирает входящее аудио в чанки
// фиксированного размера и передаёт их циклу отправки агенту. Порядок
// фреймов сохраняется: один читатель, одна очередь.
func (b *Bridge) twilioReadLoop() {
	var inbuf []byte

	for {
		_, data, err := b.twilio.ReadMessage()
		if err != nil {
			return
		}

		var msg twilioMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case twilioEventConnected:
			continue

		case twilioEventStart:
			if msg.Start != nil {
				b.setStreamSID(msg.Start.StreamSID)
			}

		case twilioEventMedia:
			if msg.Media == nil {
				continue
			}
			// При подписке на обе дорожки отбрасываем эхо собственного аудио.
			if msg.Media.Track != "" && msg.Media.Track != trackInbound {
				continue
			}
			chunk, err := base64.StdEncoding.DecodeString(msg.Media.Payload)
			if err != nil {
				continue
			}
			inbuf = append(inbuf, chunk...)
			for len(inbuf) >= twilioChunkSize {
				frame := make([]byte, twilioChunkSize)
				copy(frame, inbuf)
				inbuf = inbuf[twilioChunkSize:]
				select {
				case b.audioToAgent <- frame:
					if b.m != nil {
						b.m.AudioFramesIn.Inc()
					}
				case <-b.done:
					return
				}
			}

		case twilioEventStop:
			return
		}
	}
}

// agentSendLoop пишет аудио абонента в соединение с агентом.
func (b *Bridge) agentSendLoop() {
	for {
		select {
		case <-b.done:
			return
		case frame := <-b.audioToAgent:
			b.agentWriteMu.Lock()
			err := b.agent.WriteMessage(websocket.BinaryMessage, frame)
			b.agentWriteMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// agentReadLoop читает ответы агента: бинарные фреймы уходят абоненту,
// текстовые события обрабатываются на месте. Function call запросы
// выполняются здесь же, последовательно, поэтому ответы возвращаются агенту
// в порядке поступления запросов.
func (b *Bridge) agentReadLoop(ctx context.Context) {
	var streamSID string
	select {
	case streamSID = <-b.streamSIDCh:
	case <-b.done:
		return
	}

	for {
		messageType, data, err := b.agent.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			msg, err := buildMediaMessage(streamSID, data)
			if err != nil {
				continue
			}
			if err := b.twilio.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			if b.m != nil {
				b.m.AudioFramesOut.Inc()
			}

		case websocket.TextMessage:
			if err := b.handleAgentEvent(ctx, streamSID, data); err != nil {
				return
			}
		}
	}
}

// handleAgentEvent разбирает одно текстовое событие агента. Возвращает
// ошибку только когда дальше работать нельзя (не пишется соединение);
// непонятные события просто пропускаются.
func (b *Bridge) handleAgentEvent(ctx context.Context, streamSID string, data []byte) error {
	var ev agent.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.WithCall(streamSID).WithError(err).Debug("не удалось разобрать событие агента")
		return nil
	}

	switch ev.Type {
	case agent.EventUserStartedSpeaking:
		// Абонент перебил агента: сбрасываем недоигранное аудио у Twilio.
		msg, err := buildClearMessage(streamSID)
		if err != nil {
			return nil
		}
		return b.twilio.WriteMessage(websocket.TextMessage, msg)

	case agent.EventConversationText:
		b.appendTranscript(ev.Role, ev.Content)

	case agent.EventFunctionCallRequest:
		for _, call := range ev.Functions {
			resp := b.dispatcher.Dispatch(ctx, call)
			raw, err := json.Marshal(resp)
			if err != nil {
				continue
			}
			b.agentWriteMu.Lock()
			err = b.agent.WriteMessage(websocket.TextMessage, raw)
			b.agentWriteMu.Unlock()
			if err != nil {
				return err
			}
		}

	case agent.EventError:
		logger.WithCall(streamSID).WithField("code", ev.Code).
			Errorf("агент сообщил об ошибке: %s", ev.Description)
	}

	return nil
}

func (b *Bridge) setStreamSID(streamSID string) {
	if streamSID == "" {
		return
	}

	b.mu.Lock()
	already := b.streamSID != ""
	if !already {
		b.streamSID = streamSID
	}
	b.mu.Unlock()
	if already {
		return
	}

	if b.registry != nil {
		b.registry.Register(streamSID, b)
	}
	select {
	case b.streamSIDCh <- streamSID:
	default:
	}

	logger.WithCall(streamSID).Info("звонок подключён к агенту")
}

func (b *Bridge) appendTranscript(role, content string) {
	if content == "" {
		return
	}
	b.mu.Lock()
	b.transcript = append(b.transcript, transcriptLine{Role: role, Content: content})
	b.mu.Unlock()
}

// logTranscript пишет итог разговора в лог после завершения звонка.
// Сам разговор нигде не сохраняется: в базе остаются только жалобы.
func (b *Bridge) logTranscript() {
	b.mu.Lock()
	sid := b.streamSID
	lines := b.transcript
	b.transcript = nil
	b.mu.Unlock()

	entry := logger.WithCall(sid).WithField("transcript_lines", len(lines))
	entry.Info("звонок завершён")
	for _, line := range lines {
		entry.WithField("role", line.Role).Debug(line.Content)
	}
}
