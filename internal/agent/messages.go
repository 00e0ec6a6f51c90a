package agent

// Типы событий голосового агента. Агент шлёт бинарные фреймы с аудио и
// текстовые JSON события; наружу пробрасывается только аудио, события
// обрабатываются мостом.
const (
	EventWelcome             = "Welcome"
	EventSettingsApplied     = "SettingsApplied"
	EventConversationText    = "ConversationText"
	EventUserStartedSpeaking = "UserStartedSpeaking"
	EventAgentAudioDone      = "AgentAudioDone"
	EventFunctionCallRequest = "FunctionCallRequest"
	EventError               = "Error"
)

// Event представляет текстовое событие из соединения с агентом.
type Event struct {
	Type        string         `json:"type"`
	Role        string         `json:"role,omitempty"`
	Content     string         `json:"content,omitempty"`
	Functions   []FunctionCall `json:"functions,omitempty"`
	Description string         `json:"description,omitempty"`
	Code        string         `json:"code,omitempty"`
}

// FunctionCall представляет один запрос функции внутри события FunctionCallRequest.
// Arguments приходит JSON-строкой, её разбирает диспетчер.
type FunctionCall struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	ClientSide bool   `json:"client_side,omitempty"`
}

// FunctionCallResponse отвечает на запрос функции. Поле ID обязано совпадать
// с ID запроса, иначе агент не свяжет результат с разговором.
type FunctionCallResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NewFunctionCallResponse собирает ответ с правильным типом.
func NewFunctionCallResponse(id, name, content string) FunctionCallResponse {
	return FunctionCallResponse{
		Type:    "FunctionCallResponse",
		ID:      id,
		Name:    name,
		Content: content,
	}
}
