package agent

// Settings задаёт конфигурацию агента. Мост отправляет его
// первым сообщением после установки соединения: формат аудио, промпт и схемы функций.
type Settings struct {
	Type  string        `json:"type"`
	Audio AudioSettings `json:"audio"`
	Agent AgentSettings `json:"agent"`
}

type AudioSettings struct {
	Input  MediaFormat `json:"input"`
	Output MediaFormat `json:"output"`
}

type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type AgentSettings struct {
	Language string        `json:"language,omitempty"`
	Listen   ListenConfig  `json:"listen"`
	Think    ThinkConfig   `json:"think"`
	Speak    SpeakConfig   `json:"speak"`
	Greeting string        `json:"greeting,omitempty"`
}

type Provider struct {
	Type  string `json:"type"`
	Model string `json:"model,omitempty"`
}

type ListenConfig struct {
	Provider Provider `json:"provider"`
}

type ThinkConfig struct {
	Provider  Provider             `json:"provider"`
	Prompt    string               `json:"prompt"`
	Functions []FunctionDefinition `json:"functions,omitempty"`
}

type SpeakConfig struct {
	Provider Provider `json:"provider"`
}

// FunctionDefinition описывает одну функцию в схеме, которую агент может
// запросить. Parameters содержит JSON Schema аргументов.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Телефонный канал отдаёт узкополосный mulaw 8kHz; агент должен говорить
// в том же формате, мост ничего не перекодирует.
const (
	AudioEncodingMulaw = "mulaw"
	AudioSampleRate    = 8000
)

// defaultPrompt описывает персону диспетчера жалоб энергосбытовой компании.
const defaultPrompt = `You are a polite and efficient phone agent for a power distribution company's complaint desk. Callers report power outages and faults, or check the status of an existing complaint.

To register a new complaint you must collect the caller's name and a description of the problem; service number, area and landmark are helpful but optional. Confirm the details back to the caller, then call raise_complaint and read out the complaint number you receive.

To check a complaint, ask for the complaint number or complaint id and call lookup_complaint, then summarise the status, when it was created and the estimated resolution time if known.

Keep answers short, one or two sentences: the caller is on the phone. Never invent complaint numbers or statuses; only report what the functions return. If a function reports an error, apologise and offer to try again.`

// defaultGreeting произносится агентом сразу после подключения.
const defaultGreeting = "Hello, you have reached the power supply complaint desk. How can I help you today?"

// NewSettings собирает конфигурацию агента для одного звонка.
// Пустые prompt и greeting заменяются дефолтными.
func NewSettings(prompt, greeting string) Settings {
	if prompt == "" {
		prompt = defaultPrompt
	}
	if greeting == "" {
		greeting = defaultGreeting
	}

	return Settings{
		Type: "Settings",
		Audio: AudioSettings{
			Input:  MediaFormat{Encoding: AudioEncodingMulaw, SampleRate: AudioSampleRate},
			Output: MediaFormat{Encoding: AudioEncodingMulaw, SampleRate: AudioSampleRate},
		},
		Agent: AgentSettings{
			Language: "en",
			Listen: ListenConfig{
				Provider: Provider{Type: "deepgram", Model: "nova-3"},
			},
			Think: ThinkConfig{
				Provider:  Provider{Type: "open_ai", Model: "gpt-4o-mini"},
				Prompt:    prompt,
				Functions: FunctionSchemas(),
			},
			Speak: SpeakConfig{
				Provider: Provider{Type: "deepgram", Model: "aura-2-thalia-en"},
			},
			Greeting: greeting,
		},
	}
}

// FunctionSchemas возвращает схемы двух функций, доступных агенту.
// Набор закрытый: диспетчер узнаёт функции по имени, никакого плагинного
// механизма здесь нет и не нужно.
func FunctionSchemas() []FunctionDefinition {
	return []FunctionDefinition{
		{
			Name:        FuncRaiseComplaint,
			Description: "Register a new complaint about a power outage or fault. Requires the caller's name and problem details.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Caller's full name",
					},
					"problem_details": map[string]any{
						"type":        "string",
						"description": "Free-text description of the problem",
					},
					"service_no": map[string]any{
						"type":        "string",
						"description": "Caller's service account number, if known",
					},
					"area_description": map[string]any{
						"type":        "string",
						"description": "Area or locality of the fault",
					},
					"landmark": map[string]any{
						"type":        "string",
						"description": "Nearby landmark",
					},
				},
				"required": []string{"name", "problem_details"},
			},
		},
		{
			Name:        FuncLookupComplaint,
			Description: "Look up an existing complaint by its complaint number or complaint id.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"complaint_no": map[string]any{
						"type":        "integer",
						"description": "Numeric complaint number",
					},
					"complaint_id": map[string]any{
						"type":        "string",
						"description": "Complaint id, full or first characters",
					},
				},
			},
		},
	}
}
