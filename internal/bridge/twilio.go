package bridge

import (
	"encoding/base64"
	"encoding/json"
)

// События Twilio Media Streams, проходящие по telephony-соединению.
const (
	twilioEventConnected = "connected"
	twilioEventStart     = "start"
	twilioEventMedia     = "media"
	twilioEventStop      = "stop"
	twilioEventClear     = "clear"
	twilioEventMark      = "mark"
)

// Дорожка входящего аудио абонента.
const trackInbound = "inbound"

// twilioMessage описывает общий конверт сообщения Media Streams.
type twilioMessage struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *startMessage `json:"start,omitempty"`
	Media     *mediaPayload `json:"media,omitempty"`
	Stop      *stopMessage  `json:"stop,omitempty"`
}

type startMessage struct {
	StreamSID   string      `json:"streamSid"`
	AccountSID  string      `json:"accountSid"`
	CallSID     string      `json:"callSid"`
	Tracks      []string    `json:"tracks"`
	MediaFormat mediaFormat `json:"mediaFormat"`
}

type mediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

type mediaPayload struct {
	Track     string `json:"track,omitempty"`
	Chunk     string `json:"chunk,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"` // base64 аудио
}

type stopMessage struct {
	AccountSID string `json:"accountSid"`
	CallSID    string `json:"callSid"`
}

// buildMediaMessage упаковывает сырой mulaw-фрейм агента в media событие
// для Twilio.
func buildMediaMessage(streamSID string, audio []byte) ([]byte, error) {
	msg := twilioMessage{
		Event:     twilioEventMedia,
		StreamSID: streamSID,
		Media: &mediaPayload{
			Payload: base64.StdEncoding.EncodeToString(audio),
		},
	}
	return json.Marshal(msg)
}

// buildClearMessage собирает clear событие: Twilio сбрасывает буфер
// воспроизведения, когда абонент перебивает агента.
func buildClearMessage(streamSID string) ([]byte, error) {
	return json.Marshal(twilioMessage{
		Event:     twilioEventClear,
		StreamSID: streamSID,
	})
}
