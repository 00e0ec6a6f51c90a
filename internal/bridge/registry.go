package bridge

import (
	"sync"
)

// Registry хранит активные мосты по streamSid. Используется только для
// учёта и завершения при остановке процесса: никакого другого состояния
// между звонками нет.
type Registry struct {
	mu    sync.RWMutex
	calls map[string]*Bridge
}

// NewRegistry создаёт новый реестр.
func NewRegistry() *Registry {
	return &Registry{
		calls: make(map[string]*Bridge),
	}
}

// Register добавляет мост после того, как Twilio сообщил streamSid.
func (r *Registry) Register(streamSID string, b *Bridge) {
	if streamSID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[streamSID] = b
}

// Unregister убирает мост из реестра.
func (r *Registry) Unregister(streamSID string) {
	if streamSID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calls, streamSID)
}

// Len возвращает количество активных звонков.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}

// CloseAll завершает все активные мосты (graceful shutdown).
func (r *Registry) CloseAll() {
	r.mu.Lock()
	bridges := make([]*Bridge, 0, len(r.calls))
	for _, b := range r.calls {
		bridges = append(bridges, b)
	}
	r.mu.Unlock()

	for _, b := range bridges {
		b.Close()
	}
}
