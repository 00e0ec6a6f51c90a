package goroutine

import (
	"runtime/debug"

	"github.com/ignatzorin/complaint-voice-backend/internal/logger"
)

// SafeGo запускает горутину с обработкой panic.
// Паника в обслуживании одного звонка не должна ронять процесс и другие звонки.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.L().Errorf("panic в горутине: %v\nstack:\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
