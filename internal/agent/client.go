package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Dial открывает websocket-соединение с голосовым агентом.
// Аутентификация идёт через subprotocols ["token", <api key>], так ключ не
// попадает ни в URL, ни в логи прокси.
func Dial(ctx context.Context, url, apiKey string) (*websocket.Conn, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("agent: api key не задан")
	}

	dialer := websocket.Dialer{
		Subprotocols:     []string{"token", apiKey},
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, fmt.Errorf("agent: dial %s: код ответа %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("agent: dial %s: %w", url, err)
	}

	return conn, nil
}
