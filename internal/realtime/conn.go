package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Conn serializes writes to a websocket; gorilla allows one writer at a time
// and both pushes and pings write.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

func (c *Conn) Send(payload []byte) error {
	return c.write(websocket.TextMessage, payload)
}

func (c *Conn) write(messageType int, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}

// Serve registers the connection for userID and blocks until the client goes
// away or ctx is done. Inbound frames other than pongs are discarded.
func Serve(ctx context.Context, hub *Hub, userID int64, ws *websocket.Conn, logger *slog.Logger) {
	conn := NewConn(ws)
	connID := hub.Register(userID, conn)

	logger.Info("Websocket connected",
		slog.Int64("user_id", userID),
		slog.Int64("conn_id", connID),
	)

	defer func() {
		hub.Unregister(userID, connID)
		ws.Close()
		logger.Info("Websocket disconnected",
			slog.Int64("user_id", userID),
			slog.Int64("conn_id", connID),
		)
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := conn.Send([]byte(`{"type":"connected"}`)); err != nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				ws.Close()
				return
			case <-ticker.C:
				if err := conn.write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read failed",
					slog.Int64("user_id", userID),
					slog.Any("error", err),
				)
			}
			return
		}
	}
}
