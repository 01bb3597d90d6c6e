package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// client is one connected session: the socket plus a buffered outbound
// queue drained by writePump. Fan-out never blocks on a slow reader; a
// full queue drops the frame.
//
// The mutex covers sessionID, closed and the right to send into the
// queue: enqueue and closeSend serialize on it, so broadcasters racing a
// teardown drop the frame instead of hitting a closed channel.
type client struct {
	conn *websocket.Conn

	mu        sync.Mutex
	sessionID string
	closed    bool
	send      chan []byte
}

func newClient(sessionID string, conn *websocket.Conn) *client {
	return &client{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}
}

func (that *client) id() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.sessionID
}

func (that *client) setID(sessionID string) {
	that.mu.Lock()
	that.sessionID = sessionID
	that.mu.Unlock()
}

// enqueue - queues a frame for writePump and reports whether it was
// taken. A torn-down client or a full queue drops the frame.
func (that *client) enqueue(data []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

// closeSend - tears the outbound side down. The queue is closed under the
// same lock enqueue takes, so no late broadcast can send after this;
// writePump drains what is left and exits.
func (that *client) closeSend() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

// writePump - drains the send queue onto the socket and keeps the
// connection alive with pings. It exits when the queue is closed or a
// write fails.
func (that *client) writePump(logger *slog.Logger) {
	log := logger.With("method", "writePump", "sessionID", that.id())

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
