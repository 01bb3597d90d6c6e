package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/othello-backend/internal/entity"
	"github.com/rocketscienceinc/othello-backend/internal/pkg"
)

type roomManager interface {
	CreateRoom(sessionID, name, avatar string) (*entity.Room, error)
	CreateAIRoom(sessionID, name, avatar, difficulty string) (*entity.Room, error)
	JoinRoom(roomID, sessionID, name, avatar string) (*entity.Room, error)
	Ready(roomID, sessionID string) (*entity.Room, error)
	SubmitMove(roomID, sessionID string, row, col int) (*entity.Room, error)
	Reset(roomID string) (*entity.Room, error)
	SendChat(roomID, sessionID, text string) (*entity.ChatMessage, error)
	Disconnect(sessionID string)
}

type handlerFunc func(ctx context.Context, c *client, payload *RequestPayload) error

type Server struct {
	logger  *slog.Logger
	manager roomManager

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	mu       sync.RWMutex
	sessions map[string]*client
}

func New(logger *slog.Logger, manager roomManager) *Server {
	server := &Server{
		logger:  logger,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the session id is the only identity; origin policy is the
			// reverse proxy's concern
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
		sessions: make(map[string]*client),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionCreateAI] = server.handleCreateAIRoom
	server.handlers[actionPlayerReady] = server.handlePlayerReady
	server.handlers[actionResetMatch] = server.handleResetMatch
	server.handlers[actionSubmitMove] = server.handleSubmitMove
	server.handlers[actionSendChat] = server.handleSendChat

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the connection, mints a session id and pumps
// messages until the peer goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(pkg.GenerateNewSessionID(), conn)

	that.mu.Lock()
	that.sessions[c.sessionID] = c
	that.mu.Unlock()

	go c.writePump(that.logger)

	log.Info("WebSocket connection established", "sessionID", c.sessionID)

	that.reply(c, actionConnect, ResponsePayload{SessionID: c.sessionID})

	that.readLoop(ctx, c)

	sessionID := c.id()

	that.mu.Lock()
	delete(that.sessions, sessionID)
	that.mu.Unlock()

	c.closeSend()
	that.manager.Disconnect(sessionID)

	log.Info("WebSocket connection closed", "sessionID", sessionID)
}

// adoptSession - re-keys the connection to a previously issued session id
// so a reconnecting client reclaims its seats. An id held by a live
// connection stays with its owner and reports false.
func (that *Server) adoptSession(c *client, sessionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, taken := that.sessions[sessionID]; taken {
		return false
	}

	delete(that.sessions, c.id())
	c.setID(sessionID)
	that.sessions[sessionID] = c

	return true
}

// readLoop - processes messages from the client.
func (that *Server) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop", "sessionID", c.sessionID)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("read failed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		var payload RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				log.Error("failed to unmarshal payload", "action", message.Action, "error", err)
				continue
			}
		}

		if err = handler(ctx, c, &payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// reply - queues a message for one session.
func (that *Server) reply(c *client, action string, payload ResponsePayload) {
	data, err := marshalMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to marshal response", "action", action, "error", err)
		return
	}

	that.deliver(c, data)
}

// sendTo - queues a message for the session with the given id, if it is
// still connected.
func (that *Server) sendTo(sessionID string, data []byte) {
	that.mu.RLock()
	c, ok := that.sessions[sessionID]
	that.mu.RUnlock()

	if ok {
		that.deliver(c, data)
	}
}

func (that *Server) deliver(c *client, data []byte) {
	if !c.enqueue(data) {
		that.logger.Warn("client gone or queue full, dropping frame", "sessionID", c.id())
	}
}

func marshalMessage(action string, payload ResponsePayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// RoomState - broadcasts the room's state to every seated human session.
func (that *Server) RoomState(room *entity.Room) {
	data, err := marshalMessage(actionRoomState, ResponsePayload{RoomID: room.ID, Game: room.Game})
	if err != nil {
		that.logger.Error("failed to marshal room state", "roomID", room.ID, "error", err)
		return
	}

	that.broadcast(room, data)
}

// RoomChat - broadcasts one chat message to the room.
func (that *Server) RoomChat(room *entity.Room, message entity.ChatMessage) {
	data, err := marshalMessage(actionChatMessage, ResponsePayload{RoomID: room.ID, Message: &message})
	if err != nil {
		that.logger.Error("failed to marshal chat message", "roomID", room.ID, "error", err)
		return
	}

	that.broadcast(room, data)
}

// RoomTick - broadcasts the remaining turn-clock seconds to the room.
func (that *Server) RoomTick(room *entity.Room, secondsLeft int) {
	data, err := marshalMessage(actionClockTick, ResponsePayload{RoomID: room.ID, SecondsLeft: &secondsLeft})
	if err != nil {
		that.logger.Error("failed to marshal clock tick", "roomID", room.ID, "error", err)
		return
	}

	that.broadcast(room, data)
}

func (that *Server) broadcast(room *entity.Room, data []byte) {
	for _, player := range room.Game.Players {
		if player.IsAI() {
			continue
		}

		that.sendTo(player.ID, data)
	}
}
