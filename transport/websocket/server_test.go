package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/othello-backend/internal/apperror"
	"github.com/rocketscienceinc/othello-backend/internal/entity"
)

// fakeManager lets handler tests script the registry's answer.
type fakeManager struct {
	room *entity.Room
	chat *entity.ChatMessage
	err  error

	disconnected []string
}

func (that *fakeManager) CreateRoom(_, _, _ string) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) CreateAIRoom(_, _, _, _ string) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) JoinRoom(_, _, _, _ string) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) Ready(_, _ string) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) SubmitMove(_, _ string, _, _ int) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) Reset(_ string) (*entity.Room, error) {
	return that.room, that.err
}

func (that *fakeManager) SendChat(_, _, _ string) (*entity.ChatMessage, error) {
	return that.chat, that.err
}

func (that *fakeManager) Disconnect(sessionID string) {
	that.disconnected = append(that.disconnected, sessionID)
}

func newTestServer(manager roomManager) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, manager)
}

func queuedMessage(t *testing.T, c *client) Message {
	t.Helper()

	select {
	case data := <-c.send:
		var message Message
		require.NoError(t, json.Unmarshal(data, &message))
		return message
	default:
		t.Fatal("expected a queued frame")
		return Message{}
	}
}

func queuedResponse(t *testing.T, c *client) (string, ResponsePayload) {
	t.Helper()

	message := queuedMessage(t, c)

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	c := newClient("s1", nil)

	require.True(t, c.enqueue([]byte("first")))

	// When: the outbound side is torn down
	c.closeSend()

	// Then: late frames are dropped instead of hitting the closed queue
	require.False(t, c.enqueue([]byte("late")))

	// Then: tearing down twice is harmless
	c.closeSend()
}

func TestServer_BroadcastDuringTeardown(t *testing.T) {
	game := entity.NewMatch(entity.HumanType)
	require.NoError(t, game.AddPlayer(&entity.Player{ID: "s1", Name: "Alice"}))
	room := entity.NewRoom("ABC123", game)

	server := newTestServer(&fakeManager{})

	// A room-state fan-out racing a disconnect must never send into the
	// closed queue; a regression panics the whole test binary.
	for i := 0; i < 100; i++ {
		c := newClient("s1", nil)
		server.mu.Lock()
		server.sessions["s1"] = c
		server.mu.Unlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 64; j++ {
				server.RoomState(room)
			}
		}()

		// the teardown order serveConnection uses
		server.mu.Lock()
		delete(server.sessions, "s1")
		server.mu.Unlock()
		c.closeSend()

		<-done
	}
}

func TestServer_HandleConnect(t *testing.T) {
	t.Run("echoes the minted session id", func(t *testing.T) {
		server := newTestServer(&fakeManager{})
		c := newClient("fresh", nil)
		server.sessions["fresh"] = c

		err := server.handleConnect(context.Background(), c, &RequestPayload{})
		require.NoError(t, err)

		action, payload := queuedResponse(t, c)
		require.Equal(t, actionConnect, action)
		require.Equal(t, "fresh", payload.SessionID)
	})

	t.Run("resumes a presented session id", func(t *testing.T) {
		server := newTestServer(&fakeManager{})
		c := newClient("fresh", nil)
		server.sessions["fresh"] = c

		// When: the client presents the id of an earlier connection
		err := server.handleConnect(context.Background(), c, &RequestPayload{SessionID: "earlier"})
		require.NoError(t, err)

		// Then: the connection now speaks under the old id
		action, payload := queuedResponse(t, c)
		require.Equal(t, actionConnect, action)
		require.Equal(t, "earlier", payload.SessionID)
		require.Equal(t, "earlier", c.id())

		require.Contains(t, server.sessions, "earlier")
		require.NotContains(t, server.sessions, "fresh")
	})

	t.Run("keeps the minted id when the presented one is live", func(t *testing.T) {
		server := newTestServer(&fakeManager{})
		owner := newClient("taken", nil)
		server.sessions["taken"] = owner

		c := newClient("fresh", nil)
		server.sessions["fresh"] = c

		err := server.handleConnect(context.Background(), c, &RequestPayload{SessionID: "taken"})
		require.NoError(t, err)

		// Then: the live owner keeps its id and the newcomer its own
		_, payload := queuedResponse(t, c)
		require.Equal(t, "fresh", payload.SessionID)
		require.Same(t, owner, server.sessions["taken"])
	})
}

func TestMarshalMessage(t *testing.T) {
	// When: an error response is framed
	data, err := marshalMessage(actionError, ResponsePayload{Error: "boom"})
	require.NoError(t, err)

	// Then: the envelope decodes back to the same action and payload
	var message Message
	require.NoError(t, json.Unmarshal(data, &message))
	require.Equal(t, actionError, message.Action)

	var payload ResponsePayload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))
	require.Equal(t, "boom", payload.Error)
}

func TestServer_HandleCreateRoom(t *testing.T) {
	t.Run("replies with the room state", func(t *testing.T) {
		room := entity.NewRoom("ABC123", entity.NewMatch(entity.HumanType))
		server := newTestServer(&fakeManager{room: room})
		c := newClient("s1", nil)

		err := server.handleCreateRoom(context.Background(), c, &RequestPayload{Name: "Alice"})
		require.NoError(t, err)

		action, payload := queuedResponse(t, c)
		require.Equal(t, actionRoomState, action)
		require.Equal(t, "ABC123", payload.RoomID)
		require.NotNil(t, payload.Game)
	})

	t.Run("reports the rejection to the caller", func(t *testing.T) {
		failure := fmt.Errorf("%w: empty name", apperror.ErrInvalidInput)
		server := newTestServer(&fakeManager{err: failure})
		c := newClient("s1", nil)

		err := server.handleCreateRoom(context.Background(), c, &RequestPayload{})
		require.ErrorIs(t, err, apperror.ErrInvalidInput)

		action, payload := queuedResponse(t, c)
		require.Equal(t, actionError, action)
		require.Equal(t, apperror.ErrInvalidInput.Error(), payload.Error)
	})
}

func TestServer_HandleSubmitMove(t *testing.T) {
	t.Run("rejects a move without coordinates", func(t *testing.T) {
		server := newTestServer(&fakeManager{})
		c := newClient("s1", nil)

		row := 2
		err := server.handleSubmitMove(context.Background(), c, &RequestPayload{RoomID: "ABC123", Row: &row})
		require.ErrorIs(t, err, apperror.ErrInvalidInput)

		action, payload := queuedResponse(t, c)
		require.Equal(t, actionError, action)
		require.Equal(t, apperror.ErrInvalidInput.Error(), payload.Error)
	})

	t.Run("stays silent on success", func(t *testing.T) {
		room := entity.NewRoom("ABC123", entity.NewMatch(entity.HumanType))
		server := newTestServer(&fakeManager{room: room})
		c := newClient("s1", nil)

		row, col := 2, 3
		err := server.handleSubmitMove(context.Background(), c, &RequestPayload{RoomID: "ABC123", Row: &row, Col: &col})
		require.NoError(t, err)

		// the broadcast path, not a direct reply, carries the new state
		require.Empty(t, c.send)
	})
}

func TestServer_SendError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "room not found", err: fmt.Errorf("wrap: %w", apperror.ErrRoomNotFound), want: apperror.ErrRoomNotFound.Error()},
		{name: "room is full", err: apperror.ErrRoomFull, want: apperror.ErrRoomFull.Error()},
		{name: "not your turn", err: fmt.Errorf("wrap: %w", apperror.ErrNotYourTurn), want: apperror.ErrNotYourTurn.Error()},
		{name: "illegal move", err: apperror.ErrIllegalMove, want: apperror.ErrIllegalMove.Error()},
		{name: "invalid input", err: apperror.ErrInvalidInput, want: apperror.ErrInvalidInput.Error()},
		{name: "unexpected failure is masked", err: fmt.Errorf("db on fire"), want: "internal error"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := newTestServer(&fakeManager{})
			c := newClient("s1", nil)

			server.sendError(c, testCase.err)

			action, payload := queuedResponse(t, c)
			require.Equal(t, actionError, action)
			require.Equal(t, testCase.want, payload.Error)
		})
	}
}

func TestServer_Broadcast(t *testing.T) {
	game := entity.NewMatch(entity.WithAIType)
	require.NoError(t, game.AddPlayer(&entity.Player{ID: "s1", Name: "Alice", IsReady: true}))
	require.NoError(t, game.AddPlayer(entity.NewAIPlayer(entity.DifficultyEasy)))
	room := entity.NewRoom("ABC123", game)

	server := newTestServer(&fakeManager{})

	seated := newClient("s1", nil)
	bystander := newClient("s2", nil)
	server.sessions["s1"] = seated
	server.sessions["s2"] = bystander

	// When: a room state goes out
	server.RoomState(room)

	// Then: only the seated human session gets a frame; the AI seat and
	// unrelated sessions get nothing
	action, payload := queuedResponse(t, seated)
	require.Equal(t, actionRoomState, action)
	require.Equal(t, "ABC123", payload.RoomID)
	require.Empty(t, seated.send)
	require.Empty(t, bystander.send)
}

func TestServer_RoomTick(t *testing.T) {
	game := entity.NewMatch(entity.HumanType)
	require.NoError(t, game.AddPlayer(&entity.Player{ID: "s1", Name: "Alice"}))
	room := entity.NewRoom("ABC123", game)

	server := newTestServer(&fakeManager{})
	seated := newClient("s1", nil)
	server.sessions["s1"] = seated

	server.RoomTick(room, 12)

	action, payload := queuedResponse(t, seated)
	require.Equal(t, actionClockTick, action)
	require.NotNil(t, payload.SecondsLeft)
	require.Equal(t, 12, *payload.SecondsLeft)
}

func TestServer_RoomChat(t *testing.T) {
	game := entity.NewMatch(entity.HumanType)
	require.NoError(t, game.AddPlayer(&entity.Player{ID: "s1", Name: "Alice"}))
	room := entity.NewRoom("ABC123", game)

	server := newTestServer(&fakeManager{})
	seated := newClient("s1", nil)
	server.sessions["s1"] = seated

	message := entity.NewChatMessage("s1", "Alice", "good game")
	server.RoomChat(room, message)

	action, payload := queuedResponse(t, seated)
	require.Equal(t, actionChatMessage, action)
	require.NotNil(t, payload.Message)
	require.Equal(t, "good game", payload.Message.Text)
}
