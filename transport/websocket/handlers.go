package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/othello-backend/internal/apperror"
)

// handleConnect - confirms the session id the client speaks under. A
// client presenting an id from an earlier connection gets re-keyed to it
// and so reclaims its seats; otherwise the id minted at upgrade stands.
func (that *Server) handleConnect(_ context.Context, c *client, payload *RequestPayload) error {
	if payload.SessionID != "" && payload.SessionID != c.id() {
		if !that.adoptSession(c, payload.SessionID) {
			that.logger.Warn("session id already connected", "sessionID", payload.SessionID)
		}
	}

	that.reply(c, actionConnect, ResponsePayload{SessionID: c.id()})

	return nil
}

func (that *Server) handleCreateRoom(_ context.Context, c *client, payload *RequestPayload) error {
	room, err := that.manager.CreateRoom(c.id(), payload.Name, payload.Avatar)
	if err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.reply(c, actionRoomState, ResponsePayload{RoomID: room.ID, Game: room.Game})

	return nil
}

func (that *Server) handleCreateAIRoom(_ context.Context, c *client, payload *RequestPayload) error {
	room, err := that.manager.CreateAIRoom(c.id(), payload.Name, payload.Avatar, payload.Difficulty)
	if err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to create AI room: %w", err)
	}

	that.reply(c, actionRoomState, ResponsePayload{RoomID: room.ID, Game: room.Game})

	return nil
}

// handleJoinRoom - on success the registry broadcast already reaches the
// joiner; only failures need a direct reply.
func (that *Server) handleJoinRoom(_ context.Context, c *client, payload *RequestPayload) error {
	if _, err := that.manager.JoinRoom(payload.RoomID, c.id(), payload.Name, payload.Avatar); err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

func (that *Server) handlePlayerReady(_ context.Context, c *client, payload *RequestPayload) error {
	if _, err := that.manager.Ready(payload.RoomID, c.id()); err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to mark ready: %w", err)
	}

	return nil
}

func (that *Server) handleSubmitMove(_ context.Context, c *client, payload *RequestPayload) error {
	if payload.Row == nil || payload.Col == nil {
		that.sendError(c, apperror.ErrInvalidInput)
		return fmt.Errorf("%w: move without coordinates", apperror.ErrInvalidInput)
	}

	if _, err := that.manager.SubmitMove(payload.RoomID, c.id(), *payload.Row, *payload.Col); err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to submit move: %w", err)
	}

	return nil
}

func (that *Server) handleResetMatch(_ context.Context, c *client, payload *RequestPayload) error {
	if _, err := that.manager.Reset(payload.RoomID); err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to reset match: %w", err)
	}

	return nil
}

func (that *Server) handleSendChat(_ context.Context, c *client, payload *RequestPayload) error {
	if _, err := that.manager.SendChat(payload.RoomID, c.id(), payload.Text); err != nil {
		that.sendError(c, err)
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return nil
}

// sendError - reports a rejection to the originating session only. Known
// sentinel errors travel as-is; anything else is masked.
func (that *Server) sendError(c *client, err error) {
	message := "internal error"

	for _, appErr := range []error{
		apperror.ErrRoomNotFound,
		apperror.ErrRoomFull,
		apperror.ErrNotYourTurn,
		apperror.ErrIllegalMove,
		apperror.ErrInvalidInput,
	} {
		if errors.Is(err, appErr) {
			message = appErr.Error()
			break
		}
	}

	that.reply(c, actionError, ResponsePayload{Error: message})
}
