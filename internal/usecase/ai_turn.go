package usecase

import (
	"time"

	"github.com/rocketscienceinc/othello-backend/internal/metrics"
)

// scheduleAITurnLocked - arms the cosmetic thinking delay for the AI seat.
// The captured clock generation is the staleness token: a reset, timeout
// skip or room teardown during the delay bumps it and the pending move
// drops on the floor. Callers hold slot.mu.
func (that *RoomManager) scheduleAITurnLocked(slot *roomSlot) {
	roomID := slot.room.ID
	gen := slot.clockGen

	time.AfterFunc(that.aiDelay, func() {
		that.playAITurn(roomID, gen)
	})
}

// playAITurn - applies the deferred AI move. The room is re-resolved by id
// and the match re-validated under its lock; anything may have happened
// during the delay.
func (that *RoomManager) playAITurn(roomID string, gen uint64) {
	log := that.logger.With("method", "playAITurn", "roomID", roomID)

	slot := that.lookup(roomID)
	if slot == nil {
		return
	}

	slot.mu.Lock()

	game := slot.room.Game
	if slot.closed || slot.clockGen != gen || !game.IsPlaying() || !game.IsWithAI() {
		slot.mu.Unlock()
		return
	}

	ai := game.AIPlayer()
	if ai == nil || game.Turn != ai.Seat {
		slot.mu.Unlock()
		return
	}

	move, ok := that.strategist.PickMove(game.Board, ai.Seat, game.Difficulty)
	if !ok {
		// no legal move is a pass, not an error
		game.SkipTurn()
	} else if err := game.ApplyMoveFor(ai.Seat, move); err != nil {
		slot.mu.Unlock()
		log.Error("AI produced a rejected move", "error", err)
		return
	} else {
		metrics.MovesTotal.Inc()
		metrics.AIMovesTotal.Inc()
	}

	that.settleTurnLocked(slot)

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.emitState(snapshot)
}
