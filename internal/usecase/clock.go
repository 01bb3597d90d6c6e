package usecase

import (
	"time"

	"github.com/rocketscienceinc/othello-backend/internal/metrics"
)

// startClockLocked - supersedes any running countdown for the room and
// starts a fresh one for the current turn holder. Callers hold slot.mu.
func (that *RoomManager) startClockLocked(slot *roomSlot) {
	slot.clockGen++
	slot.room.Game.TimeLeft = that.turnSeconds

	go that.runClock(slot, slot.clockGen)
}

// runClock - drives one countdown generation. The generation check under
// the slot lock makes a superseded or cancelled clock exit without
// touching state, however late its tick fires.
func (that *RoomManager) runClock(slot *roomSlot, gen uint64) {
	ticker := time.NewTicker(that.tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		slot.mu.Lock()

		if slot.closed || slot.clockGen != gen || !slot.room.Game.IsPlaying() {
			slot.mu.Unlock()
			return
		}

		game := slot.room.Game
		game.TimeLeft--
		secondsLeft := game.TimeLeft

		if secondsLeft > 0 {
			snapshot := slot.room.Snapshot()
			slot.mu.Unlock()

			that.emitTick(snapshot, secondsLeft)
			continue
		}

		// time is up: force the skip, with the same double-skip and
		// terminal handling as a played move
		game.SkipTurn()

		if game.IsFinished() {
			slot.clockGen++
			metrics.GamesFinished.Inc()
			that.logger.Info("match finished on timeout", "roomID", slot.room.ID)
		} else {
			that.startClockLocked(slot)

			if game.IsWithAI() {
				if ai := game.AIPlayer(); ai != nil && game.Turn == ai.Seat {
					that.scheduleAITurnLocked(slot)
				}
			}
		}

		snapshot := slot.room.Snapshot()
		slot.mu.Unlock()

		that.emitTick(snapshot, 0)
		that.emitState(snapshot)

		return
	}
}
