package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/othello-backend/internal/apperror"
	"github.com/rocketscienceinc/othello-backend/internal/entity"
	"github.com/rocketscienceinc/othello-backend/internal/metrics"
	"github.com/rocketscienceinc/othello-backend/internal/pkg"
)

const (
	maxNameLen    = 32
	defaultAvatar = "🙂"
)

// notifier fans room events out to the transport layer. Implementations
// must not retain the snapshots past the call.
type notifier interface {
	RoomState(room *entity.Room)
	RoomChat(room *entity.Room, message entity.ChatMessage)
	RoomTick(room *entity.Room, secondsLeft int)
}

type strategist interface {
	PickMove(board entity.Board, seat entity.Seat, difficulty string) (entity.Coord, bool)
}

// roomSlot pairs a room with its exclusive lock and the identity of its
// active countdown. Bumping clockGen cancels the countdown: a tick or a
// deferred AI move that captured an older generation becomes a no-op.
type roomSlot struct {
	mu       sync.Mutex
	room     *entity.Room
	clockGen uint64
	closed   bool
}

// RoomManager owns every active room. All mutations of a room funnel
// through here and run under that room's lock; operations on different
// rooms proceed in parallel.
type RoomManager struct {
	logger     *slog.Logger
	strategist strategist

	turnSeconds      int
	aiDelay          time.Duration
	tickInterval     time.Duration
	generateRoomCode func() string

	notifier notifier

	mu    sync.RWMutex
	rooms map[string]*roomSlot
}

func NewRoomManager(logger *slog.Logger, strategist strategist, turnSeconds int, aiDelay time.Duration) *RoomManager {
	if turnSeconds <= 0 {
		turnSeconds = entity.DefaultTurnSeconds
	}

	return &RoomManager{
		logger:           logger,
		strategist:       strategist,
		turnSeconds:      turnSeconds,
		aiDelay:          aiDelay,
		tickInterval:     time.Second,
		generateRoomCode: pkg.GenerateRoomCode,
		rooms:            make(map[string]*roomSlot),
	}
}

// SetNotifier - wires the transport fan-out. Must be called before any
// intent is routed in; without it events are dropped.
func (that *RoomManager) SetNotifier(n notifier) {
	that.notifier = n
}

// CreateRoom - creates a human-vs-human room with the caller on the dark
// seat. The new state goes to the caller only.
func (that *RoomManager) CreateRoom(sessionID, name, avatar string) (*entity.Room, error) {
	name, avatar, err := sanitizePlayerInfo(name, avatar)
	if err != nil {
		return nil, err
	}

	game := entity.NewMatch(entity.HumanType)
	game.TimeLeft = that.turnSeconds

	if err = game.AddPlayer(&entity.Player{ID: sessionID, Name: name, Avatar: avatar}); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	room := that.insertRoom(game)

	that.logger.Info("room created", "roomID", room.ID, "playerID", sessionID)

	return room.Snapshot(), nil
}

// CreateAIRoom - creates a room against the computer. Both seats are filled
// immediately, the match enters playing and the clock starts; the human
// holds the dark seat and therefore moves first.
func (that *RoomManager) CreateAIRoom(sessionID, name, avatar, difficulty string) (*entity.Room, error) {
	name, avatar, err := sanitizePlayerInfo(name, avatar)
	if err != nil {
		return nil, err
	}

	game := entity.NewMatch(entity.WithAIType)
	game.Difficulty = normalizeDifficulty(difficulty)

	if err = game.AddPlayer(&entity.Player{ID: sessionID, Name: name, Avatar: avatar, IsReady: true}); err != nil {
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	if err = game.AddPlayer(entity.NewAIPlayer(game.Difficulty)); err != nil {
		return nil, fmt.Errorf("failed to seat AI: %w", err)
	}

	game.Status = entity.StatusPlaying

	room := that.insertRoom(game)

	slot := that.lookup(room.ID)
	slot.mu.Lock()
	that.startClockLocked(slot)
	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.logger.Info("AI room created", "roomID", room.ID, "playerID", sessionID, "difficulty", game.Difficulty)

	return snapshot, nil
}

// JoinRoom - seats the caller in an existing room and broadcasts the new
// state to every occupant. Joining a room you already occupy is a no-op
// returning the current state.
func (that *RoomManager) JoinRoom(roomID, sessionID, name, avatar string) (*entity.Room, error) {
	name, avatar, err := sanitizePlayerInfo(name, avatar)
	if err != nil {
		return nil, err
	}

	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()

	if slot.closed {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if slot.room.Game.PlayerByID(sessionID) != nil {
		snapshot := slot.room.Snapshot()
		slot.mu.Unlock()
		return snapshot, nil
	}

	if err = slot.room.Game.AddPlayer(&entity.Player{ID: sessionID, Name: name, Avatar: avatar}); err != nil {
		slot.mu.Unlock()
		return nil, err
	}

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.logger.Info("player joined", "roomID", roomID, "playerID", sessionID)

	that.emitState(snapshot)

	return snapshot, nil
}

// Ready - sets the caller's ready flag; once both seats are ready the
// match starts and the clock begins for the dark seat.
func (that *RoomManager) Ready(roomID, sessionID string) (*entity.Room, error) {
	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()

	if slot.closed {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if slot.room.Game.PlayerByID(sessionID) == nil {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: not seated in room %s", apperror.ErrInvalidInput, roomID)
	}

	if started := slot.room.Game.MarkReady(sessionID); started {
		that.startClockLocked(slot)
		that.logger.Info("match started", "roomID", roomID)
	}

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.emitState(snapshot)

	return snapshot, nil
}

// SubmitMove - applies a move for the caller. Rejections leave the room
// untouched and reach the caller only; a successful move is broadcast and
// restarts the clock for the new turn holder, or stops it on game end. In
// AI rooms a move that hands the turn to the AI seat schedules the
// deferred AI reply.
func (that *RoomManager) SubmitMove(roomID, sessionID string, row, col int) (*entity.Room, error) {
	coord := entity.Coord{Row: row, Col: col}
	if !coord.InBounds() {
		return nil, fmt.Errorf("%w: coordinate %d,%d", apperror.ErrInvalidInput, row, col)
	}

	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()

	if slot.closed {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	game := slot.room.Game

	if err := game.SubmitMove(sessionID, coord); err != nil {
		slot.mu.Unlock()
		return nil, err
	}

	metrics.MovesTotal.Inc()

	that.settleTurnLocked(slot)

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.emitState(snapshot)

	return snapshot, nil
}

// Reset - starts a new game on the same board and seats. Human rooms fall
// back to waiting; AI rooms keep playing and the clock restarts.
func (that *RoomManager) Reset(roomID string) (*entity.Room, error) {
	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()

	if slot.closed {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	game := slot.room.Game
	game.Reset()
	game.TimeLeft = that.turnSeconds

	if game.IsPlaying() {
		that.startClockLocked(slot)
	} else {
		slot.clockGen++
	}

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.logger.Info("match reset", "roomID", roomID)

	that.emitState(snapshot)

	return snapshot, nil
}

// SendChat - appends a chat message and broadcasts it to the room.
func (that *RoomManager) SendChat(roomID, sessionID, text string) (*entity.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty chat text", apperror.ErrInvalidInput)
	}

	if utf8.RuneCountInString(text) > entity.MaxChatTextLen {
		return nil, fmt.Errorf("%w: chat text exceeds %d characters", apperror.ErrInvalidInput, entity.MaxChatTextLen)
	}

	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()

	if slot.closed {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	player := slot.room.Game.PlayerByID(sessionID)
	if player == nil {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: not seated in room %s", apperror.ErrInvalidInput, roomID)
	}

	message := entity.NewChatMessage(player.ID, player.Name, text)
	slot.room.AppendMessage(message)
	metrics.ChatMessagesTotal.Inc()

	snapshot := slot.room.Snapshot()
	slot.mu.Unlock()

	that.emitChat(snapshot, message)

	return &message, nil
}

// Disconnect - removes the identity from every room it occupies. Rooms
// left without a human occupant are destroyed; the rest get a state
// broadcast for the vacated seat.
func (that *RoomManager) Disconnect(sessionID string) {
	log := that.logger.With("method", "Disconnect", "playerID", sessionID)

	var broadcasts []*entity.Room

	that.mu.Lock()
	for roomID, slot := range that.rooms {
		slot.mu.Lock()

		if !slot.room.Game.RemovePlayer(sessionID) {
			slot.mu.Unlock()
			continue
		}

		if slot.room.Game.IsEmpty() {
			slot.closed = true
			slot.clockGen++
			delete(that.rooms, roomID)
			metrics.ActiveRooms.Dec()
			log.Info("room destroyed", "roomID", roomID)
		} else {
			broadcasts = append(broadcasts, slot.room.Snapshot())
		}

		slot.mu.Unlock()
	}
	that.mu.Unlock()

	for _, room := range broadcasts {
		that.emitState(room)
	}
}

// Get - returns a snapshot of the room, or ErrRoomNotFound.
func (that *RoomManager) Get(roomID string) (*entity.Room, error) {
	slot := that.lookup(roomID)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.closed {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return slot.room.Snapshot(), nil
}

// settleTurnLocked - runs the shared after-move bookkeeping: stop the
// clock on a finished match, restart it for the new turn holder otherwise,
// and hand the turn to the strategist when it lands on the AI seat.
func (that *RoomManager) settleTurnLocked(slot *roomSlot) {
	game := slot.room.Game

	if game.IsFinished() {
		slot.clockGen++
		metrics.GamesFinished.Inc()
		return
	}

	that.startClockLocked(slot)

	if !game.IsWithAI() {
		return
	}

	if ai := game.AIPlayer(); ai != nil && game.Turn == ai.Seat {
		that.scheduleAITurnLocked(slot)
	}
}

func (that *RoomManager) insertRoom(game *entity.Match) *entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	var roomID string
	for {
		roomID = that.generateRoomCode()
		if _, taken := that.rooms[roomID]; !taken {
			break
		}
	}

	room := entity.NewRoom(roomID, game)
	that.rooms[roomID] = &roomSlot{room: room}
	metrics.ActiveRooms.Inc()

	return room
}

func (that *RoomManager) lookup(roomID string) *roomSlot {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.rooms[roomID]
}

func (that *RoomManager) emitState(room *entity.Room) {
	if that.notifier != nil {
		that.notifier.RoomState(room)
	}
}

func (that *RoomManager) emitChat(room *entity.Room, message entity.ChatMessage) {
	if that.notifier != nil {
		that.notifier.RoomChat(room, message)
	}
}

func (that *RoomManager) emitTick(room *entity.Room, secondsLeft int) {
	if that.notifier != nil {
		that.notifier.RoomTick(room, secondsLeft)
	}
}

func sanitizePlayerInfo(name, avatar string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: empty name", apperror.ErrInvalidInput)
	}

	if utf8.RuneCountInString(name) > maxNameLen {
		return "", "", fmt.Errorf("%w: name exceeds %d characters", apperror.ErrInvalidInput, maxNameLen)
	}

	if strings.TrimSpace(avatar) == "" {
		avatar = defaultAvatar
	}

	return name, avatar, nil
}

func normalizeDifficulty(difficulty string) string {
	switch difficulty {
	case entity.DifficultyMedium, entity.DifficultyHard:
		return difficulty
	default:
		return entity.DifficultyEasy
	}
}
