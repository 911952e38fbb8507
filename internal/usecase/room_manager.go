package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rburdet/portfolio/internal/apperror"
	"github.com/rburdet/portfolio/internal/entity"
	"github.com/rburdet/portfolio/internal/pkg"
	"github.com/rburdet/portfolio/internal/tictactoe"
)

// RoomManager owns every live room. It is confined to the gateway's event
// loop: all calls happen on one goroutine, so the maps carry no lock.
type RoomManager struct {
	logger *slog.Logger

	rooms map[string]*entity.Room

	// reverse index: connection id -> ids of rooms it is seated in.
	// Keeps disconnects proportional to the connection's own rooms
	// instead of a scan over the whole registry.
	byConn map[string]map[string]struct{}
}

func NewRoomManager(logger *slog.Logger) *RoomManager {
	return &RoomManager{
		logger: logger.With("component", "room_manager"),

		rooms:  make(map[string]*entity.Room),
		byConn: make(map[string]map[string]struct{}),
	}
}

// CreateRoom - creates a room with a fresh game and the creator seated as X.
func (that *RoomManager) CreateRoom(connID string) *entity.Room {
	id := pkg.GenerateRoomID()
	for {
		if _, taken := that.rooms[id]; !taken {
			break
		}
		id = pkg.GenerateRoomID()
	}

	room := entity.NewRoom(id, connID)
	that.rooms[id] = room
	that.indexSeat(connID, id)

	that.logger.Info("room created", "roomID", id)

	return room
}

// JoinRoom - seats the connection as O and starts the game. Joining a room
// you already occupy returns your existing seat.
func (that *RoomManager) JoinRoom(roomID, connID string) (*entity.Room, string, error) {
	room, ok := that.rooms[roomID]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	if mark, seated := room.SeatOf(connID); seated {
		return room, mark, nil
	}

	if room.IsFull() {
		return nil, "", fmt.Errorf("%w: %s", apperror.ErrRoomFull, roomID)
	}

	room.Seats[entity.PlayerO] = connID
	if room.Game.IsWaiting() && room.IsFull() {
		room.Game.Status = entity.StatusOngoing
	}
	room.Touch()
	that.indexSeat(connID, roomID)

	return room, entity.PlayerO, nil
}

// MakeTurn - resolves the connection's seat and applies the move.
func (that *RoomManager) MakeTurn(roomID, connID string, cell int) (*entity.Room, error) {
	room, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	mark, seated := room.SeatOf(connID)
	if !seated {
		return nil, apperror.ErrNotYourTurn
	}

	// moving alone is never allowed, whether the second player has not
	// arrived yet or has already left
	if !room.IsFull() {
		if room.Game.IsWaiting() {
			return nil, apperror.ErrGameIsNotStarted
		}
		return nil, apperror.ErrNotYourTurn
	}

	if err := tictactoe.MakeTurn(room.Game, mark, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	room.Touch()

	return room, nil
}

// ResetRoom - replaces the room's game with a fresh one, seats unchanged.
func (that *RoomManager) ResetRoom(roomID string) (*entity.Room, error) {
	room, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	room.Game = entity.NewGame()
	if room.IsFull() {
		room.Game.Status = entity.StatusOngoing
	}
	room.Touch()

	return room, nil
}

// RemoveConnection - vacates every seat the connection holds. Rooms left
// with no occupants are deleted. Returns every room whose occupancy
// changed so the gateway can notify whoever is left.
func (that *RoomManager) RemoveConnection(connID string) []*entity.Room {
	roomIDs, ok := that.byConn[connID]
	if !ok {
		return nil
	}
	delete(that.byConn, connID)

	var affected []*entity.Room
	for roomID := range roomIDs {
		room, live := that.rooms[roomID]
		if !live {
			continue
		}

		if !room.Vacate(connID) {
			continue
		}
		affected = append(affected, room)

		if room.IsEmpty() {
			delete(that.rooms, roomID)
			that.logger.Info("room deleted", "roomID", roomID)
		}
	}

	return affected
}

// SweepIdle - deletes rooms with no activity for longer than ttl and
// returns them. A ttl of zero disables the sweep.
func (that *RoomManager) SweepIdle(ttl time.Duration) []*entity.Room {
	if ttl <= 0 {
		return nil
	}

	deadline := time.Now().Add(-ttl)

	var expired []*entity.Room
	for roomID, room := range that.rooms {
		if room.LastActive.After(deadline) {
			continue
		}

		for _, occupant := range room.Seats {
			that.unindexSeat(occupant, roomID)
		}
		delete(that.rooms, roomID)
		expired = append(expired, room)

		that.logger.Info("idle room deleted", "roomID", roomID)
	}

	return expired
}

// Len - reports how many rooms are live.
func (that *RoomManager) Len() int {
	return len(that.rooms)
}

func (that *RoomManager) indexSeat(connID, roomID string) {
	if _, ok := that.byConn[connID]; !ok {
		that.byConn[connID] = make(map[string]struct{})
	}
	that.byConn[connID][roomID] = struct{}{}
}

func (that *RoomManager) unindexSeat(connID, roomID string) {
	if roomIDs, ok := that.byConn[connID]; ok {
		delete(roomIDs, roomID)
		if len(roomIDs) == 0 {
			delete(that.byConn, connID)
		}
	}
}
