package websocket

import (
	"encoding/json"
	"errors"

	"github.com/rburdet/portfolio/internal/apperror"
	"github.com/rburdet/portfolio/internal/entity"
)

// Human-readable reasons for the private error event.
const (
	reasonBoardNotFound = "Board not found"
	reasonBoardFull     = "Board is full"
	reasonNotYourTurn   = "It's not your turn"
	reasonInvalidMove   = "Invalid move"
	reasonBadPayload    = "Malformed payload"
)

func (that *Hub) handleCreateBoard(client *Client, _ json.RawMessage) {
	room := that.manager.CreateRoom(client.id)

	that.subscribe(room.ID, client)
	that.send(client, actionBoardCreated, BoardCreatedPayload{
		RoomID: room.ID,
		Role:   entity.PlayerX,
	})
}

func (that *Hub) handleJoinBoard(client *Client, payload json.RawMessage) {
	var req JoinBoardPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(client, reasonBadPayload)
		return
	}

	room, mark, err := that.manager.JoinRoom(req.RoomID, client.id)
	if err != nil {
		that.sendError(client, joinFailureReason(err))
		return
	}

	// the joiner gets the current state and their role privately, then the
	// whole room learns it is no longer waiting
	that.sendGameState(client, room.Game)
	that.send(client, actionRoleAssigned, mark)
	that.subscribe(room.ID, client)
	that.broadcast(room.ID, actionPlayerJoined, room.Occupants())
}

func (that *Hub) handleMakeMove(client *Client, payload json.RawMessage) {
	var req MakeMovePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(client, reasonBadPayload)
		return
	}

	room, err := that.manager.MakeTurn(req.RoomID, client.id, req.CellIndex)
	if err != nil {
		that.sendError(client, moveFailureReason(err))
		return
	}

	that.broadcastGameState(room)
}

func (that *Hub) handleResetGame(client *Client, payload json.RawMessage) {
	var req ResetGamePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.RoomID == "" {
		that.sendError(client, reasonBadPayload)
		return
	}

	room, err := that.manager.ResetRoom(req.RoomID)
	if err != nil {
		that.sendError(client, reasonBoardNotFound)
		return
	}

	that.broadcastGameState(room)
}

func joinFailureReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return reasonBoardNotFound
	case errors.Is(err, apperror.ErrRoomFull):
		return reasonBoardFull
	default:
		return reasonInvalidMove
	}
}

func moveFailureReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return reasonBoardNotFound
	case errors.Is(err, apperror.ErrNotYourTurn), errors.Is(err, apperror.ErrGameIsNotStarted):
		return reasonNotYourTurn
	default:
		// occupied cell, out-of-range cell, finished game
		return reasonInvalidMove
	}
}
