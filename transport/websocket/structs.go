package websocket

import (
	"encoding/json"

	"github.com/rburdet/portfolio/internal/entity"
)

// Client -> server actions.
const (
	actionCreateBoard = "createBoard"
	actionJoinBoard   = "joinBoard"
	actionMakeMove    = "makeMove"
	actionResetGame   = "resetGame"
)

// Server -> client actions.
const (
	actionBoardCreated = "boardCreated"
	actionRoleAssigned = "roleAssigned"
	actionGameState    = "gameState"
	actionPlayerJoined = "playerJoined"
	actionPlayerLeft   = "playerLeft"
	actionError        = "error"
)

const (
	winnerNone = "none"
	winnerDraw = "draw"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinBoardPayload struct {
	RoomID string `json:"roomId"`
}

type MakeMovePayload struct {
	RoomID    string `json:"roomId"`
	CellIndex int    `json:"cellIndex"`
}

type ResetGamePayload struct {
	RoomID string `json:"roomId"`
}

type BoardCreatedPayload struct {
	RoomID string `json:"roomId"`
	Role   string `json:"role"`
}

// GameStatePayload is the wire form of a game: empty cells travel as null
// and the winner field collapses the internal status/winner pair into
// none/X/O/draw.
type GameStatePayload struct {
	Board   [entity.BoardSize]*string `json:"board"`
	XIsNext bool                      `json:"xIsNext"`
	Winner  string                    `json:"winner"`
}

func newGameStatePayload(game *entity.Game) GameStatePayload {
	payload := GameStatePayload{
		XIsNext: game.Turn == entity.PlayerX,
		Winner:  winnerNone,
	}

	for i := range game.Board {
		if game.Board[i] != entity.EmptyCell {
			payload.Board[i] = &game.Board[i]
		}
	}

	switch game.Winner {
	case entity.PlayerX, entity.PlayerO:
		payload.Winner = game.Winner
	case entity.PlayerTie:
		payload.Winner = winnerDraw
	}

	return payload
}
