package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rburdet/portfolio/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) string {
	t.Helper()

	return newTestGatewayWithSweep(t, 0, sweepPeriod)
}

// newTestGatewayWithSweep shortens the idle cycle so expiry is observable
// within a test's read deadline.
func newTestGatewayWithSweep(t *testing.T, idleTTL, sweepEvery time.Duration) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewRoomManager(logger)
	server := New(logger, manager, idleTTL)
	server.hub.sweepEvery = sweepEvery

	ctx, cancel := context.WithCancel(context.Background())
	go server.hub.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(server.serveWS))
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})

	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	message := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		message.Payload = raw
	}

	require.NoError(t, conn.WriteJSON(message))
}

func readEvent(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var message Message
	require.NoError(t, json.Unmarshal(raw, &message))

	return message
}

func readGameState(t *testing.T, conn *websocket.Conn) GameStatePayload {
	t.Helper()

	message := readEvent(t, conn)
	require.Equal(t, actionGameState, message.Action)

	var state GameStatePayload
	require.NoError(t, json.Unmarshal(message.Payload, &state))

	return state
}

func readError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	message := readEvent(t, conn)
	require.Equal(t, actionError, message.Action)

	var reason string
	require.NoError(t, json.Unmarshal(message.Payload, &reason))

	return reason
}

func createBoard(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	sendAction(t, conn, actionCreateBoard, nil)

	message := readEvent(t, conn)
	require.Equal(t, actionBoardCreated, message.Action)

	var created BoardCreatedPayload
	require.NoError(t, json.Unmarshal(message.Payload, &created))
	require.NotEmpty(t, created.RoomID)
	require.Equal(t, "X", created.Role)

	return created.RoomID
}

// joinBoard drains the joiner's private replies and the group notification.
func joinBoard(t *testing.T, conn *websocket.Conn, roomID string) {
	t.Helper()

	sendAction(t, conn, actionJoinBoard, JoinBoardPayload{RoomID: roomID})

	state := readGameState(t, conn)
	require.Equal(t, winnerNone, state.Winner)

	message := readEvent(t, conn)
	require.Equal(t, actionRoleAssigned, message.Action)

	var role string
	require.NoError(t, json.Unmarshal(message.Payload, &role))
	require.Equal(t, "O", role)

	message = readEvent(t, conn)
	require.Equal(t, actionPlayerJoined, message.Action)
}

func TestGateway_CreateBoard(t *testing.T) {
	url := newTestGateway(t)
	conn := dial(t, url)

	// When: a client creates a board
	roomID := createBoard(t, conn)

	// Then: it got a private boardCreated reply with the X role
	assert.NotEmpty(t, roomID)
}

func TestGateway_JoinBoard(t *testing.T) {
	url := newTestGateway(t)

	// Given: a created board
	creator := dial(t, url)
	roomID := createBoard(t, creator)

	// When: a second client joins
	joiner := dial(t, url)
	joinBoard(t, joiner, roomID)

	// Then: the creator hears that the room is full
	message := readEvent(t, creator)
	assert.Equal(t, actionPlayerJoined, message.Action)

	var count int
	require.NoError(t, json.Unmarshal(message.Payload, &count))
	assert.Equal(t, 2, count)
}

func TestGateway_JoinErrors(t *testing.T) {
	url := newTestGateway(t)

	t.Run("Unknown board id", func(t *testing.T) {
		conn := dial(t, url)

		sendAction(t, conn, actionJoinBoard, JoinBoardPayload{RoomID: "ghost"})

		assert.Equal(t, "Board not found", readError(t, conn))
	})

	t.Run("Full board", func(t *testing.T) {
		creator := dial(t, url)
		roomID := createBoard(t, creator)
		joiner := dial(t, url)
		joinBoard(t, joiner, roomID)

		third := dial(t, url)
		sendAction(t, third, actionJoinBoard, JoinBoardPayload{RoomID: roomID})

		assert.Equal(t, "Board is full", readError(t, third))
	})
}

func TestGateway_PlayThroughToWin(t *testing.T) {
	url := newTestGateway(t)

	// Given: a full board
	playerX := dial(t, url)
	roomID := createBoard(t, playerX)
	playerO := dial(t, url)
	joinBoard(t, playerO, roomID)
	readEvent(t, playerX) // playerJoined

	// When: X opens on cell 0
	sendAction(t, playerX, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: 0})

	// Then: both players get the new state
	for _, conn := range []*websocket.Conn{playerX, playerO} {
		state := readGameState(t, conn)
		require.NotNil(t, state.Board[0])
		assert.Equal(t, "X", *state.Board[0])
		assert.False(t, state.XIsNext)
	}

	// When: O replays the occupied cell
	sendAction(t, playerO, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: 0})

	// Then: only O hears about it and nothing is broadcast
	assert.Equal(t, "Invalid move", readError(t, playerO))

	// When: X tries to move out of turn
	sendAction(t, playerX, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: 1})

	// Then: the move is rejected privately
	assert.Equal(t, "It's not your turn", readError(t, playerX))

	// When: the game plays out to X's top row
	for _, move := range []struct {
		conn *websocket.Conn
		cell int
	}{
		{playerO, 3},
		{playerX, 1},
		{playerO, 4},
		{playerX, 2},
	} {
		sendAction(t, move.conn, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: move.cell})
		readGameState(t, playerX)
		readGameState(t, playerO)
	}

	// Then: one more move is rejected because the game is over
	sendAction(t, playerO, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: 5})
	assert.Equal(t, "Invalid move", readError(t, playerO))
}

func TestGateway_ResetGame(t *testing.T) {
	url := newTestGateway(t)

	// Given: a finished game
	playerX := dial(t, url)
	roomID := createBoard(t, playerX)
	playerO := dial(t, url)
	joinBoard(t, playerO, roomID)
	readEvent(t, playerX) // playerJoined

	for _, move := range []struct {
		conn *websocket.Conn
		cell int
	}{
		{playerX, 0}, {playerO, 3}, {playerX, 1}, {playerO, 4}, {playerX, 2},
	} {
		sendAction(t, move.conn, actionMakeMove, MakeMovePayload{RoomID: roomID, CellIndex: move.cell})
		readGameState(t, playerX)
		readGameState(t, playerO)
	}

	// When: either player resets
	sendAction(t, playerO, actionResetGame, ResetGamePayload{RoomID: roomID})

	// Then: everyone gets a fresh board and X moves first again
	for _, conn := range []*websocket.Conn{playerX, playerO} {
		state := readGameState(t, conn)
		assert.Equal(t, winnerNone, state.Winner)
		assert.True(t, state.XIsNext)
		for _, cell := range state.Board {
			assert.Nil(t, cell)
		}
	}

	// And: resetting an unknown board is a private error
	sendAction(t, playerO, actionResetGame, ResetGamePayload{RoomID: "ghost"})
	assert.Equal(t, "Board not found", readError(t, playerO))
}

func TestGateway_Disconnect(t *testing.T) {
	url := newTestGateway(t)

	// Given: a full board
	playerX := dial(t, url)
	roomID := createBoard(t, playerX)
	playerO := dial(t, url)
	joinBoard(t, playerO, roomID)
	readEvent(t, playerX) // playerJoined

	// When: the second player disconnects mid-game
	playerO.Close()

	// Then: the survivor is told it is alone and the room lives on
	message := readEvent(t, playerX)
	require.Equal(t, actionPlayerLeft, message.Action)

	var count int
	require.NoError(t, json.Unmarshal(message.Payload, &count))
	assert.Equal(t, 1, count)

	// And: the open seat can be taken again
	replacement := dial(t, url)
	joinBoard(t, replacement, roomID)
	readEvent(t, playerX) // playerJoined

	// When: everyone leaves
	playerX.Close()
	replacement.Close()
	time.Sleep(200 * time.Millisecond)

	// Then: the room is gone
	late := dial(t, url)
	sendAction(t, late, actionJoinBoard, JoinBoardPayload{RoomID: roomID})
	assert.Equal(t, "Board not found", readError(t, late))
}

func TestGateway_IdleBoardExpires(t *testing.T) {
	url := newTestGatewayWithSweep(t, 100*time.Millisecond, 50*time.Millisecond)

	// Given: a board nobody touches past its idle ttl
	conn := dial(t, url)
	roomID := createBoard(t, conn)

	// Then: the occupant is told the board expired
	assert.Equal(t, "Board expired", readError(t, conn))

	// And: the board is gone
	sendAction(t, conn, actionJoinBoard, JoinBoardPayload{RoomID: roomID})
	assert.Equal(t, "Board not found", readError(t, conn))
}

func TestGateway_MalformedInput(t *testing.T) {
	url := newTestGateway(t)

	t.Run("Garbage envelope", func(t *testing.T) {
		conn := dial(t, url)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		assert.Equal(t, "Malformed message", readError(t, conn))
	})

	t.Run("Unknown action", func(t *testing.T) {
		conn := dial(t, url)

		sendAction(t, conn, "teleport", nil)

		assert.Equal(t, "Unknown action", readError(t, conn))
	})

	t.Run("Missing room id", func(t *testing.T) {
		conn := dial(t, url)

		sendAction(t, conn, actionMakeMove, MakeMovePayload{CellIndex: 3})

		assert.Equal(t, "Malformed payload", readError(t, conn))
	})

	t.Run("Connection survives bad input", func(t *testing.T) {
		conn := dial(t, url)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
		readError(t, conn)

		// the same connection can still create a board
		roomID := createBoard(t, conn)
		assert.NotEmpty(t, roomID)
	})
}
