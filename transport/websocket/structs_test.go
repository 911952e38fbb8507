package websocket

import (
	"encoding/json"
	"testing"

	"github.com/rburdet/portfolio/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameStatePayload(t *testing.T) {
	t.Run("Fresh game serializes empty cells as null", func(t *testing.T) {
		// Given: a fresh game
		game := entity.NewGame()

		// When: mapping it to the wire format
		payload := newGameStatePayload(game)
		raw, err := json.Marshal(payload)
		require.NoError(t, err)

		// Then: the board is nine nulls, X is next, nobody won
		assert.JSONEq(t, `{"board":[null,null,null,null,null,null,null,null,null],"xIsNext":true,"winner":"none"}`, string(raw))
	})

	t.Run("Marks travel as strings", func(t *testing.T) {
		// Given: a game with one move made
		game := entity.NewGame()
		game.Board[4] = entity.PlayerX
		game.Turn = entity.PlayerO

		// When: mapping it
		payload := newGameStatePayload(game)

		// Then: the filled cell carries the mark and O is next
		require.NotNil(t, payload.Board[4])
		assert.Equal(t, entity.PlayerX, *payload.Board[4])
		assert.Nil(t, payload.Board[0])
		assert.False(t, payload.XIsNext)
		assert.Equal(t, winnerNone, payload.Winner)
	})

	t.Run("Winner mark is passed through", func(t *testing.T) {
		game := entity.NewGame()
		game.Winner = entity.PlayerO
		game.Status = entity.StatusFinished

		payload := newGameStatePayload(game)

		assert.Equal(t, entity.PlayerO, payload.Winner)
	})

	t.Run("Tie maps to draw", func(t *testing.T) {
		game := entity.NewGame()
		game.Winner = entity.PlayerTie
		game.Status = entity.StatusFinished

		payload := newGameStatePayload(game)

		assert.Equal(t, winnerDraw, payload.Winner)
	})
}
