// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(0, 0))
	assert.True(t, InBounds(BoardExtent-1, BoardExtent-1))
	assert.False(t, InBounds(-1, 0))
	assert.False(t, InBounds(0, BoardExtent))
	assert.False(t, InBounds(BoardExtent, 5))
}

func TestFacing(t *testing.T) {
	cases := []struct {
		name string
		a, b Piece
		want bool
	}{
		{"vertical up-down", Piece{X: 3, Y: 4, Orientation: OrientUp}, Piece{X: 3, Y: 3, Orientation: OrientDown}, true},
		{"vertical down-up", Piece{X: 3, Y: 3, Orientation: OrientDown}, Piece{X: 3, Y: 4, Orientation: OrientUp}, true},
		{"horizontal right-left", Piece{X: 5, Y: 8, Orientation: OrientRight}, Piece{X: 6, Y: 8, Orientation: OrientLeft}, true},
		{"horizontal left-right", Piece{X: 6, Y: 8, Orientation: OrientLeft}, Piece{X: 5, Y: 8, Orientation: OrientRight}, true},
		{"vertical pair on horizontal step", Piece{X: 5, Y: 8, Orientation: OrientUp}, Piece{X: 6, Y: 8, Orientation: OrientDown}, false},
		{"horizontal pair on vertical step", Piece{X: 3, Y: 4, Orientation: OrientRight}, Piece{X: 3, Y: 3, Orientation: OrientLeft}, false},
		{"same orientation", Piece{X: 3, Y: 4, Orientation: OrientUp}, Piece{X: 3, Y: 3, Orientation: OrientUp}, false},
		{"diagonal neighbors", Piece{X: 3, Y: 4, Orientation: OrientUp}, Piece{X: 4, Y: 3, Orientation: OrientDown}, false},
		{"distant", Piece{X: 0, Y: 0, Orientation: OrientUp}, Piece{X: 0, Y: 5, Orientation: OrientDown}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Facing(tc.a, tc.b))
		})
	}
}

func TestOccupied(t *testing.T) {
	board := []Piece{{X: 1, Y: 2}, {X: 3, Y: 4}}
	assert.True(t, Occupied(board, 1, 2))
	assert.True(t, Occupied(board, 3, 4))
	assert.False(t, Occupied(board, 2, 1))
	assert.False(t, Occupied(nil, 1, 2))
}

// row builds n same-player pieces stepped by (dx, dy) from (x, y).
func row(player, x, y, dx, dy, n int, orient int) []Piece {
	out := make([]Piece, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Piece{X: x + i*dx, Y: y + i*dy, Orientation: orient, Player: player})
	}
	return out
}

func TestFiveInRow(t *testing.T) {
	t.Run("horizontal", func(t *testing.T) {
		chain := FiveInRow(row(0, 10, 10, 1, 0, 5, OrientUp), 0)
		require.Len(t, chain, WinLength)
	})
	t.Run("vertical", func(t *testing.T) {
		require.NotNil(t, FiveInRow(row(1, 4, 20, 0, 1, 5, OrientUp), 1))
	})
	t.Run("diagonal down", func(t *testing.T) {
		require.NotNil(t, FiveInRow(row(0, 30, 30, 1, 1, 5, OrientUp), 0))
	})
	t.Run("diagonal up", func(t *testing.T) {
		require.NotNil(t, FiveInRow(row(0, 30, 60, 1, -1, 5, OrientUp), 0))
	})
	t.Run("six in a row still wins", func(t *testing.T) {
		require.NotNil(t, FiveInRow(row(0, 10, 10, 1, 0, 6, OrientUp), 0))
	})
	t.Run("four is not enough", func(t *testing.T) {
		assert.Nil(t, FiveInRow(row(0, 10, 10, 1, 0, 4, OrientUp), 0))
	})
	t.Run("gap breaks the chain", func(t *testing.T) {
		board := row(0, 10, 10, 1, 0, 5, OrientUp)
		board[2].X = 100 // punch a hole
		assert.Nil(t, FiveInRow(board, 0))
	})
	t.Run("opponent piece does not count", func(t *testing.T) {
		board := row(0, 10, 10, 1, 0, 5, OrientUp)
		board[2].Player = 1
		assert.Nil(t, FiveInRow(board, 0))
	})
}

func TestHasWin(t *testing.T) {
	t.Run("chain without facing pair is no win", func(t *testing.T) {
		assert.False(t, HasWin(row(0, 10, 10, 1, 0, 5, OrientUp), 0))
	})
	t.Run("facing pair inside the chain", func(t *testing.T) {
		board := row(0, 10, 10, 1, 0, 5, OrientUp)
		board[0].Orientation = OrientRight
		board[1].Orientation = OrientLeft
		assert.True(t, HasWin(board, 0))
	})
	t.Run("facing pair with a piece outside the chain", func(t *testing.T) {
		board := row(0, 10, 10, 1, 0, 5, OrientUp)
		board[2].Orientation = OrientDown
		board = append(board, Piece{X: 12, Y: 11, Orientation: OrientUp, Player: 0})
		assert.True(t, HasWin(board, 0))
	})
	t.Run("opponent facing piece does not help", func(t *testing.T) {
		board := row(0, 10, 10, 1, 0, 5, OrientUp)
		board[2].Orientation = OrientDown
		board = append(board, Piece{X: 12, Y: 11, Orientation: OrientUp, Player: 1})
		assert.False(t, HasWin(board, 0))
	})
}

func TestIsSpecialMove(t *testing.T) {
	opp := Piece{X: 10, Y: 10, Orientation: OrientRight, Player: 1}
	assert.True(t, IsSpecialMove(Piece{X: 11, Y: 10, Orientation: OrientLeft, Player: 0}, &opp))
	assert.False(t, IsSpecialMove(Piece{X: 12, Y: 10, Orientation: OrientLeft, Player: 0}, &opp))
	assert.False(t, IsSpecialMove(Piece{X: 11, Y: 10, Orientation: OrientLeft, Player: 0}, nil))
}

func TestNextPairStreak(t *testing.T) {
	assert.Equal(t, 1, NextPairStreak(0, true))
	assert.Equal(t, 3, NextPairStreak(2, true))
	assert.Equal(t, 0, NextPairStreak(2, false))
}

func TestLastPieceOf(t *testing.T) {
	board := []Piece{
		{X: 1, Y: 1, Player: 0},
		{X: 2, Y: 2, Player: 1},
		{X: 3, Y: 3, Player: 0},
	}
	last := LastPieceOf(board, 0)
	require.NotNil(t, last)
	assert.Equal(t, 3, last.X)
	assert.Nil(t, LastPieceOf(board[:0], 0))
	assert.Nil(t, LastPieceOf(board[:1], 1))
}
