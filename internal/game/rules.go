// internal/game/rules.go
package game

// Board and rule constants for Landolt Gomoku. The board is a fixed
// 128x128 grid; pieces are rings whose opening points in one of four
// directions.
const (
	BoardExtent = 128

	// WinLength is the number of consecutive same-player pieces required
	// along a single axis for a win.
	WinLength = 5

	// MaxPairStreak caps consecutive "special" (adjacent-and-facing)
	// placements per player.
	MaxPairStreak = 3

	// DefaultTurnLimitSeconds applies when a create request omits or
	// zeroes the turn limit.
	DefaultTurnLimitSeconds = 60

	// UntimedTurnLimit disables the countdown entirely.
	UntimedTurnLimit = -1
)

// Ring orientations. Vertical openings face each other as Up/Down,
// horizontal openings as Right/Left.
const (
	OrientUp = iota
	OrientRight
	OrientDown
	OrientLeft
	orientCount
)

// Piece is one placed ring: a board coordinate, the direction its opening
// faces, and the participant index that placed it. Pieces are immutable
// once appended to a room's board.
type Piece struct {
	X           int `json:"x"`
	Y           int `json:"y"`
	Orientation int `json:"orientation"`
	Player      int `json:"player"`
}

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardExtent && y >= 0 && y < BoardExtent
}

// ValidOrientation reports whether o is one of the four ring orientations.
func ValidOrientation(o int) bool {
	return o >= 0 && o < orientCount
}

// Occupied reports whether any placed piece already sits at (x, y).
func Occupied(board []Piece, x, y int) bool {
	for _, p := range board {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// Facing reports whether two pieces are orthogonally adjacent with their
// ring openings pointed at each other: Up/Down across a vertical step,
// Right/Left across a horizontal step.
func Facing(a, b Piece) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	switch {
	case dx == 0 && (dy == 1 || dy == -1):
		return (a.Orientation == OrientUp && b.Orientation == OrientDown) ||
			(a.Orientation == OrientDown && b.Orientation == OrientUp)
	case dy == 0 && (dx == 1 || dx == -1):
		return (a.Orientation == OrientRight && b.Orientation == OrientLeft) ||
			(a.Orientation == OrientLeft && b.Orientation == OrientRight)
	}
	return false
}

// IsSpecialMove reports whether a placement lands adjacent to and facing
// the opponent's most recent piece. opponentLast may be nil (no opponent
// piece yet), in which case no move is special.
func IsSpecialMove(move Piece, opponentLast *Piece) bool {
	if opponentLast == nil {
		return false
	}
	return Facing(move, *opponentLast)
}

// winDirections are the four scan axes: horizontal, vertical, and the two
// diagonals.
var winDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// FiveInRow returns a chain of WinLength same-player pieces consecutive
// along one of the four axes, or nil if none exists.
func FiveInRow(board []Piece, player int) []Piece {
	cells := make(map[[2]int]Piece, len(board))
	for _, p := range board {
		if p.Player == player {
			cells[[2]int{p.X, p.Y}] = p
		}
	}

	for _, p := range board {
		if p.Player != player {
			continue
		}
		for _, d := range winDirections {
			// Only start a scan at the chain's lowest cell so each run
			// is walked once.
			if _, ok := cells[[2]int{p.X - d[0], p.Y - d[1]}]; ok {
				continue
			}
			chain := []Piece{p}
			x, y := p.X+d[0], p.Y+d[1]
			for {
				next, ok := cells[[2]int{x, y}]
				if !ok {
					break
				}
				chain = append(chain, next)
				x, y = x+d[0], y+d[1]
			}
			if len(chain) >= WinLength {
				return chain[:WinLength]
			}
		}
	}
	return nil
}

// HasWin reports whether the player holds a complete win: a five-in-row
// chain plus at least one facing-pair relationship between a chain piece
// and any of the player's placed pieces.
func HasWin(board []Piece, player int) bool {
	chain := FiveInRow(board, player)
	if chain == nil {
		return false
	}
	for _, c := range chain {
		for _, p := range board {
			if p.Player == player && Facing(c, p) {
				return true
			}
		}
	}
	return false
}

// LastPieceOf returns the most recent placement by the given player, or
// nil if they have not placed yet.
func LastPieceOf(board []Piece, player int) *Piece {
	for i := len(board) - 1; i >= 0; i-- {
		if board[i].Player == player {
			return &board[i]
		}
	}
	return nil
}

// NextPairStreak computes a player's streak counter after a move: a
// special placement extends the run, anything else resets it.
func NextPairStreak(current int, special bool) int {
	if special {
		return current + 1
	}
	return 0
}
