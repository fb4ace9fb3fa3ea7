package game

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Color is the bot's assigned side in one game. Unknown until the first
// gameFull event resolves it; immutable afterwards.
type Color int

const (
	ColorUnknown Color = iota
	ColorWhite
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "unknown"
	}
}

// Board is a position reconstructed by replaying the server-supplied UCI
// move list from the start position. Nothing is mutated incrementally;
// the server's move history is the only source of truth.
type Board struct {
	game *nchess.Game
}

// Replay rebuilds the position from a space-separated UCI move list.
// Empty or whitespace tokens in the history are skipped.
func Replay(moves string) (*Board, error) {
	g := nchess.NewGame()
	for _, mv := range strings.Fields(moves) {
		if mv == "" {
			continue
		}
		if err := g.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %q: %w", mv, err)
		}
	}
	return &Board{game: g}, nil
}

// FEN is the full position fingerprint handed to the engine.
func (b *Board) FEN() string { return b.game.FEN() }

func (b *Board) SideToMove() Color {
	if b.game.Position().Turn() == nchess.White {
		return ColorWhite
	}
	return ColorBlack
}

// GameOver reports a decided outcome (mate, stalemate, draw rule).
func (b *Board) GameOver() bool {
	return b.game.Outcome() != nchess.NoOutcome
}

// Initial reports whether the position is still the starting one.
func (b *Board) Initial() bool {
	return len(b.game.Moves()) == 0
}

// PieceNameAtOrigin names the piece sitting on the origin square of a UCI
// move, before the move is applied. Returns "Unknown" when the move does
// not parse against the position or the square is empty.
func (b *Board) PieceNameAtOrigin(uciMove string) string {
	mv, err := nchess.UCINotation{}.Decode(b.game.Position(), strings.TrimSpace(uciMove))
	if err != nil {
		return "Unknown"
	}
	piece := b.game.Position().Board().Piece(mv.S1())
	if piece == nchess.NoPiece {
		return "Unknown"
	}
	switch piece.Type() {
	case nchess.Pawn:
		return "Pawn"
	case nchess.Rook:
		return "Rook"
	case nchess.Knight:
		return "Knight"
	case nchess.Bishop:
		return "Bishop"
	case nchess.Queen:
		return "Queen"
	case nchess.King:
		return "King"
	default:
		return "Unknown"
	}
}
