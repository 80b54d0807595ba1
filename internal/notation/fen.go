// Package notation converts engine positions to and from FEN using the
// corentings/chess board codec.
package notation

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-chess/internal/chess"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// castling and en passant are not modelled, so those fields are always "-".
const fenTail = " - - 0 1"

var toLib = map[chess.Piece]nchess.Piece{
	chess.NewPiece(chess.White, chess.King):   nchess.WhiteKing,
	chess.NewPiece(chess.White, chess.Queen):  nchess.WhiteQueen,
	chess.NewPiece(chess.White, chess.Rook):   nchess.WhiteRook,
	chess.NewPiece(chess.White, chess.Bishop): nchess.WhiteBishop,
	chess.NewPiece(chess.White, chess.Knight): nchess.WhiteKnight,
	chess.NewPiece(chess.White, chess.Pawn):   nchess.WhitePawn,
	chess.NewPiece(chess.Black, chess.King):   nchess.BlackKing,
	chess.NewPiece(chess.Black, chess.Queen):  nchess.BlackQueen,
	chess.NewPiece(chess.Black, chess.Rook):   nchess.BlackRook,
	chess.NewPiece(chess.Black, chess.Bishop): nchess.BlackBishop,
	chess.NewPiece(chess.Black, chess.Knight): nchess.BlackKnight,
	chess.NewPiece(chess.Black, chess.Pawn):   nchess.BlackPawn,
}

var fromLib = func() map[nchess.Piece]chess.Piece {
	m := make(map[nchess.Piece]chess.Piece, len(toLib))
	for ours, theirs := range toLib {
		m[theirs] = ours
	}
	return m
}()

// LibSquare maps an engine square (row 0 = rank 8) to the library square.
func LibSquare(sq chess.Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.Col), nchess.Rank(chess.Size-1-sq.Row))
}

// FromLibSquare is the inverse of LibSquare.
func FromLibSquare(sq nchess.Square) chess.Square {
	return chess.Sq(chess.Size-1-int(sq.Rank()), int(sq.File()))
}

// LibBoard builds a library board holding the same pieces.
func LibBoard(b *chess.Board) *nchess.Board {
	m := make(map[nchess.Square]nchess.Piece)
	for row := 0; row < chess.Size; row++ {
		for col := 0; col < chess.Size; col++ {
			p := b[row][col]
			if p.IsEmpty() {
				continue
			}
			m[LibSquare(chess.Sq(row, col))] = toLib[p]
		}
	}
	return nchess.NewBoard(m)
}

// ToFEN renders a game state as a full FEN string.
func ToFEN(s *chess.GameState) string {
	turn := "w"
	if s.Turn == chess.Black {
		turn = "b"
	}
	return LibBoard(&s.Board).String() + " " + turn + fenTail
}

// FromFEN parses a FEN string; a bare placement field defaults to white to move.
func FromFEN(fen string) (*chess.GameState, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	if len(strings.Fields(fen)) == 1 {
		fen += " w" + fenTail
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := nchess.NewGame(opt).Position()

	state := &chess.GameState{Turn: chess.White}
	if pos.Turn() == nchess.Black {
		state.Turn = chess.Black
	}
	for sq, p := range pos.Board().SquareMap() {
		ours, ok := fromLib[p]
		if !ok {
			continue
		}
		state.Board.Set(FromLibSquare(sq), ours)
	}
	return state, nil
}
