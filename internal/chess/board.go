package chess

import (
	"fmt"
	"sort"
	"strings"
)

// Size is the number of rows and columns on the board.
const Size = 8

// Color identifies a side. The zero value is NoColor (empty square).
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Code returns the single-character wire code ("w"/"b").
func (c Color) Code() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	default:
		return "-"
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opponent returns the other side. NoColor has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// ParseColor accepts "w"/"b" as well as "white"/"black".
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	default:
		return NoColor, fmt.Errorf("unknown color %q", s)
	}
}

// Kind is the piece type. The zero value is NoKind (empty square).
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindLetters = [...]byte{NoKind: '-', Pawn: 'P', Rook: 'R', Knight: 'N', Bishop: 'B', Queen: 'Q', King: 'K'}

// Letter returns the uppercase kind letter used in piece codes.
func (k Kind) Letter() byte {
	if int(k) < len(kindLetters) {
		return kindLetters[k]
	}
	return '?'
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

func kindFromLetter(b byte) (Kind, bool) {
	for k := Pawn; k <= King; k++ {
		if kindLetters[k] == b {
			return k, true
		}
	}
	return NoKind, false
}

// Piece is either Empty (the zero value) or an occupied square holding a
// colored piece kind.
type Piece struct {
	Color Color
	Kind  Kind
}

// Empty is the unoccupied-square sentinel.
var Empty = Piece{}

// EmptyCode is the wire code of an empty square.
const EmptyCode = "--"

// NewPiece builds an occupied piece.
func NewPiece(c Color, k Kind) Piece { return Piece{Color: c, Kind: k} }

// IsEmpty reports whether the piece is the Empty sentinel.
func (p Piece) IsEmpty() bool { return p.Kind == NoKind || p.Color == NoColor }

// Is reports whether p is occupied by the given color.
func (p Piece) Is(c Color) bool { return !p.IsEmpty() && p.Color == c }

// Code returns the two-character code ("wP", "bK") or "--".
func (p Piece) Code() string {
	if p.IsEmpty() {
		return EmptyCode
	}
	return p.Color.Code() + string(p.Kind.Letter())
}

func (p Piece) String() string { return p.Code() }

// ParsePiece is the exact inverse of Code.
func ParsePiece(code string) (Piece, error) {
	if code == EmptyCode {
		return Empty, nil
	}
	if len(code) != 2 {
		return Empty, fmt.Errorf("invalid piece code %q", code)
	}
	var c Color
	switch code[0] {
	case 'w':
		c = White
	case 'b':
		c = Black
	default:
		return Empty, fmt.Errorf("invalid piece color in %q", code)
	}
	k, ok := kindFromLetter(code[1])
	if !ok {
		return Empty, fmt.Errorf("invalid piece kind in %q", code)
	}
	return NewPiece(c, k), nil
}

// Square is a (row, column) pair. Row 0 is black's back rank.
type Square struct {
	Row int
	Col int
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether both coordinates are in [0,7].
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// String renders the square in algebraic form: row 0 is rank 8, col 0 is file a.
func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string([]byte{byte('a' + s.Col), byte('8' - s.Row)})
}

// ParseSquare parses an algebraic square such as "e2".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, nil
}

// SquareSet is a freshly allocated set of squares. Iteration order is unspecified.
type SquareSet map[Square]struct{}

func (s SquareSet) add(sq Square) { s[sq] = struct{}{} }

// Has reports membership.
func (s SquareSet) Has(sq Square) bool {
	_, ok := s[sq]
	return ok
}

// Len returns the number of squares.
func (s SquareSet) Len() int { return len(s) }

// Sorted returns the squares in row-major order. Intended for display only.
func (s SquareSet) Sorted() []Square {
	out := make([]Square, 0, len(s))
	for sq := range s {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Board is an 8x8 row-major grid. It is a value type: assigning it copies
// every cell, which is what the checkmate simulation relies on.
type Board [Size][Size]Piece

// At returns the occupant of sq. sq must be valid.
func (b *Board) At(sq Square) Piece { return b[sq.Row][sq.Col] }

// Set stores p at sq. sq must be valid.
func (b *Board) Set(sq Square, p Piece) { b[sq.Row][sq.Col] = p }

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialBoard returns the standard starting layout with black on rows 0-1.
func InitialBoard() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b[0][col] = NewPiece(Black, backRank[col])
		b[1][col] = NewPiece(Black, Pawn)
		b[6][col] = NewPiece(White, Pawn)
		b[7][col] = NewPiece(White, backRank[col])
	}
	return b
}

// String renders the board as eight lines of space-separated piece codes.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b[row][col].Code())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
