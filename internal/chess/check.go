package chess

// FindKing returns the first square holding c's king, scanning row-major.
func FindKing(b *Board, c Color) (Square, bool) {
	king := NewPiece(c, King)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col] == king {
				return Sq(row, col), true
			}
		}
	}
	return Square{}, false
}

// InCheck reports whether c's king is among the pseudo-legal destinations of
// any opposing piece. A board without c's king counts as in check.
func InCheck(b *Board, c Color) bool {
	kingSq, ok := FindKing(b, c)
	if !ok {
		return true
	}
	return attacked(b, kingSq, c.Opponent())
}

// attacked reports whether any piece of color by can reach sq.
func attacked(b *Board, sq Square, by Color) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			from := Sq(row, col)
			if !b.At(from).Is(by) {
				continue
			}
			if LegalDestinations(b, from).Has(sq) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports whether c is in check and no pseudo-legal move of any c
// piece, simulated on a board copy, leaves c out of check.
//
// Kings are not kept apart and squares attacked only by the enemy king are not
// treated specially, so a king may "escape" next to the opposing king.
func IsCheckmate(b *Board, c Color) bool {
	if !InCheck(b, c) {
		return false
	}
	return !hasEscape(b, c)
}

func hasEscape(b *Board, c Color) bool {
	found := false
	eachSafeMove(b, c, func(Move) bool {
		found = true
		return false
	})
	return found
}

// LegalMoves returns every pseudo-legal move of c that does not leave c in
// check, in row-major order of the source square.
func LegalMoves(b *Board, c Color) []Move {
	var moves []Move
	eachSafeMove(b, c, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

// SafeDestinations filters LegalDestinations(b, from) down to the moves that
// do not leave the mover in check.
func SafeDestinations(b *Board, from Square) SquareSet {
	out := make(SquareSet)
	p := b.At(from)
	if p.IsEmpty() {
		return out
	}
	for to := range LegalDestinations(b, from) {
		if !leavesInCheck(b, Move{From: from, To: to}, p.Color) {
			out.add(to)
		}
	}
	return out
}

// eachSafeMove calls fn for every simulated move of c that escapes check,
// stopping when fn returns false.
func eachSafeMove(b *Board, c Color, fn func(Move) bool) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			from := Sq(row, col)
			if !b.At(from).Is(c) {
				continue
			}
			for _, to := range LegalDestinations(b, from).Sorted() {
				m := Move{From: from, To: to}
				if leavesInCheck(b, m, c) {
					continue
				}
				if !fn(m) {
					return
				}
			}
		}
	}
}

// leavesInCheck applies m to a full copy of b and tests c for check.
func leavesInCheck(b *Board, m Move, c Color) bool {
	hypo := *b
	hypo.Set(m.To, hypo.At(m.From))
	hypo.Set(m.From, Empty)
	return InCheck(&hypo, c)
}
