package chess

type offset struct{ dr, dc int }

var (
	knightOffsets = [...]offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [...]offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	straightRays  = [...]offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonalRays  = [...]offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// LegalDestinations returns the pseudo-legal destinations of the piece on
// from: movement pattern and occupancy only, without regard to whether the
// move leaves the mover's own king in check. The returned set is newly
// allocated and never aliases b.
func LegalDestinations(b *Board, from Square) SquareSet {
	out := make(SquareSet)
	p := b.At(from)
	if p.IsEmpty() {
		return out
	}

	switch p.Kind {
	case Pawn:
		pawnMoves(b, from, p.Color, out)
	case Knight:
		stepMoves(b, from, p.Color, knightOffsets[:], out)
	case King:
		stepMoves(b, from, p.Color, kingOffsets[:], out)
	case Rook:
		slideMoves(b, from, p.Color, straightRays[:], out)
	case Bishop:
		slideMoves(b, from, p.Color, diagonalRays[:], out)
	case Queen:
		slideMoves(b, from, p.Color, straightRays[:], out)
		slideMoves(b, from, p.Color, diagonalRays[:], out)
	}
	return out
}

// pawnDirection: white advances toward row 0, black toward row 7.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func pawnMoves(b *Board, from Square, c Color, out SquareSet) {
	dir := pawnDirection(c)

	one := Sq(from.Row+dir, from.Col)
	if one.Valid() && b.At(one).IsEmpty() {
		out.add(one)
		if from.Row == pawnStartRow(c) {
			two := Sq(from.Row+2*dir, from.Col)
			if two.Valid() && b.At(two).IsEmpty() {
				out.add(two)
			}
		}
	}

	// captures only; no en passant
	for _, dc := range [...]int{-1, 1} {
		diag := Sq(from.Row+dir, from.Col+dc)
		if !diag.Valid() {
			continue
		}
		if target := b.At(diag); !target.IsEmpty() && target.Color != c {
			out.add(diag)
		}
	}
}

func stepMoves(b *Board, from Square, c Color, offsets []offset, out SquareSet) {
	for _, o := range offsets {
		to := Sq(from.Row+o.dr, from.Col+o.dc)
		if !to.Valid() {
			continue
		}
		if target := b.At(to); target.IsEmpty() || target.Color != c {
			out.add(to)
		}
	}
}

func slideMoves(b *Board, from Square, c Color, rays []offset, out SquareSet) {
	for _, r := range rays {
		for step := 1; step < Size; step++ {
			to := Sq(from.Row+r.dr*step, from.Col+r.dc*step)
			if !to.Valid() {
				break
			}
			target := b.At(to)
			if target.IsEmpty() {
				out.add(to)
				continue
			}
			if target.Color != c {
				out.add(to)
			}
			break
		}
	}
}
