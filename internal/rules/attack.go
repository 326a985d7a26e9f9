package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

// knightOffsets and kingOffsets are grounded on the teacher's
// getPseudoKnightMoves/getPseudoKingMoves offset tables.
var knightOffsets = [][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

var kingOffsets = [][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var rookDirs = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var queenDirs = append(append([][2]int{}, rookDirs...), bishopDirs...)

// IsAttacked reports whether sq is attacked by any piece of byColor,
// grounded on original_source/engine/movegen.py's is_attacked and the
// teacher's isSquareAttacked ray walk. Occupancy — not piece count — is
// what blocks a sliding ray: a stacked square stops a ray exactly like a
// singly-occupied one.
func IsAttacked(pos *model.Position, sq model.Sq, byColor model.Color) bool {
	b := pos.Board

	pawnRankStep := 1
	if byColor == model.Black {
		pawnRankStep = -1
	}
	for _, df := range [2]int{-1, 1} {
		from := sq.Add(-pawnRankStep, df)
		if !from.InBounds() {
			continue
		}
		for _, p := range b.At(from) {
			if p.Color == byColor && p.Kind == model.Pawn {
				return true
			}
		}
	}

	for _, o := range knightOffsets {
		from := sq.Add(o[0], o[1])
		if !from.InBounds() {
			continue
		}
		for _, p := range b.At(from) {
			if p.Color == byColor && p.Kind == model.Knight {
				return true
			}
		}
	}

	for _, o := range kingOffsets {
		from := sq.Add(o[0], o[1])
		if !from.InBounds() {
			continue
		}
		for _, p := range b.At(from) {
			if p.Color == byColor && p.Kind == model.King {
				return true
			}
		}
	}

	for _, d := range rookDirs {
		if raySeesAttacker(b, sq, d, byColor, model.Rook, model.Queen) {
			return true
		}
	}
	for _, d := range bishopDirs {
		if raySeesAttacker(b, sq, d, byColor, model.Bishop, model.Queen) {
			return true
		}
	}

	return false
}

func raySeesAttacker(b *model.Board, from model.Sq, dir [2]int, byColor model.Color, kinds ...model.PieceKind) bool {
	cur := from.Add(dir[0], dir[1])
	for cur.InBounds() {
		occ := b.At(cur)
		if !occ.IsEmpty() {
			for _, p := range occ {
				if p.Color != byColor {
					continue
				}
				for _, k := range kinds {
					if p.Kind == k {
						return true
					}
				}
			}
			return false
		}
		cur = cur.Add(dir[0], dir[1])
	}
	return false
}

// IsInCheck reports whether color's king is attacked by the opponent.
// A position with no king of that color on the board is never in check.
func IsInCheck(pos *model.Position, color model.Color) bool {
	ksq, ok := pos.Board.KingSquare(color)
	if !ok {
		return false
	}
	return IsAttacked(pos, ksq, color.Opposite())
}
