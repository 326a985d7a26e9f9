package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

// destClass classifies a destination square relative to the mover's color.
type destClass int

const (
	destEmpty destClass = iota
	destFriendlySingle
	destFriendlyStack // max-2 invariant: never a legal target
	destEnemy         // capturing consumes the whole enemy square (P7)
)

func classify(b *model.Board, sq model.Sq, mover model.Color) destClass {
	occ := b.At(sq)
	if occ.IsEmpty() {
		return destEmpty
	}
	if occ.Color() == mover {
		if occ.IsStack() {
			return destFriendlyStack
		}
		return destFriendlySingle
	}
	return destEnemy
}

// slidingTargets walks each direction until it hits board edge or an
// occupied square, inclusive of that square if it is a legal destination.
func slidingTargets(pos *model.Position, from model.Sq, mover model.Color, dirs [][2]int) []model.Sq {
	var out []model.Sq
	for _, d := range dirs {
		cur := from.Add(d[0], d[1])
		for cur.InBounds() {
			class := classify(pos.Board, cur, mover)
			if class == destFriendlyStack {
				break
			}
			out = append(out, cur)
			if class != destEmpty {
				break
			}
			cur = cur.Add(d[0], d[1])
		}
	}
	return out
}

func offsetTargets(pos *model.Position, from model.Sq, mover model.Color, offsets [][2]int) []model.Sq {
	var out []model.Sq
	for _, o := range offsets {
		to := from.Add(o[0], o[1])
		if !to.InBounds() {
			continue
		}
		if classify(pos.Board, to, mover) == destFriendlyStack {
			continue
		}
		out = append(out, to)
	}
	return out
}

// pseudoTargetsForPiece returns every square piece can reach by its own
// geometry from sq, ignoring check safety and ignoring castling (handled
// separately in castling.go) and ignoring the pawn's forward-push/capture
// split (handled in pawnTargets).
func pseudoTargetsForPiece(pos *model.Position, sq model.Sq, piece model.Piece) []model.Sq {
	switch piece.Kind {
	case model.Knight:
		return offsetTargets(pos, sq, piece.Color, knightOffsets)
	case model.King:
		return offsetTargets(pos, sq, piece.Color, kingOffsets)
	case model.Rook:
		return slidingTargets(pos, sq, piece.Color, rookDirs)
	case model.Bishop:
		return slidingTargets(pos, sq, piece.Color, bishopDirs)
	case model.Queen:
		return slidingTargets(pos, sq, piece.Color, queenDirs)
	case model.Pawn:
		return pawnTargets(pos, sq, piece)
	default:
		return nil
	}
}

func pawnTargets(pos *model.Position, sq model.Sq, piece model.Piece) []model.Sq {
	var out []model.Sq
	step := 1
	startRank := 1
	if piece.Color == model.Black {
		step = -1
		startRank = 6
	}

	one := sq.Add(step, 0)
	if one.InBounds() && pos.Board.At(one).IsEmpty() {
		out = append(out, one)
		two := sq.Add(2*step, 0)
		if sq.Rank == startRank && !pos.MovedPawns[piece.PawnID] && two.InBounds() && pos.Board.At(two).IsEmpty() {
			out = append(out, two)
		}
	}

	for _, df := range [2]int{-1, 1} {
		capSq := sq.Add(step, df)
		if !capSq.InBounds() {
			continue
		}
		class := classify(pos.Board, capSq, piece.Color)
		if class == destEnemy {
			out = append(out, capSq)
		} else if pos.EnPassant != nil && capSq == *pos.EnPassant {
			out = append(out, capSq)
		}
	}
	return out
}

// isPromotionRank reports whether sq is the far rank for color — the rank
// a pawn of that color promotes on.
func isPromotionRank(sq model.Sq, color model.Color) bool {
	if color == model.White {
		return sq.Rank == 7
	}
	return sq.Rank == 0
}

// stackReach is one square reachable by a stacked square's combined
// geometry, tagging whether a pawn member, a non-pawn member, or both
// reach it — needed to apply the promotion-carriage rule and the
// EnPassant/EnPassantChoice collapse of spec §4.3.
type stackReach struct {
	sq        model.Sq
	byPawn    bool
	byNonPawn bool
}

// combinedReach unions the pseudo-targets of every occupant of a stacked
// square, the way the generator's "whole-square" mode treats the sequence
// as a single moving unit (spec §4.3).
func combinedReach(pos *model.Position, sq model.Sq, stack model.Square) []stackReach {
	var out []stackReach
	for _, piece := range stack {
		isPawn := piece.Kind == model.Pawn
		for _, t := range pseudoTargetsForPiece(pos, sq, piece) {
			found := false
			for i := range out {
				if out[i].sq == t {
					if isPawn {
						out[i].byPawn = true
					} else {
						out[i].byNonPawn = true
					}
					found = true
					break
				}
			}
			if !found {
				out = append(out, stackReach{sq: t, byPawn: isPawn, byNonPawn: !isPawn})
			}
		}
	}
	return out
}

// combinedPawnDoublePush reports the destination of a pawn member of stack
// pushing two squares forward from its own starting rank, if any — used to
// set the en-passant target precisely (a sliding piece sharing the stack
// can also reach a same-file square two ranks away, which must not be
// mistaken for a double push).
func combinedPawnDoublePush(pos *model.Position, sq model.Sq, stack model.Square) (model.Sq, bool) {
	for _, p := range stack {
		if p.Kind != model.Pawn {
			continue
		}
		step, startRank := 1, 1
		if p.Color == model.Black {
			step, startRank = -1, 6
		}
		one := sq.Add(step, 0)
		two := sq.Add(2*step, 0)
		if sq.Rank == startRank && !pos.MovedPawns[p.PawnID] &&
			one.InBounds() && pos.Board.At(one).IsEmpty() &&
			two.InBounds() && pos.Board.At(two).IsEmpty() {
			return two, true
		}
	}
	return model.Sq{}, false
}

// generateCombinedMoves produces whole-stack transport candidates: the
// two stacked pieces move together to a square reached by either one's
// geometry. A combined move can never klik (the destination must be empty
// or enemy — landing on a friendly singleton would exceed the two-piece
// stack limit), and the two forbidden patterns of spec §4.3 prune a pawn
// stack's targets: the stack's own back rank is never reachable, and the
// promotion rank is reachable only through the pawn's own geometry.
func generateCombinedMoves(pos *model.Position, sq model.Sq, stack model.Square) []Candidate {
	color := stack.Color()
	_, hasPawn := stack.HasPawn()
	backRank, promoRank := 0, 7
	if color == model.Black {
		backRank, promoRank = 7, 0
	}

	var out []Candidate
	for _, r := range combinedReach(pos, sq, stack) {
		to := r.sq
		if hasPawn && to.Rank == backRank {
			continue
		}
		if hasPawn && to.Rank == promoRank && !r.byPawn {
			continue
		}
		class := classify(pos.Board, to, color)
		if class == destFriendlySingle || class == destFriendlyStack {
			continue
		}
		isEP := hasPawn && r.byPawn && pos.EnPassant != nil && to == *pos.EnPassant && class == destEmpty
		switch {
		case isEP && r.byNonPawn:
			out = append(out, Candidate{From: sq, To: to, Type: EnPassantChoice, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
		case isEP:
			out = append(out, Candidate{From: sq, To: to, Type: EnPassant, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
		default:
			out = append(out, Candidate{From: sq, To: to, Type: Normal, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
		}
	}
	return out
}

func moveTypeFor(class destClass, sourceStacked bool) MoveType {
	switch {
	case class == destEmpty && !sourceStacked:
		return Normal
	case class == destEmpty && sourceStacked:
		return Unklik
	case class == destFriendlySingle && !sourceStacked:
		return Klik
	case class == destFriendlySingle && sourceStacked:
		return UnklikKlik
	case class == destEnemy:
		if sourceStacked {
			return Unklik
		}
		return Normal
	default:
		return Normal
	}
}

// GenerateSquareMoves is the whole-square C3 entry point: every pseudo-legal
// candidate reachable from sq, combining every occupant's geometry (spec
// §4.2's "combined generation"). King moves here are non-castling only;
// castling candidates come from GenerateCastlingMoves.
func GenerateSquareMoves(pos *model.Position, sq model.Sq) []Candidate {
	occ := pos.Board.At(sq)
	if occ.IsEmpty() {
		return nil
	}
	mover := occ.Color()
	if mover != pos.SideToMove {
		return nil
	}
	if occ.IsStack() {
		// A stacked square offers both per-piece selection (Unklik/
		// UnklikKlik/EnPassantUnklik, one piece splits off) and
		// whole-square transport (the stack moves together, spec §4.3's
		// "whole-square generation" applied to a two-piece sequence).
		out := GenerateUnclickMoves(pos, sq)
		return append(out, generateCombinedMoves(pos, sq, occ)...)
	}

	piece := occ[0]
	var out []Candidate
	epTarget := (*model.Sq)(nil)
	if piece.Kind == model.Pawn {
		epTarget = pos.EnPassant
	}

	for _, to := range pseudoTargetsForPiece(pos, sq, piece) {
		class := classify(pos.Board, to, mover)
		if class == destFriendlyStack {
			continue
		}
		if class == destFriendlySingle && (pos.Board.At(to).HasKing() || piece.Kind == model.King) {
			continue // a king never kliks, and is never a klik destination
		}
		if piece.Kind == model.Pawn && epTarget != nil && to == *epTarget && class == destEmpty {
			// Lone occupant: no ambiguity to collapse, the target is
			// only reachable via en-passant capture.
			out = append(out, Candidate{From: sq, To: to, Type: EnPassant, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
			continue
		}
		typ := moveTypeFor(class, false)
		// Promotion is left unresolved here (Promotion: NoKind); the
		// executor's NeedsPromotion reports it back to the caller.
		out = append(out, Candidate{From: sq, To: to, Type: typ, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
	}
	return out
}
