package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

// Legal is the C4 filter: clone, mechanically apply, and reject any
// candidate that leaves the mover's own king in check (spec §4.4),
// grounded on the teacher's filterLegalMoves temp-apply-and-revert shape
// and original_source/engine/movegen.py's is_legal.
func Legal(pos *model.Position, c Candidate) error {
	if c.Type.IsChoice() {
		return model.NewError(model.ErrIllegalMove, nil)
	}

	piece, _, err := selectMover(pos, c)
	if err != nil {
		return err
	}
	if err := geometryError(pos, c, piece); err != nil {
		return err
	}

	probe := c
	if probe.Promotion == model.NoKind && NeedsPromotion(pos, probe) {
		probe.Promotion = model.Queen
	}

	scratch := pos.Clone()
	if _, err := applyMechanics(scratch, probe); err != nil {
		return err
	}
	if IsInCheck(scratch, piece.Color) {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	return nil
}

// HasAnyLegalMove reports whether color has at least one legal move in
// pos, used for the honest termination detection of spec §5 (checkmate
// and stalemate must only be declared when every candidate across every
// occupied square of color's has been tried and failed).
func HasAnyLegalMove(pos *model.Position, color model.Color) bool {
	if pos.SideToMove != color {
		return hasAnyLegalMoveIgnoringTurn(pos, color)
	}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			sq := model.Sq{Rank: r, File: f}
			occ := pos.Board.At(sq)
			if occ.IsEmpty() || occ.Color() != color {
				continue
			}
			for _, c := range GenerateSquareMoves(pos, sq) {
				if Legal(pos, c) == nil {
					return true
				}
			}
		}
	}
	if HasAnyCastleMove(pos, color) {
		return true
	}
	return false
}

// HasAnyCastleMove reports whether color has a legal castling candidate.
func HasAnyCastleMove(pos *model.Position, color model.Color) bool {
	for _, c := range GenerateCastlingMoves(pos, color) {
		if c.Type.IsChoice() {
			return true
		}
		if Legal(pos, c) == nil {
			return true
		}
	}
	return false
}

// geometryError re-derives piece reachability for a directly-submitted
// candidate, the way GenerateSquareMoves/GenerateUnclickMoves would have,
// so Legal never trusts a caller's (From, To, Type) triple at face value —
// a resolved Choice candidate is the intended use of direct submission
// (spec §4.3's "Castling choice"/EnPassantChoice), but nothing stops a
// caller from fabricating an ungenerated one otherwise.
func geometryError(pos *model.Position, c Candidate, piece model.Piece) error {
	if srcOcc := pos.Board.At(c.From); srcOcc.IsStack() && c.UnclickIndex == NoUnclickIndex {
		return combinedGeometryError(pos, c, srcOcc)
	}
	switch c.Type {
	case EnPassant, EnPassantUnklik:
		if piece.Kind != model.Pawn || c.Promotion != model.NoKind {
			return model.NewError(model.ErrIllegalMove, nil)
		}
		if pos.EnPassant == nil || c.To != *pos.EnPassant {
			return model.NewError(model.ErrIllegalMove, nil)
		}
		step := 1
		if piece.Color == model.Black {
			step = -1
		}
		if c.To.Rank-c.From.Rank != step || abs(c.To.File-c.From.File) != 1 {
			return model.NewError(model.ErrIllegalMove, nil)
		}
		return nil
	case CastleK, CastleQ, CastleKKlik, CastleQKlik, CastleKUnklikKlik, CastleQUnklikKlik, CastleKBoth, CastleQBoth:
		if c.Promotion != model.NoKind {
			return model.NewError(model.ErrIllegalMove, nil)
		}
		// Fully re-validated against live board state by validateCastle
		// inside applyMechanics; no separate geometry table to check here.
		return nil
	}

	reachable := false
	for _, t := range pseudoTargetsForPiece(pos, c.From, piece) {
		if t == c.To {
			reachable = true
			break
		}
	}
	if !reachable {
		return model.NewError(model.ErrIllegalMove, nil)
	}

	// Only a pawn's own Normal/Unklik push or capture may promote. A
	// fabricated Klik/UnklikKlik carrying a promotion choice would
	// otherwise let applyMechanics promote a transported piece.
	if c.Promotion != model.NoKind {
		if piece.Kind != model.Pawn || (c.Type != Normal && c.Type != Unklik) || !isPromotionRank(c.To, piece.Color) {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	}

	class := classify(pos.Board, c.To, piece.Color)
	stackedSource := c.UnclickIndex != NoUnclickIndex

	// A pawn reaches an empty diagonal square only by en-passant capture,
	// which has its own move types (handled above).
	if piece.Kind == model.Pawn && class == destEmpty && c.To.File != c.From.File {
		return model.NewError(model.ErrIllegalMove, nil)
	}

	switch c.Type {
	case Normal:
		if stackedSource || (class != destEmpty && class != destEnemy) {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	case Klik:
		if stackedSource || class != destFriendlySingle || pos.Board.At(c.To).HasKing() || piece.Kind == model.King {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	case Unklik:
		if !stackedSource || (class != destEmpty && class != destEnemy) {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	case UnklikKlik:
		if !stackedSource || class != destFriendlySingle || pos.Board.At(c.To).HasKing() {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	default:
		return model.NewError(model.ErrIllegalMove, nil)
	}
	return nil
}

// combinedGeometryError is geometryError's counterpart for a directly
// submitted whole-stack transport (UnclickIndex absent on a stacked
// source): it re-derives combinedReach the way generateCombinedMoves
// would, instead of trusting that the caller's (From, To, Type) actually
// came from that generator.
func combinedGeometryError(pos *model.Position, c Candidate, stack model.Square) error {
	if c.Type != Normal && c.Type != EnPassant {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	color := stack.Color()
	_, hasPawn := stack.HasPawn()

	var hit *stackReach
	reach := combinedReach(pos, c.From, stack)
	for i := range reach {
		if reach[i].sq == c.To {
			hit = &reach[i]
			break
		}
	}
	if hit == nil {
		return model.NewError(model.ErrIllegalMove, nil)
	}

	backRank, promoRank := 0, 7
	if color == model.Black {
		backRank, promoRank = 7, 0
	}
	if hasPawn && c.To.Rank == backRank {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	if hasPawn && c.To.Rank == promoRank && !hit.byPawn {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	if c.Promotion != model.NoKind {
		if !hasPawn || !hit.byPawn || !isPromotionRank(c.To, color) {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	}

	class := classify(pos.Board, c.To, color)
	if class != destEmpty && class != destEnemy {
		return model.NewError(model.ErrIllegalMove, nil)
	}

	isEP := hasPawn && hit.byPawn && pos.EnPassant != nil && c.To == *pos.EnPassant && class == destEmpty
	switch c.Type {
	case Normal:
		if isEP && !hit.byNonPawn {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	case EnPassant:
		if !isEP {
			return model.NewError(model.ErrIllegalMove, nil)
		}
	}
	return nil
}

// hasAnyLegalMoveIgnoringTurn supports querying a color's mobility when it
// is not currently that color's turn (used by higher layers probing
// hypothetical positions); it temporarily swaps SideToMove on a clone.
func hasAnyLegalMoveIgnoringTurn(pos *model.Position, color model.Color) bool {
	scratch := pos.Clone()
	scratch.SideToMove = color
	return HasAnyLegalMove(scratch, color)
}
