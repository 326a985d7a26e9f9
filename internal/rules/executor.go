package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

func homeCorner(color model.Color, side model.CastleSide) model.Sq {
	rank := homeRank(color)
	file := 7
	if side == model.Queenside {
		file = 0
	}
	return model.Sq{Rank: rank, File: file}
}

// selectMover resolves which piece a Candidate actually relocates,
// validating source occupancy and the unclick index against spec §7's
// error taxonomy.
func selectMover(pos *model.Position, c Candidate) (model.Piece, int, error) {
	occ := pos.Board.At(c.From)
	if occ.IsEmpty() {
		return model.Piece{}, 0, model.NewError(model.ErrNoPieceOnSource, nil)
	}
	if occ.Color() != pos.SideToMove {
		return model.Piece{}, 0, model.NewError(model.ErrNotYourPiece, nil)
	}
	if occ.IsStack() {
		if c.UnclickIndex == NoUnclickIndex {
			// Whole-stack transport: no single piece is "the" mover, but
			// every occupant shares a color, which is all callers that
			// only need piece.Color (Legal's check-safety probe) require.
			if c.Type != Normal && c.Type != EnPassant {
				return model.Piece{}, 0, model.NewError(model.ErrBadUnclickIndex, nil)
			}
			return occ[0], NoUnclickIndex, nil
		}
		if c.UnclickIndex != 0 && c.UnclickIndex != 1 {
			return model.Piece{}, 0, model.NewError(model.ErrBadUnclickIndex, nil)
		}
		return occ[c.UnclickIndex], c.UnclickIndex, nil
	}
	if c.UnclickIndex != NoUnclickIndex {
		return model.Piece{}, 0, model.NewError(model.ErrBadUnclickIndex, nil)
	}
	return occ[0], 0, nil
}

// NeedsPromotion reports whether c requires the caller to resolve a
// promotion choice before it can be committed: a pawn reaching the far
// rank under its own geometry, with no promotion piece yet chosen. Only a
// pawn's own Normal/Unklik push or capture may promote, alone or carrying
// its stacked companion along — a pawn carried there by a companion's
// geometry never does (spec's promotion-carriage rule).
func NeedsPromotion(pos *model.Position, c Candidate) bool {
	if c.Promotion != model.NoKind {
		return false
	}
	if c.Type != Normal && c.Type != Unklik {
		return false
	}
	occ := pos.Board.At(c.From)
	if occ.IsStack() && c.UnclickIndex == NoUnclickIndex {
		// Whole-stack transport: Legal's geometryError already confirmed
		// that reaching the promotion rank (if this is it) happened via
		// the pawn's own geometry, per the promotion-carriage rule.
		_, hasPawn := occ.HasPawn()
		return hasPawn && isPromotionRank(c.To, occ.Color())
	}
	piece, _, err := selectMover(pos, c)
	if err != nil || piece.Kind != model.Pawn {
		return false
	}
	return isPromotionRank(c.To, piece.Color)
}

// applyMechanics performs the board mutation for one committable
// candidate and returns the bookkeeping payload for Position.Apply. It
// assumes the candidate has already passed Legal. Choice types are
// rejected — callers must resolve them into a concrete type first.
func applyMechanics(pos *model.Position, c Candidate) (model.MoveEffect, error) {
	if c.Type.IsChoice() {
		return model.MoveEffect{}, model.NewError(model.ErrIllegalMove, nil)
	}
	if srcOcc := pos.Board.At(c.From); srcOcc.IsStack() && c.UnclickIndex == NoUnclickIndex {
		return applyCombinedMechanics(pos, c, srcOcc)
	}

	piece, idx, err := selectMover(pos, c)
	if err != nil {
		return model.MoveEffect{}, err
	}
	mover := piece.Color
	eff := model.MoveEffect{Mover: mover}

	switch c.Type {
	case CastleK, CastleQ, CastleKKlik, CastleQKlik, CastleKUnklikKlik, CastleQUnklikKlik, CastleKBoth, CastleQBoth:
		side := model.Kingside
		geom := kingsideGeom
		if c.Type == CastleQ || c.Type == CastleQKlik || c.Type == CastleQUnklikKlik || c.Type == CastleQBoth {
			side = model.Queenside
			geom = queensideGeom
		}
		both := c.Type == CastleKBoth || c.Type == CastleQBoth

		stacked, destCls, verr := validateCastle(pos, mover, geom)
		if verr != nil {
			return model.MoveEffect{}, verr
		}
		if both && (!stacked || destCls != destEmpty) {
			return model.MoveEffect{}, model.NewError(model.ErrIllegalMove, nil)
		}

		corner := homeCorner(mover, side)
		dest := c.rookDest(mover, side)
		cornerOcc := pos.Board.At(corner).Clone()

		pos.Board.Set(c.From, nil)
		pos.Board.Set(c.To, model.Square{{Kind: model.King, Color: mover, PawnID: model.NoPawnID}})

		switch {
		case both:
			pos.Board.Set(corner, nil)
			pos.Board.Set(dest, cornerOcc)
		case stacked:
			rook, companion := splitRook(cornerOcc)
			existing := pos.Board.At(dest).Clone()
			pos.Board.Set(corner, model.Square{companion})
			pos.Board.Set(dest, append(existing, rook))
		default:
			existing := pos.Board.At(dest).Clone()
			pos.Board.Set(corner, nil)
			pos.Board.Set(dest, append(existing, cornerOcc[0]))
		}

		eff.ClearCastling = append(eff.ClearCastling,
			model.CastleRight{Color: mover, Side: model.Kingside},
			model.CastleRight{Color: mover, Side: model.Queenside})

	case EnPassant, EnPassantUnklik:
		capturedSq := model.Sq{Rank: c.From.Rank, File: c.To.File}
		pos.Board.Set(capturedSq, nil)
		eff.Capture = true
		eff.PawnMoved = true
		eff.PawnIDsTouched = append(eff.PawnIDsTouched, piece.PawnID)

		if c.Type == EnPassant {
			pos.Board.Set(c.From, nil)
		} else {
			remaining := remainingAfterSplit(pos.Board.At(c.From), idx)
			pos.Board.Set(c.From, model.Square{remaining})
		}
		pos.Board.Set(c.To, model.Square{piece})

	default: // Normal, Klik, Unklik, UnklikKlik
		destOcc := pos.Board.At(c.To)
		if !destOcc.IsEmpty() && destOcc.Color() != mover {
			eff.Capture = true
			eff.ClearCastling = append(eff.ClearCastling, cornerClears(mover.Opposite(), c.To)...)
		}
		if piece.Kind == model.Pawn {
			eff.PawnMoved = true
			eff.PawnIDsTouched = append(eff.PawnIDsTouched, piece.PawnID)
			if abs(c.To.Rank-c.From.Rank) == 2 {
				mid := model.Sq{Rank: (c.To.Rank + c.From.Rank) / 2, File: c.From.File}
				eff.NewEnPassant = &mid
			}
		}
		if piece.Kind == model.King {
			eff.ClearCastling = append(eff.ClearCastling,
				model.CastleRight{Color: mover, Side: model.Kingside},
				model.CastleRight{Color: mover, Side: model.Queenside})
		}
		if piece.Kind == model.Rook {
			eff.ClearCastling = append(eff.ClearCastling, cornerClears(mover, c.From)...)
		}
		if c.Promotion != model.NoKind {
			piece.Kind = c.Promotion
			piece.PawnID = model.NoPawnID
		}

		switch c.Type {
		case Normal:
			pos.Board.Set(c.From, nil)
			pos.Board.Set(c.To, model.Square{piece})
		case Klik:
			existing := pos.Board.At(c.To).Clone()
			pos.Board.Set(c.From, nil)
			pos.Board.Set(c.To, append(existing, piece))
		case Unklik:
			remaining := remainingAfterSplit(pos.Board.At(c.From), idx)
			pos.Board.Set(c.From, model.Square{remaining})
			pos.Board.Set(c.To, model.Square{piece})
		case UnklikKlik:
			remaining := remainingAfterSplit(pos.Board.At(c.From), idx)
			existing := pos.Board.At(c.To).Clone()
			pos.Board.Set(c.From, model.Square{remaining})
			pos.Board.Set(c.To, append(existing, piece))
		}
	}

	return eff, nil
}

// applyCombinedMechanics mutates the board for a whole-stack transport: the
// two pieces on c.From travel together to c.To, landing there still
// stacked. Assumes c has already passed Legal (combinedGeometryError).
func applyCombinedMechanics(pos *model.Position, c Candidate, stack model.Square) (model.MoveEffect, error) {
	mover := stack.Color()
	eff := model.MoveEffect{Mover: mover}

	var pawnIDs []int8
	hasPawn := false
	for _, p := range stack {
		if p.Kind == model.Pawn {
			hasPawn = true
			pawnIDs = append(pawnIDs, p.PawnID)
		}
	}

	if c.Type == EnPassant {
		capturedSq := model.Sq{Rank: c.From.Rank, File: c.To.File}
		pos.Board.Set(capturedSq, nil)
		eff.Capture = true
		eff.PawnMoved = true
		eff.PawnIDsTouched = append(eff.PawnIDsTouched, pawnIDs...)
		moving := stack.Clone()
		pos.Board.Set(c.From, nil)
		pos.Board.Set(c.To, moving)
		return eff, nil
	}

	destOcc := pos.Board.At(c.To)
	if !destOcc.IsEmpty() {
		eff.Capture = true
		eff.ClearCastling = append(eff.ClearCastling, cornerClears(mover.Opposite(), c.To)...)
	}
	if hasPawn {
		eff.PawnMoved = true
		eff.PawnIDsTouched = append(eff.PawnIDsTouched, pawnIDs...)
		if dpTo, ok := combinedPawnDoublePush(pos, c.From, stack); ok && c.To == dpTo {
			mid := model.Sq{Rank: (c.To.Rank + c.From.Rank) / 2, File: c.From.File}
			eff.NewEnPassant = &mid
		}
	}
	for _, p := range stack {
		if p.Kind == model.Rook {
			eff.ClearCastling = append(eff.ClearCastling, cornerClears(mover, c.From)...)
		}
	}

	moving := stack.Clone()
	if c.Promotion != model.NoKind {
		for i := range moving {
			if moving[i].Kind == model.Pawn {
				moving[i].Kind = c.Promotion
				moving[i].PawnID = model.NoPawnID
			}
		}
	}
	pos.Board.Set(c.From, nil)
	pos.Board.Set(c.To, moving)
	return eff, nil
}

func (c Candidate) rookDest(mover model.Color, side model.CastleSide) model.Sq {
	rank := homeRank(mover)
	file := 5
	if side == model.Queenside {
		file = 3
	}
	return model.Sq{Rank: rank, File: file}
}

func splitRook(stack model.Square) (rook, companion model.Piece) {
	if stack[0].Kind == model.Rook {
		return stack[0], stack[1]
	}
	return stack[1], stack[0]
}

func remainingAfterSplit(stack model.Square, idx int) model.Piece {
	return stack[1-idx]
}

func cornerClears(color model.Color, sq model.Sq) []model.CastleRight {
	var out []model.CastleRight
	if sq == homeCorner(color, model.Kingside) {
		out = append(out, model.CastleRight{Color: color, Side: model.Kingside})
	}
	if sq == homeCorner(color, model.Queenside) {
		out = append(out, model.CastleRight{Color: color, Side: model.Queenside})
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Commit validates and applies a candidate, mutating pos in place. It
// returns true in the second result when the move cannot be committed yet
// because it needs a promotion choice — pos is left untouched and the
// caller should resubmit the same candidate with Promotion set.
func Commit(pos *model.Position, c Candidate) (needsPromotion bool, err error) {
	if err := Legal(pos, c); err != nil {
		return false, err
	}
	if NeedsPromotion(pos, c) {
		return true, nil
	}
	eff, err := applyMechanics(pos, c)
	if err != nil {
		return false, err
	}
	eff.Notation = Notate(pos, c, eff.Mover)
	pos.Apply(eff)
	return false, nil
}
