package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

type castleGeometry struct {
	side            model.CastleSide
	kingToFile      int
	rookFile        int
	rookToFile      int
	strictEmptyFile int // must be fully empty, not check-tested
	kingCheckFiles  [3]int
	castleType      MoveType
	klikType        MoveType
	unklikKlikType  MoveType
	choiceType      MoveType
}

var kingsideGeom = castleGeometry{
	side: model.Kingside, kingToFile: 6, rookFile: 7, rookToFile: 5,
	strictEmptyFile: 6, kingCheckFiles: [3]int{4, 5, 6},
	castleType: CastleK, klikType: CastleKKlik, unklikKlikType: CastleKUnklikKlik, choiceType: CastleKChoice,
}

var queensideGeom = castleGeometry{
	side: model.Queenside, kingToFile: 2, rookFile: 0, rookToFile: 3,
	strictEmptyFile: 1, kingCheckFiles: [3]int{4, 3, 2},
	castleType: CastleQ, klikType: CastleQKlik, unklikKlikType: CastleQUnklikKlik, choiceType: CastleQChoice,
}

func homeRank(color model.Color) int {
	if color == model.White {
		return 0
	}
	return 7
}

// GenerateCastlingMoves produces the castling candidates legal for color
// per the corner-occupant / destination-occupant table of spec §4.3,
// including the stacked-rook Choice branches the Python ground truth never
// generated, needed to satisfy that table in full.
func GenerateCastlingMoves(pos *model.Position, color model.Color) []Candidate {
	var out []Candidate
	for _, geom := range []castleGeometry{kingsideGeom, queensideGeom} {
		if c, ok := castleCandidate(pos, color, geom); ok {
			out = append(out, c)
		}
	}
	return out
}

// validateCastle re-derives every precondition of spec §4.3's castling
// table and reports the live corner/destination shape, so both generation
// and execution agree on what is actually on the board instead of trusting
// a submitted candidate's Type alone.
func validateCastle(pos *model.Position, color model.Color, geom castleGeometry) (stacked bool, destClass destClass, err error) {
	if !pos.Castling[color][geom.side] {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}
	rank := homeRank(color)
	kingSq := model.Sq{Rank: rank, File: 4}
	kingSquare := pos.Board.At(kingSq)
	if kingSquare.IsStack() {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}
	if king, ok := kingSquare.Top(); !ok || king.Kind != model.King || king.Color != color {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}

	rookSq := model.Sq{Rank: rank, File: geom.rookFile}
	corner := pos.Board.At(rookSq)
	hasRook := false
	for _, p := range corner {
		if p.Kind == model.Rook && p.Color == color {
			hasRook = true
		}
	}
	if !hasRook {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}
	stacked = corner.IsStack()

	strictSq := model.Sq{Rank: rank, File: geom.strictEmptyFile}
	if !pos.Board.At(strictSq).IsEmpty() {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}
	// The king never klik-merges, so its own landing square must be
	// completely clear regardless of what the rook's destination allows.
	kingDestSq := model.Sq{Rank: rank, File: geom.kingToFile}
	if !pos.Board.At(kingDestSq).IsEmpty() {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}

	destSq := model.Sq{Rank: rank, File: geom.rookToFile}
	class := classify(pos.Board, destSq, color)
	if class != destEmpty && class != destFriendlySingle {
		return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
	}

	opp := color.Opposite()
	for _, f := range geom.kingCheckFiles {
		if IsAttacked(pos, model.Sq{Rank: rank, File: f}, opp) {
			return false, destEmpty, model.NewError(model.ErrIllegalMove, nil)
		}
	}

	return stacked, class, nil
}

func castleCandidate(pos *model.Position, color model.Color, geom castleGeometry) (Candidate, bool) {
	stacked, class, err := validateCastle(pos, color, geom)
	if err != nil {
		return Candidate{}, false
	}
	rank := homeRank(color)

	typ := geom.castleType
	switch {
	case stacked && class == destEmpty:
		typ = geom.choiceType
	case stacked && class == destFriendlySingle:
		typ = geom.unklikKlikType
	case !stacked && class == destFriendlySingle:
		typ = geom.klikType
	}

	kingSq := model.Sq{Rank: rank, File: 4}
	return Candidate{From: kingSq, To: model.Sq{Rank: rank, File: geom.kingToFile}, Type: typ, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}, true
}
