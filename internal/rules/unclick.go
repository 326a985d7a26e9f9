package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

// GenerateUnclickMoves is the stacked-square C3 entry point (spec §4.2's
// "unklik" / "unklik-klik" generation): sq holds exactly two friendly
// pieces, and every candidate names which one (UnclickIndex 0 bottom, 1
// top) splits off while the other stays behind.
func GenerateUnclickMoves(pos *model.Position, sq model.Sq) []Candidate {
	occ := pos.Board.At(sq)
	if len(occ) != 2 {
		return nil
	}
	mover := occ.Color()
	if mover != pos.SideToMove {
		return nil
	}

	var raw []Candidate
	for idx, piece := range occ {
		epTarget := (*model.Sq)(nil)
		if piece.Kind == model.Pawn {
			epTarget = pos.EnPassant
		}
		for _, to := range pseudoTargetsForPiece(pos, sq, piece) {
			class := classify(pos.Board, to, mover)
			if class == destFriendlyStack {
				continue
			}
			if class == destFriendlySingle && pos.Board.At(to).HasKing() {
				continue // a king is never a klik destination
			}
			if piece.Kind == model.Pawn && epTarget != nil && to == *epTarget && class == destEmpty {
				raw = append(raw, Candidate{From: sq, To: to, Type: EnPassantUnklik, UnclickIndex: idx, Promotion: model.NoKind})
				continue
			}
			typ := Unklik
			if class == destFriendlySingle {
				typ = UnklikKlik
			}
			raw = append(raw, Candidate{From: sq, To: to, Type: typ, UnclickIndex: idx, Promotion: model.NoKind})
		}
	}

	return collapseEnPassantChoices(raw)
}

// collapseEnPassantChoices implements spec §4.3's collision rule: when an
// ordinary Unklik to an empty square and a pawn's EnPassantUnklik to that
// same square are both offered, the token "<from><to>" alone cannot tell
// them apart, so generation collapses the pair into one EnPassantChoice.
// A caller that already knows which type it wants submits that concrete
// type directly — Legal/Commit accept it without requiring the Choice
// candidate to be the one offered.
func collapseEnPassantChoices(raw []Candidate) []Candidate {
	var ordinary, enpassant = map[model.Sq]Candidate{}, map[model.Sq]Candidate{}
	for _, c := range raw {
		switch c.Type {
		case Unklik:
			ordinary[c.To] = c
		case EnPassantUnklik:
			enpassant[c.To] = c
		}
	}

	var out []Candidate
	seen := map[model.Sq]bool{}
	for _, c := range raw {
		if c.Type != Unklik && c.Type != EnPassantUnklik {
			out = append(out, c)
			continue
		}
		if _, ok := ordinary[c.To]; ok {
			if _, ok2 := enpassant[c.To]; ok2 {
				if seen[c.To] {
					continue
				}
				seen[c.To] = true
				out = append(out, Candidate{From: c.From, To: c.To, Type: EnPassantChoice, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind})
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
