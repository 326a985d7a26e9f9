package rules

import "github.com/TJOffringa/Klikschaak/internal/model"

// Notate renders the history-log notation for a just-applied candidate:
// the compact move token (spec §6), a qualifier for the move types whose
// token alone would not tell them apart (" e.p." for en-passant, " (klik)",
// " (unklik-klik)" and " (both)" for the stacked castling variants), plus a
// check/mate suffix, grounded on the teacher's getNotation. Called with pos
// already mutated but before Position.Apply flips the side to move, so
// mover is still the side that just moved and mover.Opposite() is whoever
// was just put in check.
func Notate(pos *model.Position, c Candidate, mover model.Color) string {
	opp := mover.Opposite()
	base := c.Token()
	switch c.Type {
	case EnPassant, EnPassantUnklik:
		base += " e.p."
	case CastleKKlik, CastleQKlik:
		base += " (klik)"
	case CastleKUnklikKlik, CastleQUnklikKlik:
		base += " (unklik-klik)"
	case CastleKBoth, CastleQBoth:
		base += " (both)"
	}
	if !IsInCheck(pos, opp) {
		return base
	}
	if HasAnyLegalMove(pos, opp) {
		return base + "+"
	}
	return base + "#"
}
