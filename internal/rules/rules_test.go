package rules

import (
	"testing"

	"github.com/TJOffringa/Klikschaak/internal/model"
)

func mustParseFEN(t *testing.T, fen string) *model.Position {
	t.Helper()
	pos, err := model.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func findCandidate(cands []Candidate, to model.Sq, typ MoveType) (Candidate, bool) {
	for _, c := range cands {
		if c.To == to && c.Type == typ {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestStartingPositionPawnAndKnightMoves(t *testing.T) {
	pos := model.NewPosition()

	e2, _ := model.ParseSq("e2")
	cands := GenerateSquareMoves(pos, e2)
	if _, ok := findCandidate(cands, mustSq(t, "e3"), Normal); !ok {
		t.Error("missing e2-e3 single push")
	}
	if _, ok := findCandidate(cands, mustSq(t, "e4"), Normal); !ok {
		t.Error("missing e2-e4 double push")
	}

	g1, _ := model.ParseSq("g1")
	cands = GenerateSquareMoves(pos, g1)
	if _, ok := findCandidate(cands, mustSq(t, "f3"), Normal); !ok {
		t.Error("missing g1-f3 knight move")
	}
	if _, ok := findCandidate(cands, mustSq(t, "h3"), Normal); !ok {
		t.Error("missing g1-h3 knight move")
	}
}

func mustSq(t *testing.T, name string) model.Sq {
	t.Helper()
	sq, ok := model.ParseSq(name)
	if !ok {
		t.Fatalf("bad square %q", name)
	}
	return sq
}

func TestDoublePawnPushBlockedAfterPreviousMove(t *testing.T) {
	pos := model.NewPosition()
	// Push the e-pawn one square, let Black answer with its own e-pawn
	// double push, then check that the white pawn on e3 is not offered a
	// two-square push to e5.
	_, err := Commit(pos, Candidate{From: mustSq(t, "e2"), To: mustSq(t, "e3"), Type: Normal, UnclickIndex: NoUnclickIndex})
	if err != nil {
		t.Fatalf("Commit e2e3: %v", err)
	}
	_, err = Commit(pos, Candidate{From: mustSq(t, "e7"), To: mustSq(t, "e5"), Type: Normal, UnclickIndex: NoUnclickIndex})
	if err != nil {
		t.Fatalf("Commit e7e5: %v", err)
	}
	cands := GenerateSquareMoves(pos, mustSq(t, "e3"))
	if _, ok := findCandidate(cands, mustSq(t, "e5"), Normal); ok {
		t.Error("pawn allowed a double push after having already moved")
	}
}

func TestKlikOntoFriendlySingleton(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/K2QR3 w - - 0 1")
	cands := GenerateSquareMoves(pos, mustSq(t, "d1"))
	c, ok := findCandidate(cands, mustSq(t, "e1"), Klik)
	if !ok {
		t.Fatalf("expected Klik candidate to e1, got %+v", cands)
	}
	if err := Legal(pos, c); err != nil {
		t.Fatalf("Legal: %v", err)
	}
	if _, err := Commit(pos, c); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sq := pos.Board.At(mustSq(t, "e1"))
	if !sq.IsStack() {
		t.Fatalf("expected stack at e1, got %+v", sq)
	}
}

func TestUnklikSplitsStack(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/K2(RB)4 w - - 0 1")
	cands := GenerateUnclickMoves(pos, mustSq(t, "d1"))
	c, ok := findCandidate(cands, mustSq(t, "d4"), Unklik)
	if !ok {
		t.Fatalf("expected an Unklik candidate to d4, got %+v", cands)
	}
	if c.UnclickIndex != 0 {
		t.Fatalf("expected rook (index 0) to be the one reaching d4, got index %d", c.UnclickIndex)
	}
	if _, err := Commit(pos, c); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	remaining := pos.Board.At(mustSq(t, "d1"))
	if remaining.IsStack() || len(remaining) != 1 || remaining[0].Kind != model.Bishop {
		t.Fatalf("expected lone bishop left at d1, got %+v", remaining)
	}
	moved := pos.Board.At(mustSq(t, "d4"))
	if len(moved) != 1 || moved[0].Kind != model.Rook {
		t.Fatalf("expected rook at d4, got %+v", moved)
	}
}

func TestCastlingPlain(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	cands := GenerateCastlingMoves(pos, model.White)
	if _, ok := findCandidate(cands, mustSq(t, "g1"), CastleK); !ok {
		t.Errorf("missing CastleK, got %+v", cands)
	}
	if _, ok := findCandidate(cands, mustSq(t, "c1"), CastleQ); !ok {
		t.Errorf("missing CastleQ, got %+v", cands)
	}
}

func TestCastlingThroughCheckIsIllegal(t *testing.T) {
	// Black rook on f8 attacks f1, the kingside transit square.
	pos := mustParseFEN(t, "5r1k/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	cands := GenerateCastlingMoves(pos, model.White)
	if _, ok := findCandidate(cands, mustSq(t, "g1"), CastleK); ok {
		t.Error("castling through an attacked square should not be generated")
	}
	if _, ok := findCandidate(cands, mustSq(t, "c1"), CastleQ); !ok {
		t.Error("queenside castling should remain legal")
	}
}

func TestStackedRookCastlingChoiceResolvesBoth(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/(RN)3K3 w Q - 0 1")
	cands := GenerateCastlingMoves(pos, model.White)
	choice, ok := findCandidate(cands, mustSq(t, "c1"), CastleQChoice)
	if !ok {
		t.Fatalf("expected CastleQChoice, got %+v", cands)
	}

	both := choice
	both.Type = CastleQBoth
	if err := Legal(pos, both); err != nil {
		t.Fatalf("Legal(CastleQBoth): %v", err)
	}
	if _, err := Commit(pos, both); err != nil {
		t.Fatalf("Commit(CastleQBoth): %v", err)
	}
	dest := pos.Board.At(mustSq(t, "d1"))
	if !dest.IsStack() {
		t.Fatalf("expected rook+knight stack at d1, got %+v", dest)
	}
	corner := pos.Board.At(mustSq(t, "a1"))
	if !corner.IsEmpty() {
		t.Fatalf("expected a1 empty after Both-castle, got %+v", corner)
	}
}

func TestStackedRookCastlingChoiceResolvesSplit(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/(RN)3K3 w Q - 0 1")
	split := Candidate{From: mustSq(t, "e1"), To: mustSq(t, "c1"), Type: CastleQ, UnclickIndex: NoUnclickIndex}
	if err := Legal(pos, split); err != nil {
		t.Fatalf("Legal(CastleQ split): %v", err)
	}
	if _, err := Commit(pos, split); err != nil {
		t.Fatalf("Commit(CastleQ split): %v", err)
	}
	dest := pos.Board.At(mustSq(t, "d1"))
	if dest.IsStack() || len(dest) != 1 || dest[0].Kind != model.Rook {
		t.Fatalf("expected lone rook at d1, got %+v", dest)
	}
	corner := pos.Board.At(mustSq(t, "a1"))
	if corner.IsStack() || len(corner) != 1 || corner[0].Kind != model.Knight {
		t.Fatalf("expected lone knight left at a1, got %+v", corner)
	}
}

func TestPromotionRequiresChoice(t *testing.T) {
	pos := mustParseFEN(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	cand := Candidate{From: mustSq(t, "a7"), To: mustSq(t, "a8"), Type: Normal, UnclickIndex: NoUnclickIndex}

	pending, err := Commit(pos, cand)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !pending {
		t.Fatal("expected Commit to report a pending promotion")
	}
	if occ := pos.Board.At(mustSq(t, "a7")); occ.IsEmpty() {
		t.Fatal("position must be unchanged while promotion is pending")
	}

	cand.Promotion = model.Queen
	pending, err = Commit(pos, cand)
	if err != nil {
		t.Fatalf("Commit with promotion: %v", err)
	}
	if pending {
		t.Fatal("expected the promotion-resolved commit to succeed")
	}
	top, _ := pos.Board.At(mustSq(t, "a8")).Top()
	if top.Kind != model.Queen || top.PawnID != model.NoPawnID {
		t.Fatalf("expected promoted queen with no pawn identity, got %+v", top)
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos := mustParseFEN(t, "4k3/4p3/8/5P2/8/8/8/4K3 b - - 0 1")
	// Black pushes e7-e5 two squares, setting the en-passant target e6 that
	// white's f5 pawn will then capture on.
	_, err := Commit(pos, Candidate{From: mustSq(t, "e7"), To: mustSq(t, "e5"), Type: Normal, UnclickIndex: NoUnclickIndex})
	if err != nil {
		t.Fatalf("Commit black push: %v", err)
	}
	if pos.EnPassant == nil || *pos.EnPassant != mustSq(t, "e6") {
		t.Fatalf("expected en-passant target e6, got %v", pos.EnPassant)
	}

	cands := GenerateSquareMoves(pos, mustSq(t, "f5"))
	c, ok := findCandidate(cands, mustSq(t, "e6"), EnPassant)
	if !ok {
		t.Fatalf("missing en-passant candidate, got %+v", cands)
	}
	if _, err := Commit(pos, c); err != nil {
		t.Fatalf("Commit en-passant: %v", err)
	}
	if occ := pos.Board.At(mustSq(t, "e5")); !occ.IsEmpty() {
		t.Fatalf("expected captured pawn removed from e5, got %+v", occ)
	}
}

func TestLegalRejectsMoveThatExposesKingToCheck(t *testing.T) {
	// White king e1, white rook e2 pinned by black rook e8; black king a8.
	pos := mustParseFEN(t, "k3r3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	cand := Candidate{From: mustSq(t, "e2"), To: mustSq(t, "d2"), Type: Normal, UnclickIndex: NoUnclickIndex}
	if err := Legal(pos, cand); err == nil {
		t.Fatal("expected pinned rook move off the e-file to be illegal")
	}
	along := Candidate{From: mustSq(t, "e2"), To: mustSq(t, "e5"), Type: Normal, UnclickIndex: NoUnclickIndex}
	if err := Legal(pos, along); err != nil {
		t.Fatalf("expected moving along the pin line to stay legal: %v", err)
	}
}

func TestLegalRejectsGeometricallyImpossibleMove(t *testing.T) {
	pos := model.NewPosition()
	// A knight cannot move like a rook, no matter what Type label a
	// directly-submitted candidate claims.
	cand := Candidate{From: mustSq(t, "b1"), To: mustSq(t, "b4"), Type: Normal, UnclickIndex: NoUnclickIndex}
	if err := Legal(pos, cand); err == nil {
		t.Fatal("expected an ungenerated knight move to be rejected")
	}
	// A king cannot teleport two files over outside of castling.
	kingPos := mustParseFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	teleport := Candidate{From: mustSq(t, "e1"), To: mustSq(t, "g1"), Type: Normal, UnclickIndex: NoUnclickIndex}
	if err := Legal(kingPos, teleport); err == nil {
		t.Fatal("expected a non-castling king teleport to be rejected")
	}
}

func TestKlikCannotTargetAKing(t *testing.T) {
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/K3Q3 w - - 0 1")
	cands := GenerateSquareMoves(pos, mustSq(t, "e1"))
	if _, ok := findCandidate(cands, mustSq(t, "a1"), Klik); ok {
		t.Fatal("queen should never generate a Klik candidate onto a friendly king")
	}
	fabricated := Candidate{From: mustSq(t, "e1"), To: mustSq(t, "a1"), Type: Klik, UnclickIndex: NoUnclickIndex}
	if err := Legal(pos, fabricated); err == nil {
		t.Fatal("expected a fabricated Klik onto a king to be rejected")
	}
}

func TestCombinedStackMovesTogetherViaEitherPieceGeometry(t *testing.T) {
	pos := mustParseFEN(t, "k7/8/8/8/3(RB)4/8/8/4K3 w - - 0 1")
	d4 := mustSq(t, "d4")
	cands := GenerateSquareMoves(pos, d4)
	c, ok := findCandidate(cands, mustSq(t, "a4"), Normal)
	if !ok {
		t.Fatalf("missing combined Normal candidate reached via the rook's own geometry, got %+v", cands)
	}
	if c.UnclickIndex != NoUnclickIndex {
		t.Fatalf("expected a whole-stack transport with no unclick index, got %d", c.UnclickIndex)
	}
	if _, err := Commit(pos, c); err != nil {
		t.Fatalf("Commit combined move: %v", err)
	}
	a4 := mustSq(t, "a4")
	occ := pos.Board.At(a4)
	if !occ.IsStack() {
		t.Fatalf("expected a4 to hold the transported stack, got %+v", occ)
	}
	if !pos.Board.At(d4).IsEmpty() {
		t.Fatal("expected d4 vacated after combined transport")
	}
}

func TestCombinedEnPassantCollidesIntoChoice(t *testing.T) {
	pos := mustParseFEN(t, "k7/8/8/1p(QP)5/8/8/8/7K w - b6 0 1")
	c5 := mustSq(t, "c5")
	b6 := mustSq(t, "b6")
	cands := GenerateSquareMoves(pos, c5)
	if _, ok := findCandidate(cands, b6, EnPassantChoice); !ok {
		t.Fatalf("expected the queen's Normal reach and the pawn's EnPassant reach to collapse into an EnPassantChoice, got %+v", cands)
	}
	if _, ok := findCandidate(cands, b6, Normal); ok {
		t.Fatal("Normal must not survive alongside the collapsed Choice")
	}
	if _, ok := findCandidate(cands, b6, EnPassant); ok {
		t.Fatal("EnPassant must not survive alongside the collapsed Choice")
	}

	asQueen := Candidate{From: c5, To: b6, Type: Normal, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}
	if err := Legal(pos, asQueen); err != nil {
		t.Fatalf("resubmitting the queen's combined Normal move should be legal: %v", err)
	}

	asPawnCapture := Candidate{From: c5, To: b6, Type: EnPassant, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}
	clone := pos.Clone()
	if _, err := Commit(clone, asPawnCapture); err != nil {
		t.Fatalf("resubmitting the pawn's combined EnPassant capture should be legal: %v", err)
	}
	if occ := clone.Board.At(mustSq(t, "b5")); !occ.IsEmpty() {
		t.Fatal("expected the captured black pawn removed from b5")
	}
	if occ := clone.Board.At(b6); !occ.IsStack() {
		t.Fatalf("expected the Queen+Pawn stack to land together on b6, got %+v", occ)
	}
}

func TestCombinedPromotionCarriesNonPawnCompanion(t *testing.T) {
	pos := mustParseFEN(t, "k7/4(RP)3/8/8/8/8/8/4K3 w - - 0 1")
	e7 := mustSq(t, "e7")
	e8 := mustSq(t, "e8")
	cand := Candidate{From: e7, To: e8, Type: Normal, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}
	if !NeedsPromotion(pos, cand) {
		t.Fatal("expected the pawn's own push to the back rank to require a promotion choice")
	}
	pending, err := Commit(pos, cand)
	if err != nil {
		t.Fatalf("Commit without promotion: %v", err)
	}
	if !pending {
		t.Fatal("expected Commit to report a pending promotion")
	}
	if !pos.Board.At(e7).IsStack() {
		t.Fatal("a pending promotion must not mutate the board")
	}
	cand.Promotion = model.Queen
	if pending, err := Commit(pos, cand); err != nil || pending {
		t.Fatalf("Commit with Promotion=Queen: pending=%v err=%v", pending, err)
	}
	occ := pos.Board.At(e8)
	if !occ.IsStack() {
		t.Fatalf("expected the rook to travel along with the promoted pawn, got %+v", occ)
	}
	var sawRook, sawQueen bool
	for _, p := range occ {
		if p.Kind == model.Rook {
			sawRook = true
		}
		if p.Kind == model.Queen && p.PawnID == model.NoPawnID {
			sawQueen = true
		}
	}
	if !sawRook || !sawQueen {
		t.Fatalf("expected a (Rook, Queen) stack on e8, got %+v", occ)
	}
}

func TestCombinedCannotCarryPawnToPromotionViaCompanionGeometry(t *testing.T) {
	pos := mustParseFEN(t, "k7/3p4/3(BP)4/8/8/8/8/4K3 w - - 0 1")
	d6 := mustSq(t, "d6")
	cands := GenerateSquareMoves(pos, d6)
	if _, ok := findCandidate(cands, mustSq(t, "f8"), Normal); ok {
		t.Fatal("bishop's own diagonal must not carry the stacked pawn onto the promotion rank")
	}
	if _, ok := findCandidate(cands, mustSq(t, "e7"), Normal); !ok {
		t.Fatal("bishop's ordinary combined move to a non-promotion square should still be offered")
	}
	fabricated := Candidate{From: d6, To: mustSq(t, "f8"), Type: Normal, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}
	if err := Legal(pos, fabricated); err == nil {
		t.Fatal("expected a fabricated carry-to-promotion combined move to be rejected")
	}
}

func TestHasAnyLegalMoveDetectsCheckmate(t *testing.T) {
	// Classic back-rank mate: white king h1 boxed in by its own pawns,
	// black rook on e1 delivers mate along the back rank.
	pos := mustParseFEN(t, "6k1/8/8/8/8/8/5PPP/4r2K b - - 0 1")
	if !IsInCheck(pos, model.White) {
		t.Fatal("expected white to be in check")
	}
	if HasAnyLegalMove(pos, model.White) {
		t.Fatal("expected no legal move for white (checkmate)")
	}
}
