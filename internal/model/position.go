package model

// CastleSide is kingside or queenside.
type CastleSide int

const (
	Kingside CastleSide = iota
	Queenside
)

// CastleRight names one of the four castling rights.
type CastleRight struct {
	Color Color
	Side  CastleSide
}

// HistoryEntry is one recorded ply: its notation token and the mover.
type HistoryEntry struct {
	Notation string
	Mover    Color
}

// MoveEffect is the bookkeeping payload passed to Position.Apply once a
// candidate has been mechanically applied to the board. Apply is total —
// it never rejects — and is the only place side-to-move flips and the
// en-passant target is rewritten (spec §4.1, §4.4).
type MoveEffect struct {
	Mover          Color
	PawnMoved      bool   // resets the halfmove clock
	Capture        bool   // resets the halfmove clock
	NewEnPassant   *Sq    // nil unless this ply was a straight double pawn push
	PawnIDsTouched []int8 // pawn identities in the moving unit; added to MovedPawns
	ClearCastling  []CastleRight
	Notation       string
}

// Position is a Board plus the side-to-move, castling rights, en-passant
// target, moved-pawn set and move history. A Session owns exactly one
// Position and mutates it only through rules.Commit, which changes the
// board and then calls Apply.
type Position struct {
	Board      *Board
	SideToMove Color
	Castling   [2][2]bool // [Color][CastleSide]
	EnPassant  *Sq
	MovedPawns [8]bool
	Halfmove   int
	Fullmove   int
	History    []HistoryEntry
}

// NewPosition returns the standard Klikschaak starting position.
func NewPosition() *Position {
	return &Position{
		Board:      NewBoard(),
		SideToMove: White,
		Castling:   [2][2]bool{{true, true}, {true, true}},
		Fullmove:   1,
	}
}

// Clone returns a deep, independent copy of the position, used both for
// the legality filter's scratch board and for session snapshots.
func (p *Position) Clone() *Position {
	out := &Position{
		Board:      p.Board.Clone(),
		SideToMove: p.SideToMove,
		Castling:   p.Castling,
		MovedPawns: p.MovedPawns,
		Halfmove:   p.Halfmove,
		Fullmove:   p.Fullmove,
	}
	if p.EnPassant != nil {
		ep := *p.EnPassant
		out.EnPassant = &ep
	}
	out.History = make([]HistoryEntry, len(p.History))
	copy(out.History, p.History)
	return out
}

// Apply performs the post-move bookkeeping described in spec §4.4: flips
// side to move, clears then conditionally re-sets the en-passant target,
// clears castling rights named in the effect, marks pawn identities
// moved, updates the halfmove/fullmove counters and appends notation to
// history. It never rejects.
func (p *Position) Apply(eff MoveEffect) {
	p.History = append(p.History, HistoryEntry{Notation: eff.Notation, Mover: eff.Mover})

	for _, id := range eff.PawnIDsTouched {
		if id >= 0 && id < 8 {
			p.MovedPawns[id] = true
		}
	}
	for _, r := range eff.ClearCastling {
		p.Castling[r.Color][r.Side] = false
	}

	p.EnPassant = eff.NewEnPassant

	if eff.PawnMoved || eff.Capture {
		p.Halfmove = 0
	} else {
		p.Halfmove++
	}

	if p.SideToMove == Black {
		p.Fullmove++
	}
	p.SideToMove = p.SideToMove.Opposite()
}

// Pieces returns every (square, piece) pair matching color and kind.
// Stacked squares yield one entry per matching occupant. Pass NoKind to
// match any kind.
func (p *Position) Pieces(color Color, kind PieceKind) []struct {
	Sq    Sq
	Piece Piece
} {
	var out []struct {
		Sq    Sq
		Piece Piece
	}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			sq := Sq{Rank: r, File: f}
			for _, piece := range p.Board.At(sq) {
				if piece.Color != color {
					continue
				}
				if kind != NoKind && piece.Kind != kind {
					continue
				}
				out = append(out, struct {
					Sq    Sq
					Piece Piece
				}{sq, piece})
			}
		}
	}
	return out
}

// String renders an ASCII board, stacked squares shown as bottom-then-top
// glyphs, grounded on original_source/board.py's __str__.
func (p *Position) String() string {
	out := make([]byte, 0, 256)
	out = append(out, "  +-----------------+\n"...)
	for r := 7; r >= 0; r-- {
		out = append(out, byte('1'+r), ' ', '|', ' ')
		for f := 0; f < 8; f++ {
			sq := p.Board.At(Sq{Rank: r, File: f})
			switch len(sq) {
			case 0:
				out = append(out, '.', ' ')
			case 1:
				out = append(out, sq[0].Char(), ' ')
			default:
				bottom, _ := sq.Bottom()
				top, _ := sq.Top()
				out = append(out, bottom.Char(), top.Char())
			}
		}
		out = append(out, '|', '\n')
	}
	out = append(out, "  +-----------------+\n"...)
	out = append(out, "    a b c d e f g h\n"...)
	return string(out)
}
