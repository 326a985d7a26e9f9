// Package rules implements the attack/check oracle (C2), the pseudo-move
// generator (C3) and the legality filter & executor (C4) of the
// Klikschaak rules engine.
package rules

import (
	"fmt"
	"strings"

	"github.com/TJOffringa/Klikschaak/internal/model"
)

// MoveType is the closed move-type enumeration of spec §4.3.
type MoveType int

const (
	Normal MoveType = iota
	Klik
	Unklik
	UnklikKlik
	EnPassant
	EnPassantUnklik
	EnPassantChoice
	CastleK
	CastleQ
	CastleKKlik
	CastleQKlik
	CastleKUnklikKlik
	CastleQUnklikKlik
	CastleKChoice
	CastleQChoice
	CastleKBoth
	CastleQBoth
)

func (t MoveType) String() string {
	switch t {
	case Normal:
		return "Normal"
	case Klik:
		return "Klik"
	case Unklik:
		return "Unklik"
	case UnklikKlik:
		return "UnklikKlik"
	case EnPassant:
		return "EnPassant"
	case EnPassantUnklik:
		return "EnPassantUnklik"
	case EnPassantChoice:
		return "EnPassantChoice"
	case CastleK:
		return "CastleK"
	case CastleQ:
		return "CastleQ"
	case CastleKKlik:
		return "CastleKKlik"
	case CastleQKlik:
		return "CastleQKlik"
	case CastleKUnklikKlik:
		return "CastleKUnklikKlik"
	case CastleQUnklikKlik:
		return "CastleQUnklikKlik"
	case CastleKChoice:
		return "CastleKChoice"
	case CastleQChoice:
		return "CastleQChoice"
	case CastleKBoth:
		return "CastleKBoth"
	case CastleQBoth:
		return "CastleQBoth"
	default:
		return "Unknown"
	}
}

// IsChoice reports whether the type is a generation-time placeholder that
// requires the caller to resolve it into a concrete, committable type
// before Commit will accept it (spec §4.3's "Castling choice" /
// EnPassantChoice branches).
func (t MoveType) IsChoice() bool {
	return t == EnPassantChoice || t == CastleKChoice || t == CastleQChoice
}

// NoUnclickIndex marks a Candidate that does not select one piece out of
// a stack (whole-square moves, single-occupant moves).
const NoUnclickIndex = -1

// Candidate is one tagged move produced by the generator: a (from, to,
// type) triple plus the optional unclick index and an optional
// pre-chosen promotion piece (spec §6's move tuple).
type Candidate struct {
	From         model.Sq
	To           model.Sq
	Type         MoveType
	UnclickIndex int // 0 or 1 for Unklik/UnklikKlik/EnPassantUnklik, else NoUnclickIndex
	Promotion    model.PieceKind
}

// Token renders the compact inter-process move string of spec §6:
// <from><to> plus suffix.
func (c Candidate) Token() string {
	var sb strings.Builder
	sb.WriteString(c.From.Name())
	sb.WriteString(c.To.Name())
	if c.Promotion != model.NoKind {
		sb.WriteString(strings.ToLower(promoLetter(c.Promotion)))
	}
	switch c.Type {
	case Klik:
		sb.WriteByte('k')
	case Unklik, EnPassantUnklik:
		fmt.Fprintf(&sb, "u%d", c.UnclickIndex)
	case UnklikKlik:
		fmt.Fprintf(&sb, "U%d", c.UnclickIndex)
	case CastleKChoice:
		sb.WriteString(":castle-k-choice")
	case CastleQChoice:
		sb.WriteString(":castle-q-choice")
	}
	return sb.String()
}

func promoLetter(k model.PieceKind) string {
	switch k {
	case model.Queen:
		return "q"
	case model.Rook:
		return "r"
	case model.Bishop:
		return "b"
	case model.Knight:
		return "n"
	default:
		return ""
	}
}

// ParseMoveToken parses the compact move-string grammar of spec §6. It
// does not validate the move against any position — callers still run it
// through Legal before committing.
func ParseMoveToken(tok string) (Candidate, error) {
	orig := tok
	var choiceSuffix string
	if idx := strings.Index(tok, ":"); idx >= 0 {
		choiceSuffix = tok[idx:]
		tok = tok[:idx]
	}
	if len(tok) < 4 {
		return Candidate{}, model.NewError(model.ErrParse, fmt.Errorf("move token %q too short", orig))
	}
	from, ok := model.ParseSq(tok[0:2])
	if !ok {
		return Candidate{}, model.NewError(model.ErrParse, fmt.Errorf("move token %q: bad source square", orig))
	}
	to, ok := model.ParseSq(tok[2:4])
	if !ok {
		return Candidate{}, model.NewError(model.ErrParse, fmt.Errorf("move token %q: bad destination square", orig))
	}
	rest := tok[4:]

	c := Candidate{From: from, To: to, Type: Normal, UnclickIndex: NoUnclickIndex, Promotion: model.NoKind}

	if len(rest) > 0 {
		switch rest[0] {
		case 'q':
			c.Promotion = model.Queen
			rest = rest[1:]
		case 'r':
			c.Promotion = model.Rook
			rest = rest[1:]
		case 'b':
			c.Promotion = model.Bishop
			rest = rest[1:]
		case 'n':
			c.Promotion = model.Knight
			rest = rest[1:]
		}
	}

	switch {
	case rest == "":
		// Normal, EnPassant or castling: parsed as Normal here;
		// session.Session.Submit picks the concrete type from the
		// position, per the grammar table.
	case rest == "k":
		c.Type = Klik
	case len(rest) == 2 && rest[0] == 'u' && (rest[1] == '0' || rest[1] == '1'):
		c.Type = Unklik
		c.UnclickIndex = int(rest[1] - '0')
	case len(rest) == 2 && rest[0] == 'U' && (rest[1] == '0' || rest[1] == '1'):
		c.Type = UnklikKlik
		c.UnclickIndex = int(rest[1] - '0')
	default:
		return Candidate{}, model.NewError(model.ErrParse, fmt.Errorf("move token %q: bad suffix %q", orig, rest))
	}

	switch choiceSuffix {
	case ":castle-k-choice":
		c.Type = CastleKChoice
	case ":castle-q-choice":
		c.Type = CastleQChoice
	case "":
	default:
		return Candidate{}, model.NewError(model.ErrParse, fmt.Errorf("move token %q: bad choice suffix %q", orig, choiceSuffix))
	}

	return c, nil
}
