package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FEN implements the position-string grammar of spec §6, extended with
// two trailing fields so pawn identity round-trips exactly (P2): a
// comma-separated list of moved pawn-identity tags, and a comma-separated
// list of the PawnID of every pawn on the board in board-string traversal
// order (rank 8 down to rank 1, file a to h, stack bottom then top).
// Plain FEN consumers may ignore both trailing fields.
//
//	<board> <side> <castling> <ep> <halfmove> <fullmove> <movedpawns> <pawnids>
func (p *Position) FEN() string {
	var sb strings.Builder

	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			sq := p.Board.At(Sq{Rank: r, File: f})
			if sq.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			if sq.IsStack() {
				sb.WriteByte('(')
				for _, piece := range sq {
					sb.WriteByte(piece.Char())
				}
				sb.WriteByte(')')
			} else {
				sb.WriteByte(sq[0].Char())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	castling := ""
	if p.Castling[White][Kingside] {
		castling += "K"
	}
	if p.Castling[White][Queenside] {
		castling += "Q"
	}
	if p.Castling[Black][Kingside] {
		castling += "k"
	}
	if p.Castling[Black][Queenside] {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	sb.WriteString(castling)

	sb.WriteByte(' ')
	if p.EnPassant != nil {
		sb.WriteString(p.EnPassant.Name())
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", p.Halfmove, p.Fullmove)

	sb.WriteByte(' ')
	var moved []string
	for id := 0; id < 8; id++ {
		if p.MovedPawns[id] {
			moved = append(moved, strconv.Itoa(id))
		}
	}
	if len(moved) == 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteString(strings.Join(moved, ","))
	}

	sb.WriteByte(' ')
	var ids []string
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			sq := p.Board.At(Sq{Rank: r, File: f})
			for _, piece := range sq {
				if piece.Kind == Pawn {
					ids = append(ids, strconv.Itoa(int(piece.PawnID)))
				}
			}
		}
	}
	if len(ids) == 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteString(strings.Join(ids, ","))
	}

	return sb.String()
}

// ParseFEN parses the position-string grammar of spec §6 (accepting both
// the plain 6-field form and this implementation's 8-field extension).
// Non-goal: any PGN/FEN format beyond the position string.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: need at least 4 fields, got %d", len(fields))}
	}

	pos := &Position{Board: &Board{}, Fullmove: 1}

	// Board, with pawn identities filled in afterward from field 7 (or
	// defaulted to file-of-origin if absent).
	rank, file := 7, 0
	boardStr := fields[0]
	type pawnSlot struct {
		sq  Sq
		idx int // index of the pawn within its square
	}
	var pawnSquares []pawnSlot
	for i := 0; i < len(boardStr); i++ {
		c := boardStr[i]
		switch {
		case c == '/':
			rank--
			file = 0
		case c >= '1' && c <= '8':
			file += int(c - '0')
		case c == '(':
			j := i + 1
			var stack Square
			for j < len(boardStr) && boardStr[j] != ')' {
				piece, ok := pieceFromChar(boardStr[j])
				if !ok {
					return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad stack glyph %q", boardStr[j])}
				}
				if piece.Kind == Pawn {
					pawnSquares = append(pawnSquares, pawnSlot{Sq{Rank: rank, File: file}, len(stack)})
				}
				stack = append(stack, piece)
				j++
			}
			if j >= len(boardStr) {
				return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: unterminated stack group")}
			}
			if len(stack) > 2 {
				return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: stack of more than 2 pieces")}
			}
			pos.Board.Set(Sq{Rank: rank, File: file}, stack)
			file++
			i = j
		default:
			piece, ok := pieceFromChar(c)
			if !ok {
				return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad piece glyph %q", c)}
			}
			if piece.Kind == Pawn {
				pawnSquares = append(pawnSquares, pawnSlot{Sq{Rank: rank, File: file}, 0})
			}
			pos.Board.Set(Sq{Rank: rank, File: file}, Square{piece})
			file++
		}
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad side-to-move %q", fields[1])}
	}

	for _, c := range fields[2] {
		switch c {
		case 'K':
			pos.Castling[White][Kingside] = true
		case 'Q':
			pos.Castling[White][Queenside] = true
		case 'k':
			pos.Castling[Black][Kingside] = true
		case 'q':
			pos.Castling[Black][Queenside] = true
		case '-':
		default:
			return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad castling field %q", fields[2])}
		}
	}

	if fields[3] != "-" {
		sq, ok := ParseSq(fields[3])
		if !ok {
			return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad en-passant square %q", fields[3])}
		}
		pos.EnPassant = &sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad halfmove clock: %w", err)}
		}
		pos.Halfmove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil {
			return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad fullmove number: %w", err)}
		}
		pos.Fullmove = n
	}

	var movedIDs []int
	if len(fields) > 6 && fields[6] != "-" {
		for _, tok := range strings.Split(fields[6], ",") {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n > 7 {
				return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad moved-pawn id %q", tok)}
			}
			pos.MovedPawns[n] = true
			movedIDs = append(movedIDs, n)
		}
	}

	if len(fields) > 7 && fields[7] != "-" {
		idToks := strings.Split(fields[7], ",")
		if len(idToks) != len(pawnSquares) {
			return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: pawnids count %d does not match pawn count %d", len(idToks), len(pawnSquares))}
		}
		for i, tok := range idToks {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 || n > 7 {
				return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: bad pawnid %q", tok)}
			}
			slot := pawnSquares[i]
			pos.Board.At(slot.sq)[slot.idx].PawnID = int8(n)
		}
	} else {
		// No identity extension: default every pawn's identity to its
		// current file of origin. This only round-trips exactly for
		// positions where no pawn has ever changed file, which is the
		// best a 6-field plain FEN can do (documented per spec §6/P2).
		for _, slot := range pawnSquares {
			pos.Board.At(slot.sq)[slot.idx].PawnID = int8(slot.sq.File)
		}
	}

	if kingCount(pos, White) != 1 || kingCount(pos, Black) != 1 {
		return nil, &Error{Kind: ErrParse, Err: fmt.Errorf("fen: each side must have exactly one king")}
	}

	return pos, nil
}

func kingCount(p *Position, color Color) int {
	n := 0
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			for _, piece := range p.Board.At(Sq{Rank: r, File: f}) {
				if piece.Kind == King && piece.Color == color {
					n++
				}
			}
		}
	}
	return n
}
