// Package session implements C5: the concurrency-safe game session that
// wraps a Position with player identity, turn enforcement and termination
// detection, grounded on the teacher's Game/GameState shape in
// internal/model/game.go.
package session

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/TJOffringa/Klikschaak/internal/model"
	"github.com/TJOffringa/Klikschaak/internal/rules"
)

// TerminalState is the closed set of ways a game can end (spec §5).
type TerminalState int

const (
	Ongoing TerminalState = iota
	Checkmate
	Stalemate
	DrawAgreed
	Resigned
)

func (t TerminalState) String() string {
	switch t {
	case Checkmate:
		return "Checkmate"
	case Stalemate:
		return "Stalemate"
	case DrawAgreed:
		return "DrawAgreed"
	case Resigned:
		return "Resigned"
	default:
		return "Ongoing"
	}
}

// PlayerSlot identifies the human or engine occupying one color.
type PlayerSlot struct {
	PlayerID string
	Color    model.Color
}

// Variant is reserved for future rule sets; this codebase implements only
// Standard, matching spec.md's own non-goal of supporting more than one.
type Variant int

const (
	Standard Variant = iota
)

// Config carries the per-session defaults that would otherwise be
// hard-coded, grounded on the teacher's inline construction of a Game's
// defaults (e.g. its Clock literal) rather than a config file or env var.
type Config struct {
	// AutoPromoteToQueen resolves a pending promotion to Queen immediately
	// instead of surfacing it to the caller (spec §4.4's "if the session
	// is configured with auto_promote_to_queen").
	AutoPromoteToQueen bool
	Variant            Variant
}

// DefaultConfig mirrors a fresh board's obvious defaults: promotion choice
// is surfaced, and the only variant implemented is Standard.
func DefaultConfig() Config {
	return Config{AutoPromoteToQueen: false, Variant: Standard}
}

// Snapshot is a read-only, race-free view of a session at one instant.
type Snapshot struct {
	FEN         string
	SideToMove  model.Color
	State       TerminalState
	WinnerColor model.Color
	HasWinner   bool
	History     []model.HistoryEntry
	Board       string
}

// Session owns one Position plus the bookkeeping around it. Every public
// method takes the Session's own lock; it never calls back into a
// Manager while holding it, so Manager and Session locks never nest.
type Session struct {
	mu        sync.Mutex
	id        string
	position  *model.Position
	players   [2]PlayerSlot // indexed by model.Color
	state     TerminalState
	winner    model.Color
	hasWinner bool
	drawOffer *model.Color // color that offered a draw, awaiting response
	config    Config
}

// New starts a fresh session with the given player IDs assigned white and
// black per spec §5's "two friendly slots" setup, using DefaultConfig.
func New(id, whiteID, blackID string) *Session {
	return NewWithConfig(id, whiteID, blackID, DefaultConfig())
}

// NewWithConfig is New with an explicit Config, e.g. for a session that
// auto-resolves promotion to Queen.
func NewWithConfig(id, whiteID, blackID string, cfg Config) *Session {
	return &Session{
		id:       id,
		position: model.NewPosition(),
		players: [2]PlayerSlot{
			{PlayerID: whiteID, Color: model.White},
			{PlayerID: blackID, Color: model.Black},
		},
		state:  Ongoing,
		config: cfg,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) colorFor(playerID string) (model.Color, bool) {
	for _, p := range s.players {
		if p.PlayerID == playerID {
			return p.Color, true
		}
	}
	return model.White, false
}

// Submit validates and commits one move token on behalf of playerID,
// grounded on the teacher's Game.MakeMove/validateMove/executeMove
// pipeline. It returns (true, nil) when the move needs a resubmission
// with an explicit promotion piece.
func (s *Session) Submit(playerID, token string) (needsPromotion bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ongoing {
		return false, model.NewError(model.ErrGameOver, nil)
	}

	color, ok := s.colorFor(playerID)
	if !ok {
		return false, model.NewError(model.ErrNotYourPiece, nil)
	}
	if color != s.position.SideToMove {
		return false, model.NewError(model.ErrNotYourTurn, nil)
	}

	cand, err := rules.ParseMoveToken(token)
	if err != nil {
		return false, err
	}
	// A suffixless token also names castling and en-passant moves.
	for _, c := range rules.GenerateCastlingMoves(s.position, color) {
		if cand.Type == rules.Normal && c.From == cand.From && c.To == cand.To {
			cand.Type = c.Type
		}
	}
	if ep := s.position.EnPassant; ep != nil && cand.To == *ep && rules.Legal(s.position, cand) != nil {
		if cand.Type == rules.Normal {
			cand.Type = rules.EnPassant
		} else if cand.Type == rules.Unklik {
			cand.Type = rules.EnPassantUnklik
		}
	}

	pending, err := s.commitWithAutoPromote(cand)
	if err != nil {
		return false, err
	}
	if pending {
		return true, nil
	}

	s.detectTermination()
	return false, nil
}

// commitWithAutoPromote is the shared tail of Submit/SubmitCandidate: it
// commits cand, and if the session is configured with AutoPromoteToQueen
// and the commit is only pending on a promotion choice, immediately
// resubmits with Queen instead of surfacing the choice to the caller.
func (s *Session) commitWithAutoPromote(cand rules.Candidate) (pending bool, err error) {
	pending, err = rules.Commit(s.position, cand)
	if err != nil || !pending || !s.config.AutoPromoteToQueen {
		return pending, err
	}
	cand.Promotion = model.Queen
	return rules.Commit(s.position, cand)
}

// SubmitCandidate is the structured-tuple entry point (spec §6) used by
// engine callers that already carry a resolved Candidate, e.g. a promotion
// resubmission or a resolved castling/en-passant Choice.
func (s *Session) SubmitCandidate(playerID string, cand rules.Candidate) (needsPromotion bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ongoing {
		return false, model.NewError(model.ErrGameOver, nil)
	}
	color, ok := s.colorFor(playerID)
	if !ok {
		return false, model.NewError(model.ErrNotYourPiece, nil)
	}
	if color != s.position.SideToMove {
		return false, model.NewError(model.ErrNotYourTurn, nil)
	}

	pending, err := s.commitWithAutoPromote(cand)
	if err != nil {
		return false, err
	}
	if pending {
		return true, nil
	}
	s.detectTermination()
	return false, nil
}

// LegalMoves returns the candidates GenerateSquareMoves offers for the
// square that pass Legal, sorted by destination, for a caller building a
// UI move picker. Castling candidates are not included, and Choice
// candidates are dropped because Legal rejects every Choice type. It does
// not mutate the session.
func (s *Session) LegalMoves(sq model.Sq) []rules.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []rules.Candidate
	for _, c := range rules.GenerateSquareMoves(s.position, sq) {
		if rules.Legal(s.position, c) == nil {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b rules.Candidate) bool {
		if a.To.Rank != b.To.Rank {
			return a.To.Rank < b.To.Rank
		}
		if a.To.File != b.To.File {
			return a.To.File < b.To.File
		}
		return a.Type < b.Type
	})
	return out
}

// detectTermination must be called with the lock held, right after every
// successful commit. Detection is honest: it only declares checkmate or
// stalemate after confirming, via the same generator and legality filter
// used for normal play, that the side to move has no legal move at all
// (spec §5's "detection must be honest").
func (s *Session) detectTermination() {
	toMove := s.position.SideToMove
	if rules.HasAnyLegalMove(s.position, toMove) {
		return
	}
	if rules.IsInCheck(s.position, toMove) {
		s.state = Checkmate
		s.hasWinner = true
		s.winner = toMove.Opposite()
		return
	}
	s.state = Stalemate
}

// Resign ends the game in favor of playerID's opponent.
func (s *Session) Resign(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ongoing {
		return model.NewError(model.ErrGameOver, nil)
	}
	color, ok := s.colorFor(playerID)
	if !ok {
		return model.NewError(model.ErrNotYourPiece, nil)
	}
	s.state = Resigned
	s.hasWinner = true
	s.winner = color.Opposite()
	return nil
}

// OfferDraw records playerID's draw offer, pending the opponent's response.
func (s *Session) OfferDraw(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ongoing {
		return model.NewError(model.ErrGameOver, nil)
	}
	color, ok := s.colorFor(playerID)
	if !ok {
		return model.NewError(model.ErrNotYourPiece, nil)
	}
	s.drawOffer = &color
	return nil
}

// RespondDraw accepts or declines the pending draw offer on behalf of
// playerID, who must not be the offering color.
func (s *Session) RespondDraw(playerID string, accept bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ongoing {
		return model.NewError(model.ErrGameOver, nil)
	}
	if s.drawOffer == nil {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	color, ok := s.colorFor(playerID)
	if !ok {
		return model.NewError(model.ErrNotYourPiece, nil)
	}
	if color == *s.drawOffer {
		return model.NewError(model.ErrIllegalMove, nil)
	}
	if accept {
		s.state = DrawAgreed
	}
	s.drawOffer = nil
	return nil
}

// Snapshot returns a race-free copy of the session's visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		FEN:         s.position.FEN(),
		SideToMove:  s.position.SideToMove,
		State:       s.state,
		WinnerColor: s.winner,
		HasWinner:   s.hasWinner,
		History:     append([]model.HistoryEntry(nil), s.position.History...),
		Board:       s.position.String(),
	}
}
