package board

// Termination is the reason a game ended.
type Termination uint8

const (
	NotOver Termination = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	SeventyFiveMoves
	FivefoldRepetition
)

func (t Termination) String() string {
	switch t {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case SeventyFiveMoves:
		return "seventy-five-move rule"
	case FivefoldRepetition:
		return "fivefold repetition"
	}
	return "in progress"
}

// Outcome describes whether the game is over and, for checkmate, who won.
// Winner is NoColor for every draw and for games still in progress.
type Outcome struct {
	Over        bool
	Termination Termination
	Winner      Color
}

// Result is the PGN result token.
func (o Outcome) Result() string {
	switch {
	case !o.Over:
		return "*"
	case o.Winner == White:
		return "1-0"
	case o.Winner == Black:
		return "0-1"
	}
	return "1/2-1/2"
}

// Outcome reports the automatic game end conditions: nothing here needs
// to be claimed by a player.
func (p *Position) Outcome() Outcome {
	hasMoves := p.HasLegalMoves()
	if !hasMoves && p.InCheck() {
		return Outcome{Over: true, Termination: Checkmate, Winner: p.SideToMove.Other()}
	}
	draw := func(t Termination) Outcome {
		return Outcome{Over: true, Termination: t, Winner: NoColor}
	}
	if p.IsInsufficientMaterial() {
		return draw(InsufficientMaterial)
	}
	if !hasMoves {
		return draw(Stalemate)
	}
	if p.HalfMoveClock >= 150 {
		return draw(SeventyFiveMoves)
	}
	if p.Repetitions() >= 5 {
		return draw(FivefoldRepetition)
	}
	return Outcome{Winner: NoColor}
}

func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// Repetitions counts how often the current position occurred since the
// root, including now.
func (p *Position) Repetitions() int {
	n := 0
	for _, k := range p.history {
		if k == p.Key {
			n++
		}
	}
	return n
}

// IsInsufficientMaterial is true when neither side can possibly mate.
func (p *Position) IsInsufficientMaterial() bool {
	return p.hasInsufficientMaterial(White) && p.hasInsufficientMaterial(Black)
}

func (p *Position) hasInsufficientMaterial(c Color) bool {
	ours := p.Pieces[c]
	them := p.Pieces[c.Other()]
	if ours[Pawn]|ours[Rook]|ours[Queen] != 0 {
		return false
	}
	if ours[Knight] != 0 {
		// A lone knight can only mate with help from enemy pieces
		// other than a queen.
		return p.Occupied[c].PopCount() <= 2 &&
			p.Occupied[c.Other()]&^them[King]&^them[Queen] == 0
	}
	if ours[Bishop] != 0 {
		bishops := p.Pieces[White][Bishop] | p.Pieces[Black][Bishop]
		sameColor := bishops&LightSquares == 0 || bishops&^LightSquares == 0
		return sameColor && them[Pawn] == 0 && them[Knight] == 0
	}
	return true
}
