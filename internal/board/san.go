package board

import (
	"fmt"
	"strings"
)

// SAN renders m in Standard Algebraic Notation for this position.
// m must be legal here.
func (p *Position) SAN(m Move) string {
	san := p.sanBody(m)

	undo := p.MakeMove(m)
	switch {
	case p.IsCheckmate():
		san += "#"
	case p.InCheck():
		san += "+"
	}
	p.UnmakeMove(m, undo)
	return san
}

func (p *Position) sanBody(m Move) string {
	if m.IsCastling() {
		if m.To() > m.From() {
			return "O-O"
		}
		return "O-O-O"
	}

	from, to := m.From(), m.To()
	pt := p.PieceAt(from).Type()
	capture := m.IsCapture(p)

	var sb strings.Builder
	if pt == Pawn {
		if capture {
			sb.WriteByte(byte('a' + from.File()))
		}
	} else {
		sb.WriteString(pt.Letter())
		sb.WriteString(p.disambiguation(m, pt))
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(to.String())
	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteString(m.Promotion().Letter())
	}
	return sb.String()
}

// disambiguation adds the origin file, rank or both when another piece of
// the same kind can also reach the destination.
func (p *Position) disambiguation(m Move, pt PieceType) string {
	from := m.From()
	var sameFile, sameRank, ambiguous bool
	for _, other := range p.LegalMoves() {
		of := other.From()
		if other.To() != m.To() || of == from || p.PieceAt(of).Type() != pt {
			continue
		}
		ambiguous = true
		sameFile = sameFile || of.File() == from.File()
		sameRank = sameRank || of.Rank() == from.Rank()
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return from.String()[:1]
	case !sameRank:
		return from.String()[1:]
	}
	return from.String()
}

// ParseMove accepts UCI ("e2e4", "e7e8q") or SAN ("Nf3", "exd5", "O-O",
// "e8=Q+") and returns the matching legal move. A UCI pawn move to the last
// rank with no promotion letter promotes to a queen.
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	legal := p.LegalMoves()

	if m, ok := matchUCI(s, legal); ok {
		return m, nil
	}

	want := normalizeSAN(s)
	for _, m := range legal {
		if normalizeSAN(p.sanBody(m)) == want {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
}

func matchUCI(s string, legal []Move) (Move, bool) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, false
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, false
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, false
	}
	promo := Queen
	if len(s) == 5 {
		i := strings.IndexByte("nbrq", s[4]|0x20)
		if i < 0 {
			return NoMove, false
		}
		promo = Knight + PieceType(i)
	}
	for _, m := range legal {
		if m.From() != from || m.To() != to {
			continue
		}
		if !m.IsPromotion() || m.Promotion() == promo {
			return m, true
		}
	}
	return NoMove, false
}

func normalizeSAN(s string) string {
	s = strings.TrimRight(s, "+#!?")
	s = strings.ReplaceAll(s, "0", "O")
	return strings.ReplaceAll(s, "=", "")
}
