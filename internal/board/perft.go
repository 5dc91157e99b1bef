package board

// Perft counts the leaf nodes of the legal move tree depth plies deep.
func (p *Position) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.LegalMoves()
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		retract := p.Apply(m)
		nodes += p.Perft(depth - 1)
		retract()
	}
	return nodes
}

// Divide is Perft split by root move.
func (p *Position) Divide(depth int) map[Move]int64 {
	out := make(map[Move]int64)
	if depth < 1 {
		return out
	}
	for _, m := range p.LegalMoves() {
		retract := p.Apply(m)
		out[m] = p.Perft(depth - 1)
		retract()
	}
	return out
}
