package board

// Move packs a move into 16 bits:
// bits 0-5 origin, bits 6-11 destination, bits 12-13 promotion piece
// (0=Knight .. 3=Queen), bits 14-15 flag.
type Move uint16

const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove is the absent decision. It never appears in a legal move list.
const NoMove Move = 0

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to) | Move(promo-Knight)<<12 | Move(FlagPromotion)
}

func NewEnPassant(from, to Square) Move {
	return NewMove(from, to) | Move(FlagEnPassant)
}

func NewCastling(from, to Square) Move {
	return NewMove(from, to) | Move(FlagCastling)
}

func (m Move) From() Square { return Square(m & 0x3F) }
func (m Move) To() Square   { return Square((m >> 6) & 0x3F) }
func (m Move) Flag() uint16 { return uint16(m) & 0xC000 }

// Promotion is only meaningful when IsPromotion is true.
func (m Move) Promotion() PieceType {
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool { return m.Flag() == FlagPromotion }
func (m Move) IsCastling() bool  { return m.Flag() == FlagCastling }
func (m Move) IsEnPassant() bool { return m.Flag() == FlagEnPassant }

// IsCapture must be asked before the move is applied.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || pos.AllOccupied.Has(m.To())
}

// String returns UCI long algebraic notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion()-Knight])
	}
	return s
}

// UndoInfo is the state MakeMove overwrites and UnmakeMove restores.
type UndoInfo struct {
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	Key            uint64
	Captured       Piece
}
