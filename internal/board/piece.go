package board

// Color is a side: White or Black.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

// Other returns the opposing side.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return "NoColor"
}

// PieceType is one of the six piece kinds, in the fixed order the engine
// relies on for its table indices.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// Letter is the upper-case SAN letter, empty for pawns.
func (pt PieceType) Letter() string {
	switch pt {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return ""
}

// Piece packs a type and a color as type + 6*color, giving 0..11.
type Piece uint8

// NoPiece marks an empty square.
const NoPiece Piece = 12

const fenPieces = "PNBRQKpnbrqk"

// NewPiece combines a type and color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + 6*Piece(c)
}

// Type returns NoPieceType for NoPiece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns NoColor for NoPiece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String is the FEN letter, upper case for White.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return fenPieces[p : p+1]
}

// PieceFromChar maps a FEN letter to a piece.
func PieceFromChar(c byte) Piece {
	for i := 0; i < len(fenPieces); i++ {
		if fenPieces[i] == c {
			return Piece(i)
		}
	}
	return NoPiece
}
