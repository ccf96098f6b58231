package tictactoe

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Zarux/tictactd/pkg/zobrist"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrOutOfRange  = errors.New("coordinates out of range")
	ErrBadCoords   = errors.New("bad coordinates")
	ErrBadKey      = errors.New("bad board key")
)

const (
	Size  = 3
	Cells = Size * Size
)

type Player int8

const (
	Empty    Player = 0
	Agent    Player = 1
	Opponent Player = 2
)

func (p Player) Mark() string {
	s := " "
	if p == Agent {
		s = "X"
	}

	if p == Opponent {
		s = "O"
	}

	return s
}

func (p Player) Idx() int {
	if p == Agent {
		return 0
	}

	if p == Opponent {
		return 1
	}

	return -1
}

// Other returns the side that moves against p.
func (p Player) Other() Player {
	switch p {
	case Agent:
		return Opponent
	case Opponent:
		return Agent
	}

	return Empty
}

// Action places Player's mark at (Row, Col).
type Action struct {
	Player Player
	Row    int
	Col    int
}

// NoAction is returned when no legal move remains. Applying it is a no-op.
var NoAction = Action{Player: Empty, Row: -1, Col: -1}

func (a Action) IsNone() bool {
	return a.Player == Empty
}

func (a Action) Idx() int {
	return a.Row*Size + a.Col
}

// ActionAt builds the action placing p on cell idx.
func ActionAt(p Player, idx int) Action {
	return Action{Player: p, Row: idx / Size, Col: idx % Size}
}

type Outcome int8

const (
	Undetermined Outcome = -1
	Loss         Outcome = 0
	Win          Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	}

	return "tie"
}

func (o Outcome) Decisive() bool {
	return o == Win || o == Loss
}

// lines lists rows, then columns, then the two diagonals. Outcome relies on this order.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

var zobristKeys = zobrist.Seeded(Cells, 0x7d1c)

type Board struct {
	Cells    [Cells]Player
	LastMove int
	Turn     int

	hash uint64
}

func NewBoard() *Board {
	return &Board{LastMove: -1}
}

// ParseKey rebuilds a board from its canonical key.
func ParseKey(key string) (*Board, error) {
	if len(key) != Cells {
		return nil, fmt.Errorf("%w: %q has %d cells, want %d", ErrBadKey, key, len(key), Cells)
	}

	b := NewBoard()
	for i := range Cells {
		c := key[i]
		if c < '0' || c > '2' {
			return nil, fmt.Errorf("%w: %q: cell %d is %q", ErrBadKey, key, i, c)
		}

		p := Player(c - '0')
		if p == Empty {
			continue
		}

		b.Cells[i] = p
		b.hash ^= zobristKeys[i][p.Idx()]
		b.Turn++
	}

	return b, nil
}

func (b *Board) GetIdx(row, col int) int {
	return row*Size + col
}

func (b *Board) Get(row, col int) Player {
	return b.Cells[b.GetIdx(row, col)]
}

// ApplyAction writes the action's mark. NoAction leaves the board untouched.
func (b *Board) ApplyAction(a Action) error {
	if a.IsNone() {
		return nil
	}

	if a.Row < 0 || a.Row >= Size || a.Col < 0 || a.Col >= Size {
		return fmt.Errorf("%w: row %d col %d", ErrOutOfRange, a.Row, a.Col)
	}

	return b.ApplyMove(a.Idx(), a.Player)
}

func (b *Board) ApplyMove(idx int, p Player) error {
	if idx < 0 || idx >= Cells {
		return fmt.Errorf("%w: cell %d", ErrOutOfRange, idx)
	}

	if p.Idx() < 0 {
		return fmt.Errorf("%w: no mover", ErrIllegalMove)
	}

	if b.Cells[idx] != Empty {
		return fmt.Errorf("%w: cell %d already holds %s", ErrIllegalMove, idx, b.Cells[idx].Mark())
	}

	b.Cells[idx] = p
	b.LastMove = idx
	b.Turn++
	b.hash ^= zobristKeys[idx][p.Idx()]

	return nil
}

func (b *Board) AnyLegalMoves() bool {
	return slices.Contains(b.Cells[:], Empty)
}

// LegalMoves returns the empty cells in row-major order.
func (b *Board) LegalMoves() []int {
	emptyCells := make([]int, 0, Cells)
	for m, p := range b.Cells {
		if p != Empty {
			continue
		}
		emptyCells = append(emptyCells, m)
	}

	return emptyCells
}

// IsTerminal reports a full board only. A completed line does not end play here.
func (b *Board) IsTerminal() bool {
	return !b.AnyLegalMoves()
}

func (b *Board) Outcome() Outcome {
	o, _ := b.scan()
	return o
}

// WinningLine returns the cells of the line that decided Outcome, or nil.
func (b *Board) WinningLine() []int {
	_, line := b.scan()
	return line
}

func (b *Board) scan() (Outcome, []int) {
	for _, l := range lines {
		c0, c1, c2 := b.Cells[l[0]], b.Cells[l[1]], b.Cells[l[2]]
		if c0 != c1 || c1 != c2 {
			continue
		}

		switch c0 {
		case Agent:
			return Win, l[:]
		case Opponent:
			return Loss, l[:]
		}
	}

	return Undetermined, nil
}

// Key is one digit per cell: 0 empty, 1 agent, 2 opponent.
func (b *Board) Key() string {
	var key [Cells]byte
	for i, p := range b.Cells {
		key[i] = byte('0' + p)
	}

	return string(key[:])
}

// KeyAfter is the key the board would have with p placed on idx.
func (b *Board) KeyAfter(idx int, p Player) string {
	var key [Cells]byte
	for i, c := range b.Cells {
		key[i] = byte('0' + c)
	}
	key[idx] = byte('0' + p)

	return string(key[:])
}

func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

func (b *Board) String() string {
	s := strings.Builder{}
	for i, p := range b.Cells {
		s.WriteByte(byte('0' + p))
		if (i+1)%Size == 0 {
			s.WriteByte('\n')
		} else {
			s.WriteByte(' ')
		}
	}

	return s.String()
}

// ParseCoords reads two digits, row then column, e.g. "12".
func ParseCoords(s string) (row, col int, err error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("%w: %q: want two digits, row then column", ErrBadCoords, s)
	}

	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, 0, fmt.Errorf("%w: %q: not a number", ErrBadCoords, s)
	}

	row, col = int(s[0]-'0'), int(s[1]-'0')
	if row >= Size || col >= Size {
		return 0, 0, fmt.Errorf("%w: %q: row and column must be 0-%d", ErrOutOfRange, s, Size-1)
	}

	return row, col, nil
}
