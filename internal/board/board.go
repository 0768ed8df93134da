// Package board is the puzzle collaborator: pure board generation and move
// validation, with no knowledge of rooms or connections.
package board

import (
	"fmt"
	"math/rand"
	"sync"
)

// Cell contents. Non-negative values are neighbor mine counts.
const Mine = -1

// Board holds a generated grid and its solution. The full cell grid stays
// server-side; clients receive only the View.
type Board struct {
	Difficulty string
	Width      int
	Height     int
	MineCount  int
	Cells      [][]int // Cells[row][col]
}

// View is the client-facing description broadcast in game_start payloads.
// Mine positions are never included.
type View struct {
	Difficulty string `json:"difficulty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MineCount  int    `json:"mine_count"`
}

func (b *Board) View() View {
	return View{
		Difficulty: b.Difficulty,
		Width:      b.Width,
		Height:     b.Height,
		MineCount:  b.MineCount,
	}
}

// InBounds reports whether (row, col) addresses a cell on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Height && col >= 0 && col < b.Width
}

// ValidateMove reports whether revealing (row, col) is a safe move:
// the cell must be on the board and not hold a mine.
func (b *Board) ValidateMove(row, col int) bool {
	return b.InBounds(row, col) && b.Cells[row][col] != Mine
}

// Generator produces fresh boards for a difficulty level.
type Generator interface {
	Generate(difficulty string) (*Board, error)
}

type dimensions struct {
	width, height, mines int
}

var difficulties = map[string]dimensions{
	"easy":   {9, 9, 10},
	"medium": {16, 16, 40},
	"hard":   {30, 16, 99},
}

// Minesweeper generates classic minesweeper grids: mines placed uniformly at
// random, every other cell holding its neighbor mine count.
type Minesweeper struct {
	mu  sync.Mutex // Generate is called from concurrent room operations
	rng *rand.Rand
}

func NewMinesweeper(seed int64) *Minesweeper {
	return &Minesweeper{rng: rand.New(rand.NewSource(seed))}
}

func (g *Minesweeper) Generate(difficulty string) (*Board, error) {
	dims, ok := difficulties[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cells := make([][]int, dims.height)
	for row := range cells {
		cells[row] = make([]int, dims.width)
	}

	placed := 0
	for placed < dims.mines {
		row := g.rng.Intn(dims.height)
		col := g.rng.Intn(dims.width)
		if cells[row][col] == Mine {
			continue
		}
		cells[row][col] = Mine
		placed++
	}

	for row := range cells {
		for col := range cells[row] {
			if cells[row][col] == Mine {
				continue
			}
			cells[row][col] = countNeighborMines(cells, row, col)
		}
	}

	return &Board{
		Difficulty: difficulty,
		Width:      dims.width,
		Height:     dims.height,
		MineCount:  dims.mines,
		Cells:      cells,
	}, nil
}

func countNeighborMines(cells [][]int, row, col int) int {
	count := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= len(cells) || c < 0 || c >= len(cells[r]) {
				continue
			}
			if cells[r][c] == Mine {
				count++
			}
		}
	}
	return count
}
