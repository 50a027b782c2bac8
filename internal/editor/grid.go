package editor

import "strings"

// Cell is one screen cell.
type Cell struct {
	Text        string
	HighlightID int64
}

var blankCell = Cell{Text: " "}

// Grid is a rectangular cell matrix addressed by row then column.
type Grid struct {
	ID     int64
	Width  int
	Height int
	Cells  [][]Cell
}

func newGrid(id int64, width, height int) *Grid {
	g := &Grid{ID: id}
	g.resize(width, height)
	return g
}

// resize keeps the overlapping region and blanks new cells.
func (g *Grid) resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([][]Cell, height)
	for r := range cells {
		row := make([]Cell, width)
		for c := range row {
			if r < len(g.Cells) && c < len(g.Cells[r]) {
				row[c] = g.Cells[r][c]
			} else {
				row[c] = blankCell
			}
		}
		cells[r] = row
	}
	g.Width, g.Height, g.Cells = width, height, cells
}

func (g *Grid) clear() {
	for _, row := range g.Cells {
		for c := range row {
			row[c] = blankCell
		}
	}
}

func (g *Grid) set(row, col int, cell Cell) bool {
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return false
	}
	g.Cells[row][col] = cell
	return true
}

// scroll shifts the region [top, bot) x [left, right) by rows. Positive rows
// move content up. Rows scrolled out of the region are discarded and the
// vacated rows keep their previous contents, as Neovim redraws them.
func (g *Grid) scroll(top, bot, left, right, rows int) {
	top, bot = clamp(top, 0, g.Height), clamp(bot, 0, g.Height)
	left, right = clamp(left, 0, g.Width), clamp(right, 0, g.Width)
	if rows == 0 || top >= bot || left >= right {
		return
	}
	if rows > 0 {
		for r := top; r < bot-rows; r++ {
			copy(g.Cells[r][left:right], g.Cells[r+rows][left:right])
		}
		return
	}
	for r := bot - 1; r >= top-rows; r-- {
		copy(g.Cells[r][left:right], g.Cells[r+rows][left:right])
	}
}

func (g *Grid) clone() *Grid {
	out := &Grid{ID: g.ID, Width: g.Width, Height: g.Height, Cells: make([][]Cell, len(g.Cells))}
	for r, row := range g.Cells {
		out.Cells[r] = append([]Cell(nil), row...)
	}
	return out
}

// Lines renders each row by concatenating cell text. Trailing blanks are kept.
func (g *Grid) Lines() []string {
	lines := make([]string, len(g.Cells))
	var sb strings.Builder
	for r, row := range g.Cells {
		sb.Reset()
		for _, cell := range row {
			sb.WriteString(cell.Text)
		}
		lines[r] = sb.String()
	}
	return lines
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
