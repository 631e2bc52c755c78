package model

// CellData is one authored board cell
type CellData struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// GridData is the board authored by the game master: width, height, and one
// color value per cell. The server stores and re-broadcasts it verbatim;
// color values are opaque.
type GridData struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  []CellData `json:"cells"`
}

// AddCell appends a cell to the grid
func (g *GridData) AddCell(x, y int, color string) {
	g.Cells = append(g.Cells, CellData{X: x, Y: y, Color: color})
}

// ChangeCell updates the color of an existing cell, if present
func (g *GridData) ChangeCell(x, y int, color string) {
	for i := range g.Cells {
		if g.Cells[i].X == x && g.Cells[i].Y == y {
			g.Cells[i].Color = color
			return
		}
	}
}

// Validate checks the structural shape of the grid: dimensions within the
// game's board, and every coordinate present exactly once. Color values are
// not inspected.
func (g *GridData) Validate(width, height int) error {
	if g.Width != width || g.Height != height {
		return ErrInvalidGrid
	}
	if len(g.Cells) != width*height {
		return ErrInvalidGrid
	}
	seen := make(map[Cell]bool, len(g.Cells))
	for _, c := range g.Cells {
		if c.X < 0 || c.X >= width || c.Y < 0 || c.Y >= height {
			return ErrInvalidGrid
		}
		coord := Cell{X: c.X, Y: c.Y}
		if seen[coord] {
			return ErrInvalidGrid
		}
		seen[coord] = true
	}
	return nil
}
