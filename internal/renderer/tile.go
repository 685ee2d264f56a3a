package renderer

import "math/rand"

// Tile is a rectangular pixel region assigned to one worker at a time,
// grounded on the teacher's pkg/renderer/progressive.go Tile: bounds
// plus a private RNG stream so two tiles never share entropy.
type Tile struct {
	ID             int
	X0, Y0, X1, Y1 int // [X0,X1) x [Y0,Y1), pixel-space
	Rand           *rand.Rand
}

// NewTile seeds a per-tile RNG from the tile id so a re-render with the
// same tile grid is reproducible independent of scheduling order.
func NewTile(id, x0, y0, x1, y1 int) *Tile {
	return &Tile{ID: id, X0: x0, Y0: y0, X1: x1, Y1: y1, Rand: rand.New(rand.NewSource(int64(id) + 42))}
}

func (t *Tile) Width() int  { return t.X1 - t.X0 }
func (t *Tile) Height() int { return t.Y1 - t.Y0 }

// NewTileGrid partitions a width x height image into tileSize x
// tileSize tiles (the final row/column may be smaller), row-major.
func NewTileGrid(width, height, tileSize int) []*Tile {
	if tileSize <= 0 {
		tileSize = 32
	}
	cols := (width + tileSize - 1) / tileSize
	rows := (height + tileSize - 1) / tileSize

	tiles := make([]*Tile, 0, cols*rows)
	id := 0
	for ty := 0; ty < rows; ty++ {
		for tx := 0; tx < cols; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, NewTile(id, x0, y0, x1, y1))
			id++
		}
	}
	return tiles
}
