package renderer

import "testing"

func TestNewTileGridCoversEveryPixelExactlyOnce(t *testing.T) {
	const width, height, tileSize = 37, 21, 8
	tiles := NewTileGrid(width, height, tileSize)

	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for _, tile := range tiles {
		if tile.X1 > width || tile.Y1 > height {
			t.Fatalf("tile %d exceeds image bounds: (%d,%d)-(%d,%d)", tile.ID, tile.X0, tile.Y0, tile.X1, tile.Y1)
		}
		for y := tile.Y0; y < tile.Y1; y++ {
			for x := tile.X0; x < tile.X1; x++ {
				if covered[y][x] {
					t.Fatalf("pixel (%d,%d) covered by more than one tile", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Fatalf("pixel (%d,%d) not covered by any tile", x, y)
			}
		}
	}
}

func TestNewTileGridDefaultsTileSize(t *testing.T) {
	tiles := NewTileGrid(64, 64, 0)
	if len(tiles) != 4 {
		t.Errorf("expected a 2x2 grid of 32px tiles, got %d tiles", len(tiles))
	}
}

func TestTileWidthHeight(t *testing.T) {
	tile := NewTile(0, 10, 20, 18, 24)
	if tile.Width() != 8 || tile.Height() != 4 {
		t.Errorf("expected 8x4, got %dx%d", tile.Width(), tile.Height())
	}
}

func TestNewTileRandIsSeededDeterministically(t *testing.T) {
	a := NewTile(5, 0, 0, 1, 1)
	b := NewTile(5, 0, 0, 1, 1)
	if a.Rand.Float64() != b.Rand.Float64() {
		t.Error("expected two tiles with the same ID to draw the same random sequence")
	}
}
