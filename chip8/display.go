package chip8

import (
	"fmt"
	"strings"
)

const (
	/// Width and Height of the CHIP-8 display in pixels.
	///
	Width  = 64
	Height = 32
)

/// Display is the monochrome video memory. Pixels are addressed by row
/// (y) then column (x). Only Clear and Toggle change it.
///
type Display struct {
	pixels [Height][Width]bool
}

/// Clear turns every pixel off.
///
func (d *Display) Clear() {
	d.pixels = [Height][Width]bool{}
}

/// Get returns whether the pixel at row, col is lit. Coordinates outside
/// the display panic.
///
func (d *Display) Get(row, col int) bool {
	checkBounds(row, col)

	return d.pixels[row][col]
}

/// Toggle flips the pixel at row, col (XOR draw). Coordinates outside the
/// display panic.
///
func (d *Display) Toggle(row, col int) {
	checkBounds(row, col)

	d.pixels[row][col] = !d.pixels[row][col]
}

/// Lit returns the number of pixels that are on.
///
func (d *Display) Lit() int {
	n := 0

	for _, row := range d.pixels {
		for _, p := range row {
			if p {
				n++
			}
		}
	}

	return n
}

// String renders one line of text per row, '#' for lit pixels.
func (d *Display) String() string {
	var b strings.Builder

	b.Grow((Width + 1) * Height)

	for _, row := range d.pixels {
		for _, p := range row {
			if p {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}

		b.WriteByte('\n')
	}

	return b.String()
}

func checkBounds(row, col int) {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		panic(fmt.Sprintf("display access out of bounds: row %d, col %d", row, col))
	}
}
