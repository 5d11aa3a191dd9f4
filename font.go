package main

import (
	"unicode"

	"github.com/massung/chip-8/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	/// CharWidth and CharHeight are the size of a text cell in pixels.
	///
	CharWidth  = 5
	CharHeight = 7
)

/// Glyphs are 4x5 bitmaps (high nibble of each row) in the same style as
/// the CHIP-8 hex digits, which are taken from the interpreter's font.
///
var Glyphs = map[rune][5]byte{
	'G':  {0xF0, 0x80, 0xB0, 0x90, 0xF0},
	'H':  {0x90, 0x90, 0xF0, 0x90, 0x90},
	'I':  {0xE0, 0x40, 0x40, 0x40, 0xE0},
	'J':  {0x10, 0x10, 0x10, 0x90, 0x60},
	'K':  {0x90, 0xA0, 0xC0, 0xA0, 0x90},
	'L':  {0x80, 0x80, 0x80, 0x80, 0xF0},
	'M':  {0x90, 0xF0, 0xF0, 0x90, 0x90},
	'N':  {0x90, 0xD0, 0xB0, 0x90, 0x90},
	'O':  {0x60, 0x90, 0x90, 0x90, 0x60},
	'P':  {0xF0, 0x90, 0xF0, 0x80, 0x80},
	'Q':  {0x60, 0x90, 0x90, 0xB0, 0x70},
	'R':  {0xE0, 0x90, 0xE0, 0xA0, 0x90},
	'S':  {0x70, 0x80, 0x60, 0x10, 0xE0},
	'T':  {0xF0, 0x40, 0x40, 0x40, 0x40},
	'U':  {0x90, 0x90, 0x90, 0x90, 0xF0},
	'V':  {0x90, 0x90, 0x90, 0xA0, 0x40},
	'W':  {0x90, 0x90, 0xF0, 0xF0, 0x90},
	'X':  {0x90, 0x90, 0x60, 0x90, 0x90},
	'Y':  {0xA0, 0xA0, 0x40, 0x40, 0x40},
	'Z':  {0xF0, 0x10, 0x60, 0x80, 0xF0},
	'-':  {0x00, 0x00, 0xF0, 0x00, 0x00},
	'_':  {0x00, 0x00, 0x00, 0x00, 0xF0},
	'=':  {0x00, 0xF0, 0x00, 0xF0, 0x00},
	'+':  {0x00, 0x40, 0xE0, 0x40, 0x00},
	'#':  {0x50, 0xF0, 0x50, 0xF0, 0x50},
	',':  {0x00, 0x00, 0x00, 0x40, 0x80},
	'.':  {0x00, 0x00, 0x00, 0x00, 0x40},
	':':  {0x00, 0x40, 0x00, 0x40, 0x00},
	'/':  {0x10, 0x10, 0x20, 0x40, 0x80},
	'[':  {0x60, 0x40, 0x40, 0x40, 0x60},
	']':  {0x60, 0x20, 0x20, 0x20, 0x60},
	'(':  {0x20, 0x40, 0x40, 0x40, 0x20},
	')':  {0x40, 0x20, 0x20, 0x20, 0x40},
	'<':  {0x20, 0x40, 0x80, 0x40, 0x20},
	'>':  {0x80, 0x40, 0x20, 0x40, 0x80},
	'?':  {0xE0, 0x10, 0x60, 0x00, 0x40},
	'!':  {0x40, 0x40, 0x40, 0x00, 0x40},
	'%':  {0x90, 0x10, 0x60, 0x80, 0x90},
	'*':  {0x00, 0xA0, 0x40, 0xA0, 0x00},
	'\'': {0x40, 0x40, 0x00, 0x00, 0x00},
	'"':  {0xA0, 0xA0, 0x00, 0x00, 0x00},
}

/// GlyphRows returns the bitmap rows for a character. Letters are drawn
/// uppercase. ok is false for characters without a glyph.
///
func GlyphRows(c rune) (rows []byte, ok bool) {
	c = unicode.ToUpper(c)

	switch {
	case c >= '0' && c <= '9':
		return chip8.Glyph(byte(c - '0')), true
	case c >= 'A' && c <= 'F':
		return chip8.Glyph(byte(c - 'A' + 10)), true
	}

	if g, ok := Glyphs[c]; ok {
		return g[:], true
	}

	return nil, false
}

/// DrawText using the built-in font with the current draw color.
///
func DrawText(s string, x, y int32) {
	rects := make([]sdl.Rect, 0, 64)

	// loop over all the characters in the string
	for _, c := range s {
		if rows, ok := GlyphRows(c); ok {
			for dy, bits := range rows {
				for dx := int32(0); dx < 4; dx++ {
					if bits&(0x80>>uint(dx)) != 0 {
						rects = append(rects, sdl.Rect{X: x + dx, Y: y + int32(dy), W: 1, H: 1})
					}
				}
			}
		}

		// advance
		x += CharWidth
	}

	if len(rects) > 0 {
		Renderer.FillRects(rects)
	}
}
