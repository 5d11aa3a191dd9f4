package main

import (
	"github.com/massung/chip-8/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

/// ScreenScale is the size of a CHIP-8 pixel on the window.
///
const ScreenScale = 5

/// ScreenRects returns one rectangle per lit pixel of the display, placed
/// at x, y and scaled.
///
func ScreenRects(d *chip8.Display, x, y, scale int32) []sdl.Rect {
	rects := make([]sdl.Rect, 0, d.Lit())

	for row := 0; row < chip8.Height; row++ {
		for col := 0; col < chip8.Width; col++ {
			if d.Get(row, col) {
				rects = append(rects, sdl.Rect{
					X: x + int32(col)*scale,
					Y: y + int32(row)*scale,
					W: scale,
					H: scale,
				})
			}
		}
	}

	return rects
}

/// DrawScreen renders the CHIP-8 video memory.
///
func DrawScreen(vm *chip8.CHIP_8, x, y int32) {
	Renderer.SetDrawColor(143, 145, 133, 255)
	Renderer.FillRect(&sdl.Rect{
		X: x,
		Y: y,
		W: chip8.Width * ScreenScale,
		H: chip8.Height * ScreenScale,
	})

	// set the pixel color
	Renderer.SetDrawColor(17, 29, 43, 255)

	if rects := ScreenRects(&vm.Video, x, y, ScreenScale); len(rects) > 0 {
		Renderer.FillRects(rects)
	}
}
