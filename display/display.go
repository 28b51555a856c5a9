// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package display implements the monochrome framebuffer of the interpreter.
//
// Sprites are XOR-composited onto the framebuffer one bit per pixel, most
// significant bit leftmost. Drawing never wraps at the screen edges; pixels
// that fall outside of the framebuffer are clipped.
package display

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

const (
	WIDTH  = 64 // Framebuffer width, in pixels.
	HEIGHT = 32 // Framebuffer height, in pixels.
)

var _display_defines = map[string]string{
	"SCREEN_WIDTH":  fmt.Sprintf("%v", WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", HEIGHT),
}

// Framebuffer is a WIDTH x HEIGHT grid of single bit pixels.
// Each row is packed into a uint64, with x=0 as the most significant bit.
type Framebuffer struct {
	Row [HEIGHT]uint64

	Dirty bool // Set whenever a pixel changes; cleared by the host.
}

// NewFramebuffer creates a new, cleared, framebuffer.
func NewFramebuffer() (fb *Framebuffer) {
	fb = &Framebuffer{}
	return
}

// Defines for the display.
func (fb *Framebuffer) Defines() iter.Seq2[string, string] {
	return maps.All(_display_defines)
}

// Clear all pixels to zero.
func (fb *Framebuffer) Clear() {
	clear(fb.Row[:])
	fb.Dirty = true
}

// bit returns the mask of pixel x in a row.
func bit(x int) uint64 {
	return uint64(1) << (WIDTH - 1 - x)
}

// Pixel returns the value (0 or 1) of the pixel at (x, y).
// Out of range coordinates read as 0.
func (fb *Framebuffer) Pixel(x, y int) uint8 {
	if x < 0 || x >= WIDTH || y < 0 || y >= HEIGHT {
		return 0
	}

	if fb.Row[y]&bit(x) != 0 {
		return 1
	}

	return 0
}

// DrawSprite XORs the sprite rows onto the framebuffer with the top left
// corner at (x0, y0).
//
// Returns true if any pixel was turned off by the draw.
func (fb *Framebuffer) DrawSprite(rows []byte, x0, y0 int) (collision bool) {
	for dy, sprite := range rows {
		y := y0 + dy
		if y < 0 || y >= HEIGHT {
			continue
		}
		for dx := range 8 {
			if sprite&(0x80>>dx) == 0 {
				continue
			}
			x := x0 + dx
			if x < 0 || x >= WIDTH {
				continue
			}
			mask := bit(x)
			if fb.Row[y]&mask != 0 {
				collision = true
			}
			fb.Row[y] ^= mask
			fb.Dirty = true
		}
	}

	return
}

// Lit returns the number of set pixels.
func (fb *Framebuffer) Lit() (count int) {
	for _, row := range fb.Row {
		for ; row != 0; row &= row - 1 {
			count++
		}
	}
	return
}

// String renders the framebuffer as text, two pixel rows per line of
// output using Unicode half blocks.
func (fb *Framebuffer) String() string {
	var sb strings.Builder

	for y := 0; y < HEIGHT; y += 2 {
		for x := range WIDTH {
			top := fb.Pixel(x, y) != 0
			bottom := fb.Pixel(x, y+1) != 0
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
