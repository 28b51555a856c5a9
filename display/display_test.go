package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramebuffer_Blank(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()
	for y := range HEIGHT {
		for x := range WIDTH {
			assert.Equal(uint8(0), fb.Pixel(x, y))
		}
	}
	assert.Equal(0, fb.Lit())
	assert.False(fb.Dirty)
}

func TestFramebuffer_DrawSprite(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()

	// Glyph '0' from the font.
	glyph := []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}

	collision := fb.DrawSprite(glyph, 10, 4)
	assert.False(collision)
	assert.True(fb.Dirty)
	assert.Equal(14, fb.Lit())

	assert.Equal(uint8(1), fb.Pixel(10, 4))
	assert.Equal(uint8(1), fb.Pixel(13, 4))
	assert.Equal(uint8(0), fb.Pixel(14, 4))
	assert.Equal(uint8(1), fb.Pixel(10, 5))
	assert.Equal(uint8(0), fb.Pixel(11, 5))
	assert.Equal(uint8(1), fb.Pixel(13, 5))
	assert.Equal(uint8(0), fb.Pixel(9, 4))

	// Drawing the same sprite again toggles everything back off.
	collision = fb.DrawSprite(glyph, 10, 4)
	assert.True(collision)
	assert.Equal(0, fb.Lit())
}

func TestFramebuffer_PartialCollision(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()

	assert.False(fb.DrawSprite([]byte{0x80}, 0, 0))
	// Only one of the eight pixels overlaps.
	assert.True(fb.DrawSprite([]byte{0xFF}, 0, 0))
	assert.Equal(uint8(0), fb.Pixel(0, 0))
	assert.Equal(7, fb.Lit())

	// Non-overlapping draw is not a collision.
	assert.False(fb.DrawSprite([]byte{0xFF}, 0, 1))
}

func TestFramebuffer_NoWrap(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()

	collision := fb.DrawSprite([]byte{0xFF, 0xFF}, WIDTH-4, HEIGHT-1)
	assert.False(collision)
	assert.Equal(4, fb.Lit())
	for x := WIDTH - 4; x < WIDTH; x++ {
		assert.Equal(uint8(1), fb.Pixel(x, HEIGHT-1))
	}
	// Nothing wrapped to the left edge or the top row.
	for x := range 4 {
		assert.Equal(uint8(0), fb.Pixel(x, HEIGHT-1))
		assert.Equal(uint8(0), fb.Pixel(x, 0))
	}

	// Fully off screen draws nothing.
	assert.False(fb.DrawSprite([]byte{0xFF}, WIDTH, 0))
	assert.False(fb.DrawSprite([]byte{0xFF}, 0, HEIGHT))
	assert.Equal(4, fb.Lit())
}

func TestFramebuffer_Clear(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()
	fb.DrawSprite([]byte{0xAA, 0x55}, 30, 20)
	assert.NotEqual(0, fb.Lit())

	fb.Dirty = false
	fb.Clear()
	assert.Equal(0, fb.Lit())
	assert.True(fb.Dirty)
}

func TestFramebuffer_String(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()
	fb.DrawSprite([]byte{0xC0, 0x80}, 0, 0)

	lines := strings.Split(strings.TrimSuffix(fb.String(), "\n"), "\n")
	assert.Equal(HEIGHT/2, len(lines))
	assert.True(strings.HasPrefix(lines[0], "█▀ "))
	assert.Equal(WIDTH, len([]rune(lines[1])))
}

func TestFramebuffer_Defines(t *testing.T) {
	assert := assert.New(t)

	fb := NewFramebuffer()
	defines := map[string]string{}
	for key, value := range fb.Defines() {
		defines[key] = value
	}
	assert.Equal("64", defines["SCREEN_WIDTH"])
	assert.Equal("32", defines["SCREEN_HEIGHT"])
}
