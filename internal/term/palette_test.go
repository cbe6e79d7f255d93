package term

import (
	"testing"

	"github.com/hinshun/vt10x"
	"github.com/stretchr/testify/assert"
)

func TestMustRGBAParsesHex(t *testing.T) {
	c := mustRGBA("#ff0080")
	assert.Equal(t, RGBA{R: 0xff, G: 0x00, B: 0x80, A: 255}, c)
}

func TestDefaultPaletteFallsBackToVoidPurple(t *testing.T) {
	p := DefaultPalette(RGBA{})
	assert.Equal(t, mustRGBA("#0D0221"), p.Background)
}

func TestDefaultPaletteHonorsChromeBg(t *testing.T) {
	custom := RGBA{R: 1, G: 2, B: 3, A: 255}
	p := DefaultPalette(custom)
	assert.Equal(t, custom, p.Background)
}

func TestResolveDefaultColorsUseForegroundBackground(t *testing.T) {
	p := DefaultPalette(RGBA{})
	assert.Equal(t, p.Foreground, p.resolve(vt10x.DefaultFG, true))
	assert.Equal(t, p.Background, p.resolve(vt10x.DefaultBG, false))
}

func TestResolvePaletteIndex(t *testing.T) {
	p := DefaultPalette(RGBA{})
	assert.Equal(t, p.ANSI[1], p.resolve(vt10x.Color(1), true))
}

func TestResolveTruecolor(t *testing.T) {
	p := DefaultPalette(RGBA{})
	packed := vt10x.Color(0x00102030)
	got := p.resolve(packed, true)
	assert.Equal(t, RGBA{R: 0x10, G: 0x20, B: 0x30, A: 255}, got)
}

func TestXterm256Grayscale(t *testing.T) {
	got := xterm256(232)
	assert.Equal(t, RGBA{R: 8, G: 8, B: 8, A: 255}, got)
}

func TestXterm256Cube(t *testing.T) {
	// index 16 is the cube's black corner (0,0,0).
	got := xterm256(16)
	assert.Equal(t, RGBA{R: 0, G: 0, B: 0, A: 255}, got)
}
