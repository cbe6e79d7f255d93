package term

import (
	"testing"

	"github.com/hinshun/vt10x"
	"github.com/stretchr/testify/assert"
)

func glyph(ch rune, mode int16) vt10x.Glyph {
	return vt10x.Glyph{Char: ch, Mode: mode, FG: vt10x.DefaultFG, BG: vt10x.DefaultBG}
}

func TestClustersSingleRun(t *testing.T) {
	l := LineElement{
		Glyphs: []vt10x.Glyph{glyph('a', 0), glyph('b', 0), glyph('c', 0)},
		Pal:    DefaultPalette(RGBA{}),
		Width:  3,
	}
	segs := l.Clusters()
	assert.Len(t, segs, 1)
	assert.Equal(t, "abc", segs[0].Text)
	assert.Equal(t, 0, segs[0].StartIndex)
	assert.Equal(t, 3, segs[0].Width)
	assert.Equal(t, "normal", segs[0].Intensity)
}

func TestClustersSplitsOnStyleChange(t *testing.T) {
	l := LineElement{
		Glyphs: []vt10x.Glyph{
			glyph('a', 0),
			glyph('b', glyphModeBold),
			glyph('c', glyphModeBold),
		},
		Pal:   DefaultPalette(RGBA{}),
		Width: 3,
	}
	segs := l.Clusters()
	assert.Len(t, segs, 2)
	assert.Equal(t, "a", segs[0].Text)
	assert.Equal(t, "normal", segs[0].Intensity)
	assert.Equal(t, "bc", segs[1].Text)
	assert.Equal(t, "bold", segs[1].Intensity)
	assert.Equal(t, 1, segs[1].StartIndex)
}

func TestClustersPadsToWidth(t *testing.T) {
	l := LineElement{
		Glyphs: []vt10x.Glyph{glyph('a', 0)},
		Pal:    DefaultPalette(RGBA{}),
		Width:  3,
	}
	segs := l.Clusters()
	assert.Len(t, segs, 1)
	assert.Equal(t, "a  ", segs[0].Text)
	assert.Equal(t, 3, segs[0].Width)
}

func TestClustersSplitsOnColorChange(t *testing.T) {
	l := LineElement{
		Glyphs: []vt10x.Glyph{
			{Char: 'x', FG: vt10x.Color(1), BG: vt10x.DefaultBG},
			{Char: 'y', FG: vt10x.Color(2), BG: vt10x.DefaultBG},
		},
		Pal:   DefaultPalette(RGBA{}),
		Width: 2,
	}
	segs := l.Clusters()
	assert.Len(t, segs, 2)
	assert.Equal(t, DefaultPalette(RGBA{}).ANSI[1], segs[0].Foreground)
	assert.Equal(t, DefaultPalette(RGBA{}).ANSI[2], segs[1].Foreground)
}

// TestRenderWrapsLongLineAcrossRows covers the "Wrap" scenario: with
// cols = 5, writing "abcdef" should wrap onto a second visible row rather
// than truncating, with the cursor left at (1, 1).
func TestRenderWrapsLongLineAcrossRows(t *testing.T) {
	s, _ := newTestScreen(t, 5, 3)
	s.Apply([]byte("abcdef"))

	lines, cursor := Render(s, 0)
	assert.Len(t, lines, 3)
	assert.Equal(t, "abcde", lines[0].Clusters()[0].Text)
	assert.Equal(t, "f    ", lines[1].Clusters()[0].Text)
	assert.Equal(t, CursorPosition{X: 1, Y: 1}, cursor)
}

func TestLineElementEqual(t *testing.T) {
	a := LineElement{Glyphs: []vt10x.Glyph{glyph('a', 0)}, seqno: 1}
	b := LineElement{Glyphs: []vt10x.Glyph{glyph('a', 0)}, seqno: 1}
	c := LineElement{Glyphs: []vt10x.Glyph{glyph('a', 0)}, seqno: 2}
	d := LineElement{Glyphs: []vt10x.Glyph{glyph('b', 0)}, seqno: 1}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}
