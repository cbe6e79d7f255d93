package term

import "github.com/hinshun/vt10x"

// RGBA is a resolved, renderer-ready color. Alpha is always 255 for the
// colors this package produces; it is carried so LineSegment.Foreground and
// Background can be handed straight to a host's pixel format without a
// second conversion step.
type RGBA struct {
	R, G, B, A uint8
}

// Palette is the fixed color set a ScreenModel resolves vt10x glyph colors
// through: the default foreground, a caller-supplied chrome background, the
// cursor and selection highlight colors, and the 16 ANSI colors a shell
// actually uses.
type Palette struct {
	Foreground  RGBA
	Background  RGBA
	CursorBg    RGBA
	SelectionBg RGBA
	ANSI        [16]RGBA // 0-7 normal, 8-15 bright
}

// DefaultPalette returns the engine's built-in palette. chromeBg lets a
// host supply its own window background; a zero value falls back to
// #0D0221, since this engine has no chrome of its own to derive one from.
func DefaultPalette(chromeBg RGBA) Palette {
	if chromeBg == (RGBA{}) {
		chromeBg = mustRGBA("#0D0221")
	}
	return Palette{
		Foreground:  mustRGBA("#cbccc6"),
		Background:  chromeBg,
		CursorBg:    mustRGBA("#ffcc66"),
		SelectionBg: mustRGBA("#33415e"),
		ANSI: [16]RGBA{
			mustRGBA("#2e3436"), // black
			mustRGBA("#cc0000"), // red
			mustRGBA("#4e9a06"), // green
			mustRGBA("#c4a000"), // yellow
			mustRGBA("#3465a4"), // blue
			mustRGBA("#75507b"), // magenta
			mustRGBA("#06989a"), // cyan
			mustRGBA("#d3d7cf"), // white
			mustRGBA("#555753"), // bright black
			mustRGBA("#ef2929"), // bright red
			mustRGBA("#8ae234"), // bright green
			mustRGBA("#fce94f"), // bright yellow
			mustRGBA("#729fcf"), // bright blue
			mustRGBA("#ad7fa8"), // bright magenta
			mustRGBA("#34e2e2"), // bright cyan
			mustRGBA("#eeeeec"), // bright white
		},
	}
}

func mustRGBA(hex string) RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		panic("term: bad color literal " + hex)
	}
	return RGBA{
		R: hexByte(hex[1:3]),
		G: hexByte(hex[3:5]),
		B: hexByte(hex[5:7]),
		A: 255,
	}
}

func hexByte(s string) uint8 {
	hi := hexNibble(s[0])
	lo := hexNibble(s[1])
	return hi<<4 | lo
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		panic("term: bad hex digit")
	}
}

// resolve maps a vt10x.Color to an RGBA through this palette: values at or
// above 0x01000000 mean "use the default", values below 256 are a palette
// index, everything else is packed truecolor.
func (p Palette) resolve(c vt10x.Color, isFG bool) RGBA {
	if c == vt10x.DefaultFG || c == vt10x.DefaultBG || uint32(c) >= 0x01000000 {
		if isFG {
			return p.Foreground
		}
		return p.Background
	}
	if c < 256 {
		if int(c) < len(p.ANSI) {
			return p.ANSI[c]
		}
		return xterm256(uint8(c))
	}
	return RGBA{
		R: uint8((uint32(c) >> 16) & 0xFF),
		G: uint8((uint32(c) >> 8) & 0xFF),
		B: uint8(uint32(c) & 0xFF),
		A: 255,
	}
}

// xterm256 computes the standard 6x6x6 color cube / grayscale ramp used by
// indices 16-255, the same formula xterm itself uses.
func xterm256(idx uint8) RGBA {
	if idx < 16 {
		return RGBA{}
	}
	if idx >= 232 {
		level := uint8(8 + (idx-232)*10)
		return RGBA{R: level, G: level, B: level, A: 255}
	}
	i := idx - 16
	r := cubeLevel(i / 36)
	g := cubeLevel((i / 6) % 6)
	b := cubeLevel(i % 6)
	return RGBA{R: r, G: g, B: b, A: 255}
}

func cubeLevel(n uint8) uint8 {
	if n == 0 {
		return 0
	}
	return 55 + n*40
}
