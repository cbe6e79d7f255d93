package term

import "github.com/hinshun/vt10x"

// vt10x keeps its cell attribute bits (bold, italic, underline, wrap, ...)
// as unexported constants, so Glyph.Mode is read through matching literal
// masks here.
const (
	glyphModeReverse   int16 = 1 << 0
	glyphModeUnderline int16 = 1 << 1
	glyphModeBold      int16 = 1 << 2
	glyphModeGfx       int16 = 1 << 3
	glyphModeItalic    int16 = 1 << 4
	glyphModeWrap      int16 = 1 << 6
)

// LineElement is one physical row of a render projection: the row's glyphs
// at the time of capture, the palette to resolve colors through, and the
// column width to pad to. Immutable once built.
type LineElement struct {
	Glyphs []vt10x.Glyph
	Pal    Palette
	Width  int
	seqno  int64
}

// LineSegment is a maximal run of cells sharing the same style, the unit a
// renderer draws in one pass.
type LineSegment struct {
	Intensity  string
	Foreground RGBA
	Background RGBA
	Width      int
	Text       string
	StartIndex int
}

// Clusters groups l's glyphs into style runs, padding short rows out to
// Width with blank cells first so trailing background color still renders
// to the edge of the grid.
func (l LineElement) Clusters() []LineSegment {
	glyphs := l.Glyphs
	if len(glyphs) < l.Width {
		padded := make([]vt10x.Glyph, l.Width)
		copy(padded, glyphs)
		for i := len(glyphs); i < l.Width; i++ {
			padded[i] = vt10x.Glyph{Char: ' ', FG: vt10x.DefaultFG, BG: vt10x.DefaultBG}
		}
		glyphs = padded
	}

	var segments []LineSegment
	var text []rune
	start := 0

	flush := func(end int) {
		if len(text) == 0 {
			return
		}
		g := glyphs[start]
		segments = append(segments, LineSegment{
			Intensity:  intensityOf(g.Mode),
			Foreground: l.Pal.resolve(g.FG, true),
			Background: l.Pal.resolve(g.BG, false),
			Width:      end - start,
			Text:       string(text),
			StartIndex: start,
		})
		text = nil
	}

	for i, g := range glyphs {
		if i > start && !sameStyle(glyphs[i-1], g) {
			flush(i)
			start = i
		}
		text = append(text, g.Char)
	}
	flush(len(glyphs))

	return segments
}

// sameStyle ignores the wrap flag vt10x sets on the last cell of a wrapped
// row: it marks layout, not style.
func sameStyle(a, b vt10x.Glyph) bool {
	return a.FG == b.FG && a.BG == b.BG && a.Mode&^glyphModeWrap == b.Mode&^glyphModeWrap
}

func intensityOf(mode int16) string {
	switch {
	case mode&glyphModeBold != 0:
		return "bold"
	default:
		return "normal"
	}
}

// Equal reports whether l and other carry the same content at the same
// seqno, the comparison a caller uses to skip re-rendering an unchanged row.
func (l LineElement) Equal(other LineElement) bool {
	if l.seqno != other.seqno || len(l.Glyphs) != len(other.Glyphs) {
		return false
	}
	for i := range l.Glyphs {
		if l.Glyphs[i] != other.Glyphs[i] {
			return false
		}
	}
	return true
}

// Render builds the render projection for the visible window of s: the
// physical lines from scrollTop rows above the bottom of history down
// through the live grid, plus the cursor position. It only reads; no state
// on s changes.
func Render(s *ScreenModel, scrollTop int) ([]LineElement, CursorPosition) {
	cols, rows := s.Size()
	total := s.ScrollbackLen() + rows

	firstVisible := total - rows - scrollTop
	if firstVisible < 0 {
		firstVisible = 0
	}

	lastVisible := firstVisible + rows
	if lastVisible > total {
		lastVisible = total
	}

	seqno := s.CurrentSeqno()
	lines := make([]LineElement, 0, rows)
	for index := firstVisible; index < lastVisible; index++ {
		glyphs, _ := s.physicalLine(index)
		lines = append(lines, LineElement{
			Glyphs: glyphs,
			Pal:    s.palette,
			Width:  cols,
			seqno:  seqno,
		})
	}

	cursor, visible := s.Cursor()
	if !visible {
		cursor = CursorPosition{X: -1, Y: -1}
	}
	return lines, cursor
}
