// Package selection implements an absolute-coordinate text selection
// engine: anchors are scrollback-absolute row indices rather than
// visible-line indices, so a selection survives scrolling without needing
// to track or re-copy the underlying text. Conversion to visible space
// happens only at render time, in Render.
package selection

// Position is a single cell coordinate: X is a column, Y is an absolute
// (scrollback-indexed) row.
type Position struct {
	X, Y int
}

// Selection is an in-progress or completed text selection, anchored to the
// screen's sequence number at creation time so the caller can detect when
// the underlying content has since changed.
type Selection struct {
	Seqno int64
	Start Position
	End   Position
}

// Range is a Selection normalized so Start precedes End in reading order.
type Range struct {
	Start Position
	End   Position
}

// Range normalizes s so Start precedes End in reading order. A reverse
// selection (end before start) is swapped and has its new End.X shifted by
// one, turning the inclusive anchor the user dragged to into an exclusive
// right boundary.
func (s Selection) Range() Range {
	reverse := s.Start.Y > s.End.Y || (s.Start.Y == s.End.Y && s.Start.X > s.End.X)

	start, end := s.Start, s.End
	if reverse {
		start, end = s.End, s.Start
		end.X++
	}
	return Range{Start: start, End: end}
}

// LineSource is the line-content access a Selection needs to extract text
// or to know where a line's content ends, implemented by the engine's
// Screen Model over the VT library's physical line buffer.
type LineSource interface {
	// ColumnsAsStr returns the text in columns [start, end) of the physical
	// line at absolute row y.
	ColumnsAsStr(y, start, end int) string
	// LineLen returns the content length of the physical line at absolute
	// row y, used as the "to end of line" boundary for non-terminal rows of
	// a multi-line selection.
	LineLen(y int) int
}

// GetContent walks the physical lines spanned by s and returns their
// selected text, with a "\n" after every line including the last.
func (s Selection) GetContent(src LineSource) string {
	r := s.Range()

	var out []byte
	numRows := r.End.Y - r.Start.Y + 1
	x := r.Start.X
	for y := r.Start.Y; y <= r.End.Y; y++ {
		isLastLine := y-r.Start.Y == numRows-1

		lineEnd := r.End.X
		if numRows != 1 && !isLastLine {
			lineEnd = src.LineLen(y)
		}

		out = append(out, src.ColumnsAsStr(y, x, lineEnd)...)
		out = append(out, '\n')
		x = 0
	}
	return string(out)
}

// Rect is a selection highlight rectangle in pixel space, relative to the
// top-left of the visible terminal grid.
type Rect struct {
	X, Y, W, H float64
}

// Render computes the highlight rectangles for s in visible space, given
// the cell size, the visible column count, and the absolute index of the
// first visible line (so absolute row anchors can be translated down to
// visible rows).
func (s Selection) Render(cellW, cellH float64, visibleCols int, firstVisibleLine int) []Rect {
	r := s.Range()

	colStart, lineStart := r.Start.X, r.Start.Y-firstVisibleLine
	colEnd, lineEnd := r.End.X, r.End.Y-firstVisibleLine

	if colStart == colEnd && lineStart == lineEnd {
		return nil
	}

	numRows := lineEnd - lineStart + 1
	var rects []Rect

	firstWidth := cellW * float64(colEnd-colStart)
	if numRows > 1 {
		firstWidth = cellW * float64(visibleCols-colStart)
	}
	rects = append(rects, Rect{
		X: float64(colStart) * cellW,
		Y: float64(lineStart) * cellH,
		W: firstWidth,
		H: cellH,
	})

	for offset := 1; offset < numRows-1; offset++ {
		rects = append(rects, Rect{
			X: 0,
			Y: float64(lineStart+offset) * cellH,
			W: float64(visibleCols) * cellW,
			H: cellH,
		})
	}

	if numRows > 1 {
		rects = append(rects, Rect{
			X: 0,
			Y: float64(lineEnd) * cellH,
			W: float64(colEnd) * cellW,
			H: cellH,
		})
	}

	return rects
}

// IsCopyKey reports whether a key string (as a host would render it, e.g.
// "ctrl+c") is bound to copy-selection. macOS terminal emulators typically
// intercept Cmd+C before it reaches the application, so several bindings
// are supported: Ctrl+C (standard copy when a selection exists, SIGINT
// otherwise), vim-style y, and Ctrl+Y as a fallback.
func IsCopyKey(key string) bool {
	switch key {
	case "ctrl+c", "y", "ctrl+y":
		return true
	default:
		return false
	}
}
