package term

import "github.com/ZeroX-DG/raven/internal/selection"

// ResolvedSelection is the snapshot of a Selection a RedrawEvent carries: the
// seqno it was computed at (so a host can tell whether it's stale the
// instant it arrives), the highlight rectangles, and the extracted text,
// ready for CopySelectionEvent without re-walking the screen. Rects carried
// on a RedrawEvent use a unit cell size (the engine knows no font metrics);
// a host multiplies them by its own cell width and height.
type ResolvedSelection struct {
	Seqno int64
	Rects []selection.Rect
	Text  string
}

// ResolveSelection computes a ResolvedSelection from sel against src, using
// the given cell geometry and the absolute index of the currently first
// visible line.
func ResolveSelection(sel selection.Selection, src selection.LineSource, cellW, cellH float64, visibleCols, firstVisibleLine int) ResolvedSelection {
	return ResolvedSelection{
		Seqno: sel.Seqno,
		Rects: sel.Render(cellW, cellH, visibleCols, firstVisibleLine),
		Text:  sel.GetContent(src),
	}
}
