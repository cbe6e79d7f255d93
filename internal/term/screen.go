package term

import (
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hinshun/vt10x"
)

// NotificationFunc is called whenever a ScreenModel observes a change the
// host might want to surface out of band - a title update, a bell, or plain
// output activity.
type NotificationFunc func(Alert)

// ScreenModel owns a VT library instance and layers on what the engine needs
// that vt10x does not keep itself: a seqno counter for selection
// invalidation, a scrollback ring, and byte-level key/paste/mouse injection
// into the PTY.
type ScreenModel struct {
	vt      vt10x.Terminal
	writer  io.Writer
	palette Palette

	scrollback *scrollback
	seqno      int64 // atomic
	lastOutput int64 // atomic, UnixNano of the last Apply

	notify  NotificationFunc
	logf    func(string, ...any)
	lastTop []vt10x.Glyph
}

// NewScreenModel constructs a Screen Model over a fresh vt10x terminal of
// the given size, writing encoded key/mouse/paste input to w (normally the
// PTY master's write end).
func NewScreenModel(cols, rows int, w io.Writer, scrollbackLines int, palette Palette) *ScreenModel {
	return &ScreenModel{
		vt:         vt10x.New(vt10x.WithSize(cols, rows), vt10x.WithWriter(w)),
		writer:     w,
		palette:    palette,
		scrollback: newScrollback(scrollbackLines),
	}
}

// SetNotificationHandler installs the callback used to publish title/bell
// alerts. Must be called before Apply is first used from another goroutine.
func (s *ScreenModel) SetNotificationHandler(fn NotificationFunc) {
	s.notify = fn
}

// SetLogf installs an optional debug diagnostics hook. Nil (the default)
// means silent.
func (s *ScreenModel) SetLogf(fn func(string, ...any)) {
	s.logf = fn
}

// CurrentSeqno returns the screen's current change counter, used to stamp
// new Selections and to detect when their content has gone stale.
func (s *ScreenModel) CurrentSeqno() int64 {
	return atomic.LoadInt64(&s.seqno)
}

func (s *ScreenModel) bumpSeqno() int64 {
	return atomic.AddInt64(&s.seqno, 1)
}

// Apply feeds a coalesced byte chunk from the PTY reader into the VT
// library, captures any row that scrolls off the top into scrollback, bumps
// the seqno, and publishes title/bell/output alerts through the
// notification handler.
func (s *ScreenModel) Apply(chunk []byte) {
	s.vt.Lock()
	s.captureTopRow()
	prevTitle := s.titleLocked()
	s.vt.Unlock()

	s.vt.Write(chunk)

	s.vt.Lock()
	s.detectScrolled()
	newTitle := s.titleLocked()
	s.vt.Unlock()

	s.bumpSeqno()
	atomic.StoreInt64(&s.lastOutput, time.Now().UnixNano())

	if s.notify != nil {
		if newTitle != prevTitle {
			s.notify(Alert{Kind: AlertTitleChanged, Title: newTitle})
		}
		if bytesContainBell(chunk) {
			s.notify(Alert{Kind: AlertBell})
		}
		s.notify(Alert{Kind: AlertOutputUpdate})
	}
}

// IdleFor reports how long it has been since the last PTY read was applied.
// Returning the duration rather than an is-idle bool lets a host pick its
// own threshold.
func (s *ScreenModel) IdleFor() time.Duration {
	last := atomic.LoadInt64(&s.lastOutput)
	if last == 0 {
		return 0
	}
	return time.Since(time.Unix(0, last))
}

// bytesContainBell reports whether chunk carries a BEL (0x07) byte. vt10x
// has no Changed flag for the bell, unlike ChangedTitle, so this is scanned
// directly off the raw chunk rather than read back out of the VT library.
func bytesContainBell(chunk []byte) bool {
	for _, b := range chunk {
		if b == 0x07 {
			return true
		}
	}
	return false
}

// titleLocked reads the VT library's window title. Must be called with the
// terminal locked.
func (s *ScreenModel) titleLocked() string {
	return s.vt.Title()
}

// captureTopRow snapshots row 0 before a write, so detectScrolled can tell
// whether it scrolled off afterward. Must be called with the terminal
// locked.
func (s *ScreenModel) captureTopRow() {
	cols, rows := s.vt.Size()
	if cols == 0 || rows == 0 {
		s.lastTop = nil
		return
	}
	row := make([]vt10x.Glyph, cols)
	for col := 0; col < cols; col++ {
		row[col] = s.vt.Cell(col, 0)
	}
	s.lastTop = row
}

// detectScrolled compares the pre-write row 0 snapshot against the current
// screen: if it changed and its exact content is no longer visible anywhere
// on screen, the old top row scrolled into history and is pushed to
// scrollback. Must be called with the terminal locked.
func (s *ScreenModel) detectScrolled() {
	if len(s.lastTop) == 0 {
		return
	}
	cols, rows := s.vt.Size()
	if cols != len(s.lastTop) {
		s.lastTop = nil
		return
	}

	changed := false
	for col := 0; col < cols; col++ {
		if s.vt.Cell(col, 0) != s.lastTop[col] {
			changed = true
			break
		}
	}

	if changed && !s.lineVisibleLocked(s.lastTop, cols, rows) {
		s.scrollback.push(s.lastTop)
	}
	s.lastTop = nil
}

func (s *ScreenModel) lineVisibleLocked(line []vt10x.Glyph, cols, rows int) bool {
	for row := 0; row < rows; row++ {
		match := true
		for col := 0; col < cols; col++ {
			if s.vt.Cell(col, row) != line[col] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Resize changes the VT library's grid size and bumps the seqno, since
// reflow can change what every absolute row contains.
func (s *ScreenModel) Resize(cols, rows int) {
	// vt10x's Resize takes the terminal lock itself.
	s.vt.Resize(cols, rows)
	s.bumpSeqno()
}

// Size returns the current grid geometry as (cols, rows).
func (s *ScreenModel) Size() (cols, rows int) {
	s.vt.Lock()
	defer s.vt.Unlock()
	return s.vt.Size()
}

// Cursor returns the visible-space cursor position and whether it should be
// drawn.
func (s *ScreenModel) Cursor() (pos CursorPosition, visible bool) {
	s.vt.Lock()
	defer s.vt.Unlock()
	cur := s.vt.Cursor()
	return CursorPosition{X: cur.X, Y: cur.Y}, s.vt.CursorVisible()
}

// ScrollbackLen returns the number of physical lines held in scrollback,
// above and beyond the live grid.
func (s *ScreenModel) ScrollbackLen() int {
	return s.scrollback.len()
}

// ColorPalette returns the palette this Screen Model resolves glyph colors
// through.
func (s *ScreenModel) ColorPalette() Palette {
	return s.palette
}

// ColumnsAsStr implements selection.LineSource: it returns the text in
// columns [start, end) of the physical line at absolute row y, reading from
// scrollback for rows above the live grid and from the live grid otherwise.
func (s *ScreenModel) ColumnsAsStr(y, start, end int) string {
	line, cols := s.physicalLine(y)
	if start < 0 {
		start = 0
	}
	if end > cols {
		end = cols
	}
	if start >= end {
		return ""
	}
	out := make([]rune, 0, end-start)
	for col := start; col < end; col++ {
		if col < len(line) {
			out = append(out, line[col].Char)
		} else {
			out = append(out, ' ')
		}
	}
	return string(out)
}

// LineLen implements selection.LineSource: the trailing-whitespace-trimmed
// content length of the physical line at absolute row y. A line with no
// content reports the full column count instead of 0.
func (s *ScreenModel) LineLen(y int) int {
	line, cols := s.physicalLine(y)
	n := len(line)
	for n > 0 && line[n-1].Char == ' ' {
		n--
	}
	if n == 0 {
		return cols
	}
	return n
}

// physicalLine resolves an absolute row index to its glyphs, reading from
// scrollback when y falls above the live grid's current top row.
func (s *ScreenModel) physicalLine(y int) ([]vt10x.Glyph, int) {
	sbLen := s.scrollback.len()
	if y < sbLen {
		line := s.scrollback.get(y)
		return line, len(line)
	}

	s.vt.Lock()
	defer s.vt.Unlock()
	cols, rows := s.vt.Size()
	row := y - sbLen
	if row < 0 || row >= rows {
		return nil, cols
	}
	line := make([]vt10x.Glyph, cols)
	for col := 0; col < cols; col++ {
		line[col] = s.vt.Cell(col, row)
	}
	return line, cols
}

// KeyDown encodes a key event into the byte sequence a shell expects and
// writes it straight to the PTY. It does not touch the VT library directly -
// the PTY reader will observe whatever the program echoes back through the
// normal Apply path - so it does not bump seqno.
func (s *ScreenModel) KeyDown(key KeyCode, mods KeyModifiers, text string) {
	hasAlt := mods&ModAlt != 0
	hasCtrl := mods&ModCtrl != 0
	hasShift := mods&ModShift != 0

	var input []byte
	switch {
	case hasCtrl && key == KeyChar && len(text) == 1 && text[0] >= 'a' && text[0] <= 'z':
		input = []byte{text[0] - 'a' + 1}
	case hasShift && key == KeyTab:
		input = []byte("\x1b[Z")
	case hasAlt && key == KeyChar && len(text) == 1 && text[0] >= 'a' && text[0] <= 'z':
		input = []byte{27, text[0]}
	default:
		switch key {
		case KeyEnter:
			input = []byte("\r")
		case KeyBackspace:
			if hasAlt {
				input = []byte{27, 127}
			} else {
				input = []byte{127}
			}
		case KeyTab:
			input = []byte("\t")
		case KeyUp:
			input = []byte("\x1b[A")
		case KeyDown:
			input = []byte("\x1b[B")
		case KeyRight:
			input = []byte("\x1b[C")
		case KeyLeft:
			input = []byte("\x1b[D")
		case KeyEscape:
			input = []byte{27}
		case KeyHome:
			input = []byte("\x1b[H")
		case KeyEnd:
			input = []byte("\x1b[F")
		case KeyPageUp:
			input = []byte("\x1b[5~")
		case KeyPageDown:
			input = []byte("\x1b[6~")
		case KeyDelete:
			input = []byte("\x1b[3~")
		case KeyChar:
			if hasAlt {
				for _, r := range text {
					input = append(input, 27, byte(r))
				}
			} else {
				input = []byte(text)
			}
		}
	}

	if len(input) == 0 {
		if s.logf != nil {
			s.logf("term: dropping unrecognized key %d (mods %#x)", key, mods)
		}
		return
	}
	s.writer.Write(input)
}

// SendPaste writes pasted text to the PTY directly, unbracketed.
func (s *ScreenModel) SendPaste(text string) {
	s.writer.Write([]byte(text))
}

// MouseEvent encodes a mouse interaction as an SGR (1006) mouse report and
// writes it to the PTY, when the program has enabled mouse tracking.
func (s *ScreenModel) MouseEvent(ev MouseEvent) {
	s.vt.Lock()
	mode := s.vt.Mode()
	s.vt.Unlock()
	if mode&vt10x.ModeMouseMask == 0 {
		return
	}

	btn := mouseSGRButton(ev)
	final := byte('M')
	if ev.Kind == MouseRelease {
		final = 'm'
	}
	seq := "\x1b[<" + strconv.Itoa(btn) + ";" + strconv.Itoa(ev.X+1) + ";" + strconv.Itoa(ev.Y+1) + string(final)
	s.writer.Write([]byte(seq))
}

func mouseSGRButton(ev MouseEvent) int {
	base := 0
	switch ev.Button {
	case MouseButtonLeft:
		base = 0
	case MouseButtonNone:
		base = 3
	case MouseButtonMiddle:
		base = 1
	case MouseButtonRight:
		base = 2
	case MouseWheelUp:
		return 64
	case MouseWheelDown:
		return 65
	}
	if ev.Kind == MouseMove {
		base += 32
	}
	if ev.Modifiers&ModShift != 0 {
		base += 4
	}
	if ev.Modifiers&ModAlt != 0 {
		base += 8
	}
	if ev.Modifiers&ModCtrl != 0 {
		base += 16
	}
	return base
}
