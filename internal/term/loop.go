package term

import (
	"os"
	"os/exec"

	"github.com/creack/pty"

	"github.com/ZeroX-DG/raven/internal/selection"
)

// Config carries the overridable knobs a host sets when opening a Session:
// scrollback depth, the shell to spawn, and the product identity exported to
// the child through TERM_PROGRAM.
type Config struct {
	Scrollback  int
	Shell       string
	ProductName string
	ProductVer  string

	// Logf, when set, receives debug diagnostics such as dropped
	// unrecognized keys. Nil means silent.
	Logf func(string, ...any)
}

func (c Config) withDefaults() Config {
	if c.Scrollback <= 0 {
		c.Scrollback = 1000
	}
	if c.Shell == "" {
		c.Shell = os.Getenv("SHELL")
		if c.Shell == "" {
			c.Shell = "bash"
		}
	}
	if c.ProductName == "" {
		c.ProductName = "Raven"
	}
	if c.ProductVer == "" {
		c.ProductVer = "1.0.0"
	}
	return c
}

// terminalLoop is the single-writer goroutine owning one Session's screen
// model and PTY: it is the only goroutine that ever mutates the screen or
// the view's scroll/selection state, dispatching over a select of the three
// inbound sources (PTY chunks, user events, redraw tokens).
type terminalLoop struct {
	screen *ScreenModel
	ptmx   *os.File
	cmd    *exec.Cmd
	reader *ptyReader

	userEvents   chan UserEvent
	manualRedraw chan struct{}
	outbound     chan TerminalEvent

	scrollTop int
	selection *selection.Selection
	dragging  bool

	onExit func(error)
}

func newTerminalLoop(cfg Config, size TerminalSize, palette Palette, onAlert NotificationFunc, onExit func(error)) (*terminalLoop, error) {
	cfg = cfg.withDefaults()

	cmd := exec.Command(cfg.Shell)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"TERM_PROGRAM="+cfg.ProductName,
		"TERM_PROGRAM_VERSION="+cfg.ProductVer,
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(size.Rows),
		Cols: uint16(size.Cols),
		X:    uint16(size.PixelWidth),
		Y:    uint16(size.PixelHeight),
	})
	if err != nil {
		return nil, err
	}

	screen := NewScreenModel(size.Cols, size.Rows, ptmx, cfg.Scrollback, palette)
	screen.SetNotificationHandler(onAlert)
	screen.SetLogf(cfg.Logf)

	tl := &terminalLoop{
		screen:       screen,
		ptmx:         ptmx,
		cmd:          cmd,
		reader:       newPtyReader(ptmx),
		userEvents:   make(chan UserEvent, 64),
		manualRedraw: make(chan struct{}, 1),
		outbound:     make(chan TerminalEvent, 16),
		onExit:       onExit,
	}
	return tl, nil
}

// run dispatches PTY output, user input, and manual redraw requests until
// the PTY reader or the inbound user-event channel closes, then waits for
// the child process and publishes ExitEvent. It should be run on its own
// goroutine, one per Session.
func (tl *terminalLoop) run() {
	defer func() {
		err := tl.cmd.Wait()
		tl.sendOutbound(ExitEvent{Err: err})
		close(tl.outbound)
		if tl.onExit != nil {
			tl.onExit(err)
		}
	}()

	for {
		select {
		case chunk, ok := <-tl.reader.Chunks():
			if !ok {
				return
			}
			tl.screen.Apply(chunk)
			tl.emitRedraw()

		case ev, ok := <-tl.userEvents:
			if !ok {
				return
			}
			tl.handleUserEvent(ev)

		case <-tl.manualRedraw:
			tl.emitRedraw()
		}
	}
}

// requestRedraw enqueues one redraw token, coalescing with any already
// pending: a full channel means a redraw is due anyway, so the send is
// dropped rather than blocked on.
func (tl *terminalLoop) requestRedraw() {
	select {
	case tl.manualRedraw <- struct{}{}:
	default:
	}
}

func (tl *terminalLoop) handleUserEvent(ev UserEvent) {
	switch e := ev.(type) {
	case ResizeEvent:
		pty.Setsize(tl.ptmx, &pty.Winsize{
			Rows: uint16(e.Size.Rows),
			Cols: uint16(e.Size.Cols),
			X:    uint16(e.Size.PixelWidth),
			Y:    uint16(e.Size.PixelHeight),
		})
		tl.screen.Resize(e.Size.Cols, e.Size.Rows)
		tl.adjustScroll(0)
		tl.requestRedraw()

	case PasteEvent:
		tl.screen.SendPaste(e.Text)

	case KeydownEvent:
		tl.screen.KeyDown(e.Key, e.Mods, e.Text)

	case ScrollEvent:
		tl.adjustScroll(e.DeltaY)
		wheel := MouseWheelDown
		if e.DeltaY < 0 {
			wheel = MouseWheelUp
		}
		tl.screen.MouseEvent(MouseEvent{Kind: MousePress, Button: wheel})
		tl.emitRedraw()

	case MouseUserEvent:
		tl.updateSelection(e.Event)
		tl.screen.MouseEvent(e.Event)
		tl.emitRedraw()

	case CopySelectionEvent:
		if tl.selection != nil && tl.selection.Seqno == tl.screen.CurrentSeqno() {
			tl.sendOutbound(SetClipboardContentEvent{Text: tl.selection.GetContent(tl.screen)})
		}

	case RequestRedrawEvent:
		tl.requestRedraw()
	}
}

// adjustScroll applies a 0.2 damping factor to the raw wheel delta and
// clamps the result to [0, scrollback length].
func (tl *terminalLoop) adjustScroll(deltaY float64) {
	maxOffset := tl.screen.ScrollbackLen()
	if maxOffset < 0 {
		maxOffset = 0
	}

	newOffset := float64(tl.scrollTop) + deltaY*0.2
	if newOffset < 0 {
		newOffset = 0
	} else if int(newOffset) > maxOffset {
		newOffset = float64(maxOffset)
	}
	tl.scrollTop = int(newOffset)
}

// visibleToAbsolute converts a visible cell coordinate to an absolute,
// scrollback-indexed row:
// (x, y) -> (x, y + (totalRows - physicalRows - scrollTop)).
func (tl *terminalLoop) visibleToAbsolute(x, y int) selection.Position {
	_, rows := tl.screen.Size()
	scrollbackRows := tl.screen.ScrollbackLen() + rows
	return selection.Position{X: x, Y: y + (scrollbackRows - rows - tl.scrollTop)}
}

// updateSelection drives the press/drag/release selection lifecycle: press
// starts a zero-width selection anchored at the press point, move extends it
// while dragging, release ends the drag without clearing the selection.
func (tl *terminalLoop) updateSelection(ev MouseEvent) {
	switch ev.Kind {
	case MousePress:
		if ev.Button != MouseButtonLeft {
			return
		}
		pos := tl.visibleToAbsolute(ev.X, ev.Y)
		tl.dragging = true
		tl.selection = &selection.Selection{
			Seqno: tl.screen.CurrentSeqno(),
			Start: pos,
			End:   pos,
		}
	case MouseMove:
		if tl.dragging && tl.selection != nil {
			tl.selection.End = tl.visibleToAbsolute(ev.X, ev.Y)
		}
	case MouseRelease:
		tl.dragging = false
	}
}

// emitRedraw builds the current render projection and invalidates the
// active selection if the screen has mutated since it was anchored, then
// publishes a RedrawEvent.
func (tl *terminalLoop) emitRedraw() {
	lines, cursor := Render(tl.screen, tl.scrollTop)

	if tl.selection != nil && tl.selection.Seqno != tl.screen.CurrentSeqno() {
		tl.selection = nil
	}

	cols, rows := tl.screen.Size()
	firstVisible := tl.screen.ScrollbackLen() - tl.scrollTop
	if firstVisible < 0 {
		firstVisible = 0
	}
	var resolved *ResolvedSelection
	if tl.selection != nil {
		r := ResolveSelection(*tl.selection, tl.screen, 1, 1, cols, firstVisible)
		resolved = &r
	}

	tl.sendOutbound(RedrawEvent{
		Lines:               lines,
		Cursor:              cursor,
		ScrollTop:           tl.scrollTop,
		Selection:           resolved,
		TerminalVisibleSize: [2]int{cols, rows},
	})
}

// sendOutbound applies the bounded-channel backpressure policy: Exit and
// SetClipboardContent always block-send since a host must not miss them,
// while a Redraw makes room for itself by dropping whatever is oldest in the
// channel when full. In practice that oldest entry is always a Redraw too:
// SetClipboardContent and Exit are rare and terminal, and this channel never
// holds more than one of each in flight.
func (tl *terminalLoop) sendOutbound(ev TerminalEvent) {
	switch ev.(type) {
	case RedrawEvent:
		select {
		case tl.outbound <- ev:
		default:
			select {
			case <-tl.outbound:
			default:
			}
			select {
			case tl.outbound <- ev:
			default:
			}
		}
	default:
		tl.outbound <- ev
	}
}

func (tl *terminalLoop) close() {
	tl.reader.Close()
	tl.ptmx.Close()
}
