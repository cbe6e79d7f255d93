package term

// SessionId uniquely identifies a Session within a process lifetime. Ids are
// allocated monotonically by a Registry and never reused.
type SessionId uint64

// TerminalSize is the geometry a Resize carries: the cell grid plus the
// pixel dimensions of that grid (not of the window around it).
type TerminalSize struct {
	Rows        int
	Cols        int
	PixelWidth  int
	PixelHeight int
	DPI         int
}

// KeyCode enumerates the keys the engine understands. Decoding a native GUI
// key event into one of these is the host's job.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyChar         // printable character; see Keydown.Text
	KeyEnter
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyShift
	KeyControl
	KeyEscape
	KeySuper
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
)

// KeyModifiers is a bitset of modifier keys held during a Keydown. At most
// one "high bit" should be set by a well-behaved host, in priority order
// Alt > Shift > Super > Ctrl, but the engine itself treats them as an
// ordinary independent bitset.
type KeyModifiers uint8

const (
	ModNone KeyModifiers = 0
	ModAlt  KeyModifiers = 1 << iota
	ModShift
	ModCtrl
	ModSuper
)

// MouseButton enumerates the buttons/wheel directions a MouseEvent reports.
type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	MouseWheelUp
	MouseWheelDown
)

// MouseEventKind is the phase of a mouse interaction.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
)

// MouseEvent is a single pointer interaction reported in visible cell
// coordinates, with sub-cell pixel offsets for hosts that want smoother
// hit-testing than whole cells.
type MouseEvent struct {
	Kind          MouseEventKind
	Button        MouseButton
	X, Y          int
	XPixelOffset  int
	YPixelOffset  int
	Modifiers     KeyModifiers
	WheelCount    int // for WheelUp/WheelDown, number of notches
}

// CursorPosition is a visible-space cursor location: (col, row) within
// [0, physicalCols) x [0, physicalRows).
type CursorPosition struct {
	X, Y int
}

// UserEvent is the closed set of events a host sends into a session's
// inbound channel. The marker method keeps this a sum type other packages
// cannot accidentally extend.
type UserEvent interface {
	isUserEvent()
}

type ResizeEvent struct{ Size TerminalSize }

func (ResizeEvent) isUserEvent() {}

type PasteEvent struct{ Text string }

func (PasteEvent) isUserEvent() {}

type CopySelectionEvent struct{}

func (CopySelectionEvent) isUserEvent() {}

type KeydownEvent struct {
	Key  KeyCode
	Mods KeyModifiers
	// Text carries the literal character(s) for KeyChar; ignored otherwise.
	Text string
}

func (KeydownEvent) isUserEvent() {}

type ScrollEvent struct{ DeltaY float64 }

func (ScrollEvent) isUserEvent() {}

type MouseUserEvent struct{ Event MouseEvent }

func (MouseUserEvent) isUserEvent() {}

type RequestRedrawEvent struct{}

func (RequestRedrawEvent) isUserEvent() {}

// TerminalEvent is the closed set of events a session publishes to its
// outbound channel.
type TerminalEvent interface {
	isTerminalEvent()
}

type RedrawEvent struct {
	Lines               []LineElement
	Cursor              CursorPosition
	ScrollTop           int
	Selection           *ResolvedSelection
	TerminalVisibleSize [2]int // cols, rows
}

func (RedrawEvent) isTerminalEvent() {}

type SetClipboardContentEvent struct{ Text string }

func (SetClipboardContentEvent) isTerminalEvent() {}

type ExitEvent struct{ Err error }

func (ExitEvent) isTerminalEvent() {}

// AlertKind enumerates the kinds of out-of-band notification a ScreenModel
// can publish through its registry's alert bus.
type AlertKind int

const (
	AlertTitleChanged AlertKind = iota
	AlertBell
	AlertOutputUpdate
)

// Alert is one notification published on a Registry's event bus, keyed by
// the session it originated from.
type Alert struct {
	Session SessionId
	Kind    AlertKind
	Title   string // set only for AlertTitleChanged
}
