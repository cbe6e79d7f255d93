package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	xterm "golang.org/x/term"

	rterm "github.com/ZeroX-DG/raven/internal/term"
)

var version = "dev"

// systemClipboard adapts atotto/clipboard to the engine's clipboard
// collaborator interfaces.
type systemClipboard struct{}

func (systemClipboard) SetText(s string) error { return clipboard.WriteAll(s) }

func (systemClipboard) GetText() (string, error) { return clipboard.ReadAll() }

var clip interface {
	rterm.ClipboardWriter
	rterm.ClipboardReader
} = systemClipboard{}

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#cbccc6")).
	Background(lipgloss.Color("#0D0221")).
	Bold(true)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("raventerm", version)
		return
	}

	fd := int(os.Stdin.Fd())
	prevState, err := xterm.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "raventerm: raw mode: %v\n", err)
		os.Exit(1)
	}
	defer xterm.Restore(fd, prevState)

	cols, rows, err := xterm.GetSize(fd)
	if err != nil {
		cols, rows = 80, 24
	}

	registry := rterm.NewRegistry(rterm.DefaultPalette(rterm.RGBA{}))
	handle, err := registry.NewSession(rterm.TerminalSize{Rows: rows, Cols: cols})
	if err != nil {
		fmt.Fprintf(os.Stderr, "raventerm: start session: %v\n", err)
		os.Exit(1)
	}

	go pumpStdin(handle)

	for ev := range handle.Events() {
		switch e := ev.(type) {
		case rterm.RedrawEvent:
			renderFrame(e, handle)
		case rterm.SetClipboardContentEvent:
			clip.SetText(e.Text)
		case rterm.ExitEvent:
			return
		}
	}
}

// pumpStdin translates raw stdin bytes into Keydown UserEvents. This is
// intentionally a minimal key decoder, standing in for the GUI key-decoding
// step a real host would own.
func pumpStdin(handle *rterm.SessionHandle) {
	reader := bufio.NewReader(os.Stdin)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == 0x03 {
			// Ctrl+C: copy a pending selection (a no-op if none is active)
			// without swallowing the interrupt the shell still needs.
			handle.Send(rterm.CopySelectionEvent{})
		}
		if b == 0x16 {
			// Ctrl+V: clipboard reads happen on the host side, which
			// forwards the text in as a paste.
			if text, err := clip.GetText(); err == nil && text != "" {
				handle.Send(rterm.PasteEvent{Text: text})
			}
			continue
		}
		handle.Send(decodeByte(b))
	}
}

func decodeByte(b byte) rterm.UserEvent {
	switch b {
	case '\r', '\n':
		return rterm.KeydownEvent{Key: rterm.KeyEnter}
	case 0x7f:
		return rterm.KeydownEvent{Key: rterm.KeyBackspace}
	case 0x1b:
		return rterm.KeydownEvent{Key: rterm.KeyEscape}
	case 0x03:
		return rterm.KeydownEvent{Key: rterm.KeyChar, Mods: rterm.ModCtrl, Text: "c"}
	case '\t':
		return rterm.KeydownEvent{Key: rterm.KeyTab}
	default:
		return rterm.KeydownEvent{Key: rterm.KeyChar, Text: string(rune(b))}
	}
}

// renderFrame writes one Redraw's lines to stdout as ANSI, positions the
// cursor, and draws a one-line status bar showing the session title and
// scrollback position.
func renderFrame(e rterm.RedrawEvent, handle *rterm.SessionHandle) {
	var out []byte
	out = append(out, "\x1b[H"...)

	for i, line := range e.Lines {
		if i > 0 {
			out = append(out, "\r\n"...)
		}
		for _, seg := range line.Clusters() {
			out = append(out, ansiForSegment(seg)...)
			out = append(out, seg.Text...)
		}
		out = append(out, "\x1b[0m"...)
	}

	status := fmt.Sprintf(" %s | scroll %d ", titleOr(handle, "raventerm"), e.ScrollTop)
	out = append(out, "\r\n"...)
	out = append(out, statusStyle.Render(status)...)

	if e.Cursor.X >= 0 {
		out = append(out, fmt.Sprintf("\x1b[%d;%dH", e.Cursor.Y+1, e.Cursor.X+1)...)
	}

	os.Stdout.Write(out)
}

func titleOr(handle *rterm.SessionHandle, fallback string) string {
	if t := handle.Title(); t != "" {
		return t
	}
	return fallback
}

func ansiForSegment(seg rterm.LineSegment) string {
	fg := seg.Foreground
	bg := seg.Background
	bold := ""
	if seg.Intensity == "bold" {
		bold = "1;"
	}
	return fmt.Sprintf("\x1b[0;%s38;2;%d;%d;%d;48;2;%d;%d;%dm", bold, fg.R, fg.G, fg.B, bg.R, bg.G, bg.B)
}
