package term

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestScreen(t *testing.T, cols, rows int) (*ScreenModel, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s := NewScreenModel(cols, rows, &buf, 100, DefaultPalette(RGBA{}))
	return s, &buf
}

func TestScreenModelApplyWritesToGrid(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	s.Apply([]byte("hello"))
	assert.Equal(t, "hello     ", s.ColumnsAsStr(0, 0, 10))
}

func TestScreenModelApplyBumpsSeqno(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	before := s.CurrentSeqno()
	s.Apply([]byte("x"))
	assert.Greater(t, s.CurrentSeqno(), before)
}

func TestScreenModelResizeBumpsSeqno(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	before := s.CurrentSeqno()
	s.Resize(20, 6)
	assert.Greater(t, s.CurrentSeqno(), before)
	cols, rows := s.Size()
	assert.Equal(t, 20, cols)
	assert.Equal(t, 6, rows)
}

func TestScreenModelKeyDownEnter(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyEnter, ModNone, "")
	assert.Equal(t, "\r", buf.String())
}

func TestScreenModelKeyDownCtrlLetter(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyChar, ModCtrl, "c")
	assert.Equal(t, []byte{3}, buf.Bytes())
}

func TestScreenModelKeyDownAltLetter(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyChar, ModAlt, "b")
	assert.Equal(t, []byte{27, 'b'}, buf.Bytes())
}

func TestScreenModelKeyDownPlainChar(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyChar, ModNone, "q")
	assert.Equal(t, "q", buf.String())
}

func TestScreenModelKeyDownArrows(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyUp, ModNone, "")
	assert.Equal(t, "\x1b[A", buf.String())
}

func TestScreenModelKeyDownDropsUnrecognizedKeysSilently(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.KeyDown(KeyShift, ModNone, "")
	assert.Empty(t, buf.String())
}

func TestScreenModelKeyDownLogsDroppedKeysWhenHooked(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	var msgs []string
	s.SetLogf(func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	})
	s.KeyDown(KeyShift, ModNone, "")
	assert.Empty(t, buf.String())
	assert.Len(t, msgs, 1)
}

func TestScreenModelSendPasteWritesTextUnbracketed(t *testing.T) {
	s, buf := newTestScreen(t, 10, 3)
	s.SendPaste("hi")
	assert.Equal(t, "hi", buf.String())
}

func TestScreenModelLineLenTrimsTrailingSpace(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	s.Apply([]byte("hi"))
	assert.Equal(t, 2, s.LineLen(0))
}

func TestScreenModelColumnsAsStrClampsRange(t *testing.T) {
	s, _ := newTestScreen(t, 5, 1)
	s.Apply([]byte("ab"))
	assert.Equal(t, "ab   ", s.ColumnsAsStr(0, -5, 50))
	assert.Equal(t, "", s.ColumnsAsStr(0, 10, 20))
}

func TestScreenModelScrollbackStartsEmpty(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	assert.Equal(t, 0, s.ScrollbackLen())
}

func TestScreenModelScrollsLinesIntoScrollback(t *testing.T) {
	s, _ := newTestScreen(t, 10, 2)
	s.Apply([]byte("first\r\n"))
	s.Apply([]byte("second\r\n"))
	s.Apply([]byte("third\r\n"))
	assert.Greater(t, s.ScrollbackLen(), 0)
}

func TestScreenModelNotificationOnTitleChange(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	var alerts []Alert
	s.SetNotificationHandler(func(a Alert) { alerts = append(alerts, a) })
	s.Apply([]byte("\x1b]0;new title\x07"))

	var found bool
	for _, a := range alerts {
		if a.Kind == AlertTitleChanged {
			assert.Equal(t, "new title", a.Title)
			found = true
		}
	}
	assert.True(t, found, "expected an AlertTitleChanged notification")
}

func TestScreenModelNotificationOnBell(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	var alerts []Alert
	s.SetNotificationHandler(func(a Alert) { alerts = append(alerts, a) })
	s.Apply([]byte("\x07"))

	var found bool
	for _, a := range alerts {
		if a.Kind == AlertBell {
			found = true
		}
	}
	assert.True(t, found, "expected an AlertBell notification")
}

func TestScreenModelNotificationOnOutputUpdate(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	var alerts []Alert
	s.SetNotificationHandler(func(a Alert) { alerts = append(alerts, a) })
	s.Apply([]byte("hi"))

	var found bool
	for _, a := range alerts {
		if a.Kind == AlertOutputUpdate {
			found = true
		}
	}
	assert.True(t, found, "expected an AlertOutputUpdate notification on every Apply")
}

func TestScreenModelIdleForTracksLastApply(t *testing.T) {
	s, _ := newTestScreen(t, 10, 3)
	assert.Equal(t, time.Duration(0), s.IdleFor(), "no output applied yet")

	s.Apply([]byte("hi"))
	assert.Less(t, s.IdleFor(), 100*time.Millisecond)
}
