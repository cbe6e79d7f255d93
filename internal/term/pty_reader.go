package term

import (
	"bytes"
	"io"
	"os"
	"time"
)

const (
	ptyReadBufSize  = 128 * 1024
	coalesceDelay   = 3 * time.Millisecond
	synchronizedSet = "\x1b[?2026h"
	synchronizedRst = "\x1b[?2026l"
	softReset       = "\x1b[!p"
)

// ptyReader reads raw bytes off a PTY master and coalesces them into chunks
// before handing them to the terminal loop, batching fast, chatty output
// from unoptimized TUI programs into fewer Apply calls. It never interprets
// the stream beyond scanning for the synchronized-output and soft-reset
// sequences that delimit flush boundaries; vt10x parses and applies bytes in
// one call downstream, so there is no separate action stage to inspect. The
// 3ms accumulation window is driven through SetReadDeadline on the master
// file when available.
type ptyReader struct {
	r      io.Reader
	chunks chan []byte
	done   chan struct{}
}

// newPtyReader starts a goroutine reading from r (normally the PTY master's
// read end) and returns the channel of coalesced chunks it produces. The
// channel is closed when r returns EOF or a non-timeout error.
func newPtyReader(r io.Reader) *ptyReader {
	pr := &ptyReader{
		r:      r,
		chunks: make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	go pr.loop()
	return pr
}

func (pr *ptyReader) Chunks() <-chan []byte {
	return pr.chunks
}

func (pr *ptyReader) Close() {
	close(pr.done)
}

func (pr *ptyReader) loop() {
	defer close(pr.chunks)

	deadlined, _ := pr.r.(interface {
		SetReadDeadline(time.Time) error
	})

	buf := make([]byte, ptyReadBufSize)
	var pending []byte
	var hold bool
	var deadline time.Time

	for {
		select {
		case <-pr.done:
			if len(pending) > 0 {
				pr.chunks <- pending
			}
			return
		default:
		}

		if deadlined != nil {
			if !deadline.IsZero() {
				remaining := time.Until(deadline)
				if remaining < 0 {
					remaining = 0
				}
				deadlined.SetReadDeadline(time.Now().Add(remaining))
			} else {
				deadlined.SetReadDeadline(time.Time{})
			}
		}

		n, err := pr.r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if scanSyncOutputStart(chunk) {
				if len(pending) > 0 {
					pr.chunks <- pending
					pending = nil
				}
				hold = true
			}
			pending = append(pending, chunk...)
			boundary := scanFlushBoundary(chunk)
			if boundary {
				hold = false
			}

			if len(pending) > 0 && !hold {
				if !boundary && len(pending) < ptyReadBufSize {
					if deadline.IsZero() {
						deadline = time.Now().Add(coalesceDelay)
						continue
					}
					if time.Now().Before(deadline) {
						continue
					}
				}
				pr.chunks <- pending
				pending = nil
				deadline = time.Time{}
			}
			continue
		}

		if err != nil {
			if isTimeout(err) {
				if len(pending) > 0 && !hold && !deadline.IsZero() && !time.Now().Before(deadline) {
					pr.chunks <- pending
					pending = nil
					deadline = time.Time{}
				}
				continue
			}
			if len(pending) > 0 {
				pr.chunks <- pending
			}
			return
		}
	}
}

// scanSyncOutputStart reports whether chunk begins a DEC synchronized
// output block (CSI ?2026h), which should hold flushing until the matching
// reset arrives so a renderer never observes a partially drawn frame.
func scanSyncOutputStart(chunk []byte) bool {
	return bytes.Contains(chunk, []byte(synchronizedSet)) &&
		!precedesReset(chunk)
}

// precedesReset reports whether a reset for synchronized output already
// appears after the most recent set within the same chunk, meaning the hold
// it would otherwise trigger has already been cleared.
func precedesReset(chunk []byte) bool {
	setIdx := bytes.LastIndex(chunk, []byte(synchronizedSet))
	if setIdx < 0 {
		return false
	}
	rstIdx := bytes.LastIndex(chunk, []byte(synchronizedRst))
	return rstIdx > setIdx
}

// scanFlushBoundary reports whether chunk contains a synchronized-output
// reset or a soft reset, either of which should force an immediate flush of
// everything accumulated so far.
func scanFlushBoundary(chunk []byte) bool {
	return bytes.Contains(chunk, []byte(synchronizedRst)) ||
		bytes.Contains(chunk, []byte(softReset))
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return err == os.ErrDeadlineExceeded
}
