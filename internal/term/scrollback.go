package term

import (
	"sync"

	"github.com/hinshun/vt10x"
)

// scrollback is a ring buffer of physical lines that have scrolled off the
// top of the VT library's screen grid. vt10x keeps no history of its own,
// so the screen model pushes a copy of row 0 here just before it would
// otherwise be overwritten (see detectScrolled in screen.go).
type scrollback struct {
	lines    [][]vt10x.Glyph
	head     int
	count    int
	capacity int
	mu       sync.RWMutex
}

func newScrollback(capacity int) *scrollback {
	if capacity <= 0 {
		capacity = 10000
	}
	return &scrollback{
		lines:    make([][]vt10x.Glyph, capacity),
		capacity: capacity,
	}
}

// push appends a copy of line as the newest scrollback row, overwriting the
// oldest row once the buffer is full.
func (sb *scrollback) push(line []vt10x.Glyph) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	lineCopy := make([]vt10x.Glyph, len(line))
	copy(lineCopy, line)

	sb.lines[sb.head] = lineCopy
	sb.head = (sb.head + 1) % sb.capacity
	if sb.count < sb.capacity {
		sb.count++
	}
}

func (sb *scrollback) len() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.count
}

// get returns the line at index (0 = oldest line held), or nil if index is
// out of range.
func (sb *scrollback) get(index int) []vt10x.Glyph {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.getLocked(index)
}

func (sb *scrollback) getLocked(index int) []vt10x.Glyph {
	if index < 0 || index >= sb.count {
		return nil
	}
	var actual int
	if sb.count < sb.capacity {
		actual = index
	} else {
		actual = (sb.head + index) % sb.capacity
	}
	return sb.lines[actual]
}

// getRange returns lines [start, end), clamped to what's available.
func (sb *scrollback) getRange(start, end int) [][]vt10x.Glyph {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if start < 0 {
		start = 0
	}
	if end > sb.count {
		end = sb.count
	}
	if start >= end {
		return nil
	}
	result := make([][]vt10x.Glyph, end-start)
	for i := start; i < end; i++ {
		result[i-start] = sb.getLocked(i)
	}
	return result
}

func (sb *scrollback) clear() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	for i := range sb.lines {
		sb.lines[i] = nil
	}
	sb.head = 0
	sb.count = 0
}
