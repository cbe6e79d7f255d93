package term

import (
	"testing"

	"github.com/hinshun/vt10x"
	"github.com/stretchr/testify/assert"
)

func makeTestLine(s string) []vt10x.Glyph {
	glyphs := make([]vt10x.Glyph, len(s))
	for i, ch := range s {
		glyphs[i] = vt10x.Glyph{Char: ch}
	}
	return glyphs
}

func lineToString(line []vt10x.Glyph) string {
	if line == nil {
		return ""
	}
	runes := make([]rune, len(line))
	for i, g := range line {
		runes[i] = g.Char
	}
	return string(runes)
}

func TestScrollbackBasic(t *testing.T) {
	sb := newScrollback(5)
	assert.Equal(t, 0, sb.len())
	assert.Equal(t, 5, sb.capacity)

	sb.push(makeTestLine("line1"))
	sb.push(makeTestLine("line2"))
	sb.push(makeTestLine("line3"))

	assert.Equal(t, 3, sb.len())
	assert.Equal(t, "line1", lineToString(sb.get(0)))
	assert.Equal(t, "line2", lineToString(sb.get(1)))
	assert.Equal(t, "line3", lineToString(sb.get(2)))
}

func TestScrollbackWraparound(t *testing.T) {
	sb := newScrollback(3)
	sb.push(makeTestLine("a"))
	sb.push(makeTestLine("b"))
	sb.push(makeTestLine("c"))
	sb.push(makeTestLine("d")) // evicts "a"

	assert.Equal(t, 3, sb.len())
	assert.Equal(t, "b", lineToString(sb.get(0)))
	assert.Equal(t, "c", lineToString(sb.get(1)))
	assert.Equal(t, "d", lineToString(sb.get(2)))
}

func TestScrollbackGetOutOfRange(t *testing.T) {
	sb := newScrollback(3)
	sb.push(makeTestLine("a"))
	assert.Nil(t, sb.get(-1))
	assert.Nil(t, sb.get(1))
}

func TestScrollbackGetRange(t *testing.T) {
	sb := newScrollback(5)
	sb.push(makeTestLine("a"))
	sb.push(makeTestLine("b"))
	sb.push(makeTestLine("c"))

	got := sb.getRange(1, 3)
	assert.Len(t, got, 2)
	assert.Equal(t, "b", lineToString(got[0]))
	assert.Equal(t, "c", lineToString(got[1]))

	assert.Nil(t, sb.getRange(5, 10))
}

func TestScrollbackClear(t *testing.T) {
	sb := newScrollback(3)
	sb.push(makeTestLine("a"))
	sb.clear()
	assert.Equal(t, 0, sb.len())
	assert.Nil(t, sb.get(0))
}

func TestScrollbackPushCopiesLine(t *testing.T) {
	sb := newScrollback(3)
	line := makeTestLine("abc")
	sb.push(line)
	line[0].Char = 'X'
	assert.Equal(t, "abc", lineToString(sb.get(0)))
}

func TestNewScrollbackDefaultCapacity(t *testing.T) {
	sb := newScrollback(0)
	assert.Equal(t, 10000, sb.capacity)
}
