package tokenizer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderReadAdvancesPosition(t *testing.T) {
	rd := NewReader(strings.NewReader("ab"))

	r, eof := rd.Read()
	require.False(t, eof)
	assert.Equal(t, 'a', r)
	assert.Equal(t, Position{Line: 1, ByteCol: 1, CharCol: 1}, rd.Pos())

	r, eof = rd.Read()
	require.False(t, eof)
	assert.Equal(t, 'b', r)
	assert.Equal(t, Position{Line: 1, ByteCol: 2, CharCol: 2}, rd.Pos())

	_, eof = rd.Read()
	assert.True(t, eof)
}

func TestReaderNormalizesNewlines(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"lf", "a\nb"},
		{"cr", "a\rb"},
		{"crlf", "a\r\nb"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			rd := NewReader(strings.NewReader(c.input))
			var got []rune
			for {
				r, eof := rd.Read()
				if eof {
					break
				}
				got = append(got, r)
			}
			assert.Equal(t, []rune{'a', '\n', 'b'}, got)
		})
	}
}

func TestReaderLineColTracking(t *testing.T) {
	rd := NewReader(strings.NewReader("ab\ncd"))
	for i := 0; i < 3; i++ {
		rd.Read()
	}
	assert.Equal(t, Position{Line: 2, ByteCol: 0, CharCol: 0}, rd.Pos())

	rd.Read()
	rd.Read()
	assert.Equal(t, Position{Line: 2, ByteCol: 2, CharCol: 2}, rd.Pos())

	bytes, chars, ok := rd.LineLength(1)
	require.True(t, ok)
	assert.Equal(t, 3, bytes)
	assert.Equal(t, 3, chars)
}

func TestReaderPeekDoesNotAdvance(t *testing.T) {
	rd := NewReader(strings.NewReader("xy"))

	r, eof := rd.Peek()
	require.False(t, eof)
	assert.Equal(t, 'x', r)
	assert.Equal(t, Position{Line: 1, ByteCol: 0, CharCol: 0}, rd.Pos())

	r, eof = rd.Read()
	require.False(t, eof)
	assert.Equal(t, 'x', r)
}

func TestReaderPeekAtEOFIsNoOp(t *testing.T) {
	rd := NewReader(strings.NewReader("x"))
	rd.Read()

	r, eof := rd.Peek()
	require.True(t, eof)
	assert.Equal(t, EOF, r)

	r, eof = rd.Read()
	assert.True(t, eof)
	assert.Equal(t, EOF, r)
}

func TestReaderPeekNDoesNotAdvance(t *testing.T) {
	rd := NewReader(strings.NewReader("PUBLIC"))
	buf := make([]rune, 6)
	n := rd.PeekN(buf)
	require.Equal(t, 6, n)
	assert.Equal(t, "PUBLIC", string(buf))
	assert.Equal(t, Position{Line: 1}, rd.Pos())

	r, _ := rd.Read()
	assert.Equal(t, 'P', r)
}

func TestReaderPeekNShortAtEOF(t *testing.T) {
	rd := NewReader(strings.NewReader("ab"))
	buf := make([]rune, 5)
	n := rd.PeekN(buf)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ab", string(buf[:n]))
	assert.Equal(t, Position{Line: 1}, rd.Pos())
}

func TestReaderBacktrackSingle(t *testing.T) {
	rd := NewReader(strings.NewReader("abc"))
	rd.Read()
	r, _ := rd.Read()
	require.Equal(t, 'b', r)

	rd.Backtrack()
	assert.Equal(t, Position{Line: 1, ByteCol: 1, CharCol: 1}, rd.Pos())

	r, _ = rd.Read()
	assert.Equal(t, 'b', r)
}

func TestReaderBacktrackN(t *testing.T) {
	rd := NewReader(strings.NewReader("abcd"))
	for i := 0; i < 4; i++ {
		rd.Read()
	}
	rd.BacktrackN(3)
	assert.Equal(t, Position{Line: 1, ByteCol: 1, CharCol: 1}, rd.Pos())

	var got []rune
	for i := 0; i < 3; i++ {
		r, _ := rd.Read()
		got = append(got, r)
	}
	assert.Equal(t, []rune{'b', 'c', 'd'}, got)
}

func TestReaderBacktrackBeyondHistoryIsNoOp(t *testing.T) {
	rd := NewReader(strings.NewReader("a"))
	rd.Read()
	rd.BacktrackN(10)
	r, _ := rd.Read()
	assert.Equal(t, 'a', r)
	_, eof := rd.Read()
	assert.True(t, eof)
}

func TestReaderSeekCurrentNegativeIsBacktrack(t *testing.T) {
	rd := NewReader(strings.NewReader("abc"))
	rd.Read()
	rd.Read()
	require.NoError(t, rd.Seek(SeekCurrent, -1))
	r, _ := rd.Read()
	assert.Equal(t, 'b', r)
}

func TestReaderSeekStartRequiresSeeker(t *testing.T) {
	rd := NewReader(struct{ io.Reader }{strings.NewReader("abc")})
	err := rd.Seek(SeekStart, 0)
	assert.Error(t, err)
}

func TestReaderReadNStopsAtEOF(t *testing.T) {
	rd := NewReader(strings.NewReader("ab"))
	buf := make([]rune, 5)
	n := rd.ReadN(buf)
	assert.Equal(t, 2, n)
	assert.Equal(t, "ab", string(buf[:n]))
}

func TestReaderMalformedUTF8SetsErr(t *testing.T) {
	rd := NewReader(strings.NewReader("a\xffb"))

	r, eof := rd.Read()
	require.False(t, eof)
	assert.Equal(t, 'a', r)
	require.NoError(t, rd.Err())

	_, eof = rd.Read()
	assert.True(t, eof)
	assert.Error(t, rd.Err())
}

func TestReaderGenuineReplacementCharIsNotMalformed(t *testing.T) {
	rd := NewReader(strings.NewReader("a�b"))

	var got []rune
	for {
		r, eof := rd.Read()
		if eof {
			break
		}
		got = append(got, r)
	}
	assert.Equal(t, []rune{'a', '�', 'b'}, got)
	assert.NoError(t, rd.Err())
}
