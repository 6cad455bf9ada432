package tokenizer

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// EOF is the sentinel code point returned once the underlying source is
// exhausted. It is never a valid Unicode scalar value.
const EOF rune = -1

// Position identifies a location in the newline-normalized input stream.
// Line is 1-based; ByteCol and CharCol are 0-based offsets from the start
// of the current line, in bytes and code points respectively.
type Position struct {
	Line    int
	ByteCol int
	CharCol int
}

// lineLen records how long a completed line was, in both units. It is
// populated the first time a line is completed by reading its terminating
// LF. Seek(SeekStart, n) re-reads the lines it passes over, so those lines
// are recorded as well.
type lineLen struct {
	bytes int
	chars int
}

// readEntry is one decoded code point together with enough information to
// undo it without touching the underlying byte source again.
type readEntry struct {
	r       rune
	byteLen int
	before  Position
}

// SeekOrigin selects the reference point for Reader.Seek.
type SeekOrigin int

const (
	// SeekStart repositions to char-offset n from the beginning of the
	// stream. It requires the underlying source to implement io.Seeker.
	SeekStart SeekOrigin = iota
	// SeekCurrent repositions relative to the current position; a negative
	// offset is equivalent to BacktrackN(-offset).
	SeekCurrent
)

// Reader decodes a UTF-8 byte stream into Unicode code points. It
// normalizes bare CR and CRLF into LF, tracks line/column position in both
// byte and code-point units, and supports backtracking and fixed-length
// lookahead without disturbing the position observed by the caller.
//
// Malformed UTF-8 is fatal. bufio.Reader.ReadRune silently substitutes
// utf8.RuneError for any byte sequence it cannot decode rather than
// returning an error, so Reader distinguishes that substitution from a
// genuine U+FFFD in the source (which decodes at its real 3-byte width)
// and surfaces it through Err instead of letting it pass as a character.
type Reader struct {
	raw    io.Reader
	seeker io.Seeker
	src    *bufio.Reader

	pos      Position
	lineLens []lineLen

	// history holds, in order, every code point consumed so far that has
	// not been backtracked, most recent last. pushback holds code points
	// that have been backtracked and will be replayed, most recently
	// backtracked last (so it behaves as a stack).
	history  []readEntry
	pushback []readEntry

	atEOF bool
	err   error
}

// NewReader wraps r. If r also implements io.Seeker, Reader.Seek(SeekStart,
// ...) becomes available; otherwise it returns an error when used.
func NewReader(r io.Reader) *Reader {
	seeker, _ := r.(io.Seeker)
	return &Reader{
		raw:    r,
		seeker: seeker,
		src:    bufio.NewReader(r),
		pos:    Position{Line: 1},
	}
}

// Pos reports the current position. It is unaffected by Peek/PeekN.
func (rd *Reader) Pos() Position {
	return rd.pos
}

// Err returns the first non-EOF I/O error observed from the underlying
// source, if any.
func (rd *Reader) Err() error {
	return rd.err
}

// Read consumes and returns the next code point, or EOF. eof is true iff
// the returned rune is EOF.
func (rd *Reader) Read() (r rune, eof bool) {
	if n := len(rd.pushback); n > 0 {
		e := rd.pushback[n-1]
		rd.pushback = rd.pushback[:n-1]
		rd.commit(e)
		return e.r, false
	}
	if rd.atEOF {
		return EOF, true
	}

	r, size, err := rd.readNormalized()
	if err != nil {
		if err != io.EOF {
			rd.err = errors.Wrap(err, "tokenizer: read input")
		}
		rd.atEOF = true
		return EOF, true
	}
	if r == utf8.RuneError && size == 1 {
		rd.err = errors.New("tokenizer: malformed UTF-8 in input")
		rd.atEOF = true
		return EOF, true
	}

	e := readEntry{r: r, byteLen: size, before: rd.pos}
	rd.commit(e)
	return r, false
}

// readNormalized decodes one rune, folding a bare CR or CRLF into a single
// LF.
func (rd *Reader) readNormalized() (rune, int, error) {
	r, size, err := rd.src.ReadRune()
	if err != nil {
		return 0, 0, err
	}
	if r == '\r' {
		if b, perr := rd.src.Peek(1); perr == nil && len(b) == 1 && b[0] == '\n' {
			rd.src.Discard(1)
			size++
		}
		r = '\n'
	}
	return r, size, nil
}

// commit advances position by e and records it in history.
func (rd *Reader) commit(e readEntry) {
	if e.r == '\n' {
		if len(rd.lineLens) == rd.pos.Line-1 {
			rd.lineLens = append(rd.lineLens, lineLen{
				bytes: rd.pos.ByteCol + e.byteLen,
				chars: rd.pos.CharCol + 1,
			})
		}
		rd.pos.Line++
		rd.pos.ByteCol = 0
		rd.pos.CharCol = 0
	} else {
		rd.pos.ByteCol += e.byteLen
		rd.pos.CharCol++
	}
	rd.history = append(rd.history, e)
	rd.atEOF = false
}

// ReadN fills buf with up to len(buf) code points, returning the number
// filled; fewer than len(buf) means EOF was reached.
func (rd *Reader) ReadN(buf []rune) int {
	n := 0
	for n < len(buf) {
		r, eof := rd.Read()
		if eof {
			break
		}
		buf[n] = r
		n++
	}
	return n
}

// Backtrack undoes the most recent Read. It is a no-op if there is nothing
// to undo.
func (rd *Reader) Backtrack() {
	rd.BacktrackN(1)
}

// BacktrackN undoes the k most recent Reads, in reverse order.
func (rd *Reader) BacktrackN(k int) {
	for i := 0; i < k; i++ {
		n := len(rd.history)
		if n == 0 {
			return
		}
		e := rd.history[n-1]
		rd.history = rd.history[:n-1]
		rd.pos = e.before
		rd.pushback = append(rd.pushback, e)
	}
}

// Peek returns the next code point without advancing position.
func (rd *Reader) Peek() (rune, bool) {
	r, eof := rd.Read()
	if !eof {
		rd.Backtrack()
	}
	return r, eof
}

// PeekN fills buf with up to len(buf) code points of lookahead, leaving
// position unchanged, and returns the number filled.
func (rd *Reader) PeekN(buf []rune) int {
	n := rd.ReadN(buf)
	rd.BacktrackN(n)
	return n
}

// Seek repositions the reader by code-point count. SeekCurrent with a
// negative offset is BacktrackN(-offset). SeekStart requires the
// underlying source to implement io.Seeker and re-reads offset code points
// from the beginning, discarding all cached history and line-length data.
func (rd *Reader) Seek(origin SeekOrigin, offset int) error {
	switch origin {
	case SeekCurrent:
		if offset < 0 {
			rd.BacktrackN(-offset)
			return nil
		}
		var discard rune
		for i := 0; i < offset; i++ {
			r, eof := rd.Read()
			discard = r
			if eof {
				break
			}
		}
		_ = discard
		return nil
	case SeekStart:
		if rd.seeker == nil {
			return errors.New("tokenizer: underlying source does not support seeking")
		}
		if _, err := rd.seeker.Seek(0, io.SeekStart); err != nil {
			return errors.Wrap(err, "tokenizer: seek to start")
		}
		rd.src = bufio.NewReader(rd.raw)
		rd.pos = Position{Line: 1}
		rd.lineLens = nil
		rd.history = nil
		rd.pushback = nil
		rd.atEOF = false
		rd.err = nil
		for i := 0; i < offset; i++ {
			if _, eof := rd.Read(); eof {
				break
			}
		}
		return nil
	default:
		return errors.Errorf("tokenizer: unknown seek origin %d", origin)
	}
}

// LineLength reports the cached (byte, char) length of line n (1-based),
// if that line has already been completed by reading its LF.
func (rd *Reader) LineLength(n int) (bytes, chars int, ok bool) {
	if n < 1 || n > len(rd.lineLens) {
		return 0, 0, false
	}
	ll := rd.lineLens[n-1]
	return ll.bytes, ll.chars, true
}
