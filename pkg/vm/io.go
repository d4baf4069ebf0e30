package vm

import (
	"bufio"
	"io"
)

// InputBuffer is a line-buffered reader over a character stream
// (§4.6). When its internal buffer is exhausted it reads one line, up
// to and including the terminating newline, from the underlying
// stream; the newline is delivered to the program as part of the
// stream. The single line "~" is a sentinel consumed by the buffer
// and redirected as a pause request (§4.10): it is never delivered to
// the machine.
type InputBuffer struct {
	r       *bufio.Reader
	pending []byte
	pos     int
	onPause func()
}

// NewInputBuffer wraps r.
func NewInputBuffer(r io.Reader) *InputBuffer {
	return &InputBuffer{r: bufio.NewReader(r)}
}

// OnPause registers a callback invoked whenever the "~" sentinel is
// read. Typically wired to Machine.RequestPause.
func (b *InputBuffer) OnPause(fn func()) {
	b.onPause = fn
}

// ReadByte returns the next input byte, refilling from the underlying
// stream (and silently swallowing pause-sentinel lines) as needed. It
// returns an error only when the underlying stream is exhausted or
// fails.
func (b *InputBuffer) ReadByte() (byte, error) {
	for b.pos >= len(b.pending) {
		line, err := b.r.ReadString('\n')
		if line == "" && err != nil {
			return 0, err
		}
		if line == "~\n" || line == "~" {
			if b.onPause != nil {
				b.onPause()
			}
			if err != nil {
				return 0, err
			}
			continue
		}
		b.pending = []byte(line)
		b.pos = 0
		if err != nil && len(b.pending) == 0 {
			return 0, err
		}
	}
	c := b.pending[b.pos]
	b.pos++
	return c, nil
}

// OutputBuffer is a thin wrapper around a byte sink (§4.6); each OUT
// writes exactly one byte. Flushing semantics are the underlying
// sink's; OutputBuffer flushes after every write so output is visible
// immediately (matching an interactive character stream rather than a
// batch file sink).
type OutputBuffer struct {
	w        *bufio.Writer
	captured []byte
}

// NewOutputBuffer wraps w.
func NewOutputBuffer(w io.Writer) *OutputBuffer {
	return &OutputBuffer{w: bufio.NewWriter(w)}
}

// WriteByte writes a single byte, flushes, and mirrors the byte into
// the side buffer the Debug/Trace observer reads from (§4.8).
func (o *OutputBuffer) WriteByte(b byte) error {
	o.captured = append(o.captured, b)
	if err := o.w.WriteByte(b); err != nil {
		return err
	}
	return o.w.Flush()
}

// Captured returns every byte written so far through WriteByte.
func (o *OutputBuffer) Captured() []byte { return o.captured }

// Flush flushes any buffered output.
func (o *OutputBuffer) Flush() error {
	return o.w.Flush()
}
