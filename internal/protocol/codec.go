package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
)

// maxLineBytes bounds one encoded message. Plot results carry base64 PNGs,
// so the ceiling is generous.
const maxLineBytes = 16 * 1024 * 1024

// DecodeError marks one malformed line. The stream itself is still good;
// callers skip the line and keep reading.
type DecodeError struct {
	Line []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: undecodable line: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder turns a raw byte stream into a sequence of Messages, one per
// newline-terminated line. Partial lines are retained across reads, so a
// message split across arbitrary chunk boundaries decodes identically to
// one delivered whole.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder wraps r. The buffer is enlarged beyond the bufio default to
// accommodate plot payloads.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{sc: sc}
}

// Next returns the next decoded message.
//
// A line that is non-empty after trimming but fails to parse yields a
// *DecodeError; the decoder remains usable and subsequent lines are
// unaffected. Blank lines are skipped. io.EOF signals a cleanly closed
// stream; any other error is a stream-level failure.
func (d *Decoder) Next() (Message, error) {
	for d.sc.Scan() {
		line := bytes.TrimSpace(d.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		msg, err := Parse(line)
		if err != nil {
			bad := make([]byte, len(line))
			copy(bad, line)
			return Message{}, &DecodeError{Line: bad, Err: err}
		}
		return msg, nil
	}
	if err := d.sc.Err(); err != nil {
		return Message{}, err
	}
	return Message{}, io.EOF
}

// Encoder serializes messages as single newline-terminated lines. Each
// encoded line is written with one Write call under a mutex, so concurrent
// callers never interleave bytes on the shared stream.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes msg as one line. A serialized message may not contain a
// raw newline; encoding/json escapes them inside strings, so a hit here
// means a corrupted message rather than valid input.
func (e *Encoder) Encode(msg Message) error {
	data, err := msg.MarshalJSON()
	if err != nil {
		return err
	}
	if bytes.IndexByte(data, '\n') >= 0 {
		return fmt.Errorf("protocol: encoded message contains raw newline")
	}
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(buf)
	return err
}
