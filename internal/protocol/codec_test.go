package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// drip delivers one byte per Read, the worst-case chunking.
type drip struct {
	data []byte
	pos  int
}

func (d *drip) Read(p []byte) (int, error) {
	if d.pos >= len(d.data) {
		return 0, io.EOF
	}
	p[0] = d.data[d.pos]
	d.pos++
	return 1, nil
}

func TestDecoder_PartialFrameReconstruction(t *testing.T) {
	line := `{"jsonrpc":"2.0","id":12345,"method":"cas_integrate","params":{"expr":"sin(x)","symbol":"x"}}` + "\n"

	whole := NewDecoder(strings.NewReader(line))
	want, err := whole.Next()
	if err != nil {
		t.Fatalf("Next on whole stream failed: %v", err)
	}

	split := NewDecoder(&drip{data: []byte(line)})
	got, err := split.Next()
	if err != nil {
		t.Fatalf("Next on dripped stream failed: %v", err)
	}

	if got.Method != want.Method || string(got.ID) != string(want.ID) || string(got.Params) != string(want.Params) {
		t.Errorf("dripped decode differs: got %+v, want %+v", got, want)
	}
}

func TestDecoder_RecoversAfterBadLine(t *testing.T) {
	input := "not json at all\n" +
		`{"id":1,"result":{"ok":true}}` + "\n" +
		`{"garbage":` + "\n" +
		`{"id":2,"result":{"ok":true}}` + "\n"

	dec := NewDecoder(strings.NewReader(input))

	var decodeErrs int
	var ids []string
	for {
		msg, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var de *DecodeError
		if errors.As(err, &de) {
			decodeErrs++
			continue
		}
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		ids = append(ids, string(msg.ID))
	}

	if decodeErrs != 2 {
		t.Errorf("decode errors: got %d, want 2", decodeErrs)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("decoded ids: got %v, want [1 2]", ids)
	}
}

func TestDecoder_SkipsBlankLines(t *testing.T) {
	input := "\n  \n" + `{"id":1,"result":null}` + "\n\n"
	dec := NewDecoder(strings.NewReader(input))

	msg, err := dec.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if msg.Kind != KindResponse {
		t.Errorf("Kind: got %v, want response", msg.Kind)
	}

	if _, err := dec.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("want io.EOF after last message, got %v", err)
	}
}

func TestEncoder_SingleLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	msg := NewRequest(1, "cas_evaluate", json.RawMessage(`{"expr":"1+1"}`))
	if err := enc.Encode(msg); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("encoded message missing trailing newline")
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("encoded message spans %d lines, want 1", strings.Count(out, "\n"))
	}

	// Multiline content inside params must stay escaped.
	msg = NewRequest(2, "cas_evaluate", json.RawMessage(`{"expr":"line1\nline2"}`))
	buf.Reset()
	if err := enc.Encode(msg); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("embedded newline leaked into the frame")
	}
}

func TestEncoder_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf lockedBuffer
	enc := NewEncoder(&buf)

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				msg := NewRequest(int64(w*perWriter+i), "ping", nil)
				if err := enc.Encode(msg); err != nil {
					t.Errorf("Encode failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	dec := NewDecoder(bytes.NewReader(buf.Bytes()))
	count := 0
	for {
		_, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("interleaved output: decode failed at message %d: %v", count, err)
		}
		count++
	}
	if count != writers*perWriter {
		t.Errorf("decoded %d messages, want %d", count, writers*perWriter)
	}
}

// lockedBuffer makes bytes.Buffer safe for the concurrent encoder test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

func TestDecodeError_Unwrap(t *testing.T) {
	dec := NewDecoder(strings.NewReader("{bad\n"))
	_, err := dec.Next()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want *DecodeError, got %v", err)
	}
	if de.Unwrap() == nil {
		t.Error("DecodeError should wrap the underlying parse error")
	}
	if fmt.Sprintf("%s", de) == "" {
		t.Error("empty error string")
	}
}
