package worker

import (
	"bufio"
	"errors"
	"io"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
)

// State is the worker process lifecycle.
type State int

const (
	StateUnstarted State = iota
	StateStarting
	StateReady
	StateCrashed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateCrashed:
		return "crashed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ensureReady returns the encoder for a live worker, spawning one if the
// state machine is Unstarted or Crashed. The generation number identifies
// the process the caller is about to write to.
func (c *Client) ensureReady() (*protocol.Encoder, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return nil, 0, ErrClosed
	case StateReady:
		return c.enc, c.gen, nil
	}

	// Unstarted or Crashed: lazy (re)spawn. The lock is held through
	// Launch so exactly one caller spawns; the rest see Ready.
	c.state = StateStarting
	proc, err := c.launcher.Launch()
	if err != nil {
		c.state = StateUnstarted
		return nil, 0, &StartupError{Command: c.launcher.String(), Err: err}
	}

	c.gen++
	gen := c.gen
	c.proc = proc
	c.enc = protocol.NewEncoder(proc.Stdin())
	c.state = StateReady
	c.log.Info().Uint64("generation", gen).Str("command", c.launcher.String()).Msg("worker: process started")

	go c.readLoop(gen, proc.Stdout())
	go c.forwardStderr(proc.Stderr())
	go c.watchExit(gen, proc)

	return c.enc, gen, nil
}

// readLoop demultiplexes the worker's stdout. Responses complete their
// pending call by id; replies with no matching entry are orphans (already
// timed out, or issued against an earlier generation) and are discarded.
func (c *Client) readLoop(gen uint64, stdout io.ReadCloser) {
	dec := protocol.NewDecoder(stdout)
	for {
		msg, err := dec.Next()
		if err != nil {
			var de *protocol.DecodeError
			if errors.As(err, &de) {
				c.log.Warn().Err(de.Err).Msg("worker: skipping undecodable line")
				continue
			}
			if !errors.Is(err, io.EOF) {
				c.log.Warn().Err(err).Uint64("generation", gen).Msg("worker: stdout stream error")
			}
			c.onExit(gen, err)
			return
		}

		if msg.Kind != protocol.KindResponse {
			c.log.Debug().Str("kind", msg.Kind.String()).Str("method", msg.Method).Msg("worker: ignoring non-response traffic")
			continue
		}
		id, ok := msg.IDInt64()
		if !ok {
			c.log.Debug().RawJSON("id", idOrNull(msg)).Msg("worker: discarding response with non-integer id")
			continue
		}
		if !c.pending.resolve(id, msg.Result, msg.Err) {
			c.log.Debug().Int64("id", id).Msg("worker: discarding orphan response")
		}
	}
}

func idOrNull(msg protocol.Message) []byte {
	if len(msg.ID) == 0 {
		return protocol.NullID
	}
	return msg.ID
}

// forwardStderr surfaces the worker's diagnostics through the logger. The
// stream is never parsed as protocol traffic.
func (c *Client) forwardStderr(stderr io.ReadCloser) {
	sc := bufio.NewScanner(stderr)
	sc.Buffer(make([]byte, 0, 4096), 256*1024)
	for sc.Scan() {
		c.log.Debug().Str("stream", "stderr").Msg(sc.Text())
	}
}

// watchExit observes process termination for crashes that do not first
// surface as a stream error.
func (c *Client) watchExit(gen uint64, proc Proc) {
	err := proc.Wait()
	c.onExit(gen, err)
}

// onExit moves generation gen to Crashed and fails its pending calls.
// Idempotent: the read loop and the exit watcher both report here, and
// stale generations are ignored.
func (c *Client) onExit(gen uint64, cause error) {
	c.mu.Lock()
	if c.state == StateClosed || gen != c.gen || c.state == StateCrashed {
		c.mu.Unlock()
		return
	}
	c.state = StateCrashed
	proc := c.proc
	c.proc = nil
	c.enc = nil
	c.mu.Unlock()

	if proc != nil {
		// Stream errors can precede actual exit; make sure the process is
		// gone before the next call respawns.
		_ = proc.Kill()
	}

	n := c.pending.drain(gen, ErrUnavailable)
	evt := c.log.Warn().Uint64("generation", gen).Int("failed_calls", n)
	if cause != nil && !errors.Is(cause, io.EOF) {
		evt = evt.Err(cause)
	}
	evt.Msg("worker: process exited")
}
