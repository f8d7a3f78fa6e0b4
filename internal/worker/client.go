package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
)

// DefaultCallTimeout bounds a call when no per-call override is given.
const DefaultCallTimeout = 30 * time.Second

// Config wires a Client.
type Config struct {
	// Launcher spawns the worker process. Required.
	Launcher Launcher

	// CallTimeout is the default per-call deadline. Zero means
	// DefaultCallTimeout.
	CallTimeout time.Duration

	Log zerolog.Logger
}

// Client multiplexes concurrent calls onto one worker process. Requests go
// out as JSON lines on the worker's stdin; replies come back on its stdout
// and are matched to waiters by id. The worker is spawned lazily on the
// first call and respawned lazily after a crash.
type Client struct {
	launcher    Launcher
	callTimeout time.Duration
	log         zerolog.Logger

	nextID  atomic.Int64
	pending *pendingTable

	mu    sync.Mutex
	state State
	gen   uint64
	proc  Proc
	enc   *protocol.Encoder
}

// NewClient builds a Client. The worker is not spawned until the first
// call.
func NewClient(cfg Config) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Client{
		launcher:    cfg.Launcher,
		callTimeout: cfg.CallTimeout,
		log:         cfg.Log,
		pending:     newPendingTable(),
		state:       StateUnstarted,
	}
}

// Call issues method with the default timeout. params may be nil, a
// json.RawMessage, or any marshalable value.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	return c.CallTimeout(ctx, method, params, c.callTimeout)
}

// CallTimeout issues method and waits for its correlated reply.
//
// The returned error is a *StartupError when the worker could not be
// spawned, a *TimeoutError when no reply arrived in time, ErrUnavailable
// when the worker died mid-call, ErrClosed after shutdown, a
// *protocol.ErrorObject when the worker answered with a domain error, or
// the context error when ctx was cancelled first.
func (c *Client) CallTimeout(ctx context.Context, method string, params interface{}, timeout time.Duration) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("worker: marshal params for %q: %w", method, err)
	}
	if timeout <= 0 {
		timeout = c.callTimeout
	}

	enc, gen, err := c.ensureReady()
	if err != nil {
		return nil, err
	}

	id := c.nextID.Add(1)
	pc := c.pending.register(id, gen, method, timeout)

	if err := enc.Encode(protocol.NewRequest(id, method, raw)); err != nil {
		// A failed write means the stream is gone: treat it as a crash so
		// every other pending call fails fast too.
		c.onExit(gen, err)
		c.pending.fail(id, ErrUnavailable)
		res := <-pc.done
		return nil, res.err
	}

	select {
	case res := <-pc.done:
		return res.payload, res.err
	case <-ctx.Done():
		// The entry may resolve concurrently; whoever removed it first
		// determines the outcome.
		c.pending.fail(id, ctx.Err())
		res := <-pc.done
		return res.payload, res.err
	}
}

// Pending reports how many calls are currently awaiting replies.
func (c *Client) Pending() int {
	return c.pending.size()
}

// Close terminates the worker process and force-completes every pending
// call with ErrClosed. Subsequent calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	proc := c.proc
	c.proc = nil
	c.enc = nil
	c.mu.Unlock()

	n := c.pending.drainAll(ErrClosed)
	if n > 0 {
		c.log.Debug().Int("cancelled", n).Msg("worker: close cancelled pending calls")
	}
	if proc != nil {
		return proc.Kill()
	}
	return nil
}

func marshalParams(params interface{}) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	default:
		return json.Marshal(params)
	}
}
