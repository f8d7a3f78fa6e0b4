package worker

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/BlinkZer0/Phys-MCP-sub002/internal/protocol"
)

// callResult is what a waiter receives: a payload or an error, never both.
type callResult struct {
	payload json.RawMessage
	err     error
}

// pendingCall is one in-flight request. It is owned by the table from
// register until completion and is completed exactly once; done is buffered
// so the completing side never blocks.
type pendingCall struct {
	id       int64
	gen      uint64
	method   string
	issuedAt time.Time
	timer    *time.Timer
	done     chan callResult
}

// pendingTable correlates replies to waiters by id. Whoever removes an
// entry under the lock owns its completion, which makes resolution,
// timeout, crash drain, and cancellation mutually exclusive.
type pendingTable struct {
	mu    sync.Mutex
	calls map[int64]*pendingCall
}

func newPendingTable() *pendingTable {
	return &pendingTable{calls: make(map[int64]*pendingCall)}
}

// register creates an entry and arms its timeout. gen names the worker
// process generation the call was written to, so a crash drain never
// touches calls issued against a later respawn.
func (t *pendingTable) register(id int64, gen uint64, method string, timeout time.Duration) *pendingCall {
	pc := &pendingCall{
		id:       id,
		gen:      gen,
		method:   method,
		issuedAt: time.Now(),
		done:     make(chan callResult, 1),
	}

	// The timer is armed under the lock so its callback, which re-acquires
	// the lock via fail, always observes a fully built entry.
	t.mu.Lock()
	t.calls[id] = pc
	pc.timer = time.AfterFunc(timeout, func() {
		t.fail(id, &TimeoutError{Method: method, Elapsed: time.Since(pc.issuedAt)})
	})
	t.mu.Unlock()
	return pc
}

// resolve completes id with a reply from the worker. Returns false for an
// orphan (unknown or already-completed id): expected for late replies to
// timed-out calls, which are silently discarded by the caller.
func (t *pendingTable) resolve(id int64, payload json.RawMessage, errObj *protocol.ErrorObject) bool {
	pc := t.take(id)
	if pc == nil {
		return false
	}
	pc.timer.Stop()
	if errObj != nil {
		pc.done <- callResult{err: errObj}
	} else {
		pc.done <- callResult{payload: payload}
	}
	return true
}

// fail completes id with err. No-op if the entry is already gone, so a
// timeout firing concurrently with resolution stays exactly-once.
func (t *pendingTable) fail(id int64, err error) bool {
	pc := t.take(id)
	if pc == nil {
		return false
	}
	if pc.timer != nil {
		pc.timer.Stop()
	}
	pc.done <- callResult{err: err}
	return true
}

// drain force-fails every pending call belonging to generation gen.
// Returns how many were failed.
func (t *pendingTable) drain(gen uint64, err error) int {
	t.mu.Lock()
	var victims []*pendingCall
	for id, pc := range t.calls {
		if pc.gen == gen {
			delete(t.calls, id)
			victims = append(victims, pc)
		}
	}
	t.mu.Unlock()

	for _, pc := range victims {
		pc.timer.Stop()
		pc.done <- callResult{err: err}
	}
	return len(victims)
}

// drainAll force-fails everything regardless of generation. Shutdown path.
func (t *pendingTable) drainAll(err error) int {
	t.mu.Lock()
	victims := make([]*pendingCall, 0, len(t.calls))
	for id, pc := range t.calls {
		delete(t.calls, id)
		victims = append(victims, pc)
	}
	t.mu.Unlock()

	for _, pc := range victims {
		if pc.timer != nil {
			pc.timer.Stop()
		}
		pc.done <- callResult{err: err}
	}
	return len(victims)
}

func (t *pendingTable) take(id int64) *pendingCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	pc, ok := t.calls[id]
	if !ok {
		return nil
	}
	delete(t.calls, id)
	return pc
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
