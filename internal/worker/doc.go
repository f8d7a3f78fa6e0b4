// Package worker owns the client side of the bridge: the lifecycle of the
// external computation process and the multiplexing of concurrent calls
// onto its single stdio stream pair.
//
// # Lifecycle
//
// One Client owns at most one live worker process:
//
//	Unstarted --first call--> Starting --spawned--> Ready
//	Ready --exit or stream error--> Crashed
//	Crashed --next call--> Starting (lazy respawn)
//
// Spawning is lazy on both the first call and after a crash; an idle bridge
// never pays process startup cost. On crash every pending call fails
// immediately with ErrUnavailable rather than waiting out its timeout.
//
// # Correlation
//
// Calls carry monotonically increasing integer ids. Replies are matched to
// waiters by id, so concurrent calls may complete in any order; the only
// serialization is the byte-level write of each encoded request line.
// Every registered call completes exactly once: by reply, timeout, crash
// drain, context cancellation, or shutdown. A reply whose id has no waiter
// (typically one that arrives after its call timed out) is discarded.
//
// # Usage
//
//	client := worker.NewClient(worker.Config{
//	    Launcher: worker.Command{Path: "python3", Args: []string{"-m", "worker"}},
//	    Log:      logger,
//	})
//	defer client.Close()
//
//	result, err := client.Call(ctx, "cas_evaluate", map[string]any{"expr": "2+2"})
package worker
