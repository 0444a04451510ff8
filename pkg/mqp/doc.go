// Package mqp implements an in-process multi-queue publish/subscribe
// fan-out engine: producers Enqueue values tagged with a key, consumers
// Subscribe to keys and receive values through a user-supplied worker pool.
//
// The package guarantees sequential, at-most-one-in-flight delivery per
// consumer and preserves per-key FIFO order, while amortizing value storage
// across fan-out subscribers via a reference-counted shared store (the
// size-tuned Registry) or, alternatively, trades memory sharing for lower
// cross-consumer contention via a per-consumer copy store (the speed-tuned
// Registry).
package mqp
