package mqp

// Token is an opaque affinity hint passed to Pool.Post. Implementations may
// group tasks carrying an equal token onto a single logical goroutine to
// emulate single-thread-apartment execution for a consumer, but the core
// never relies on that: correctness comes from the processor's own
// at-most-one-in-flight bookkeeping (see processor.go), not from the pool
// honoring the hint.
type Token = any

// Pool is the worker-pool contract the Registry depends on to run delivery
// tasks. It is implemented by the caller (or by pkg/workerpool's concrete
// implementation); the core never assumes anything about parallelism,
// fairness, or whether Post blocks.
type Pool interface {
	// Post schedules task for execution. task is a nullary callable with no
	// return; it is executed at most once. Order between calls carrying
	// different tokens is not guaranteed.
	Post(task func(), token Token)

	// Stop drains or aborts outstanding tasks and releases pool resources.
	Stop()
}
