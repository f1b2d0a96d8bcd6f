package asynccore

import "fmt"

// ErrPoolExhausted is the sentinel a *PoolExhaustedError satisfies, so
// callers can test for it with errors.Is regardless of which table
// overflowed.
var ErrPoolExhausted = fmt.Errorf("asynccore: thread slot pool exhausted")

// PoolExhaustedError reports which table overflowed its capacity and what
// that capacity was. Exceeding MaxThreadsPerChannel or MaxThreads is a
// programmer error (spec.md §7): the library panics with this type rather
// than silently misbehaving, but never calls os.Exit, so a host that wraps
// channel setup in its own recover() boundary can still degrade instead of
// crashing the whole process.
type PoolExhaustedError struct {
	Table string // "channel" or "queuepool"
	Limit int
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("asynccore: %s thread pool exhausted (limit=%d)", e.Table, e.Limit)
}

func (e *PoolExhaustedError) Is(target error) bool {
	return target == ErrPoolExhausted
}

// ErrMisuseReentrantSetOnce is logged at warn level (OnReceive has no
// return value) when OnReceive is called with SetOnce for an owner that is
// already subscribed to the channel. It is not fatal: the second call is a
// no-op, per
// spec.md §8's idempotence law for SetOnce.
var ErrMisuseReentrantSetOnce = fmt.Errorf("asynccore: SetOnce subscription already exists for this owner")

// ErrPromiseDoubleSettle is logged at warn level when a Promise's
// Resolve/Reject capability is invoked after the promise has already
// settled; the capability still returns PromiseResult, and the later call
// is a no-op. A Promise settles at most once; this is enforced by a
// mutex-guarded settled flag, matching spec.md §7's PromiseDoubleSettle.
var ErrPromiseDoubleSettle = fmt.Errorf("asynccore: promise already settled")

// errDisconnectFromWrongThread names the contract violation spec.md §7
// calls DisconnectFromWrongThreadInternal. It is never returned to a
// caller, and no code path currently reports it: Disconnect and
// disconnectAsyncable reroute a cross-thread disconnect through a queued
// CallMsg without logging or asserting.
var errDisconnectFromWrongThread = fmt.Errorf("asynccore: disconnect requested from a thread other than the owner's connect thread")
