package asynccore

import (
	"bytes"
	"runtime"
	"strconv"
)

// ThreadID is the Go analogue of std::thread::id in the source this
// package is modeled on: an opaque, comparable identity for "the thread
// that is currently running". Go has no OS threads in the user-visible
// API, so ThreadID identifies the calling goroutine instead — every
// ChannelCore bucket, QueuePool slot, and Asyncable connection record is
// keyed by one.
type ThreadID uint64

// CurrentThread returns the ThreadID of the calling goroutine. It is the
// Go equivalent of std::this_thread::get_id(), used implicitly everywhere
// spec.md says an operation happens "on the current thread".
//
// There is no supported runtime API for this, so CurrentThread parses the
// "goroutine NNN [...]" header that runtime.Stack always writes first.
// This is the same technique every "goroutine id" utility in the wild
// relies on internally (including the one this module would otherwise
// have imported for this exact purpose); it is kept here, rather than
// behind a third-party dependency, because no version of that dependency
// with a retrievable, grounded API surface was available to pin against.
func CurrentThread() ThreadID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]

	sp := bytes.IndexByte(b, ' ')
	if sp < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:sp]), 10, 64)
	if err != nil {
		return 0
	}
	return ThreadID(id)
}
