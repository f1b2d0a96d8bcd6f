package asynccore

import (
	"sync"

	"github.com/google/uuid"
)

// disconnectable is spec.md §9's capability-to-disconnect: the interface
// an Asyncable uses to break its cycle with whatever it is connected to,
// without holding an owning reference back to it. ChannelCore implements
// it, and so does the per-call token Async.Call registers (which Promise
// delivery also goes through).
type disconnectable interface {
	disconnectAsyncable(a *Asyncable, connectThread ThreadID)
}

type connection struct {
	target disconnectable
	thread ThreadID
}

// Asyncable is the lifetime anchor of spec.md §3/§4.3: any object that
// subscribes to a Channel, schedules an Async.Call, or attaches to a
// Promise must embed one. Embed it by value; its zero value is ready to
// use. Unlike the C++ source's base-class destructor, Go has no
// destructors, so Close is the only teardown: a subscription whose owner
// is never closed (or explicitly disconnected) stays live, and Send does
// not filter it out. Close plays exactly the role the teacher's
// Subscriber.Unsubscribe
// plays for a single subscription, generalized here to every subscription
// this object holds across every channel.
type Asyncable struct {
	id uuid.UUID

	mu          sync.Mutex
	connections []connection
}

func (a *Asyncable) ensureID() {
	if a.id == uuid.Nil {
		a.id = uuid.New()
	}
}

// ID returns a stable identity for this Asyncable, assigning one on first
// use. Used to correlate log lines across threads without relying on
// pointer identity, which the garbage collector is free to reuse.
func (a *Asyncable) ID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureID()
	return a.id
}

// connectAsync records a connection on the current thread. Idempotent per
// (target, thread) pair.
func (a *Asyncable) connectAsync(target disconnectable, thread ThreadID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ensureID()
	for _, c := range a.connections {
		if c.target == target && c.thread == thread {
			return
		}
	}
	a.connections = append(a.connections, connection{target: target, thread: thread})
}

// disconnectAsync removes the recorded (target, thread) pair. Idempotent.
func (a *Asyncable) disconnectAsync(target disconnectable, thread ThreadID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, c := range a.connections {
		if c.target == target && c.thread == thread {
			a.connections = append(a.connections[:i], a.connections[i+1:]...)
			return
		}
	}
}

// connectThread reports which thread this Asyncable registered on for the
// given target, and whether it is connected to it at all.
func (a *Asyncable) connectThread(target disconnectable) (ThreadID, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.connections {
		if c.target == target {
			return c.thread, true
		}
	}
	return 0, false
}

// IsConnected reports whether this Asyncable currently holds any
// subscription, to any channel or scheduler, on any thread.
func (a *Asyncable) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.connections) > 0
}

// Close tears down every subscription this Asyncable currently holds,
// across every channel and every thread it connected from. It is the
// explicit stand-in for the C++ source's ~Asyncable() destructor: call it
// when the owning object goes out of scope. Close is itself safe to call
// concurrently with an in-flight Send on any of the channels being
// disconnected (spec.md testable property 2): for a connection made on the
// calling thread, disconnectAsyncable removes the receiver synchronously
// (or, mid iteration, disables it and defers the erase to the end of that
// iteration), so its callback can never fire again after Close returns.
// For a connection made on another thread, the disable-and-erase is routed
// through a queued CallMsg and takes effect when that thread next pumps.
func (a *Asyncable) Close() {
	a.mu.Lock()
	pairs := a.connections
	a.connections = nil
	a.mu.Unlock()

	for _, c := range pairs {
		c.target.disconnectAsyncable(a, c.thread)
	}
}
