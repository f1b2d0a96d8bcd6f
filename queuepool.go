package asynccore

import (
	"sync"
	"sync/atomic"
)

// poolSlot is QueuePool's per-thread {thread_id, ports, locked} record
// from spec.md §4.2. locked is set for the duration of any ports mutation
// so a concurrent ProcessEvents call for the same thread is a safe no-op
// rather than racing the slice, mirroring original_source/queuepool.cpp.
type poolSlot struct {
	threadID ThreadID
	mu       sync.Mutex
	ports    []*receiverPort
	locked   atomic.Bool
}

// QueuePool is the process-wide singleton of spec.md §4.2: it maps every
// receive thread to the set of receive-ports that thread must drain when
// it calls ProcessEvents. ProcessEvents drains only the calling
// goroutine's own ports; ProcessEventsFor drains the ports of whatever
// ThreadID it is given and does not check that the caller is that thread.
// The pool never drains a port on its own and the library never spawns a
// goroutine to do so.
type QueuePool struct {
	mu     sync.Mutex
	slots  []*poolSlot
	filled atomic.Int64
}

var defaultPool = newQueuePool()

// DefaultQueuePool returns the process-wide QueuePool every ChannelCore,
// Asyncable-bound Async.Call, and Promise registers its queues with.
func DefaultQueuePool() *QueuePool { return defaultPool }

func newQueuePool() *QueuePool {
	return &QueuePool{slots: make([]*poolSlot, MaxThreads)}
}

func (p *QueuePool) slotFor(th ThreadID, create bool) *poolSlot {
	count := p.filled.Load()
	for i := int64(0); i < count; i++ {
		if s := p.slots[i]; s != nil && s.threadID == th {
			return s
		}
	}
	if !create {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// re-scan under the lock: another goroutine may have just filled it.
	count = p.filled.Load()
	for i := int64(0); i < count; i++ {
		if s := p.slots[i]; s != nil && s.threadID == th {
			return s
		}
	}

	if int(count) >= len(p.slots) {
		panic(&PoolExhaustedError{Table: "queuepool", Limit: len(p.slots)})
	}

	s := &poolSlot{threadID: th}
	p.slots[count] = s
	p.filled.Add(1)
	log().Debug().Uint64("thread", uint64(th)).Msg("queuepool: allocated slot")
	return s
}

// Register adds port to the slot for th, allocating the slot on first use.
func (p *QueuePool) Register(th ThreadID, port *receiverPort) {
	s := p.slotFor(th, true)
	s.locked.Store(true)
	s.mu.Lock()
	s.ports = append(s.ports, port)
	s.mu.Unlock()
	s.locked.Store(false)
}

// Unregister removes a single occurrence of port from th's slot.
func (p *QueuePool) Unregister(th ThreadID, port *receiverPort) {
	s := p.slotFor(th, false)
	if s == nil {
		return
	}
	s.locked.Store(true)
	s.mu.Lock()
	for i, pp := range s.ports {
		if pp == port {
			s.ports = append(s.ports[:i], s.ports[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.locked.Store(false)
}

// ProcessEvents drains every port registered for the calling goroutine, in
// registration order. This is the pump the host must drive on every
// receiving goroutine (spec.md §6). It is a no-op if nothing is registered
// for the caller, and a no-op (not a block) if the caller's slot happens to
// be mid-mutation on another goroutine.
func (p *QueuePool) ProcessEvents() {
	p.ProcessEventsFor(CurrentThread())
}

// ProcessEventsFor drains every port registered for th. Exported so a host
// that tracks its own thread handles explicitly can pump on behalf of a
// ThreadID it captured earlier, without relying on goroutine-id inference.
func (p *QueuePool) ProcessEventsFor(th ThreadID) {
	s := p.slotFor(th, false)
	if s == nil {
		return
	}
	if s.locked.Load() {
		return
	}
	s.mu.Lock()
	ports := s.ports
	s.mu.Unlock()
	for _, port := range ports {
		port.Process()
	}
}

// ProcessEvents drains every port registered for the calling goroutine on
// the process-wide DefaultQueuePool. This is the free function a host
// calls from its own event loop, equivalent to
// kors::async::processEvents().
func ProcessEvents() {
	defaultPool.ProcessEvents()
}
