package asynccore

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SendMode selects how ChannelCore.Send fans a value out, per spec.md
// §4.4.
type SendMode int

const (
	// Auto delivers synchronously, in-line, to every receiver whose
	// connect thread is the calling thread, then enqueues a CallMsg for
	// every other connect thread. This is the default a Channel uses.
	Auto SendMode = iota
	// Queue enqueues a CallMsg for every connect thread, including the
	// sender's own — even a same-thread receiver only observes the
	// value on that thread's next ProcessEvents call.
	Queue
)

// SubscribeMode selects OnReceive's replacement behavior for an owner
// that is already subscribed, per spec.md §4.4.
type SubscribeMode int

const (
	// SetOnce is a no-op (logged, not fatal) if owner is already
	// subscribed to this core.
	SetOnce SubscribeMode = iota
	// SetRepeat replaces the existing callback for owner.
	SetRepeat
)

// ChannelCore is the generic multi-threaded fan-out engine of spec.md §2
// ("Channel core (ChannelImpl)"): per-receiver-thread buckets of receiver
// records, per-sender-thread outbound queues keyed by receive-thread,
// deferred add/remove during iteration, and a counted enabled-receivers
// total. Channel[T] and friends are thin, type-safe facades over one of
// these; ChannelCore itself operates on erased []any argument slices so
// the fan-out machinery is written exactly once.
type ChannelCore struct {
	id uuid.UUID

	maxThreads int

	allocMu sync.Mutex // guards append-only growth of buckets
	buckets []*threadBucket
	count   atomic.Int64

	enabledReceivers atomic.Int64

	closedMu sync.Mutex
	closed   bool
}

// NewChannelCore creates a core that can track buckets for up to
// MaxThreadsPerChannel distinct threads.
func NewChannelCore() *ChannelCore {
	return NewChannelCoreWithLimit(MaxThreadsPerChannel)
}

// NewChannelCoreWithLimit is NewChannelCore with an explicit per-core
// override of MaxThreadsPerChannel, for a core that is known to only ever
// see a few threads.
func NewChannelCoreWithLimit(maxThreads int) *ChannelCore {
	return &ChannelCore{
		id:         uuid.New(),
		maxThreads: maxThreads,
		buckets:    make([]*threadBucket, maxThreads),
	}
}

// bucketFor finds, or on create=true allocates, the bucket for th. Reads
// of already-allocated slots are lock-free (invariant 5, spec.md §3);
// allocation takes allocMu only for the append itself.
func (c *ChannelCore) bucketFor(th ThreadID, create bool) *threadBucket {
	n := c.count.Load()
	for i := int64(0); i < n; i++ {
		if b := c.buckets[i]; b != nil && b.threadID == th {
			return b
		}
	}
	if !create {
		return nil
	}

	c.allocMu.Lock()
	defer c.allocMu.Unlock()

	n = c.count.Load()
	for i := int64(0); i < n; i++ {
		if b := c.buckets[i]; b != nil && b.threadID == th {
			return b
		}
	}

	if int(n) >= c.maxThreads {
		panic(&PoolExhaustedError{Table: "channel", Limit: c.maxThreads})
	}

	b := newThreadBucket(th)
	c.buckets[n] = b
	c.count.Add(1)
	log().Debug().Str("core", c.id.String()).Uint64("thread", uint64(th)).Msg("channelcore: allocated bucket")
	return b
}

func (c *ChannelCore) liveBuckets() []*threadBucket {
	n := c.count.Load()
	out := make([]*threadBucket, 0, n)
	for i := int64(0); i < n; i++ {
		if b := c.buckets[i]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// OnReceive records a subscription on the current thread, per spec.md
// §4.4. owner may be nil for an anonymous, unbound subscription.
func (c *ChannelCore) OnReceive(owner *Asyncable, callback func(args []any), mode SubscribeMode) {
	th := CurrentThread()
	b := c.bucketFor(th, true)

	if owner != nil {
		if existing := b.findReceiver(owner); existing != nil {
			if mode == SetOnce {
				log().Warn().Str("core", c.id.String()).Msg(ErrMisuseReentrantSetOnce.Error())
				return
			}
			existing.callback = callback
			return
		}
	}

	r := &receiverRecord{enabled: true, owner: owner, callback: callback}
	b.addReceiver(r)
	c.enabledReceivers.Add(1)

	if owner != nil {
		owner.connectAsync(c, th)
	}
}

// sendToQueue finds or creates the OutQueue from sendBucket to
// receiveThread and enqueues msg on it. A newly created queue has its
// receive half registered with the QueuePool exactly once; the send half
// is not registered, since it has nothing for that thread's ProcessEvents
// to usefully drain (see DESIGN.md).
func (c *ChannelCore) sendToQueue(sendBucket *threadBucket, receiveThread ThreadID, msg callMsg) {
	oq := sendBucket.outQueueFor(receiveThread)
	if oq == nil {
		q := newQueue(QueueCapacity)
		sp, rp := q.ports()

		receiveBucket := c.bucketFor(receiveThread, true)
		rp.OnMessage(func(m callMsg) {
			m.fn(receiveBucket)
		})

		DefaultQueuePool().Register(receiveThread, rp)

		oq = &outQueue{receiveThread: receiveThread, q: q, send: sp, recv: rp}
		sendBucket.outQueues = append(sendBucket.outQueues, oq)
	}
	oq.send.Send(msg)
}

// Send fans args out to every subscriber per mode (spec.md §4.4). It is a
// no-op, allocating no queues, if the core currently has no enabled
// receivers (spec.md §8, boundary behavior).
func (c *ChannelCore) Send(mode SendMode, args ...any) {
	if !c.IsConnected() {
		return
	}

	th := CurrentThread()
	sendBucket := c.bucketFor(th, true)

	switch mode {
	case Auto:
		sendBucket.receiversCall(func(r *receiverRecord) {
			r.callback(args)
		})
		for _, b := range c.liveBuckets() {
			if b.threadID == th {
				continue
			}
			c.sendToQueue(sendBucket, b.threadID, deliverMsg(args))
		}
	case Queue:
		for _, b := range c.liveBuckets() {
			c.sendToQueue(sendBucket, b.threadID, deliverMsg(args))
		}
	}
}

// Disconnect removes owner's subscription, per spec.md §4.4. If called on
// owner's own connect thread outside of an in-flight iteration, the
// removal is synchronous; if called on that thread during an iteration,
// the receiver is disabled immediately and its erase is deferred to the
// end of the current iteration. If called from any other thread, owner's
// connection record is dropped immediately, but the receiver itself stays
// enabled until the connect thread drains the queued CallMsg that
// disables and erases it.
func (c *ChannelCore) Disconnect(owner *Asyncable) {
	if owner == nil {
		return
	}
	connectThread, ok := owner.connectThread(c)
	if !ok {
		return
	}

	currentThread := CurrentThread()
	if currentThread == connectThread {
		b := c.bucketFor(connectThread, false)
		if b == nil {
			return
		}
		removed, wasEnabled := b.disconnectOwnerLocal(owner)
		if removed {
			owner.disconnectAsync(c, connectThread)
			if wasEnabled {
				c.enabledReceivers.Add(-1)
			}
		}
		return
	}

	// Cross-thread disconnect (spec.md §4.4): unhook the Asyncable from
	// this core immediately, so no future Send this caller could trigger
	// observes the receiver as connected, then route the actual erase to
	// the owning thread.
	owner.disconnectAsync(c, connectThread)

	sendBucket := c.bucketFor(currentThread, true)
	c.sendToQueue(sendBucket, connectThread, disconnectMsg(c, owner))
}

// IsConnected reports whether this core has at least one enabled
// receiver, on any thread (spec.md §4.4, invariant 2).
func (c *ChannelCore) IsConnected() bool {
	return c.enabledReceivers.Load() > 0
}

// DebugReceivers returns the identity of every currently-enabled
// receiver that has an owning Asyncable, across every connect thread.
// Anonymous receivers (nil owner) are omitted since they have no stable
// identity to report. Intended for tracing/log correlation, not for
// driving program logic.
func (c *ChannelCore) DebugReceivers() []uuid.UUID {
	var out []uuid.UUID
	for _, b := range c.liveBuckets() {
		for _, r := range b.receivers {
			if r.enabled && r.owner != nil {
				out = append(out, r.owner.ID())
			}
		}
	}
	return out
}

// disconnectAsyncable implements disconnectable for Asyncable.Close: it is
// called once per (core, connect-thread) pair this Asyncable still holds
// when the owner is torn down. It is safe to call from any thread — it
// always routes through the same synchronous-or-queued path Disconnect
// uses, without re-touching owner.connections (the caller already owns
// and has cleared that list).
func (c *ChannelCore) disconnectAsyncable(owner *Asyncable, connectThread ThreadID) {
	currentThread := CurrentThread()
	if currentThread == connectThread {
		b := c.bucketFor(connectThread, false)
		if b == nil {
			return
		}
		removed, wasEnabled := b.disconnectOwnerLocal(owner)
		if removed && wasEnabled {
			c.enabledReceivers.Add(-1)
		}
		return
	}

	sendBucket := c.bucketFor(currentThread, true)
	c.sendToQueue(sendBucket, connectThread, disconnectMsg(c, owner))
}

// Destroy tears this core down: every outQueue's receive port is
// unregistered from the QueuePool so no further drain can reach a dead
// bucket, and every remaining owned receiver is disconnected from its
// Asyncable. Destroy is idempotent. Go has no refcounted destructors, so
// nothing calls it automatically: no Channel method calls it (Channel.Close
// only sends on the close sub-channel), and the owner of the core calls it
// once the last handle sharing the core is no longer used.
func (c *ChannelCore) Destroy() {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return
	}
	c.closed = true
	c.closedMu.Unlock()

	for _, b := range c.liveBuckets() {
		for _, oq := range b.outQueues {
			DefaultQueuePool().Unregister(oq.receiveThread, oq.recv)
		}
		for _, r := range b.receivers {
			if r.owner != nil {
				r.owner.disconnectAsync(c, b.threadID)
			}
		}
		b.receivers = nil
		b.pendingAdd = nil
		b.pendingRemove = nil
	}
	c.enabledReceivers.Store(0)
}
