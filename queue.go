package asynccore

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// queue is the bounded SPSC ring of spec.md §4.1 (Port / Queue), grounded
// on original_source/async/internal/ringqueue.h: capacity is rounded up to
// the next power of two, and a full ring never drops a message — the
// sender waits for the receiver to drain. Where the C++ source spins with
// a short back-off, queue uses a weighted semaphore to track free slots:
// Send acquires one permit per message (blocking, not spinning, which is
// the idiomatic Go analogue of a bounded wait) and Process releases one
// permit per message it drains.
type queue struct {
	mu   sync.Mutex
	buf  []callMsg
	head int
	tail int
	n    int

	free    *semaphore.Weighted
	handler func(callMsg)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func newQueue(capacity int) *queue {
	cap2 := nextPowerOfTwo(capacity)
	return &queue{
		buf:  make([]callMsg, cap2),
		free: semaphore.NewWeighted(int64(cap2)),
	}
}

func (q *queue) capacity() int {
	return len(q.buf)
}

// senderPort is the send half of a queue, handed to exactly one goroutine.
type senderPort struct{ q *queue }

// receiverPort is the receive half of a queue, handed to exactly one
// goroutine — the one that will later call Process on it.
type receiverPort struct{ q *queue }

func (q *queue) ports() (*senderPort, *receiverPort) {
	return &senderPort{q: q}, &receiverPort{q: q}
}

// Send appends msg, blocking until a slot is free. It never drops a
// message and never allocates once the ring is constructed.
func (p *senderPort) Send(msg callMsg) {
	// Context-free bounded wait: there is no cancellation point in
	// spec.md's model, sends always eventually succeed because every
	// receive thread is expected to keep pumping.
	_ = p.q.free.Acquire(context.Background(), 1)

	p.q.mu.Lock()
	p.q.buf[p.q.tail] = msg
	p.q.tail = (p.q.tail + 1) % len(p.q.buf)
	p.q.n++
	p.q.mu.Unlock()
}

// OnMessage installs the handler Process invokes for each drained message.
func (p *receiverPort) OnMessage(handler func(callMsg)) {
	p.q.handler = handler
}

// Process drains every message available right now, in FIFO order.
// Messages enqueued while Process is running are left for the next call.
func (p *receiverPort) Process() {
	q := p.q
	q.mu.Lock()
	avail := q.n
	q.mu.Unlock()
	for ; avail > 0; avail-- {
		q.mu.Lock()
		msg := q.buf[q.head]
		q.buf[q.head] = callMsg{}
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		q.mu.Unlock()

		q.free.Release(1)

		if q.handler != nil {
			q.handler(msg)
		}
	}
}
