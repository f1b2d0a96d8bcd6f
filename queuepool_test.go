package asynccore

import "testing"

func Test_QueuePool_RegisterProcessUnregister(t *testing.T) {
	pool := newQueuePool()
	th := CurrentThread()

	q := newQueue(4)
	_, rp := q.ports()

	drained := 0
	rp.OnMessage(func(callMsg) { drained++ })

	pool.Register(th, rp)

	sp, _ := q.ports()
	sp.Send(callMsg{fn: func(*threadBucket) {}})
	sp.Send(callMsg{fn: func(*threadBucket) {}})

	pool.ProcessEventsFor(th)
	if drained != 2 {
		t.Fatalf("expected 2 drained messages, got %d", drained)
	}

	pool.Unregister(th, rp)
	sp.Send(callMsg{fn: func(*threadBucket) {}})
	pool.ProcessEventsFor(th)
	if drained != 2 {
		t.Fatalf("expected no further drains after Unregister, got %d", drained)
	}
}

func Test_QueuePool_ProcessEventsFor_UnknownThreadIsNoop(t *testing.T) {
	pool := newQueuePool()
	pool.ProcessEventsFor(ThreadID(999999)) // must not panic
}
