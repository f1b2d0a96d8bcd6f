package asynccore

import "sync"

// asyncCallQueue is spec.md §4's QueueData: the memoized queue between one
// specific (sendThread, receiveThread) pair, grounded on
// original_source/async/async.h's queueData()/callQueue. Every Call
// between the same two threads reuses the same queue rather than
// allocating a fresh one per call.
type asyncCallQueue struct {
	sendThread, receiveThread ThreadID
	send                      *senderPort
	recv                      *receiverPort
}

type asyncCallRegistry struct {
	mu     sync.Mutex
	queues map[[2]ThreadID]*asyncCallQueue
}

var defaultAsyncCalls = &asyncCallRegistry{queues: make(map[[2]ThreadID]*asyncCallQueue)}

func (r *asyncCallRegistry) queueFor(sendThread, receiveThread ThreadID) *asyncCallQueue {
	key := [2]ThreadID{sendThread, receiveThread}

	r.mu.Lock()
	defer r.mu.Unlock()

	if q, ok := r.queues[key]; ok {
		return q
	}

	raw := newQueue(QueueCapacity)
	sp, rp := raw.ports()
	rp.OnMessage(func(m callMsg) { m.fn(nil) })
	DefaultQueuePool().Register(receiveThread, rp)

	acq := &asyncCallQueue{sendThread: sendThread, receiveThread: receiveThread, send: sp, recv: rp}
	r.queues[key] = acq
	log().Debug().Uint64("send", uint64(sendThread)).Uint64("receive", uint64(receiveThread)).
		Msg("asynccall: allocated queue")
	return acq
}

// callFnMsg wraps a zero-argument closure as a callMsg whose bucket
// parameter is ignored, so Async.Call can reuse the same queue/QueuePool
// plumbing ChannelCore uses for fan-out, without needing a threadBucket of
// its own (spec.md §4, "Async.Call reuses the queue machinery").
func callFnMsg(fn func()) callMsg {
	return callMsg{fn: func(*threadBucket) { fn() }}
}

// callToken is the one-shot stand-in for original_source/async.h's
// per-QueueData "callers" set: rather than tracking every Asyncable with a
// call outstanding against a shared queue, each Call gets its own token,
// registered with owner for the duration of exactly one pending call and
// flipped by disconnectAsyncable if owner is closed first.
type callToken struct {
	cancelled bool
	mu        sync.Mutex
}

func (t *callToken) disconnectAsyncable(_ *Asyncable, _ ThreadID) {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

func (t *callToken) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Call schedules fn to run on receiveThread (the caller's own thread, if
// omitted) the next time that thread's ProcessEvents drains — never
// synchronously, even if receiveThread is the calling thread, per spec.md
// §4's Async.Call semantics. If owner is non-nil and owner.Close runs
// before fn fires, fn is skipped instead of running against a torn-down
// receiver.
func Call(owner *Asyncable, fn func(), receiveThread ...ThreadID) {
	sendThread := CurrentThread()
	th := sendThread
	if len(receiveThread) > 0 {
		th = receiveThread[0]
	}

	acq := defaultAsyncCalls.queueFor(sendThread, th)

	var tok *callToken
	if owner != nil {
		tok = &callToken{}
		owner.connectAsync(tok, th)
	}

	acq.send.Send(callFnMsg(func() {
		if tok != nil {
			defer owner.disconnectAsync(tok, th)
			if tok.isCancelled() {
				return
			}
		}
		fn()
	}))
}
