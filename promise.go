package asynccore

import "sync"

// PromiseResult is the dummy return type a Promise body must produce,
// grounded on original_source/async/promise.h's Result: its purpose is to
// make a body end with `return resolve(v)` or `return reject(err)`. It is
// an exported empty struct, so a body may also return PromiseResult{}
// directly and settle later (as example/promise does) or never.
type PromiseResult struct{}

type resolveWaiter[T any] struct {
	owner  *Asyncable
	thread ThreadID
	f      func(T)
}

type rejectWaiter struct {
	owner  *Asyncable
	thread ThreadID
	f      func(error)
}

// Promise is a one-shot, thread-aware result cell (spec.md's supplemented
// Promise module, grounded on original_source/async/promise.h). Unlike a
// Channel, a Promise settles at most once: the first Resolve or Reject
// call wins, every later one is a no-op (logged, not fatal, mirroring
// ErrPromiseDoubleSettle).
type Promise[T any] struct {
	mu       sync.Mutex
	settled  bool
	rejected bool
	value    T
	err      error

	onResolve []resolveWaiter[T]
	onReject  []rejectWaiter
}

// NewPromise runs body synchronously, on the calling thread, right now
// (original_source's PromiseType::AsyncByBody): any asynchrony is body's
// own responsibility, e.g. spawning a goroutine that resolves the promise
// later.
func NewPromise[T any](body func(resolve func(T) PromiseResult, reject func(error) PromiseResult) PromiseResult) *Promise[T] {
	p := &Promise[T]{}
	body(p.resolver(), p.rejecter())
	return p
}

// NewPromiseAsync defers running body onto receiveThread via Call
// (original_source's PromiseType::AsyncByPromise), binding the deferred
// body's lifetime to owner: if owner is closed before body runs, body is
// skipped and the promise is left unsettled forever rather than settling
// against a torn-down receiver.
func NewPromiseAsync[T any](owner *Asyncable, receiveThread ThreadID, body func(resolve func(T) PromiseResult, reject func(error) PromiseResult) PromiseResult) *Promise[T] {
	p := &Promise[T]{}
	Call(owner, func() {
		body(p.resolver(), p.rejecter())
	}, receiveThread)
	return p
}

func (p *Promise[T]) resolver() func(T) PromiseResult {
	return func(v T) PromiseResult {
		p.settle(v, nil)
		return PromiseResult{}
	}
}

func (p *Promise[T]) rejecter() func(error) PromiseResult {
	return func(err error) PromiseResult {
		var zero T
		p.settle(zero, err)
		return PromiseResult{}
	}
}

func (p *Promise[T]) settle(v T, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		log().Warn().Msg(ErrPromiseDoubleSettle.Error())
		return
	}
	p.settled = true
	p.value = v
	p.err = err
	p.rejected = err != nil

	resolveWaiters := p.onResolve
	rejectWaiters := p.onReject
	p.onResolve = nil
	p.onReject = nil
	p.mu.Unlock()

	if err != nil {
		for _, w := range rejectWaiters {
			w := w
			Call(w.owner, func() { w.f(err) }, w.thread)
		}
		return
	}
	for _, w := range resolveWaiters {
		w := w
		Call(w.owner, func() { w.f(v) }, w.thread)
	}
}

// OnResolve subscribes f to run, on the calling thread, once this promise
// resolves. If it has already resolved, f still runs via Call rather than
// inline, so delivery timing is uniform regardless of registration order.
// If it has already rejected, f is never called.
func (p *Promise[T]) OnResolve(owner *Asyncable, f func(T)) {
	th := CurrentThread()
	p.mu.Lock()
	if !p.settled {
		p.onResolve = append(p.onResolve, resolveWaiter[T]{owner: owner, thread: th, f: f})
		p.mu.Unlock()
		return
	}
	settledErr := p.err
	v := p.value
	p.mu.Unlock()

	if settledErr == nil {
		Call(owner, func() { f(v) }, th)
	}
}

// OnReject is OnResolve's rejection counterpart.
func (p *Promise[T]) OnReject(owner *Asyncable, f func(error)) {
	th := CurrentThread()
	p.mu.Lock()
	if !p.settled {
		p.onReject = append(p.onReject, rejectWaiter{owner: owner, thread: th, f: f})
		p.mu.Unlock()
		return
	}
	settledErr := p.err
	p.mu.Unlock()

	if settledErr != nil {
		Call(owner, func() { f(settledErr) }, th)
	}
}

// IsSettled reports whether Resolve or Reject has been called yet.
func (p *Promise[T]) IsSettled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// pair2 is the anonymous payload Promise2 settles a Promise[pair2[...]]
// with, so Promise2 can be a thin wrapper rather than a parallel
// implementation.
type pair2[T1, T2 any] struct {
	v1 T1
	v2 T2
}

// Promise2 is Promise's two-value sibling.
type Promise2[T1, T2 any] struct {
	inner *Promise[pair2[T1, T2]]
}

func NewPromise2[T1, T2 any](body func(resolve func(T1, T2) PromiseResult, reject func(error) PromiseResult) PromiseResult) *Promise2[T1, T2] {
	inner := NewPromise(func(resolve func(pair2[T1, T2]) PromiseResult, reject func(error) PromiseResult) PromiseResult {
		return body(
			func(v1 T1, v2 T2) PromiseResult { return resolve(pair2[T1, T2]{v1: v1, v2: v2}) },
			reject,
		)
	})
	return &Promise2[T1, T2]{inner: inner}
}

func (p *Promise2[T1, T2]) OnResolve(owner *Asyncable, f func(T1, T2)) {
	p.inner.OnResolve(owner, func(v pair2[T1, T2]) { f(v.v1, v.v2) })
}

func (p *Promise2[T1, T2]) OnReject(owner *Asyncable, f func(error)) {
	p.inner.OnReject(owner, f)
}

func (p *Promise2[T1, T2]) IsSettled() bool { return p.inner.IsSettled() }
