package asynccore

import (
	"sync"

	"github.com/google/uuid"
)

// closeSub is the lazily-constructed "close" sub-channel shared by every
// Channel/Channel2 facade (spec.md §4.4, "Auxiliary sub-channels"): a
// zero-argument ChannelCore that Close sends on and OnClose subscribes
// to, allocated on first use rather than at channel construction since
// most channels are never explicitly closed.
type closeSub struct {
	mu   sync.Mutex
	core *ChannelCore
}

func (s *closeSub) ensure() *ChannelCore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.core == nil {
		s.core = NewChannelCore()
	}
	return s.core
}

// Channel is the single-value, type-safe, user-facing handle of spec.md
// §3/§6. It is shareable by value — every copy of a Channel[T] refers to
// the same underlying ChannelCore, the way the teacher's Subscriber
// handle and kors::async::Channel's shared_ptr both let many holders
// observe one delivery pipe.
type Channel[T any] struct {
	core  *ChannelCore
	close *closeSub
}

// NewChannel creates a new, empty Channel[T] backed by a fresh
// ChannelCore.
func NewChannel[T any]() Channel[T] {
	return Channel[T]{core: NewChannelCore(), close: &closeSub{}}
}

// Key returns the identity of the underlying ChannelCore, per spec.md §6.
// Two Channel values compare equal in the sense the spec means by "key"
// iff they share a core, regardless of how many times either was copied.
func (ch Channel[T]) Key() uuid.UUID { return ch.core.id }

// Send delivers v to every subscriber using Auto mode: synchronously to
// same-thread receivers, queued to every other connect thread.
func (ch Channel[T]) Send(v T) { ch.core.Send(Auto, v) }

// SendMode delivers v to every subscriber using the given SendMode.
func (ch Channel[T]) SendMode(mode SendMode, v T) { ch.core.Send(mode, v) }

// OnReceive subscribes f on the current thread. mode defaults to SetOnce
// when omitted, matching spec.md §6's default.
func (ch Channel[T]) OnReceive(owner *Asyncable, f func(T), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	ch.core.OnReceive(owner, func(args []any) {
		f(args[0].(T))
	}, m)
}

// Disconnect removes owner's subscription to this channel.
func (ch Channel[T]) Disconnect(owner *Asyncable) { ch.core.Disconnect(owner) }

// IsConnected reports whether any receiver is currently enabled.
func (ch Channel[T]) IsConnected() bool { return ch.core.IsConnected() }

// Close sends on this channel's auxiliary close sub-channel.
func (ch Channel[T]) Close() { ch.close.ensure().Send(Auto) }

// OnClose subscribes f to this channel's close sub-channel.
func (ch Channel[T]) OnClose(owner *Asyncable, f func(), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	ch.close.ensure().OnReceive(owner, func([]any) { f() }, m)
}

// Channel2 is Channel's two-value sibling, for subscribers that need a
// pair delivered atomically (spec.md's scenario C: `ch.send(42, 73)`).
type Channel2[T1, T2 any] struct {
	core  *ChannelCore
	close *closeSub
}

func NewChannel2[T1, T2 any]() Channel2[T1, T2] {
	return Channel2[T1, T2]{core: NewChannelCore(), close: &closeSub{}}
}

func (ch Channel2[T1, T2]) Key() uuid.UUID { return ch.core.id }

func (ch Channel2[T1, T2]) Send(v1 T1, v2 T2) { ch.core.Send(Auto, v1, v2) }

func (ch Channel2[T1, T2]) SendMode(mode SendMode, v1 T1, v2 T2) { ch.core.Send(mode, v1, v2) }

func (ch Channel2[T1, T2]) OnReceive(owner *Asyncable, f func(T1, T2), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	ch.core.OnReceive(owner, func(args []any) {
		f(args[0].(T1), args[1].(T2))
	}, m)
}

func (ch Channel2[T1, T2]) Disconnect(owner *Asyncable) { ch.core.Disconnect(owner) }

func (ch Channel2[T1, T2]) IsConnected() bool { return ch.core.IsConnected() }

func (ch Channel2[T1, T2]) Close() { ch.close.ensure().Send(Auto) }

func (ch Channel2[T1, T2]) OnClose(owner *Asyncable, f func(), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	ch.close.ensure().OnReceive(owner, func([]any) { f() }, m)
}

// Notification is Channel's zero-value sibling (grounded on
// original_source/async/notification.h): a pure "something happened"
// signal with no payload.
type Notification struct {
	core  *ChannelCore
	close *closeSub
}

func NewNotification() Notification {
	return Notification{core: NewChannelCore(), close: &closeSub{}}
}

func (n Notification) Key() uuid.UUID { return n.core.id }

func (n Notification) Notify() { n.core.Send(Auto) }

func (n Notification) OnNotify(owner *Asyncable, f func(), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	n.core.OnReceive(owner, func([]any) { f() }, m)
}

func (n Notification) Disconnect(owner *Asyncable) { n.core.Disconnect(owner) }

func (n Notification) IsConnected() bool { return n.core.IsConnected() }

func (n Notification) Close() { n.close.ensure().Send(Auto) }

func (n Notification) OnClose(owner *Asyncable, f func(), mode ...SubscribeMode) {
	m := SetOnce
	if len(mode) > 0 {
		m = mode[0]
	}
	n.close.ensure().OnReceive(owner, func([]any) { f() }, m)
}
