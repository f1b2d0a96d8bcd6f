package asynccore

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// ManagedItem is an element a NotifyList can tear down in bulk, grounded
// on original_source/async/notifylist.h's ManagedItem convention and the
// teacher's own Ref/Cleanup reference-counted message pattern.
type ManagedItem interface {
	Cleanup()
}

// NotifyList is spec.md's supplemented NotifyList module: a slice with
// Channel-based notification points for every mutation, grounded on
// original_source/async/notifylist.h.
type NotifyList[T any] struct {
	mu    sync.Mutex
	items []T

	changed      Notification
	itemChanged  Channel[T]
	itemAdded    Channel[T]
	itemRemoved  Channel[T]
	itemReplaced Channel2[T, T]
}

func NewNotifyList[T any]() *NotifyList[T] {
	return &NotifyList[T]{
		changed:      NewNotification(),
		itemChanged:  NewChannel[T](),
		itemAdded:    NewChannel[T](),
		itemRemoved:  NewChannel[T](),
		itemReplaced: NewChannel2[T, T](),
	}
}

// Items returns a snapshot copy of the current contents.
func (l *NotifyList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *NotifyList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *NotifyList[T]) Add(v T) {
	l.mu.Lock()
	l.items = append(l.items, v)
	l.mu.Unlock()

	l.itemAdded.Send(v)
	l.changed.Notify()
}

// cleanupIfManaged calls Cleanup on v if it implements ManagedItem. This is
// what makes Remove/Replace's automatic teardown of an outgoing ManagedItem
// work for any T, without requiring NotifyList[T] itself to be constrained
// to ManagedItem (most NotifyLists hold plain values with nothing to clean
// up).
func cleanupIfManaged[T any](v T) {
	if mi, ok := any(v).(ManagedItem); ok {
		mi.Cleanup()
	}
}

// Remove erases the first item matching pred, notifying itemRemoved and
// changed if one was found, then calling Cleanup on it if it implements
// ManagedItem.
func (l *NotifyList[T]) Remove(pred func(T) bool) (removed T, ok bool) {
	l.mu.Lock()
	idx := -1
	for i, it := range l.items {
		if pred(it) {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return removed, false
	}
	removed = l.items[idx]
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.mu.Unlock()

	l.itemRemoved.Send(removed)
	l.changed.Notify()
	cleanupIfManaged(removed)
	return removed, true
}

// Replace swaps the first item matching pred for next, notifying
// itemReplaced, itemChanged, and changed, then calling Cleanup on the
// outgoing value if it implements ManagedItem.
func (l *NotifyList[T]) Replace(pred func(T) bool, next T) (prev T, ok bool) {
	l.mu.Lock()
	idx := -1
	for i, it := range l.items {
		if pred(it) {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return prev, false
	}
	prev = l.items[idx]
	l.items[idx] = next
	l.mu.Unlock()

	l.itemReplaced.Send(prev, next)
	l.itemChanged.Send(next)
	l.changed.Notify()
	cleanupIfManaged(prev)
	return prev, true
}

func (l *NotifyList[T]) OnChanged(owner *Asyncable, f func(), mode ...SubscribeMode) {
	l.changed.OnNotify(owner, f, mode...)
}

func (l *NotifyList[T]) OnItemChanged(owner *Asyncable, f func(T), mode ...SubscribeMode) {
	l.itemChanged.OnReceive(owner, f, mode...)
}

func (l *NotifyList[T]) OnItemAdded(owner *Asyncable, f func(T), mode ...SubscribeMode) {
	l.itemAdded.OnReceive(owner, f, mode...)
}

func (l *NotifyList[T]) OnItemRemoved(owner *Asyncable, f func(T), mode ...SubscribeMode) {
	l.itemRemoved.OnReceive(owner, f, mode...)
}

func (l *NotifyList[T]) OnItemReplaced(owner *Asyncable, f func(T, T), mode ...SubscribeMode) {
	l.itemReplaced.OnReceive(owner, f, mode...)
}

func (l *NotifyList[T]) ResetOnChanged(owner *Asyncable)      { l.changed.Disconnect(owner) }
func (l *NotifyList[T]) ResetOnItemChanged(owner *Asyncable)  { l.itemChanged.Disconnect(owner) }
func (l *NotifyList[T]) ResetOnItemAdded(owner *Asyncable)    { l.itemAdded.Disconnect(owner) }
func (l *NotifyList[T]) ResetOnItemRemoved(owner *Asyncable)  { l.itemRemoved.Disconnect(owner) }
func (l *NotifyList[T]) ResetOnItemReplaced(owner *Asyncable) { l.itemReplaced.Disconnect(owner) }

// CleanupManaged calls Cleanup on every item concurrently, fanned out with
// an errgroup the way a Cobra-driven teardown path drains a worker pool.
// Cleanup implementations that need serialization must provide their own
// locking; this only bounds how long bulk teardown takes.
func CleanupManaged[T ManagedItem](items []T) {
	var g errgroup.Group
	for _, it := range items {
		it := it
		g.Go(func() error {
			it.Cleanup()
			return nil
		})
	}
	_ = g.Wait()
}
