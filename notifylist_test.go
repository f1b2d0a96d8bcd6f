package asynccore

import "testing"

type cleanupItem struct {
	id      int
	cleaned bool
}

func (c *cleanupItem) Cleanup() { c.cleaned = true }

func Test_NotifyList_AddNotifies(t *testing.T) {
	l := NewNotifyList[int]()
	var owner testOwner

	var added int
	changedCount := 0
	l.OnItemAdded(&owner.Asyncable, func(v int) { added = v })
	l.OnChanged(&owner.Asyncable, func() { changedCount++ })

	l.Add(3)

	if added != 3 {
		t.Fatalf("expected itemAdded with 3, got %d", added)
	}
	if changedCount != 1 {
		t.Fatalf("expected changed to fire once, got %d", changedCount)
	}
	if got := l.Items(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected Items() == [3], got %v", got)
	}
}

func Test_NotifyList_RemoveNotifies(t *testing.T) {
	l := NewNotifyList[string]()
	var owner testOwner

	l.Add("a")
	l.Add("b")

	var removed string
	l.OnItemRemoved(&owner.Asyncable, func(v string) { removed = v })

	got, ok := l.Remove(func(v string) bool { return v == "a" })
	if !ok || got != "a" {
		t.Fatalf("expected to remove 'a', got (%q, %v)", got, ok)
	}
	if removed != "a" {
		t.Fatalf("expected OnItemRemoved to fire with 'a', got %q", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 item remaining, got %d", l.Len())
	}
}

func Test_NotifyList_ReplaceNotifies(t *testing.T) {
	l := NewNotifyList[int]()
	var owner testOwner

	l.Add(1)

	var prevSeen, nextSeen int
	l.OnItemReplaced(&owner.Asyncable, func(prev, next int) { prevSeen, nextSeen = prev, next })

	prev, ok := l.Replace(func(v int) bool { return v == 1 }, 2)
	if !ok || prev != 1 {
		t.Fatalf("expected to replace 1, got (%d, %v)", prev, ok)
	}
	if prevSeen != 1 || nextSeen != 2 {
		t.Fatalf("expected OnItemReplaced(1, 2), got (%d, %d)", prevSeen, nextSeen)
	}
}

func Test_NotifyList_ResetOnChanged(t *testing.T) {
	l := NewNotifyList[int]()
	var owner testOwner

	count := 0
	l.OnChanged(&owner.Asyncable, func() { count++ })
	l.Add(1)
	l.ResetOnChanged(&owner.Asyncable)
	l.Add(2)

	if count != 1 {
		t.Fatalf("expected changed to stop firing after ResetOnChanged, got %d", count)
	}
}

func Test_CleanupManaged_RunsAllConcurrently(t *testing.T) {
	items := []*cleanupItem{{id: 1}, {id: 2}, {id: 3}}
	CleanupManaged(items)

	for _, it := range items {
		if !it.cleaned {
			t.Fatalf("expected item %d to be cleaned up", it.id)
		}
	}
}
