// Command notifylist demonstrates NotifyList: Add/Remove/Replace each fire
// their own Channel-backed notification, and a ManagedItem's Cleanup runs
// automatically when it leaves the list.
package main

import (
	"fmt"

	"github.com/threadbus/asynccore"
)

type session struct {
	id string
}

func (s *session) Cleanup() {
	fmt.Println("cleaned up session:", s.id)
}

type watcher struct {
	asynccore.Asyncable
}

func main() {
	list := asynccore.NewNotifyList[*session]()
	w := &watcher{}

	list.OnItemAdded(&w.Asyncable, func(s *session) {
		fmt.Println("added:", s.id)
	})
	list.OnItemRemoved(&w.Asyncable, func(s *session) {
		fmt.Println("removed:", s.id)
	})
	list.OnChanged(&w.Asyncable, func() {
		fmt.Println("list now has", list.Len(), "item(s)")
	})

	a := &session{id: "a"}
	b := &session{id: "b"}
	list.Add(a)
	list.Add(b)

	byID := func(id string) func(*session) bool {
		return func(s *session) bool { return s.id == id }
	}

	list.Replace(byID("a"), &session{id: "a-v2"})
	list.Remove(byID("b")) // triggers session "b"'s Cleanup automatically

	w.Close()
}
