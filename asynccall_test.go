package asynccore

import (
	"testing"
	"time"
)

func Test_Call_NeverRunsSynchronously(t *testing.T) {
	ran := false
	var owner testOwner
	Call(&owner.Asyncable, func() { ran = true })

	if ran {
		t.Fatal("expected Call to defer execution, not run inline")
	}

	ProcessEvents()
	if !ran {
		t.Fatal("expected the deferred call to have run after ProcessEvents")
	}
}

func Test_Call_SkippedIfOwnerClosedFirst(t *testing.T) {
	ran := false
	owner := &testOwner{}
	Call(&owner.Asyncable, func() { ran = true })

	owner.Close()
	ProcessEvents()

	if ran {
		t.Fatal("expected a call to be skipped once its owner closed first")
	}
}

func Test_Call_CrossGoroutine(t *testing.T) {
	var owner testOwner
	done := make(chan struct{})

	target := make(chan ThreadID, 1)
	go func() {
		target <- CurrentThread()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			ProcessEvents()
			select {
			case <-done:
				return
			default:
			}
			time.Sleep(time.Millisecond)
		}
	}()

	th := <-target
	Call(&owner.Asyncable, func() { close(done) }, th)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for cross-goroutine call")
	}
}
