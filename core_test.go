package asynccore

import (
	"errors"
	"testing"
	"time"
)

func Test_ChannelCore_AnonymousReceiver_NoLifetimeBinding(t *testing.T) {
	c := NewChannelCore()

	got := 0
	c.OnReceive(nil, func(args []any) { got = args[0].(int) }, SetOnce)

	c.Send(Auto, 5)
	if got != 5 {
		t.Fatalf("expected anonymous receiver to fire, got %d", got)
	}
}

func Test_ChannelCore_Send_NoReceivers_IsNoop(t *testing.T) {
	c := NewChannelCore()
	c.Send(Auto, 1) // must not panic or allocate a bucket for nobody
	if c.IsConnected() {
		t.Fatal("expected IsConnected false with no receivers")
	}
}

func Test_ChannelCore_QueueMode_IncludesSenderThread(t *testing.T) {
	c := NewChannelCoreWithLimit(4)
	got := 0
	c.OnReceive(nil, func(args []any) { got = args[0].(int) }, SetOnce)

	c.Send(Queue, 9)
	// Queue mode never delivers inline, even to the sender's own thread.
	if got != 0 {
		t.Fatalf("expected no inline delivery under Queue mode, got %d", got)
	}

	DefaultQueuePool().ProcessEventsFor(CurrentThread())
	if got != 9 {
		t.Fatalf("expected delivery after ProcessEventsFor, got %d", got)
	}
}

func Test_ChannelCore_PoolExhausted_Panics(t *testing.T) {
	c := NewChannelCoreWithLimit(0)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic when maxThreads is exhausted")
		}
		err, ok := r.(*PoolExhaustedError)
		if !ok {
			t.Fatalf("expected *PoolExhaustedError, got %T", r)
		}
		if !errors.Is(err, ErrPoolExhausted) {
			t.Fatal("expected errors.Is(err, ErrPoolExhausted) to hold")
		}
	}()

	c.OnReceive(nil, func([]any) {}, SetOnce)
}

func Test_ChannelCore_Destroy_IsIdempotentAndDisconnects(t *testing.T) {
	c := NewChannelCore()
	var owner Asyncable

	c.OnReceive(&owner, func([]any) {}, SetOnce)
	if !owner.IsConnected() {
		t.Fatal("expected owner to be connected after OnReceive")
	}

	c.Destroy()
	c.Destroy() // idempotent, must not panic

	if owner.IsConnected() {
		t.Fatal("expected owner to be disconnected after Destroy")
	}
	if c.IsConnected() {
		t.Fatal("expected core to report disconnected after Destroy")
	}
}

// Test_ChannelCore_CrossThreadDisconnect_DecrementsEnabledReceivers covers
// the counter leak a cross-thread Disconnect could cause: enabledReceivers
// must drop when the routed disconnectMsg erases the receiver on its own
// thread (not at the call site on the disconnecting thread), so
// IsConnected goes false once that thread pumps.
func Test_ChannelCore_CrossThreadDisconnect_DecrementsEnabledReceivers(t *testing.T) {
	c := NewChannelCore()
	owner := &Asyncable{}

	receiveThread := make(chan ThreadID, 1)
	subscribed := make(chan struct{})
	done := make(chan struct{})

	go func() {
		receiveThread <- CurrentThread()
		c.OnReceive(owner, func([]any) {}, SetOnce)
		close(subscribed)

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			DefaultQueuePool().ProcessEventsFor(CurrentThread())
			select {
			case <-done:
				return
			default:
			}
			time.Sleep(time.Millisecond)
		}
	}()

	th := <-receiveThread
	<-subscribed

	if !c.IsConnected() {
		t.Fatal("expected core to report connected before disconnect")
	}

	c.Disconnect(owner) // cross-thread: CurrentThread() here != th

	// owner is unhooked from the core's bookkeeping immediately, even
	// though the bucket-level erase (and the enabledReceivers decrement)
	// is still only pending on th.
	if owner.IsConnected() {
		t.Fatal("expected owner to be unhooked from the core immediately, even before the routed erase runs")
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !c.IsConnected() {
			close(done)
			return
		}
		time.Sleep(time.Millisecond)
	}
	close(done)
	t.Fatalf("expected IsConnected to go false once thread %d processed the routed disconnect", th)
}

// Test_Asyncable_Close_CrossThread_DecrementsEnabledReceivers covers the
// same leak via the Asyncable.Close path (ChannelCore.disconnectAsyncable),
// rather than an explicit Channel.Disconnect call.
func Test_Asyncable_Close_CrossThread_DecrementsEnabledReceivers(t *testing.T) {
	c := NewChannelCore()
	owner := &Asyncable{}

	subscribed := make(chan struct{})
	done := make(chan struct{})

	go func() {
		c.OnReceive(owner, func([]any) {}, SetOnce)
		close(subscribed)

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			DefaultQueuePool().ProcessEventsFor(CurrentThread())
			select {
			case <-done:
				return
			default:
			}
			time.Sleep(time.Millisecond)
		}
	}()

	<-subscribed

	owner.Close() // cross-thread: runs on the test goroutine, not the subscriber's

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !c.IsConnected() {
			close(done)
			return
		}
		time.Sleep(time.Millisecond)
	}
	close(done)
	t.Fatal("expected IsConnected to go false once the subscriber thread processed the routed disconnect from owner.Close")
}
