/*
Package asynccore implements in-process, cross-goroutine messaging with
explicit, host-driven delivery: nothing in this package ever spawns a
goroutine to deliver a message. A sender calls Send; a receiver's own
goroutine observes it only when that goroutine calls ProcessEvents.

# Core model

A Channel[T] is a typed, shareable handle over a ChannelCore: any number
of goroutines can call OnReceive to subscribe, and any goroutine can call
Send to fan a value out to every current subscriber. Same-thread delivery
happens inline, during Send; cross-thread delivery is queued onto a
bounded SPSC queue and only runs when the target goroutine calls
ProcessEvents (or the package-level ProcessEvents, which drains every
queue registered for the calling goroutine).

	var owner asynccore.Asyncable
	ch := asynccore.NewChannel[string]()

	ch.OnReceive(&owner, func(msg string) {
		fmt.Println("got:", msg)
	})

	ch.Send("hello")         // delivered inline, same goroutine
	asynccore.ProcessEvents() // drains anything queued from other goroutines

# Lifetime

Every subscription is bound to an *Asyncable, embedded by value in
whatever object owns the callback. Calling Asyncable.Close tears down
every subscription that object still holds, across every channel and
every goroutine it connected from — there is no explicit unsubscribe call
to remember, the way the teacher's Subscriber.Unsubscribe worked for one
subscription at a time, generalized here across all of them at once.

# Cross-goroutine calls and promises

Call schedules a plain function to run on a target goroutine's next
ProcessEvents, the same way Channel delivers a value, but without needing
a channel at all. Promise and Promise2 build one-shot, thread-aware
result cells on top of Call: a Promise's body settles it at most once,
and OnResolve/OnReject subscribers are always delivered through Call on
the goroutine that subscribed, never inline, even when the promise has
already settled.

# NotifyList

NotifyList[T] is a slice with Channel-based notifications for every
mutation (item added, removed, replaced, or the whole list changed),
useful for the common case of a bookkeeping collection that other parts
of a program want to react to without polling it.
*/
package asynccore
