package asynccore

// receiverRecord is the Receiver of spec.md §3: one subscription entry
// inside a threadBucket. Invariant 1 (spec.md §3): it is mutated only on
// the thread that owns the bucket it lives in; every other thread reaches
// it exclusively through a callMsg delivered over that bucket's queue.
type receiverRecord struct {
	enabled  bool
	owner    *Asyncable // nil => anonymous: no lifetime binding; Disconnect(nil) is a no-op, so it lives until core death (Destroy)
	callback func(args []any)
}

// callMsg is the erased delivery envelope spec.md calls CallMsg. Its fn is
// applied to the receive-thread's threadBucket once Queue.Process drains
// it — never to a single receiver directly — so that ordinary fan-out goes
// through the deferred add/remove iteration protocol
// (bucket.receiversCall) and the routed cross-thread disconnect (spec.md
// §4.4) through bucket.disconnectOwnerLocal, both on the receive thread.
type callMsg struct {
	fn func(b *threadBucket)
}

// deliverMsg builds the CallMsg a ChannelCore sends when fanning args out
// to a bucket on another thread: apply the callback of every receiver that
// is still enabled once the message is actually drained.
func deliverMsg(args []any) callMsg {
	return callMsg{fn: func(b *threadBucket) {
		b.receiversCall(func(r *receiverRecord) {
			r.callback(args)
		})
	}}
}

// disconnectMsg builds the CallMsg a ChannelCore routes through the
// (current thread -> owner's connect thread) OutQueue when Disconnect is
// called from a thread other than the owner's connect thread (spec.md
// §4.4, "Cross-thread disconnect"). It performs the decrement/erase
// locally, safely, once it reaches the owning thread — core.enabledReceivers
// is only decremented here, once the erase has actually happened, so a
// cross-thread disconnect can never double-decrement or under-decrement
// relative to the same-thread path.
func disconnectMsg(core *ChannelCore, owner *Asyncable) callMsg {
	return callMsg{fn: func(b *threadBucket) {
		removed, wasEnabled := b.disconnectOwnerLocal(owner)
		if removed && wasEnabled {
			core.enabledReceivers.Add(-1)
		}
	}}
}
