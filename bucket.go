package asynccore

// outQueue is spec.md §3's OutQueue: a bounded SPSC pipe owned by the
// sender bucket, keyed by the receive thread it delivers to. Only its
// receive port is registered with the QueuePool, under receiveThread; the
// send port is not registered anywhere and is used only by the sender
// bucket's thread, so the SPSC discipline (invariant 4, spec.md §3) holds
// without any further locking.
type outQueue struct {
	receiveThread ThreadID
	q             *queue
	send          *senderPort
	recv          *receiverPort
}

// threadBucket is spec.md §3's ThreadBucket: the receivers connected from
// one thread, plus the staging lists that make add/remove safe while a
// delivery is in progress on this same thread, plus the outQueues this
// bucket uses when it is the sender reaching some other receive thread.
//
// Invariant 1 (spec.md §3): receivers, pendingAdd, and pendingRemove are
// only ever touched from threadID. Every other thread reaches this bucket
// through a callMsg drained by the receiverPort the core registered for
// threadID.
type threadBucket struct {
	threadID ThreadID

	iterating    bool
	receivers    []*receiverRecord
	pendingAdd   []*receiverRecord
	pendingRemove []*receiverRecord

	outQueues []*outQueue
}

func newThreadBucket(th ThreadID) *threadBucket {
	return &threadBucket{threadID: th}
}

// addReceiver appends r, going through pendingAdd if a receiversCall is
// currently iterating this bucket (re-entrant OnReceive from inside a
// callback), and straight into receivers otherwise.
func (b *threadBucket) addReceiver(r *receiverRecord) {
	if b.iterating {
		b.pendingAdd = append(b.pendingAdd, r)
		return
	}
	b.receivers = append(b.receivers, r)
}

// findReceiver returns the live receiverRecord for owner, if any —
// including one staged in pendingAdd, so a SetOnce check made immediately
// after a re-entrant OnReceive still sees it.
func (b *threadBucket) findReceiver(owner *Asyncable) *receiverRecord {
	for _, r := range b.receivers {
		if r.owner == owner {
			return r
		}
	}
	for _, r := range b.pendingAdd {
		if r.owner == owner {
			return r
		}
	}
	return nil
}

// drainPending applies pendingAdd/pendingRemove to receivers. Called both
// before and after an iteration (spec.md §4.4 steps 1 and 3), so that two
// receiversCall invocations back to back always see a coherent list.
func (b *threadBucket) drainPending() {
	if len(b.pendingRemove) > 0 {
		for _, dead := range b.pendingRemove {
			for i, r := range b.receivers {
				if r == dead {
					b.receivers = append(b.receivers[:i], b.receivers[i+1:]...)
					break
				}
			}
		}
		b.pendingRemove = b.pendingRemove[:0]
	}
	if len(b.pendingAdd) > 0 {
		b.receivers = append(b.receivers, b.pendingAdd...)
		b.pendingAdd = b.pendingAdd[:0]
	}
}

// receiversCall runs the deferred add/remove iteration protocol of
// spec.md §4.4: drain staged mutations, iterate the now-settled list
// invoking apply on every enabled receiver (a receiver disabled mid-loop
// by apply itself is simply skipped for the rest of this same iteration,
// since skipping re-checks r.enabled per entry), then drain again so a
// pump that follows immediately sees a coherent list.
func (b *threadBucket) receiversCall(apply func(r *receiverRecord)) {
	b.drainPending()

	b.iterating = true
	for _, r := range b.receivers {
		if r.enabled {
			apply(r)
		}
	}
	b.iterating = false

	b.drainPending()
}

// disconnectOwnerLocal performs the actual decrement/erase for owner. It
// must only be called on this bucket's own thread — either directly, by
// Disconnect when already on the right thread, or via a routed
// disconnectMsg delivered through this bucket's inbound queue (spec.md
// §4.4, "Cross-thread disconnect").
func (b *threadBucket) disconnectOwnerLocal(owner *Asyncable) (removed bool, wasEnabled bool) {
	r := b.findReceiver(owner)
	if r == nil {
		return false, false
	}

	wasEnabled = r.enabled
	r.enabled = false

	if b.iterating {
		// Can't mutate b.receivers mid-iteration; stage the erase and
		// let the end of the current receiversCall apply it.
		b.pendingRemove = append(b.pendingRemove, r)
		return true, wasEnabled
	}

	for i, rr := range b.receivers {
		if rr == r {
			b.receivers = append(b.receivers[:i], b.receivers[i+1:]...)
			return true, wasEnabled
		}
	}
	// was only staged in pendingAdd
	for i, rr := range b.pendingAdd {
		if rr == r {
			b.pendingAdd = append(b.pendingAdd[:i], b.pendingAdd[i+1:]...)
			return true, wasEnabled
		}
	}
	return true, wasEnabled
}

func (b *threadBucket) outQueueFor(receiveThread ThreadID) *outQueue {
	for _, oq := range b.outQueues {
		if oq.receiveThread == receiveThread {
			return oq
		}
	}
	return nil
}
