package asynccore

import "testing"

type fakeTarget struct {
	disconnected bool
	gotThread    ThreadID
}

func (f *fakeTarget) disconnectAsyncable(_ *Asyncable, th ThreadID) {
	f.disconnected = true
	f.gotThread = th
}

func Test_Asyncable_ConnectDisconnect_Idempotent(t *testing.T) {
	var a Asyncable
	target := &fakeTarget{}

	a.connectAsync(target, 1)
	a.connectAsync(target, 1) // idempotent: same (target, thread) pair

	if !a.IsConnected() {
		t.Fatal("expected a to report connected")
	}

	th, ok := a.connectThread(target)
	if !ok || th != 1 {
		t.Fatalf("expected connectThread to report (1, true), got (%d, %v)", th, ok)
	}

	a.disconnectAsync(target, 1)
	a.disconnectAsync(target, 1) // idempotent

	if a.IsConnected() {
		t.Fatal("expected a to report disconnected")
	}
}

func Test_Asyncable_Close_DisconnectsEveryTarget(t *testing.T) {
	var a Asyncable
	t1 := &fakeTarget{}
	t2 := &fakeTarget{}

	a.connectAsync(t1, 10)
	a.connectAsync(t2, 20)

	a.Close()

	if !t1.disconnected || t1.gotThread != 10 {
		t.Fatalf("expected t1 disconnected on thread 10, got disconnected=%v thread=%d", t1.disconnected, t1.gotThread)
	}
	if !t2.disconnected || t2.gotThread != 20 {
		t.Fatalf("expected t2 disconnected on thread 20, got disconnected=%v thread=%d", t2.disconnected, t2.gotThread)
	}
	if a.IsConnected() {
		t.Fatal("expected a to report disconnected after Close")
	}
}

func Test_Asyncable_ID_IsStableAndNonZero(t *testing.T) {
	var a Asyncable
	id1 := a.ID()
	id2 := a.ID()
	if id1 != id2 {
		t.Fatal("expected ID to be stable across calls")
	}
	var zero [16]byte
	if [16]byte(id1) == zero {
		t.Fatal("expected ID to be non-zero after first access")
	}
}
