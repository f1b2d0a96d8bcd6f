package asynccore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Promise_ResolveSynchronousBody(t *testing.T) {
	p := NewPromise(func(resolve func(int) PromiseResult, reject func(error) PromiseResult) PromiseResult {
		return resolve(42)
	})

	require.True(t, p.IsSettled(), "expected promise to be settled immediately after NewPromise returns")

	var owner testOwner
	got := 0
	p.OnResolve(&owner.Asyncable, func(v int) { got = v })

	ProcessEvents() // OnResolve always delivers via Call, even post-settle
	require.Equal(t, 42, got)
}

func Test_Promise_Reject(t *testing.T) {
	boom := errBoom
	p := NewPromise(func(resolve func(string) PromiseResult, reject func(error) PromiseResult) PromiseResult {
		return reject(boom)
	})

	var owner testOwner
	var got error
	resolveCalled := false
	p.OnResolve(&owner.Asyncable, func(string) { resolveCalled = true })
	p.OnReject(&owner.Asyncable, func(err error) { got = err })

	ProcessEvents()
	if resolveCalled {
		t.Fatal("expected OnResolve not to fire for a rejected promise")
	}
	if got != boom {
		t.Fatalf("expected rejection error to propagate, got %v", got)
	}
}

func Test_Promise_DoubleSettle_SecondCallIsNoop(t *testing.T) {
	p := NewPromise(func(resolve func(int) PromiseResult, reject func(error) PromiseResult) PromiseResult {
		resolve(1)
		return resolve(2) // second settle must be ignored
	})

	var owner testOwner
	got := 0
	p.OnResolve(&owner.Asyncable, func(v int) { got = v })
	ProcessEvents()

	if got != 1 {
		t.Fatalf("expected the first resolve to win, got %d", got)
	}
}

func Test_Promise2_ResolvePair(t *testing.T) {
	p := NewPromise2(func(resolve func(int, string) PromiseResult, reject func(error) PromiseResult) PromiseResult {
		return resolve(7, "seven")
	})

	var owner testOwner
	var gotN int
	var gotS string
	p.OnResolve(&owner.Asyncable, func(n int, s string) { gotN, gotS = n, s })

	ProcessEvents()
	if gotN != 7 || gotS != "seven" {
		t.Fatalf("expected (7, seven), got (%d, %s)", gotN, gotS)
	}
}

var errBoom = &promiseTestError{"boom"}

type promiseTestError struct{ msg string }

func (e *promiseTestError) Error() string { return e.msg }
