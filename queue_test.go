package asynccore

import "testing"

func Test_NextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32, 256: 256, 257: 512}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func Test_Queue_FIFO(t *testing.T) {
	q := newQueue(4)
	sp, rp := q.ports()

	var order []int
	rp.OnMessage(func(m callMsg) {
		m.fn(nil)
	})

	for i := 0; i < 3; i++ {
		i := i
		sp.Send(callMsg{fn: func(*threadBucket) { order = append(order, i) }})
	}
	rp.Process()

	if len(order) != 3 {
		t.Fatalf("expected 3 drained messages, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func Test_Queue_CapacityRoundsUp(t *testing.T) {
	q := newQueue(3)
	if q.capacity() != 4 {
		t.Fatalf("expected capacity 4 for requested 3, got %d", q.capacity())
	}
}

func Test_Queue_ProcessLeavesLaterSendsForNextCall(t *testing.T) {
	q := newQueue(4)
	sp, rp := q.ports()

	var seen []int
	rp.OnMessage(func(m callMsg) { m.fn(nil) })

	sp.Send(callMsg{fn: func(*threadBucket) { seen = append(seen, 1) }})
	rp.Process()
	sp.Send(callMsg{fn: func(*threadBucket) { seen = append(seen, 2) }})

	if len(seen) != 1 {
		t.Fatalf("expected only the first message drained, got %v", seen)
	}
	rp.Process()
	if len(seen) != 2 {
		t.Fatalf("expected second message drained by the second Process call, got %v", seen)
	}
}
