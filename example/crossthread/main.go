// Command crossthread demonstrates delivery across goroutines: the
// receiving goroutine must call asynccore.ProcessEvents itself for a
// same-thread-but-different-goroutine Send to ever reach it.
package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/threadbus/asynccore"
)

type worker struct {
	asynccore.Asyncable
}

func main() {
	ch := asynccore.NewChannel[int]()

	var wg sync.WaitGroup
	wg.Add(1)

	w := &worker{}
	ready := make(chan struct{})

	go func() {
		defer wg.Done()
		ch.OnReceive(&w.Asyncable, func(v int) {
			fmt.Println("worker goroutine saw:", v)
		})
		close(ready)

		for i := 0; i < 3; i++ {
			time.Sleep(10 * time.Millisecond)
			asynccore.ProcessEvents()
		}
	}()

	<-ready
	ch.Send(42) // queued: the worker goroutine is on a different thread identity

	wg.Wait()
	w.Close()
}
