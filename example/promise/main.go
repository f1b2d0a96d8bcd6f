// Command promise demonstrates Async.Call and Promise: a goroutine settles
// a Promise asynchronously, and both OnResolve and a manual ProcessEvents
// pump are needed for the callback to actually run.
package main

import (
	"fmt"
	"time"

	"github.com/threadbus/asynccore"
)

type fetcher struct {
	asynccore.Asyncable
}

func main() {
	f := &fetcher{}
	mainThread := asynccore.CurrentThread()

	promise := asynccore.NewPromise[string](func(resolve func(string) asynccore.PromiseResult, reject func(error) asynccore.PromiseResult) asynccore.PromiseResult {
		go func() {
			time.Sleep(10 * time.Millisecond)
			asynccore.Call(&f.Asyncable, func() {
				resolve("fetched payload")
			}, mainThread)
		}()
		return asynccore.PromiseResult{}
	})

	promise.OnResolve(&f.Asyncable, func(v string) {
		fmt.Println("resolved with:", v)
	})
	promise.OnReject(&f.Asyncable, func(err error) {
		fmt.Println("rejected:", err)
	})

	deadline := time.Now().Add(time.Second)
	for !promise.IsSettled() && time.Now().Before(deadline) {
		asynccore.ProcessEvents()
		time.Sleep(time.Millisecond)
	}
	asynccore.ProcessEvents() // drain the Call that runs OnResolve's waiter

	f.Close()
}
