// Command basic demonstrates same-goroutine Channel delivery: Send runs
// every subscriber's callback inline, no ProcessEvents call needed.
package main

import (
	"fmt"

	"github.com/threadbus/asynccore"
)

type printer struct {
	asynccore.Asyncable
	name string
}

func main() {
	ch := asynccore.NewChannel[string]()

	p1 := &printer{name: "first"}
	p2 := &printer{name: "second"}

	ch.OnReceive(&p1.Asyncable, func(msg string) {
		fmt.Printf("%s received: %s\n", p1.name, msg)
	})
	ch.OnReceive(&p2.Asyncable, func(msg string) {
		fmt.Printf("%s received: %s\n", p2.name, msg)
	})

	ch.Send("hello from main")

	p1.Close()
	ch.Send("only second should see this")
}
