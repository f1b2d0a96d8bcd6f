package asynccore

// QueueCapacity is the capacity of every sender/receiver [Queue] pair a
// ChannelCore creates between a sender thread and a receive thread. It is
// rounded up to the next power of two by newQueue. Overflow never
// drops a message; Send blocks until the receive side drains.
var QueueCapacity = 256

// MaxThreadsPerChannel bounds how many distinct threads a single
// ChannelCore may track buckets for. A bucket is allocated for every
// goroutine that subscribes to the channel, sends on it while it has
// receivers, or disconnects from it across threads; a channel used from
// more than this many goroutines panics with a *PoolExhaustedError. It is
// read when a ChannelCore is created.
var MaxThreadsPerChannel = 32

// MaxThreads bounds how many distinct receive-thread slots the process-wide
// QueuePool will allocate. Exceeding it panics with a *PoolExhaustedError.
// DefaultQueuePool's slot table is sized from it during package
// initialization, so assigning it later does not resize that pool.
var MaxThreads = 32
