// SPDX-License-Identifier: EPL-2.0

// Package buffer implements the ping-pong sample buffer that sits between
// the feed loop (task context) and the sample clock callback (interrupt
// context).
//
// The buffer has two slots of equal capacity. The consumer drains the read
// slot while the producer fills the other one; when the read slot is
// exhausted the roles swap and the needs-data edge is raised. The producer
// observes the edge with NeedsData, which empties the new write slot so it
// can be refilled from the start.
//
// Access is split by context: ISR exposes only Get, Task exposes only Put
// and NeedsData. There is exactly one producer and one consumer; nothing
// here takes a lock.
//
//	buf := buffer.New(4608)
//	isr, task := buf.ISR(), buf.Task()
//
//	// task context
//	for !task.Put(s) {
//	    for !task.NeedsData() {
//	        runtime.Gosched()
//	    }
//	}
//
//	// timer callback
//	if s, ok := isr.Get(); ok {
//	    driver.Write(s)
//	}
//
// # Underrun
//
// When the producer is slower than the consumer the slot the consumer swaps
// into may not have been refilled. Get then returns whatever that slot holds
// (stale samples, or zeroes right after Reset). This is not detected.
//
// # Overflow
//
// Put on a full write slot drops the sample and reports false.
package buffer
