// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package looqueue provides an unbounded, multi-producer/multi-consumer,
// lock-free FIFO queue.
//
// The queue is a linked chain of fixed-capacity array nodes. A slot is
// claimed with a single fetch-add on a tagged (node pointer, index)
// word; nodes are freed once a three-flag protocol proves no fast-path
// or slow-path operation can still reach them. There is exactly one
// algorithm and exactly two operations — no bounded variants, no
// capacity, no Drain.
//
// # Quick Start
//
//	q := looqueue.New[Event]()
//
//	ev := Event{ID: 1}
//	err := q.Enqueue(&ev)
//
//	got, err := q.Dequeue()
//	if looqueue.IsWouldBlock(err) {
//	    // queue observed empty
//	}
//
// Builder validates a thread-count hint at construction instead of at
// every call:
//
//	q, err := looqueue.Build[Event](looqueue.NewBuilder().
//	    WithExpectedProducers(64).
//	    WithExpectedConsumers(16))
//
// # Basic Usage
//
//	q := looqueue.New[int]()
//
//	value := 42
//	if err := q.Enqueue(&value); err != nil {
//	    // non-nil only for ErrInvalidElement or ErrAllocation; never "full"
//	}
//
//	got, err := q.Dequeue()
//	if looqueue.IsWouldBlock(err) {
//	    // empty — try again later
//	}
//
// # Common Patterns
//
// Worker pool (MPMC, the only shape this queue has):
//
//	q := looqueue.New[Job]()
//
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            job, err := q.Dequeue()
//	            if err != nil {
//	                backoff.Wait()
//	                continue
//	            }
//	            backoff.Reset()
//	            job.Run()
//	        }
//	    }()
//	}
//
//	// submit jobs from anywhere, any number of goroutines
//	func Submit(j Job) error {
//	    return q.Enqueue(&j)
//	}
//
// # Error Handling
//
// Enqueue/Dequeue distinguish three error classes (see the package's
// [ErrEmpty], [ErrInvalidElement], and [ErrAllocation]):
//
//	err := q.Enqueue(&item)
//	switch {
//	case err == nil:
//	    // accepted
//	case looqueue.IsWouldBlock(err):
//	    // cannot happen for Enqueue — unbounded — included for symmetry
//	    // with Dequeue's identical check
//	default:
//	    // ErrInvalidElement or ErrAllocation: a real failure, not backpressure
//	}
//
//	v, err := q.Dequeue()
//	if looqueue.IsWouldBlock(err) {
//	    // observed empty — retry later
//	}
//
// [ErrEmpty] is sourced from [code.hybscloud.com/iox] for ecosystem
// consistency with every other queue built on the same stack.
//
// # Thread Participation Bound
//
// The tag carries 11 bits and a node has 1024 slots, so at most
// [MaxProducers] goroutines may concurrently call Enqueue and at most
// [MaxConsumers] may concurrently call Dequeue without risking the tag
// carrying into the pointer bits. [Builder.WithExpectedProducers] and
// [Builder.WithExpectedConsumers] let [Build] check a hint once, at
// construction; Enqueue and Dequeue themselves never check it, since
// that would tax every fast-path call to guard a misuse class rather
// than a runtime condition. Running with more participants than
// declared is undefined behavior, exactly as it would be for any other
// fixed-width tagging scheme.
//
// # Memory Reclamation
//
// A node is retired once three independent conditions all hold: every
// slot has been visited by its fast-path or abandonment sweep, every
// slow-path enqueue that could still reach it has finished, and every
// slow-path dequeue that could still reach it has finished. Once all
// three are true, nothing in the queue or in any other node's fields
// still references the node, so the Go garbage collector reclaims it
// without any explicit free call. [Queue.Stats] reports cumulative
// allocation/free counts for callers who want to confirm the queue
// isn't retaining memory it no longer needs.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic memory ordering. This queue
// synchronizes every shared field through acquire/release fetch-adds
// and compare-and-swaps on separate words, which the race detector
// cannot correlate — it is correct but will report false positives
// under -race. Concurrency tests that would trip this are gated behind
// [RaceEnabled] and skipped under -race, exactly as the wider
// code.hybscloud.com queue family does.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering, [code.hybscloud.com/spin] for
// CPU-pause retry loops, and [code.hybscloud.com/iox] for semantic
// errors and caller-facing backoff.
package looqueue
