// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

import (
	"fmt"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Queue is an unbounded, multi-producer/multi-consumer, lock-free FIFO.
//
// It is built from a linked chain of fixed-capacity array nodes: every
// slot claim is a single fetch-add on a tagged (node pointer, index)
// word, and a node is only ever freed once a three-flag protocol proves
// no fast-path or slow-path operation can still reach it. There is no
// capacity and no Cap(); see the package doc for why.
type Queue[T any] struct {
	_          pad
	tail       atomix.Uint64 // tagged (*node[T], idx)
	_          pad
	head       atomix.Uint64 // tagged (*node[T], idx)
	_          pad
	cachedTail atomix.Uint64 // raw *node[T] bits, no tag
	_          pad
	allocs     atomix.Int64
	frees      atomix.Int64
}

// New constructs an empty Queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := newHeadNode[T](&q.allocs, &q.frees)
	w := composeTagged(sentinel, 0)
	q.head.StoreRelaxed(w)
	q.tail.StoreRelaxed(w)
	q.cachedTail.StoreRelaxed(uint64(uintptr(unsafe.Pointer(sentinel))))
	return q
}

// Close walks the remaining node chain and accounts every node as freed.
// It does not run concurrently with Enqueue/Dequeue; callers must ensure
// all producers and consumers have stopped first.
func (q *Queue[T]) Close() {
	n := decomposePtr[T](q.head.LoadRelaxed())
	for n != nil {
		next := decomposePtr[T](n.next.LoadRelaxed())
		q.frees.AddAcqRel(1)
		n = next
	}
	q.head.StoreRelaxed(0)
	q.tail.StoreRelaxed(0)
	q.cachedTail.StoreRelaxed(0)
}

// Stats reports the cumulative number of nodes allocated and the
// cumulative number proven reclaimable by the three-flag protocol.
// frees never exceeds allocs. A node that still holds undequeued elements
// is not counted as freed; once the queue has been fully drained and no
// goroutine is inside Enqueue/Dequeue, frees == allocs-1 (only the node
// HEAD and TAIL point to remains).
func (q *Queue[T]) Stats() (allocs, frees int64) {
	return q.allocs.LoadAcquire(), q.frees.LoadAcquire()
}

// Enqueue appends elem to the queue. elem must be non-nil and at least
// 4-byte aligned (every *T the Go runtime hands out already satisfies
// this for any T); violating either returns ErrInvalidElement and
// changes no queue state. A failure to allocate a new node on the slow
// path returns ErrAllocation.
func (q *Queue[T]) Enqueue(elem *T) error {
	if elem == nil {
		return ErrInvalidElement
	}
	if uintptr(unsafe.Pointer(elem))&slotStateMask != 0 {
		return ErrInvalidElement
	}

	sw := spin.Wait{}
	for {
		curr := q.tail.AddAcqRel(increment)
		tailWord := curr - increment
		tail, idx := decomposeTagged[T](tailWord)

		if idx < nodeSize {
			bits := uint64(uintptr(unsafe.Pointer(elem)))
			updated := tail.slots[idx].AddAcqRel(bits)
			state := updated - bits

			switch {
			case state <= slotResume:
				return nil
			case state == slotReader|slotResume:
				tail.tryReclaim(idx + 1)
			}
			sw.Once()
			continue
		}

		res, err := q.tryAdvanceTail(elem, tail)
		if err != nil {
			return err
		}
		switch res {
		case advancedAndInserted:
			return nil
		case advanced:
			sw.Once()
			continue
		}
	}
}

// Dequeue removes and returns the queue's oldest element. On an empty
// queue it returns ErrEmpty and the zero value of T.
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T
	sw := spin.Wait{}
	for {
		headWord := q.head.AddAcqRel(0) // zero-delta: acquire fence without mutation
		head, headIdx := decomposeTagged[T](headWord)
		cachedTail := decomposePtr[T](q.cachedTail.LoadAcquire())

		if head == cachedTail {
			tailWord := q.tail.LoadAcquire()
			tail, tailIdx := decomposeTagged[T](tailWord)
			if head == tail && (headIdx >= nodeSize || tailIdx <= headIdx) {
				return zero, ErrEmpty
			}
		}

		curr := q.head.AddAcqRel(increment)
		headWord = curr - increment
		head, headIdx = decomposeTagged[T](headWord)

		if headIdx < nodeSize {
			updated := head.slots[headIdx].AddAcqRel(slotReader)
			state := updated - slotReader
			elemBits := state & slotElemMask

			if elemBits != 0 {
				if state&slotResume != 0 {
					head.tryReclaim(headIdx + 1)
				}
				return *(*T)(unsafe.Pointer(uintptr(elemBits))), nil
			}
			sw.Once()
			continue
		}

		if headIdx == nodeSize {
			// first slow-path arrival on this node: start the reclamation
			// sweep now, since every other op accessing it must already
			// have been initiated (though not necessarily completed).
			head.tryReclaim(0)
		}

		switch q.tryAdvanceHead(curr, head, decomposePtr[T](q.tail.LoadRelaxed())) {
		case headAdvanced:
			sw.Once()
			continue
		case headQueueEmpty:
			return zero, ErrEmpty
		}
	}
}

type advanceTailResult int

const (
	advanced advanceTailResult = iota
	advancedAndInserted
)

type advanceHeadResult int

const (
	headAdvanced advanceHeadResult = iota
	headQueueEmpty
)

// boundedCASLoop repeatedly attempts to swing word from *expected to
// desired. On a failed attempt it reloads *expected; it gives up the
// instant the reloaded pointer no longer matches oldNode, since that
// means some other operation already advanced past it.
func boundedCASLoop[T any](word *atomix.Uint64, expected *uint64, desired uint64, oldNode *node[T]) bool {
	for {
		if word.CompareAndSwapAcqRel(*expected, desired) {
			return true
		}
		*expected = word.LoadRelaxed()
		if decomposePtr[T](*expected) != oldNode {
			return false
		}
	}
}

// tryAdvanceTail appends a new node after tail if none exists yet, or
// helps swing TAIL onto an already-appended successor. It reloads TAIL
// at the top of every attempt since, by the time a producer reaches the
// slow path, arbitrarily many other producers may have already appended
// and swung past more than one node.
func (q *Queue[T]) tryAdvanceTail(elem *T, tail *node[T]) (advanceTailResult, error) {
	for {
		curr := q.tail.LoadRelaxed()
		if tail != decomposePtr[T](curr) {
			tail.incrEnqueueCount(0)
			return advanced, nil
		}

		nextBits := tail.next.LoadAcquire()
		if nextBits == 0 {
			next, err := q.safeAllocWithFirst(elem)
			if err != nil {
				return 0, err
			}
			newBits := uint64(uintptr(unsafe.Pointer(next)))

			if tail.next.CompareAndSwapAcqRel(0, newBits) {
				expected := curr
				desired := composeTagged(next, 1)
				if boundedCASLoop(&q.tail, &expected, desired, tail) {
					tail.incrEnqueueCount(tagOf(expected) - nodeSize)
				} else {
					tail.incrEnqueueCount(0)
				}
				q.cachedTail.StoreRelease(newBits)
				return advancedAndInserted, nil
			}

			// lost the race to publish next: it was never reachable from
			// anywhere, so it is freed immediately rather than entering
			// the three-flag protocol.
			q.frees.AddAcqRel(1)
			continue
		}

		next := decomposePtr[T](nextBits)
		expected := curr
		desired := composeTagged(next, 1)
		if boundedCASLoop(&q.tail, &expected, desired, tail) {
			tail.incrEnqueueCount(tagOf(expected) - nodeSize)
		} else {
			tail.incrEnqueueCount(0)
		}
		q.cachedTail.StoreRelease(nextBits)
		return advanced, nil
	}
}

// tryAdvanceHead swings HEAD onto head's successor, or reports the
// queue empty if head has none yet or is also the current tail. curr is
// the caller's own just-incremented HEAD word (already one past the
// reserved index); unlike tryAdvanceTail, there is no outer retry loop
// here, since a dequeuer's head can only be exactly the node it already
// fetched from.
func (q *Queue[T]) tryAdvanceHead(curr uint64, head, tail *node[T]) advanceHeadResult {
	nextBits := head.next.LoadAcquire()
	if nextBits == 0 || head == tail {
		head.incrDequeueCount(0)
		return headQueueEmpty
	}

	next := decomposePtr[T](nextBits)
	expected := curr
	desired := composeTagged(next, 0)
	if boundedCASLoop(&q.head, &expected, desired, head) {
		head.incrDequeueCount(tagOf(expected) - nodeSize)
	} else {
		head.incrDequeueCount(0)
	}
	return headAdvanced
}

// safeAllocWithFirst allocates a node with elem tentatively stored in
// its first slot, converting an allocation-failure panic from the
// runtime into ErrAllocation so the caller can propagate it as an
// ordinary error instead of crashing.
func (q *Queue[T]) safeAllocWithFirst(elem *T) (n *node[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			n = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()
	return newNodeWithFirst(elem, &q.allocs, &q.frees), nil
}
