// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// Reclaim flag bits. All three set means the node has no remaining
// fast-path or slow-path operation that could still touch it.
const (
	reclaimSLOTS = uint32(0b001) // every slot has been visited and found consumed
	reclaimENQ   = uint32(0b010) // every slow-path enqueue on this node has completed
	reclaimDEQ   = uint32(0b100) // every slow-path dequeue on this node has completed
)

// Packed-counter layout: low 16 bits are the running count of completed
// slow-path operations, high 16 bits are the final count once a winning
// tail/head swing has stamped it. A 0 final half means "not yet known".
const (
	counterShift = 16
	counterMask  = 0xFFFF
)

// ctrlBlock is a node's memory-reclamation bookkeeping.
type ctrlBlock struct {
	_            pad
	enqCount     atomix.Uint32
	_            pad
	deqCount     atomix.Uint32
	reclaimFlags atomix.Uint32
	_            pad
}

// node is one fixed-capacity array segment of the queue's linked chain.
// It must be allocated via allocNode so its address is aligned to
// nodeAlign, leaving the tagged pointer word's low tagBits free.
type node[T any] struct {
	ctrl  ctrlBlock
	next  atomix.Uint64 // raw *node[T] bits, 0 until a successor is published
	frees *atomix.Int64 // the owning queue's free counter
	_     pad
	slots [nodeSize]atomix.Uint64
}

// newHeadNode allocates a fresh, empty node and counts it against alloc.
func newHeadNode[T any](alloc, frees *atomix.Int64) *node[T] {
	n := allocNode[T]()
	n.frees = frees
	alloc.AddAcqRel(1)
	return n
}

// newNodeWithFirst allocates a node with elem tentatively stored in its
// first slot. The slot write is relaxed: until this node is published by
// a successful CAS on some predecessor's next pointer, nothing else can
// observe it.
func newNodeWithFirst[T any](elem *T, alloc, frees *atomix.Int64) *node[T] {
	n := allocNode[T]()
	n.frees = frees
	n.slots[0].StoreRelaxed(uint64(uintptr(unsafe.Pointer(elem))))
	alloc.AddAcqRel(1)
	return n
}

// tryReclaim sweeps slots starting at idx, looking for any that have not
// yet been consumed. The first such slot is marked RESUME and the sweep
// aborts: whichever of the pending enqueue/dequeue arrives last at that
// slot will observe RESUME and resume the sweep from idx+1. If every
// slot from idx onward is already consumed, the SLOTS flag is set and,
// if ENQ and DEQ were already both set, the node is freed.
func (n *node[T]) tryReclaim(idx uint64) {
	for ; idx < nodeSize; idx++ {
		slot := &n.slots[idx]
		if slotIsConsumed(slot.LoadAcquire()) {
			continue
		}
		updated := slot.AddAcqRel(slotResume)
		before := updated - slotResume
		if !slotIsConsumed(before) {
			return
		}
	}

	newFlags := n.ctrl.reclaimFlags.AddAcqRel(reclaimSLOTS)
	oldFlags := newFlags - reclaimSLOTS
	if oldFlags == reclaimENQ|reclaimDEQ {
		n.free()
	}
}

// incrEnqueueCount records one more completed slow-path enqueue against
// this node. finalCount, if non-zero, additionally stamps the total
// number of slow-path enqueues this node will ever see (supplied by
// whichever producer wins the bounded CAS loop on TAIL).
func (n *node[T]) incrEnqueueCount(finalCount uint64) {
	curr, final := incrCount(&n.ctrl.enqCount, finalCount)
	n.tryReclaimPostIncrement(curr, final, reclaimENQ, reclaimSLOTS|reclaimDEQ)
}

// incrDequeueCount is incrEnqueueCount's dequeue-side counterpart.
func (n *node[T]) incrDequeueCount(finalCount uint64) {
	curr, final := incrCount(&n.ctrl.deqCount, finalCount)
	n.tryReclaimPostIncrement(curr, final, reclaimDEQ, reclaimSLOTS|reclaimENQ)
}

// incrCount bumps counter's current-count half by one and, if
// finalCount is non-zero, stamps the final-count half in the same
// fetch-add. It returns the resulting (current, final) pair.
func incrCount(counter *atomix.Uint32, finalCount uint64) (curr, final uint32) {
	if finalCount == 0 {
		updated := counter.AddAcqRel(1)
		before := updated - 1
		return (before & counterMask) + 1, uint32(before >> counterShift)
	}
	f := uint32(finalCount)
	add := uint32(1) + f<<counterShift
	updated := counter.AddAcqRel(add)
	before := updated - add
	return (before & counterMask) + 1, f
}

// tryReclaimPostIncrement sets flagBit once curr catches up to final and
// frees the node if expectedFlags were already set beforehand.
func (n *node[T]) tryReclaimPostIncrement(curr, final uint32, flagBit, expectedFlags uint32) {
	if curr != final {
		return
	}
	newFlags := n.ctrl.reclaimFlags.AddAcqRel(flagBit)
	oldFlags := newFlags - flagBit
	if oldFlags == expectedFlags {
		n.free()
	}
}

// free marks the node as reclaimed. There is no explicit deallocation:
// by the time all three reclaim flags are set, nothing in the queue or
// any other node still references n, so it is already unreachable and
// collectible. frees exists purely so Stats() can make that guarantee
// independently testable.
func (n *node[T]) free() {
	n.frees.AddAcqRel(1)
}
