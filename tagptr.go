// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

import "unsafe"

// nodeSize is the number of slots in a single node's array.
const nodeSize = 1024

// tagBits is the number of low bits of the HEAD/TAIL word reserved for
// the index/ABA tag. Nodes are over-aligned to nodeAlign bytes so those
// bits are always free in every node pointer.
const tagBits = 11

// nodeAlign is the byte alignment every node must be allocated at.
const nodeAlign = 1 << tagBits

const (
	tagMask = uint64(nodeAlign - 1)
	ptrMask = ^tagMask
	// increment is added to HEAD/TAIL on every reservation.
	increment = uint64(1)
)

// MaxProducers is the largest number of concurrently enqueuing goroutines
// the tag arithmetic can support without the per-reservation index
// carrying into the pointer bits before a node boundary is reached.
const MaxProducers = (1 << tagBits) - nodeSize + 1

// MaxConsumers is half of MaxProducers, a more conservative bound for
// the dequeue side. Dequeue's emptiness peek is a zero-delta fetch-add
// that leaves the tag unchanged; only its committing fetch-add advances
// the tag.
const MaxConsumers = MaxProducers / 2

// composeTagged packs a node pointer and an index into one word. n must
// be aligned to nodeAlign; idx's bits above tagBits are discarded.
func composeTagged[T any](n *node[T], idx uint64) uint64 {
	return uint64(uintptr(unsafe.Pointer(n))) | (idx & tagMask)
}

// decomposeTagged splits a tagged word back into its node pointer and
// index components.
func decomposeTagged[T any](w uint64) (n *node[T], idx uint64) {
	return (*node[T])(unsafe.Pointer(uintptr(w & ptrMask))), w & tagMask
}

// decomposePtr extracts only the node pointer from a tagged word.
func decomposePtr[T any](w uint64) *node[T] {
	return (*node[T])(unsafe.Pointer(uintptr(w & ptrMask)))
}

// tagOf extracts only the index/tag from a tagged word.
func tagOf(w uint64) uint64 {
	return w & tagMask
}

// allocNode allocates a node[T] over-aligned to nodeAlign bytes.
//
// Go gives no way to request heap alignment this coarse, so this
// over-allocates a byte slab and returns the first aligned interior
// pointer. Go's heap keeps the whole backing allocation reachable
// through any interior pointer into it, so the slab header itself never
// needs to be retained.
func allocNode[T any]() *node[T] {
	var zero node[T]
	size := unsafe.Sizeof(zero)
	raw := make([]byte, size+nodeAlign)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	aligned := (base + nodeAlign - 1) &^ uintptr(nodeAlign-1)
	return (*node[T])(unsafe.Pointer(aligned))
}
