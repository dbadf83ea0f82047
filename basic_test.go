// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue_test

import (
	"errors"
	"testing"
	"unsafe"

	"code.hybscloud.com/looqueue"
)

// TestBasicSanity covers an empty queue, one enqueue, then two dequeues
// (the second observing empty).
func TestBasicSanity(t *testing.T) {
	q := looqueue.New[uint32]()

	v := uint32(0xCAFE_0001)
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	got, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got != v {
		t.Fatalf("Dequeue: got %#x, want %#x", got, v)
	}

	if _, err := q.Dequeue(); !errors.Is(err, looqueue.ErrEmpty) {
		t.Fatalf("Dequeue on empty: got %v, want ErrEmpty", err)
	}
}

// TestEnqueueDequeueOrder checks several elements come back FIFO on a
// single goroutine, well within one node.
func TestEnqueueDequeueOrder(t *testing.T) {
	q := looqueue.New[int]()
	const n = 50

	vals := make([]int, n)
	for i := range vals {
		vals[i] = i
		if err := q.Enqueue(&vals[i]); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	for i := range n {
		got, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if got != i {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, got, i)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, looqueue.ErrEmpty) {
		t.Fatalf("Dequeue on empty: got %v, want ErrEmpty", err)
	}
}

// TestRejection checks a nil handle and a misaligned handle are both
// rejected without mutating the queue, and the queue still works
// afterward.
func TestRejection(t *testing.T) {
	q := looqueue.New[uint32]()

	if err := q.Enqueue(nil); !errors.Is(err, looqueue.ErrInvalidElement) {
		t.Fatalf("Enqueue(nil): got %v, want ErrInvalidElement", err)
	}

	var misaligned [8]byte
	// force an odd address within the array so the low bits are set.
	bad := (*uint32)(unsafe.Add(unsafe.Pointer(&misaligned), 1))
	if err := q.Enqueue(bad); !errors.Is(err, looqueue.ErrInvalidElement) {
		t.Fatalf("Enqueue(misaligned): got %v, want ErrInvalidElement", err)
	}

	if _, err := q.Dequeue(); !errors.Is(err, looqueue.ErrEmpty) {
		t.Fatalf("queue mutated by a rejected Enqueue: got %v", err)
	}

	v := uint32(0xCAFE_0001)
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue after rejection: %v", err)
	}
	got, err := q.Dequeue()
	if err != nil || got != v {
		t.Fatalf("Dequeue after rejection: got (%#x, %v)", got, err)
	}
}

// TestStatsSentinelOnly confirms a freshly-constructed, never-used queue
// reports exactly its one sentinel allocation and no frees.
func TestStatsSentinelOnly(t *testing.T) {
	q := looqueue.New[int]()
	allocs, frees := q.Stats()
	if allocs != 1 || frees != 0 {
		t.Fatalf("Stats on fresh queue: got (%d, %d), want (1, 0)", allocs, frees)
	}
}
