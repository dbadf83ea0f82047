// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrEmpty indicates Dequeue found the queue empty.
//
// It is a control flow signal, not a failure: the caller should retry
// later (with backoff or yield) rather than propagating it. Unlike the
// bounded queues in the code.hybscloud.com queue family, this queue is
// unbounded and can never report "full" — this is the only non-failure
// signal Enqueue/Dequeue ever produce.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        handle(v)
//	        continue
//	    }
//	    if looqueue.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err // unexpected error
//	}
var ErrEmpty = iox.ErrWouldBlock

// ErrInvalidElement is returned by Enqueue for a nil or misaligned
// element handle. No queue state changes when this is returned.
var ErrInvalidElement = errors.New("looqueue: elem must be non-nil and at least 4-byte aligned")

// ErrTooManyParticipants is returned by Build when a Builder's producer
// or consumer hint exceeds MaxProducers or MaxConsumers.
var ErrTooManyParticipants = errors.New("looqueue: participant count hint exceeds the tag's safe bound")

// ErrAllocation wraps a runtime allocation failure encountered while
// appending a node on Enqueue's slow path. The enqueue that triggered it
// is not retried automatically; the caller decides whether to retry.
var ErrAllocation = errors.New("looqueue: failed to allocate a node")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal, not a failure.
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
