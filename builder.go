// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

// options holds a Builder's thread-count hints.
type options struct {
	expectedProducers int
	expectedConsumers int
}

// Builder configures queue construction with thread-count hints.
//
// A hint is not enforced at every call: Enqueue/Dequeue never check it,
// since that would cost every fast-path operation a branch and a load
// to guard against a misuse class rather than a runtime condition.
// Build validates the hint once, at construction time, against the
// bound the tag arithmetic can actually support.
//
// Example:
//
//	q, err := looqueue.Build[Event](looqueue.NewBuilder().
//	    WithExpectedProducers(64).
//	    WithExpectedConsumers(16))
type Builder struct {
	opts options
}

// NewBuilder creates an unconfigured Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithExpectedProducers declares the largest number of goroutines that
// will concurrently call Enqueue.
func (b *Builder) WithExpectedProducers(n int) *Builder {
	b.opts.expectedProducers = n
	return b
}

// WithExpectedConsumers declares the largest number of goroutines that
// will concurrently call Dequeue.
func (b *Builder) WithExpectedConsumers(n int) *Builder {
	b.opts.expectedConsumers = n
	return b
}

// Build validates b's thread-count hints against MaxProducers and
// MaxConsumers and constructs a Queue. It returns ErrTooManyParticipants
// if either hint exceeds its bound.
func Build[T any](b *Builder) (*Queue[T], error) {
	if b.opts.expectedProducers > MaxProducers {
		return nil, ErrTooManyParticipants
	}
	if b.opts.expectedConsumers > MaxConsumers {
		return nil, ErrTooManyParticipants
	}
	return New[T](), nil
}
