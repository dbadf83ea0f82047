// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package looqueue

// Per-slot state bits, packed into the low 2 bits of the slot word
// alongside the element pointer's own high bits.
const (
	slotResume    = uint64(0b01)
	slotReader    = uint64(0b10)
	slotStateMask = slotResume | slotReader
	slotElemMask  = ^slotStateMask
)

// slotIsConsumed reports whether a slot has already been visited by both
// the enqueue that filled it and the dequeue that read it. A slot whose
// dequeue arrived first (READER set, no element bits) is not consumed
// until its enqueue also arrives and adds the element bits.
func slotIsConsumed(w uint64) bool {
	if w&slotElemMask == 0 {
		// no element bits set: no producer has visited this slot yet.
		return false
	}
	return w&slotReader == slotReader
}
