// Package primitives defines the scalar types shared by the fork choice core.
package primitives

import "fmt"

// Slot represents a single slot.
type Slot uint64

// Add increases the slot by x, panicking on overflow.
func (s Slot) Add(x uint64) Slot {
	res := uint64(s) + x
	if res < uint64(s) {
		panic(fmt.Sprintf("slot overflow: %d + %d", s, x))
	}
	return Slot(res)
}

// SubSlot returns s - x, or zero when x is larger than s.
func (s Slot) SubSlot(x Slot) Slot {
	if x > s {
		return 0
	}
	return s - x
}
