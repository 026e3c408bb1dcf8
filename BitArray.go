package Go_OSTree

import (
	"math/bits"
)

// NewBitArray with at least size bits, all cleared.
func NewBitArray(size int) BitArray {
	return BitArray{bits: make([]uint, (size+bits.UintSize-1)/bits.UintSize)}
}

// BitArray is a fixed length bit set. It's used for marking arena slots while walking a tree.
type BitArray struct {
	bits []uint
}

func (u BitArray) Len() int {
	return len(u.bits) * bits.UintSize
}

func (u BitArray) Get(i int) bool {
	return (u.bits[i/bits.UintSize]>>(i%bits.UintSize))&1 == 1
}

func (u BitArray) Up(i int) {
	u.bits[i/bits.UintSize] |= 1 << (i % bits.UintSize)
}

func (u BitArray) Down(i int) {
	u.bits[i/bits.UintSize] &^= 1 << (i % bits.UintSize)
}

// Count of set bits.
func (u BitArray) Count() (c int) {
	for _, w := range u.bits {
		c += bits.OnesCount(w)
	}
	return
}

// Swap sets bit i to v and returns its previous value.
func (u BitArray) Swap(i int, v bool) bool {
	old := u.Get(i)
	if v {
		u.Up(i)
	} else {
		u.Down(i)
	}
	return old
}
