// Package scratch provides the engine-owned temporary storage shared by
// all kernel phases of a call.
//
// An Arena is a single pre-allocated byte region carved up by a bump
// allocator. It grows monotonically to the largest size any call has ever
// required and is reused across calls, so steady-state execution performs
// no allocations. Slices handed out by an arena are only valid until the
// next Reset.
package scratch

import (
	"unsafe"
)

// CacheLineSize is the alignment applied to every arena allocation so
// lanes working on adjacent buffers do not share cache lines.
const CacheLineSize = 64

// Arena is a bump allocator over one contiguous buffer. Not safe for
// concurrent use; each engine call owns its arena exclusively.
type Arena struct {
	buf       []byte
	off       int
	highWater int
}

// New returns an empty arena. Capacity is established by Reserve or by
// the first allocations.
func New() *Arena {
	return &Arena{}
}

// Reserve ensures the arena can hand out at least n bytes before it has
// to grow again. Capacity never shrinks.
func (a *Arena) Reserve(n int) {
	if n <= cap(a.buf) {
		return
	}
	// Over-align so every bump stays inside the buffer after rounding.
	a.buf = alignedBytes(n + CacheLineSize)
	a.off = 0
}

// Reset recycles the arena for the next call. The backing buffer is kept.
func (a *Arena) Reset() {
	if a.off > a.highWater {
		a.highWater = a.off
	}
	a.off = 0
}

// HighWater reports the largest number of bytes any call has consumed.
func (a *Arena) HighWater() int {
	if a.off > a.highWater {
		return a.off
	}
	return a.highWater
}

// Bytes bump-allocates n cache-line-aligned bytes. The slice is zeroed
// only when it comes from a fresh buffer; callers overwrite fully.
func (a *Arena) Bytes(n int) []byte {
	if n == 0 {
		return nil
	}
	aligned := (a.off + CacheLineSize - 1) &^ (CacheLineSize - 1)
	if aligned+n > len(a.buf) {
		a.grow(aligned + n)
		aligned = (a.off + CacheLineSize - 1) &^ (CacheLineSize - 1)
	}
	b := a.buf[aligned : aligned+n : aligned+n]
	a.off = aligned + n
	return b
}

func (a *Arena) grow(need int) {
	next := 2 * cap(a.buf)
	if next < need {
		next = need
	}
	if next < 4096 {
		next = 4096
	}
	// Earlier slices keep referencing the old buffer; they stay valid
	// for the rest of the call.
	a.buf = alignedBytes(next + CacheLineSize)
	a.off = 0
}

// alignedBytes allocates a buffer whose first byte sits on a cache line
// boundary.
func alignedBytes(n int) []byte {
	raw := make([]byte, n+CacheLineSize-1)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	shift := 0
	if rem := addr & (CacheLineSize - 1); rem != 0 {
		shift = CacheLineSize - int(rem)
	}
	return raw[shift : shift+n : shift+n]
}

// Of carves a typed slice out of the arena. The element type must be
// free of pointers; the arena never scans its contents.
func Of[T any](a *Arena, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	b := a.Bytes(n * size)
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
