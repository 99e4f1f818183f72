package scratch

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_Alignment(t *testing.T) {
	a := New()
	a.Reserve(1 << 16)

	for _, n := range []int{1, 7, 64, 1000} {
		b := a.Bytes(n)
		require.Len(t, b, n)
		addr := uintptr(unsafe.Pointer(&b[0]))
		assert.Zero(t, addr&(CacheLineSize-1), "allocation of %d not cache aligned", n)
	}
}

func TestArena_ResetReusesBuffer(t *testing.T) {
	a := New()
	a.Reserve(4096)

	first := a.Bytes(128)
	a.Reset()
	second := a.Bytes(128)

	assert.Equal(t, unsafe.Pointer(&first[0]), unsafe.Pointer(&second[0]),
		"reset must hand back the same region")
}

func TestArena_GrowsOnDemand(t *testing.T) {
	a := New()
	a.Reserve(64)

	small := a.Bytes(32)
	big := a.Bytes(1 << 20)
	require.Len(t, big, 1<<20)

	// The earlier slice must survive a growth.
	small[0] = 42
	assert.EqualValues(t, 42, small[0])
}

func TestArena_HighWater(t *testing.T) {
	a := New()
	a.Bytes(100)
	a.Reset()
	a.Bytes(10)
	a.Reset()

	assert.GreaterOrEqual(t, a.HighWater(), 100)
}

func TestOf_TypedSlices(t *testing.T) {
	a := New()
	a.Reserve(4096)

	xs := Of[uint32](a, 16)
	require.Len(t, xs, 16)
	for i := range xs {
		xs[i] = uint32(i * i)
	}
	assert.EqualValues(t, 225, xs[15])

	ys := Of[int32](a, 8)
	require.Len(t, ys, 8)

	assert.Nil(t, Of[uint32](a, 0))
}
