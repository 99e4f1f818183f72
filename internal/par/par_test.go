package par

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpans_CoverInput(t *testing.T) {
	tests := []struct {
		name  string
		lanes int
		n     int
	}{
		{"empty", 4, 0},
		{"single element", 4, 1},
		{"below grain", 4, 100},
		{"one span per lane", 4, 1 << 20},
		{"uneven split", 3, 10_000_001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(tt.lanes)
			spans := r.Spans(tt.n)

			covered := 0
			prev := 0
			for _, s := range spans {
				require.Equal(t, prev, s.Lo, "spans must be contiguous")
				require.Greater(t, s.Hi, s.Lo, "spans must be non-empty")
				covered += s.Hi - s.Lo
				prev = s.Hi
			}
			assert.Equal(t, tt.n, covered)
			assert.LessOrEqual(t, len(spans), tt.lanes)
		})
	}
}

func TestSpans_Deterministic(t *testing.T) {
	r := NewRunner(8)
	assert.Equal(t, r.Spans(123457), r.Spans(123457))
}

func TestForEach_VisitsEveryIndex(t *testing.T) {
	const n = 100_000
	r := NewRunner(5)
	seen := make([]int32, n)

	err := r.ForEach(context.Background(), n, func(s Span) error {
		for i := s.Lo; i < s.Hi; i++ {
			seen[i]++
		}
		return nil
	})
	require.NoError(t, err)
	for i, c := range seen {
		require.EqualValues(t, 1, c, "index %d visited %d times", i, c)
	}
}

func TestForEach_PropagatesError(t *testing.T) {
	r := NewRunner(4)
	errBoom := assert.AnError

	err := r.ForEach(context.Background(), 1<<20, func(s Span) error {
		if s.Lo > 0 {
			return errBoom
		}
		return nil
	})
	assert.ErrorIs(t, err, errBoom)
}

func TestForEach_Cancelled(t *testing.T) {
	r := NewRunner(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.ForEach(ctx, 10, func(s Span) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanInclusive_MatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 2, 100, 12345, 1 << 18} {
		xs := make([]int32, n)
		for i := range xs {
			xs[i] = int32(rng.Intn(7)) - 3
		}
		want := make([]int32, n)
		var acc int32
		for i, x := range xs {
			acc += x
			want[i] = acc
		}

		for _, lanes := range []int{1, 2, 3, 8} {
			got := make([]int32, n)
			copy(got, xs)
			err := ScanInclusive(context.Background(), NewRunner(lanes), got, func(a, b int32) int32 { return a + b })
			require.NoError(t, err)
			require.Equal(t, want, got, "n=%d lanes=%d", n, lanes)
		}
	}
}

func TestScanInclusive_NonCommutativeCombiner(t *testing.T) {
	// The copy-forward combiner used by tape gap-fill is associative but
	// not commutative; the scan must still match a serial fold.
	const marker = byte(0xFF)
	n := 1 << 17
	rng := rand.New(rand.NewSource(2))
	xs := make([]byte, n)
	xs[0] = 'a'
	for i := 1; i < n; i++ {
		if rng.Intn(4) == 0 {
			xs[i] = byte('a' + rng.Intn(26))
		} else {
			xs[i] = marker
		}
	}
	combine := func(a, b byte) byte {
		if b == marker {
			return a
		}
		return b
	}

	want := append([]byte(nil), xs...)
	for i := 1; i < n; i++ {
		want[i] = combine(want[i-1], want[i])
	}

	got := append([]byte(nil), xs...)
	err := ScanInclusive(context.Background(), NewRunner(7), got, combine)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExclusiveSumUint32(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{0, 1, 1000, 1 << 18} {
		counts := make([]uint32, n)
		for i := range counts {
			counts[i] = uint32(rng.Intn(5))
		}
		wantOff := make([]uint32, n)
		var wantTotal uint64
		for i, c := range counts {
			wantOff[i] = uint32(wantTotal)
			wantTotal += uint64(c)
		}

		offsets := make([]uint32, n)
		total, err := ExclusiveSumUint32(context.Background(), NewRunner(6), counts, offsets)
		require.NoError(t, err)
		assert.Equal(t, wantTotal, total)
		assert.Equal(t, wantOff, offsets)
	}
}
