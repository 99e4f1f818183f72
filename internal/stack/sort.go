package stack

import (
	"context"

	"github.com/biggeezerdevelopment/parfst-go/internal/par"
)

// record is one (level, symbol) pair flowing through the sort and
// propagation phases. key is the nesting level biased into unsigned
// space; provider marks pushes, which donate their symbol to every
// consumer at the same level.
type record struct {
	key      uint32
	pos      uint32
	value    byte
	provider bool
}

const digitBits = 8
const radix = 1 << digitBits

// radixSort stable-sorts recs by key using least-significant-digit
// counting passes over keyBits bits, ping-ponging between recs and alt.
// It returns whichever buffer holds the sorted sequence.
//
// Each pass builds per-span histograms in parallel, derives deterministic
// write offsets per (digit, span) serially, and scatters in parallel.
// Spans walk their records in input order, so equal keys keep their
// temporal order across passes.
func radixSort(ctx context.Context, r *par.Runner, recs, alt []record, keyBits int) ([]record, error) {
	passes := (keyBits + digitBits - 1) / digitBits
	src, dst := recs, alt

	spans := r.Spans(len(recs))
	hists := make([][radix]uint32, len(spans))

	for p := 0; p < passes; p++ {
		shift := uint(p * digitBits)

		err := r.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
			hist := &hists[i]
			for d := range hist {
				hist[d] = 0
			}
			for j := s.Lo; j < s.Hi; j++ {
				hist[(src[j].key>>shift)&(radix-1)]++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		// Offsets are laid out digit-major, span-minor: all spans'
		// digit-0 records land before any digit-1 record, and within a
		// digit earlier spans write first. That is exactly the stable
		// counting sort order.
		var total uint32
		for d := 0; d < radix; d++ {
			for i := range hists {
				c := hists[i][d]
				hists[i][d] = total
				total += c
			}
		}

		err = r.ForEachSpan(ctx, spans, func(i int, s par.Span) error {
			hist := &hists[i]
			for j := s.Lo; j < s.Hi; j++ {
				d := (src[j].key >> shift) & (radix - 1)
				dst[hist[d]] = src[j]
				hist[d]++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		src, dst = dst, src
	}
	return src, nil
}
