//go:build amd64

package par

import (
	"golang.org/x/sys/cpu"
)

// minGrain returns the smallest span a lane is worth waking up for.
// Wider vector units shift the balance toward larger spans, since the
// per-element cost of the scan bodies drops.
func minGrain() int {
	if cpu.X86.HasAVX2 {
		return 4096
	}
	if cpu.X86.HasSSE42 {
		return 2048
	}
	return 1024
}
