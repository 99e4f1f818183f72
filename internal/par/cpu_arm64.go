//go:build arm64

package par

import (
	"golang.org/x/sys/cpu"
)

func minGrain() int {
	if cpu.ARM64.HasASIMD {
		return 2048
	}
	return 1024
}
