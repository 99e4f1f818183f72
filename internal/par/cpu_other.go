//go:build !amd64 && !arm64

package par

func minGrain() int {
	return 1024
}
