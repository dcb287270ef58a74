//go:build !unix

package mem

// Without mmap support, anonymous arenas live on the Go heap.
func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return AllocAligned(size), nil, nil
}
