package mem

import (
	"errors"
	"fmt"
)

// ErrFreed is returned when an arena is released twice.
var ErrFreed = errors.New("arena already freed")

// Arena is a fixed-size, zero-initialized byte region.
type Arena interface {
	// Bytes returns the whole region. It must not be used after Free.
	Bytes() []byte
	// Free releases the region.
	Free() error
}

// Allocator hands out arenas.
type Allocator interface {
	Alloc(size int) (Arena, error)
	Name() string
}

// Heap allocates aligned arenas on the Go heap.
var Heap Allocator = heapAllocator{}

type heapAllocator struct{}

func (heapAllocator) Alloc(size int) (Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mem: invalid arena size %d", size)
	}
	return &heapArena{buf: AllocAligned(size)}, nil
}

func (heapAllocator) Name() string { return "heap" }

type heapArena struct {
	buf []byte
}

func (a *heapArena) Bytes() []byte { return a.buf }

func (a *heapArena) Free() error {
	if a.buf == nil {
		return ErrFreed
	}
	a.buf = nil
	return nil
}

// Anonymous returns an allocator backed by private anonymous memory mappings.
func Anonymous() Allocator { return anonAllocator{} }

type anonAllocator struct{}

func (anonAllocator) Name() string { return "anonymous" }

func (anonAllocator) Alloc(size int) (Arena, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mem: invalid arena size %d", size)
	}
	data, unmap, err := osMapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("mem: map %d bytes: %w", size, err)
	}
	return &mappedArena{data: data, unmap: unmap}, nil
}

type mappedArena struct {
	data  []byte
	unmap func([]byte) error
}

func (a *mappedArena) Bytes() []byte { return a.data }

func (a *mappedArena) Free() error {
	if a.data == nil {
		return ErrFreed
	}
	data := a.data
	a.data = nil
	if a.unmap == nil {
		return nil
	}
	return a.unmap(data)
}
