// Package mem provides the byte arenas backing fragment storage.
//
// Two allocators are available: Heap returns 64-byte aligned Go memory, and
// Anonymous maps private anonymous pages outside the Go heap (falling back to
// Heap on platforms without mmap).
package mem
