// Package hash provides the CRC32-Castagnoli checksum used for table image
// blocks.
//
// One-shot:
//
//	sum := hash.CRC32C(block)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
