// Package image writes a table to a portable byte stream and reads it back.
//
// An image starts with a fixed preamble (magic, format version, codec name)
// followed by a codec-encoded header describing the schema, layout, grid
// capacity, partitions and tuple count. Each attribute follows as a column
// block and a null bitmap block; a tombstone bitmap block closes the image.
//
// Every block carries its compression kind, raw and stored lengths and a
// CRC32C checksum of the stored bytes. A checksum mismatch fails the decode
// with model.ErrCorrupted.
package image
