// Package bitmap wraps Roaring bitmaps for the side flags of fragments
// (null markers and deletion tombstones).
package bitmap
