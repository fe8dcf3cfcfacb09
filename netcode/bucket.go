// Package netcode implements the compressed wire format for game state
// fields: bucketed unsigned integers, zig-zag deltas, nibbles and raw bit
// fields written through interchangeable stream backends.
//
// Streams read and write a caller-owned byte buffer. Wire format violations
// (bit counts above 32, nibbles above 15, unknown contexts, overflowing the
// buffer) are programmer errors and panic, since any recovery would
// desynchronize every following field.
package netcode

import "math/bits"

// NumBuckets is the number of integer buckets, one per nibble symbol.
const NumBuckets = 16

// Bucket b covers [bucketOffsets[b], bucketOffsets[b+1]) and stores the
// value relative to its offset in bucketBits[b] raw bits. Part of the wire
// format.
var (
	bucketOffsets = [NumBuckets]uint32{
		0, 1, 2, 4, 8, 16, 32, 96, 352, 1376, 5472, 38240, 300384, 2397536, 19174752, 153392480,
	}
	bucketBits = [NumBuckets]uint8{
		0, 0, 1, 2, 3, 4, 6, 8, 10, 12, 15, 18, 21, 24, 27, 32,
	}
)

func init() {
	for b := 0; b+1 < NumBuckets; b++ {
		if bucketOffsets[b]+1<<bucketBits[b] != bucketOffsets[b+1] {
			panic("netcode: bucket table is not contiguous")
		}
	}
}

// BucketOf returns the bucket containing value.
func BucketOf(value uint32) int {
	// Every bucket start at or below value moves the result by one.
	b := 0
	for _, offset := range bucketOffsets[1:] {
		if value >= offset {
			b++
		}
	}
	return b
}

// BucketOffset returns the smallest value in bucket b.
func BucketOffset(b int) uint32 { return bucketOffsets[b] }

// BucketBits returns the raw bit width of values in bucket b.
func BucketBits(b int) uint8 { return bucketBits[b] }

// GammaBitCost returns the length of the Elias gamma code for value+1.
// It is used to compare the codec against a universal code.
func GammaBitCost(value uint32) int {
	return 2*bits.Len64(uint64(value)+1) - 1
}
