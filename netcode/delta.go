package netcode

// FoldDelta maps a two's complement difference to an unsigned value so that
// small magnitudes stay small: 0, -1, 1, -2, 2 become 0, 1, 2, 3, 4.
func FoldDelta(diff uint32) uint32 {
	return uint32(int32(diff)>>31) ^ diff<<1
}

// UnfoldDelta inverts FoldDelta.
func UnfoldDelta(folded uint32) uint32 {
	return folded>>1 ^ -(folded & 1)
}

// intDelta returns the folded difference between baseline and value.
func intDelta(value, baseline int32) uint32 {
	return FoldDelta(uint32(baseline) - uint32(value))
}

func uintDelta(value, baseline uint32) uint32 {
	return FoldDelta(baseline - value)
}
