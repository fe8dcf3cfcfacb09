package huffman

import "math/bits"

// Code is a prefix code ready for LSB-first emission.
type Code struct {
	Bits uint16 // bit-reversed canonical code
	Len  uint8
}

// Entry is a decode table slot: the symbol whose code prefixes the slot
// index, and how many bits that code occupies. Len 0 marks an unused slot.
type Entry struct {
	Symbol uint8
	Len    uint8
}

// Reverse reverses the low n bits of code.
func Reverse(code uint16, n int) uint16 {
	if n == 0 {
		return 0
	}
	return bits.Reverse16(code) >> (16 - n)
}

// AssignCodes assigns canonical codes to lengths.
//
// Codes of equal length are consecutive and ordered by symbol; moving to a
// longer length shifts the next code left. Every code is returned
// bit-reversed so that matching the low bits of an LSB-first stream is
// equivalent to matching the canonical code.
func AssignCodes(lengths []uint8) []uint16 {
	codes := make([]uint16, len(lengths))

	maxLen := 0
	for _, n := range lengths {
		maxLen = max(maxLen, int(n))
	}

	code := uint16(0)
	for n := 1; n <= maxLen; n++ {
		for symbol, length := range lengths {
			if int(length) != n {
				continue
			}
			codes[symbol] = Reverse(code, n)
			code++
		}
		code <<= 1
	}
	return codes
}

// Codes combines lengths and AssignCodes into encode table entries.
func Codes(lengths []uint8) []Code {
	assigned := AssignCodes(lengths)
	codes := make([]Code, len(lengths))
	for symbol, n := range lengths {
		codes[symbol] = Code{Bits: assigned[symbol], Len: n}
	}
	return codes
}

// BuildDecodeTable returns a table of 1<<maxLen entries indexed by the next
// maxLen bits of the stream.
//
// Each code is spread over every index whose low bits equal the code.
func BuildDecodeTable(lengths []uint8, codes []uint16, maxLen int) []Entry {
	if len(lengths) != len(codes) {
		panic("huffman: lengths and codes differ in size")
	}
	if len(lengths) > 256 {
		panic("huffman: alphabet too large for decode table")
	}

	size := 1 << maxLen
	table := make([]Entry, size)
	for symbol, n := range lengths {
		if n == 0 {
			continue
		}
		if int(n) > maxLen {
			panic("huffman: code longer than decode table")
		}
		entry := Entry{Symbol: uint8(symbol), Len: n}
		for i := int(codes[symbol]); i < size; i += 1 << n {
			table[i] = entry
		}
	}
	return table
}
