// Package huffman builds length-limited canonical prefix codes for small
// alphabets. Codes are emitted least significant bit first, so every code
// returned by this package is stored bit-reversed within its length.
package huffman

import "sort"

const (
	// MaxAlphabetSize is the largest alphabet CodeLengths accepts.
	MaxAlphabetSize = 255
	// MaxCodeLengthLimit is the largest code length CodeLengths can be asked for.
	MaxCodeLengthLimit = 8
)

// node is an item in one package-merge list: either a leaf (symbol >= 0)
// or a package made of two items from the previous list.
type node struct {
	weight      uint64
	symbol      int
	left, right int32
}

// CodeLengths computes optimal prefix code lengths for freqs such that no
// code is longer than maxLen.
//
// Symbols with zero frequency get length 0. When only one symbol is used it
// gets length 1, so a degenerate alphabet is still decodable.
func CodeLengths(freqs []uint32, maxLen int) []uint8 {
	if len(freqs) > MaxAlphabetSize {
		panic("huffman: alphabet too large")
	}
	if maxLen < 1 || maxLen > MaxCodeLengthLimit {
		panic("huffman: max code length out of range")
	}

	lengths := make([]uint8, len(freqs))

	var used []int
	for symbol, freq := range freqs {
		if freq > 0 {
			used = append(used, symbol)
		}
	}

	switch len(used) {
	case 0:
		return lengths
	case 1:
		lengths[used[0]] = 1
		return lengths
	}
	if len(used) > 1<<maxLen {
		panic("huffman: too many symbols for max code length")
	}

	sort.SliceStable(used, func(i, k int) bool {
		return freqs[used[i]] < freqs[used[k]]
	})

	nodes := make([]node, 0, len(used)*(2*maxLen+1))
	leaves := make([]int32, len(used))
	for i, symbol := range used {
		leaves[i] = int32(len(nodes))
		nodes = append(nodes, node{weight: uint64(freqs[symbol]), symbol: symbol, left: -1, right: -1})
	}

	// The list for the deepest level holds only the leaves. Every shallower
	// level merges the leaves with packages formed from adjacent pairs of the
	// level below.
	list := leaves
	for level := maxLen - 1; level >= 1; level-- {
		packages := make([]int32, 0, len(list)/2)
		for i := 0; i+1 < len(list); i += 2 {
			a, b := list[i], list[i+1]
			packages = append(packages, int32(len(nodes)))
			nodes = append(nodes, node{
				weight: nodes[a].weight + nodes[b].weight,
				symbol: -1,
				left:   a,
				right:  b,
			})
		}

		merged := make([]int32, 0, len(leaves)+len(packages))
		li, pi := 0, 0
		for li < len(leaves) || pi < len(packages) {
			if pi >= len(packages) || (li < len(leaves) && nodes[leaves[li]].weight <= nodes[packages[pi]].weight) {
				merged = append(merged, leaves[li])
				li++
			} else {
				merged = append(merged, packages[pi])
				pi++
			}
		}
		list = merged
	}

	// Every occurrence of a symbol among the selected items adds one bit
	// to its code.
	var count func(i int32)
	count = func(i int32) {
		n := &nodes[i]
		if n.symbol >= 0 {
			lengths[n.symbol]++
			return
		}
		count(n.left)
		count(n.right)
	}
	for _, i := range list[:2*len(used)-2] {
		count(i)
	}

	return lengths
}

// KraftValid reports whether lengths describe a decodable prefix code whose
// codes are no longer than maxLen.
func KraftValid(lengths []uint8, maxLen int) bool {
	if maxLen < 1 || maxLen > 16 {
		return false
	}
	var sum uint32
	for _, n := range lengths {
		if int(n) > maxLen {
			return false
		}
		if n > 0 {
			sum += 1 << (maxLen - int(n))
		}
	}
	return sum <= 1<<maxLen
}
