package huffman

import (
	"math/rand"
	"testing"
)

func TestCodeLengthsUnused(t *testing.T) {
	lengths := CodeLengths([]uint32{0, 0, 0}, 6)
	for i, n := range lengths {
		if n != 0 {
			t.Errorf("Symbol %d: expected length 0, got %d", i, n)
		}
	}
}

func TestCodeLengthsSingleSymbol(t *testing.T) {
	lengths := CodeLengths([]uint32{0, 0, 42, 0}, 6)
	expected := []uint8{0, 0, 1, 0}
	for i := range expected {
		if lengths[i] != expected[i] {
			t.Errorf("Symbol %d: expected length %d, got %d", i, expected[i], lengths[i])
		}
	}

	codes := AssignCodes(lengths)
	table := BuildDecodeTable(lengths, codes, 6)
	for bits := range table {
		entry := table[bits]
		if bits&1 == 0 && (entry.Symbol != 2 || entry.Len != 1) {
			t.Fatalf("Slot %06b: expected symbol 2/len 1, got %d/%d", bits, entry.Symbol, entry.Len)
		}
	}
}

func TestCodeLengthsKnown(t *testing.T) {
	tests := []struct {
		freqs    []uint32
		maxLen   int
		expected []uint8
	}{
		{[]uint32{1, 1}, 1, []uint8{1, 1}},
		{[]uint32{1, 1, 2}, 2, []uint8{2, 2, 1}},
		{[]uint32{1, 1, 1, 1}, 2, []uint8{2, 2, 2, 2}},
		// unconstrained Huffman would give {4,4,3,2,1}
		{[]uint32{1, 1, 2, 4, 8}, 3, []uint8{3, 3, 3, 3, 1}},
		{[]uint32{1, 1, 2, 4, 8}, 4, []uint8{4, 4, 3, 2, 1}},
		{[]uint32{5, 0, 5}, 4, []uint8{1, 0, 1}},
	}

	for _, tt := range tests {
		lengths := CodeLengths(tt.freqs, tt.maxLen)
		for i := range tt.expected {
			if lengths[i] != tt.expected[i] {
				t.Errorf("CodeLengths(%v, %d) = %v, expected %v", tt.freqs, tt.maxLen, lengths, tt.expected)
				break
			}
		}
	}
}

func TestCodeLengthsRandomHistograms(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	for trial := 0; trial < 500; trial++ {
		maxLen := 1 + rng.Intn(MaxCodeLengthLimit)
		numSymbols := 1 + rng.Intn(min(1<<maxLen, MaxAlphabetSize))

		freqs := make([]uint32, numSymbols)
		for i := range freqs {
			switch rng.Intn(4) {
			case 0:
				freqs[i] = 0
			case 1:
				freqs[i] = uint32(rng.Intn(3))
			default:
				// heavily skewed
				freqs[i] = uint32(rng.Int63n(1 << uint(rng.Intn(31))))
			}
		}

		lengths := CodeLengths(freqs, maxLen)
		if !KraftValid(lengths, maxLen) {
			t.Fatalf("Trial %d: lengths %v violate Kraft for max %d", trial, lengths, maxLen)
		}

		for i, freq := range freqs {
			if freq > 0 && lengths[i] == 0 {
				t.Fatalf("Trial %d: used symbol %d got length 0", trial, i)
			}
			if freq == 0 && lengths[i] != 0 {
				t.Fatalf("Trial %d: unused symbol %d got length %d", trial, i, lengths[i])
			}
		}

		checkDecodable(t, lengths, maxLen)
	}
}

func TestCodeLengthsOptimal(t *testing.T) {
	// With a generous limit the result must match the unconstrained optimum
	// cost, which for this histogram is known.
	freqs := []uint32{45, 13, 12, 16, 9, 5}
	lengths := CodeLengths(freqs, 8)

	var cost uint32
	for i, f := range freqs {
		cost += f * uint32(lengths[i])
	}
	if cost != 224 {
		t.Errorf("Expected cost 224, got %d (lengths %v)", cost, lengths)
	}
}

func TestAssignCodesCanonical(t *testing.T) {
	lengths := []uint8{2, 3, 3, 3, 4, 4, 4, 5, 5, 5, 6, 6, 6, 6, 6, 6}
	codes := AssignCodes(lengths)

	// canonical (MSB-first) values before reversal
	expected := []uint16{
		0b00, 0b010, 0b011, 0b100, 0b1010, 0b1011, 0b1100,
		0b11010, 0b11011, 0b11100, 0b111010, 0b111011, 0b111100, 0b111101, 0b111110, 0b111111,
	}
	for i := range lengths {
		got := Reverse(codes[i], int(lengths[i]))
		if got != expected[i] {
			n := int(lengths[i])
			t.Errorf("Symbol %d: expected code %0*b, got %0*b", i, n, expected[i], n, got)
		}
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		code     uint16
		n        int
		expected uint16
	}{
		{0b1, 1, 0b1},
		{0b10, 2, 0b01},
		{0b110, 3, 0b011},
		{0b100000, 6, 0b000001},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Reverse(tt.code, tt.n); got != tt.expected {
			t.Errorf("Reverse(%b, %d) = %b, expected %b", tt.code, tt.n, got, tt.expected)
		}
	}
}

func TestKraftValid(t *testing.T) {
	if !KraftValid([]uint8{1, 2, 2}, 6) {
		t.Error("complete code reported invalid")
	}
	if !KraftValid([]uint8{1, 0, 2}, 6) {
		t.Error("incomplete code reported invalid")
	}
	if KraftValid([]uint8{1, 1, 2}, 6) {
		t.Error("oversubscribed code reported valid")
	}
	if KraftValid([]uint8{7, 1}, 6) {
		t.Error("overlong code reported valid")
	}
}

// checkDecodable verifies that every code decodes back to its symbol and length.
func checkDecodable(t *testing.T, lengths []uint8, maxLen int) {
	t.Helper()

	codes := AssignCodes(lengths)
	table := BuildDecodeTable(lengths, codes, maxLen)

	for symbol, n := range lengths {
		if n == 0 {
			continue
		}
		// any filler above the code must not change the result
		for fill := 0; fill < 1<<(maxLen-int(n)); fill++ {
			index := int(codes[symbol]) | fill<<n
			entry := table[index]
			if int(entry.Symbol) != symbol || entry.Len != n {
				t.Fatalf("Slot %d: expected symbol %d/len %d, got %d/%d (lengths %v)",
					index, symbol, n, entry.Symbol, entry.Len, lengths)
			}
		}
	}
}
