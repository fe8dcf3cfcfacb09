package rans

import (
	"math/rand"
	"testing"
)

func TestUniformModel(t *testing.T) {
	model := NewUniformModel(16)

	if model.SymbolCount() != 16 {
		t.Errorf("Expected 16 symbols, got %d", model.SymbolCount())
	}

	for i := 0; i < 16; i++ {
		low, high := model.Freq(i)
		if low != uint32(i*16) || high != uint32(i*16+16) {
			t.Errorf("Symbol %d: expected [%d, %d), got [%d, %d)", i, i*16, i*16+16, low, high)
		}

		for slot := low; slot < high; slot++ {
			if found := model.Find(slot); found != i {
				t.Errorf("Find(%d) = %d, expected %d", slot, found, i)
			}
		}
	}
}

func TestFrequencyTable(t *testing.T) {
	freqs := []uint32{16, 32, 0, 208}
	model := NewFrequencyTable(freqs)

	if model.SymbolCount() != 4 {
		t.Errorf("Expected 4 symbols, got %d", model.SymbolCount())
	}

	expected := [][2]uint32{
		{0, 16},
		{16, 48},
		{48, 48},
		{48, 256},
	}

	for i := 0; i < 4; i++ {
		low, high := model.Freq(i)
		if low != expected[i][0] || high != expected[i][1] {
			t.Errorf("Symbol %d: expected [%d, %d), got [%d, %d)",
				i, expected[i][0], expected[i][1], low, high)
		}
	}

	tests := []struct {
		slot     uint32
		expected int
	}{
		{0, 0},
		{15, 0},
		{16, 1},
		{47, 1},
		{48, 3},
		{255, 3},
	}

	for _, tt := range tests {
		symbol := model.Find(tt.slot)
		if symbol != tt.expected {
			t.Errorf("Find(%d) = %d, expected %d", tt.slot, symbol, tt.expected)
		}
	}

	got := model.Frequencies()
	for i := range freqs {
		if got[i] != freqs[i] {
			t.Errorf("Frequencies()[%d] = %d, expected %d", i, got[i], freqs[i])
		}
	}
}

func TestFrequencyTableMustSumToScale(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for frequencies not summing to ProbScale")
		}
	}()
	NewFrequencyTable([]uint32{1, 2, 3})
}

func TestRoundtripUniform(t *testing.T) {
	model := NewUniformModel(16)
	data := []int{0, 1, 2, 15, 8, 4, 12, 3, 7, 0, 0, 15}

	buf := make([]byte, 64)
	enc := NewEncoder()
	for _, symbol := range data {
		enc.Encode(symbol, model)
	}
	n := enc.Finish(buf)

	dec := NewDecoder(buf[:n])
	for i, expected := range data {
		if symbol := dec.Decode(model); symbol != expected {
			t.Errorf("Position %d: expected %d, got %d", i, expected, symbol)
		}
	}
	if dec.Consumed() != n {
		t.Errorf("Decoder consumed %d bytes, encoder wrote %d", dec.Consumed(), n)
	}
}

func TestRoundtripRandomData(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	for trial := 0; trial < 100; trial++ {
		// Generate random model
		numSymbols := 2 + rng.Intn(30)
		freqs := make([]uint32, numSymbols)
		remaining := uint32(ProbScale - numSymbols)
		for i := range freqs {
			freqs[i] = 1
		}
		for remaining > 0 {
			freqs[rng.Intn(numSymbols)]++
			remaining--
		}
		model := NewFrequencyTable(freqs)

		// Generate random data mixing symbols and raw bits
		type item struct {
			symbol int
			bits   uint32
			nbits  int
		}
		data := make([]item, 10+rng.Intn(200))
		for i := range data {
			if rng.Intn(3) == 0 {
				nbits := rng.Intn(33)
				data[i] = item{nbits: nbits, bits: uint32(rng.Int63()) & uint32(uint64(1)<<nbits-1)}
			} else {
				data[i] = item{symbol: rng.Intn(numSymbols), nbits: -1}
			}
		}

		enc := NewEncoder()
		for _, it := range data {
			if it.nbits >= 0 {
				enc.EncodeBits(it.bits, it.nbits)
			} else {
				enc.Encode(it.symbol, model)
			}
		}
		buf := make([]byte, HeaderSize+len(data)*5)
		n := enc.Finish(buf)

		dec := NewDecoder(buf[:n])
		for i, it := range data {
			if it.nbits >= 0 {
				if got := dec.DecodeBits(it.nbits); got != it.bits {
					t.Fatalf("Trial %d, position %d: expected bits %x, got %x", trial, i, it.bits, got)
				}
			} else if got := dec.Decode(model); got != it.symbol {
				t.Fatalf("Trial %d, position %d: expected %d, got %d", trial, i, it.symbol, got)
			}
		}
		if dec.Consumed() != n {
			t.Fatalf("Trial %d: decoder consumed %d bytes, encoder wrote %d", trial, dec.Consumed(), n)
		}
	}
}

func TestEmptyData(t *testing.T) {
	buf := make([]byte, HeaderSize)
	enc := NewEncoder()
	n := enc.Finish(buf)

	// Only the initial state is written.
	if n != HeaderSize {
		t.Errorf("Expected %d bytes for empty data, got %d", HeaderSize, n)
	}
	if dec := NewDecoder(buf[:n]); dec.Consumed() != HeaderSize {
		t.Errorf("Expected decoder to consume only the header, got %d", dec.Consumed())
	}
}

func TestEncoderReuse(t *testing.T) {
	model := NewUniformModel(16)
	enc := NewEncoder()

	first := make([]byte, 32)
	enc.Encode(3, model)
	n1 := enc.Finish(first)

	if enc.Len() != 0 {
		t.Fatalf("Expected Finish to reset the encoder, %d entries remain", enc.Len())
	}

	second := make([]byte, 32)
	enc.Encode(3, model)
	n2 := enc.Finish(second)

	if n1 != n2 || string(first[:n1]) != string(second[:n2]) {
		t.Errorf("Reused encoder produced %x, expected %x", second[:n2], first[:n1])
	}
}

func TestSkewedModelCompresses(t *testing.T) {
	model := NewFrequencyTable([]uint32{240, 8, 8})
	enc := NewEncoder()
	for i := 0; i < 1000; i++ {
		enc.Encode(0, model)
	}
	buf := make([]byte, 1024)
	n := enc.Finish(buf)

	// -log2(240/256) is roughly 0.093 bits per symbol.
	if n > HeaderSize+16 {
		t.Errorf("Expected at most %d bytes, got %d", HeaderSize+16, n)
	}

	dec := NewDecoder(buf[:n])
	for i := 0; i < 1000; i++ {
		if got := dec.Decode(model); got != 0 {
			t.Fatalf("Position %d: expected 0, got %d", i, got)
		}
	}
}
