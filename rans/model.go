// Package rans implements a byte-renormalizing range asymmetric numeral
// system (rANS) coder with a 32-bit state.
//
// Probabilities are quantized to ProbScale slots. Encoding is deferred: the
// Encoder records symbols in decode order and codes them back to front when
// finished, because rANS decodes in the reverse order of encoding.
package rans

const (
	// ProbBits is the resolution of symbol frequencies.
	ProbBits = 8
	// ProbScale is the total frequency every model must sum to.
	ProbScale = 1 << ProbBits

	// StateMinBits sets the lower bound of the normalized state.
	StateMinBits = 23
	// StateRenormBits is how many bits move in or out of the state at once.
	StateRenormBits = 8

	stateMin uint32 = 1 << StateMinBits
)

// Model defines the interface for probability models used by the coder.
type Model interface {
	// SymbolCount returns the total number of possible symbols in this model.
	SymbolCount() int

	// Freq returns the cumulative frequency range [low, high) for the given symbol.
	// Returns (low, high) where 0 <= low <= high <= ProbScale.
	Freq(symbol int) (low, high uint32)

	// Find returns the symbol whose range contains slot.
	// The slot must be in range [0, ProbScale).
	Find(slot uint32) int
}

// UniformModel implements a model where all symbols have equal probability.
type UniformModel struct {
	numSymbols int
	freq       uint32
}

// NewUniformModel creates a uniform probability model with the given number of symbols.
// numSymbols must divide ProbScale.
func NewUniformModel(numSymbols int) *UniformModel {
	if numSymbols <= 0 || numSymbols > ProbScale || ProbScale%numSymbols != 0 {
		panic("rans: numSymbols must divide ProbScale")
	}
	return &UniformModel{
		numSymbols: numSymbols,
		freq:       uint32(ProbScale / numSymbols),
	}
}

func (m *UniformModel) SymbolCount() int {
	return m.numSymbols
}

func (m *UniformModel) Freq(symbol int) (low, high uint32) {
	if symbol < 0 || symbol >= m.numSymbols {
		panic("rans: symbol out of range")
	}
	low = uint32(symbol) * m.freq
	return low, low + m.freq
}

func (m *UniformModel) Find(slot uint32) int {
	if slot >= ProbScale {
		panic("rans: slot out of range")
	}
	return int(slot / m.freq)
}

// FrequencyTable implements a model with custom symbol frequencies.
type FrequencyTable struct {
	cumFreqs []uint32 // cumFreqs[i] = sum of freqs[0..i-1]
	lookup   [ProbScale]uint8
}

// NewFrequencyTable creates a model from the given symbol frequencies.
// The frequencies must sum to ProbScale. Symbols with zero frequency cannot
// be encoded.
func NewFrequencyTable(frequencies []uint32) *FrequencyTable {
	if len(frequencies) == 0 || len(frequencies) > 256 {
		panic("rans: frequencies must have 1..256 entries")
	}

	ft := &FrequencyTable{
		cumFreqs: make([]uint32, len(frequencies)+1),
	}

	var total uint32
	for i, freq := range frequencies {
		if total+freq > ProbScale {
			panic("rans: frequencies exceed ProbScale")
		}
		for slot := total; slot < total+freq; slot++ {
			ft.lookup[slot] = uint8(i)
		}
		total += freq
		ft.cumFreqs[i+1] = total
	}
	if total != ProbScale {
		panic("rans: frequencies must sum to ProbScale")
	}

	return ft
}

func (ft *FrequencyTable) SymbolCount() int {
	return len(ft.cumFreqs) - 1
}

func (ft *FrequencyTable) Freq(symbol int) (low, high uint32) {
	if symbol < 0 || symbol >= ft.SymbolCount() {
		panic("rans: symbol out of range")
	}
	return ft.cumFreqs[symbol], ft.cumFreqs[symbol+1]
}

func (ft *FrequencyTable) Find(slot uint32) int {
	if slot >= ProbScale {
		panic("rans: slot out of range")
	}
	return int(ft.lookup[slot])
}

// Frequencies returns a copy of the per-symbol frequencies.
func (ft *FrequencyTable) Frequencies() []uint32 {
	freqs := make([]uint32, ft.SymbolCount())
	for i := range freqs {
		freqs[i] = ft.cumFreqs[i+1] - ft.cumFreqs[i]
	}
	return freqs
}
