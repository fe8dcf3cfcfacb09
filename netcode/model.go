package netcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/egonelbre/exp-netcompress/huffman"
	"github.com/egonelbre/exp-netcompress/rans"
)

const (
	// AlphabetSize is the number of symbols in every context.
	AlphabetSize = 16
	// MaxCodeLength is the longest Huffman code a model may contain.
	MaxCodeLength = 6
	// MaxContexts bounds the context identifiers a model covers.
	MaxContexts = 256

	decodeTableSize = 1 << MaxCodeLength
)

// ErrMalformedModel is wrapped by every model blob parsing error.
var ErrMalformedModel = errors.New("malformed compression model")

var defaultLengths = [AlphabetSize]uint8{2, 3, 3, 3, 4, 4, 4, 5, 5, 5, 6, 6, 6, 6, 6, 6}

// ContextLengths replaces the default code lengths for one context.
type ContextLengths struct {
	Context uint16
	Lengths [AlphabetSize]uint8
}

// ModelSpec is the decoded form of a model blob.
type ModelSpec struct {
	Default   [AlphabetSize]uint8
	Overrides []ContextLengths
}

// DefaultModelBlob returns the built-in model blob.
func DefaultModelBlob() []byte {
	blob, err := ModelSpec{Default: defaultLengths}.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return blob
}

// ParseModelSpec decodes a model blob:
//
//	alphabetSize:1 lengths:alphabetSize
//	overrideCount:2 (context:2 alphabetSize:1 lengths:alphabetSize)*
//
// Multi-byte integers are little-endian.
func ParseModelSpec(blob []byte) (ModelSpec, error) {
	var spec ModelSpec
	r := blobReader{data: blob}

	if err := r.lengths(&spec.Default); err != nil {
		return ModelSpec{}, fmt.Errorf("default lengths: %w", err)
	}

	count, err := r.uint16()
	if err != nil {
		return ModelSpec{}, fmt.Errorf("override count: %w", err)
	}

	spec.Overrides = make([]ContextLengths, count)
	for i := range spec.Overrides {
		override := &spec.Overrides[i]
		if override.Context, err = r.uint16(); err != nil {
			return ModelSpec{}, fmt.Errorf("override %d context: %w", i, err)
		}
		if err := r.lengths(&override.Lengths); err != nil {
			return ModelSpec{}, fmt.Errorf("override %d (context %d): %w", i, override.Context, err)
		}
	}

	if len(r.data) != 0 {
		return ModelSpec{}, fmt.Errorf("%d trailing bytes: %w", len(r.data), ErrMalformedModel)
	}
	return spec, spec.Validate()
}

// Validate checks that every row is a decodable code within MaxCodeLength
// and that every override names a distinct context below MaxContexts.
func (spec ModelSpec) Validate() error {
	if !huffman.KraftValid(spec.Default[:], MaxCodeLength) {
		return fmt.Errorf("default lengths %v: %w", spec.Default, ErrMalformedModel)
	}
	var seen [MaxContexts]bool
	for _, override := range spec.Overrides {
		if int(override.Context) >= MaxContexts {
			return fmt.Errorf("context %d out of range: %w", override.Context, ErrMalformedModel)
		}
		if seen[override.Context] {
			return fmt.Errorf("context %d overridden twice: %w", override.Context, ErrMalformedModel)
		}
		seen[override.Context] = true
		if !huffman.KraftValid(override.Lengths[:], MaxCodeLength) {
			return fmt.Errorf("context %d lengths %v: %w", override.Context, override.Lengths, ErrMalformedModel)
		}
	}
	return nil
}

// MarshalBinary encodes spec as a model blob.
func (spec ModelSpec) MarshalBinary() ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(spec.Overrides) > 0xFFFF {
		return nil, fmt.Errorf("%d overrides: %w", len(spec.Overrides), ErrMalformedModel)
	}

	blob := make([]byte, 0, 1+AlphabetSize+2+len(spec.Overrides)*(3+AlphabetSize))
	blob = append(blob, AlphabetSize)
	blob = append(blob, spec.Default[:]...)
	blob = binary.LittleEndian.AppendUint16(blob, uint16(len(spec.Overrides)))
	for _, override := range spec.Overrides {
		blob = binary.LittleEndian.AppendUint16(blob, override.Context)
		blob = append(blob, AlphabetSize)
		blob = append(blob, override.Lengths[:]...)
	}
	return blob, nil
}

type blobReader struct {
	data []byte
}

func (r *blobReader) uint16() (uint16, error) {
	if len(r.data) < 2 {
		return 0, fmt.Errorf("truncated: %w", ErrMalformedModel)
	}
	v := binary.LittleEndian.Uint16(r.data)
	r.data = r.data[2:]
	return v, nil
}

func (r *blobReader) lengths(dst *[AlphabetSize]uint8) error {
	if len(r.data) < 1 {
		return fmt.Errorf("truncated: %w", ErrMalformedModel)
	}
	if size := r.data[0]; size != AlphabetSize {
		return fmt.Errorf("alphabet size %d, expected %d: %w", size, AlphabetSize, ErrMalformedModel)
	}
	if len(r.data) < 1+AlphabetSize {
		return fmt.Errorf("truncated: %w", ErrMalformedModel)
	}
	copy(dst[:], r.data[1:1+AlphabetSize])
	r.data = r.data[1+AlphabetSize:]
	return nil
}

// contextTables holds everything derived from one row of code lengths.
type contextTables struct {
	lengths [AlphabetSize]uint8
	encode  [AlphabetSize]huffman.Code
	decode  [decodeTableSize]huffman.Entry
	freqs   *rans.FrequencyTable
}

func newContextTables(lengths [AlphabetSize]uint8) *contextTables {
	tables := &contextTables{lengths: lengths}

	codes := huffman.AssignCodes(lengths[:])
	for symbol, code := range codes {
		tables.encode[symbol] = huffman.Code{Bits: code, Len: lengths[symbol]}
	}
	copy(tables.decode[:], huffman.BuildDecodeTable(lengths[:], codes, MaxCodeLength))
	tables.freqs = rans.NewFrequencyTable(frequenciesFromLengths(lengths))

	return tables
}

// frequenciesFromLengths converts code lengths to rANS frequencies: a code
// of n bits gets 1<<(ProbBits-n) slots. Slots left over by an incomplete
// code go to the shortest code.
func frequenciesFromLengths(lengths [AlphabetSize]uint8) []uint32 {
	freqs := make([]uint32, AlphabetSize)
	var total uint32
	best := -1
	for symbol, n := range lengths {
		if n == 0 {
			continue
		}
		freqs[symbol] = 1 << (rans.ProbBits - int(n))
		total += freqs[symbol]
		if best < 0 || n < lengths[best] {
			best = symbol
		}
	}
	if best < 0 {
		// nothing is encodable in this context
		freqs[0] = rans.ProbScale
		return freqs
	}
	freqs[best] += rans.ProbScale - total
	return freqs
}

// Model holds per-context Huffman tables built from a model blob.
//
// A Model is immutable once built and may be shared by any number of
// streams.
type Model struct {
	spec        ModelSpec
	contexts    [MaxContexts]*contextTables
	fingerprint uint64
}

// NewModel builds the encode and decode tables for every context.
func NewModel(spec ModelSpec) (*Model, error) {
	blob, err := spec.MarshalBinary()
	if err != nil {
		return nil, err
	}

	m := &Model{
		fingerprint: xxhash.Sum64(blob),
	}
	m.spec.Default = spec.Default
	m.spec.Overrides = append([]ContextLengths(nil), spec.Overrides...)

	shared := newContextTables(spec.Default)
	for ctx := range m.contexts {
		m.contexts[ctx] = shared
	}
	for _, override := range spec.Overrides {
		m.contexts[override.Context] = newContextTables(override.Lengths)
	}
	return m, nil
}

// ParseModel parses a model blob and builds its tables.
func ParseModel(blob []byte) (*Model, error) {
	spec, err := ParseModelSpec(blob)
	if err != nil {
		return nil, err
	}
	return NewModel(spec)
}

// MustParseModel is like ParseModel but panics on a malformed blob.
func MustParseModel(blob []byte) *Model {
	m, err := ParseModel(blob)
	if err != nil {
		panic("netcode: " + err.Error())
	}
	return m
}

// DefaultModel returns the model built from DefaultModelBlob.
var DefaultModel = sync.OnceValue(func() *Model {
	return MustParseModel(DefaultModelBlob())
})

func (m *Model) tables(ctx int) *contextTables {
	if ctx < 0 || ctx >= MaxContexts {
		panic("netcode: context out of range")
	}
	return m.contexts[ctx]
}

// Spec returns a copy of the specification the model was built from.
func (m *Model) Spec() ModelSpec {
	spec := m.spec
	spec.Overrides = append([]ContextLengths(nil), m.spec.Overrides...)
	return spec
}

// Fingerprint identifies the model by a hash of its canonical blob.
// Encoder and decoder must agree on it.
func (m *Model) Fingerprint() uint64 { return m.fingerprint }

// Lengths returns the code lengths used for ctx.
func (m *Model) Lengths(ctx int) [AlphabetSize]uint8 { return m.tables(ctx).lengths }

// Encode returns the code for symbol in ctx.
func (m *Model) Encode(ctx int, symbol uint32) huffman.Code {
	if symbol >= AlphabetSize {
		panic("netcode: symbol out of range")
	}
	code := m.tables(ctx).encode[symbol]
	if code.Len == 0 {
		panic("netcode: symbol has no code in context")
	}
	return code
}

// Decode returns the decode table entry for the next MaxCodeLength bits.
func (m *Model) Decode(ctx int, bits uint32) huffman.Entry {
	return m.tables(ctx).decode[bits&(decodeTableSize-1)]
}

// Frequencies returns the rANS frequency table derived from ctx's lengths.
func (m *Model) Frequencies(ctx int) *rans.FrequencyTable { return m.tables(ctx).freqs }

// CostBits returns how many bits WritePackedUInt spends on value in ctx.
func (m *Model) CostBits(ctx int, value uint32) int {
	b := BucketOf(value)
	return int(m.tables(ctx).lengths[b]) + int(bucketBits[b])
}
