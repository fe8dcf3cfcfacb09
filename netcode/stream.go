package netcode

import "fmt"

// Format selects a stream backend. Writer and reader must use the same
// format and model.
type Format uint8

const (
	// FormatRaw writes every field at a fixed width and ignores the model.
	FormatRaw Format = iota
	// FormatHuffman entropy codes nibbles and bucket indices with the
	// model's per-context canonical codes.
	FormatHuffman
	// FormatRANS codes through a rANS state with a flat nibble distribution.
	FormatRANS
	// FormatRANSModel codes through a rANS state with frequencies derived
	// from the model's per-context code lengths.
	FormatRANSModel
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatHuffman:
		return "huffman"
	case FormatRANS:
		return "rans"
	case FormatRANSModel:
		return "rans-model"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	for f := FormatRaw; f <= FormatRANSModel; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown stream format %q", name)
}

// Writer encodes fields into a byte buffer.
type Writer interface {
	// WriteRawBits writes the low n bits of value, n <= 32.
	WriteRawBits(value uint32, n int)
	// WriteRawBytes writes p starting at a byte boundary.
	WriteRawBytes(p []byte)

	// WritePackedNibble writes an entropy coded value below 16.
	WritePackedNibble(value uint32, context int)
	// WritePackedUInt writes the bucket of value followed by its offset
	// within the bucket.
	WritePackedUInt(value uint32, context int)
	// WritePackedIntDelta writes the zig-zag folded difference to baseline.
	WritePackedIntDelta(value, baseline int32, context int)
	// WritePackedUIntDelta is the unsigned analog of WritePackedIntDelta.
	WritePackedUIntDelta(value, baseline uint32, context int)

	// BitPosition returns the number of bits written so far.
	BitPosition() int
	// Flush completes the stream and returns the number of bytes written.
	Flush() int

	Model() *Model
}

// Reader decodes fields written by the Writer of the same format.
type Reader interface {
	ReadRawBits(n int) uint32
	// ReadRawBytes fills p starting at a byte boundary.
	ReadRawBytes(p []byte)
	// SkipRawBits discards n bits. rANS streams code raw bits through the
	// coder state, so there n must cover whole fields written by
	// WriteRawBits, taken 32 bits at a time.
	SkipRawBits(n int)
	SkipRawBytes(n int)

	ReadPackedNibble(context int) uint32
	ReadPackedUInt(context int) uint32
	ReadPackedIntDelta(baseline int32, context int) int32
	ReadPackedUIntDelta(baseline uint32, context int) uint32

	// BitPosition returns the number of bits consumed so far.
	BitPosition() int
	// Flush aligns to a byte boundary and returns the number of bytes consumed.
	Flush() int

	Model() *Model
}

// NewWriter returns a writer encoding into buf. A nil model selects
// DefaultModel.
func NewWriter(format Format, buf []byte, model *Model) Writer {
	if model == nil {
		model = DefaultModel()
	}
	switch format {
	case FormatRaw:
		return NewRawWriter(buf, model)
	case FormatHuffman:
		return NewHuffmanWriter(buf, model)
	case FormatRANS:
		return NewRANSWriter(buf, model)
	case FormatRANSModel:
		return NewRANSModelWriter(buf, model)
	default:
		panic("netcode: unknown format " + format.String())
	}
}

// NewReader returns a reader decoding buf. A nil model selects DefaultModel.
func NewReader(format Format, buf []byte, model *Model) Reader {
	if model == nil {
		model = DefaultModel()
	}
	switch format {
	case FormatRaw:
		return NewRawReader(buf, model)
	case FormatHuffman:
		return NewHuffmanReader(buf, model)
	case FormatRANS:
		return NewRANSReader(buf, model)
	case FormatRANSModel:
		return NewRANSModelReader(buf, model)
	default:
		panic("netcode: unknown format " + format.String())
	}
}

func checkContext(context int) {
	if context < 0 || context >= MaxContexts {
		panic("netcode: context out of range")
	}
}

func checkNibble(value uint32) {
	if value >= AlphabetSize {
		panic("netcode: nibble out of range")
	}
}
