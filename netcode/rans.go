package netcode

import "github.com/egonelbre/exp-netcompress/rans"

// flatNibbles gives every nibble 16 of the 256 probability slots.
var flatNibbles = rans.NewUniformModel(AlphabetSize)

// RANSWriter codes every field through a rANS state. Nothing reaches the
// buffer until Flush, which writes the final state followed by the
// renormalization bytes.
//
// BitPosition always reports 0: the position of a field inside a rANS
// stream is not observable while writing.
type RANSWriter struct {
	buf     []byte
	model   *Model
	trained bool
	enc     rans.Encoder
}

var _ Writer = (*RANSWriter)(nil)

// NewRANSWriter creates a rANS writer that codes nibbles with a flat
// distribution.
func NewRANSWriter(buf []byte, model *Model) *RANSWriter {
	return &RANSWriter{buf: buf, model: model}
}

// NewRANSModelWriter creates a rANS writer that codes nibbles with the
// frequencies derived from model's code lengths.
func NewRANSModelWriter(buf []byte, model *Model) *RANSWriter {
	return &RANSWriter{buf: buf, model: model, trained: true}
}

func (s *RANSWriter) nibbles(context int) rans.Model {
	if s.trained {
		return s.model.Frequencies(context)
	}
	checkContext(context)
	return flatNibbles
}

func (s *RANSWriter) WriteRawBits(value uint32, n int) {
	if n < 0 || n > 32 {
		panic("netcode: bit count out of range")
	}
	s.enc.EncodeBits(value, n)
}

func (s *RANSWriter) WriteRawBytes(p []byte) {
	for _, b := range p {
		s.enc.EncodeBits(uint32(b), 8)
	}
}

func (s *RANSWriter) WritePackedNibble(value uint32, context int) {
	checkNibble(value)
	s.enc.Encode(int(value), s.nibbles(context))
}

func (s *RANSWriter) WritePackedUInt(value uint32, context int) {
	b := BucketOf(value)
	s.WritePackedNibble(uint32(b), context)
	s.enc.EncodeBits(value-bucketOffsets[b], int(bucketBits[b]))
}

func (s *RANSWriter) WritePackedIntDelta(value, baseline int32, context int) {
	s.WritePackedUInt(intDelta(value, baseline), context)
}

func (s *RANSWriter) WritePackedUIntDelta(value, baseline uint32, context int) {
	s.WritePackedUInt(uintDelta(value, baseline), context)
}

func (s *RANSWriter) BitPosition() int { return 0 }

// Flush codes every buffered field into the buffer and returns the stream
// length in bytes.
func (s *RANSWriter) Flush() int { return s.enc.Finish(s.buf) }

func (s *RANSWriter) Model() *Model { return s.model }

// RANSReader reads streams produced by RANSWriter. The state header is
// loaded when the reader is created.
type RANSReader struct {
	model   *Model
	trained bool
	dec     *rans.Decoder
}

var _ Reader = (*RANSReader)(nil)

// NewRANSReader creates a reader for NewRANSWriter streams.
func NewRANSReader(buf []byte, model *Model) *RANSReader {
	return &RANSReader{model: model, dec: rans.NewDecoder(buf)}
}

// NewRANSModelReader creates a reader for NewRANSModelWriter streams.
func NewRANSModelReader(buf []byte, model *Model) *RANSReader {
	return &RANSReader{model: model, trained: true, dec: rans.NewDecoder(buf)}
}

func (s *RANSReader) nibbles(context int) rans.Model {
	if s.trained {
		return s.model.Frequencies(context)
	}
	checkContext(context)
	return flatNibbles
}

func (s *RANSReader) ReadRawBits(n int) uint32 {
	if n < 0 || n > 32 {
		panic("netcode: bit count out of range")
	}
	return s.dec.DecodeBits(n)
}

func (s *RANSReader) ReadRawBytes(p []byte) {
	for i := range p {
		p[i] = byte(s.dec.DecodeBits(8))
	}
}

func (s *RANSReader) SkipRawBits(n int) {
	for n > 32 {
		s.dec.DecodeBits(32)
		n -= 32
	}
	s.ReadRawBits(n)
}

func (s *RANSReader) SkipRawBytes(n int) {
	if n < 0 {
		panic("netcode: negative skip")
	}
	for ; n > 0; n-- {
		s.dec.DecodeBits(8)
	}
}

func (s *RANSReader) ReadPackedNibble(context int) uint32 {
	return uint32(s.dec.Decode(s.nibbles(context)))
}

func (s *RANSReader) ReadPackedUInt(context int) uint32 {
	b := s.ReadPackedNibble(context)
	return bucketOffsets[b] + s.dec.DecodeBits(int(bucketBits[b]))
}

func (s *RANSReader) ReadPackedIntDelta(baseline int32, context int) int32 {
	return baseline - int32(UnfoldDelta(s.ReadPackedUInt(context)))
}

func (s *RANSReader) ReadPackedUIntDelta(baseline uint32, context int) uint32 {
	return baseline - UnfoldDelta(s.ReadPackedUInt(context))
}

func (s *RANSReader) BitPosition() int { return 0 }

// Flush returns the number of stream bytes consumed, header included.
func (s *RANSReader) Flush() int { return s.dec.Consumed() }

func (s *RANSReader) Model() *Model { return s.model }
