package netcode

// HuffmanWriter codes nibbles and bucket indices with the model's canonical
// code for the field's context; bucket offsets follow as raw bits.
type HuffmanWriter struct {
	w     bitWriter
	model *Model
}

var _ Writer = (*HuffmanWriter)(nil)

// NewHuffmanWriter creates a Huffman writer over buf.
func NewHuffmanWriter(buf []byte, model *Model) *HuffmanWriter {
	return &HuffmanWriter{w: bitWriter{buf: buf}, model: model}
}

func (s *HuffmanWriter) WriteRawBits(value uint32, n int) { s.w.writeBits(value, n) }
func (s *HuffmanWriter) WriteRawBytes(p []byte)           { s.w.writeBytes(p) }

func (s *HuffmanWriter) WritePackedNibble(value uint32, context int) {
	checkNibble(value)
	code := s.model.Encode(context, value)
	s.w.writeBits(uint32(code.Bits), int(code.Len))
}

func (s *HuffmanWriter) WritePackedUInt(value uint32, context int) {
	b := BucketOf(value)
	s.WritePackedNibble(uint32(b), context)
	s.w.writeBits(value-bucketOffsets[b], int(bucketBits[b]))
}

func (s *HuffmanWriter) WritePackedIntDelta(value, baseline int32, context int) {
	s.WritePackedUInt(intDelta(value, baseline), context)
}

func (s *HuffmanWriter) WritePackedUIntDelta(value, baseline uint32, context int) {
	s.WritePackedUInt(uintDelta(value, baseline), context)
}

func (s *HuffmanWriter) BitPosition() int { return s.w.bitPosition() }
func (s *HuffmanWriter) Flush() int       { return s.w.flush() }
func (s *HuffmanWriter) Model() *Model    { return s.model }

// HuffmanReader reads streams produced by HuffmanWriter. Each packed symbol
// is decoded with a single table lookup on the next MaxCodeLength bits.
type HuffmanReader struct {
	r     bitReader
	model *Model
}

var _ Reader = (*HuffmanReader)(nil)

// NewHuffmanReader creates a Huffman reader over buf.
func NewHuffmanReader(buf []byte, model *Model) *HuffmanReader {
	return &HuffmanReader{r: bitReader{buf: buf}, model: model}
}

func (s *HuffmanReader) ReadRawBits(n int) uint32 { return s.r.readBits(n) }
func (s *HuffmanReader) ReadRawBytes(p []byte)    { s.r.readBytes(p) }
func (s *HuffmanReader) SkipRawBits(n int)        { s.r.skipBits(n) }
func (s *HuffmanReader) SkipRawBytes(n int)       { s.r.skipBytes(n) }

func (s *HuffmanReader) ReadPackedNibble(context int) uint32 {
	entry := s.model.Decode(context, s.r.peek(MaxCodeLength))
	if entry.Len == 0 {
		panic("netcode: invalid code in stream")
	}
	s.r.consume(uint(entry.Len))
	return uint32(entry.Symbol)
}

func (s *HuffmanReader) ReadPackedUInt(context int) uint32 {
	b := s.ReadPackedNibble(context)
	return bucketOffsets[b] + s.r.readBits(int(bucketBits[b]))
}

func (s *HuffmanReader) ReadPackedIntDelta(baseline int32, context int) int32 {
	return baseline - int32(UnfoldDelta(s.ReadPackedUInt(context)))
}

func (s *HuffmanReader) ReadPackedUIntDelta(baseline uint32, context int) uint32 {
	return baseline - UnfoldDelta(s.ReadPackedUInt(context))
}

func (s *HuffmanReader) BitPosition() int { return s.r.bitPosition() }
func (s *HuffmanReader) Flush() int       { return s.r.flush() }
func (s *HuffmanReader) Model() *Model    { return s.model }
