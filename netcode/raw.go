package netcode

// RawWriter writes every field at a fixed width: nibbles take 4 bits and
// packed integers take 32 bits regardless of context. It is the
// uncompressed fallback and is handy for debugging a wire layout.
type RawWriter struct {
	w     bitWriter
	model *Model
}

var _ Writer = (*RawWriter)(nil)

// NewRawWriter creates a raw writer over buf.
func NewRawWriter(buf []byte, model *Model) *RawWriter {
	return &RawWriter{w: bitWriter{buf: buf}, model: model}
}

func (s *RawWriter) WriteRawBits(value uint32, n int) { s.w.writeBits(value, n) }
func (s *RawWriter) WriteRawBytes(p []byte)           { s.w.writeBytes(p) }

func (s *RawWriter) WritePackedNibble(value uint32, context int) {
	checkContext(context)
	checkNibble(value)
	s.w.writeBits(value, 4)
}

func (s *RawWriter) WritePackedUInt(value uint32, context int) {
	checkContext(context)
	s.w.writeBits(value, 32)
}

func (s *RawWriter) WritePackedIntDelta(value, baseline int32, context int) {
	s.WritePackedUInt(intDelta(value, baseline), context)
}

func (s *RawWriter) WritePackedUIntDelta(value, baseline uint32, context int) {
	s.WritePackedUInt(uintDelta(value, baseline), context)
}

func (s *RawWriter) BitPosition() int { return s.w.bitPosition() }
func (s *RawWriter) Flush() int       { return s.w.flush() }
func (s *RawWriter) Model() *Model    { return s.model }

// RawReader reads streams produced by RawWriter.
type RawReader struct {
	r     bitReader
	model *Model
}

var _ Reader = (*RawReader)(nil)

// NewRawReader creates a raw reader over buf.
func NewRawReader(buf []byte, model *Model) *RawReader {
	return &RawReader{r: bitReader{buf: buf}, model: model}
}

func (s *RawReader) ReadRawBits(n int) uint32 { return s.r.readBits(n) }
func (s *RawReader) ReadRawBytes(p []byte)    { s.r.readBytes(p) }
func (s *RawReader) SkipRawBits(n int)        { s.r.skipBits(n) }
func (s *RawReader) SkipRawBytes(n int)       { s.r.skipBytes(n) }

func (s *RawReader) ReadPackedNibble(context int) uint32 {
	checkContext(context)
	return s.r.readBits(4)
}

func (s *RawReader) ReadPackedUInt(context int) uint32 {
	checkContext(context)
	return s.r.readBits(32)
}

func (s *RawReader) ReadPackedIntDelta(baseline int32, context int) int32 {
	return baseline - int32(UnfoldDelta(s.ReadPackedUInt(context)))
}

func (s *RawReader) ReadPackedUIntDelta(baseline uint32, context int) uint32 {
	return baseline - UnfoldDelta(s.ReadPackedUInt(context))
}

func (s *RawReader) BitPosition() int { return s.r.bitPosition() }
func (s *RawReader) Flush() int       { return s.r.flush() }
func (s *RawReader) Model() *Model    { return s.model }
