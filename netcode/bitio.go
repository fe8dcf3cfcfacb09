package netcode

// bitWriter packs bits least significant first into a fixed buffer.
// Completed bytes are stored as soon as they are full.
type bitWriter struct {
	buf   []byte
	pos   int    // next byte to store
	bits  uint64 // pending bits, low bit first
	nbits uint   // number of pending bits, always < 8 between calls
}

func (w *bitWriter) writeBits(value uint32, n int) {
	if n < 0 || n > 32 {
		panic("netcode: bit count out of range")
	}
	w.bits |= (uint64(value) & (1<<uint(n) - 1)) << w.nbits
	w.nbits += uint(n)
	for w.nbits >= 8 {
		w.storeByte(byte(w.bits))
		w.bits >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) storeByte(b byte) {
	if w.pos >= len(w.buf) {
		panic("netcode: write past end of buffer")
	}
	w.buf[w.pos] = b
	w.pos++
}

// align pads with zero bits up to the next byte boundary.
func (w *bitWriter) align() {
	if w.nbits > 0 {
		w.storeByte(byte(w.bits))
		w.bits = 0
		w.nbits = 0
	}
}

func (w *bitWriter) writeBytes(p []byte) {
	w.align()
	if len(p) > len(w.buf)-w.pos {
		panic("netcode: write past end of buffer")
	}
	w.pos += copy(w.buf[w.pos:], p)
}

func (w *bitWriter) bitPosition() int {
	return w.pos*8 + int(w.nbits)
}

func (w *bitWriter) flush() int {
	w.align()
	return w.pos
}

// bitReader reads bits least significant first through a 64-bit lookahead.
type bitReader struct {
	buf   []byte
	pos   int    // next byte to load
	bits  uint64 // loaded bits not yet consumed
	nbits uint
}

// fill loads whole bytes while there is room in the lookahead.
func (r *bitReader) fill() {
	for r.nbits <= 56 && r.pos < len(r.buf) {
		r.bits |= uint64(r.buf[r.pos]) << r.nbits
		r.pos++
		r.nbits += 8
	}
}

// peek returns the next n bits without consuming them. Bits past the end
// of the buffer read as zero.
func (r *bitReader) peek(n uint) uint32 {
	if r.nbits < n {
		r.fill()
	}
	return uint32(r.bits & (1<<n - 1))
}

func (r *bitReader) consume(n uint) {
	if n > r.nbits {
		panic("netcode: read past end of buffer")
	}
	r.bits >>= n
	r.nbits -= n
}

func (r *bitReader) readBits(n int) uint32 {
	if n < 0 || n > 32 {
		panic("netcode: bit count out of range")
	}
	v := r.peek(uint(n))
	r.consume(uint(n))
	return v
}

// align drops bits up to the next byte boundary and returns the lookahead
// to the buffer so pos is the next unread byte.
func (r *bitReader) align() {
	r.consume(r.nbits % 8)
	r.pos -= int(r.nbits / 8)
	r.bits = 0
	r.nbits = 0
}

func (r *bitReader) readBytes(p []byte) {
	r.align()
	if len(p) > len(r.buf)-r.pos {
		panic("netcode: read past end of buffer")
	}
	r.pos += copy(p, r.buf[r.pos:])
}

func (r *bitReader) skipBits(n int) {
	for n > 32 {
		r.readBits(32)
		n -= 32
	}
	r.readBits(n)
}

func (r *bitReader) skipBytes(n int) {
	r.align()
	if n < 0 || n > len(r.buf)-r.pos {
		panic("netcode: skip past end of buffer")
	}
	r.pos += n
}

func (r *bitReader) bitPosition() int {
	return r.pos*8 - int(r.nbits)
}

func (r *bitReader) flush() int {
	r.align()
	return r.pos
}
