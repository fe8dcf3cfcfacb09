package rans

import "encoding/binary"

// Decoder decompresses symbols produced by an Encoder.
type Decoder struct {
	state uint32
	data  []byte
	pos   int
}

// NewDecoder creates a decoder reading the stream at the start of data.
func NewDecoder(data []byte) *Decoder {
	if len(data) < HeaderSize {
		panic("rans: stream shorter than header")
	}
	return &Decoder{
		state: binary.LittleEndian.Uint32(data),
		data:  data,
		pos:   HeaderSize,
	}
}

// Decode reads and returns the next symbol using the given model.
func (d *Decoder) Decode(model Model) int {
	slot := d.state & (ProbScale - 1)
	symbol := model.Find(slot)
	low, high := model.Freq(symbol)

	d.state = (high-low)*(d.state>>ProbBits) + slot - low
	d.renormalize()
	return symbol
}

// DecodeBits reads an n-bit value written by EncodeBits.
func (d *Decoder) DecodeBits(n int) uint32 {
	if n < 0 || n > 32 {
		panic("rans: bit count out of range")
	}
	var value uint32
	for shift := 0; shift < n; shift += StateRenormBits {
		chunk := min(n-shift, StateRenormBits)
		value |= (d.state & (1<<chunk - 1)) << shift
		d.state >>= chunk
		d.renormalize()
	}
	return value
}

// Consumed returns the number of stream bytes read so far, header included.
func (d *Decoder) Consumed() int {
	return d.pos
}

func (d *Decoder) renormalize() {
	for d.state < stateMin {
		if d.pos >= len(d.data) {
			panic("rans: read past end of stream")
		}
		d.state = d.state<<StateRenormBits | uint32(d.data[d.pos])
		d.pos++
	}
}
