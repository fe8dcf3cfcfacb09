package rans

import "encoding/binary"

// HeaderSize is the number of bytes holding the final encoder state at the
// start of every stream.
const HeaderSize = 4

// entry is one deferred coding step. A nil model marks nbits raw bits.
type entry struct {
	model Model
	value uint32
	nbits uint8
}

// Encoder compresses symbols using rANS.
//
// Symbols are buffered in the order they will be decoded and coded only
// when Finish is called.
type Encoder struct {
	entries []entry
	output  []byte // bytes emitted during Finish, in reverse stream order
}

// NewEncoder creates a new rANS encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Reset discards buffered symbols so the encoder can be reused.
func (e *Encoder) Reset() {
	e.entries = e.entries[:0]
	e.output = e.output[:0]
}

// Encode buffers a symbol using the given model.
func (e *Encoder) Encode(symbol int, model Model) {
	low, high := model.Freq(symbol)
	if low == high {
		panic("rans: symbol has zero frequency")
	}
	e.entries = append(e.entries, entry{model: model, value: uint32(symbol)})
}

// EncodeBits buffers an n-bit value, n <= 32, with uniform probability.
func (e *Encoder) EncodeBits(value uint32, n int) {
	if n < 0 || n > 32 {
		panic("rans: bit count out of range")
	}
	for n > 0 {
		chunk := min(n, StateRenormBits)
		e.entries = append(e.entries, entry{
			value: value & (1<<chunk - 1),
			nbits: uint8(chunk),
		})
		value >>= chunk
		n -= chunk
	}
}

// Len returns the number of buffered coding steps.
func (e *Encoder) Len() int {
	return len(e.entries)
}

// Finish codes every buffered symbol and writes the stream to dst: the final
// state as HeaderSize little-endian bytes followed by the renormalization
// bytes. It returns the number of bytes written and resets the encoder.
func (e *Encoder) Finish(dst []byte) int {
	state := stateMin
	e.output = e.output[:0]

	for i := len(e.entries) - 1; i >= 0; i-- {
		en := &e.entries[i]
		if en.model == nil {
			// the state must stay below 1<<31 after shifting in nbits
			limit := (stateMin >> en.nbits) << StateRenormBits
			for state >= limit {
				e.output = append(e.output, byte(state))
				state >>= StateRenormBits
			}
			state = state<<en.nbits | en.value
			continue
		}

		low, high := en.model.Freq(int(en.value))
		freq := high - low
		limit := ((stateMin >> ProbBits) << StateRenormBits) * freq
		for state >= limit {
			e.output = append(e.output, byte(state))
			state >>= StateRenormBits
		}
		state = (state/freq)<<ProbBits + state%freq + low
	}

	n := HeaderSize + len(e.output)
	if n > len(dst) {
		panic("rans: destination buffer too small")
	}
	binary.LittleEndian.PutUint32(dst, state)
	for i, b := range e.output {
		dst[n-1-i] = b
	}

	e.Reset()
	return n
}
