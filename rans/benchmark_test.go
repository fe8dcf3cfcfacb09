package rans

import (
	"math/rand"
	"testing"
)

func BenchmarkEncode(b *testing.B) {
	model := NewUniformModel(16)
	data := make([]int, 1000)
	rng := rand.New(rand.NewSource(42))
	for i := range data {
		data[i] = rng.Intn(16)
	}

	buf := make([]byte, HeaderSize+len(data))
	enc := NewEncoder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, symbol := range data {
			enc.Encode(symbol, model)
		}
		enc.Finish(buf)
	}
}

func BenchmarkDecode(b *testing.B) {
	model := NewUniformModel(16)
	data := make([]int, 1000)
	rng := rand.New(rand.NewSource(42))
	for i := range data {
		data[i] = rng.Intn(16)
	}

	buf := make([]byte, HeaderSize+len(data))
	enc := NewEncoder()
	for _, symbol := range data {
		enc.Encode(symbol, model)
	}
	n := enc.Finish(buf)
	compressed := buf[:n]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewDecoder(compressed)
		for j := 0; j < len(data); j++ {
			dec.Decode(model)
		}
	}
}
