// Package vector holds embedding vector math and its byte encoding.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cosine returns dot(a,b) / (|a|*|b|) over the first min(len(a), len(b)) components.
// mismatch is true when the lengths differ; callers treat that as a data-integrity problem.
// A zero-norm operand yields 0.
func Cosine(a, b []float32) (score float64, mismatch bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	mismatch = len(a) != len(b)

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, mismatch
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// float rounding can push |s| a hair past 1
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return s, mismatch
}

// Encode serializes v as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses little-endian float32 bytes produced by Encode.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
