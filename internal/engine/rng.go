package engine

import (
	"math"
	"strconv"
	"unicode/utf16"
)

// RollingHash folds the UTF-16 code units of s into a signed 32-bit integer
// using h = h*31 + c with two's-complement wraparound.
func RollingHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// SeededRandom maps a seed to a fraction in [0, 1) via frac(sin(hash) * 10000).
func SeededRandom(seed string) float64 {
	x := math.Sin(float64(RollingHash(seed))) * 10000
	return x - math.Floor(x)
}

// Stream yields reproducible fractions for one seed. Draw 0 is SeededRandom(seed)
// itself; draw i > 0 re-hashes the seed with the counter appended.
type Stream struct {
	seed string
	next int
}

// NewStream creates a stream positioned at draw 0.
func NewStream(seed string) *Stream {
	return &Stream{seed: seed}
}

// Next returns the next fraction and advances the counter.
func (s *Stream) Next() float64 {
	f := At(s.seed, s.next)
	s.next++
	return f
}

// Drawn reports how many fractions have been consumed.
func (s *Stream) Drawn() int {
	return s.next
}

// At returns draw i of the seed's stream without allocating a Stream.
func At(seed string, i int) float64 {
	if i == 0 {
		return SeededRandom(seed)
	}
	return SeededRandom(seed + ":" + strconv.Itoa(i))
}

// Fractions returns the first count draws of the seed's stream.
func Fractions(seed string, count int) []float64 {
	floats := make([]float64, count)
	for i := range floats {
		floats[i] = At(seed, i)
	}
	return floats
}
