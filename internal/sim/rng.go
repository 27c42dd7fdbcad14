// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package sim provides deterministic channel models used only by tests:
// a seeded PRNG, Bernoulli and Gilbert-Elliott loss models, and uniform
// jitter. None of it is reachable from production code paths.
package sim

// XorShift32 is a small deterministic PRNG so loss/jitter simulations are
// reproducible across runs and platforms.
type XorShift32 struct {
	state uint32
}

// NewXorShift32 seeds the generator. A zero seed is replaced with a fixed
// non-zero constant since xorshift cannot recover from an all-zero state.
func NewXorShift32(seed uint32) *XorShift32 {
	if seed == 0 {
		seed = 0xA3C59AC3
	}
	return &XorShift32{state: seed}
}

// NextU32 advances the generator and returns the next 32-bit value.
func (r *XorShift32) NextU32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// NextUnit returns a uniform float64 in [0,1) using the top 24 bits.
func (r *XorShift32) NextUnit() float64 {
	return float64(r.NextU32()>>8) * (1.0 / 16777216.0)
}
