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

// Package fec implements the two parity schemes this codec supports: XOR
// for K=1 and a GF(256) Vandermonde construction for K in [2..4].
package fec

import "github.com/templexxx/xorsimd"

// XorEncode computes the K=1 parity row over N equal-length data frames.
// A nil entry in dataFrames contributes zero, per SPEC_FULL.md. out must be
// exactly one frame long; its contents are fully overwritten.
func XorEncode(dataFrames [][]byte, out []byte) {
	present := presentFrames(dataFrames)
	if len(present) == 0 {
		for i := range out {
			out[i] = 0
		}
		return
	}
	xorsimd.Encode(out, present)
}

// XorRecoverOne recovers the single missing data frame from parity and the
// present frames. Returns the recovered index and true on success; returns
// (-1, false) if zero or more than one data frames are missing.
func XorRecoverOne(dataFrames [][]byte, parity []byte, out []byte) (int, bool) {
	missing := -1
	for i, f := range dataFrames {
		if f == nil {
			if missing != -1 {
				return -1, false
			}
			missing = i
		}
	}
	if missing == -1 {
		return -1, false
	}

	src := make([][]byte, 0, len(dataFrames)+1)
	src = append(src, parity)
	src = append(src, presentFrames(dataFrames)...)
	xorsimd.Encode(out, src)
	return missing, true
}

func presentFrames(frames [][]byte) [][]byte {
	present := make([][]byte, 0, len(frames))
	for _, f := range frames {
		if f != nil {
			present = append(present, f)
		}
	}
	return present
}
