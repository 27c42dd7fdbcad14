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

// Package pipeline implements the transmit block assembler and the
// receive block table: the stateful reassembly and closure-policy layer
// that sits above the wire codec and FEC core.
package pipeline

// blockPolicy captures the per-block shape and timing knobs a BlockState/
// BlockTracker pair needs to make closure decisions.
type blockPolicy struct {
	N         uint16
	K         uint16
	ReorderMs uint32
	FPS       uint32
}

// spanMs is the nominal wall-clock duration of one block: ceil(1000*N/fps).
func (p blockPolicy) spanMs() uint32 {
	if p.FPS == 0 {
		return 0
	}
	num := uint64(1000)*uint64(p.N) + uint64(p.FPS) - 1
	return uint32(num / uint64(p.FPS))
}

// minDeadlineMs is the low watermark below which a block always closes,
// regardless of reorder_ms: min(60, 2*span_ms).
func (p blockPolicy) minDeadlineMs() uint32 {
	twiceSpan := 2 * p.spanMs()
	if twiceSpan < 60 {
		return twiceSpan
	}
	return 60
}
