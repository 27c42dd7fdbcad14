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
package wire

// All multi-byte integers on the wire are little-endian. Writes into a
// too-small span are a no-op; reads from a too-small span return 0 —
// callers are expected to size-check before calling these, as the frame
// codec does.

func putUint16LE(out []byte, v uint16) {
	if len(out) < 2 {
		return
	}
	out[0] = byte(v)
	out[1] = byte(v >> 8)
}

func putUint32LE(out []byte, v uint32) {
	if len(out) < 4 {
		return
	}
	out[0] = byte(v)
	out[1] = byte(v >> 8)
	out[2] = byte(v >> 16)
	out[3] = byte(v >> 24)
}

func getUint16LE(in []byte) uint16 {
	if len(in) < 2 {
		return 0
	}
	return uint16(in[0]) | uint16(in[1])<<8
}

func getUint32LE(in []byte) uint32 {
	if len(in) < 4 {
		return 0
	}
	return uint32(in[0]) | uint32(in[1])<<8 | uint32(in[2])<<16 | uint32(in[3])<<24
}
