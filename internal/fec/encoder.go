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
package fec

import "github.com/xtaci/ltfec/internal/wire"

// EncoderConfig selects the scheme a block's parity rows use.
type EncoderConfig struct {
	N int
	K int
}

// Encoder is a thin facade that dispatches block parity computation to
// the XOR or GF(256) core, chosen from K. There is no runtime
// polymorphism beyond this switch — K in [0..4] fully determines the
// scheme.
type Encoder struct {
	cfg EncoderConfig
}

// NewEncoder builds a facade for the given block shape.
func NewEncoder(cfg EncoderConfig) Encoder {
	return Encoder{cfg: cfg}
}

// SchemeID reports the fec_scheme_id this encoder will stamp on parity
// frames: K=1 -> XOR_K1, K in [2..4] -> GF256_K{K}.
func (e Encoder) SchemeID() wire.FecSchemeID {
	switch e.cfg.K {
	case 1:
		return wire.SchemeXorK1
	case 2:
		return wire.SchemeGF256K2
	case 3:
		return wire.SchemeGF256K3
	case 4:
		return wire.SchemeGF256K4
	default:
		return wire.SchemeXorK1
	}
}

// Encode fills parityOut (len == K) from dataFrames (len == N), all
// frames the same length.
func (e Encoder) Encode(dataFrames [][]byte, parityOut [][]byte) {
	switch e.cfg.K {
	case 1:
		XorEncode(dataFrames, parityOut[0])
	case 2, 3, 4:
		GF256Encode(dataFrames, parityOut)
	}
}
