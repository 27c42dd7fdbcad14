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
package pipeline

import (
	"github.com/xtaci/ltfec/internal/fec"
	"github.com/xtaci/ltfec/internal/wire"
)

// TxConfig is the validated shape of every block a TxBlockAssembler will
// produce: N data frames, K parity frames, and a payload size ceiling.
type TxConfig struct {
	N             int
	K             int
	MaxPayloadLen int
}

// TxBlockAssembler turns N equal-length payloads into N+K on-wire frames
// sharing one generation id. It holds only next_gen_id as state; it is
// not safe for concurrent use by multiple goroutines.
type TxBlockAssembler struct {
	cfg       TxConfig
	enc       fec.Encoder
	nextGenID uint32
}

// NewTxBlockAssembler validates cfg and seeds the generation counter.
// genSeed is the id of the first block produced; callers without a
// specific replay requirement can derive one from a monotonic clock.
func NewTxBlockAssembler(cfg TxConfig, genSeed uint32) (*TxBlockAssembler, bool) {
	if cfg.N < 1 || cfg.N > 255 {
		return nil, false
	}
	if cfg.K < 0 || cfg.K > 4 {
		return nil, false
	}
	return &TxBlockAssembler{
		cfg:       cfg,
		enc:       fec.NewEncoder(fec.EncoderConfig{N: cfg.N, K: cfg.K}),
		nextGenID: genSeed,
	}, true
}

// PeekNextGenID reports the generation id the next AssembleBlock call
// will use.
func (a *TxBlockAssembler) PeekNextGenID() uint32 { return a.nextGenID }

// AssembleBlock builds the N+K on-wire frames for one block, in the
// order data[0..N-1] then parity[0..K-1]. Returns false if dataPayloads
// doesn't have exactly N entries, they aren't all the same non-zero
// length, or that length exceeds MaxPayloadLen.
func (a *TxBlockAssembler) AssembleBlock(dataPayloads [][]byte) ([][]byte, bool) {
	if len(dataPayloads) != a.cfg.N || a.cfg.N == 0 {
		return nil, false
	}
	l := len(dataPayloads[0])
	if l == 0 {
		return nil, false
	}
	if a.cfg.MaxPayloadLen > 0 && l > a.cfg.MaxPayloadLen {
		return nil, false
	}
	for _, p := range dataPayloads[1:] {
		if len(p) != l {
			return nil, false
		}
	}

	parity := make([][]byte, a.cfg.K)
	for j := range parity {
		parity[j] = make([]byte, l)
	}
	if a.cfg.K > 0 {
		a.enc.Encode(dataPayloads, parity)
	}

	gen := a.nextGenID
	a.nextGenID++

	n16 := uint16(a.cfg.N)
	k16 := uint16(a.cfg.K)
	scheme := uint8(a.enc.SchemeID())

	frames := make([][]byte, a.cfg.N+a.cfg.K)

	for i := 0; i < a.cfg.N; i++ {
		h := wire.BaseHeader{
			Version:     wire.ProtocolVersion,
			Flags2:      wire.PackFlags2(k16),
			GenID:       gen,
			SeqInBlock:  uint16(i),
			DataCount:   n16,
			ParityCount: k16,
			PayloadLen:  uint16(l),
		}
		buf := make([]byte, wire.EncodedSize(l, false))
		if !wire.EncodeDataFrame(buf, h, dataPayloads[i]) {
			return nil, false
		}
		frames[i] = buf
	}

	for j := 0; j < a.cfg.K; j++ {
		h := wire.BaseHeader{
			Version:     wire.ProtocolVersion,
			Flags2:      wire.PackFlags2(k16),
			GenID:       gen,
			SeqInBlock:  uint16(a.cfg.N + j),
			DataCount:   n16,
			ParityCount: k16,
			PayloadLen:  uint16(l),
		}
		ps := wire.ParitySubheader{FecSchemeID: scheme, FecParityIndex: uint8(j)}
		buf := make([]byte, wire.EncodedSize(l, true))
		if !wire.EncodeParityFrame(buf, h, ps, parity[j]) {
			return nil, false
		}
		frames[a.cfg.N+j] = buf
	}

	return frames, true
}
