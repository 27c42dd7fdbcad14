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

// RxConfig tunes the receive-side reassembly window and payload cap.
type RxConfig struct {
	ReorderMs     uint32
	FPS           uint32
	MaxPayloadLen int
}

// ClosedBlock is the result of a successful close_if_ready call: N
// payload slots (some possibly empty) and a parallel recovery bitmap.
type ClosedBlock struct {
	GenID        uint32
	N, K         int
	L            int
	Data         [][]byte
	WasRecovered []bool
}

// rxBlock is the per-generation reassembly state: shape, sparse payload
// arrays, arrival bitmaps, and the start-time tracker. The time of the
// most recent frame is not recorded.
type rxBlock struct {
	genID      uint32
	n, k       int
	payloadLen int

	state   blockState
	tracker blockTracker

	data   [][]byte
	parity [][]byte
}

func newRxBlock(gen uint32, n, k, payloadLen int, cfg RxConfig) *rxBlock {
	p := blockPolicy{N: uint16(n), K: uint16(k), ReorderMs: cfg.ReorderMs, FPS: cfg.FPS}
	return &rxBlock{
		genID:      gen,
		n:          n,
		k:          k,
		payloadLen: payloadLen,
		state:      newBlockState(p),
		tracker:    newBlockTracker(p),
		data:       make([][]byte, n),
		parity:     make([][]byte, k),
	}
}

func (b *rxBlock) ingestData(nowMs uint64, seq uint16, payload []byte) {
	if !b.tracker.started {
		b.tracker.start(nowMs)
	}
	if int(seq) < b.n {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		b.data[seq] = cp
		b.state.markData(seq)
	}
}

func (b *rxBlock) ingestParity(nowMs uint64, idx uint8, payload []byte) {
	if !b.tracker.started {
		b.tracker.start(nowMs)
	}
	if int(idx) < b.k {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		b.parity[idx] = cp
		b.state.markParity(idx)
	}
}

func (b *rxBlock) shouldClose(nowMs uint64) bool {
	return b.tracker.shouldClose(nowMs, b.state.haveAllData(), b.state.haveAnyParity())
}

// RxBlockTable maps generation ids to in-progress reassembly state. Not
// safe for concurrent use without external mutual exclusion.
type RxBlockTable struct {
	cfg    RxConfig
	blocks map[uint32]*rxBlock
}

// NewRxBlockTable builds an empty table for the given config.
func NewRxBlockTable(cfg RxConfig) *RxBlockTable {
	return &RxBlockTable{cfg: cfg, blocks: make(map[uint32]*rxBlock)}
}

// Ingest stores one decoded frame, creating its block on first sighting.
// Returns false if the payload is empty, exceeds MaxPayloadLen, disagrees
// in length with an already-tracked block for this generation, or (per
// the Open Question 3 resolution) carries a parity subheader whose index
// disagrees with seq_in_block-N. Duplicate frames overwrite — last wins.
func (t *RxBlockTable) Ingest(nowMs uint64, h wire.BaseHeader, hasParitySub bool, ps wire.ParitySubheader, payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	if t.cfg.MaxPayloadLen > 0 && len(payload) > t.cfg.MaxPayloadLen {
		return false
	}
	if hasParitySub && int(ps.FecParityIndex) != int(h.SeqInBlock)-int(h.DataCount) {
		return false
	}

	blk, ok := t.blocks[h.GenID]
	if !ok {
		blk = newRxBlock(h.GenID, int(h.DataCount), int(h.ParityCount), len(payload), t.cfg)
		t.blocks[h.GenID] = blk
	} else if blk.payloadLen != len(payload) {
		return false
	}

	if hasParitySub {
		if int(ps.FecParityIndex) < blk.k {
			blk.ingestParity(nowMs, ps.FecParityIndex, payload)
		}
	} else if int(h.SeqInBlock) < blk.n {
		blk.ingestData(nowMs, h.SeqInBlock, payload)
	}
	return true
}

// ShouldClose reports whether the block for gen is ready to close, per
// the three-trigger policy. Returns false for an unknown generation.
func (t *RxBlockTable) ShouldClose(gen uint32, nowMs uint64) bool {
	blk, ok := t.blocks[gen]
	if !ok {
		return false
	}
	return blk.shouldClose(nowMs)
}

// CloseIfReady closes and removes the block for gen if it is ready,
// running erasure recovery when the missing-data pattern is solvable.
// Returns (block, true) on close, or (zero value, false) if gen is
// unknown or not yet closable.
func (t *RxBlockTable) CloseIfReady(gen uint32, nowMs uint64) (ClosedBlock, bool) {
	blk, ok := t.blocks[gen]
	if !ok || !blk.shouldClose(nowMs) {
		return ClosedBlock{}, false
	}
	delete(t.blocks, gen)
	return closeBlock(blk), true
}

func closeBlock(blk *rxBlock) ClosedBlock {
	out := ClosedBlock{
		GenID:        blk.genID,
		N:            blk.n,
		K:            blk.k,
		L:            blk.payloadLen,
		Data:         make([][]byte, blk.n),
		WasRecovered: make([]bool, blk.n),
	}
	copy(out.Data, blk.data)

	var missing []int
	for i, d := range blk.data {
		if d == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return out
	}

	switch {
	case blk.k == 1 && len(missing) == 1 && blk.parity[0] != nil && len(blk.parity[0]) == blk.payloadLen:
		recovered := make([]byte, blk.payloadLen)
		idx, ok := fec.XorRecoverOne(blk.data, blk.parity[0], recovered)
		if ok {
			out.Data[idx] = recovered
			out.WasRecovered[idx] = true
		}

	case blk.k >= 2 && len(missing) <= blk.k:
		availableParity := make([][]byte, blk.k)
		count := 0
		for j, p := range blk.parity {
			if p != nil && len(p) == blk.payloadLen {
				availableParity[j] = p
				count++
			}
		}
		if count >= len(missing) {
			recoveredBufs := make([][]byte, len(missing))
			for i := range recoveredBufs {
				recoveredBufs[i] = make([]byte, blk.payloadLen)
			}
			if fec.GF256Recover(blk.data, availableParity, missing, recoveredBufs) {
				for i, idx := range missing {
					out.Data[idx] = recoveredBufs[i]
					out.WasRecovered[idx] = true
				}
			}
		}
	}

	return out
}
