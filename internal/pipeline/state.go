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

// blockState tracks which data/parity slots have arrived for one
// generation, independent of timing.
type blockState struct {
	policy     blockPolicy
	dataSeen   []bool
	paritySeen []bool
}

func newBlockState(p blockPolicy) blockState {
	return blockState{
		policy:     p,
		dataSeen:   make([]bool, p.N),
		paritySeen: make([]bool, p.K),
	}
}

func (s *blockState) markData(seq uint16) {
	if int(seq) < len(s.dataSeen) {
		s.dataSeen[seq] = true
	}
}

func (s *blockState) markParity(idx uint8) {
	if int(idx) < len(s.paritySeen) {
		s.paritySeen[idx] = true
	}
}

func (s *blockState) dataSeenCount() int {
	n := 0
	for _, b := range s.dataSeen {
		if b {
			n++
		}
	}
	return n
}

func (s *blockState) paritySeenCount() int {
	n := 0
	for _, b := range s.paritySeen {
		if b {
			n++
		}
	}
	return n
}

func (s *blockState) haveAllData() bool { return s.dataSeenCount() == len(s.dataSeen) }
func (s *blockState) haveAnyParity() bool { return s.paritySeenCount() > 0 }
