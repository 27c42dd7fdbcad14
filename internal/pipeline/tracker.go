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

// blockTracker holds the timing side of one generation's closure
// decision: when it started, and whether it is closable yet.
type blockTracker struct {
	policy  blockPolicy
	started bool
	startMs uint64
}

func newBlockTracker(p blockPolicy) blockTracker {
	return blockTracker{policy: p}
}

func (t *blockTracker) start(nowMs uint64) {
	t.started = true
	t.startMs = nowMs
}

func (t *blockTracker) ageMs(nowMs uint64) uint64 {
	if !t.started {
		return 0
	}
	if nowMs < t.startMs {
		return 0
	}
	return nowMs - t.startMs
}

// shouldClose implements the three-trigger policy from DESIGN.md:
// immediate completeness, the reorder window, or the low watermark.
func (t *blockTracker) shouldClose(nowMs uint64, haveAllData, haveAnyParity bool) bool {
	if !t.started {
		return false
	}
	if haveAnyParity && haveAllData {
		return true
	}
	age := t.ageMs(nowMs)
	if age >= uint64(t.policy.ReorderMs) {
		return true
	}
	if age >= uint64(t.policy.minDeadlineMs()) {
		return true
	}
	return false
}
