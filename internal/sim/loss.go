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
package sim

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// BernoulliLoss drops each trial independently with probability PLoss.
type BernoulliLoss struct {
	PLoss float64
}

// Drop reports whether this trial is lost.
func (b BernoulliLoss) Drop(rng *XorShift32) bool {
	p := clamp01(b.PLoss)
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.NextUnit() < p
}

// GilbertElliottLoss is a two-state (Good/Bad) Markov loss model: PGtoB and
// PBtoG drive state transitions, PLossBad is the drop probability while in
// the Bad state. Good-state drops never occur.
type GilbertElliottLoss struct {
	PGtoB    float64
	PBtoG    float64
	PLossBad float64
	bad      bool
}

// Drop advances the Markov chain by one trial and reports whether it's lost.
func (g *GilbertElliottLoss) Drop(rng *XorShift32) bool {
	pg := clamp01(g.PGtoB)
	pb := clamp01(g.PBtoG)
	pl := clamp01(g.PLossBad)

	u := rng.NextUnit()
	if !g.bad {
		if u < pg {
			g.bad = true
		}
	} else {
		if u < pb {
			g.bad = false
		}
	}

	if !g.bad {
		return false
	}
	if pl <= 0 {
		return false
	}
	if pl >= 1 {
		return true
	}
	return rng.NextUnit() < pl
}

// JitterUniformMs returns a uniform delay in [0, jMs] milliseconds.
func JitterUniformMs(rng *XorShift32, jMs uint32) uint32 {
	if jMs == 0 {
		return 0
	}
	return rng.NextU32() % (jMs + 1)
}
