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

// GF(256) with primitive polynomial x^8+x^4+x^3+x^2+1 (0x11D), generator
// alpha=2. Tables are built once, eagerly, at package initialisation (not
// on first use).
const gfPoly = 0x11D

type gfTables struct {
	exp [512]uint8 // exp[i] = alpha^i, duplicated past 255 to skip a modulo
	log [256]uint8 // log[0] unused
}

var tables = buildGFTables()

func buildGFTables() gfTables {
	var t gfTables
	x := uint16(1)
	for i := 0; i < 255; i++ {
		t.exp[i] = uint8(x)
		t.log[t.exp[i]] = uint8(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gfPoly
		}
	}
	for i := 255; i < 512; i++ {
		t.exp[i] = t.exp[i-255]
	}
	return t
}

func gfMul(a, b uint8) uint8 {
	if a == 0 || b == 0 {
		return 0
	}
	return tables.exp[int(tables.log[a])+int(tables.log[b])]
}

func gfInv(a uint8) uint8 {
	return tables.exp[255-int(tables.log[a])]
}

func gfPowAlpha(e int) uint8 {
	return tables.exp[e%255]
}

// GF256Encode writes K parity rows (K in [2..4]) over N equal-length data
// frames. Parity row j for byte position i is XOR_d( alpha^(j*d) * D_d[i] ).
// Row 0 has every coefficient equal to 1 and is therefore plain XOR — the
// fast path below runs it through xorsimd the same as the K=1 scheme.
func GF256Encode(dataFrames [][]byte, parityOut [][]byte) {
	k := len(parityOut)
	if k < 2 || k > 4 || len(dataFrames) == 0 {
		return
	}
	frameLen := len(parityOut[0])

	for j := 0; j < k; j++ {
		out := parityOut[j]
		if j == 0 {
			XorEncode(dataFrames, out)
			continue
		}
		for i := range out {
			out[i] = 0
		}
		for d, src := range dataFrames {
			if src == nil {
				continue
			}
			coef := gfPowAlpha(j * d)
			for i := 0; i < frameLen; i++ {
				out[i] ^= gfMul(coef, src[i])
			}
		}
	}
}

// GF256Recover reconstructs the data frames named by missing using the
// first len(missing) available parity rows. dataFrames[i] == nil marks a
// missing slot; parityFrames[j] == nil marks an unavailable parity row.
// recoveredOut must have one buffer per entry of missing, each frameLen
// bytes. Returns false if fewer parity rows are available than needed, or
// if the resulting system is singular (should not happen for distinct
// rows with m <= 4).
func GF256Recover(dataFrames [][]byte, parityFrames [][]byte, missing []int, recoveredOut [][]byte) bool {
	m := len(missing)
	if m == 0 {
		return true
	}
	if m > 4 || len(recoveredOut) != m {
		return false
	}

	rows := make([]int, 0, m)
	for j, p := range parityFrames {
		if p != nil {
			rows = append(rows, j)
		}
		if len(rows) == m {
			break
		}
	}
	if len(rows) < m {
		return false
	}

	frameLen := len(recoveredOut[0])
	a := make([]uint8, m*m)
	b := make([]uint8, m)

	for i := 0; i < frameLen; i++ {
		for r, j := range rows {
			rhs := parityFrames[j][i]
			for d, src := range dataFrames {
				if src == nil {
					continue
				}
				rhs ^= gfMul(gfPowAlpha(j*d), src[i])
			}
			b[r] = rhs
			for c, d := range missing {
				a[r*m+c] = gfPowAlpha(j * d)
			}
		}

		if !solveGF256(a, b, m) {
			return false
		}
		for c := range missing {
			recoveredOut[c][i] = b[c]
		}
	}
	return true
}

// solveGF256 solves A x = b in place over GF(256) via Gauss-Jordan
// elimination with partial pivoting (first non-zero in the column).
// A is m*m, row-major; b is m*1. On success, b holds the solution.
func solveGF256(a []uint8, b []uint8, m int) bool {
	idx := func(r, c int) int { return r*m + c }

	for col, row := 0, 0; col < m && row < m; col, row = col+1, row+1 {
		piv := row
		for piv < m && a[idx(piv, col)] == 0 {
			piv++
		}
		if piv == m {
			return false
		}
		if piv != row {
			for c := col; c < m; c++ {
				a[idx(row, c)], a[idx(piv, c)] = a[idx(piv, c)], a[idx(row, c)]
			}
			b[row], b[piv] = b[piv], b[row]
		}

		inv := gfInv(a[idx(row, col)])
		for c := col; c < m; c++ {
			a[idx(row, c)] = gfMul(a[idx(row, c)], inv)
		}
		b[row] = gfMul(b[row], inv)

		for r := 0; r < m; r++ {
			if r == row {
				continue
			}
			f := a[idx(r, col)]
			if f == 0 {
				continue
			}
			for c := col; c < m; c++ {
				a[idx(r, c)] ^= gfMul(f, a[idx(row, c)])
			}
			b[r] ^= gfMul(f, b[row])
		}
	}
	return true
}
