package pipeline

import (
	"math/rand"
	"testing"

	"github.com/xtaci/ltfec/internal/sim"
	"github.com/xtaci/ltfec/internal/wire"
)

// TestBernoulliLossChannelXorRecoveryRatio exercises scenario 6: a lossy
// channel with independent per-frame Bernoulli drops and uniform jitter,
// run for roughly 15 seconds of N=8/K=1 blocks. XOR recovers any block
// with exactly one missing data frame, so the surviving (unrecovered)
// loss rate should fall well below the raw per-frame loss rate.
func TestBernoulliLossChannelXorRecoveryRatio(t *testing.T) {
	const (
		n           = 8
		k           = 1
		l           = 64
		fps         = 30
		jitterMaxMs = 50
		simSeconds  = 15
	)
	spanMs := (1000*n + fps - 1) / fps
	blockCount := (simSeconds * 1000) / spanMs

	for _, pLoss := range []float64{0.01, 0.03, 0.05} {
		rng := sim.NewXorShift32(uint32(1000 + int(pLoss*1000)))
		loss := sim.BernoulliLoss{PLoss: pLoss}
		payloadRng := rand.New(rand.NewSource(int64(pLoss * 1e6)))

		var totalData, droppedData, unrecovered int
		var blockStart uint64

		for b := 0; b < blockCount; b++ {
			asm, ok := NewTxBlockAssembler(TxConfig{N: n, K: k, MaxPayloadLen: 1300}, uint32(b+1))
			if !ok {
				t.Fatal("NewTxBlockAssembler rejected a valid config")
			}
			payloads := make([][]byte, n)
			for i := range payloads {
				buf := make([]byte, l)
				payloadRng.Read(buf)
				payloads[i] = buf
			}
			frames, ok := asm.AssembleBlock(payloads)
			if !ok {
				t.Fatal("AssembleBlock failed")
			}

			tbl := NewRxBlockTable(RxConfig{ReorderMs: 200, FPS: fps, MaxPayloadLen: 1300})
			gen := asm.PeekNextGenID() - 1

			var maxArrival uint64
			for i, raw := range frames {
				totalData += boolToInt(i < n)
				if loss.Drop(rng) {
					if i < n {
						droppedData++
					}
					continue
				}
				arrival := blockStart + uint64(sim.JitterUniformMs(rng, jitterMaxMs))
				if arrival > maxArrival {
					maxArrival = arrival
				}
				df, ok := wire.DecodeFrame(raw)
				if !ok {
					t.Fatal("DecodeFrame failed for a frame this test just encoded")
				}
				tbl.Ingest(arrival, df.Header, df.HasParitySub, df.ParitySub, df.Payload)
			}

			closeAt := maxArrival + 200
			closed, ok := tbl.CloseIfReady(gen, closeAt)
			if ok {
				for i := 0; i < n; i++ {
					if closed.Data[i] == nil {
						unrecovered++
					}
				}
			} else {
				// every frame for this block was lost; all N slots are
				// unrecovered and were already counted in droppedData.
				unrecovered += n - countNonNilAfterTotalLoss()
			}

			blockStart += uint64(spanMs)
		}

		if droppedData == 0 {
			continue // vanishingly unlikely at these probabilities and sample sizes; nothing to check
		}
		rawDataLoss := float64(droppedData) / float64(totalData)
		effectiveDataLoss := float64(unrecovered) / float64(totalData)
		ratio := effectiveDataLoss / rawDataLoss
		if ratio > 0.22 {
			t.Fatalf("p_loss=%.2f: effective/raw = %.4f (effective=%d, raw=%d, total=%d), want <= 0.22",
				pLoss, ratio, unrecovered, droppedData, totalData)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// countNonNilAfterTotalLoss exists only to make the "block never even
// opened" branch above read as an explicit zero rather than a magic
// number; a block with no surviving frames never enters the table.
func countNonNilAfterTotalLoss() int { return 0 }
