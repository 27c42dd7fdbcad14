package pipeline

import (
	"testing"

	"github.com/xtaci/ltfec/internal/wire"
)

// decodeAndIngest decodes raw and feeds it to the table, failing the test
// if the frame doesn't parse (it always should, in these tests).
func decodeAndIngest(t *testing.T, tbl *RxBlockTable, nowMs uint64, raw []byte) bool {
	t.Helper()
	df, ok := wire.DecodeFrame(raw)
	if !ok {
		t.Fatalf("DecodeFrame failed for a frame this test just encoded")
	}
	return tbl.Ingest(nowMs, df.Header, df.HasParitySub, df.ParitySub, df.Payload)
}

func TestScenario1XorSingleErasureRecovery(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 3, K: 1, MaxPayloadLen: 100}, 1)
	payloads := [][]byte{[]byte("AAAAAA"), []byte("BBBBBB"), []byte("CCCCCC")}
	frames, ok := asm.AssembleBlock(payloads)
	if !ok {
		t.Fatal("AssembleBlock failed")
	}

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	// drop data[1]; ingest data[0], data[2], parity[0]
	decodeAndIngest(t, tbl, 1000, frames[0])
	decodeAndIngest(t, tbl, 1001, frames[2])
	decodeAndIngest(t, tbl, 1002, frames[3])

	gen := asm.PeekNextGenID() - 1
	closed, ok := tbl.CloseIfReady(gen, 1060)
	if !ok {
		t.Fatal("block did not close at t=1060")
	}
	if closed.WasRecovered[0] || closed.WasRecovered[2] {
		t.Fatal("present slots should not be marked recovered")
	}
	if !closed.WasRecovered[1] {
		t.Fatal("missing slot should be recovered")
	}
	if string(closed.Data[1]) != "BBBBBB" {
		t.Fatalf("recovered data[1] = %q, want %q", closed.Data[1], "BBBBBB")
	}
}

func TestScenario2GF256TwoErasuresK2(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 5, K: 2, MaxPayloadLen: 100}, 1)
	payloads := [][]byte{
		[]byte("111111"), []byte("222222"), []byte("333333"),
		[]byte("444444"), []byte("555555"),
	}
	frames, ok := asm.AssembleBlock(payloads)
	if !ok {
		t.Fatal("AssembleBlock failed")
	}

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	for i, f := range frames {
		if i == 1 || i == 3 { // drop data[1], data[3]
			continue
		}
		decodeAndIngest(t, tbl, 0, f)
	}

	gen := asm.PeekNextGenID() - 1
	closed, ok := tbl.CloseIfReady(gen, 60)
	if !ok {
		t.Fatal("block did not close after 60ms")
	}
	if !closed.WasRecovered[1] || !closed.WasRecovered[3] {
		t.Fatal("both missing slots should be recovered")
	}
	if string(closed.Data[1]) != "222222" || string(closed.Data[3]) != "444444" {
		t.Fatalf("recovered payloads mismatch: %q / %q", closed.Data[1], closed.Data[3])
	}
}

func TestScenario3GF256TwoErasuresK3OmitOneParity(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 4, K: 3, MaxPayloadLen: 100}, 1)
	payloads := [][]byte{
		[]byte("aaaaaa"), []byte("bbbbbb"), []byte("cccccc"), []byte("dddddd"),
	}
	frames, ok := asm.AssembleBlock(payloads)
	if !ok {
		t.Fatal("AssembleBlock failed")
	}

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	// ingest data[0], data[3], parity[0] (idx 4), parity[2] (idx 6); omit data[1], data[2], parity[1]
	for _, i := range []int{0, 3, 4, 6} {
		decodeAndIngest(t, tbl, 0, frames[i])
	}

	gen := asm.PeekNextGenID() - 1
	closed, ok := tbl.CloseIfReady(gen, 60)
	if !ok {
		t.Fatal("block did not close after 60ms")
	}
	if !closed.WasRecovered[1] || !closed.WasRecovered[2] {
		t.Fatal("both missing slots should be recovered")
	}
	if string(closed.Data[1]) != "bbbbbb" || string(closed.Data[2]) != "cccccc" {
		t.Fatalf("recovered payloads mismatch: %q / %q", closed.Data[1], closed.Data[2])
	}
}

func TestScenario4ShouldCloseTransitionsAtReorderMs(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 2, K: 0, MaxPayloadLen: 100}, 1)
	frames, ok := asm.AssembleBlock([][]byte{[]byte("A"), []byte("B")})
	if !ok {
		t.Fatal("AssembleBlock failed")
	}

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	decodeAndIngest(t, tbl, 2000, frames[0])
	decodeAndIngest(t, tbl, 2000, frames[1])

	gen := asm.PeekNextGenID() - 1
	if tbl.ShouldClose(gen, 2049) {
		t.Fatal("should_close true before reorder_ms elapses")
	}
	if !tbl.ShouldClose(gen, 2050) {
		t.Fatal("should_close false once age >= reorder_ms")
	}
}

func TestUniversalInvariantFullBlockNoLossAnyOrder(t *testing.T) {
	for _, k := range []int{1, 2, 3, 4} {
		asm, ok := NewTxBlockAssembler(TxConfig{N: 6, K: k, MaxPayloadLen: 1300}, 1)
		if !ok {
			t.Fatalf("K=%d: assembler rejected", k)
		}
		payloads := make([][]byte, 6)
		for i := range payloads {
			payloads[i] = []byte{byte('A' + i), byte('A' + i), byte('A' + i)}
		}
		frames, ok := asm.AssembleBlock(payloads)
		if !ok {
			t.Fatalf("K=%d: AssembleBlock failed", k)
		}

		tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
		// ingest in reverse order to exercise order independence
		for i := len(frames) - 1; i >= 0; i-- {
			decodeAndIngest(t, tbl, 0, frames[i])
		}

		gen := asm.PeekNextGenID() - 1
		closed, ok := tbl.CloseIfReady(gen, 60)
		if !ok {
			t.Fatalf("K=%d: block did not close", k)
		}
		for i, p := range payloads {
			if string(closed.Data[i]) != string(p) {
				t.Fatalf("K=%d: data[%d] = %q, want %q", k, i, closed.Data[i], p)
			}
			if closed.WasRecovered[i] {
				t.Fatalf("K=%d: data[%d] marked recovered but was never missing", k, i)
			}
		}
	}
}

func TestRecoveryInsufficientLeavesHoles(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 5, K: 2, MaxPayloadLen: 100}, 1)
	payloads := [][]byte{
		[]byte("111111"), []byte("222222"), []byte("333333"),
		[]byte("444444"), []byte("555555"),
	}
	frames, ok := asm.AssembleBlock(payloads)
	if !ok {
		t.Fatal("AssembleBlock failed")
	}

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	// drop 3 data frames but only K=2 parity rows exist: unrecoverable.
	for _, i := range []int{0, 4, 5, 6} { // data[0], data[4], parity[0], parity[1]
		decodeAndIngest(t, tbl, 0, frames[i])
	}

	gen := asm.PeekNextGenID() - 1
	closed, ok := tbl.CloseIfReady(gen, 60)
	if !ok {
		t.Fatal("block did not close after 60ms")
	}
	if closed.WasRecovered[1] || closed.WasRecovered[2] || closed.WasRecovered[3] {
		t.Fatal("should not mark unrecoverable slots as recovered")
	}
	if closed.Data[1] != nil || closed.Data[2] != nil || closed.Data[3] != nil {
		t.Fatal("unrecoverable slots should remain empty")
	}
	if string(closed.Data[0]) != "111111" || string(closed.Data[4]) != "555555" {
		t.Fatal("present slots must be preserved")
	}
}

func TestIngestRejectsShapeMismatch(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 2, K: 1, MaxPayloadLen: 100}, 1)
	frames, _ := asm.AssembleBlock([][]byte{[]byte("AAAA"), []byte("BBBB")})

	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	decodeAndIngest(t, tbl, 0, frames[0])

	df, _ := wire.DecodeFrame(frames[1])
	shortPayload := df.Payload[:2]
	if tbl.Ingest(0, df.Header, df.HasParitySub, df.ParitySub, shortPayload) {
		t.Fatal("Ingest accepted a payload length disagreeing with the block's established L")
	}
}

func TestIngestRejectsEmptyPayload(t *testing.T) {
	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	h := wire.BaseHeader{DataCount: 2, ParityCount: 1, SeqInBlock: 0, PayloadLen: 0}
	if tbl.Ingest(0, h, false, wire.ParitySubheader{}, nil) {
		t.Fatal("Ingest accepted an empty payload")
	}
}

func TestIngestRejectsParityIndexMismatch(t *testing.T) {
	tbl := NewRxBlockTable(RxConfig{ReorderMs: 50, FPS: 30, MaxPayloadLen: 1300})
	h := wire.BaseHeader{DataCount: 4, ParityCount: 2, SeqInBlock: 5, PayloadLen: 3} // parity row 1
	ps := wire.ParitySubheader{FecParityIndex: 0}                                   // disagrees with seq-N=1
	if tbl.Ingest(0, h, true, ps, []byte("abc")) {
		t.Fatal("Ingest accepted a parity_index disagreeing with seq_in_block-N")
	}
}

func TestIngestDuplicateLastWins(t *testing.T) {
	asm, _ := NewTxBlockAssembler(TxConfig{N: 1, K: 0, MaxPayloadLen: 100}, 1)
	tbl := NewRxBlockTable(RxConfig{ReorderMs: 10, FPS: 30, MaxPayloadLen: 1300})

	frames1, _ := asm.AssembleBlock([][]byte{[]byte("FIRST1")})
	gen := asm.PeekNextGenID() - 1
	decodeAndIngest(t, tbl, 0, frames1[0])

	df, _ := wire.DecodeFrame(frames1[0])
	// simulate a duplicate carrying different payload bytes for the same (gen, seq)
	dup := append([]byte(nil), frames1[0]...)
	copy(dup[16:16+6], []byte("SECOND"))
	df2, _ := wire.DecodeFrame(dup)
	tbl.Ingest(1, df2.Header, df2.HasParitySub, df2.ParitySub, df2.Payload)
	_ = df

	closed, ok := tbl.CloseIfReady(gen, 20)
	if !ok {
		t.Fatal("block did not close")
	}
	if string(closed.Data[0]) != "SECOND" {
		t.Fatalf("duplicate ingest should overwrite (last wins): got %q", closed.Data[0])
	}
}
