package pipeline

import "testing"

func TestMinDeadlineDominatesAtDefaultRates(t *testing.T) {
	// N=8, fps=30 -> span ~= 267ms, 2*span ~= 533ms, so the 60ms low
	// watermark dominates (SPEC_FULL.md worked example).
	p := blockPolicy{N: 8, FPS: 30, ReorderMs: 50}
	if got := p.minDeadlineMs(); got != 60 {
		t.Fatalf("minDeadlineMs() = %d, want 60", got)
	}
}

func TestShouldCloseAtReorderMs(t *testing.T) {
	p := blockPolicy{N: 2, K: 0, FPS: 30, ReorderMs: 50}
	tr := newBlockTracker(p)
	tr.start(2000)

	if tr.shouldClose(2049, false, false) {
		t.Fatal("should not close before reorder_ms elapses")
	}
	if !tr.shouldClose(2050, false, false) {
		t.Fatal("should close once age >= reorder_ms")
	}
}

func TestShouldCloseOnCompleteness(t *testing.T) {
	p := blockPolicy{N: 3, K: 1, FPS: 30, ReorderMs: 5000}
	tr := newBlockTracker(p)
	tr.start(0)
	if tr.shouldClose(1, false, true) {
		t.Fatal("should not close on parity alone without all data")
	}
	if !tr.shouldClose(1, true, true) {
		t.Fatal("should close immediately once all data and some parity are in")
	}
}
