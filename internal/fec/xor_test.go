package fec

import "testing"

func TestXorEncodeMatchesReference(t *testing.T) {
	data := frames("AAAAAA", "BBBBBB", "CCCCCC")
	out := make([]byte, 6)
	XorEncode(data, out)

	want := xorBytesRef(data[0], data[1], data[2])
	if !equal(out, want) {
		t.Fatalf("XorEncode = %v, want %v", out, want)
	}
}

func TestXorEncodeToleratesNilSlots(t *testing.T) {
	data := frames("AAAAAA", "", "CCCCCC")
	out := make([]byte, 6)
	XorEncode(data, out)

	want := xorBytesRef(data[0], data[2])
	if !equal(out, want) {
		t.Fatalf("XorEncode with nil slot = %v, want %v", out, want)
	}
}

func TestXorRecoverOneSingleErasure(t *testing.T) {
	orig := frames("AAAAAA", "BBBBBB", "CCCCCC")
	parity := make([]byte, 6)
	XorEncode(orig, parity)

	withMissing := frames("AAAAAA", "", "CCCCCC")
	out := make([]byte, 6)
	idx, ok := XorRecoverOne(withMissing, parity, out)
	if !ok {
		t.Fatal("XorRecoverOne failed")
	}
	if idx != 1 {
		t.Fatalf("recovered index = %d, want 1", idx)
	}
	if !equal(out, []byte("BBBBBB")) {
		t.Fatalf("recovered = %q, want %q", out, "BBBBBB")
	}
}

func TestXorRecoverOneFailsOnZeroOrMultipleMissing(t *testing.T) {
	parity := make([]byte, 6)
	complete := frames("AAAAAA", "BBBBBB", "CCCCCC")
	XorEncode(complete, parity)

	if _, ok := XorRecoverOne(complete, parity, make([]byte, 6)); ok {
		t.Fatal("XorRecoverOne succeeded with nothing missing")
	}

	twoMissing := frames("AAAAAA", "", "")
	if _, ok := XorRecoverOne(twoMissing, parity, make([]byte, 6)); ok {
		t.Fatal("XorRecoverOne succeeded with two missing frames")
	}
}
