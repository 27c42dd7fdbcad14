package wire

import "testing"

func TestDataFrameRoundTrip(t *testing.T) {
	payload := make([]byte, 1200)
	for i := range payload {
		payload[i] = byte(i)
	}
	h := BaseHeader{
		Version:     ProtocolVersion,
		Flags1:      0xA5,
		Flags2:      PackFlags2(1),
		GenID:       0x11223344,
		SeqInBlock:  7,
		DataCount:   8,
		ParityCount: 1,
		PayloadLen:  uint16(len(payload)),
	}

	out := make([]byte, EncodedSize(len(payload), false))
	if !EncodeDataFrame(out, h, payload) {
		t.Fatal("EncodeDataFrame failed")
	}

	df, ok := DecodeFrame(out)
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	if df.HasParitySub {
		t.Fatal("data frame decoded with a parity subheader")
	}
	if df.Header != h {
		t.Fatalf("header mismatch: got %+v, want %+v", df.Header, h)
	}
	if string(df.Payload) != string(payload) {
		t.Fatal("payload mismatch after round-trip")
	}
	if !VerifyPayloadCRC(df.Payload, df.CRC) {
		t.Fatal("CRC failed to verify after round-trip")
	}
}

func TestParityFrameHasSubheaderAndConsistentIndex(t *testing.T) {
	payload := []byte("ABCDEF")
	const N, K = 4, 3
	h := BaseHeader{
		Version:     ProtocolVersion,
		Flags2:      PackFlags2(K),
		GenID:       9,
		SeqInBlock:  N + 1, // parity row 1
		DataCount:   N,
		ParityCount: K,
		PayloadLen:  uint16(len(payload)),
	}
	ps := ParitySubheader{FecSchemeID: uint8(SchemeGF256K3), FecParityIndex: 1}

	out := make([]byte, EncodedSize(len(payload), true))
	if !EncodeParityFrame(out, h, ps, payload) {
		t.Fatal("EncodeParityFrame failed")
	}

	df, ok := DecodeFrame(out)
	if !ok {
		t.Fatal("DecodeFrame failed")
	}
	if !df.HasParitySub {
		t.Fatal("parity frame decoded without a parity subheader")
	}
	if got, want := int(df.Header.SeqInBlock)-N, int(df.ParitySub.FecParityIndex); got != want {
		t.Fatalf("seq_in_block-N = %d, parity_index = %d: disagree", got, want)
	}
}

func TestEncodeDataFrameRejectsParitySeq(t *testing.T) {
	h := BaseHeader{DataCount: 4, SeqInBlock: 4, PayloadLen: 3}
	out := make([]byte, 64)
	if EncodeDataFrame(out, h, []byte("abc")) {
		t.Fatal("EncodeDataFrame accepted a seq_in_block >= data_count")
	}
}

func TestEncodeParityFrameRejectsDataSeq(t *testing.T) {
	h := BaseHeader{DataCount: 4, SeqInBlock: 2, PayloadLen: 3}
	out := make([]byte, 64)
	if EncodeParityFrame(out, h, ParitySubheader{}, []byte("abc")) {
		t.Fatal("EncodeParityFrame accepted a seq_in_block < data_count")
	}
}

func TestDecodeFrameRejectsTruncated(t *testing.T) {
	payload := []byte("hello world")
	h := BaseHeader{DataCount: 1, SeqInBlock: 0, PayloadLen: uint16(len(payload))}
	out := make([]byte, EncodedSize(len(payload), false))
	if !EncodeDataFrame(out, h, payload) {
		t.Fatal("EncodeDataFrame failed")
	}
	if _, ok := DecodeFrame(out[:len(out)-1]); ok {
		t.Fatal("DecodeFrame accepted a truncated frame")
	}
	if _, ok := DecodeFrame(out[:10]); ok {
		t.Fatal("DecodeFrame accepted a frame shorter than the base header+trailer")
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	h := BaseHeader{DataCount: 1, SeqInBlock: 0, PayloadLen: 10}
	out := make([]byte, 5)
	if EncodeDataFrame(out, h, make([]byte, 10)) {
		t.Fatal("EncodeDataFrame accepted an undersized output buffer")
	}
}
