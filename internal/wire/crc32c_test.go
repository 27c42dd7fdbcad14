package wire

import "testing"

func TestCRC32CVectors(t *testing.T) {
	if got := CRC32C(nil); got != 0 {
		t.Fatalf("CRC32C(empty) = %#x, want 0", got)
	}
	if got := CRC32C([]byte("123456789")); got != 0xE3069283 {
		t.Fatalf("CRC32C(\"123456789\") = %#x, want 0xE3069283", got)
	}
}

func TestCRC32CIncrementalMatchesOneShot(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, 0123456789")
	want := CRC32C(data)

	state := CRC32CInit()
	for i := 0; i < len(data); i += 7 {
		end := i + 7
		if end > len(data) {
			end = len(data)
		}
		state = CRC32CUpdate(state, data[i:end])
	}
	got := CRC32CFinish(state)

	if got != want {
		t.Fatalf("incremental CRC32C = %#x, want %#x", got, want)
	}
}
