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
package wire

// ProtocolVersion is the only wire version this codec speaks.
const ProtocolVersion uint8 = 1

// FecSchemeID identifies the parity construction used for a block's
// parity frames, carried in the ParitySubheader.
type FecSchemeID uint8

const (
	SchemeXorK1    FecSchemeID = 1
	SchemeGF256K2  FecSchemeID = 10
	SchemeGF256K3  FecSchemeID = 11
	SchemeGF256K4  FecSchemeID = 12
)

const (
	baseHeaderSize      = 16
	paritySubheaderSize = 2
	crcTrailerSize      = 4
)

// BaseHeader is the 16-byte header present on every frame.
type BaseHeader struct {
	Version      uint8
	Flags1       uint8
	Flags2       uint16 // low 8 bits = parity_count-1; upper bits reserved 0
	GenID        uint32
	SeqInBlock   uint16 // data: 0..N-1; parity: N..N+K-1
	DataCount    uint16 // N
	ParityCount  uint16 // K
	PayloadLen   uint16 // L
}

// ParitySubheader follows BaseHeader on parity frames only.
type ParitySubheader struct {
	FecSchemeID    uint8
	FecParityIndex uint8
}

// PackFlags2 packs K-1 into the low 8 bits of flags2, per the wire format.
func PackFlags2(k uint16) uint16 {
	return (k - 1) & 0x00FF
}

// UnpackFlags2 extracts parity_count-1 from flags2's low 8 bits.
func UnpackFlags2(flags2 uint16) uint16 {
	return flags2 & 0x00FF
}

// IsParityFrame reports whether h denotes a parity frame: seq_in_block is
// at or beyond the data count, so a ParitySubheader follows the header.
func IsParityFrame(h BaseHeader) bool {
	return h.SeqInBlock >= h.DataCount
}

// EncodedSize returns the total on-wire size for a frame carrying
// payloadLen bytes, with or without the parity subheader.
func EncodedSize(payloadLen int, withParitySubheader bool) int {
	size := baseHeaderSize + payloadLen + crcTrailerSize
	if withParitySubheader {
		size += paritySubheaderSize
	}
	return size
}

func writeBaseHeader(out []byte, h BaseHeader) bool {
	if len(out) < baseHeaderSize {
		return false
	}
	out[0] = h.Version
	out[1] = h.Flags1
	putUint16LE(out[2:4], h.Flags2)
	putUint32LE(out[4:8], h.GenID)
	putUint16LE(out[8:10], h.SeqInBlock)
	putUint16LE(out[10:12], h.DataCount)
	putUint16LE(out[12:14], h.ParityCount)
	putUint16LE(out[14:16], h.PayloadLen)
	return true
}

func readBaseHeader(in []byte) (BaseHeader, bool) {
	var h BaseHeader
	if len(in) < baseHeaderSize {
		return h, false
	}
	h.Version = in[0]
	h.Flags1 = in[1]
	h.Flags2 = getUint16LE(in[2:4])
	h.GenID = getUint32LE(in[4:8])
	h.SeqInBlock = getUint16LE(in[8:10])
	h.DataCount = getUint16LE(in[10:12])
	h.ParityCount = getUint16LE(in[12:14])
	h.PayloadLen = getUint16LE(in[14:16])
	return h, true
}

// EncodeDataFrame writes a data frame (header, payload, CRC trailer) into
// out. Requires h.SeqInBlock < h.DataCount, len(payload) == h.PayloadLen,
// and a big enough out buffer; returns false on any precondition failure.
func EncodeDataFrame(out []byte, h BaseHeader, payload []byte) bool {
	if IsParityFrame(h) {
		return false
	}
	if len(payload) != int(h.PayloadLen) {
		return false
	}
	need := EncodedSize(len(payload), false)
	if len(out) < need {
		return false
	}
	if !writeBaseHeader(out, h) {
		return false
	}
	copy(out[baseHeaderSize:], payload)
	crc := CRC32C(payload)
	putUint32LE(out[baseHeaderSize+len(payload):], crc)
	return true
}

// EncodeParityFrame writes a parity frame (header, subheader, payload,
// CRC trailer) into out. Requires h.SeqInBlock >= h.DataCount and
// len(payload) == h.PayloadLen; returns false on precondition failure.
func EncodeParityFrame(out []byte, h BaseHeader, ps ParitySubheader, payload []byte) bool {
	if !IsParityFrame(h) {
		return false
	}
	if len(payload) != int(h.PayloadLen) {
		return false
	}
	need := EncodedSize(len(payload), true)
	if len(out) < need {
		return false
	}
	if !writeBaseHeader(out, h) {
		return false
	}
	p := out[baseHeaderSize:]
	p[0] = ps.FecSchemeID
	p[1] = ps.FecParityIndex
	copy(p[paritySubheaderSize:], payload)
	crc := CRC32C(payload)
	putUint32LE(p[paritySubheaderSize+len(payload):], crc)
	return true
}

// DecodedFrame is the zero-copy result of DecodeFrame: Payload aliases
// the input buffer, it is not a fresh allocation.
type DecodedFrame struct {
	Header        BaseHeader
	HasParitySub  bool
	ParitySub     ParitySubheader
	Payload       []byte
	CRC           uint32
}

// DecodeFrame performs size-only validation of in and returns views into
// it. CRC verification is a separate step (VerifyPayloadCRC) — a decode
// success here does not mean the payload is intact.
func DecodeFrame(in []byte) (DecodedFrame, bool) {
	var out DecodedFrame
	if len(in) < baseHeaderSize+crcTrailerSize {
		return out, false
	}
	h, ok := readBaseHeader(in)
	if !ok {
		return out, false
	}
	out.Header = h
	out.HasParitySub = IsParityFrame(h)

	headerBytes := baseHeaderSize
	if out.HasParitySub {
		headerBytes += paritySubheaderSize
	}
	totalNeeded := headerBytes + int(h.PayloadLen) + crcTrailerSize
	if len(in) < totalNeeded {
		return DecodedFrame{}, false
	}

	off := baseHeaderSize
	if out.HasParitySub {
		out.ParitySub = ParitySubheader{
			FecSchemeID:    in[off],
			FecParityIndex: in[off+1],
		}
		off += paritySubheaderSize
	}

	out.Payload = in[off : off+int(h.PayloadLen)]
	off += int(h.PayloadLen)
	out.CRC = getUint32LE(in[off : off+4])
	return out, true
}

// VerifyPayloadCRC recomputes CRC32C(payload) and compares it to crc.
func VerifyPayloadCRC(payload []byte, crc uint32) bool {
	return CRC32C(payload) == crc
}
