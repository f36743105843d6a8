package euph

import "encoding/binary"

// headPayloadSize is the fixed serialized size of the HEAD chunk payload.
const headPayloadSize = 24

// headMinPayloadSize covers the fields every writer emits; the remainder of
// the fixed payload is reserved space.
const headMinPayloadSize = 14

// Header mirrors the fixed binary payload of the HEAD chunk.
type Header struct {
	SampleRate       uint32
	ChannelCount     uint16
	BitDepth         uint16
	DurationMs       uint32
	Profile          Profile
	CompressionLevel uint8
	// AudioBytes is the total AUDI payload size across all AUDI chunks.
	// Zero means unknown; streaming progress then falls back to chunk
	// counts. The field lives in the reserved region of the payload, so
	// decoders that skip it stay correct.
	AudioBytes uint32
}

func encodeHeadPayload(h Header) []byte {
	out := make([]byte, headPayloadSize)

	binary.LittleEndian.PutUint32(out[0:4], h.SampleRate)
	binary.LittleEndian.PutUint16(out[4:6], h.ChannelCount)
	binary.LittleEndian.PutUint16(out[6:8], h.BitDepth)
	binary.LittleEndian.PutUint32(out[8:12], h.DurationMs)
	out[12] = byte(h.Profile)
	out[13] = h.CompressionLevel
	// out[14:16] reserved
	binary.LittleEndian.PutUint32(out[16:20], h.AudioBytes)
	// out[20:24] reserved

	return out
}

func parseHeadPayload(data []byte) (Header, error) {
	if len(data) < headMinPayloadSize {
		return Header{}, &FormatError{Reason: "short HEAD chunk"}
	}

	h := Header{
		SampleRate:       binary.LittleEndian.Uint32(data[0:4]),
		ChannelCount:     binary.LittleEndian.Uint16(data[4:6]),
		BitDepth:         binary.LittleEndian.Uint16(data[6:8]),
		DurationMs:       binary.LittleEndian.Uint32(data[8:12]),
		Profile:          Profile(data[12]),
		CompressionLevel: data[13],
	}

	if len(data) >= 20 {
		h.AudioBytes = binary.LittleEndian.Uint32(data[16:20])
	}

	if !h.Profile.valid() {
		return Header{}, &FormatError{Reason: "unknown compression profile"}
	}

	if h.ChannelCount == 0 {
		return Header{}, &FormatError{Reason: "zero channel count"}
	}

	return h, nil
}
