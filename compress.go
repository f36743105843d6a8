package euph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// sampleCodec converts a float PCM sample stream to and from a compact byte
// payload. One implementation exists per profile; the codec for a container
// is selected once from the HEAD fields rather than per call site.
type sampleCodec interface {
	// Compress packs interleaved [-1,1] samples into an AUDI payload.
	Compress(samples []float32, level int) ([]byte, error)
	// Decompress is the exact inverse of Compress for the same level.
	Decompress(data []byte, level int) ([]float32, error)
}

// codecFor returns the sample codec implementing the given profile.
func codecFor(p Profile) (sampleCodec, error) {
	switch p {
	case ProfileLossless:
		return losslessCodec{}, nil
	case ProfileBalanced:
		return balancedCodec{}, nil
	case ProfileCompact:
		return compactCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownProfile, p)
	}
}

// losslessCodec quantizes to 16-bit signed integers and applies DEFLATE at
// the requested level. Level 0 emits stored blocks, level 9 is maximum
// effort.
type losslessCodec struct{}

func (losslessCodec) Compress(samples []float32, level int) ([]byte, error) {
	return deflateBytes(packPCM16(samples), level)
}

func (losslessCodec) Decompress(data []byte, _ int) ([]float32, error) {
	raw, err := inflateBytes(data)
	if err != nil {
		return nil, err
	}

	return unpackPCM16(raw)
}

// balancedCodec uses the identical 16-bit quantization but always
// compresses; level 0 falls back to the default DEFLATE effort.
type balancedCodec struct{}

func (balancedCodec) Compress(samples []float32, level int) ([]byte, error) {
	if level == 0 {
		level = 6
	}

	return deflateBytes(packPCM16(samples), level)
}

func (balancedCodec) Decompress(data []byte, _ int) ([]float32, error) {
	raw, err := inflateBytes(data)
	if err != nil {
		return nil, err
	}

	return unpackPCM16(raw)
}

// compactCodec reduces the quantization depth as the level rises. Samples
// are stored one byte each at 8 bits or fewer, two bytes otherwise, then
// DEFLATE-compressed at maximum effort.
type compactCodec struct{}

// compactBits derives the quantization depth from the compression level:
// higher level, fewer bits.
func compactBits(level int) int {
	bits := 12 - level
	if bits < 4 {
		bits = 4
	}

	if bits > 12 {
		bits = 12
	}

	return bits
}

func (compactCodec) Compress(samples []float32, level int) ([]byte, error) {
	bits := compactBits(level)
	scale := float64(int64(1) << (bits - 1))

	var raw []byte
	if bits <= 8 {
		raw = make([]byte, len(samples))
		for i, s := range samples {
			raw[i] = byte(int8(quantizeScaled(s, scale)))
		}
	} else {
		raw = make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(quantizeScaled(s, scale))))
		}
	}

	return deflateBytes(raw, flate.BestCompression)
}

func (compactCodec) Decompress(data []byte, level int) ([]float32, error) {
	raw, err := inflateBytes(data)
	if err != nil {
		return nil, err
	}

	bits := compactBits(level)
	scale := float64(int64(1) << (bits - 1))

	if bits <= 8 {
		samples := make([]float32, len(raw))
		for i := range raw {
			samples[i] = float32(float64(int8(raw[i])) / scale)
		}

		return samples, nil
	}

	if len(raw)%2 != 0 {
		return nil, &FormatError{Reason: "odd audio payload length"}
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(float64(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / scale)
	}

	return samples, nil
}

func packPCM16(samples []float32) []byte {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(float32ToPCMInt16(s)))
	}

	return raw
}

func unpackPCM16(raw []byte) ([]float32, error) {
	if len(raw)%2 != 0 {
		return nil, &FormatError{Reason: "odd audio payload length"}
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = pcmInt16ToFloat32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	return samples, nil
}

func deflateBytes(raw []byte, level int) ([]byte, error) {
	if level < flate.NoCompression {
		level = flate.NoCompression
	}

	if level > flate.BestCompression {
		level = flate.BestCompression
	}

	var buf bytes.Buffer

	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}

	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress audio payload: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish audio payload: %w", err)
	}

	return buf.Bytes(), nil
}

func inflateBytes(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &FormatError{Reason: "corrupt audio payload"}
	}

	return raw, nil
}
