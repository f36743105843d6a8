package euph

import (
	"errors"
	"math"
	"testing"
)

func TestCodecForAllProfiles(t *testing.T) {
	for _, profile := range []Profile{ProfileLossless, ProfileBalanced, ProfileCompact} {
		codec, err := codecFor(profile)
		if err != nil {
			t.Fatalf("codecFor(%s): %v", profile, err)
		}

		if codec == nil {
			t.Fatalf("codecFor(%s) returned nil codec", profile)
		}
	}

	if _, err := codecFor(Profile(99)); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestLosslessRoundTripWithinQuantizationStep(t *testing.T) {
	samples := makeSine(440, 44100, 2048)
	codec := losslessCodec{}

	for level := 0; level <= MaxCompressionLevel; level++ {
		data, err := codec.Compress(samples, level)
		if err != nil {
			t.Fatalf("compress at level %d: %v", level, err)
		}

		out, err := codec.Decompress(data, level)
		if err != nil {
			t.Fatalf("decompress at level %d: %v", level, err)
		}

		if len(out) != len(samples) {
			t.Fatalf("level %d: sample count changed from %d to %d", level, len(samples), len(out))
		}

		const tolerance = 1.0 / 32767
		for i := range samples {
			if diff := math.Abs(float64(samples[i] - out[i])); diff > tolerance {
				t.Fatalf("level %d sample %d off by %g (tolerance %g)", level, i, diff, tolerance)
			}
		}
	}
}

func TestLosslessIdempotent(t *testing.T) {
	samples := makeSine(440, 44100, 1024)
	codec := losslessCodec{}

	first, err := codec.Compress(samples, 6)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := codec.Decompress(first, 6)
	if err != nil {
		t.Fatal(err)
	}

	second, err := codec.Compress(decoded, 6)
	if err != nil {
		t.Fatal(err)
	}

	again, err := codec.Decompress(second, 6)
	if err != nil {
		t.Fatal(err)
	}

	// Once on the 16-bit grid, samples must survive further cycles exactly.
	for i := range decoded {
		if decoded[i] != again[i] {
			t.Fatalf("sample %d drifted across cycles: %g -> %g", i, decoded[i], again[i])
		}
	}
}

func TestBalancedLevelZeroCompresses(t *testing.T) {
	samples := make([]float32, 8192)

	stored, err := losslessCodec{}.Compress(samples, 0)
	if err != nil {
		t.Fatal(err)
	}

	compressed, err := balancedCodec{}.Compress(samples, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(compressed) >= len(stored) {
		t.Fatalf("balanced level 0 did not compress: %d >= %d bytes", len(compressed), len(stored))
	}
}

func TestCompactBits(t *testing.T) {
	testCases := []struct {
		level int
		bits  int
	}{
		{0, 12},
		{3, 9},
		{4, 8},
		{8, 4},
		{9, 4},
	}

	for _, testCase := range testCases {
		if got := compactBits(testCase.level); got != testCase.bits {
			t.Errorf("compactBits(%d) = %d, want %d", testCase.level, got, testCase.bits)
		}
	}
}

func TestCompactRoundTripWithinGridStep(t *testing.T) {
	samples := makeSine(440, 48000, 2048)
	codec := compactCodec{}

	for level := 0; level <= MaxCompressionLevel; level++ {
		data, err := codec.Compress(samples, level)
		if err != nil {
			t.Fatalf("compress at level %d: %v", level, err)
		}

		out, err := codec.Decompress(data, level)
		if err != nil {
			t.Fatalf("decompress at level %d: %v", level, err)
		}

		if len(out) != len(samples) {
			t.Fatalf("level %d: sample count changed from %d to %d", level, len(samples), len(out))
		}

		scale := float64(int64(1) << (compactBits(level) - 1))
		tolerance := 1.0 / scale

		for i := range samples {
			if diff := math.Abs(float64(samples[i] - out[i])); diff > tolerance {
				t.Fatalf("level %d sample %d off by %g (tolerance %g)", level, i, diff, tolerance)
			}
		}
	}
}

func TestCompactShrinksWithLevel(t *testing.T) {
	samples := makeSine(440, 48000, 8192)
	codec := compactCodec{}

	low, err := codec.Compress(samples, 0)
	if err != nil {
		t.Fatal(err)
	}

	high, err := codec.Compress(samples, 9)
	if err != nil {
		t.Fatal(err)
	}

	if len(high) >= len(low) {
		t.Fatalf("level 9 payload not smaller than level 0: %d >= %d bytes", len(high), len(low))
	}
}

func TestUnpackPCM16OddLength(t *testing.T) {
	_, err := unpackPCM16([]byte{1, 2, 3})

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestInflateBytesCorruptInput(t *testing.T) {
	_, err := inflateBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	if formatErr.Reason != "corrupt audio payload" {
		t.Fatalf("unexpected reason: %q", formatErr.Reason)
	}
}

func TestQuantizeClamps(t *testing.T) {
	if got := float32ToPCMInt16(2); got != maxPCMInt16 {
		t.Errorf("float32ToPCMInt16(2) = %d, want %d", got, maxPCMInt16)
	}

	if got := float32ToPCMInt16(-2); got != -scalePCMInt16 {
		t.Errorf("float32ToPCMInt16(-2) = %d, want %d", got, int(-scalePCMInt16))
	}

	if got := float32ToPCMInt16(1); got != maxPCMInt16 {
		t.Errorf("float32ToPCMInt16(1) = %d, want %d", got, maxPCMInt16)
	}

	if got := quantizeScaled(1, 128); got != 127 {
		t.Errorf("quantizeScaled(1, 128) = %d, want 127", got)
	}

	if got := quantizeScaled(-1, 128); got != -128 {
		t.Errorf("quantizeScaled(-1, 128) = %d, want -128", got)
	}
}
