package euph

import (
	"errors"
	"testing"
)

func TestHeadPayloadRoundTrip(t *testing.T) {
	in := Header{
		SampleRate:       48000,
		ChannelCount:     2,
		BitDepth:         24,
		DurationMs:       500,
		Profile:          ProfileCompact,
		CompressionLevel: 9,
		AudioBytes:       123456,
	}

	payload := encodeHeadPayload(in)
	if len(payload) != headPayloadSize {
		t.Fatalf("unexpected payload size: got %d want %d", len(payload), headPayloadSize)
	}

	out, err := parseHeadPayload(payload)
	if err != nil {
		t.Fatalf("parse HEAD payload: %v", err)
	}

	if out != in {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", out, in)
	}
}

func TestParseHeadPayloadShortButComplete(t *testing.T) {
	// A writer that only emits the mandatory fields truncates the reserved
	// region; the parser must accept that and report AudioBytes as unknown.
	full := encodeHeadPayload(Header{
		SampleRate:   44100,
		ChannelCount: 1,
		BitDepth:     16,
		DurationMs:   1000,
		Profile:      ProfileLossless,
		AudioBytes:   99,
	})

	h, err := parseHeadPayload(full[:headMinPayloadSize])
	if err != nil {
		t.Fatalf("parse minimal HEAD payload: %v", err)
	}

	if h.SampleRate != 44100 || h.ChannelCount != 1 || h.DurationMs != 1000 {
		t.Fatalf("unexpected header: %+v", h)
	}

	if h.AudioBytes != 0 {
		t.Fatalf("expected unknown AudioBytes, got %d", h.AudioBytes)
	}
}

func TestParseHeadPayloadRejects(t *testing.T) {
	valid := encodeHeadPayload(Header{
		SampleRate:   44100,
		ChannelCount: 2,
		BitDepth:     16,
		Profile:      ProfileBalanced,
	})

	testCases := []struct {
		name   string
		mutate func(p []byte) []byte
	}{
		{
			name:   "too short",
			mutate: func(p []byte) []byte { return p[:headMinPayloadSize-1] },
		},
		{
			name: "unknown profile",
			mutate: func(p []byte) []byte {
				p[12] = 0xFF
				return p
			},
		},
		{
			name: "zero channels",
			mutate: func(p []byte) []byte {
				p[4], p[5] = 0, 0
				return p
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			payload := append([]byte(nil), valid...)

			_, err := parseHeadPayload(testCase.mutate(payload))

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}
}
