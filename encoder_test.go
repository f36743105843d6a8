package euph

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-audio/audio"
)

func TestEncodeRejectsInvalidInput(t *testing.T) {
	valid := makeSine(440, 44100, 441)

	testCases := []struct {
		name     string
		channels [][]float32
		rate     int
		opts     EncodeOptions
		meta     *Metadata
	}{
		{
			name:     "empty PCM",
			channels: [][]float32{},
			rate:     44100,
		},
		{
			name:     "empty channel",
			channels: [][]float32{{}},
			rate:     44100,
		},
		{
			name:     "mismatched channel lengths",
			channels: [][]float32{valid, valid[:100]},
			rate:     44100,
		},
		{
			name:     "missing sample rate",
			channels: [][]float32{valid},
			rate:     0,
		},
		{
			name:     "unknown profile",
			channels: [][]float32{valid},
			rate:     44100,
			opts:     EncodeOptions{Profile: Profile(7)},
		},
		{
			name:     "level too high",
			channels: [][]float32{valid},
			rate:     44100,
			opts:     EncodeOptions{CompressionLevel: 10},
		},
		{
			name:     "negative level",
			channels: [][]float32{valid},
			rate:     44100,
			opts:     EncodeOptions{CompressionLevel: -1},
		},
		{
			name:     "negative duration",
			channels: [][]float32{valid},
			rate:     44100,
			meta:     &Metadata{Duration: -1},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			meta := testCase.meta
			if meta == nil {
				meta = &Metadata{}
			}
			meta.SampleRate = testCase.rate

			_, err := NewEncoder(testCase.opts).EncodeChannels(testCase.channels, meta)

			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Fatalf("expected EncodingError, got %v", err)
			}
		})
	}
}

func TestEncodeBufferUsesFormatSampleRate(t *testing.T) {
	buf := &audio.Float32Buffer{
		Data:   makeSine(440, 48000, 960),
		Format: &audio.Format{NumChannels: 1, SampleRate: 48000},
	}

	data, err := NewEncoder(DefaultEncodeOptions()).Encode(buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if res.Header.SampleRate != 48000 {
		t.Fatalf("sample rate mismatch: %d", res.Header.SampleRate)
	}
}

func TestEncodeProgressMonotonicAndComplete(t *testing.T) {
	type stageCall struct {
		stage   string
		percent float64
	}

	var calls []stageCall

	enc := NewEncoder(EncodeOptions{
		Profile:     ProfileBalanced,
		AIData:      []byte{1, 2, 3},
		DSPSettings: map[string]int{"gain": 3},
		Checksum:    true,
	})
	enc.OnProgress = func(stage string, percent float64) {
		calls = append(calls, stageCall{stage, percent})
	}

	_, err := enc.EncodeChannels([][]float32{makeSine(440, 44100, 441)}, &Metadata{SampleRate: 44100})
	if err != nil {
		t.Fatal(err)
	}

	wantStages := []string{
		StageHeader, StageMetadata, StageAudioCompress,
		StageAIData, StageDSPData, StageChecksum, StageFinalize,
	}

	if len(calls) != len(wantStages) {
		t.Fatalf("stage count mismatch: got %d want %d (%+v)", len(calls), len(wantStages), calls)
	}

	last := -1.0
	for i, call := range calls {
		if call.stage != wantStages[i] {
			t.Errorf("stage %d: got %q want %q", i, call.stage, wantStages[i])
		}

		if call.percent < last {
			t.Errorf("stage %q went backwards: %g after %g", call.stage, call.percent, last)
		}

		last = call.percent
	}

	if last != 100 {
		t.Fatalf("final progress is %g, want 100", last)
	}
}

func TestEncodeSplitsAudioChunks(t *testing.T) {
	channels := [][]float32{makeSine(440, 44100, 44100)}

	whole := encodeTestChannels(t, channels, 44100, EncodeOptions{Profile: ProfileLossless})
	split := encodeTestChannels(t, channels, 44100, EncodeOptions{
		Profile:           ProfileLossless,
		MaxAudioChunkSize: 1024,
	})

	chunks, err := parseTestChunks(split)
	if err != nil {
		t.Fatal(err)
	}

	audiCount := 0
	for _, ch := range chunks {
		if ch.id == "AUDI" {
			audiCount++

			if int(ch.size) > 1024 {
				t.Fatalf("AUDI chunk exceeds the size cap: %d bytes", ch.size)
			}
		}
	}

	if audiCount < 2 {
		t.Fatalf("expected multiple AUDI chunks, got %d", audiCount)
	}

	// Splitting is framing only; decoded audio must match the unsplit form.
	wholeRes, err := Decode(whole)
	if err != nil {
		t.Fatal(err)
	}

	splitRes, err := Decode(split)
	if err != nil {
		t.Fatal(err)
	}

	if wholeRes.FrameCount() != splitRes.FrameCount() {
		t.Fatalf("frame count differs: %d vs %d", wholeRes.FrameCount(), splitRes.FrameCount())
	}

	for i := range wholeRes.Channels[0] {
		if wholeRes.Channels[0][i] != splitRes.Channels[0][i] {
			t.Fatalf("sample %d differs between split and unsplit decode", i)
		}
	}
}

func TestEncodeSideChannelsPassThrough(t *testing.T) {
	aiData := []byte{0xAA, 0xBB, 0xCC}
	dsp := map[string]any{"eq": []int{1, 2, 3}}

	data, err := NewEncoder(EncodeOptions{
		Profile:     ProfileBalanced,
		AIData:      aiData,
		DSPSettings: dsp,
		Checksum:    true,
	}).EncodeChannels([][]float32{makeSine(440, 44100, 441)}, &Metadata{SampleRate: 44100})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(res.AIData, aiData) {
		t.Fatalf("AIDE payload mismatch: %v", res.AIData)
	}

	var decoded map[string]any
	if err := json.Unmarshal(res.DSPSettings, &decoded); err != nil {
		t.Fatalf("DSPS payload is not valid JSON: %v", err)
	}

	if _, ok := decoded["eq"]; !ok {
		t.Fatalf("DSPS payload lost content: %s", res.DSPSettings)
	}

	if res.Metadata.Enhancement == nil || !bytes.Equal(res.Metadata.Enhancement.SpatialData, aiData) {
		t.Fatalf("enhancement record not populated: %+v", res.Metadata.Enhancement)
	}
}

func TestEncodeEnhancementMetadataAsSource(t *testing.T) {
	meta := &Metadata{
		SampleRate: 44100,
		Enhancement: &Enhancement{
			SpatialData: []byte{1, 2},
			DSPSettings: json.RawMessage(`{"reverb":0.2}`),
		},
	}

	data, err := NewEncoder(EncodeOptions{Profile: ProfileLossless}).
		EncodeChannels([][]float32{makeSine(440, 44100, 441)}, meta)
	if err != nil {
		t.Fatal(err)
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(res.AIData, []byte{1, 2}) {
		t.Fatalf("AIDE payload mismatch: %v", res.AIData)
	}

	if string(res.DSPSettings) != `{"reverb":0.2}` {
		t.Fatalf("DSPS payload mismatch: %s", res.DSPSettings)
	}
}

func TestEncodeRejectsUnserializableDSP(t *testing.T) {
	_, err := NewEncoder(EncodeOptions{
		DSPSettings: func() {},
	}).EncodeChannels([][]float32{makeSine(440, 44100, 441)}, &Metadata{SampleRate: 44100})

	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
}

func TestEstimatedSizeIsUpperBound(t *testing.T) {
	channels := [][]float32{makeSine(440, 44100, 22050), makeSine(880, 44100, 22050)}
	meta := &Metadata{SampleRate: 44100, Title: "estimate probe", Artist: "someone"}

	enc := NewEncoder(EncodeOptions{Profile: ProfileLossless, Checksum: true})

	data, err := enc.EncodeChannels(channels, meta)
	if err != nil {
		t.Fatal(err)
	}

	estimate := enc.EstimatedSize(22050, 2, meta)
	if estimate < len(data) {
		t.Fatalf("estimate %d below actual size %d", estimate, len(data))
	}
}

func TestDurationFromMetadataOverridesComputed(t *testing.T) {
	data, err := NewEncoder(DefaultEncodeOptions()).
		EncodeChannels([][]float32{make([]float32, 44100)}, &Metadata{SampleRate: 44100, Duration: 2.5})
	if err != nil {
		t.Fatal(err)
	}

	res, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if res.Header.DurationMs != 2500 {
		t.Fatalf("duration mismatch: %d ms", res.Header.DurationMs)
	}
}
