package euph

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// Encode stage names reported through ProgressFunc.
const (
	StageHeader        = "header"
	StageMetadata      = "metadata"
	StageAudioCompress = "audio-compress"
	StageAIData        = "ai-data"
	StageDSPData       = "dsp-data"
	StageChecksum      = "checksum"
	StageFinalize      = "finalize"
)

// ProgressFunc receives named encode stages with a monotonically increasing
// percentage in [0,100].
type ProgressFunc func(stage string, percent float64)

// EncodeOptions control container assembly.
type EncodeOptions struct {
	Profile Profile
	// CompressionLevel ranges 0-9; its meaning depends on the profile.
	CompressionLevel int
	// MaxAudioChunkSize splits the compressed audio payload across multiple
	// AUDI chunks of at most this many bytes. Splitting is purely a
	// size-management mechanism and never changes decoded output. Zero
	// writes a single AUDI chunk.
	MaxAudioChunkSize int
	// AIData is an opaque, already-serialized enhancement blob written
	// through unmodified as the AIDE chunk.
	AIData []byte
	// DSPSettings is serialized to UTF-8 JSON as the DSPS chunk and never
	// introspected. A json.RawMessage passes through as-is.
	DSPSettings any
	// Checksum appends a CHKS chunk covering all prior chunk payloads.
	Checksum bool
}

// DefaultEncodeOptions returns the options used by the cmd tools: balanced
// profile, mid compression, checksummed output.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Profile:          ProfileBalanced,
		CompressionLevel: 6,
		Checksum:         true,
	}
}

// Encoder assembles EUPH containers. It holds no state across calls, so a
// single Encoder may serve concurrent, independent Encode calls.
type Encoder struct {
	Options    EncodeOptions
	OnProgress ProgressFunc
}

// NewEncoder creates an encoder with the passed options.
func NewEncoder(opts EncodeOptions) *Encoder {
	return &Encoder{Options: opts}
}

// Encode assembles a container from an interleaved PCM buffer and a metadata
// record. The sample rate comes from the buffer format, falling back to
// meta.SampleRate.
func (e *Encoder) Encode(buf *audio.Float32Buffer, meta *Metadata) ([]byte, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, &EncodingError{Reason: "empty PCM input"}
	}

	numChans := 1
	sampleRate := 0

	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			numChans = buf.Format.NumChannels
		}

		sampleRate = buf.Format.SampleRate
	}

	if sampleRate == 0 && meta != nil {
		sampleRate = meta.SampleRate
	}

	return e.encode(buf.Data, sampleRate, numChans, meta)
}

// EncodeChannels assembles a container from per-channel sample arrays,
// interleaving them frame by frame. The sample rate comes from
// meta.SampleRate.
func (e *Encoder) EncodeChannels(channels [][]float32, meta *Metadata) ([]byte, error) {
	samples, err := interleave(channels)
	if err != nil {
		return nil, err
	}

	sampleRate := 0
	if meta != nil {
		sampleRate = meta.SampleRate
	}

	return e.encode(samples, sampleRate, len(channels), meta)
}

func (e *Encoder) encode(samples []float32, sampleRate, numChans int, meta *Metadata) ([]byte, error) {
	opts := e.Options

	switch {
	case len(samples) == 0:
		return nil, &EncodingError{Reason: "empty PCM input"}
	case numChans < 1:
		return nil, &EncodingError{Reason: "channel count must be at least 1"}
	case len(samples)%numChans != 0:
		return nil, &EncodingError{Reason: "sample count not divisible by channel count"}
	case sampleRate <= 0:
		return nil, &EncodingError{Reason: "missing sample rate"}
	case !opts.Profile.valid():
		return nil, &EncodingError{Reason: fmt.Sprintf("unknown profile %d", opts.Profile)}
	case opts.CompressionLevel < 0 || opts.CompressionLevel > MaxCompressionLevel:
		return nil, &EncodingError{Reason: fmt.Sprintf("compression level %d out of range 0-%d", opts.CompressionLevel, MaxCompressionLevel)}
	case meta != nil && meta.Duration < 0:
		return nil, &EncodingError{Reason: "negative duration"}
	}

	progress := &progressTracker{fn: e.OnProgress}
	frames := len(samples) / numChans

	durationMs := uint32(math.Round(float64(frames) / float64(sampleRate) * 1000))
	if meta != nil && meta.Duration > 0 {
		durationMs = uint32(math.Round(meta.Duration * 1000))
	}

	bitDepth := uint16(16)
	if meta != nil && meta.BitDepth > 0 {
		bitDepth = uint16(meta.BitDepth)
	}

	codec, err := codecFor(opts.Profile)
	if err != nil {
		return nil, err
	}

	progress.emit(StageHeader, 5)

	metaPayload, err := encodeMetaPayload(meta)
	if err != nil {
		return nil, err
	}

	progress.emit(StageMetadata, 15)

	audioPayload, err := codec.Compress(samples, opts.CompressionLevel)
	if err != nil {
		return nil, err
	}

	progress.emit(StageAudioCompress, 70)

	head := Header{
		SampleRate:       uint32(sampleRate),
		ChannelCount:     uint16(numChans),
		BitDepth:         bitDepth,
		DurationMs:       durationMs,
		Profile:          opts.Profile,
		CompressionLevel: uint8(opts.CompressionLevel),
		AudioBytes:       uint32(len(audioPayload)),
	}

	chunks := []Chunk{
		{ID: CIDHead, Data: encodeHeadPayload(head)},
		{ID: CIDMeta, Data: metaPayload},
	}

	for _, part := range splitAudioPayload(audioPayload, opts.MaxAudioChunkSize) {
		chunks = append(chunks, Chunk{ID: CIDAudi, Data: part})
	}

	if aiData := e.aiPayload(meta); aiData != nil {
		chunks = append(chunks, Chunk{ID: CIDAide, Data: aiData})
		progress.emit(StageAIData, 78)
	}

	dspData, err := e.dspPayload(meta)
	if err != nil {
		return nil, err
	}

	if dspData != nil {
		chunks = append(chunks, Chunk{ID: CIDDsps, Data: dspData})
		progress.emit(StageDSPData, 85)
	}

	if opts.Checksum {
		aggregate, entries := crcChunks(chunks)
		chunks = append(chunks, Chunk{ID: CIDChks, Data: encodeChksPayload(aggregate, entries)})
		progress.emit(StageChecksum, 92)
	}

	out := assembleContainer(chunks)

	progress.emit(StageFinalize, 100)

	return out, nil
}

// EstimatedSize returns an upper-bound estimate of the encoded container
// size for the given PCM shape, before compression gains.
func (e *Encoder) EstimatedSize(frames, numChans int, meta *Metadata) int {
	rawAudio := frames * numChans * 2
	// deflate worst case adds a small per-block overhead on top of stored
	// data.
	audioBound := rawAudio + rawAudio>>12 + 64

	metaPayload, err := encodeMetaPayload(meta)
	if err != nil {
		metaPayload = nil
	}

	size := containerHeaderSize
	size += chunkHeaderSize + headPayloadSize
	size += chunkHeaderSize + len(metaPayload)
	size += chunkHeaderSize + audioBound

	if aiData := e.aiPayload(meta); aiData != nil {
		size += chunkHeaderSize + len(aiData)
	}

	if dspData, err := e.dspPayload(meta); err == nil && dspData != nil {
		size += chunkHeaderSize + len(dspData)
	}

	if e.Options.Checksum {
		size += chunkHeaderSize + chksMinPayloadSize + 6*chksEntrySize
	}

	return size
}

// aiPayload picks the AIDE payload: explicit options first, then the
// metadata enhancement record.
func (e *Encoder) aiPayload(meta *Metadata) []byte {
	if e.Options.AIData != nil {
		return e.Options.AIData
	}

	if meta != nil && meta.Enhancement != nil {
		return meta.Enhancement.SpatialData
	}

	return nil
}

func (e *Encoder) dspPayload(meta *Metadata) ([]byte, error) {
	settings := e.Options.DSPSettings
	if settings == nil && meta != nil && meta.Enhancement != nil && meta.Enhancement.DSPSettings != nil {
		settings = meta.Enhancement.DSPSettings
	}

	if settings == nil {
		return nil, nil
	}

	out, err := json.Marshal(settings)
	if err != nil {
		return nil, &EncodingError{Reason: fmt.Sprintf("DSP settings not JSON-serializable: %v", err)}
	}

	return out, nil
}

func assembleContainer(chunks []Chunk) []byte {
	size := containerHeaderSize
	for _, ch := range chunks {
		size += chunkHeaderSize + len(ch.Data)
	}

	out := make([]byte, 0, size)
	out = append(out, Magic...)
	out = append(out, VersionMajor, VersionMinor)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(chunks)))

	for _, ch := range chunks {
		out = appendChunk(out, ch.ID, ch.Data)
	}

	return out
}

func splitAudioPayload(payload []byte, maxSize int) [][]byte {
	if maxSize <= 0 || len(payload) <= maxSize {
		return [][]byte{payload}
	}

	parts := make([][]byte, 0, len(payload)/maxSize+1)

	for len(payload) > maxSize {
		parts = append(parts, payload[:maxSize])
		payload = payload[maxSize:]
	}

	return append(parts, payload)
}

// interleave merges per-channel sample arrays into frame order (L, R, L, R).
func interleave(channels [][]float32) ([]float32, error) {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil, &EncodingError{Reason: "empty PCM input"}
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, &EncodingError{Reason: "per-channel sample counts disagree"}
		}
	}

	out := make([]float32, frames*len(channels))
	for i := range frames {
		for j, ch := range channels {
			out[i*len(channels)+j] = ch[i]
		}
	}

	return out, nil
}

// progressTracker clamps reported percentages so they never move backwards.
type progressTracker struct {
	fn   ProgressFunc
	last float64
}

func (p *progressTracker) emit(stage string, percent float64) {
	if percent < p.last {
		percent = p.last
	}

	p.last = percent

	if p.fn != nil {
		p.fn(stage, percent)
	}
}
