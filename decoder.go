package euph

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/go-audio/audio"
)

// DecodeResult holds everything recovered from a container.
type DecodeResult struct {
	// Metadata combines the META chunk's descriptive fields with the
	// technical fields from HEAD.
	Metadata *Metadata
	// Header is the parsed HEAD chunk payload.
	Header Header
	// Channels holds the decoded PCM, de-interleaved into one array per
	// channel. It is nil when the audio payload could not be recovered
	// from a corrupted container.
	Channels [][]float32
	// AIData is the opaque AIDE payload, nil when absent.
	AIData []byte
	// DSPSettings is the opaque DSPS payload, nil when absent.
	DSPSettings json.RawMessage
	// Integrity reports checksum verification. Mismatches never abort
	// decoding.
	Integrity IntegrityReport
	// Chunks is the full ordered chunk list, including types this decoder
	// does not understand, so callers can round-trip them.
	Chunks []Chunk
	// Warnings carries non-fatal compatibility and recovery notes.
	Warnings []string
}

// FrameCount returns the number of decoded frames per channel.
func (r *DecodeResult) FrameCount() int {
	if r == nil || len(r.Channels) == 0 {
		return 0
	}

	return len(r.Channels[0])
}

// Buffer re-interleaves the decoded channels into a Float32Buffer.
func (r *DecodeResult) Buffer() *audio.Float32Buffer {
	if r == nil || len(r.Channels) == 0 {
		return nil
	}

	data, err := interleave(r.Channels)
	if err != nil {
		return nil
	}

	return &audio.Float32Buffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: len(r.Channels),
			SampleRate:  int(r.Header.SampleRate),
		},
		SourceBitDepth: int(r.Header.BitDepth),
	}
}

// Decoder parses EUPH containers. It holds no state across calls, so a
// single Decoder may serve concurrent, independent Decode calls.
type Decoder struct {
	chunks *chunkRegistry
}

// NewDecoder creates a decoder with the default chunk handlers.
func NewDecoder() *Decoder {
	return &Decoder{chunks: newDefaultChunkRegistry()}
}

// Decode is a convenience wrapper around a default Decoder.
func Decode(data []byte) (*DecodeResult, error) {
	return NewDecoder().Decode(data)
}

// Decode validates and parses a complete container. Structural problems
// (bad magic, truncated chunks, missing required chunks) fail with a
// FormatError; an unsupported major version fails with an
// UnsupportedVersionError before any chunk is parsed. Checksum mismatches
// are reported through the result's Integrity field and never abort.
func (d *Decoder) Decode(data []byte) (*DecodeResult, error) {
	if len(data) < containerHeaderSize {
		return nil, &FormatError{Reason: "truncated container header"}
	}

	if string(data[:4]) != Magic {
		return nil, &FormatError{Reason: "bad magic"}
	}

	major, minor := data[4], data[5]
	if major > VersionMajor {
		return nil, &UnsupportedVersionError{FileMajor: major, SupportedMajor: VersionMajor}
	}

	res := &DecodeResult{}

	if minor != VersionMinor {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("container minor version %d differs from decoder minor version %d", minor, VersionMinor))
	}

	registry := d.chunks
	if registry == nil {
		registry = newDefaultChunkRegistry()
	}

	chunkCount := binary.LittleEndian.Uint32(data[6:containerHeaderSize])
	st := &decodeState{}
	offset := containerHeaderSize

	for i := uint32(0); i < chunkCount; i++ {
		chunk, next, err := readChunk(data, offset)
		if err != nil {
			return nil, err
		}

		offset = next

		res.Chunks = append(res.Chunks, chunk)

		if _, err := registry.Decode(st, chunk); err != nil {
			return nil, err
		}
	}

	if !st.headSeen || !st.metaSeen || len(st.audio) == 0 {
		return nil, &FormatError{Reason: "missing required chunk"}
	}

	verifyIntegrity(res, st)

	res.AIData = st.aide
	res.DSPSettings = st.dsps

	head, err := parseHeadPayload(st.headRaw)
	if err != nil {
		// Without a readable header the audio is unrecoverable, but a
		// container whose CHKS chunk explains the damage still yields
		// its metadata and side-channel payloads.
		if !res.Integrity.Verified {
			return nil, err
		}

		res.Warnings = append(res.Warnings, "header could not be parsed: "+err.Error())
		res.Metadata = d.bestEffortMetadata(st)

		return res, nil
	}

	res.Header = head

	meta := &Metadata{}
	if err := parseMetaPayload(st.metaRaw, meta); err != nil {
		if !res.Integrity.Verified {
			return nil, err
		}

		res.Warnings = append(res.Warnings, "metadata could not be parsed: "+err.Error())
	}

	meta.Duration = float64(res.Header.DurationMs) / 1000
	meta.SampleRate = int(res.Header.SampleRate)
	meta.ChannelCount = int(res.Header.ChannelCount)
	meta.BitDepth = int(res.Header.BitDepth)
	meta.Profile = res.Header.Profile

	attachSideChannels(meta, st)

	res.Metadata = meta

	samples, err := decompressAudio(st, res.Header)
	if err != nil {
		// Best-effort recovery: when a CHKS chunk explains the damage,
		// metadata and side-channel payloads are still returned.
		if res.Integrity.Verified {
			res.Warnings = append(res.Warnings, "audio payload could not be recovered: "+err.Error())
			return res, nil
		}

		return nil, err
	}

	numChans := int(res.Header.ChannelCount)

	if len(samples)%numChans != 0 {
		if !res.Integrity.Verified {
			return nil, &FormatError{Reason: "audio length does not match channel count"}
		}

		res.Warnings = append(res.Warnings, "audio payload truncated to whole frames")
		samples = samples[:len(samples)-len(samples)%numChans]
	}

	res.Channels = deinterleave(samples, numChans)

	return res, nil
}

// bestEffortMetadata recovers what it can from the META chunk when the
// header is unreadable.
func (d *Decoder) bestEffortMetadata(st *decodeState) *Metadata {
	meta := &Metadata{}
	if err := parseMetaPayload(st.metaRaw, meta); err != nil {
		return nil
	}

	attachSideChannels(meta, st)

	return meta
}

func attachSideChannels(meta *Metadata, st *decodeState) {
	if !st.aideSeen && !st.dspsSeen {
		return
	}

	if meta.Enhancement == nil {
		meta.Enhancement = &Enhancement{}
	}

	meta.Enhancement.SpatialData = st.aide
	meta.Enhancement.DSPSettings = st.dsps
}

// decompressAudio concatenates all AUDI payloads in encounter order and
// reverses the profile compression recorded in HEAD.
func decompressAudio(st *decodeState, head Header) ([]float32, error) {
	codec, err := codecFor(head.Profile)
	if err != nil {
		return nil, err
	}

	size := 0
	for _, part := range st.audio {
		size += len(part)
	}

	payload := make([]byte, 0, size)
	for _, part := range st.audio {
		payload = append(payload, part...)
	}

	return codec.Decompress(payload, int(head.CompressionLevel))
}

// verifyIntegrity recomputes checksums against the CHKS chunk, if present.
// A malformed or mismatching CHKS chunk is reported, never fatal.
func verifyIntegrity(res *DecodeResult, st *decodeState) {
	if !st.chksSeen {
		res.Integrity = IntegrityReport{}
		return
	}

	res.Integrity.Verified = true

	recorded, covered, entries, err := parseChksPayload(st.chks)
	if err != nil {
		res.Integrity.ChecksumMatch = false
		res.Warnings = append(res.Warnings, "malformed CHKS chunk")

		return
	}

	res.Integrity.ChunksCovered = covered

	checked := make([]Chunk, 0, len(res.Chunks))
	for _, ch := range res.Chunks {
		if ch.ID == CIDChks {
			continue
		}

		checked = append(checked, ch)
	}

	aggregate, actual := crcChunks(checked)
	res.Integrity.ChecksumMatch = aggregate == recorded && int(covered) == len(checked)

	for i, e := range entries {
		if i >= len(actual) {
			break
		}

		if e.ID != actual[i].ID || e.CRC != actual[i].CRC {
			res.Integrity.CorruptedChunks = append(res.Integrity.CorruptedChunks, nullTermStr(actual[i].ID[:]))
		}
	}
}

// deinterleave splits frame-ordered samples into one array per channel.
func deinterleave(samples []float32, numChans int) [][]float32 {
	frames := len(samples) / numChans

	out := make([][]float32, numChans)
	for j := range out {
		out[j] = make([]float32, frames)
	}

	for i := range frames {
		for j := range numChans {
			out[j][i] = samples[i*numChans+j]
		}
	}

	return out
}
