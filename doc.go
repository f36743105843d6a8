// Package euph encodes and decodes EUPH audio containers.
//
// An EUPH container packages compressed PCM audio together with descriptive
// metadata and optional opaque side-channel payloads (AI-enhancement blobs,
// DSP-chain settings) into a single versioned, chunk-structured byte buffer.
// Audio is recovered losslessly relative to the quantization of the chosen
// profile, corruption is detected through CRC32 checksums, and chunk types
// the decoder does not understand are retained rather than rejected.
//
// The package exposes three entry points:
//
//   - Encoder: assembles a complete container from a PCM buffer, a Metadata
//     record, and optional side-channel payloads.
//   - Decoder: validates and parses a complete container back into PCM,
//     metadata, side-channel payloads, and an integrity report.
//   - StreamDecoder: an incremental variant that consumes a byte stream and
//     yields parsed chunks with progress as they arrive.
//
// The codec performs no I/O of its own; transporting the container bytes is
// the caller's responsibility. AI and DSP payloads are carried unmodified
// and never interpreted.
package euph
