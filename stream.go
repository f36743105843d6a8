package euph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ChunkEvent is one fully-received chunk yielded by a StreamDecoder.
type ChunkEvent struct {
	// Tag is the chunk type with NUL padding removed.
	Tag string
	// Chunk carries the framed chunk with its raw payload.
	Chunk Chunk
	// Header is non-nil on HEAD events.
	Header *Header
	// Metadata is non-nil on META events and holds the descriptive fields
	// only; the technical fields come with the Header.
	Metadata *Metadata
	// Progress is processed-audio-bytes over total-expected-audio-bytes as
	// a value in [0,100]. It stays 0 until the HEAD chunk has been seen.
	Progress float64
}

// StreamDecoder incrementally parses a container from a byte stream without
// buffering the whole file. It is pull-based: no input is read until Next is
// called, so a consumer that stops pulling stops the decoder from reading
// further. A StreamDecoder assumes exactly one producer and one consumer; it
// is not safe for concurrent use and cannot be restarted mid-stream.
type StreamDecoder struct {
	r       io.Reader
	carry   []byte
	scratch []byte

	headerDone bool
	chunkCount uint32
	chunksSeen uint32

	head      *Header
	audioSeen int

	warnings []string
	err      error
}

// NewStreamDecoder creates a streaming decoder reading from r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{
		r:       r,
		scratch: make([]byte, 8192),
	}
}

// Next returns the next fully-received chunk in file order. It never
// interprets a partial chunk: input is accumulated until the declared chunk
// size is available. Next returns io.EOF once the declared chunk count has
// been delivered; any other error is terminal and repeats on later calls.
func (s *StreamDecoder) Next() (*ChunkEvent, error) {
	if s.err != nil {
		return nil, s.err
	}

	if !s.headerDone {
		if err := s.readContainerHeader(); err != nil {
			s.err = err
			return nil, err
		}
	}

	if s.chunksSeen >= s.chunkCount {
		s.err = io.EOF
		return nil, io.EOF
	}

	if err := s.fill(chunkHeaderSize); err != nil {
		s.err = err
		return nil, err
	}

	size := binary.LittleEndian.Uint32(s.carry[4:chunkHeaderSize])
	need := chunkHeaderSize + int(size)

	if err := s.fill(need); err != nil {
		s.err = err
		return nil, err
	}

	var id [4]byte

	copy(id[:], s.carry[:4])

	payload := append([]byte(nil), s.carry[chunkHeaderSize:need]...)
	s.advance(need)
	s.chunksSeen++

	chunk := Chunk{ID: id, Size: size, Data: payload}
	event := &ChunkEvent{Tag: chunk.Tag(), Chunk: chunk}

	switch id {
	case CIDHead:
		head, err := parseHeadPayload(payload)
		if err != nil {
			s.err = err
			return nil, err
		}

		if s.head == nil {
			s.head = &head
		}

		event.Header = &head
	case CIDMeta:
		meta := &Metadata{}
		if err := parseMetaPayload(payload, meta); err != nil {
			s.err = err
			return nil, err
		}

		event.Metadata = meta
	case CIDAudi:
		s.audioSeen += len(payload)
	}

	event.Progress = s.progress()

	return event, nil
}

// Warnings returns non-fatal compatibility notes collected so far.
func (s *StreamDecoder) Warnings() []string {
	return s.warnings
}

func (s *StreamDecoder) readContainerHeader() error {
	if err := s.fill(containerHeaderSize); err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			return &FormatError{Reason: "truncated container header"}
		}

		return err
	}

	if string(s.carry[:4]) != Magic {
		return &FormatError{Reason: "bad magic"}
	}

	major, minor := s.carry[4], s.carry[5]
	if major > VersionMajor {
		return &UnsupportedVersionError{FileMajor: major, SupportedMajor: VersionMajor}
	}

	if minor != VersionMinor {
		s.warnings = append(s.warnings,
			fmt.Sprintf("container minor version %d differs from decoder minor version %d", minor, VersionMinor))
	}

	s.chunkCount = binary.LittleEndian.Uint32(s.carry[6:containerHeaderSize])
	s.advance(containerHeaderSize)
	s.headerDone = true

	return nil
}

// fill accumulates carry-over bytes until at least n are available, reading
// from the underlying stream one segment at a time.
func (s *StreamDecoder) fill(n int) error {
	for len(s.carry) < n {
		m, err := s.r.Read(s.scratch)
		if m > 0 {
			s.carry = append(s.carry, s.scratch[:m]...)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(s.carry) >= n {
					return nil
				}

				return &FormatError{Reason: "truncated chunk"}
			}

			return fmt.Errorf("failed to read container stream: %w", err)
		}
	}

	return nil
}

func (s *StreamDecoder) advance(n int) {
	remaining := copy(s.carry, s.carry[n:])
	s.carry = s.carry[:remaining]
}

func (s *StreamDecoder) progress() float64 {
	if s.head == nil {
		return 0
	}

	if s.head.AudioBytes > 0 {
		pct := float64(s.audioSeen) / float64(s.head.AudioBytes) * 100
		if pct > 100 {
			pct = 100
		}

		return pct
	}

	// Writers that left AudioBytes unset get coarse chunk-count progress.
	return float64(s.chunksSeen) / float64(s.chunkCount) * 100
}
