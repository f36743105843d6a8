package euph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

// testChunk mirrors the wire framing of one chunk; payloadOffset is the
// position of the first payload byte within the container buffer.
type testChunk struct {
	id            string
	size          uint32
	data          []byte
	payloadOffset int
}

var (
	errContainerTooSmall  = errors.New("container too small")
	errInvalidEuphHdr     = errors.New("invalid EUPH header")
	errChunkExceedsBuffer = errors.New("chunk exceeds buffer size")
)

func parseTestChunks(data []byte) ([]testChunk, error) {
	if len(data) < containerHeaderSize {
		return nil, errContainerTooSmall
	}

	if string(data[0:4]) != Magic {
		return nil, errInvalidEuphHdr
	}

	count := binary.LittleEndian.Uint32(data[6:10])
	chunks := make([]testChunk, 0, count)

	offset := containerHeaderSize
	for i := uint32(0); i < count; i++ {
		if offset+chunkHeaderSize > len(data) {
			return nil, errChunkExceedsBuffer
		}

		id := nullTermStr(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += chunkHeaderSize

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsBuffer, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload, payloadOffset: offset})

		offset = end
	}

	return chunks, nil
}

func findTestChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

func makeSine(freq float64, rate, frames int) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}

	return out
}

func encodeTestChannels(t *testing.T, channels [][]float32, rate int, opts EncodeOptions) []byte {
	t.Helper()

	data, err := NewEncoder(opts).EncodeChannels(channels, &Metadata{SampleRate: rate})
	if err != nil {
		t.Fatalf("encode test channels: %v", err)
	}

	return data
}

// rebuildContainer reassembles a container from a chunk list, fixing the
// declared chunk count. Checksums are not recomputed.
func rebuildContainer(chunks []Chunk) []byte {
	return assembleContainer(chunks)
}
