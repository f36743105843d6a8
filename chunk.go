package euph

import "encoding/binary"

var (
	// CIDHead is the chunk ID for the fixed binary header chunk.
	CIDHead = [4]byte{'H', 'E', 'A', 'D'}
	// CIDMeta is the chunk ID for the JSON metadata chunk.
	CIDMeta = [4]byte{'M', 'E', 'T', 'A'}
	// CIDAudi is the chunk ID for a compressed audio chunk.
	CIDAudi = [4]byte{'A', 'U', 'D', 'I'}
	// CIDAide is the chunk ID for the opaque AI-enhancement chunk.
	CIDAide = [4]byte{'A', 'I', 'D', 'E'}
	// CIDDsps is the chunk ID for the opaque DSP-settings chunk.
	CIDDsps = [4]byte{'D', 'S', 'P', 'S'}
	// CIDChks is the chunk ID for the integrity checksum chunk.
	CIDChks = [4]byte{'C', 'H', 'K', 'S'}
)

// chunkHeaderSize covers the 4-byte type tag and the little-endian uint32
// payload length.
const chunkHeaderSize = 8

// Chunk is a typed, length-prefixed block within an EUPH container.
// Size mirrors len(Data); payload bytes are carried unmodified.
type Chunk struct {
	ID   [4]byte
	Size uint32
	Data []byte
}

// Tag returns the chunk type as a string with NUL padding removed.
func (c Chunk) Tag() string {
	return nullTermStr(c.ID[:])
}

// Clone returns a deep copy of the chunk.
func (c Chunk) Clone() Chunk {
	out := c
	out.Data = append([]byte(nil), c.Data...)

	return out
}

// chunkID builds a 4-byte chunk tag from a string, NUL-padding short tags.
func chunkID(tag string) [4]byte {
	var id [4]byte

	copy(id[:], tag)

	return id
}

// appendChunk serializes one chunk onto dst: tag, little-endian uint32
// payload length, payload bytes unmodified.
func appendChunk(dst []byte, id [4]byte, payload []byte) []byte {
	dst = append(dst, id[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))

	return append(dst, payload...)
}

// readChunk parses the chunk starting at offset and returns it together with
// the offset of the next chunk. A declared payload size that exceeds the
// remaining bytes fails with a FormatError.
func readChunk(data []byte, offset int) (Chunk, int, error) {
	if offset < 0 || offset+chunkHeaderSize > len(data) {
		return Chunk{}, 0, &FormatError{Reason: "truncated chunk"}
	}

	var id [4]byte

	copy(id[:], data[offset:offset+4])

	size := binary.LittleEndian.Uint32(data[offset+4 : offset+chunkHeaderSize])

	end := offset + chunkHeaderSize + int(size)
	if end > len(data) || end < offset {
		return Chunk{}, 0, &FormatError{Reason: "truncated chunk"}
	}

	payload := append([]byte(nil), data[offset+chunkHeaderSize:end]...)

	return Chunk{ID: id, Size: size, Data: payload}, end, nil
}
