package euph

import (
	"encoding/binary"
	"hash/crc32"
)

// integrityEntry pairs a chunk tag with the CRC32 of its payload.
type integrityEntry struct {
	ID  [4]byte
	CRC uint32
}

// chksEntrySize is the serialized size of one per-chunk entry.
const chksEntrySize = 8

// chksMinPayloadSize covers the aggregate CRC32 and the covered-chunk count.
// Minimal writers may stop there; per-chunk entries follow when present.
const chksMinPayloadSize = 8

// IntegrityReport summarizes checksum verification for a decoded container.
// Integrity problems are reported here and never abort decoding: a damaged
// optional chunk must not block playback of otherwise intact audio.
type IntegrityReport struct {
	// Verified is true when the container carried a CHKS chunk.
	Verified bool
	// ChecksumMatch is true when the recomputed aggregate CRC32 over all
	// non-CHKS payloads matches the recorded value.
	ChecksumMatch bool
	// CorruptedChunks lists the tags of chunks whose recomputed payload
	// CRC32 disagrees with the per-chunk value recorded at write time.
	CorruptedChunks []string
	// ChunksCovered is the chunk count recorded in the CHKS chunk.
	ChunksCovered uint32
}

// crcChunks computes the aggregate CRC32 over the concatenation of the
// passed chunk payloads in order, plus one CRC32 per payload.
func crcChunks(chunks []Chunk) (uint32, []integrityEntry) {
	var aggregate uint32

	entries := make([]integrityEntry, 0, len(chunks))

	for _, ch := range chunks {
		aggregate = crc32.Update(aggregate, crc32.IEEETable, ch.Data)
		entries = append(entries, integrityEntry{
			ID:  ch.ID,
			CRC: crc32.ChecksumIEEE(ch.Data),
		})
	}

	return aggregate, entries
}

func encodeChksPayload(aggregate uint32, entries []integrityEntry) []byte {
	out := make([]byte, 0, chksMinPayloadSize+len(entries)*chksEntrySize)

	out = binary.LittleEndian.AppendUint32(out, aggregate)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))

	for _, e := range entries {
		out = append(out, e.ID[:]...)
		out = binary.LittleEndian.AppendUint32(out, e.CRC)
	}

	return out
}

func parseChksPayload(data []byte) (uint32, uint32, []integrityEntry, error) {
	if len(data) < chksMinPayloadSize {
		return 0, 0, nil, &FormatError{Reason: "short CHKS chunk"}
	}

	aggregate := binary.LittleEndian.Uint32(data[0:4])
	count := binary.LittleEndian.Uint32(data[4:8])

	rest := data[chksMinPayloadSize:]
	if len(rest) == 0 {
		return aggregate, count, nil, nil
	}

	n := len(rest) / chksEntrySize
	if n > int(count) {
		n = int(count)
	}

	entries := make([]integrityEntry, 0, n)

	for i := 0; i < n; i++ {
		var e integrityEntry

		copy(e.ID[:], rest[i*chksEntrySize:])
		e.CRC = binary.LittleEndian.Uint32(rest[i*chksEntrySize+4:])

		entries = append(entries, e)
	}

	return aggregate, count, entries, nil
}
