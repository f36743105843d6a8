package euph

// Magic identifies an EUPH container.
const Magic = "EUPH"

// Container format version written by this encoder. A decoder rejects files
// with a larger major version and notes a differing minor version without
// failing.
const (
	VersionMajor uint8 = 1
	VersionMinor uint8 = 0
)

// FileExtension is the conventional extension for EUPH container files.
const FileExtension = ".euph"

// containerHeaderSize covers the magic, both version bytes, and the
// little-endian uint32 chunk count.
const containerHeaderSize = 10

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}
