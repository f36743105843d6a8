package euph

import "fmt"

// FormatError reports structurally malformed container input: a bad magic
// signature, a truncated chunk, or a missing required chunk. Structural
// errors abort decoding immediately.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "euph: " + e.Reason
}

// UnsupportedVersionError reports a container whose major version is newer
// than this decoder supports. It is returned before any chunk is parsed.
type UnsupportedVersionError struct {
	FileMajor      uint8
	SupportedMajor uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("euph: unsupported container version %d (decoder supports up to %d)",
		e.FileMajor, e.SupportedMajor)
}

// EncodingError reports invalid encoder input, such as an empty PCM buffer,
// per-channel arrays of different lengths, or a negative duration.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "euph: " + e.Reason
}
