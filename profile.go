package euph

import (
	"errors"
	"fmt"
)

// Profile identifies a compression/quantization strategy. Together with a
// compression level of 0-9 it fully determines how audio samples are packed
// into AUDI chunk payloads.
type Profile uint8

const (
	// ProfileLossless quantizes samples to 16-bit signed integers and wraps
	// them in DEFLATE at the configured level (0 stores, 9 is maximum effort).
	ProfileLossless Profile = 0
	// ProfileBalanced uses the identical 16-bit quantization but always
	// compresses the quantized stream.
	ProfileBalanced Profile = 1
	// ProfileCompact reduces the quantization depth as the level rises,
	// trading fidelity for size.
	ProfileCompact Profile = 2
)

// ErrUnknownProfile is returned when a profile name or value is not one of
// lossless, balanced, or compact.
var ErrUnknownProfile = errors.New("unknown compression profile")

// MaxCompressionLevel is the largest accepted compression level.
const MaxCompressionLevel = 9

func (p Profile) valid() bool {
	switch p {
	case ProfileLossless, ProfileBalanced, ProfileCompact:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface.
func (p Profile) String() string {
	switch p {
	case ProfileLossless:
		return "lossless"
	case ProfileBalanced:
		return "balanced"
	case ProfileCompact:
		return "compact"
	default:
		return fmt.Sprintf("profile(%d)", uint8(p))
	}
}

// ParseProfile maps a profile name to its Profile value.
func ParseProfile(name string) (Profile, error) {
	switch name {
	case "lossless":
		return ProfileLossless, nil
	case "balanced":
		return ProfileBalanced, nil
	case "compact":
		return ProfileCompact, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}
