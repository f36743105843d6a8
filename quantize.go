package euph

import "math"

const (
	scalePCMInt16 = 32768.0
	maxPCMInt16   = 32767
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

func float32ToPCMInt16(value float32) int16 {
	value = clampFloat32(value, -1, 1)

	sample := min(int64(math.Round(float64(value)*scalePCMInt16)), maxPCMInt16)
	if sample < -scalePCMInt16 {
		sample = -scalePCMInt16
	}

	return int16(sample)
}

func pcmInt16ToFloat32(sample int16) float32 {
	return float32(float64(sample) / scalePCMInt16)
}

// quantizeScaled rounds a [-1,1] sample onto a signed grid with the given
// positive scale, clamping to the representable range.
func quantizeScaled(value float32, scale float64) int32 {
	value = clampFloat32(value, -1, 1)

	sample := min(int64(math.Round(float64(value)*scale)), int64(scale)-1)
	if sample < -int64(scale) {
		sample = -int64(scale)
	}

	return int32(sample)
}
