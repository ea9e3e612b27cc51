// pcm.go implements the integer-PCM convenience path spec.md §6 names
// alongside the primary get_frame_float API: most callers eventually
// want interleaved int16 rather than planar float32.

package vorbis

import "math"

// Int16 interleaves and clamps planar float32 PCM (one slice per
// channel, as returned by GetFrameFloat) into a single interleaved
// int16 slice, the format most playback APIs expect.
func Int16(planar [][]float32) []int16 {
	if len(planar) == 0 {
		return nil
	}
	channels := len(planar)
	samples := len(planar[0])
	out := make([]int16, samples*channels)
	for ch := 0; ch < channels; ch++ {
		src := planar[ch]
		for i := 0; i < samples && i < len(src); i++ {
			out[i*channels+ch] = floatToInt16(src[i])
		}
	}
	return out
}

func floatToInt16(f float32) int16 {
	v := float64(f) * 32768
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(math.Round(v))
}
