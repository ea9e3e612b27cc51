// Package mapping implements spec.md §4.7 (channel coupling inverse) and
// ties the floor, residue, and codebook stages together into the single
// per-packet pipeline the Vorbis I format calls a "mapping": which
// submap decodes which channels' residue, which channel pairs are
// square-polar coupled, and in what order those steps run.
package mapping

import (
	"github.com/vorbisgo/vorbis/internal/codebook"
	"github.com/vorbisgo/vorbis/internal/floor1"
	"github.com/vorbisgo/vorbis/internal/residue"
)

// CouplingStep names one magnitude/angle channel pair to inverse-couple.
type CouplingStep struct {
	Magnitude int
	Angle     int
}

// Submap routes a group of channels to one floor configuration and one
// residue configuration.
type Submap struct {
	FloorIndex   int
	ResidueIndex int
}

// Config is one mapping_type 0 configuration decoded from the setup
// header (spec.md §4.10 HeaderSetup).
type Config struct {
	Submaps    []Submap
	ChannelMux []int // per channel, index into Submaps; single-submap streams default every entry to 0
	Coupling   []CouplingStep
}

// Decode runs one packet's full spectral reconstruction for every
// channel: floor decode, submap-routed residue decode, inverse coupling,
// and finally floor curve rendering (applied only after coupling, per
// spec.md §4.5's deferred-rendering note). The returned slices are ready
// for per-channel IMDCT.
func Decode(cfg *Config, floorConfigs []*floor1.Config, residueConfigs []*residue.Config, books []*codebook.Book, channels, n int, peek func(uint) (uint32, bool), advance func(uint)) ([][]float32, bool) {
	floors := make([]*floor1.Floor, channels)
	zeroChannel := make([]bool, channels)

	for ch := 0; ch < channels; ch++ {
		sub := cfg.Submaps[cfg.ChannelMux[ch]]
		fcfg := floorConfigs[sub.FloorIndex]
		f, ok := floor1.Decode(fcfg, books, peek, advance)
		if !ok {
			return nil, false
		}
		floors[ch] = f
		zeroChannel[ch] = f.Unused
	}

	// Re-enable coupled channels: if either side of a coupling step has
	// real data, both sides must still have their residue decoded (the
	// coupling math needs both operands), even though one side's floor
	// curve was flagged absent.
	reallyZero := append([]bool(nil), zeroChannel...)
	for _, step := range cfg.Coupling {
		if !zeroChannel[step.Magnitude] || !zeroChannel[step.Angle] {
			zeroChannel[step.Magnitude] = false
			zeroChannel[step.Angle] = false
		}
	}

	buffers := make([][]float32, channels)
	for ch := range buffers {
		buffers[ch] = make([]float32, n)
	}

	for submapIdx, sub := range cfg.Submaps {
		var members []int
		for ch := 0; ch < channels; ch++ {
			if cfg.ChannelMux[ch] == submapIdx {
				members = append(members, ch)
			}
		}
		if len(members) == 0 {
			continue
		}
		doNotDecode := make([]bool, len(members))
		for i, ch := range members {
			doNotDecode[i] = zeroChannel[ch]
		}

		rcfg := residueConfigs[sub.ResidueIndex]
		classBook := books[rcfg.ClassBookIndex]
		decoded, ok := residue.Decode(rcfg, classBook, books, len(members), doNotDecode, n, peek, advance)
		if !ok {
			return nil, false
		}
		for i, ch := range members {
			buffers[ch] = decoded[i]
		}
	}

	// Inverse coupling runs in reverse step order (spec.md §4.7).
	for i := len(cfg.Coupling) - 1; i >= 0; i-- {
		step := cfg.Coupling[i]
		m := buffers[step.Magnitude]
		a := buffers[step.Angle]
		for j := 0; j < n; j++ {
			var m2, a2 float32
			if m[j] > 0 {
				if a[j] > 0 {
					m2, a2 = m[j], m[j]-a[j]
				} else {
					a2, m2 = m[j], m[j]+a[j]
				}
			} else {
				if a[j] > 0 {
					m2, a2 = m[j], m[j]+a[j]
				} else {
					a2, m2 = m[j], m[j]-a[j]
				}
			}
			m[j], a[j] = m2, a2
		}
	}

	for ch := 0; ch < channels; ch++ {
		if reallyZero[ch] {
			for i := range buffers[ch] {
				buffers[ch][i] = 0
			}
			continue
		}
		sub := cfg.Submaps[cfg.ChannelMux[ch]]
		fcfg := floorConfigs[sub.FloorIndex]
		floors[ch].Render(fcfg, buffers[ch], n)
	}

	return buffers, true
}
