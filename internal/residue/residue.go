// Package residue implements spec.md §4.6: partitioned VQ decode of the
// three Vorbis residue types into per-channel spectral buffers.
package residue

import "github.com/vorbisgo/vorbis/internal/codebook"

// Type identifies which of the three residue coding schemes a Config
// uses (spec.md §4.6).
type Type int

const (
	TypeInterleaved Type = 0 // scalar decode into target[offset + step*k]
	TypeSequential  Type = 1 // scalar decode into target[offset + k]
	TypeChannel     Type = 2 // all channels treated as one long interleaved vector
)

// passes is the fixed number of coding passes every residue partition is
// read in, one bit-plane-like refinement per pass (spec.md §4.6: "eight
// passes over the partition grid").
const passes = 8

// Config is one residue_config entry, decoded once from the setup
// header and shared by every mapping submap that selects it.
type Config struct {
	RType           Type
	Begin, End      int
	PartSize        int
	Classifications int
	ClassBookIndex  int   // index into the decoder's codebook table
	ResidueBooks    [][passes]int // [class][pass] -> codebook index, or -1 to skip

	// classData[q] holds the classbook dimension-length digit
	// decomposition of classword q in base Classifications, precomputed
	// at setup to remove the per-partition division from the decode
	// hot path (spec.md §4.6).
	classData [][]int
}

// NewConfig finalises a Config, precomputing the classword digit
// decomposition table for every possible classbook entry value.
func NewConfig(rtype Type, begin, end, partSize, classifications, classBookIndex int, residueBooks [][passes]int, classBookDimensions, classBookEntries int) *Config {
	c := &Config{
		RType:           rtype,
		Begin:           begin,
		End:             end,
		PartSize:        partSize,
		Classifications: classifications,
		ClassBookIndex:  classBookIndex,
		ResidueBooks:    residueBooks,
	}
	c.classData = make([][]int, classBookEntries)
	for q := 0; q < classBookEntries; q++ {
		digits := make([]int, classBookDimensions)
		v := q
		for i := classBookDimensions - 1; i >= 0; i-- {
			digits[i] = v % classifications
			v /= classifications
		}
		c.classData[q] = digits
	}
	return c
}

// Decode reconstructs the residue vectors for every channel not flagged
// in doNotDecode, each of length n (spec.md §4.6). books is the full
// codebook table; classBook is books[cfg.ClassBookIndex].
func Decode(cfg *Config, classBook *codebook.Book, books []*codebook.Book, channels int, doNotDecode []bool, n int, peek func(uint) (uint32, bool), advance func(uint)) ([][]float32, bool) {
	out := make([][]float32, channels)
	for i := 0; i < channels; i++ {
		out[i] = make([]float32, n)
	}

	nRead := cfg.End - cfg.Begin
	if cfg.PartSize == 0 {
		return out, true
	}
	partRead := nRead / cfg.PartSize
	classwords := classBook.Dimensions()

	anyActive := false
	for i := 0; i < channels; i++ {
		if !doNotDecode[i] {
			anyActive = true
			break
		}
	}
	if !anyActive {
		return out, true
	}

	if cfg.RType == TypeChannel && channels != 1 {
		decodeType2(cfg, classBook, books, out, doNotDecode, channels, partRead, classwords, peek, advance)
		return out, true
	}

	decodeIndependent(cfg, classBook, books, out, doNotDecode, channels, partRead, classwords, peek, advance)
	return out, true
}

// decodeIndependent handles residue types 0 and 1 (and type 2 with a
// single channel, which degenerates to the same per-channel loop): each
// channel's partitions are classified and decoded independently.
func decodeIndependent(cfg *Config, classBook *codebook.Book, books []*codebook.Book, out [][]float32, doNotDecode []bool, channels, partRead, classwords int, peek func(uint) (uint32, bool), advance func(uint)) {
	classSets := make([][]int, channels) // per-channel, per-partition class index

	pcount := 0
	for pass := 0; pass < passes; pass++ {
		pcount = 0
		for pcount < partRead {
			if pass == 0 {
				for j := 0; j < channels; j++ {
					if doNotDecode[j] {
						continue
					}
					q, ok := classBook.DecodeScalar(peek, advance)
					if !ok {
						return
					}
					classSets[j] = append(classSets[j], cfg.classData[q]...)
				}
			}
			for i := 0; i < classwords && pcount < partRead; i, pcount = i+1, pcount+1 {
				for j := 0; j < channels; j++ {
					if doNotDecode[j] {
						continue
					}
					class := classSets[j][pcount]
					b := cfg.ResidueBooks[class][pass]
					if b < 0 {
						continue
					}
					offset := cfg.Begin + pcount*cfg.PartSize
					if !decodeOnePartition(cfg.RType, books[b], out[j], offset, cfg.PartSize, peek, advance) {
						return
					}
				}
			}
		}
	}
}

// decodeOnePartition decodes one partition's worth of residue values
// into target, per residue type (spec.md §4.6): type 0 interleaves by
// step = partSize/dimensions, type 1 (and the single-channel fallback of
// type 2) writes sequentially.
func decodeOnePartition(rtype Type, book *codebook.Book, target []float32, offset, partSize int, peek func(uint) (uint32, bool), advance func(uint)) bool {
	dim := book.Dimensions()
	if dim == 0 {
		return true
	}
	if rtype == TypeInterleaved {
		step := partSize / dim
		for k := 0; k < step; k++ {
			vec, ok := book.DecodeVector(peek, advance)
			if !ok {
				return false
			}
			for d := 0; d < dim && offset+k+d*step < len(target); d++ {
				target[offset+k+d*step] += vec[d]
			}
		}
		return true
	}

	for k := 0; k < partSize; k += dim {
		vec, ok := book.DecodeVector(peek, advance)
		if !ok {
			return false
		}
		z := dim
		if k+z > partSize {
			z = partSize - k
		}
		for d := 0; d < z && offset+k+d < len(target); d++ {
			target[offset+k+d] += vec[d]
		}
	}
	return true
}

// decodeType2 handles residue type 2 with more than one channel: every
// channel is treated as one long interleaved vector indexed by
// z = begin + pcount*partSize, with c_inter = z%channels (which channel)
// and p_inter = z/channels (position within that channel), then
// de-interleaved back into out as values are produced (spec.md §4.6).
func decodeType2(cfg *Config, classBook *codebook.Book, books []*codebook.Book, out [][]float32, doNotDecode []bool, channels, partRead, classwords int, peek func(uint) (uint32, bool), advance func(uint)) {
	var classSet []int
	pcount := 0
	for pass := 0; pass < passes; pass++ {
		pcount = 0
		cInter, pInter := 0, 0
		if partRead > 0 {
			z := cfg.Begin
			cInter, pInter = z%channels, z/channels
		}
		for pcount < partRead {
			if pass == 0 {
				q, ok := classBook.DecodeScalar(peek, advance)
				if !ok {
					return
				}
				classSet = append(classSet, cfg.classData[q]...)
			}
			for i := 0; i < classwords && pcount < partRead; i, pcount = i+1, pcount+1 {
				z := cfg.Begin + pcount*cfg.PartSize
				class := classSet[pcount]
				b := cfg.ResidueBooks[class][pass]
				if b < 0 {
					z += cfg.PartSize
					cInter, pInter = z%channels, z/channels
					continue
				}
				dim := books[b].Dimensions()
				remaining := cfg.PartSize
				for remaining > 0 {
					vec, ok := books[b].DecodeVector(peek, advance)
					if !ok {
						return
					}
					for d := 0; d < dim && d < remaining; d++ {
						if !doNotDecode[cInter] && pInter < len(out[cInter]) {
							out[cInter][pInter] += vec[d]
						}
						cInter++
						if cInter == channels {
							cInter = 0
							pInter++
						}
					}
					remaining -= dim
				}
			}
		}
	}
}
