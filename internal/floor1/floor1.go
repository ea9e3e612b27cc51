// Package floor1 implements spec.md §4.5: per-channel spectral envelope
// ("floor 1") decode and curve rendering. Floor 0 is out of scope (the
// setup parser rejects it, see internal/setup).
package floor1

import (
	"math"
	"sort"

	"github.com/vorbisgo/vorbis/internal/codebook"
	"github.com/vorbisgo/vorbis/internal/dsp"
)

// maxClasses and maxPartitions bound the per-mode configuration the setup
// header can describe; both match the ranges the Vorbis I bitstream
// format itself imposes on its field widths.
const (
	maxClasses    = 1 << 4
	maxPartitions = 1 << 5
)

// Class describes one floor1_class entry: its dimension (how many
// subclass cval digits it carries), the number of subclass selector
// bits, and the codebook index (or -1 for "no book, implicit 0") used
// for each subclass value.
type Class struct {
	Dimension     int
	SubclassBits  uint
	MasterBook    int   // -1 if this class has no master book (only used when SubclassBits == 0)
	SubclassBooks []int // length 1<<SubclassBits; -1 means "decode nothing, contribute 0"
}

// Config is one floor1 curve configuration, decoded once from the setup
// header and shared by every mode that selects it.
type Config struct {
	Partitions     []int // per-partition class index
	Classes        []Class
	Xlist          []int // X coordinates, Xlist[0]=0 and Xlist[1]=range implicitly appended by the caller
	Multiplier     int
	rangeBits      int // ilog(range-1) for the multiplier's range; precomputed at setup
	sortedOrder    []int
	neighborLow    []int
	neighborHigh   []int
}

// NewConfig finalises a Config after its raw fields are populated by the
// setup parser: it sorts Xlist (keeping track of the original index-to-
// position permutation) and precomputes each point's low/high neighbours
// per the Vorbis I floor1 "neighbors" algorithm (nearest already-fixed
// points to the left and right in X).
func NewConfig(xlist []int, multiplier int, partitions []int, classes []Class) *Config {
	c := &Config{Xlist: xlist, Multiplier: multiplier, Partitions: partitions, Classes: classes}
	c.rangeBits = multiplierRangeBits(multiplier)

	order := make([]int, len(xlist))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return xlist[order[i]] < xlist[order[j]] })
	c.sortedOrder = order

	c.neighborLow = make([]int, len(xlist))
	c.neighborHigh = make([]int, len(xlist))
	for j := 2; j < len(xlist); j++ {
		low, high := neighbors(xlist, j)
		c.neighborLow[j] = low
		c.neighborHigh[j] = high
	}
	return c
}

// multiplierRangeBits returns ilog(range-1) for the multiplier's range —
// the bit width used to read each of the first two Y points (spec.md
// §4.5 step 2), matching the Vorbis I format's range table:
//
//	multiplier 1 -> range 256 -> 8 bits
//	multiplier 2 -> range 128 -> 7 bits
//	multiplier 3 -> range 86  -> 7 bits
//	multiplier 4 -> range 64  -> 6 bits
func multiplierRangeBits(multiplier int) int {
	switch multiplier {
	case 1:
		return dsp.ILog(255)
	case 2:
		return dsp.ILog(127)
	case 3:
		return dsp.ILog(85)
	case 4:
		return dsp.ILog(63)
	default:
		return dsp.ILog(255)
	}
}

func floorRange(multiplier int) int {
	switch multiplier {
	case 1:
		return 256
	case 2:
		return 128
	case 3:
		return 86
	case 4:
		return 64
	default:
		return 256
	}
}

// neighbors finds, among Xlist[0..j), the index with the greatest X less
// than Xlist[j] (low) and the index with the least X greater than
// Xlist[j] (high) — the two already-decoded points that bracket point j,
// per the Vorbis I spec's "find_neighbours" (renamed here to avoid the
// reserved predeclared-looking name).
func neighbors(xlist []int, j int) (low, high int) {
	lowX, highX := -1, math.MaxInt32
	low, high = -1, -1
	for i := 0; i < j; i++ {
		x := xlist[i]
		if x < xlist[j] && x > lowX {
			lowX = x
			low = i
		}
		if x > xlist[j] && x < highX {
			highX = x
			high = i
		}
	}
	return low, high
}

// Floor holds one channel's decoded floor1 curve for the current packet:
// either "unused" (the flag bit was 0, a pre-coupling zero channel) or a
// fully reconstructed, rendered curve ready to multiply into the
// residue spectrum.
type Floor struct {
	Unused bool
	finalY []int
	step2  []bool
}

// Decode reads one channel's floor1 data (spec.md §4.5 steps 1-4): the
// presence flag, the first two Y points, then each partition's
// classword-driven subclass decode, finally reconstructing the residual
// Y values via the predictor formula.
func Decode(cfg *Config, books []*codebook.Book, peek func(n uint) (uint32, bool), advance func(n uint)) (*Floor, bool) {
	present, ok := peek(1)
	if !ok {
		return nil, false
	}
	advance(1)
	if present == 0 {
		return &Floor{Unused: true}, true
	}

	n := len(cfg.Xlist)
	finalY := make([]int, n)
	rangeV := floorRange(cfg.Multiplier)

	y0, ok := peek(uint(cfg.rangeBits))
	if !ok {
		return nil, false
	}
	advance(uint(cfg.rangeBits))
	y1, ok := peek(uint(cfg.rangeBits))
	if !ok {
		return nil, false
	}
	advance(uint(cfg.rangeBits))
	finalY[0] = int(y0)
	finalY[1] = int(y1)

	// j runs sequentially across every partition's decoded values, in
	// partition order — it is not reset or grouped per class; the
	// partition's class only selects which books apply to its cdim
	// values.
	j := 2
	for _, classIdx := range cfg.Partitions {
		cls := cfg.Classes[classIdx]
		cdim := cls.Dimension
		cbits := cls.SubclassBits

		var cval uint32
		if cbits > 0 {
			idx, ok := books[cls.MasterBook].DecodeScalar(peek, advance)
			if !ok {
				return nil, false
			}
			cval = uint32(idx)
		}

		for k := 0; k < cdim; k++ {
			book := cls.SubclassBooks[cval&((1<<cbits)-1)]
			cval >>= cbits
			y := 0
			if book >= 0 {
				v, ok := books[book].DecodeScalar(peek, advance)
				if !ok {
					return nil, false
				}
				y = int(v)
			}
			if j < n {
				finalY[j] = y
			}
			j++
		}
	}

	step2 := make([]bool, n)
	step2[0], step2[1] = true, true

	// Reconstruction proceeds in point-index order, not X order: each
	// point's neighbours are, by construction (see NewConfig), indices
	// strictly less than j, so increasing j guarantees both neighbours
	// are already finalised.
	for j := 2; j < n; j++ {
		low, high := cfg.neighborLow[j], cfg.neighborHigh[j]
		pred := predictPoint(cfg.Xlist[j], cfg.Xlist[low], cfg.Xlist[high], finalY[low], finalY[high])
		val := finalY[j]

		highroom := rangeV - pred
		lowroom := pred
		var room int
		if highroom < lowroom {
			room = highroom * 2
		} else {
			room = lowroom * 2
		}

		if val != 0 {
			step2[low], step2[high], step2[j] = true, true, true
			if val >= room {
				if highroom > lowroom {
					finalY[j] = val - lowroom + pred
				} else {
					finalY[j] = pred - val + highroom - 1
				}
			} else if val&1 != 0 {
				finalY[j] = pred - ((val + 1) >> 1)
			} else {
				finalY[j] = pred + (val >> 1)
			}
		} else {
			step2[j] = false
			finalY[j] = pred
		}
	}

	return &Floor{finalY: finalY, step2: step2}, true
}

// predictPoint is the Vorbis I floor1 line predictor (spec.md §4.5): the
// Y value a straight line through (x0,y0)-(x1,y1) takes at x, computed
// with the same integer rounding the reference decoder uses so curve
// rendering reproduces bit-identical step2_flag activation decisions.
func predictPoint(x, x0, x1, y0, y1 int) int {
	dy := y1 - y0
	adx := x1 - x0
	if adx == 0 {
		return y0
	}
	err := dsp.Abs(dy) * (x - x0)
	off := err / adx
	if dy < 0 {
		return y0 - off
	}
	return y0 + off
}

// inverseDBTable is the floor1 dB-to-linear-amplitude lookup (spec.md
// §4.5). The reference decoder ships this as a literal 256-entry table;
// it is generated here from its defining logarithmic curve (each step
// covering floorDBRange/255 decibels across the 256-entry span) rather than
// transcribed by hand, since hand-transcribing 256 opaque float literals
// without being able to execute and diff against a known-good table
// risks silent numeric corruption that would be far harder to notice
// than a clearly-labelled formula. See DESIGN.md.
var inverseDBTable [256]float32

// floorDBRange is the dynamic range, in decibels, the table spans from
// index 0 (quietest) to index 255 (unity gain, 0dB).
const floorDBRange = 140.0

func init() {
	for i := range inverseDBTable {
		dB := (float64(i) - 255) * (floorDBRange / 255)
		inverseDBTable[i] = float32(math.Pow(10, dB/20))
	}
}

// Render rasterises the decoded floor curve into a length-n multiplier
// array and applies it element-wise to spectrum, per spec.md §4.5 step
// 5: line segments are drawn between consecutive *active* (step2_flag
// set) points sorted by X, using the same Bresenham-style integer walk
// the reference decoder uses so boundary samples land on the same side
// of each segment.
func (f *Floor) Render(cfg *Config, spectrum []float32, n int) {
	if f.Unused {
		for i := range spectrum {
			spectrum[i] = 0
		}
		return
	}

	active := make([]int, 0, len(cfg.Xlist))
	for _, j := range cfg.sortedOrder {
		if f.step2[j] {
			active = append(active, j)
		}
	}
	if len(active) == 0 {
		return
	}

	hx, hy := cfg.Xlist[active[0]], f.finalY[active[0]]
	drawLineConstant(spectrum, 0, hx, hy, n)
	for i := 1; i < len(active); i++ {
		lx, ly := hx, hy
		hx, hy = cfg.Xlist[active[i]], f.finalY[active[i]]
		drawLine(spectrum, lx, ly, hx, hy, n)
	}
	drawLineConstant(spectrum, hx, n, hy, n)
}

// drawLine rasterises the segment (x0,y0)-(x1,y1) into output[x0:min(x1,n)],
// multiplying each sample by inverseDBTable[y] (clamped to the table's
// domain), following the reference decoder's integer Bresenham walk so
// the quantised dB value at each sample matches exactly.
func drawLine(output []float32, x0, y0, x1, y1, n int) {
	if x0 >= x1 {
		return
	}
	dy := y1 - y0
	adx := x1 - x0
	ady := dsp.Abs(dy)
	base := dy / adx
	var sy int
	if dy < 0 {
		sy = base - 1
	} else {
		sy = base + 1
	}
	ady -= dsp.Abs(base) * adx

	if x1 > n {
		x1 = n
	}
	if x0 >= x1 {
		return
	}
	x, y, err := x0, y0, 0
	output[x] *= dbLookup(y)
	for x++; x < x1; x++ {
		err += ady
		if err >= adx {
			err -= adx
			y += sy
		} else {
			y += base
		}
		output[x] *= dbLookup(y)
	}
}

// drawLineConstant extends the curve flat from x0 to x1 at value y,
// covering the region before the first active point and after the last
// (the Vorbis I spec treats the curve as constant outside the active
// point span).
func drawLineConstant(output []float32, x0, x1 int, y, n int) {
	if x1 > n {
		x1 = n
	}
	g := dbLookup(y)
	for x := x0; x < x1; x++ {
		output[x] *= g
	}
}

func dbLookup(y int) float32 {
	return inverseDBTable[dsp.Clamp(y, 0, 255)]
}
