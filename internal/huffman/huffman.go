// Package huffman implements spec.md §4.3: canonical Huffman prefix-code
// construction for Vorbis codebooks, plus two decode structures: a direct
// fast table for short codewords and a list of the longer codewords,
// ordered by length and searched linearly (there is no binary search).
package huffman

import (
	"errors"
	"math/bits"
	"sort"
)

// Unused marks a codebook entry with no assigned codeword (spec.md §3:
// "255 sentinel = unused").
const Unused = 255

var (
	// ErrOverFull is returned when a length table describes more leaves
	// than are available at some depth of the binary tree — the
	// bitstream is malformed.
	ErrOverFull = errors.New("huffman: codebook is over-subscribed")

	// ErrEmpty is returned when a codebook has zero assigned entries.
	ErrEmpty = errors.New("huffman: codebook has no codewords")
)

// Table is a built canonical Huffman code together with both acceleration
// structures from spec.md §4.3.
type Table struct {
	fastBits int
	fast     []int32 // index by F-bit prefix -> entry index, or -1

	// sortedCodes/sortedValues/sortedLens hold codewords longer than
	// fastBits, ordered by code length (shortest first), for the linear
	// fallback scan in Decode; they are not ordered by codeword value.
	sortedCodes  []uint32
	sortedValues []int32
	sortedLens   []int

	lengths []int // per-entry code length, Unused for unassigned entries
	dense   bool  // true once promoted past the sparse-population heuristic
}

// entry pairs a bit-reversed codeword with its originating entry index and
// length, used only during construction.
type entry struct {
	code  uint32
	value int32
	len   int
}

// Build assigns canonical codewords to lengths (spec.md §4.3: shortest
// length first, values in entry order, each codeword the numerically
// least MSB-aligned value not prefixed by a prior one) and builds the
// fast/sorted lookup structures. fastBits bounds the direct table size
// (spec.md §6 default 10, max 24).
//
// Build fails (during setup, never during steady-state decode, satisfying
// spec.md §8 property 2) if the code is over-full. A single-entry
// codebook is permitted to be under-full; a multi-entry under-full code is
// also accepted since under-full codes only waste bitstream space, they
// never cause ambiguous decode (stb_vorbis and the Vorbis I spec both
// treat under-full as a warning case, not an error, outside of th single
// degenerate all-zero-length case which Build reports via ErrEmpty).
func Build(lengths []int, fastBits int) (*Table, error) {
	if fastBits <= 0 {
		fastBits = 10
	}
	if fastBits > 24 {
		fastBits = 24
	}

	entries, err := assignCodewords(lengths)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	t := &Table{fastBits: fastBits, lengths: lengths}
	t.buildFastAndSorted(entries)
	t.maybePromoteDense(entries, lengths)
	return t, nil
}

// assignCodewords runs the classic Vorbis/stb_vorbis canonical-assignment
// algorithm: maintain, per depth, the bit-reversed value of the next
// available leaf; consume the shallowest available leaf no deeper than
// each entry's own length, splitting it down as needed, and propagate the
// freed sibling leaves back up.
func assignCodewords(lengths []int) ([]entry, error) {
	var available [33]uint32 // available[d] = next free leaf pattern at depth d (MSB-aligned, 0 = none)

	first := -1
	for i, l := range lengths {
		if l != Unused {
			first = i
			break
		}
	}
	if first == -1 {
		return nil, nil
	}

	entries := make([]entry, 0, len(lengths))
	entries = append(entries, entry{code: 0, value: int32(first), len: lengths[first]})
	for d := 1; d <= lengths[first]; d++ {
		available[d] = 1 << uint(32-d)
	}

	for i := first + 1; i < len(lengths); i++ {
		l := lengths[i]
		if l == Unused {
			continue
		}
		z := l
		for z > 0 && available[z] == 0 {
			z--
		}
		if z == 0 {
			return nil, ErrOverFull
		}
		res := available[z]
		available[z] = 0
		entries = append(entries, entry{code: bits.Reverse32(res), value: int32(i), len: l})

		if z != l {
			for y := l; y > z; y-- {
				available[y] = res + (1 << uint(32-y))
			}
		}
	}

	return entries, nil
}

// buildFastAndSorted splits entries into the direct fast-table region
// (length <= fastBits) and the sorted-codeword fallback region (length >
// fastBits), per spec.md §4.3.
//
// e.code is bottom-justified: bit 0 is the first bit the bitreader
// produces for this codeword (the root tree decision), bit (len-1) the
// last, and all bits at or above position len are zero. That matches
// bitreader.Peek's own convention (bit 0 of its return is the next bit
// to be consumed), so a fast-table lookup can index directly by the
// peeked window without any reversal at decode time.
func (t *Table) buildFastAndSorted(entries []entry) {
	fastSize := 1 << uint(t.fastBits)
	t.fast = make([]int32, fastSize)
	for i := range t.fast {
		t.fast[i] = -1
	}

	var long []entry
	for _, e := range entries {
		if e.len <= t.fastBits {
			// The peeked fastBits-wide window also contains lookahead
			// bits beyond this codeword's own length; populate every
			// fast-table slot whose low len bits match e.code,
			// regardless of the higher (fastBits-len) bits.
			step := uint32(1) << uint(e.len)
			for p := e.code; p < uint32(fastSize); p += step {
				t.fast[p] = e.value
			}
		} else {
			long = append(long, e)
		}
	}

	sort.Slice(long, func(i, j int) bool { return long[i].len < long[j].len })
	t.sortedCodes = make([]uint32, len(long))
	t.sortedValues = make([]int32, len(long))
	t.sortedLens = make([]int, len(long))
	for i, e := range long {
		t.sortedCodes[i] = e.code
		t.sortedValues[i] = e.value
		t.sortedLens[i] = e.len
	}
}

// sparseDensityThreshold is the runtime heuristic from spec.md §4.3:
// codebooks whose populated fraction exceeds this are marked dense. The
// mark is informational only: every codebook gets the fast table and
// the same lookup path whichever side of the threshold it falls on.
const sparseDensityThreshold = 0.25

// maybePromoteDense records the sparse/dense decision in t.dense. Build
// constructs the fast table unconditionally, so the recorded decision
// does not change how lookups are made; dense remains available for
// callers that want to introspect it.
func (t *Table) maybePromoteDense(entries []entry, lengths []int) {
	populated := 0
	for _, l := range lengths {
		if l != Unused {
			populated++
		}
	}
	if len(lengths) == 0 {
		return
	}
	t.dense = float64(populated)/float64(len(lengths)) > sparseDensityThreshold
}

// Dense reports whether this codebook's populated fraction exceeded the
// sparse/dense promotion heuristic.
func (t *Table) Dense() bool { return t.dense }

// Decode consumes one codeword, trying the direct fast table first and
// falling back to a scan of the longer, sparsely-populated codewords.
// peek(n) must return the next n bits without consuming them, using the
// same bottom-justified convention as bitreader.Peek (bit 0 is the next
// bit due to be read); advance(n) must consume exactly n bits. Decode
// calls advance itself once the winning entry's length is known, so
// callers should not advance bits on their own.
func (t *Table) Decode(peek func(n uint) (uint32, bool), advance func(n uint)) (int32, bool) {
	prefix, ok := peek(uint(t.fastBits))
	if !ok {
		return -1, false
	}
	if v := t.fast[prefix]; v >= 0 {
		advance(uint(t.lengths[v]))
		return v, true
	}

	// Fast-table miss: the codeword, if any, is longer than fastBits.
	// The sorted list is ordered by length (shortest first) so this
	// scan finds the shortest, and therefore unique, matching prefix
	// without needing per-length peek calls; real Vorbis codebooks keep
	// this list small (entries rarely assign codes much longer than
	// fastBits) so a linear scan over it is not a hot-path concern.
	for i, code := range t.sortedCodes {
		l := t.sortedLens[i]
		window, ok := peek(uint(l))
		if !ok {
			continue
		}
		if window == code {
			advance(uint(l))
			return t.sortedValues[i], true
		}
	}
	return -1, false
}
