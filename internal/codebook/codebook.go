// Package codebook implements spec.md §4.4: VQ reconstruction layered on
// top of the entropy-decoded index a Huffman table produces.
package codebook

import (
	"errors"
	"math"

	"github.com/vorbisgo/vorbis/internal/huffman"
)

// ErrInvalidSetup is returned when a codebook's setup fields fail the
// cross-checks the Vorbis I format requires (unsupported lookup type,
// zero lookup_values, dimension overflow in the type-1 expansion).
var ErrInvalidSetup = errors.New("codebook: invalid setup")

// LookupType distinguishes the three VQ reconstruction modes of
// spec.md §4.4.
type LookupType int

const (
	LookupNone     LookupType = 0 // scalar passthrough: the entry index is the value
	LookupImplicit LookupType = 1 // base-lookup_values digit decomposition, pre-expanded to type 2 at setup
	LookupExplicit LookupType = 2 // multiplicands already stored as full dimensions-length vectors
)

// Book is a fully set up Vorbis codebook: a Huffman entropy table plus,
// for lookup types 1 and 2, the reconstructed vector quantisation
// lattice.
type Book struct {
	huff       *huffman.Table
	entries    int
	dimensions int

	lookupType LookupType
	// multiplicands holds, after setup-time expansion, one
	// dimensions-length float32 vector per entry — type 1 books are
	// expanded into this same layout so Decode never branches on
	// lookup type in its hot path (spec.md §4.4: "a pre-expansion pass
	// at setup converts type-1 books into type-2 layout to remove
	// per-element division from the hot path").
	multiplicands [][]float32
}

// Float32Unpack decodes the 32-bit packed float format the Vorbis setup
// header uses for VQ lattice bounds (minimum_value, delta_value): 1 sign
// bit, a 10-bit exponent bias-788, and a 21-bit mantissa.
func Float32Unpack(x uint32) float32 {
	mantissa := float64(x & 0x1fffff)
	sign := x & 0x80000000
	exponent := int((x & 0x7fe00000) >> 21)
	if sign != 0 {
		mantissa = -mantissa
	}
	return float32(mantissa * math.Ldexp(1, exponent-788))
}

// Lookup1Values returns the greatest integer L such that L^dim <= entries,
// the number of distinct per-dimension lattice values a type-1 codebook's
// base-L digit decomposition can address (spec.md §4.4).
func Lookup1Values(entries, dim int) int {
	if dim <= 0 {
		return 0
	}
	r := int(math.Floor(math.Exp(math.Log(float64(entries)) / float64(dim))))
	if r < 0 {
		r = 0
	}
	for pow(r+1, dim) <= entries {
		r++
	}
	for r > 0 && pow(r, dim) > entries {
		r--
	}
	return r
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
		if result < 0 { // overflow guard; entries is always small in practice
			return result
		}
	}
	return result
}

// New builds a Book from its already-Huffman-built entropy table and raw
// setup fields. lengths is only needed by the caller to build huff; New
// itself works from the multiplicand lattice.
//
// For lookupType 0, dimensions/minimum/delta/valueBits/sequenceP/raw are
// unused. For lookupType 1 or 2, raw holds one value_bits-wide unsigned
// integer per lookup_values entry, exactly as read off the wire.
func New(huff *huffman.Table, entries, dimensions int, lookupType LookupType, minimum, delta float32, sequenceP bool, raw []uint32) (*Book, error) {
	b := &Book{huff: huff, entries: entries, dimensions: dimensions, lookupType: lookupType}
	if lookupType == LookupNone {
		return b, nil
	}

	var lookupValues int
	if lookupType == LookupImplicit {
		lookupValues = Lookup1Values(entries, dimensions)
	} else {
		lookupValues = entries * dimensions
	}
	if lookupValues == 0 || len(raw) < lookupValues {
		return nil, ErrInvalidSetup
	}

	switch lookupType {
	case LookupImplicit:
		b.multiplicands = make([][]float32, entries)
		for i := 0; i < entries; i++ {
			vec := make([]float32, dimensions)
			var last float32
			div := 1
			for k := 0; k < dimensions; k++ {
				off := (i / div) % lookupValues
				val := float32(raw[off])*delta + minimum + last
				vec[k] = val
				if sequenceP {
					last = val
				}
				if k+1 < dimensions {
					div *= lookupValues
				}
			}
			b.multiplicands[i] = vec
		}
		b.lookupType = LookupExplicit // pre-expanded; no further digit math at decode time

	case LookupExplicit:
		b.multiplicands = make([][]float32, entries)
		var last float32
		idx := 0
		for i := 0; i < entries; i++ {
			vec := make([]float32, dimensions)
			for k := 0; k < dimensions; k++ {
				val := float32(raw[idx])*delta + minimum + last
				vec[k] = val
				if sequenceP {
					last = val
				}
				idx++
			}
			b.multiplicands[i] = vec
		}

	default:
		return nil, ErrInvalidSetup
	}

	return b, nil
}

// Entries returns the number of codebook entries.
func (b *Book) Entries() int { return b.entries }

// Dimensions returns the codebook's vector dimension (1 for scalar
// codebooks used as classbooks or for pure entropy coding).
func (b *Book) Dimensions() int { return b.dimensions }

// DecodeScalar reads one Huffman-entropy-coded index, with no VQ lookup
// applied. Used for classbook classwords and for scalar (lookup_type 0)
// residue/floor decode.
func (b *Book) DecodeScalar(peek func(n uint) (uint32, bool), advance func(n uint)) (int32, bool) {
	return b.huff.Decode(peek, advance)
}

// DecodeVector reads one entropy-coded index and returns its reconstructed
// VQ vector (spec.md §4.4). For a lookup_type 0 book this is invalid;
// callers of a scalar codebook should use DecodeScalar instead.
func (b *Book) DecodeVector(peek func(n uint) (uint32, bool), advance func(n uint)) ([]float32, bool) {
	idx, ok := b.huff.Decode(peek, advance)
	if !ok {
		return nil, false
	}
	if int(idx) >= len(b.multiplicands) {
		return nil, false
	}
	return b.multiplicands[idx], true
}
