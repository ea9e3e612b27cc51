// Package setup implements the back half of spec.md §4.10's HeaderSetup
// state: decoding the type-5 setup packet (codebooks, floors, residues,
// mappings, modes) into the static per-stream tables spec.md §4.3-§4.7
// describe, and the cross-reference validation the Vorbis I format
// requires between them. The identification and comment headers are
// byte-aligned and simpler; those live in the ogg package
// (ogg.ParseIdentification, ogg.ParseComment) since they need no bit
// reader and the ogg package already owns page/packet framing.
//
// Grounded directly on stb_vorbis's start_decoder, whose body is present
// verbatim in the retrieved reference source (not one of the functions
// moved to rust), so the setup header's bit layout here follows it
// field-for-field.
package setup

import (
	"errors"

	"github.com/vorbisgo/vorbis/internal/bitreader"
	"github.com/vorbisgo/vorbis/internal/codebook"
	"github.com/vorbisgo/vorbis/internal/dsp"
	"github.com/vorbisgo/vorbis/internal/floor1"
	"github.com/vorbisgo/vorbis/internal/huffman"
	"github.com/vorbisgo/vorbis/internal/mapping"
	"github.com/vorbisgo/vorbis/internal/residue"
)

const packetSetup = 5

var (
	// ErrMalformed covers any structural violation of the header bit
	// layout: a bad sync pattern, an out-of-range cross-reference, a
	// reserved field that isn't zero, or the packet running out of bits
	// before every field is read.
	ErrMalformed = errors.New("setup: malformed header packet")

	// ErrFeatureNotSupported is returned for floor type 0, which this
	// decoder core does not implement (spec.md's Non-goals).
	ErrFeatureNotSupported = errors.New("setup: floor type 0 is not supported")
)

func validateSync(b []byte) bool {
	return len(b) == 6 &&
		b[0] == 'v' && b[1] == 'o' && b[2] == 'r' && b[3] == 'b' && b[4] == 'i' && b[5] == 's'
}

// Mode is one mode_config entry: which block-size flag it selects and
// which mapping it routes through.
type Mode struct {
	BlockFlag bool
	Mapping   int
}

// Config is the full set of static per-stream tables decoded from the
// type-5 setup header packet.
type Config struct {
	Codebooks []*codebook.Book
	Floors    []*floor1.Config
	Residues  []*residue.Config
	Mappings  []*mapping.Config
	Modes     []Mode
}

// reader wraps bitreader.Reader with helpers that turn short reads into
// ErrMalformed, so the parse functions below read like a direct
// transcription of the reference bit layout without repeating the ok
// check at every field.
type reader struct {
	r   *bitreader.Reader
	err error
}

func (x *reader) bits(n uint) uint32 {
	if x.err != nil {
		return 0
	}
	v, ok := x.r.Bits(n)
	if !ok {
		x.err = ErrMalformed
		return 0
	}
	return v
}

func (x *reader) bit() bool {
	return x.bits(1) != 0
}

func (x *reader) fail(err error) {
	if x.err == nil {
		x.err = err
	}
}

// Parse decodes the type-5 setup header packet into a Config, given the
// channel count already known from the identification header and the
// fast Huffman table width each codebook should be built with (spec.md
// §6's "fast Huffman table log size" compile-time option).
func Parse(packet []byte, channels, fastTableBits int) (*Config, error) {
	x := &reader{r: bitreader.New(packet)}

	if x.bits(8) != packetSetup {
		return nil, ErrMalformed
	}
	sync := make([]byte, 6)
	for i := range sync {
		sync[i] = byte(x.bits(8))
	}
	if x.err == nil && !validateSync(sync) {
		x.fail(ErrMalformed)
	}

	codebooks := parseCodebooks(x, fastTableBits)
	if x.err != nil {
		return nil, x.err
	}

	// Time-domain transfer array: vestigial, every entry must be zero.
	timeCount := int(x.bits(6)) + 1
	for i := 0; i < timeCount; i++ {
		if x.bits(16) != 0 {
			x.fail(ErrMalformed)
		}
	}
	if x.err != nil {
		return nil, x.err
	}

	floors, err := parseFloors(x, len(codebooks))
	if err != nil {
		return nil, err
	}
	if x.err != nil {
		return nil, x.err
	}

	residues := parseResidues(x, codebooks)
	if x.err != nil {
		return nil, x.err
	}

	mappings := parseMappings(x, channels, len(floors), len(residues))
	if x.err != nil {
		return nil, x.err
	}

	modes := parseModes(x, len(mappings))
	if x.err != nil {
		return nil, x.err
	}

	return &Config{
		Codebooks: codebooks,
		Floors:    floors,
		Residues:  residues,
		Mappings:  mappings,
		Modes:     modes,
	}, nil
}

// parseCodebooks decodes every codebook_config entry (spec.md §4.3/§4.4),
// grounded on stb_vorbis's codebook loop (original_source/stb_vorbis.c,
// lines ~2140-2348).
func parseCodebooks(x *reader, fastTableBits int) []*codebook.Book {
	count := int(x.bits(8)) + 1
	books := make([]*codebook.Book, count)

	for i := 0; i < count && x.err == nil; i++ {
		s0, s1, s2 := x.bits(8), x.bits(8), x.bits(8)
		if s0 != 0x42 || s1 != 0x43 || s2 != 0x56 {
			x.fail(ErrMalformed)
			break
		}
		dimLow := x.bits(8)
		dimensions := int(x.bits(8)<<8 | dimLow)
		eLow := x.bits(8)
		eMid := x.bits(8)
		entries := int(x.bits(8)<<16 | eMid<<8 | eLow)

		ordered := x.bit()
		sparse := false
		if !ordered {
			sparse = x.bit()
		}
		if dimensions == 0 && entries != 0 {
			x.fail(ErrMalformed)
			break
		}

		lengths := make([]int, entries)
		if ordered {
			currentEntry := 0
			currentLength := int(x.bits(5)) + 1
			for currentEntry < entries && x.err == nil {
				limit := entries - currentEntry
				n := int(x.bits(uint(dsp.ILog(limit))))
				if currentEntry+n > entries {
					x.fail(ErrMalformed)
					break
				}
				for j := currentEntry; j < currentEntry+n; j++ {
					lengths[j] = currentLength
				}
				currentEntry += n
				currentLength++
			}
		} else {
			for j := 0; j < entries && x.err == nil; j++ {
				present := true
				if sparse {
					present = x.bit()
				}
				if present {
					l := int(x.bits(5)) + 1
					if l == 32 {
						x.fail(ErrMalformed)
						break
					}
					lengths[j] = l
				} else {
					lengths[j] = huffman.Unused
				}
			}
		}
		if x.err != nil {
			break
		}

		huff, err := huffman.Build(lengths, fastTableBits)
		if err != nil {
			x.fail(ErrMalformed)
			break
		}

		lookupType := codebook.LookupType(x.bits(4))
		if lookupType > codebook.LookupExplicit {
			x.fail(ErrMalformed)
			break
		}

		var minimum, delta float32
		var sequenceP bool
		var raw []uint32
		if lookupType > codebook.LookupNone {
			minimum = codebook.Float32Unpack(x.bits(32))
			delta = codebook.Float32Unpack(x.bits(32))
			valueBits := int(x.bits(4)) + 1
			sequenceP = x.bit()

			var lookupValues int
			if lookupType == codebook.LookupImplicit {
				lookupValues = codebook.Lookup1Values(entries, dimensions)
			} else {
				lookupValues = entries * dimensions
			}
			if lookupValues == 0 {
				x.fail(ErrMalformed)
				break
			}
			raw = make([]uint32, lookupValues)
			for j := range raw {
				raw[j] = x.bits(uint(valueBits))
			}
		}
		if x.err != nil {
			break
		}

		book, err := codebook.New(huff, entries, dimensions, lookupType, minimum, delta, sequenceP, raw)
		if err != nil {
			x.fail(ErrMalformed)
			break
		}
		books[i] = book
	}
	return books
}

// parseFloors decodes every floor_config entry (spec.md §4.5), grounded
// on stb_vorbis's floor loop (original_source/stb_vorbis.c, lines
// ~2358-2429). Floor type 0 is fully consumed to keep the bitstream
// aligned, then rejected.
func parseFloors(x *reader, codebookCount int) ([]*floor1.Config, error) {
	count := int(x.bits(6)) + 1
	floors := make([]*floor1.Config, count)

	for i := 0; i < count && x.err == nil; i++ {
		ftype := x.bits(16)
		if ftype > 1 {
			x.fail(ErrMalformed)
			return nil, x.err
		}
		if ftype == 0 {
			x.bits(8)             // order
			x.bits(16)            // rate
			x.bits(16)            // bark_map_size
			x.bits(6)             // amplitude_bits
			x.bits(8)             // amplitude_offset
			books := int(x.bits(4)) + 1
			for j := 0; j < books; j++ {
				x.bits(8)
			}
			if x.err != nil {
				return nil, x.err
			}
			return nil, ErrFeatureNotSupported
		}

		partitions := int(x.bits(5))
		partitionClassList := make([]int, partitions)
		maxClass := -1
		for j := range partitionClassList {
			c := int(x.bits(4))
			partitionClassList[j] = c
			if c > maxClass {
				maxClass = c
			}
		}
		classes := make([]floor1.Class, maxClass+1)
		for c := range classes {
			dim := int(x.bits(3)) + 1
			subclassBits := x.bits(2)
			masterBook := -1
			if subclassBits > 0 {
				masterBook = int(x.bits(8))
				if masterBook >= codebookCount {
					x.fail(ErrMalformed)
					break
				}
			}
			subclassBooks := make([]int, 1<<subclassBits)
			for k := range subclassBooks {
				book := int(x.bits(8)) - 1
				if book >= codebookCount {
					x.fail(ErrMalformed)
					break
				}
				subclassBooks[k] = book
			}
			classes[c] = floor1.Class{
				Dimension:     dim,
				SubclassBits:  uint(subclassBits),
				MasterBook:    masterBook,
				SubclassBooks: subclassBooks,
			}
		}
		if x.err != nil {
			return nil, x.err
		}

		multiplier := int(x.bits(2)) + 1
		rangeBits := uint(x.bits(4))
		xlist := make([]int, 0, 2+partitions*4)
		xlist = append(xlist, 0, 1<<rangeBits)
		for _, c := range partitionClassList {
			for k := 0; k < classes[c].Dimension; k++ {
				xlist = append(xlist, int(x.bits(rangeBits)))
			}
		}
		if x.err != nil {
			return nil, x.err
		}
		floors[i] = floor1.NewConfig(xlist, multiplier, partitionClassList, classes)
	}
	return floors, x.err
}

// parseResidues decodes every residue_config entry (spec.md §4.6),
// grounded on stb_vorbis's residue loop (original_source/stb_vorbis.c,
// lines ~2431-2482).
func parseResidues(x *reader, codebooks []*codebook.Book) []*residue.Config {
	count := int(x.bits(6)) + 1
	residues := make([]*residue.Config, count)

	for i := 0; i < count && x.err == nil; i++ {
		rtype := x.bits(16)
		if rtype > 2 {
			x.fail(ErrMalformed)
			break
		}
		begin := int(x.bits(24))
		end := int(x.bits(24))
		if end < begin {
			x.fail(ErrMalformed)
			break
		}
		partSize := int(x.bits(24)) + 1
		classifications := int(x.bits(6)) + 1
		classBook := int(x.bits(8))
		if classBook >= len(codebooks) {
			x.fail(ErrMalformed)
			break
		}

		cascade := make([]int, classifications)
		for j := range cascade {
			low := int(x.bits(3))
			high := 0
			if x.bit() {
				high = int(x.bits(5))
			}
			cascade[j] = high*8 + low
		}
		if x.err != nil {
			break
		}

		residueBooks := make([][8]int, classifications)
		for j := range residueBooks {
			for k := 0; k < 8; k++ {
				if cascade[j]&(1<<uint(k)) != 0 {
					book := int(x.bits(8))
					if book >= len(codebooks) {
						x.fail(ErrMalformed)
						break
					}
					residueBooks[j][k] = book
				} else {
					residueBooks[j][k] = -1
				}
			}
		}
		if x.err != nil {
			break
		}

		cb := codebooks[classBook]
		residues[i] = residue.NewConfig(residue.Type(rtype), begin, end, partSize, classifications, classBook, residueBooks, cb.Dimensions(), cb.Entries())
	}
	return residues
}

// parseMappings decodes every mapping_config entry (spec.md §4.7),
// grounded on stb_vorbis's mapping loop (original_source/stb_vorbis.c,
// lines ~2484-2531).
func parseMappings(x *reader, channels, floorCount, residueCount int) []*mapping.Config {
	count := int(x.bits(6)) + 1
	mappings := make([]*mapping.Config, count)

	for i := 0; i < count && x.err == nil; i++ {
		if x.bits(16) != 0 {
			x.fail(ErrMalformed)
			break
		}

		submaps := 1
		if x.bit() {
			submaps = int(x.bits(4)) + 1
		}

		var coupling []mapping.CouplingStep
		if x.bit() {
			steps := int(x.bits(8)) + 1
			ilogCh := uint(dsp.ILog(channels - 1))
			coupling = make([]mapping.CouplingStep, steps)
			for k := range coupling {
				mag := int(x.bits(ilogCh))
				ang := int(x.bits(ilogCh))
				if mag >= channels || ang >= channels || mag == ang {
					x.fail(ErrMalformed)
					break
				}
				coupling[k] = mapping.CouplingStep{Magnitude: mag, Angle: ang}
			}
		}
		if x.err != nil {
			break
		}

		if x.bits(2) != 0 { // reserved
			x.fail(ErrMalformed)
			break
		}

		channelMux := make([]int, channels)
		if submaps > 1 {
			for j := range channelMux {
				mux := int(x.bits(4))
				if mux >= submaps {
					x.fail(ErrMalformed)
					break
				}
				channelMux[j] = mux
			}
		}
		if x.err != nil {
			break
		}

		submapList := make([]mapping.Submap, submaps)
		for j := range submapList {
			x.bits(8) // reserved time value, discarded
			floorIdx := int(x.bits(8))
			residueIdx := int(x.bits(8))
			if floorIdx >= floorCount || residueIdx >= residueCount {
				x.fail(ErrMalformed)
				break
			}
			submapList[j] = mapping.Submap{FloorIndex: floorIdx, ResidueIndex: residueIdx}
		}
		if x.err != nil {
			break
		}

		mappings[i] = &mapping.Config{Submaps: submapList, ChannelMux: channelMux, Coupling: coupling}
	}
	return mappings
}

// parseModes decodes every mode_config entry (spec.md §4.10), grounded
// on stb_vorbis's mode loop (original_source/stb_vorbis.c, lines
// ~2533-2544).
func parseModes(x *reader, mappingCount int) []Mode {
	count := int(x.bits(6)) + 1
	modes := make([]Mode, count)

	for i := range modes {
		if x.err != nil {
			break
		}
		blockFlag := x.bit()
		windowType := x.bits(16)
		transformType := x.bits(16)
		mappingIdx := int(x.bits(8))
		if windowType != 0 || transformType != 0 || mappingIdx >= mappingCount {
			x.fail(ErrMalformed)
			break
		}
		modes[i] = Mode{BlockFlag: blockFlag, Mapping: mappingIdx}
	}
	return modes
}
