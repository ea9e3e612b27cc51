package setup

import "testing"

// bitWriter assembles a packet LSB-first, the mirror image of
// bitreader.Reader's read convention, so these tests can hand-build
// minimal setup packets field by field.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	mask := uint64(1)<<n - 1
	w.acc |= (uint64(v) & mask) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits == 0 {
		return w.buf
	}
	return append(append([]byte{}, w.buf...), byte(w.acc))
}

func writeSync(w *bitWriter) {
	for _, c := range []byte("vorbis") {
		w.write(uint32(c), 8)
	}
}

// writeMinimalSetup builds the smallest legal setup header: one scalar
// codebook (2 entries, length 1 each), one floor1 with no partitions,
// one type-0 residue with a single all-skipped classification, one
// single-submap mapping with no coupling, and one mode — enough to
// exercise every parse stage without any VQ lookup data or residue
// books actually needing to be decoded.
func writeMinimalSetup(t *testing.T) []byte {
	t.Helper()
	w := &bitWriter{}
	w.write(5, 8)
	writeSync(w)

	// codebooks: count=1
	w.write(0, 8)
	w.write(0x42, 8)
	w.write(0x43, 8)
	w.write(0x56, 8)
	w.write(1, 8) // dimensions low byte
	w.write(0, 8) // dimensions high byte -> dimensions=1
	w.write(2, 8) // entries low
	w.write(0, 8) // entries mid
	w.write(0, 8) // entries high -> entries=2
	w.write(0, 1) // ordered=0
	w.write(0, 1) // sparse=0
	w.write(0, 5) // length[0]-1 = 0 -> length 1
	w.write(0, 5) // length[1]-1 = 0 -> length 1
	w.write(0, 4) // lookup_type=0

	// time-domain transfers: count=1, value=0
	w.write(0, 6)
	w.write(0, 16)

	// floors: count=1
	w.write(0, 6)
	w.write(1, 16) // floor type 1
	w.write(0, 5)  // partitions=0
	w.write(0, 2)  // multiplier-1=0 -> 1
	w.write(6, 4)  // rangebits=6

	// residues: count=1
	w.write(0, 6)
	w.write(0, 16) // residue type 0
	w.write(0, 24) // begin
	w.write(2, 24) // end
	w.write(1, 24) // part_size-1=1 -> 2
	w.write(0, 6)  // classifications-1=0 -> 1
	w.write(0, 8)  // classbook=0
	w.write(0, 3)  // cascade low bits
	w.write(0, 1)  // cascade high flag = 0

	// mappings: count=1
	w.write(0, 6)
	w.write(0, 16) // mapping type 0
	w.write(0, 1)  // submaps flag = 0 -> 1 submap
	w.write(0, 1)  // coupling flag = 0
	w.write(0, 2)  // reserved
	w.write(0, 8)  // discarded per-submap byte
	w.write(0, 8)  // submap floor index
	w.write(0, 8)  // submap residue index

	// modes: count=1
	w.write(0, 6)
	w.write(0, 1)  // block flag
	w.write(0, 16) // windowtype
	w.write(0, 16) // transformtype
	w.write(0, 8)  // mapping index

	return w.bytes()
}

func TestParseMinimalSetupHeader(t *testing.T) {
	packet := writeMinimalSetup(t)
	cfg, err := Parse(packet, 1, 10)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(cfg.Codebooks) != 1 {
		t.Fatalf("len(Codebooks) = %d, want 1", len(cfg.Codebooks))
	}
	if cfg.Codebooks[0].Entries() != 2 {
		t.Errorf("Codebooks[0].Entries() = %d, want 2", cfg.Codebooks[0].Entries())
	}
	if cfg.Codebooks[0].Dimensions() != 1 {
		t.Errorf("Codebooks[0].Dimensions() = %d, want 1", cfg.Codebooks[0].Dimensions())
	}

	if len(cfg.Floors) != 1 {
		t.Fatalf("len(Floors) = %d, want 1", len(cfg.Floors))
	}
	if len(cfg.Residues) != 1 {
		t.Fatalf("len(Residues) = %d, want 1", len(cfg.Residues))
	}
	if len(cfg.Mappings) != 1 {
		t.Fatalf("len(Mappings) = %d, want 1", len(cfg.Mappings))
	}
	if len(cfg.Modes) != 1 {
		t.Fatalf("len(Modes) = %d, want 1", len(cfg.Modes))
	}

	if cfg.Mappings[0].Submaps[0].FloorIndex != 0 {
		t.Errorf("FloorIndex = %d, want 0", cfg.Mappings[0].Submaps[0].FloorIndex)
	}
	if cfg.Mappings[0].Submaps[0].ResidueIndex != 0 {
		t.Errorf("ResidueIndex = %d, want 0", cfg.Mappings[0].Submaps[0].ResidueIndex)
	}
	if cfg.Modes[0].Mapping != 0 {
		t.Errorf("Modes[0].Mapping = %d, want 0", cfg.Modes[0].Mapping)
	}
}

func TestParseSetupRejectsTruncatedPacket(t *testing.T) {
	packet := writeMinimalSetup(t)
	_, err := Parse(packet[:len(packet)-3], 1, 10)
	if err != ErrMalformed {
		t.Errorf("Parse error = %v, want %v", err, ErrMalformed)
	}
}

func TestParseFloorType0IsRejected(t *testing.T) {
	w := &bitWriter{}
	w.write(5, 8)
	writeSync(w)
	w.write(0, 8) // codebook count=1
	w.write(0x42, 8)
	w.write(0x43, 8)
	w.write(0x56, 8)
	w.write(1, 8)
	w.write(0, 8)
	w.write(1, 8)
	w.write(0, 8)
	w.write(0, 8)
	w.write(0, 1)
	w.write(0, 1)
	w.write(0, 5)
	w.write(0, 4)

	w.write(0, 6) // time-domain count=1
	w.write(0, 16)

	w.write(0, 6)  // floor count=1
	w.write(0, 16) // floor type 0
	w.write(0, 8)  // order
	w.write(0, 16) // rate
	w.write(0, 16) // bark_map_size
	w.write(0, 6)  // amplitude_bits
	w.write(0, 8)  // amplitude_offset
	w.write(0, 4)  // number_of_books-1=0 -> 1
	w.write(0, 8)  // book index

	_, err := Parse(w.bytes(), 1, 10)
	if err != ErrFeatureNotSupported {
		t.Errorf("Parse error = %v, want %v", err, ErrFeatureNotSupported)
	}
}
