package huffman

import "testing"

// bitPeeker is a tiny in-memory bit source used only by these tests,
// independent of the production bitreader package. Bits are stored in
// the order they would be read from the stream; peek(n) assembles them
// the same way bitreader.Peek does: bit 0 of the result is the next bit
// due to be read, bit (n-1) the n-th, zero-extended past the end.
type bitPeeker struct {
	bits []bool // read order
	pos  int
}

func (p *bitPeeker) peek(n uint) (uint32, bool) {
	var v uint32
	for i := uint(0); i < n; i++ {
		idx := p.pos + int(i)
		if idx < len(p.bits) && p.bits[idx] {
			v |= 1 << i
		}
	}
	return v, true
}

func (p *bitPeeker) advance(n uint) { p.pos += int(n) }

// pushCode appends e.code's low e.len bits, in bit-0-first order, which
// is exactly the order Decode expects to read them back in.
func (p *bitPeeker) pushCode(e entry) {
	for i := 0; i < e.len; i++ {
		p.bits = append(p.bits, (e.code>>uint(i))&1 != 0)
	}
}

func TestBuildSimpleTree(t *testing.T) {
	// 4 entries, all length 2: a perfectly full, balanced tree.
	tab, err := Build([]int{2, 2, 2, 2}, 10)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if tab == nil {
		t.Fatalf("Build returned nil table")
	}
}

func TestBuildOverFull(t *testing.T) {
	// Two single-bit codes (0 and 1) leave no room for a third entry of
	// any length: over-subscribed.
	_, err := Build([]int{1, 1, 1}, 10)
	if err != ErrOverFull {
		t.Errorf("Build error = %v, want %v", err, ErrOverFull)
	}
}

func TestBuildSingleEntryUnderFull(t *testing.T) {
	tab, err := Build([]int{1}, 10)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if tab == nil {
		t.Fatalf("Build returned nil table")
	}
}

func TestBuildEmptyRejected(t *testing.T) {
	_, err := Build([]int{Unused, Unused}, 10)
	if err != ErrEmpty {
		t.Errorf("Build error = %v, want %v", err, ErrEmpty)
	}
}

func TestDecodeFastTableRoundTrip(t *testing.T) {
	// An unbalanced tree (the Vorbis I spec's own illustrative example
	// shape): every assigned entry's own codeword, fed back in, must
	// decode to itself and consume exactly its own length.
	lengths := []int{2, 4, 4, 4, 4, 2, 3, 3}
	tab, err := Build(lengths, 10)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	codes, err := assignCodewords(lengths)
	if err != nil {
		t.Fatalf("assignCodewords returned error: %v", err)
	}

	for _, e := range codes {
		bp := &bitPeeker{}
		bp.pushCode(e)
		v, ok := tab.Decode(bp.peek, bp.advance)
		if !ok {
			t.Fatalf("entry %d failed to decode", e.value)
		}
		if v != e.value {
			t.Errorf("Decode = %d, want %d", v, e.value)
		}
		if bp.pos != e.len {
			t.Errorf("consumed %d bits, want %d", bp.pos, e.len)
		}
	}
}

func TestDecodeLongCodeUsesSortedFallback(t *testing.T) {
	// Force every code longer than a tiny fastBits so only the sorted
	// fallback path is exercised.
	lengths := []int{5, 5, 5, 5}
	tab, err := Build(lengths, 2)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(tab.sortedCodes) == 0 {
		t.Errorf("sortedCodes is empty, want non-empty")
	}

	codes, err := assignCodewords(lengths)
	if err != nil {
		t.Fatalf("assignCodewords returned error: %v", err)
	}
	for _, e := range codes {
		bp := &bitPeeker{}
		bp.pushCode(e)
		v, ok := tab.Decode(bp.peek, bp.advance)
		if !ok {
			t.Fatalf("entry %d failed to decode", e.value)
		}
		if v != e.value {
			t.Errorf("Decode = %d, want %d", v, e.value)
		}
		if bp.pos != e.len {
			t.Errorf("consumed %d bits, want %d", bp.pos, e.len)
		}
	}
}

func TestDecodeDistinguishesPrefixFreeCodes(t *testing.T) {
	// A codeword must not spuriously match a different, shorter entry's
	// fast-table slot: decode every entry back-to-back from a single
	// concatenated stream in entry order.
	lengths := []int{1, 2, 3, 3}
	tab, err := Build(lengths, 10)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	codes, err := assignCodewords(lengths)
	if err != nil {
		t.Fatalf("assignCodewords returned error: %v", err)
	}

	bp := &bitPeeker{}
	for _, e := range codes {
		bp.pushCode(e)
	}
	for _, e := range codes {
		v, ok := tab.Decode(bp.peek, bp.advance)
		if !ok {
			t.Fatalf("entry %d failed to decode", e.value)
		}
		if v != e.value {
			t.Errorf("Decode = %d, want %d", v, e.value)
		}
	}
}
