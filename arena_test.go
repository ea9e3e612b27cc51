package vorbis

import "testing"

func TestArenaAllocAdvancesOffsetAndZeroes(t *testing.T) {
	a := NewArena(16)
	b, err := a.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc(4) returned error: %v", err)
	}
	if len(b) != 4 {
		t.Errorf("len(b) = %d, want 4", len(b))
	}
	if a.Remaining() != 12 {
		t.Errorf("Remaining() = %d, want 12", a.Remaining())
	}
}

func TestArenaAllocExhaustionReturnsOutOfMemory(t *testing.T) {
	a := NewArena(4)
	_, err := a.Alloc(8)
	if err != ErrOutOfMemory {
		t.Errorf("Alloc(8) error = %v, want %v", err, ErrOutOfMemory)
	}
}

func TestArenaMarkResetReclaimsScratch(t *testing.T) {
	a := NewArena(32)
	mark := a.Mark()
	_, err := a.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc(16) returned error: %v", err)
	}
	if a.Remaining() != 16 {
		t.Errorf("Remaining() = %d, want 16", a.Remaining())
	}

	a.Reset(mark)
	if a.Remaining() != 32 {
		t.Errorf("Remaining() after Reset = %d, want 32", a.Remaining())
	}
}

func TestNilArenaFallsBackToHeap(t *testing.T) {
	var a *Arena
	b, err := a.Alloc(8)
	if err != nil {
		t.Fatalf("Alloc(8) on nil arena returned error: %v", err)
	}
	if len(b) != 8 {
		t.Errorf("len(b) = %d, want 8", len(b))
	}
	if a.Mark() != 0 {
		t.Errorf("Mark() on nil arena = %d, want 0", a.Mark())
	}
}
