package vorbis

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.maxChannels != defaultMaxChannels {
		t.Errorf("maxChannels = %d, want %d", o.maxChannels, defaultMaxChannels)
	}
	if o.fastTableBits != defaultFastTableBits {
		t.Errorf("fastTableBits = %d, want %d", o.fastTableBits, defaultFastTableBits)
	}
	if o.crcScannerCount <= 0 {
		t.Errorf("crcScannerCount = %d, want > 0", o.crcScannerCount)
	}
}

func TestWithMaxChannelsRejectsOutOfRange(t *testing.T) {
	o := defaultOptions()
	WithMaxChannels(0)(&o)
	if o.maxChannels != defaultMaxChannels {
		t.Errorf("zero should be ignored: maxChannels = %d, want %d", o.maxChannels, defaultMaxChannels)
	}

	WithMaxChannels(hardMaxChannels + 1)(&o)
	if o.maxChannels != defaultMaxChannels {
		t.Errorf("above the hard cap should be ignored: maxChannels = %d, want %d", o.maxChannels, defaultMaxChannels)
	}

	WithMaxChannels(32)(&o)
	if o.maxChannels != 32 {
		t.Errorf("maxChannels = %d, want 32", o.maxChannels)
	}
}

func TestWithFastTableBitsRejectsOutOfRange(t *testing.T) {
	o := defaultOptions()
	WithFastTableBits(maxFastTableBits + 1)(&o)
	if o.fastTableBits != defaultFastTableBits {
		t.Errorf("fastTableBits = %d, want %d", o.fastTableBits, defaultFastTableBits)
	}

	WithFastTableBits(12)(&o)
	if o.fastTableBits != 12 {
		t.Errorf("fastTableBits = %d, want 12", o.fastTableBits)
	}
}

func TestWithSeekingDisabled(t *testing.T) {
	o := defaultOptions()
	WithSeekingDisabled()(&o)
	if !o.seekingDisabled {
		t.Errorf("seekingDisabled = false, want true")
	}
}

func TestWithArenaStoresArena(t *testing.T) {
	o := defaultOptions()
	a := NewArena(1024)
	WithArena(a)(&o)
	if o.arena != a {
		t.Errorf("o.arena = %p, want %p", o.arena, a)
	}
}
