package ogg

import "testing"

func TestResyncerScanFindsPageAfterGarbagePrefix(t *testing.T) {
	p := &Page{Segments: BuildSegmentTable(4), Payload: []byte("data")}
	data := append([]byte("garbage preceding junk that is not OggS"), p.Encode()...)

	r := NewResyncer(DefaultResyncScanners)
	got, consumed, err := r.Scan(data)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if consumed != len(data) {
		t.Errorf("consumed = %d, want %d", consumed, len(data))
	}
	if string(got.Payload) != "data" {
		t.Errorf("Payload = %q, want %q", got.Payload, "data")
	}
}

func TestResyncerScanSkipsFalseCapturePattern(t *testing.T) {
	p := &Page{Segments: BuildSegmentTable(4), Payload: []byte("data")}
	fake := []byte("OggS but not a real page header here")
	data := append(fake, p.Encode()...)

	r := NewResyncer(DefaultResyncScanners)
	got, _, err := r.Scan(data)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if string(got.Payload) != "data" {
		t.Errorf("Payload = %q, want %q", got.Payload, "data")
	}
}

func TestResyncerScanNeedsMoreDataOnShortBuffer(t *testing.T) {
	r := NewResyncer(DefaultResyncScanners)
	_, _, err := r.Scan([]byte("Og"))
	if err != ErrNeedMoreData {
		t.Errorf("Scan error = %v, want %v", err, ErrNeedMoreData)
	}
}

func TestNewResyncerClampsMinimumCandidates(t *testing.T) {
	r := NewResyncer(0)
	if r.MaxCandidates != 2 {
		t.Errorf("MaxCandidates = %d, want 2", r.MaxCandidates)
	}
}
