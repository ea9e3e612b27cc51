package vorbis

import (
	"bytes"
	"io"
	"testing"

	"github.com/vorbisgo/vorbis/ogg"
)

// bitWriter assembles a packet LSB-first, mirroring internal/bitreader's
// read convention, so these tests can hand-build a minimal setup packet
// the same way internal/setup's own tests do.
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

// minimalSetupPacket builds the smallest legal setup header: one scalar
// codebook, one floor1 with no partitions, one type-0 residue, one
// single-submap mapping with no coupling, and one short-block mode.
func minimalSetupPacket() []byte {
	w := &bitWriter{}
	w.write(5, 8)
	writeSync(w)

	w.write(0, 8) // codebook count=1
	w.write(0x42, 8)
	w.write(0x43, 8)
	w.write(0x56, 8)
	w.write(1, 8)
	w.write(0, 8)
	w.write(2, 8)
	w.write(0, 8)
	w.write(0, 8)
	w.write(0, 1)
	w.write(0, 1)
	w.write(0, 5)
	w.write(0, 5)
	w.write(0, 4)

	w.write(0, 6) // time-domain transfers: count=1
	w.write(0, 16)

	w.write(0, 6)  // floors: count=1
	w.write(1, 16) // floor type 1
	w.write(0, 5)  // partitions=0
	w.write(0, 2)  // multiplier-1=0
	w.write(6, 4)  // rangebits=6

	w.write(0, 6)  // residues: count=1
	w.write(0, 16) // residue type 0
	w.write(0, 24) // begin
	w.write(2, 24) // end
	w.write(1, 24) // part_size-1=1
	w.write(0, 6)  // classifications-1=0
	w.write(0, 8)  // classbook=0
	w.write(0, 3)  // cascade low bits
	w.write(0, 1)  // cascade high flag

	w.write(0, 6) // mappings: count=1
	w.write(0, 16)
	w.write(0, 1) // submaps flag
	w.write(0, 1) // coupling flag
	w.write(0, 2) // reserved
	w.write(0, 8) // discarded byte
	w.write(0, 8) // submap floor index
	w.write(0, 8) // submap residue index

	w.write(0, 6)  // modes: count=1
	w.write(0, 1)  // block flag = short
	w.write(0, 16) // windowtype
	w.write(0, 16) // transformtype
	w.write(0, 8)  // mapping index

	return w.bytes()
}

func oggPage(serial, sequence uint32, headerType byte, granule uint64, packets ...[]byte) []byte {
	var segs []byte
	var payload []byte
	for _, p := range packets {
		segs = append(segs, ogg.BuildSegmentTable(len(p))...)
		payload = append(payload, p...)
	}
	page := &ogg.Page{
		Version:      0,
		HeaderType:   headerType,
		GranulePos:   granule,
		SerialNumber: serial,
		PageSequence: sequence,
		Segments:     segs,
		Payload:      payload,
	}
	return page.Encode()
}

// buildMinimalStream assembles a complete, legal three-header Vorbis
// stream with no audio packets, each header packet on its own page.
func buildMinimalStream(channels uint8, sampleRate uint32) []byte {
	id := &ogg.Identification{
		Version:       0,
		Channels:      channels,
		SampleRate:    sampleRate,
		Blocksize0Log: 8,
		Blocksize1Log: 11,
	}
	comment := &ogg.Comment{Vendor: "vorbisgo test", Comments: []string{"TITLE=test"}}

	var buf bytes.Buffer
	buf.Write(oggPage(1, 0, ogg.FlagFirstPage, 0, id.Encode()))
	buf.Write(oggPage(1, 1, 0, 0, comment.Encode()))
	buf.Write(oggPage(1, 2, ogg.FlagLastPage, 0, minimalSetupPacket()))
	return buf.Bytes()
}

func TestNewDecoderParsesHeaders(t *testing.T) {
	data := buildMinimalStream(2, 44100)
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	info := dec.Info()
	if info.Channels != 2 {
		t.Errorf("Channels = %d, want 2", info.Channels)
	}
	if info.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", info.SampleRate)
	}
	if info.MaxFrameSize != 1<<11 {
		t.Errorf("MaxFrameSize = %d, want %d", info.MaxFrameSize, 1<<11)
	}
	if info.VendorString != "vorbisgo test" {
		t.Errorf("VendorString = %q, want %q", info.VendorString, "vorbisgo test")
	}
	want := []string{"TITLE=test"}
	if len(info.CommentFields) != len(want) || info.CommentFields[0] != want[0] {
		t.Errorf("CommentFields = %v, want %v", info.CommentFields, want)
	}
}

func TestNewDecoderRejectsTooManyChannels(t *testing.T) {
	data := buildMinimalStream(200, 44100)
	_, err := NewDecoder(bytes.NewReader(data), WithMaxChannels(16))
	if err != ErrTooManyChannels {
		t.Errorf("NewDecoder error = %v, want %v", err, ErrTooManyChannels)
	}
}

func TestNewDecoderRejectsMissingCapturePattern(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte("not an ogg stream at all")))
	if err == nil {
		t.Errorf("NewDecoder error = nil, want non-nil")
	}
}

func TestGetFrameFloatReturnsEOFOnEmptyAudio(t *testing.T) {
	data := buildMinimalStream(1, 48000)
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	_, _, err = dec.GetFrameFloat()
	if err != io.EOF {
		t.Errorf("GetFrameFloat error = %v, want io.EOF", err)
	}
}

func TestResetReinitialisesDecoderState(t *testing.T) {
	data := buildMinimalStream(2, 44100)
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	err = dec.Reset(bytes.NewReader(buildMinimalStream(1, 22050)))
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if dec.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", dec.Channels())
	}
	if dec.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", dec.SampleRate())
	}
}

func TestCodeStringMatchesReferenceOrdinals(t *testing.T) {
	if got := ErrCodeInvalidSetup.String(); got != "invalid_setup" {
		t.Errorf("ErrCodeInvalidSetup.String() = %q, want %q", got, "invalid_setup")
	}
	if got := ErrCodeMissingCapturePattern.String(); got != "missing_capture_pattern" {
		t.Errorf("ErrCodeMissingCapturePattern.String() = %q, want %q", got, "missing_capture_pattern")
	}
	if got := Code(ErrInvalidSetup); got != ErrCodeInvalidSetup {
		t.Errorf("Code(ErrInvalidSetup) = %v, want %v", got, ErrCodeInvalidSetup)
	}
	if got := Code(io.EOF); got != ErrCodeNone {
		t.Errorf("Code(io.EOF) = %v, want %v", got, ErrCodeNone)
	}
}
