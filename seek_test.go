package vorbis

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/vorbisgo/vorbis/ogg"
)

// buildStreamWithTrailingGranule appends one more page after the setup
// header, carrying an arbitrary payload and the given granule position,
// so Length() has something concrete to scan backward for.
func buildStreamWithTrailingGranule(channels uint8, sampleRate uint32, granule uint64) []byte {
	id := &ogg.Identification{
		Version:       0,
		Channels:      channels,
		SampleRate:    sampleRate,
		Blocksize0Log: 8,
		Blocksize1Log: 11,
	}
	comment := &ogg.Comment{Vendor: "vorbisgo test"}

	var buf bytes.Buffer
	buf.Write(oggPage(1, 0, ogg.FlagFirstPage, 0, id.Encode()))
	buf.Write(oggPage(1, 1, 0, 0, comment.Encode()))
	buf.Write(oggPage(1, 2, 0, 0, minimalSetupPacket()))
	buf.Write(oggPage(1, 3, ogg.FlagLastPage, granule, []byte{0x00}))
	return buf.Bytes()
}

func TestLengthWithoutSeekableSourceReturnsErr(t *testing.T) {
	data := buildMinimalStream(1, 44100)
	dec, err := NewDecoder(bufio.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	_, err = dec.Length()
	if err != ErrSeekWithoutLength {
		t.Errorf("Length() error = %v, want %v", err, ErrSeekWithoutLength)
	}
}

func TestLengthFindsTrailingGranule(t *testing.T) {
	data := buildStreamWithTrailingGranule(1, 44100, 123456)
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	length, err := dec.Length()
	if err != nil {
		t.Fatalf("Length() returned error: %v", err)
	}
	if length != 123456 {
		t.Errorf("Length() = %d, want 123456", length)
	}
}

func TestSeekBeyondLengthIsInvalid(t *testing.T) {
	data := buildStreamWithTrailingGranule(1, 44100, 1000)
	dec, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	err = dec.Seek(1_000_000)
	if err != ErrSeekInvalid {
		t.Errorf("Seek() error = %v, want %v", err, ErrSeekInvalid)
	}
}

func TestSeekDisabledFailsImmediately(t *testing.T) {
	data := buildStreamWithTrailingGranule(1, 44100, 1000)
	dec, err := NewDecoder(bytes.NewReader(data), WithSeekingDisabled())
	if err != nil {
		t.Fatalf("NewDecoder returned error: %v", err)
	}

	err = dec.Seek(10)
	if err != ErrSeekFailed {
		t.Errorf("Seek() error = %v, want %v", err, ErrSeekFailed)
	}
}
