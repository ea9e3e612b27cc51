// seek.go implements stream_length_in_samples and Seek, pull-mode-only
// per spec.md §4.11: bracket by binary search over byte offsets,
// refine by decoding at least one full frame before trusting samples,
// then skip forward by decoding and discarding whole frames until the
// running sample position reaches the target. The frame that crosses
// the target is discarded whole; no partial-frame trim is applied.

package vorbis

import (
	"bytes"
	"io"

	"github.com/vorbisgo/vorbis/ogg"
)

// scanWindow bounds how far seek.go reads in one shot while hunting
// for a page boundary; large enough to comfortably contain a handful
// of Ogg pages at typical bitrates.
const scanWindow = 64 * 1024

// seeker is the subset of io.ReadSeeker the seek and length operations
// need. NewDecoder records it automatically when its source implements
// io.Seeker.
type seeker interface {
	io.Reader
	io.Seeker
}

// Length returns the stream's total length in samples, found by
// scanning backward from the end of the byte source for its last
// page's granule position (stb_vorbis's get_prev_page approach).
// Returns ErrSeekWithoutLength if the source is not seekable or
// seeking was disabled via WithSeekingDisabled, and
// ErrCantFindLastPage if no valid page is found near EOF.
func (d *Decoder) Length() (uint32, error) {
	sk, ok := d.seekSource()
	if !ok {
		return 0, ErrSeekWithoutLength
	}

	size, err := sk.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, ErrCantFindLastPage
	}

	start := size - scanWindow
	if start < 0 {
		start = 0
	}
	if _, err := sk.Seek(start, io.SeekStart); err != nil {
		return 0, ErrCantFindLastPage
	}
	buf := make([]byte, size-start)
	if _, err := io.ReadFull(sk, buf); err != nil && err != io.ErrUnexpectedEOF {
		return 0, ErrCantFindLastPage
	}

	var lastGranule uint64
	found := false
	off := 0
	for {
		idx := bytes.Index(buf[off:], []byte("OggS"))
		if idx < 0 {
			break
		}
		off += idx
		page, n, err := ogg.ParsePage(buf[off:])
		if err != nil {
			off++
			continue
		}
		lastGranule = page.GranulePos
		found = true
		off += n
	}
	if !found {
		return 0, ErrCantFindLastPage
	}
	return uint32(lastGranule), nil
}

// Seek moves the decoder to the frame containing sample, so the next
// GetFrameFloat call returns audio starting at (or very near) that
// sample position. It implements spec.md §4.11's three-phase
// bracket/refine/skip algorithm.
func (d *Decoder) Seek(sample uint32) error {
	sk, ok := d.seekSource()
	if !ok {
		return ErrSeekFailed
	}

	length, err := d.Length()
	if err != nil {
		return err
	}
	if sample > length {
		return ErrSeekInvalid
	}

	size, err := sk.Seek(0, io.SeekEnd)
	if err != nil {
		return ErrSeekFailed
	}

	lo, hi := int64(0), size
	var bracketOffset int64
	var bracketGranule uint64
	for hi-lo > scanWindow {
		mid := lo + (hi-lo)/2
		page, offset, err := findNextPage(sk, mid)
		if err != nil {
			hi = mid
			continue
		}
		if page.GranulePos <= uint64(sample) {
			lo = mid
			bracketOffset = offset
			bracketGranule = page.GranulePos
		} else {
			hi = mid
		}
	}
	if bracketOffset == 0 && bracketGranule == 0 {
		// Target sample falls before the first bracketed page found;
		// restart decode from the very beginning of the stream.
		page, offset, err := findNextPage(sk, 0)
		if err != nil {
			return ErrSeekFailed
		}
		bracketOffset = offset
		bracketGranule = page.GranulePos
	}

	if _, err := sk.Seek(bracketOffset, io.SeekStart); err != nil {
		return ErrSeekFailed
	}
	d.src = ogg.NewReader(sk)
	d.tail = make([][]float32, d.channels)
	d.firstFrame = false
	d.currentLoc = int64(bracketGranule)
	d.state = stateReady

	// Refine: consume one full frame so the overlap state is valid
	// before trusting current_loc.
	_, _, err = d.GetFrameFloat()
	if err != nil && err != io.EOF {
		return ErrSeekFailed
	}

	// Skip: discard samples until current_loc reaches the target.
	for d.currentLoc < int64(sample) {
		_, _, err := d.GetFrameFloat()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ErrSeekFailed
		}
	}
	return nil
}

// findNextPage scans forward from byte offset off in sk for the next
// valid Ogg page, returning it and its starting byte offset.
func findNextPage(sk seeker, off int64) (*ogg.Page, int64, error) {
	if _, err := sk.Seek(off, io.SeekStart); err != nil {
		return nil, 0, err
	}
	buf := make([]byte, scanWindow)
	n, err := io.ReadFull(sk, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, 0, err
	}
	buf = buf[:n]

	pos := 0
	for {
		idx := bytes.Index(buf[pos:], []byte("OggS"))
		if idx < 0 {
			return nil, 0, ErrCantFindLastPage
		}
		pos += idx
		page, _, perr := ogg.ParsePage(buf[pos:])
		if perr == nil {
			return page, off + int64(pos), nil
		}
		pos++
	}
}

// seekSource reports whether this decoder's byte source supports
// seeking and seeking has not been disabled.
func (d *Decoder) seekSource() (seeker, bool) {
	if d.opts.seekingDisabled {
		return nil, false
	}
	sk, ok := d.rawSource.(seeker)
	if !ok {
		return nil, false
	}
	return sk, true
}
