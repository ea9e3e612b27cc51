package ogg

import "errors"

// Package-level errors for Ogg page parsing.
//
// The top-level vorbis package wraps these into its own ErrCode values at
// the packet-boundary error latch described in spec.md §7:
// ErrMissingCapture, ErrBadContinuation and ErrSerialMismatch become
// missing_capture_pattern, continued_packet_flag_invalid and
// incorrect_stream_serial_number; any other page error, ErrBadVersion
// included, is reported as invalid_stream.
var (
	// ErrMissingCapture indicates the 4-byte "OggS" capture pattern was not
	// found at the expected offset.
	ErrMissingCapture = errors.New("ogg: missing capture pattern")

	// ErrBadVersion indicates the stream structure version byte was not 0.
	ErrBadVersion = errors.New("ogg: unsupported stream structure version")

	// ErrTruncatedPage indicates a Vorbis identification or comment header
	// packet is too short to hold its fixed fields. A page buffer that is
	// too short is reported by ParsePage as ErrNeedMoreData instead.
	ErrTruncatedPage = errors.New("ogg: truncated page")

	// ErrBadCRC indicates the page's CRC-32 checksum did not match.
	ErrBadCRC = errors.New("ogg: CRC mismatch")

	// ErrSerialMismatch indicates a page's serial number did not match the
	// logical bitstream the reader is currently tracking.
	ErrSerialMismatch = errors.New("ogg: stream serial number mismatch")

	// ErrBadContinuation indicates a page's continuation flag was
	// inconsistent with the reader's partial-packet state (either a
	// continuation page arrived with no pending partial packet, or a
	// non-continuation page arrived while one was pending).
	ErrBadContinuation = errors.New("ogg: continued packet flag invalid")

	// ErrNeedMoreData indicates the buffer holds an incomplete page and
	// the caller must supply more bytes before a page can be parsed. This
	// is not a format error; push-mode callers retry with extended input.
	ErrNeedMoreData = errors.New("ogg: need more data")
)
