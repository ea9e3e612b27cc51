// Package ogg implements the Ogg container framing layer consumed by the
// Vorbis decode core (spec.md §4.2).
//
// The Ogg format packages a logical bitstream as a sequence of pages. Each
// page carries:
//
//	Bytes 0-3:   "OggS" capture pattern
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type flags (continuation, first page, last page)
//	Bytes 6-13:  Granule position
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC-32 checksum (polynomial 0x04C11DB7, non-reflected)
//	Byte 26:     Segment count
//	Bytes 27+:   Segment (lacing) table, one byte per segment
//	Remaining:   Page payload
//
// # Packets
//
// A packet is the concatenation of one or more segments and ends at the
// first segment whose lacing value is less than 255. A segment value of
// 255 always means "this packet continues"; a packet that is an exact
// multiple of 255 bytes is terminated by an explicit zero-length segment.
//
// # Vorbis header packets
//
// The first three packets of a Vorbis logical bitstream are, in order,
// the identification header (type 1), the comment header (type 3), and
// the setup header (type 5). See Identification and Comment in this
// package; the setup header's contents (codebooks, floors, residues,
// mappings, modes) are decoded by the internal/setup package, not here.
//
// # Push-mode resync
//
// After a caller-signalled discontinuity, Resyncer scans forward for the
// next valid page rather than assuming byte 0 of the next buffer starts a
// page, since a byte sequence matching "OggS" can occur inside arbitrary
// payload data and must be validated by CRC before it is trusted.
package ogg
