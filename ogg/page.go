package ogg

import "encoding/binary"

// Page header flag constants (spec.md §4.2).
const (
	// FlagContinuation marks a page whose first packet continues one
	// begun on a previous page.
	FlagContinuation = 0x1

	// FlagFirstPage marks the first page of a logical bitstream.
	FlagFirstPage = 0x2

	// FlagLastPage marks the last page of a logical bitstream.
	FlagLastPage = 0x4
)

const (
	// headerSize is the fixed portion of an Ogg page header, before the
	// segment table.
	headerSize = 27

	capturePattern = "OggS"
)

// Page is a single parsed Ogg page (spec.md §6: 27-byte header, capture
// pattern "OggS", stream structure version 0, followed by a lacing table
// and payload).
type Page struct {
	Version      byte
	HeaderType   byte
	GranulePos   uint64
	SerialNumber uint32
	PageSequence uint32
	Segments     []byte
	Payload      []byte
}

func (p *Page) IsFirstPage() bool    { return p.HeaderType&FlagFirstPage != 0 }
func (p *Page) IsLastPage() bool     { return p.HeaderType&FlagLastPage != 0 }
func (p *Page) IsContinuation() bool { return p.HeaderType&FlagContinuation != 0 }

// BuildSegmentTable computes the lacing table for a packet of the given
// length. Packets are split into 255-byte segments with a final segment
// shorter than 255 (or an explicit zero-length terminator segment when the
// packet length is an exact multiple of 255), per spec.md's GLOSSARY entry
// for "Packet".
func BuildSegmentTable(packetLen int) []byte {
	if packetLen == 0 {
		return []byte{0}
	}
	full := packetLen / 255
	rem := packetLen % 255
	if rem == 0 {
		segs := make([]byte, full+1)
		for i := 0; i < full; i++ {
			segs[i] = 255
		}
		return segs
	}
	segs := make([]byte, full+1)
	for i := 0; i < full; i++ {
		segs[i] = 255
	}
	segs[full] = byte(rem)
	return segs
}

// PacketLengths reconstructs packet boundaries from a page's lacing table.
// A trailing 255-valued segment means the last packet is incomplete and
// continues on a following page; PacketLengths does not report that
// trailing packet's length since it is not yet complete.
func (p *Page) PacketLengths() []int {
	if len(p.Segments) == 0 {
		return nil
	}
	var lens []int
	cur := 0
	for _, seg := range p.Segments {
		cur += int(seg)
		if seg < 255 {
			lens = append(lens, cur)
			cur = 0
		}
	}
	return lens
}

// endsWithPartialPacket reports whether this page's last segment is 255,
// meaning its final (possibly only) packet continues onto the next page.
func (p *Page) endsWithPartialPacket() bool {
	return len(p.Segments) > 0 && p.Segments[len(p.Segments)-1] == 255
}

// Packets splits the page payload into complete packets using
// PacketLengths. Any trailing partial packet bytes are not included; the
// caller must combine them with the next page via endsWithPartialPacket.
func (p *Page) Packets() [][]byte {
	lens := p.PacketLengths()
	if len(lens) == 0 {
		return nil
	}
	out := make([][]byte, len(lens))
	offset := 0
	for i, l := range lens {
		if offset+l > len(p.Payload) {
			out[i] = p.Payload[offset:]
			break
		}
		out[i] = p.Payload[offset : offset+l]
		offset += l
	}
	return out
}

// partialTail returns the bytes of this page's trailing incomplete packet,
// i.e. everything after the last complete packet boundary.
func (p *Page) partialTail() []byte {
	lens := p.PacketLengths()
	offset := 0
	for _, l := range lens {
		offset += l
	}
	if offset >= len(p.Payload) {
		return nil
	}
	return p.Payload[offset:]
}

// Encode serializes the page, computing and filling in the CRC-32 field.
// Used by tests to build synthetic Ogg streams.
func (p *Page) Encode() []byte {
	total := headerSize + len(p.Segments) + len(p.Payload)
	data := make([]byte, total)

	copy(data[0:4], capturePattern)
	data[4] = p.Version
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:14], p.GranulePos)
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.PageSequence)
	data[26] = byte(len(p.Segments))
	copy(data[27:27+len(p.Segments)], p.Segments)
	copy(data[headerSize+len(p.Segments):], p.Payload)

	crc := crcChecksum(data)
	binary.LittleEndian.PutUint32(data[22:26], crc)
	return data
}

// ParsePage parses one Ogg page from the front of data.
//
// Returns the parsed page, the number of bytes consumed, and an error.
// ErrNeedMoreData (not a format error) means the caller should retry once
// more bytes are appended to data — this is what distinguishes push mode
// from a genuine malformed stream.
func ParsePage(data []byte) (*Page, int, error) {
	if len(data) < headerSize {
		return nil, 0, ErrNeedMoreData
	}
	if string(data[0:4]) != capturePattern {
		return nil, 0, ErrMissingCapture
	}

	p := &Page{
		Version:      data[4],
		HeaderType:   data[5],
		GranulePos:   binary.LittleEndian.Uint64(data[6:14]),
		SerialNumber: binary.LittleEndian.Uint32(data[14:18]),
		PageSequence: binary.LittleEndian.Uint32(data[18:22]),
	}
	if p.Version != 0 {
		return nil, 0, ErrBadVersion
	}

	storedCRC := binary.LittleEndian.Uint32(data[22:26])
	numSegments := int(data[26])
	hdrTotal := headerSize + numSegments
	if len(data) < hdrTotal {
		return nil, 0, ErrNeedMoreData
	}

	p.Segments = append([]byte(nil), data[27:hdrTotal]...)

	payloadSize := 0
	for _, s := range p.Segments {
		payloadSize += int(s)
	}
	total := hdrTotal + payloadSize
	if len(data) < total {
		return nil, 0, ErrNeedMoreData
	}
	p.Payload = append([]byte(nil), data[hdrTotal:total]...)

	check := append([]byte(nil), data[:total]...)
	check[22], check[23], check[24], check[25] = 0, 0, 0, 0
	if crcChecksum(check) != storedCRC {
		return nil, 0, ErrBadCRC
	}

	return p, total, nil
}
