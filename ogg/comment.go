package ogg

import "encoding/binary"

// Comment is the decoded Vorbis comment header (packet type 3). spec.md
// §4.10 says the core skips this packet's body entirely ("an external
// collaborator may harvest it"); this parser exists as that external
// collaborator, not as part of the decode pipeline itself.
type Comment struct {
	Vendor   string
	Comments []string // "KEY=value" pairs, in stream order
}

// ParseComment parses a Vorbis comment header packet. It validates the
// packet type, magic, and trailing framing bit but does not otherwise
// affect decode state.
func ParseComment(packet []byte) (*Comment, error) {
	if len(packet) < 7 {
		return nil, ErrTruncatedPage
	}
	if packet[0] != PacketTypeComment {
		return nil, errBadPacketType
	}
	if string(packet[1:7]) != vorbisMagic {
		return nil, ErrInvalidHeader
	}

	p := packet[7:]
	if len(p) < 4 {
		return nil, ErrInvalidHeader
	}
	vendorLen := int(binary.LittleEndian.Uint32(p[0:4]))
	p = p[4:]
	if vendorLen < 0 || len(p) < vendorLen+4 {
		return nil, ErrInvalidHeader
	}
	vendor := string(p[:vendorLen])
	p = p[vendorLen:]

	count := int(binary.LittleEndian.Uint32(p[0:4]))
	p = p[4:]

	comments := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if len(p) < 4 {
			return nil, ErrInvalidHeader
		}
		l := int(binary.LittleEndian.Uint32(p[0:4]))
		p = p[4:]
		if l < 0 || len(p) < l {
			return nil, ErrInvalidHeader
		}
		comments = append(comments, string(p[:l]))
		p = p[l:]
	}

	if len(p) < 1 || p[0]&0x01 == 0 {
		return nil, ErrInvalidHeader
	}

	return &Comment{Vendor: vendor, Comments: comments}, nil
}

// Encode serializes the comment header back to its wire form. Used by
// tests to build synthetic Vorbis streams.
func (c *Comment) Encode() []byte {
	size := 7 + 4 + len(c.Vendor) + 4
	for _, cm := range c.Comments {
		size += 4 + len(cm)
	}
	size++ // framing bit

	data := make([]byte, size)
	data[0] = PacketTypeComment
	copy(data[1:7], vorbisMagic)
	off := 7

	binary.LittleEndian.PutUint32(data[off:off+4], uint32(len(c.Vendor)))
	off += 4
	off += copy(data[off:], c.Vendor)

	binary.LittleEndian.PutUint32(data[off:off+4], uint32(len(c.Comments)))
	off += 4

	for _, cm := range c.Comments {
		binary.LittleEndian.PutUint32(data[off:off+4], uint32(len(cm)))
		off += 4
		off += copy(data[off:], cm)
	}

	data[off] = 0x01
	return data
}
