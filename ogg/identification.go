package ogg

import (
	"encoding/binary"
	"errors"
)

// Packet type bytes for the three Vorbis header packets (Vorbis I spec
// §4.2.1: "packets with their first byte having a value of 1, 3, or 5").
const (
	PacketTypeIdentification = 1
	PacketTypeComment        = 3
	PacketTypeSetup          = 5
)

const vorbisMagic = "vorbis"

// identificationMinSize is the fixed length of a Vorbis identification
// header packet: 1 (type) + 6 ("vorbis") + 4 (version) + 1 (channels) +
// 4 (sample rate) + 4*3 (bitrates) + 1 (blocksizes) + 1 (framing) = 30.
const identificationMinSize = 30

// Identification is the decoded Vorbis identification header (packet type
// 1), which spec.md §4.10's HeaderId state validates on the first packet
// of a logical bitstream.
type Identification struct {
	Version       uint32 // must be 0
	Channels      uint8
	SampleRate    uint32
	BitrateMax    int32
	BitrateNom    int32
	BitrateMin    int32
	Blocksize0Log uint8 // log2 of the short block size
	Blocksize1Log uint8 // log2 of the long block size
}

// Blocksize0 returns 2^Blocksize0Log.
func (h *Identification) Blocksize0() int { return 1 << h.Blocksize0Log }

// Blocksize1 returns 2^Blocksize1Log.
func (h *Identification) Blocksize1() int { return 1 << h.Blocksize1Log }

// ParseIdentification parses and validates a Vorbis identification header
// packet per spec.md §4.10's HeaderId checks: magic, version 0, channel
// count in 1..255, nonzero sample rate, block sizes that are powers of two
// in 2^6..2^13 with blocksize_0 <= blocksize_1, and the trailing framing
// bit set.
func ParseIdentification(packet []byte) (*Identification, error) {
	if len(packet) < identificationMinSize {
		return nil, ErrTruncatedPage
	}
	if packet[0] != PacketTypeIdentification {
		return nil, errBadPacketType
	}
	if string(packet[1:7]) != vorbisMagic {
		return nil, ErrInvalidHeader
	}

	h := &Identification{
		Version:    binary.LittleEndian.Uint32(packet[7:11]),
		Channels:   packet[11],
		SampleRate: binary.LittleEndian.Uint32(packet[12:16]),
		BitrateMax: int32(binary.LittleEndian.Uint32(packet[16:20])),
		BitrateNom: int32(binary.LittleEndian.Uint32(packet[20:24])),
		BitrateMin: int32(binary.LittleEndian.Uint32(packet[24:28])),
	}
	if h.Version != 0 {
		return nil, ErrInvalidHeader
	}
	if h.Channels == 0 {
		return nil, ErrInvalidHeader
	}
	if h.SampleRate == 0 {
		return nil, ErrInvalidHeader
	}

	blockByte := packet[28]
	h.Blocksize0Log = blockByte & 0x0F
	h.Blocksize1Log = (blockByte >> 4) & 0x0F
	if h.Blocksize0Log < 6 || h.Blocksize0Log > 13 || h.Blocksize1Log < 6 || h.Blocksize1Log > 13 {
		return nil, ErrInvalidHeader
	}
	if h.Blocksize0Log > h.Blocksize1Log {
		return nil, ErrInvalidHeader
	}

	framing := packet[29]
	if framing&0x01 == 0 {
		return nil, ErrInvalidHeader
	}

	return h, nil
}

// Encode serializes the identification header back to its wire form. Used
// by tests to build synthetic Vorbis streams.
func (h *Identification) Encode() []byte {
	data := make([]byte, identificationMinSize)
	data[0] = PacketTypeIdentification
	copy(data[1:7], vorbisMagic)
	binary.LittleEndian.PutUint32(data[7:11], h.Version)
	data[11] = h.Channels
	binary.LittleEndian.PutUint32(data[12:16], h.SampleRate)
	binary.LittleEndian.PutUint32(data[16:20], uint32(h.BitrateMax))
	binary.LittleEndian.PutUint32(data[20:24], uint32(h.BitrateNom))
	binary.LittleEndian.PutUint32(data[24:28], uint32(h.BitrateMin))
	data[28] = (h.Blocksize1Log << 4) | (h.Blocksize0Log & 0x0F)
	data[29] = 0x01
	return data
}

var (
	// ErrInvalidHeader indicates a Vorbis identification or comment header
	// packet is structurally malformed.
	ErrInvalidHeader = errors.New("ogg: invalid vorbis header")

	errBadPacketType = errors.New("ogg: unexpected vorbis packet type")
)
