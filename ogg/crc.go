package ogg

// Ogg CRC-32 using polynomial 0x04C11DB7, non-reflected, init 0.
//
// This is NOT the standard IEEE CRC-32 (polynomial 0xEDB88320) used by
// hash/crc32; Ogg defines its own variant, so the standard library
// implementation cannot be reused here.

var oggCRCTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		oggCRCTable[i] = crc
	}
}

// crcChecksum computes the Ogg CRC-32 of data from a zero initial state.
func crcChecksum(data []byte) uint32 {
	return crcUpdate(0, data)
}

// crcUpdate folds additional bytes into a running CRC accumulator. Its
// only caller is crcChecksum, i.e. whole-page verification in ParsePage;
// the push-mode Resyncer checks each candidate page through ParsePage
// and keeps no running CRC of its own.
func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}
