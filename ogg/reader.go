package ogg

import "io"

// readBufferSize is the initial size of the internal page-assembly buffer.
const readBufferSize = 64 * 1024

// Reader reads Vorbis packets from an Ogg byte stream in pull mode: it
// owns an io.Reader and blocks on it as needed. Push-mode callers (which
// must never block) drive ParsePage and Resyncer directly instead of using
// Reader — see spec.md §4.2 and the vorbis package's pushdata.go.
type Reader struct {
	r          io.Reader
	serial     uint32
	haveSerial bool
	eos        bool

	buf    []byte
	offset int
	length int

	partial    []byte // bytes of a packet still awaiting continuation
	pending    [][]byte
	pendingPos uint64 // granule position to report with the pending packets' page
}

// NewReader creates a Reader over r. It does not read anything until the
// first call to NextPacket; callers typically call NextPacket three times
// to retrieve the identification, comment, and setup packets before
// beginning audio decode.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, readBufferSize)}
}

// Serial returns the logical bitstream serial number, valid once the first
// page has been read.
func (rd *Reader) Serial() uint32 { return rd.serial }

// EOF reports whether the last page flagged end-of-stream.
func (rd *Reader) EOF() bool { return rd.eos }

// NextPacket returns the next Vorbis packet, its page's granule position,
// and whether the page containing it set the last-page flag.
//
// Returns io.EOF once the end-of-stream page has been fully drained.
func (rd *Reader) NextPacket() (packet []byte, granulePos uint64, lastPage bool, err error) {
	if len(rd.pending) > 0 {
		packet = rd.pending[0]
		rd.pending = rd.pending[1:]
		return packet, rd.pendingPos, rd.eos && len(rd.pending) == 0, nil
	}

	if rd.partial != nil {
		return rd.readContinuation()
	}

	page, err := rd.readPage()
	if err != nil {
		return nil, 0, false, err
	}
	return rd.consumePage(page)
}

// consumePage splits a freshly read page into packets, queues any beyond
// the first, and stashes a trailing partial packet for continuation.
func (rd *Reader) consumePage(page *Page) ([]byte, uint64, bool, error) {
	if page.IsContinuation() && rd.partial == nil {
		return nil, 0, false, ErrBadContinuation
	}

	packets := page.Packets()
	if page.IsContinuation() && len(packets) > 0 {
		packets[0] = append(append([]byte(nil), rd.partial...), packets[0]...)
		rd.partial = nil
	}

	if page.endsWithPartialPacket() {
		rd.partial = append([]byte(nil), page.partialTail()...)
	}

	if len(packets) == 0 {
		if rd.partial != nil || !rd.eos {
			return rd.NextPacket()
		}
		return nil, 0, false, io.EOF
	}

	first := packets[0]
	if len(packets) > 1 {
		rd.pending = packets[1:]
		rd.pendingPos = page.GranulePos
	}
	return first, page.GranulePos, page.IsLastPage() && len(rd.pending) == 0 && rd.partial == nil, nil
}

// readContinuation pulls pages until the pending partial packet completes.
func (rd *Reader) readContinuation() ([]byte, uint64, bool, error) {
	for {
		page, err := rd.readPage()
		if err != nil {
			return nil, 0, false, err
		}
		if !page.IsContinuation() {
			return nil, 0, false, ErrBadContinuation
		}
		return rd.consumePage(page)
	}
}

// readPage pulls bytes from r until a full page can be parsed, verifying
// the serial number matches the bitstream this Reader is tracking (the
// first page read fixes the expected serial).
func (rd *Reader) readPage() (*Page, error) {
	for {
		if rd.length > rd.offset {
			page, consumed, err := ParsePage(rd.buf[rd.offset:rd.length])
			if err == nil {
				rd.offset += consumed
				if !rd.haveSerial {
					rd.serial = page.SerialNumber
					rd.haveSerial = true
				} else if page.SerialNumber != rd.serial {
					return nil, ErrSerialMismatch
				}
				if page.IsLastPage() {
					rd.eos = true
				}
				return page, nil
			}
			if err != ErrNeedMoreData {
				return nil, err
			}
		}

		if rd.offset > 0 {
			remaining := rd.length - rd.offset
			copy(rd.buf, rd.buf[rd.offset:rd.length])
			rd.length = remaining
			rd.offset = 0
		}
		if rd.length >= len(rd.buf) {
			bigger := make([]byte, len(rd.buf)*2)
			copy(bigger, rd.buf[:rd.length])
			rd.buf = bigger
		}

		n, err := rd.r.Read(rd.buf[rd.length:])
		rd.length += n
		if err != nil {
			if err == io.EOF {
				if rd.length > rd.offset {
					page, consumed, perr := ParsePage(rd.buf[rd.offset:rd.length])
					if perr == nil {
						rd.offset += consumed
						if page.IsLastPage() {
							rd.eos = true
						}
						return page, nil
					}
				}
				if rd.eos && rd.partial == nil && rd.length == rd.offset {
					return nil, io.EOF
				}
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}
