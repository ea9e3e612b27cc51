// pushdata.go implements push-mode decoding: the caller owns the byte
// source and hands the decoder successive buffers rather than letting
// it block on an io.Reader, exactly stb_vorbis's
// stb_vorbis_decode_frame_pushdata contract (spec.md §5's "caller
// retries with the same buffer plus more bytes prepended").
//
// Unlike pull mode (decoder.go, built on ogg.Reader), a PushDecoder
// drives ogg.ParsePage and ogg.Resyncer directly — ogg.Reader blocks
// on its io.Reader and is documented as unsuitable here.

package vorbis

import (
	"github.com/vorbisgo/vorbis/internal/bitreader"
	"github.com/vorbisgo/vorbis/internal/dsp"
	"github.com/vorbisgo/vorbis/internal/imdct"
	"github.com/vorbisgo/vorbis/internal/mapping"
	"github.com/vorbisgo/vorbis/internal/setup"
	"github.com/vorbisgo/vorbis/internal/window"
	"github.com/vorbisgo/vorbis/ogg"
)

// PushDecoder is the push-mode counterpart to Decoder: the caller
// supplies bytes incrementally via DecodeFramePushData instead of the
// decoder pulling from an io.Reader.
//
// Like Decoder, a PushDecoder is single-threaded and stream-scoped.
type PushDecoder struct {
	opts Options

	resync     *ogg.Resyncer
	serial     uint32
	haveSerial bool
	eos        bool
	needResync bool

	partial []byte // bytes of a packet still awaiting continuation
	pending [][]byte
	pendingGranule uint64
	pendingLast    bool

	id      *ogg.Identification
	comment *ogg.Comment
	cfg     *setup.Config

	channels   int
	blockSize0 int
	blockSize1 int

	tail       [][]float32
	firstFrame bool
	currentLoc int64

	state   state
	lastErr error
}

// NewPushDecoder opens a Vorbis stream in push mode, consuming the
// three header packets from data. Returns ErrNeedMoreData if data
// does not yet contain all three header packets — the caller should
// call again with the same bytes plus more appended.
func NewPushDecoder(data []byte, options ...Option) (dec *PushDecoder, consumed int, err error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}

	p := &PushDecoder{
		opts:       opts,
		resync:     ogg.NewResyncer(opts.crcScannerCount),
		firstFrame: true,
	}

	total := 0
	var idPacket, commentPacket, setupPacket []byte
	for _, slot := range []*[]byte{&idPacket, &commentPacket, &setupPacket} {
		packet, n, _, _, perr := p.nextPacketFrom(data[total:])
		if perr != nil {
			return nil, total, perr
		}
		*slot = packet
		total += n
	}

	id, err := ogg.ParseIdentification(idPacket)
	if err != nil {
		return nil, total, ErrInvalidFirstPage
	}
	if int(id.Channels) > opts.maxChannels {
		return nil, total, ErrTooManyChannels
	}
	p.id = id
	p.channels = int(id.Channels)
	p.blockSize0 = id.Blocksize0()
	p.blockSize1 = id.Blocksize1()

	comment, err := ogg.ParseComment(commentPacket)
	if err != nil {
		return nil, total, ErrBadPacketType
	}
	p.comment = comment

	cfg, err := setup.Parse(setupPacket, p.channels, opts.fastTableBits)
	if err != nil {
		if err == setup.ErrFeatureNotSupported {
			return nil, total, ErrFeatureNotSupported
		}
		return nil, total, ErrInvalidSetup
	}
	p.cfg = cfg
	p.tail = make([][]float32, p.channels)
	p.state = stateReady

	return p, total, nil
}

// nextPacketFrom extracts the next whole packet available at the
// front of data, without retaining data itself — per the push-mode
// contract, the caller always re-presents bytes starting where the
// last call's consumed count left off.
func (p *PushDecoder) nextPacketFrom(data []byte) (packet []byte, consumed int, granule uint64, lastPage bool, err error) {
	if len(p.pending) > 0 {
		packet = p.pending[0]
		p.pending = p.pending[1:]
		return packet, 0, p.pendingGranule, p.pendingLast && len(p.pending) == 0, nil
	}

	off := 0
	for {
		var page *ogg.Page
		var n int
		if p.needResync {
			page, n, err = p.resync.Scan(data[off:])
		} else {
			page, n, err = ogg.ParsePage(data[off:])
		}
		if err != nil {
			if err == ogg.ErrNeedMoreData {
				return nil, off, 0, false, ErrNeedMoreData
			}
			// Malformed page at the current position. ParsePage reports
			// no consumed bytes on a format error and Scan never returns
			// one, so n is 0 here and the page is reported as
			// ErrMissingCapturePattern, which DecodeFramePushData treats
			// as fatal for the stream.
			p.needResync = true
			off += n
			if n == 0 {
				return nil, off, 0, false, ErrMissingCapturePattern
			}
			continue
		}
		p.needResync = false

		if !p.haveSerial {
			p.serial = page.SerialNumber
			p.haveSerial = true
		} else if page.SerialNumber != p.serial {
			off += n
			continue // a second logical bitstream interleaved: ignore its pages
		}
		if page.IsLastPage() {
			p.eos = true
		}

		if page.IsContinuation() && p.partial == nil {
			off += n
			return nil, off, 0, false, ErrContinuedPacketFlagInvalid
		}

		packets := page.Packets()
		if page.IsContinuation() && len(packets) > 0 {
			packets[0] = append(append([]byte(nil), p.partial...), packets[0]...)
			p.partial = nil
		}

		off += n
		if len(packets) == 0 {
			continue
		}

		first := packets[0]
		if len(packets) > 1 {
			p.pending = packets[1:]
			p.pendingGranule = page.GranulePos
			p.pendingLast = page.IsLastPage()
		}
		return first, off, page.GranulePos, page.IsLastPage() && len(packets) == 1, nil
	}
}

// DecodeFramePushData consumes one frame's worth of bytes from data
// and returns the number of bytes consumed, channel count, decoded
// planar PCM, and sample count, following stb_vorbis's tuple
// contract: need_more_data is (0,0), a resync discarding bytes with
// no audio produced is (n,0), and a successful decode is (n,m).
func (p *PushDecoder) DecodeFramePushData(data []byte) (consumed, channels int, pcm [][]float32, samples int, err error) {
	if p.state == stateErrored {
		return 0, 0, nil, 0, p.lastErr
	}

	for {
		packet, n, granulePos, lastPage, perr := p.nextPacketFrom(data)
		if perr != nil {
			if perr == ErrNeedMoreData {
				return 0, 0, nil, 0, ErrNeedMoreData
			}
			p.lastErr = perr
			p.state = stateErrored
			return n, 0, nil, 0, perr
		}
		if packet == nil {
			// Forward progress was made (resync skipped bytes, or an
			// empty page was consumed) but no packet is ready yet.
			return n, 0, nil, 0, nil
		}

		out, nsamples, ok := decodeAudioPacket(packet, p.cfg, p.channels, p.blockSize0, p.blockSize1, p.tail)
		if !ok {
			return n, 0, nil, 0, nil
		}

		if p.firstFrame {
			p.firstFrame = false
			return n, p.channels, nil, 0, nil
		}

		if lastPage && granulePos != 0 {
			target := int64(granulePos)
			if p.currentLoc+int64(nsamples) > target {
				clip := p.currentLoc + int64(nsamples) - target
				if clip > int64(nsamples) {
					clip = int64(nsamples)
				}
				nsamples -= int(clip)
				for ch := range out {
					out[ch] = out[ch][:nsamples]
				}
			}
		}
		p.currentLoc += int64(nsamples)

		return n, p.channels, out, nsamples, nil
	}
}

// decodeAudioPacket is the packet-decode pipeline shared by pull and
// push mode, mutating the per-channel tail buffers in place.
func decodeAudioPacket(packet []byte, cfg *setup.Config, channels, blockSize0, blockSize1 int, tail [][]float32) (pcm [][]float32, samples int, ok bool) {
	r := bitreader.New(packet)

	if packetType, got := r.Bit(); !got || packetType {
		return nil, 0, false
	}

	modeBits := uint(dsp.ILog(len(cfg.Modes) - 1))
	modeIdx, got := r.Bits(modeBits)
	if !got || int(modeIdx) >= len(cfg.Modes) {
		return nil, 0, false
	}
	mode := cfg.Modes[modeIdx]

	n := blockSize0
	if mode.BlockFlag {
		n = blockSize1
	}
	half := n / 2

	prevLong, nextLong := false, false
	if mode.BlockFlag {
		if v, got := r.Bit(); got {
			prevLong = v
		}
		if v, got := r.Bit(); got {
			nextLong = v
		}
	}

	mapCfg := cfg.Mappings[mode.Mapping]
	spectra, ok := mapping.Decode(mapCfg, cfg.Floors, cfg.Residues, cfg.Codebooks, channels, half, r.Peek, r.Advance)
	if !ok {
		return nil, 0, false
	}

	out := make([][]float32, channels)
	ls, le, rs, re := window.Boundaries(n, blockSize0, mode.BlockFlag, prevLong, nextLong)
	for ch := 0; ch < channels; ch++ {
		y := imdct.Decode(spectra[ch])
		emitted, newTail := window.OverlapAdd(y, tail[ch], ls, le, rs, re)
		out[ch] = emitted
		tail[ch] = newTail
	}
	return out, len(out[0]), true
}

// FlushPushData discards any buffered partial-packet state and marks
// the decoder ready to resynchronise on the next call to
// DecodeFramePushData, for callers that seek their underlying byte
// source out from under the decoder.
func (p *PushDecoder) FlushPushData() {
	p.partial = nil
	p.pending = nil
	p.needResync = true
}

// Info returns the decoder's static stream parameters.
func (p *PushDecoder) Info() Info {
	info := Info{
		SampleRate:   int(p.id.SampleRate),
		Channels:     p.channels,
		MaxFrameSize: p.blockSize1,
	}
	if p.comment != nil {
		info.VendorString = p.comment.Vendor
		info.CommentFields = p.comment.Comments
	}
	return info
}

// Close releases the decoder's resources.
func (p *PushDecoder) Close() error {
	p.state = stateEOF
	p.cfg = nil
	return nil
}
