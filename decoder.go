// decoder.go implements the public Decoder API for Vorbis I decoding:
// the pull-mode constructor over an io.Reader and the per-packet
// pipeline spec.md §4.10 calls decode_packet_rest (mode/blocksize
// lookup, mapping decode, per-channel IMDCT, and windowed
// overlap-add).

package vorbis

import (
	"io"

	"github.com/vorbisgo/vorbis/internal/setup"
	"github.com/vorbisgo/vorbis/ogg"
)

// state names the decode driver's position in spec.md §4.10's state
// machine: Uninitialised -> HeaderId -> HeaderComment -> HeaderSetup ->
// Ready -> (PacketDecoded <-> Ready) -> Eof.
type state int

const (
	stateUninitialised state = iota
	stateHeaderID
	stateHeaderComment
	stateHeaderSetup
	stateReady
	stateEOF
	stateErrored
)

// Decoder decodes a single Vorbis I logical bitstream into planar
// float32 PCM, one decoder per stream.
//
// A Decoder instance maintains internal state and is NOT safe for
// concurrent use. Each goroutine should create its own Decoder
// instance, or use DecodeAll to fan independent streams across
// goroutines.
type Decoder struct {
	opts Options

	src       *ogg.Reader
	rawSource io.Reader // retained for Seek/Length, which need io.Seeker
	state     state

	id      *ogg.Identification
	comment *ogg.Comment
	cfg     *setup.Config

	channels   int
	blockSize0 int
	blockSize1 int

	tail       [][]float32 // per-channel overlap carried from the previous frame
	firstFrame bool // the very next successfully decoded frame must be discarded

	currentLoc int64 // running sample position, per spec.md §4.10
	lastErr    error
}

// NewDecoder opens a Vorbis stream for pull-mode decoding, reading and
// validating the three header packets (identification, comment,
// setup) before returning. If r also implements io.Seeker, Seek and
// Length become available.
func NewDecoder(r io.Reader, options ...Option) (*Decoder, error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(&opts)
	}

	d := &Decoder{
		opts:       opts,
		src:        ogg.NewReader(r),
		rawSource:  r,
		state:      stateUninitialised,
		firstFrame: true,
	}

	if err := d.readHeaders(); err != nil {
		d.state = stateErrored
		d.lastErr = err
		return nil, err
	}
	return d, nil
}

func (d *Decoder) readHeaders() error {
	idPacket, _, _, err := d.src.NextPacket()
	if err != nil {
		return wrapReadErr(err)
	}
	id, err := ogg.ParseIdentification(idPacket)
	if err != nil {
		return ErrInvalidFirstPage
	}
	if int(id.Channels) > d.opts.maxChannels {
		return ErrTooManyChannels
	}
	d.id = id
	d.channels = int(id.Channels)
	d.blockSize0 = id.Blocksize0()
	d.blockSize1 = id.Blocksize1()
	d.state = stateHeaderID

	commentPacket, _, _, err := d.src.NextPacket()
	if err != nil {
		return wrapReadErr(err)
	}
	comment, err := ogg.ParseComment(commentPacket)
	if err != nil {
		return ErrBadPacketType
	}
	d.comment = comment
	d.state = stateHeaderComment

	setupPacket, _, _, err := d.src.NextPacket()
	if err != nil {
		return wrapReadErr(err)
	}
	cfg, err := setup.Parse(setupPacket, d.channels, d.opts.fastTableBits)
	if err != nil {
		if err == setup.ErrFeatureNotSupported {
			return ErrFeatureNotSupported
		}
		return ErrInvalidSetup
	}
	d.cfg = cfg
	d.state = stateHeaderSetup

	d.tail = make([][]float32, d.channels)
	d.state = stateReady
	return nil
}

func wrapReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrUnexpectedEOF
	}
	switch err {
	case ogg.ErrMissingCapture:
		return ErrMissingCapturePattern
	case ogg.ErrBadContinuation:
		return ErrContinuedPacketFlagInvalid
	case ogg.ErrSerialMismatch:
		return ErrIncorrectStreamSerialNumber
	default:
		return ErrInvalidStream
	}
}

// Info reports the stream's sample rate, channel count, and maximum
// frame size (the long block size), the get_info-equivalent operation
// spec.md §6 names.
type Info struct {
	SampleRate    int
	Channels      int
	MaxFrameSize  int
	VendorString  string
	CommentFields []string
}

// Info returns the decoder's static stream parameters, valid once the
// headers have been read.
func (d *Decoder) Info() Info {
	info := Info{
		SampleRate:   int(d.id.SampleRate),
		Channels:     d.channels,
		MaxFrameSize: d.blockSize1,
	}
	if d.comment != nil {
		info.VendorString = d.comment.Vendor
		info.CommentFields = d.comment.Comments
	}
	return info
}

// Channels returns the number of audio channels.
func (d *Decoder) Channels() int { return d.channels }

// SampleRate returns the sample rate in Hz.
func (d *Decoder) SampleRate() int { return int(d.id.SampleRate) }

// GetFrameFloat decodes and returns the next frame of planar float32
// PCM, one slice per channel. It returns io.EOF once the stream is
// exhausted; the overlap tail held back from the last decoded frame is
// not emitted.
func (d *Decoder) GetFrameFloat() (pcm [][]float32, samples int, err error) {
	if d.state == stateErrored {
		return nil, 0, d.lastErr
	}
	if d.state == stateEOF {
		return nil, 0, io.EOF
	}

	for {
		packet, granulePos, lastPage, err := d.src.NextPacket()
		if err != nil {
			d.state = stateEOF
			if err == io.EOF {
				return nil, 0, io.EOF
			}
			werr := wrapReadErr(err)
			d.lastErr = werr
			d.state = stateErrored
			return nil, 0, werr
		}

		pcm, samples, ok := d.decodePacket(packet)
		if !ok {
			// Not an audio packet this driver understands (e.g. a mode
			// index out of range): skip it rather than fail the stream,
			// mirroring the reference decoder's tolerance of
			// unexpected non-audio packets between setup and EOF.
			continue
		}

		if d.firstFrame {
			d.firstFrame = false
			continue
		}

		if lastPage && granulePos != 0 {
			target := int64(granulePos)
			if d.currentLoc+int64(samples) > target {
				clip := d.currentLoc + int64(samples) - target
				if clip > int64(samples) {
					clip = int64(samples)
				}
				samples -= int(clip)
				for ch := range pcm {
					pcm[ch] = pcm[ch][:samples]
				}
			}
		}

		d.currentLoc += int64(samples)
		return pcm, samples, nil
	}
}

// decodePacket runs one audio packet through the full pipeline
// (decodeAudioPacket, shared with push mode in pushdata.go): mode
// lookup, mapping/floor/residue decode, per-channel IMDCT, and
// windowed overlap-add. ok is false if the packet is not a valid
// audio packet (e.g. a stray header packet or a corrupt mode index),
// in which case it should be skipped rather than treated as fatal.
func (d *Decoder) decodePacket(packet []byte) (pcm [][]float32, samples int, ok bool) {
	return decodeAudioPacket(packet, d.cfg, d.channels, d.blockSize0, d.blockSize1, d.tail)
}

// Reset discards all decode state so the Decoder can be reused for a
// new logical bitstream read from r, re-running header validation.
func (d *Decoder) Reset(r io.Reader) error {
	d.src = ogg.NewReader(r)
	d.rawSource = r
	d.state = stateUninitialised
	d.firstFrame = true
	d.currentLoc = 0
	d.lastErr = nil
	d.tail = nil
	return d.readHeaders()
}

// Close releases the decoder's resources. The core never owns the
// underlying io.Reader (that ownership, per spec.md §5, belongs to
// whichever byte-source wrapper constructed it), so Close here is a
// cheap state transition rather than anything that can fail.
func (d *Decoder) Close() error {
	d.state = stateEOF
	d.src = nil
	d.cfg = nil
	return nil
}
