// options.go implements the constructor-option configuration surface
// spec.md §6 names as "compile-time options": max channel cap, fast
// Huffman table size, push-mode CRC scanner count, integer-PCM
// coercion, seeking. Following the teacher's NewDecoder(sampleRate,
// channels int) convention of validating small parameters directly at
// construction, these are expressed as functional options rather than a
// config file or environment parser.

package vorbis

import "github.com/vorbisgo/vorbis/ogg"

const (
	defaultMaxChannels    = 16
	hardMaxChannels       = 256
	defaultFastTableBits  = 10
	maxFastTableBits      = 24
)

// Options holds the resolved configuration for a Decoder, built up from
// functional Option values passed to NewDecoder/NewPushDecoder.
type Options struct {
	maxChannels      int
	fastTableBits    int
	crcScannerCount  int
	seekingDisabled  bool
	integerPCMOff    bool
	arena            *Arena
}

func defaultOptions() Options {
	return Options{
		maxChannels:     defaultMaxChannels,
		fastTableBits:   defaultFastTableBits,
		crcScannerCount: ogg.DefaultResyncScanners,
	}
}

// Option configures a Decoder at construction.
type Option func(*Options)

// WithMaxChannels overrides the channel-count cap (default 16, hard
// limit 256 per spec.md §6); a stream declaring more channels than this
// fails setup with ErrTooManyChannels.
func WithMaxChannels(n int) Option {
	return func(o *Options) {
		if n > 0 && n <= hardMaxChannels {
			o.maxChannels = n
		}
	}
}

// WithFastTableBits overrides the Huffman fast-table lookup width
// (default 10, max 24 per spec.md §6 and internal/huffman).
func WithFastTableBits(bits int) Option {
	return func(o *Options) {
		if bits > 0 && bits <= maxFastTableBits {
			o.fastTableBits = bits
		}
	}
}

// WithCRCScannerCount overrides the number of simultaneous capture-pattern
// candidates the push-mode resyncer tracks per Scan call (default 4,
// minimum 2; see ogg.Resyncer).
func WithCRCScannerCount(n int) Option {
	return func(o *Options) { o.crcScannerCount = n }
}

// WithSeekingDisabled disables Seek/Length: Seek returns ErrSeekFailed
// and Length returns ErrSeekWithoutLength; useful for byte sources that
// are not seekable.
func WithSeekingDisabled() Option {
	return func(o *Options) { o.seekingDisabled = true }
}

// WithIntegerPCMDisabled records that integer PCM output is not wanted.
// No decoder code reads the setting: Int16 (pcm.go) and PCMReader's
// FormatInt16LE output work the same with or without it, and
// GetFrameFloat returns float32 samples either way.
func WithIntegerPCMDisabled() Option {
	return func(o *Options) { o.integerPCMOff = true }
}

// WithArena stores a fixed bump allocator in the options, mirroring the
// shape of stb_vorbis's STBVorbisAlloc fixed-buffer mode. The decoder
// does not allocate from it: setup-phase tables (codebooks,
// floor/residue/mapping/mode tables, IMDCT twiddle caches) come from the
// Go heap, so the arena's size never causes a setup failure.
func WithArena(a *Arena) Option {
	return func(o *Options) { o.arena = a }
}
