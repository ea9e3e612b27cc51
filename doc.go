// Package vorbis implements the core of the Vorbis I audio codec in
// pure Go: setup-header parsing, the per-packet decode pipeline
// (codebook, floor, residue, channel coupling, IMDCT, windowed
// overlap-add), and Ogg page/packet framing.
//
// Vorbis is a lossy, patent-unencumbered audio codec encapsulated in
// the Ogg container format. A logical Vorbis bitstream begins with
// three header packets — identification, comment, and setup — followed
// by a sequence of audio packets, each of which decodes to a window of
// PCM samples that overlap-add with its neighbours.
//
// This implementation targets decoding only: there is no encoder, no
// support for Floor 0 (a legacy LPC-based spectral floor type modern
// encoders do not emit), and no support for concatenated/chained Ogg
// streams within a single open call.
//
// # Decode modes
//
// NewDecoder wraps an io.Reader for pull-mode decoding, where the
// decoder blocks on its source as needed; GetFrameFloat returns one
// decoded frame per call. NewPushDecoder is for callers who own their
// own I/O loop: DecodeFramePushData consumes whatever prefix of a
// caller-supplied buffer it can and reports how many bytes it used,
// never blocking.
//
// # Header packets
//
// The identification header carries sample rate, channel count, and
// block sizes; the comment header carries a vendor string and
// arbitrary metadata fields, both exposed via Info. The setup header
// carries the bulk of a stream's static per-stream state — codebooks,
// floor curves, residue partitions, and channel mappings — and is
// parsed once by internal/setup.
package vorbis
