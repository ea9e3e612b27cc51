// stream.go implements a streaming io.Reader wrapper over Decoder for
// callers that want raw PCM bytes rather than planar float32 slices —
// the usual shape needed to pipe decoded audio into a playback API.

package vorbis

import (
	"encoding/binary"
	"io"
	"math"
)

// SampleFormat specifies the PCM sample format PCMReader emits.
type SampleFormat int

const (
	// FormatFloat32LE is 32-bit float, little-endian (4 bytes per sample).
	FormatFloat32LE SampleFormat = iota
	// FormatInt16LE is 16-bit signed integer, little-endian (2 bytes per sample).
	FormatInt16LE
)

// BytesPerSample returns the number of bytes per sample for the format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatFloat32LE:
		return 4
	case FormatInt16LE:
		return 2
	default:
		return 4
	}
}

// PCMReader decodes a Vorbis stream and serves interleaved PCM bytes
// through io.Reader, buffering one decoded frame at a time and
// handling frame boundaries internally so callers can treat decoded
// audio as an ordinary byte stream.
//
// Example:
//
//	dec, _ := vorbis.NewDecoder(oggStream)
//	pr := vorbis.NewPCMReader(dec, vorbis.FormatInt16LE)
//	io.Copy(audioOutput, pr)
type PCMReader struct {
	dec    *Decoder
	format SampleFormat

	byteBuf []byte
	offset  int
	eof     bool
}

// NewPCMReader wraps dec, serving PCM samples in the given format.
func NewPCMReader(dec *Decoder, format SampleFormat) *PCMReader {
	return &PCMReader{dec: dec, format: format}
}

// Read implements io.Reader, reading decoded PCM bytes.
func (r *PCMReader) Read(p []byte) (int, error) {
	if r.offset >= len(r.byteBuf) {
		if r.eof {
			return 0, io.EOF
		}

		pcm, _, err := r.dec.GetFrameFloat()
		if err == io.EOF {
			r.eof = true
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}

		r.byteBuf = interleaveToBytes(pcm, r.format)
		r.offset = 0
	}

	n := copy(p, r.byteBuf[r.offset:])
	r.offset += n
	return n, nil
}

// interleaveToBytes interleaves planar float32 PCM into a byte slice
// in the requested format.
func interleaveToBytes(planar [][]float32, format SampleFormat) []byte {
	if len(planar) == 0 {
		return nil
	}
	channels := len(planar)
	samples := len(planar[0])
	bps := format.BytesPerSample()
	buf := make([]byte, samples*channels*bps)

	for i := 0; i < samples; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * bps
			v := planar[ch][i]
			switch format {
			case FormatInt16LE:
				binary.LittleEndian.PutUint16(buf[off:], uint16(floatToInt16(v)))
			default:
				binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			}
		}
	}
	return buf
}

// SampleRate returns the sample rate in Hz.
func (r *PCMReader) SampleRate() int { return r.dec.SampleRate() }

// Channels returns the number of audio channels.
func (r *PCMReader) Channels() int { return r.dec.Channels() }
