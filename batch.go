// batch.go implements DecodeAll, an ambient convenience for decoding
// many independent in-memory Vorbis streams concurrently. Each stream
// gets its own Decoder instance, so this does not violate the
// single-threaded-per-instance rule of spec.md §5 — no state is shared
// across goroutines.

package vorbis

import (
	"bytes"
	"io"

	"golang.org/x/sync/errgroup"
)

// DecodedStream holds the fully-decoded planar PCM for one input
// stream, in DecodeAll's input order.
type DecodedStream struct {
	Info Info
	PCM  [][]float32 // per-channel, concatenated across all frames
}

// DecodeAll decodes each byte slice in streams as an independent
// Vorbis stream, fanning the work across goroutines via errgroup. If
// any stream fails to decode, DecodeAll returns the first error
// encountered; the other streams are not cancelled and still decode to
// completion before it returns.
func DecodeAll(streams [][]byte, options ...Option) ([]DecodedStream, error) {
	results := make([]DecodedStream, len(streams))

	var g errgroup.Group
	for i, data := range streams {
		i, data := i, data
		g.Go(func() error {
			dec, err := NewDecoder(bytes.NewReader(data), options...)
			if err != nil {
				return err
			}
			defer dec.Close()

			info := dec.Info()
			pcm := make([][]float32, info.Channels)

			for {
				frame, _, err := dec.GetFrameFloat()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				for ch := 0; ch < info.Channels && ch < len(frame); ch++ {
					pcm[ch] = append(pcm[ch], frame[ch]...)
				}
			}

			results[i] = DecodedStream{Info: info, PCM: pcm}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
