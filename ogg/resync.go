package ogg

// DefaultResyncScanners is the default number of concurrent CRC scanners
// used during push-mode resynchronisation (spec.md §4.2, §6 compile-time
// option "push-mode CRC scanner count", default 4, min 2).
const DefaultResyncScanners = 4

// Resyncer implements the push-mode resync behavior described in spec.md
// §4.2: after a caller-signalled discontinuity (flush), it scans forward
// for the next capture pattern. Because a byte sequence that looks like
// "OggS" can appear inside page payload data, each candidate's CRC must be
// checked before it is trusted; the first candidate whose CRC matches
// wins and all others are discarded.
//
// MaxCandidates bounds how many simultaneous "OggS"-prefixed candidates
// are tracked per Scan call before giving up and asking for more data —
// this is the K parallel scanner slots from spec.md §4.2, expressed here
// as a scan budget rather than literal streaming per-byte state machines,
// since push mode always re-presents the full accumulated buffer to Scan
// (the caller "retries with the same buffer plus more bytes prepended"),
// so there is no byte lost by re-validating each candidate's CRC directly
// against the buffer instead of folding it in incrementally.
type Resyncer struct {
	MaxCandidates int
}

// NewResyncer creates a Resyncer tracking up to k simultaneous capture
// pattern candidates per scan (clamped to a minimum of 2).
func NewResyncer(k int) *Resyncer {
	if k < 2 {
		k = 2
	}
	return &Resyncer{MaxCandidates: k}
}

// Scan looks for the next valid Ogg page in data starting at offset 0.
//
// It returns the page, the number of bytes consumed from data, and an
// error. ErrNeedMoreData means the caller should append more bytes and
// call Scan again — at most len(data)-3 bytes are ever reported consumed
// with no page found, so a capture pattern straddling the end of the
// buffer is never split.
func (r *Resyncer) Scan(data []byte) (*Page, int, error) {
	limit := len(data) - 3
	if limit < 0 {
		return nil, 0, ErrNeedMoreData
	}

	candidates := 0
	for i := 0; i <= limit; i++ {
		if len(data)-i < headerSize {
			return nil, i, ErrNeedMoreData
		}
		if string(data[i:i+4]) != capturePattern {
			continue
		}

		candidates++
		page, consumed, err := ParsePage(data[i:])
		switch err {
		case nil:
			return page, i + consumed, nil
		case ErrNeedMoreData:
			// This candidate might still be valid once more bytes
			// arrive; without them we cannot rule it out or confirm
			// it, so we must stop here rather than skip past it.
			return nil, i, ErrNeedMoreData
		default:
			// CRC or version mismatch: a false "OggS" match inside
			// payload bytes. Discard this candidate and keep scanning.
		}

		if r.MaxCandidates > 0 && candidates >= r.MaxCandidates {
			// Budget exhausted for this call; report progress so the
			// caller can still make forward progress on a future call
			// with a fresh budget, per the "at most input_len-3 bytes
			// consumed between calls" contract.
			return nil, i + 1, ErrNeedMoreData
		}
	}

	return nil, limit + 1, ErrNeedMoreData
}
