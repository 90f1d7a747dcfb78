// Package neowire implements the Neo N3 peer-to-peer wire codec: a streaming
// frame decoder, a frame encoder, and a structured codec for the Version
// handshake payload. The codec performs no I/O; the owning connection feeds
// it byte slices and receives Frame and Message values in return.
package neowire

import (
	"github.com/pkg/errors"
)

// decoderState identifies which part of the current frame the decoder is
// waiting for.
type decoderState int

const (
	// stateHeader needs the 2-byte frame header (flags, command).
	stateHeader decoderState = iota
	// stateLengthMarker needs the first byte of the CompactSize length.
	stateLengthMarker
	// stateLengthTail needs the remaining 2, 4 or 8 bytes of the length.
	stateLengthTail
	// statePayload needs the remaining payload bytes.
	statePayload
)

// Decoder is an incremental frame decoder. One Decoder is owned by one
// connection's receive path for the connection's duration; it holds at most
// one in-progress frame's worth of buffered bytes and resets itself after
// each completed frame.
//
// Decoder holds no locks and must not be shared between goroutines. It is
// concurrency-model-agnostic: all state lives in the value the caller holds,
// so it can be driven from a dedicated goroutine, a select loop, or anything
// else. Discarding a Decoder mid-frame needs no cleanup.
type Decoder struct {
	opts options

	state   decoderState
	flags   byte
	command Command
	hdrN    int

	length  [9]byte // buffered CompactSize length bytes
	lengthN int
	need    int // total length bytes required once the marker is known

	payload   []byte
	remaining int

	err error
}

// NewDecoder returns a decoder ready to consume a connection's byte stream.
func NewDecoder(opt ...Option) *Decoder {
	var opts options
	for _, o := range opt {
		o(&opts)
	}

	checkOptions(&opts)

	return &Decoder{opts: opts}
}

// Feed consumes p and returns the frames it completes, in wire order. A
// single call may return zero, one or many frames; the trailing bytes of an
// in-progress frame are retained for the next call. Feeding a stream in any
// fragmentation, including one byte at a time, yields the same frame
// sequence as feeding it whole.
//
// Frames completed before a corruption are still returned alongside the
// error. After a fatal error every later call returns that same error: the
// protocol has no resynchronization marker, so a misaligned stream cannot be
// re-entered and the connection must be closed.
func (d *Decoder) Feed(p []byte) ([]Frame, error) {
	if d.err != nil {
		return nil, d.err
	}

	var frames []Frame
	for {
		switch d.state {
		case stateHeader:
			if len(p) == 0 {
				return frames, nil
			}
			for d.hdrN < 2 && len(p) > 0 {
				if d.hdrN == 0 {
					d.flags = p[0]
				} else {
					d.command = Command(p[0])
				}
				d.hdrN++
				p = p[1:]
			}
			if d.hdrN < 2 {
				return frames, nil
			}
			d.state = stateLengthMarker

		case stateLengthMarker:
			if len(p) == 0 {
				return frames, nil
			}
			marker := p[0]
			p = p[1:]
			if marker < markerU16 {
				if err := d.beginPayload(uint64(marker)); err != nil {
					return frames, d.fail(err)
				}
				continue
			}
			d.length[0] = marker
			d.lengthN = 1
			switch marker {
			case markerU16:
				d.need = 3
			case markerU32:
				d.need = 5
			default:
				d.need = 9
			}
			d.state = stateLengthTail

		case stateLengthTail:
			if len(p) == 0 {
				return frames, nil
			}
			n := copy(d.length[d.lengthN:d.need], p)
			d.lengthN += n
			p = p[n:]
			if d.lengthN < d.need {
				return frames, nil
			}
			length, _, err := decodeVarInt(d.length[:d.lengthN], !d.opts.lenientLength)
			if err != nil {
				return frames, d.fail(err)
			}
			if err := d.beginPayload(length); err != nil {
				return frames, d.fail(err)
			}

		case statePayload:
			n := d.remaining
			if n > len(p) {
				n = len(p)
			}
			d.payload = append(d.payload, p[:n]...)
			d.remaining -= n
			p = p[n:]
			if d.remaining > 0 {
				return frames, nil
			}
			frames = append(frames, Frame{Flags: d.flags, Command: d.command, Payload: d.payload})
			d.reset()
		}
	}
}

// beginPayload validates the declared length and allocates the payload
// buffer. An oversized declaration fails here, before any payload byte has
// been buffered.
func (d *Decoder) beginPayload(length uint64) error {
	if length > uint64(d.opts.maxPayloadSize) {
		return errors.Wrapf(ErrOversizedPayload, "declared length %d, cap %d", length, d.opts.maxPayloadSize)
	}

	d.remaining = int(length)
	d.payload = make([]byte, 0, length)
	d.state = statePayload
	return nil
}

// reset returns the decoder to the start of the next frame.
func (d *Decoder) reset() {
	d.state = stateHeader
	d.hdrN = 0
	d.lengthN = 0
	d.need = 0
	d.payload = nil
	d.remaining = 0
}

// fail poisons the decoder so every later Feed reports the same error.
func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}
