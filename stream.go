package neowire

import (
	"io"

	"github.com/pkg/errors"
)

// ReadFrame reads exactly one frame from r, blocking until it is complete.
// It is the io.Reader counterpart of Decoder.Feed for callers that own a
// blocking reader rather than a byte stream they push, and honors the same
// options so the two entry points cannot diverge in tolerance. A stream
// ending on a frame boundary returns io.EOF; ending inside a frame returns
// io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, opt ...Option) (Frame, error) {
	var opts options
	for _, o := range opt {
		o(&opts)
	}

	checkOptions(&opts)

	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, errors.WithMessage(err, "read frame header")
	}

	length, err := readWireLength(r, !opts.lenientLength)
	if err != nil {
		return Frame{}, errors.WithMessage(midFrameEOF(err), "read frame length")
	}
	if length > uint64(opts.maxPayloadSize) {
		return Frame{}, errors.Wrapf(ErrOversizedPayload, "declared length %d, cap %d", length, opts.maxPayloadSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, errors.WithMessage(midFrameEOF(err), "read frame payload")
	}

	return Frame{Flags: hdr[0], Command: Command(hdr[1]), Payload: payload}, nil
}

// WriteFrame encodes f and writes it to w in full.
func WriteFrame(w io.Writer, f Frame) error {
	buf, err := f.Encode()
	if err != nil {
		return err
	}

	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		if err != nil {
			return errors.WithMessage(err, "write frame")
		}
		if n == 0 {
			return errors.New("short write")
		}
		total += n
	}
	return nil
}

// readWireLength reads a complete CompactSize length prefix from r.
func readWireLength(r io.Reader, strict bool) (uint64, error) {
	var buf [9]byte
	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		return 0, err
	}

	need := 0
	switch buf[0] {
	case markerU16:
		need = 2
	case markerU32:
		need = 4
	case markerU64:
		need = 8
	default:
		return uint64(buf[0]), nil
	}
	if _, err := io.ReadFull(r, buf[1:1+need]); err != nil {
		return 0, err
	}

	v, _, err := decodeVarInt(buf[:1+need], strict)
	return v, err
}

// midFrameEOF converts a bare EOF inside a frame into io.ErrUnexpectedEOF.
func midFrameEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
