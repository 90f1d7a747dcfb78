package neowire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Errors returned by VarInt decoding.
var (
	// ErrIncomplete is returned when the input ends before a complete value.
	// It is not a protocol violation: the caller should keep its buffered
	// bytes and wait for more input.
	ErrIncomplete = errors.New("incomplete input")
	// ErrNonMinimalLength is returned when a value is encoded in a wider
	// form than its magnitude requires.
	ErrNonMinimalLength = errors.New("non-minimal length encoding")
)

// VarInt width markers. A first byte below markerU16 is the value itself;
// otherwise the marker selects the width of the little-endian tail.
const (
	markerU16 = 0xFD // followed by uint16
	markerU32 = 0xFE // followed by uint32
	markerU64 = 0xFF // followed by uint64
)

// EncodeVarInt returns the minimal-width wire form of v.
func EncodeVarInt(v uint64) []byte {
	return AppendVarInt(nil, v)
}

// AppendVarInt appends the minimal-width wire form of v to dst and returns
// the extended slice.
func AppendVarInt(dst []byte, v uint64) []byte {
	switch {
	case v < markerU16:
		return append(dst, byte(v))
	case v <= 0xFFFF:
		dst = append(dst, markerU16)
		return binary.LittleEndian.AppendUint16(dst, uint16(v))
	case v <= 0xFFFFFFFF:
		dst = append(dst, markerU32)
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, markerU64)
		return binary.LittleEndian.AppendUint64(dst, v)
	}
}

// DecodeVarInt decodes a VarInt from the front of b, returning the value and
// the number of bytes consumed. It returns ErrIncomplete when b holds fewer
// bytes than the marker requires, and ErrNonMinimalLength when the value
// could have been encoded in a narrower form.
func DecodeVarInt(b []byte) (uint64, int, error) {
	return decodeVarInt(b, true)
}

func decodeVarInt(b []byte, strict bool) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrIncomplete
	}

	switch b[0] {
	case markerU16:
		if len(b) < 3 {
			return 0, 0, ErrIncomplete
		}
		v := uint64(binary.LittleEndian.Uint16(b[1:3]))
		if strict && v < markerU16 {
			return 0, 0, errors.Wrapf(ErrNonMinimalLength, "value %d in 2-byte form", v)
		}
		return v, 3, nil
	case markerU32:
		if len(b) < 5 {
			return 0, 0, ErrIncomplete
		}
		v := uint64(binary.LittleEndian.Uint32(b[1:5]))
		if strict && v <= 0xFFFF {
			return 0, 0, errors.Wrapf(ErrNonMinimalLength, "value %d in 4-byte form", v)
		}
		return v, 5, nil
	case markerU64:
		if len(b) < 9 {
			return 0, 0, ErrIncomplete
		}
		v := binary.LittleEndian.Uint64(b[1:9])
		if strict && v <= 0xFFFFFFFF {
			return 0, 0, errors.Wrapf(ErrNonMinimalLength, "value %d in 8-byte form", v)
		}
		return v, 9, nil
	default:
		return uint64(b[0]), 1, nil
	}
}
