package neowire

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Errors returned by the Version payload codec.
var (
	// ErrTruncated is returned when a payload ends inside a fixed-width field.
	ErrTruncated = errors.New("truncated payload")
	// ErrInvalidUserAgentLength is returned when the declared user agent
	// length exceeds the remaining payload.
	ErrInvalidUserAgentLength = errors.New("user agent length exceeds payload")
	// ErrInvalidRelayByte is returned when the relay byte is neither 0 nor 1.
	ErrInvalidRelayByte = errors.New("invalid relay byte")
)

// versionFixedLen is the width of the fixed fields before the user agent.
const versionFixedLen = 4 + 8 + 8 + 2 + 4

// VersionPayload is the structured payload of a Version frame, exchanged
// during the peer handshake.
//
// Wire format (little-endian):
//
//	version:u32 services:u64 timestamp:u64 port:u16 nonce:u32
//	user_agent:VarString start_height:u32 relay:u8(0|1)
type VersionPayload struct {
	Version     uint32
	Services    uint64
	Timestamp   uint64
	Port        uint16
	Nonce       uint32
	UserAgent   string
	StartHeight uint32
	Relay       bool
}

// Encode returns the payload's wire form.
func (v VersionPayload) Encode() []byte {
	buf := make([]byte, 0, versionFixedLen+9+len(v.UserAgent)+5)
	buf = binary.LittleEndian.AppendUint32(buf, v.Version)
	buf = binary.LittleEndian.AppendUint64(buf, v.Services)
	buf = binary.LittleEndian.AppendUint64(buf, v.Timestamp)
	buf = binary.LittleEndian.AppendUint16(buf, v.Port)
	buf = binary.LittleEndian.AppendUint32(buf, v.Nonce)
	buf = AppendVarInt(buf, uint64(len(v.UserAgent)))
	buf = append(buf, v.UserAgent...)
	buf = binary.LittleEndian.AppendUint32(buf, v.StartHeight)
	if v.Relay {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// DecodeVersionPayload decodes the payload of a Version frame. The user
// agent is decoded as UTF-8 with invalid sequences replaced by U+FFFD; bytes
// after the relay field are ignored, so peers that append new fields still
// interoperate.
func DecodeVersionPayload(b []byte) (VersionPayload, error) {
	var v VersionPayload

	if len(b) < versionFixedLen {
		return VersionPayload{}, errors.Wrapf(ErrTruncated, "fixed fields need %d bytes, have %d", versionFixedLen, len(b))
	}
	v.Version = binary.LittleEndian.Uint32(b[0:4])
	v.Services = binary.LittleEndian.Uint64(b[4:12])
	v.Timestamp = binary.LittleEndian.Uint64(b[12:20])
	v.Port = binary.LittleEndian.Uint16(b[20:22])
	v.Nonce = binary.LittleEndian.Uint32(b[22:26])
	rest := b[versionFixedLen:]

	uaLen, n, err := DecodeVarInt(rest)
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			return VersionPayload{}, errors.Wrap(ErrTruncated, "user agent length")
		}
		return VersionPayload{}, errors.Wrap(err, "user agent length")
	}
	rest = rest[n:]
	if uaLen > uint64(len(rest)) {
		return VersionPayload{}, errors.Wrapf(ErrInvalidUserAgentLength, "declared %d, %d bytes remain", uaLen, len(rest))
	}
	v.UserAgent = lossyUTF8(rest[:uaLen])
	rest = rest[uaLen:]

	if len(rest) < 5 {
		return VersionPayload{}, errors.Wrap(ErrTruncated, "start height and relay")
	}
	v.StartHeight = binary.LittleEndian.Uint32(rest[0:4])
	switch rest[4] {
	case 0:
		v.Relay = false
	case 1:
		v.Relay = true
	default:
		return VersionPayload{}, errors.Wrapf(ErrInvalidRelayByte, "0x%02X", rest[4])
	}

	return v, nil
}

// lossyUTF8 decodes b as UTF-8 with one U+FFFD per invalid byte, so each
// byte of a corrupt run is visible in the result. strings.ToValidUTF8 would
// collapse a whole run into a single replacement, which loses that count.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
