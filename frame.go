package neowire

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// MaxPayloadSize is the upper bound on a frame's payload length (16 MiB, the
// Neo protocol limit). It bounds worst-case memory per in-progress frame and
// guards against a peer declaring a huge length to exhaust memory.
const MaxPayloadSize = 16 << 20

// Frame header flag bits. The codec exposes the flags byte but performs no
// decompression; compressed payloads pass through opaquely.
const (
	FlagNone       byte = 0x00
	FlagCompressed byte = 0x01
)

// ErrOversizedPayload is returned when a payload length, declared or actual,
// exceeds the configured cap. It means the peer is hostile or broken; the
// connection should be torn down.
var ErrOversizedPayload = errors.New("payload exceeds maximum size")

// Command is the single byte identifying a frame's payload type.
type Command byte

// Known protocol commands. Bytes outside this registry are not an error;
// Interpret carries them through as UnknownMessage values.
const (
	CmdVersion    Command = 0x00
	CmdPing       Command = 0x01
	CmdPong       Command = 0x02
	CmdGetHeaders Command = 0x03
)

// String returns the command's protocol name, or its hex value for bytes
// outside the registry.
func (c Command) String() string {
	switch c {
	case CmdVersion:
		return "version"
	case CmdPing:
		return "ping"
	case CmdPong:
		return "pong"
	case CmdGetHeaders:
		return "getheaders"
	}
	return fmt.Sprintf("unknown(0x%02X)", byte(c))
}

// Frame is one complete wire-level unit.
//
// Wire format (all multi-byte integers little-endian):
//
//	flags:u8 command:u8 length:VarInt payload:byte[length]
type Frame struct {
	Flags   byte
	Command Command
	Payload []byte
}

// EncodeFrame returns the complete wire buffer for one frame. It is pure and
// stateless, and mirrors the decoder's size cap so it never produces a frame
// the matching decoder would reject.
func EncodeFrame(flags byte, command Command, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, errors.Wrapf(ErrOversizedPayload, "%d bytes", len(payload))
	}

	buf := make([]byte, 2, 2+9+len(payload))
	buf[0] = flags
	buf[1] = byte(command)
	buf = AppendVarInt(buf, uint64(len(payload)))
	return append(buf, payload...), nil
}

// Encode returns the frame's complete wire form.
func (f Frame) Encode() ([]byte, error) {
	return EncodeFrame(f.Flags, f.Command, f.Payload)
}

// NewVersionFrame builds the handshake frame carrying p.
func NewVersionFrame(p VersionPayload) Frame {
	return Frame{Flags: FlagNone, Command: CmdVersion, Payload: p.Encode()}
}

// NewPingFrame builds a liveness probe carrying nonce.
func NewPingFrame(nonce uint32) Frame {
	return Frame{Flags: FlagNone, Command: CmdPing, Payload: nonceBytes(nonce)}
}

// NewPongFrame builds the reply to a ping, echoing its nonce.
func NewPongFrame(nonce uint32) Frame {
	return Frame{Flags: FlagNone, Command: CmdPong, Payload: nonceBytes(nonce)}
}

func nonceBytes(nonce uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], nonce)
	return b[:]
}
