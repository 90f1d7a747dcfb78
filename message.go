package neowire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Message is a typed view of a decoded frame's payload. Concrete types are
// VersionMessage, PingMessage, PongMessage and UnknownMessage.
type Message interface {
	// Command returns the command byte the message arrived under.
	Command() Command
}

// VersionMessage is the handshake message carrying a peer's identity.
type VersionMessage struct {
	VersionPayload
}

// Command implements Message.
func (VersionMessage) Command() Command { return CmdVersion }

// PingMessage is a liveness probe. The receiver should answer with a pong
// echoing the nonce.
type PingMessage struct {
	Nonce uint32
}

// Command implements Message.
func (PingMessage) Command() Command { return CmdPing }

// PongMessage answers a ping with the same nonce.
type PongMessage struct {
	Nonce uint32
}

// Command implements Message.
func (PongMessage) Command() Command { return CmdPong }

// UnknownMessage carries a command byte outside the registry together with
// its raw payload. It is a value, not an error: newer peers may speak
// commands this node does not know, and dropping the connection for that
// would break protocol evolution.
type UnknownMessage struct {
	command Command

	Payload []byte
}

// Command implements Message.
func (u UnknownMessage) Command() Command { return u.command }

// Interpret maps a decoded frame to a typed message. Commands outside the
// registry never fail; they come back as UnknownMessage with the payload
// untouched.
func Interpret(f Frame) (Message, error) {
	switch f.Command {
	case CmdVersion:
		p, err := DecodeVersionPayload(f.Payload)
		if err != nil {
			return nil, errors.WithMessage(err, "version payload")
		}
		return VersionMessage{VersionPayload: p}, nil
	case CmdPing:
		nonce, err := trailingNonce(f.Payload)
		if err != nil {
			return nil, errors.WithMessage(err, "ping payload")
		}
		return PingMessage{Nonce: nonce}, nil
	case CmdPong:
		nonce, err := trailingNonce(f.Payload)
		if err != nil {
			return nil, errors.WithMessage(err, "pong payload")
		}
		return PongMessage{Nonce: nonce}, nil
	default:
		return UnknownMessage{command: f.Command, Payload: f.Payload}, nil
	}
}

// trailingNonce reads the nonce from the final four bytes of a ping or pong
// payload. Peers may prepend extra fields (block index, timestamp); the
// nonce is always last.
func trailingNonce(p []byte) (uint32, error) {
	if len(p) < 4 {
		return 0, errors.Wrapf(ErrTruncated, "nonce needs 4 bytes, have %d", len(p))
	}
	return binary.LittleEndian.Uint32(p[len(p)-4:]), nil
}
