package neowire

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		flags   byte
		command Command
		payload []byte
		want    []byte
	}{
		{"empty payload", FlagNone, CmdPing, nil, []byte{0x00, 0x01, 0x00}},
		{"one byte payload", FlagNone, CmdPong, []byte{0xAA}, []byte{0x00, 0x02, 0x01, 0xAA}},
		{"compressed flag", FlagCompressed, CmdGetHeaders, []byte{1, 2, 3}, []byte{0x01, 0x03, 0x03, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeFrame(tt.flags, tt.command, tt.payload)
			if err != nil {
				t.Fatalf("EncodeFrame failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeFrame = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeFrameLongPayload(t *testing.T) {
	// A 300-byte payload gets the 2-byte length form: FD 2C 01.
	payload := bytes.Repeat([]byte{0x55}, 300)

	got, err := EncodeFrame(FlagNone, CmdVersion, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	wantPrefix := []byte{0x00, 0x00, 0xFD, 0x2C, 0x01}
	if !bytes.Equal(got[:5], wantPrefix) {
		t.Errorf("frame prefix = % X, want % X", got[:5], wantPrefix)
	}
	if len(got) != 5+300 {
		t.Errorf("frame length = %d, want %d", len(got), 5+300)
	}
}

func TestEncodeFrameOversized(t *testing.T) {
	payload := make([]byte, MaxPayloadSize+1)

	_, err := EncodeFrame(FlagNone, CmdVersion, payload)
	if !errors.Is(err, ErrOversizedPayload) {
		t.Errorf("EncodeFrame = %v, want ErrOversizedPayload", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x01},
		bytes.Repeat([]byte{0xAB}, 252),
		bytes.Repeat([]byte{0xCD}, 253),
		bytes.Repeat([]byte{0xEF}, 70000),
	}

	for _, payload := range payloads {
		frame := Frame{Flags: FlagNone, Command: CmdVersion, Payload: payload}
		encoded, err := frame.Encode()
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		frames, err := NewDecoder().Feed(encoded)
		if err != nil {
			t.Fatalf("Feed failed: %v", err)
		}
		if len(frames) != 1 {
			t.Fatalf("got %d frames, want 1", len(frames))
		}
		if frames[0].Flags != frame.Flags || frames[0].Command != frame.Command {
			t.Errorf("header mismatch: got %+v", frames[0])
		}
		if !bytes.Equal(frames[0].Payload, payload) {
			t.Errorf("payload mismatch for %d-byte payload", len(payload))
		}
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		command Command
		want    string
	}{
		{CmdVersion, "version"},
		{CmdPing, "ping"},
		{CmdPong, "pong"},
		{CmdGetHeaders, "getheaders"},
		{Command(0x7F), "unknown(0x7F)"},
	}

	for _, tt := range tests {
		if got := tt.command.String(); got != tt.want {
			t.Errorf("Command(0x%02X).String() = %q, want %q", byte(tt.command), got, tt.want)
		}
	}
}

func TestNewPingPongFrames(t *testing.T) {
	ping := NewPingFrame(0xDEADBEEF)
	if ping.Command != CmdPing {
		t.Errorf("ping command = %v", ping.Command)
	}
	if !bytes.Equal(ping.Payload, []byte{0xEF, 0xBE, 0xAD, 0xDE}) {
		t.Errorf("ping payload = % X", ping.Payload)
	}

	pong := NewPongFrame(1)
	if pong.Command != CmdPong {
		t.Errorf("pong command = %v", pong.Command)
	}
	if !bytes.Equal(pong.Payload, []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("pong payload = % X", pong.Payload)
	}
}
