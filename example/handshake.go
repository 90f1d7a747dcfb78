// Command handshake dials a Neo N3 seed node, sends a Version frame and
// interprets whatever the peer sends back, answering pings to keep the
// connection alive. It shows how an owning connection drives the codec: read
// the socket in bounded chunks, feed the decoder, tear down on any fatal
// decode error.
package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zereker/neowire"
)

const seedAddr = "seed1.neo.org:10333"

// readChunkSize bounds a single socket read; the decoder reassembles frames
// across chunk boundaries.
const readChunkSize = 64 << 10

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down...")
		cancel()
	}()

	if err := run(ctx, seedAddr); err != nil && ctx.Err() == nil {
		slog.Error("connection failed", "addr", seedAddr, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("connected", "addr", addr)

	outbound := make(chan neowire.Frame, 1)
	outbound <- neowire.NewVersionFrame(neowire.VersionPayload{
		Services:  1,
		Timestamp: uint64(time.Now().Unix()),
		Nonce:     rand.Uint32(),
		UserAgent: "/neowire:0.1/",
		Relay:     true,
	})

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return readLoop(ctx, conn, outbound)
	})

	group.Go(func() error {
		return writeLoop(ctx, conn, outbound)
	})

	return group.Wait()
}

func readLoop(ctx context.Context, conn net.Conn, outbound chan<- neowire.Frame) error {
	decoder := neowire.NewDecoder()
	buf := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_ = conn.SetReadDeadline(time.Now().Add(time.Minute))

		n, err := conn.Read(buf)
		if err != nil {
			return err
		}

		frames, err := decoder.Feed(buf[:n])
		if err != nil {
			// Framing corruption has no recovery; drop the connection.
			return err
		}

		for _, frame := range frames {
			if err := handle(ctx, frame, outbound); err != nil {
				return err
			}
		}
	}
}

func handle(ctx context.Context, frame neowire.Frame, outbound chan<- neowire.Frame) error {
	message, err := neowire.Interpret(frame)
	if err != nil {
		return err
	}

	switch m := message.(type) {
	case neowire.VersionMessage:
		slog.Info("peer version",
			"user_agent", m.UserAgent,
			"start_height", m.StartHeight,
			"services", m.Services)
	case neowire.PingMessage:
		slog.Debug("ping", "nonce", m.Nonce)
		select {
		case outbound <- neowire.NewPongFrame(m.Nonce):
		case <-ctx.Done():
			return ctx.Err()
		}
	case neowire.PongMessage:
		slog.Debug("pong", "nonce", m.Nonce)
	case neowire.UnknownMessage:
		slog.Debug("unknown command", "command", m.Command(), "payload_len", len(m.Payload))
	}

	return nil
}

func writeLoop(ctx context.Context, conn net.Conn, outbound <-chan neowire.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(30 * time.Second))

			if err := neowire.WriteFrame(conn, frame); err != nil {
				return err
			}
			slog.Debug("sent", "command", frame.Command, "payload_len", len(frame.Payload))
		}
	}
}
