package main

import (
	"fmt"
	"net/http"

	"github.com/m-lab/go/prometheusx"
	"github.com/spf13/cobra"

	"github.com/udoprog/livemix-go/metrics"
	"github.com/udoprog/livemix-go/node"
	"github.com/udoprog/livemix-go/pod"
	"github.com/udoprog/livemix-go/proto"
	"github.com/udoprog/livemix-go/session"
	"github.com/udoprog/livemix-go/wire"
)

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect to the local daemon socket, send Hello, and print the first reply frame",
		Args:  cobra.NoArgs,
		RunE:  runConnect,
	}
}

func runConnect(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	if promAddr != "" {
		srv := registerPrometheus(promAddr)
		defer srv.Close()
	}

	conn, err := wire.Connect()
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	transport, err := wire.NewTransport(conn)
	if err != nil {
		return fmt.Errorf("wrapping transport: %w", err)
	}
	defer transport.Close()

	n := node.NewClientNode(0)
	if tag, err := session.FromConn(conn); err == nil {
		n.SetSession(tag)
		fmt.Fprintf(cmd.OutOrStdout(), "session=%s\n", n.Session)
	}

	payload, err := encodeHello()
	if err != nil {
		return fmt.Errorf("encoding hello: %w", err)
	}
	if err := transport.QueueFrame(proto.DestCore, uint8(proto.CoreMethodHello), 0, payload, nil); err != nil {
		return fmt.Errorf("queueing hello: %w", err)
	}
	metrics.FrameSizeHistogram.Observe(float64(wire.HeaderSize + len(payload)))
	if err := transport.Flush(); err != nil {
		return fmt.Errorf("flushing hello: %w", err)
	}

	for {
		if err := transport.Fill(); err != nil {
			return fmt.Errorf("reading reply: %w", err)
		}
		header, _, _, ok, err := transport.NextFrame()
		if err != nil {
			return fmt.Errorf("parsing reply frame: %w", err)
		}
		if !ok {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dest=%d op=%d seq=%d size=%d nfds=%d\n",
			header.DestID, header.Op, header.Seq, header.Size, header.NumFds)
		return nil
	}
}

// encodeHello builds the Hello request body: a single struct containing
// the client's protocol version.
func encodeHello() ([]byte, error) {
	w := pod.NewHeapWriter()
	b, err := pod.BeginStruct(w)
	if err != nil {
		return nil, err
	}
	if err := pod.EncodeInt(b.Writer(), proto.Version); err != nil {
		return nil, err
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// registerPrometheus starts the metrics/pprof HTTP server on addr, the
// same prometheusx.MustStartPrometheus idiom m-lab/tcp-info's main.go uses
// for its own metrics endpoint. MustStartPrometheus is fatal on bind
// failure, which is acceptable here since this only ever runs once at
// startup.
func registerPrometheus(addr string) *http.Server {
	return prometheusx.MustStartPrometheus(addr)
}
