// Package trace records wire-protocol frame traffic for offline
// inspection: a CSV index of frame headers via github.com/gocarina/gocsv
// (the Go-native analogue of m-lab/tcp-info's cmd/csvtool) and, optionally,
// the raw frame payloads piped through an external zstd process, adapted
// from zstd/zstd.go and saver/saver.go's writer-goroutine-plus-WaitGroup
// discipline. Neither the codec (pod) nor the transport (wire) import
// this package — it is a driver-layer concern, and no other package in
// this module (cmd/pwclient included) imports it.
package trace

import (
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/udoprog/livemix-go/wire"
)

// FrameRecord is one row of the frame index CSV, one per captured frame.
type FrameRecord struct {
	Seq    uint32 `csv:"seq"`
	DestID uint32 `csv:"dest_id"`
	Op     uint8  `csv:"op"`
	Size   uint32 `csv:"size"`
	NumFds uint32 `csv:"num_fds"`
}

// RecordFrame converts a decoded header into a FrameRecord.
func RecordFrame(h wire.Header) FrameRecord {
	return FrameRecord{
		Seq:    h.Seq,
		DestID: h.DestID,
		Op:     h.Op,
		Size:   h.Size,
		NumFds: h.NumFds,
	}
}

// WriteFrameIndex writes records as CSV to w, one row per captured frame,
// the CSV-export counterpart to m-lab/tcp-info's cmd/csvtool.
func WriteFrameIndex(records []FrameRecord, w io.Writer) error {
	return gocsv.Marshal(records, w)
}

// ReadFrameIndex parses a frame index CSV previously written by
// WriteFrameIndex.
func ReadFrameIndex(r io.Reader) ([]FrameRecord, error) {
	var records []FrameRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// zstdCommand names the external compressor binary; a package variable so
// tests can point it at a stub, the same whitebox-mocking pattern
// zstd/zstd.go uses for os.Pipe.
var zstdCommand = "zstd"

// waitingWriteCloser blocks Close() until the background zstd process has
// finished draining its input pipe, mirroring zstd.go's waitingWriteCloser.
type waitingWriteCloser struct {
	io.WriteCloser
	wg *sync.WaitGroup
}

func (w waitingWriteCloser) Close() error {
	if err := w.WriteCloser.Close(); err != nil {
		return err
	}
	w.wg.Wait()
	return nil
}

// NewCaptureWriter opens filename and returns a WriteCloser that pipes
// every write through an external zstd process before it lands on disk,
// for compressed raw-frame capture. Close waits for the compressor to
// finish before returning, so the file is complete and readable
// immediately after Close returns.
func NewCaptureWriter(filename string) (io.WriteCloser, error) {
	var wg sync.WaitGroup
	wg.Add(1)

	pipeR, pipeW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		pipeR.Close()
		pipeW.Close()
		return nil, err
	}

	cmd := exec.Command(zstdCommand)
	cmd.Stdin = pipeR
	cmd.Stdout = f

	go func() {
		defer wg.Done()
		defer pipeR.Close()
		defer f.Close()
		cmd.Run() // best-effort; errors surface as a truncated capture file
	}()

	return waitingWriteCloser{pipeW, &wg}, nil
}

// OpenCapture opens filename for reading, always decompressing it
// through an external zstd process; it reads the format written by
// NewCaptureWriter and does not check for it.
func OpenCapture(filename string) (io.ReadCloser, error) {
	pipeR, pipeW, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		pipeR.Close()
		pipeW.Close()
		return nil, err
	}

	cmd := exec.Command(zstdCommand, "-d", "-c")
	cmd.Stdin = f
	cmd.Stdout = pipeW

	go func() {
		defer f.Close()
		cmd.Run()
		pipeW.Close()
	}()

	return pipeR, nil
}
