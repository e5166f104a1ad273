package wire

import (
	"errors"
	"net"
	"os"
	"path/filepath"
)

// ErrNoSocket is returned by Discover/Connect when none of the candidate
// runtime-directory socket paths exist.
var ErrNoSocket = errors.New("wire: no pipewire socket found")

const socketName = "pipewire-0"

// candidatePaths returns the socket paths to try, in fixed precedence
// order.
func candidatePaths() []string {
	var paths []string
	for _, envVar := range []string{"PIPEWIRE_RUNTIME_DIR", "XDG_RUNTIME_DIR", "USERPROFILE"} {
		if dir := os.Getenv(envVar); dir != "" {
			paths = append(paths, filepath.Join(dir, socketName))
		}
	}
	return paths
}

// Discover returns the first candidate socket path that exists on disk, or
// ErrNoSocket if none do.
func Discover() (string, error) {
	for _, p := range candidatePaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNoSocket
}

// Connect discovers and connects to the PipeWire Unix socket, returning the
// raw connection for NewTransport to take ownership of.
func Connect() (*net.UnixConn, error) {
	path, err := Discover()
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	return net.DialUnix("unix", nil, addr)
}
