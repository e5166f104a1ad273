package session

import (
	"net"
	"strings"
	"testing"
)

func TestFromConnProducesDistinctTags(t *testing.T) {
	a1, a2 := socketpair(t)
	defer a1.Close()
	defer a2.Close()

	tag1, err := FromConn(a1)
	if err != nil {
		t.Fatalf("FromConn: %v", err)
	}
	tag2, err := FromConn(a2)
	if err != nil {
		t.Fatalf("FromConn: %v", err)
	}
	if tag1 == tag2 {
		t.Fatalf("expected distinct session tags for distinct sockets, got %q twice", tag1)
	}
	if !strings.Contains(tag1, "_") {
		t.Fatalf("tag %q missing hostname/boottime/cookie separators", tag1)
	}
}

func socketpair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	// A real Unix-domain socketpair is needed since SO_COOKIE reads a
	// genuine kernel socket, unlike net.Pipe's in-memory connection.
	addr := &net.UnixAddr{Name: "@pwclient-session-test", Net: "unix"}
	l, err := net.ListenUnix("unix", addr)
	if err != nil {
		t.Skipf("unix sockets unavailable in this sandbox: %v", err)
	}
	defer l.Close()

	clientDone := make(chan *net.UnixConn, 1)
	go func() {
		c, err := net.DialUnix("unix", nil, addr)
		if err != nil {
			clientDone <- nil
			return
		}
		clientDone <- c
	}()

	server, err := l.AcceptUnix()
	if err != nil {
		t.Fatalf("AcceptUnix: %v", err)
	}
	client := <-clientDone
	if client == nil {
		t.Fatalf("DialUnix failed")
	}
	return server, client
}
