package node

import (
	"testing"

	"github.com/udoprog/livemix-go/pod"
)

func TestPortInsertionAssignsSequentialIDs(t *testing.T) {
	ps := &Ports{}
	p0, err := ps.Insert(Input, "in-0")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p1, err := ps.Insert(Input, "in-1")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if p0.ID != 0 || p1.ID != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", p0.ID, p1.ID)
	}

	out0, err := ps.Insert(Output, "out-0")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if out0.ID != 0 {
		t.Fatalf("output port id = %d, want 0 (separate per-direction sequence)", out0.ID)
	}
}

func TestInvalidDirectionReturnsError(t *testing.T) {
	ps := &Ports{}
	if _, err := ps.Insert(Direction(99), "bad"); err != pod.ErrInvalidDirection {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
	if _, err := ps.Get(Direction(99), 0); err != pod.ErrInvalidDirection {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestParametersRemoveClearsReadFlag(t *testing.T) {
	params := NewParameters()
	params.Set(1, &pod.Value{Type: pod.TypeInt, Int: 2})
	if params.Flags(1)&FlagReadable == 0 {
		t.Fatalf("expected READ flag set after Set")
	}
	if !params.TakeModified() {
		t.Fatalf("expected modified after Set")
	}

	params.Remove(1)
	if params.Flags(1)&FlagReadable != 0 {
		t.Fatalf("expected READ flag cleared after Remove")
	}
	if params.Values(1) != nil {
		t.Fatalf("expected values cleared after Remove")
	}
	if !params.TakeModified() {
		t.Fatalf("expected modified after Remove")
	}
}

func TestNodeModifiedIsOrOfPorts(t *testing.T) {
	n := NewClientNode(1)
	n.TakeModified() // clear the initial Dirty state

	if n.Modified() {
		t.Fatalf("fresh node should not be modified after initial TakeModified")
	}

	port, err := n.InsertPort(Input, "in-0")
	if err != nil {
		t.Fatalf("InsertPort: %v", err)
	}
	if !n.Modified() {
		t.Fatalf("node should be modified after port insertion")
	}
	n.TakeModified()
	if n.Modified() {
		t.Fatalf("node should not be modified right after TakeModified")
	}

	port.Params.Set(5, &pod.Value{Type: pod.TypeBool, Bool: true})
	if !n.Modified() {
		t.Fatalf("node modified flag should OR in port parameter changes")
	}
	if !n.TakeModified() {
		t.Fatalf("TakeModified should report true")
	}
	if port.Params.Modified() {
		t.Fatalf("TakeModified on the node should clear the port's params too")
	}
}

func TestSetBuffersReturnsPrevious(t *testing.T) {
	port := newPort(0, Input, "p")
	first := &Buffers{Direction: Input, MixID: 0}
	if prev := port.SetBuffers(first); prev != nil {
		t.Fatalf("expected nil previous buffers, got %v", prev)
	}
	second := &Buffers{Direction: Input, MixID: 1}
	if prev := port.SetBuffers(second); prev != first {
		t.Fatalf("expected previous buffers to be the first block")
	}
}
