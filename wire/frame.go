// Package wire implements the PipeWire socket framing layer: the 16-byte
// frame header, a buffered, backpressure-aware Transport over a Unix
// stream socket, SCM_RIGHTS fd passing, and runtime-directory socket
// discovery. Grounded on m-lab/tcp-info's eventsocket package
// (eventsocket/eventsocket.go, client.go, server.go) for the Unix-domain
// socket connection-management style, generalized from its pub/sub
// one-shot messages to this protocol's length-prefixed, fd-carrying
// frames.
package wire

import "encoding/binary"

// HeaderSize is the fixed size of a frame header.
const HeaderSize = 16

// Header is the 16-byte prefix of every frame.
type Header struct {
	DestID  uint32
	Op      uint8
	Size    uint32 // payload size, not including the header
	Seq     uint32
	NumFds  uint32
}

// sizeWithOp packs Size and Op the way the wire does: op in the top byte,
// size in the low 24 bits.
func (h Header) sizeWithOp() uint32 {
	return (uint32(h.Op) << 24) | (h.Size & 0x00FFFFFF)
}

// Encode writes h into buf, which must be at least HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.DestID)
	binary.LittleEndian.PutUint32(buf[4:8], h.sizeWithOp())
	binary.LittleEndian.PutUint32(buf[8:12], h.Seq)
	binary.LittleEndian.PutUint32(buf[12:16], h.NumFds)
}

// DecodeHeader reads a Header from the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) Header {
	sizeWithOp := binary.LittleEndian.Uint32(buf[4:8])
	return Header{
		DestID: binary.LittleEndian.Uint32(buf[0:4]),
		Op:     uint8(sizeWithOp >> 24),
		Size:   sizeWithOp & 0x00FFFFFF,
		Seq:    binary.LittleEndian.Uint32(buf[8:12]),
		NumFds: binary.LittleEndian.Uint32(buf[12:16]),
	}
}
