package rpcwire

import (
	"bytes"

	"github.com/pkg/errors"
)

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// growForEncode ensures m.buffer has room for n more bytes past
// bufferOffset, preserving bytes already written.
func (c *Codec) growForEncode(m *Message, n int) error {
	need := m.bufferOffset + n
	if need <= len(m.buffer) {
		return nil
	}
	grown := make([]byte, need)
	copy(grown, m.buffer)
	m.buffer = grown
	m.bufferLength = len(m.buffer)
	return nil
}

// DecodeLength reads the big-endian u32 total frame length from a buffer
// that holds exactly LenSize bytes, validates it, and grows the buffer to
// the declared total size so the caller's I/O loop can read the remainder.
//
// Precondition: len(m.buffer) == LenSize and m.bufferLength == LenSize.
func (c *Codec) DecodeLength(m *Message) error {
	if len(m.buffer) != LenSize || m.bufferLength != LenSize {
		return errors.Wrap(ErrProtocol, "decode length: buffer is not exactly LenSize bytes")
	}

	l := getUint32(m.buffer)

	if l < LenSize {
		return errors.Wrapf(ErrProtocol, "frame %d bytes too small, want at least %d", l, LenSize)
	}

	payloadLen := l - LenSize
	if payloadLen > c.payloadMax {
		return errors.Wrapf(ErrPayloadTooLarge, "frame %d bytes too large, max payload %d", l, c.payloadMax)
	}

	grown := make([]byte, l)
	copy(grown, m.buffer)
	m.buffer = grown
	m.bufferLength = int(l)
	m.bufferOffset = LenSize

	c.logger().Debug("decoded frame length", "total", l)
	return nil
}

// DecodeHeader parses the XDR-encoded header starting at offset LenSize.
// Precondition: m.bufferLength >= LenSize and the remainder of m.buffer
// holds at least the header bytes (placed there by the caller's I/O loop
// after DecodeLength).
func (c *Codec) DecodeHeader(m *Message) error {
	if m.bufferLength < LenSize {
		return errors.Wrap(ErrProtocol, "decode header: length not yet received")
	}

	m.bufferOffset = LenSize

	r := bytes.NewReader(m.buffer[m.bufferOffset:m.bufferLength])
	if err := c.unmarshal(r, &m.header); err != nil {
		return errors.Wrap(ErrProtocol, "decode header: "+err.Error())
	}

	consumed := len(m.buffer[m.bufferOffset:m.bufferLength]) - r.Len()
	m.bufferOffset += consumed

	c.logger().Debug("decoded header", "program", m.header.Program, "procedure", m.header.Procedure)
	return nil
}

// EncodeHeader allocates a fresh buffer, reserves a placeholder length
// word, XDR-encodes the header, then back-patches the length placeholder to
// the position reached. Leaves bufferOffset just past the header;
// bufferLength equals the allocated capacity, not the written size.
func (c *Codec) EncodeHeader(m *Message) error {
	m.bufferLength = c.initial + LenSize
	m.buffer = make([]byte, m.bufferLength)
	m.bufferOffset = 0

	var buf bytes.Buffer
	buf.Write(make([]byte, LenSize)) // placeholder
	if err := c.marshal(&buf, &m.header); err != nil {
		return errors.Wrap(ErrProtocol, "encode header: "+err.Error())
	}

	written := buf.Bytes()
	if len(written) > len(m.buffer) {
		grown := make([]byte, len(written))
		copy(grown, m.buffer)
		m.buffer = grown
		m.bufferLength = len(m.buffer)
	}
	copy(m.buffer, written)

	putUint32(m.buffer[:LenSize], uint32(len(written)))
	m.bufferOffset = len(written)

	c.logger().Debug("encoded header", "program", m.header.Program, "procedure", m.header.Procedure)
	return nil
}
