package rpcwire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// boundedWriter reports io.ErrShortBuffer rather than growing, so the
// typed-payload growth loop below can detect "didn't fit" the same way the
// original XDR filter convention does: any failure, not just a distinct
// size error.
type boundedWriter struct {
	buf []byte
	pos int
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	if w.pos+len(p) > len(w.buf) {
		return 0, io.ErrShortBuffer
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

// EncodePayloadTyped serialises v via marshal into the space remaining
// after the header. On any marshaller failure it doubles the payload
// capacity and retries, capped at PayloadMax -- the original source does
// not distinguish "didn't fit" from "malformed value" and neither does
// this (see DESIGN.md, Open Question 1). On success it finalises the frame:
// the length prefix is re-encoded to the written size, bufferLength is set
// to that size, and bufferOffset is reset to 0 ready for transmission.
//
// Precondition: EncodeHeader has run.
func (c *Codec) EncodePayloadTyped(m *Message, marshal MarshalFunc, v any) error {
	if marshal == nil {
		marshal = c.marshal
	}

	for {
		w := &boundedWriter{buf: m.buffer[m.bufferOffset:m.bufferLength]}
		err := marshal(w, v)
		if err == nil {
			m.bufferOffset += w.pos
			return c.finalizeEncode(m)
		}

		payloadCap := m.bufferLength - LenSize
		newCap := payloadCap * 2
		if newCap == 0 {
			newCap = 1
		}
		if uint32(newCap) > c.payloadMax {
			return errors.Wrap(ErrPayloadTooLarge, "encode payload: exceeded payload cap while growing")
		}

		newLen := newCap + LenSize
		grown := make([]byte, newLen)
		copy(grown, m.buffer[:m.bufferOffset])
		m.buffer = grown
		m.bufferLength = newLen

		c.logger().Debug("grew payload buffer", "bufferLength", m.bufferLength)
	}
}

// EncodePayloadRaw appends len(data) raw bytes verbatim at bufferOffset and
// finalises the frame identically to EncodePayloadTyped. If data is nil or
// empty, no bytes are appended -- this is the canonical way to finalise an
// empty-payload frame after only a header has been encoded.
//
// Precondition: EncodeHeader has run.
func (c *Codec) EncodePayloadRaw(m *Message, data []byte) error {
	if len(data) > 0 {
		if m.bufferOffset+len(data) > int(c.payloadMax)+LenSize {
			return errors.Wrapf(ErrPayloadTooLarge,
				"raw payload %d bytes needed, %d available",
				len(data), int(c.payloadMax)+LenSize-m.bufferOffset)
		}

		need := m.bufferOffset + len(data)
		if need > len(m.buffer) {
			grown := make([]byte, need)
			copy(grown, m.buffer)
			m.buffer = grown
		}
		m.bufferLength = need

		copy(m.buffer[m.bufferOffset:], data)
		m.bufferOffset += len(data)
	}

	return c.finalizeEncode(m)
}

// finalizeEncode re-encodes the length word at offset 0 as the current
// bufferOffset, then sets bufferLength to that value and resets
// bufferOffset to 0 so the buffer is ready for transmission.
func (c *Codec) finalizeEncode(m *Message) error {
	putUint32(m.buffer[:LenSize], uint32(m.bufferOffset))
	m.bufferLength = m.bufferOffset
	m.bufferOffset = 0

	c.logger().Debug("finalized frame", "bufferLength", m.bufferLength)
	return nil
}

// DecodePayloadTyped runs unmarshal over buffer[bufferOffset:bufferLength]
// and, on success, advances bufferLength by the bytes consumed rather than
// bufferOffset -- the original source repurposes bufferLength as a
// "position read so far" cursor at this point (see DESIGN.md, Open Question
// 2). bufferOffset is left exactly where DecodeHeader set it.
//
// Precondition: DecodeHeader has run.
func (c *Codec) DecodePayloadTyped(m *Message, unmarshal UnmarshalFunc, v any) error {
	if unmarshal == nil {
		unmarshal = c.unmarshal
	}

	r := bytes.NewReader(m.buffer[m.bufferOffset:m.bufferLength])
	before := r.Len()
	if err := unmarshal(r, v); err != nil {
		return errors.Wrap(ErrProtocol, "decode payload: "+err.Error())
	}
	consumed := before - r.Len()

	m.bufferLength += consumed

	c.logger().Debug("decoded payload", "consumed", consumed)
	return nil
}
