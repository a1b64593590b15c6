package rpcwire

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDecodeLength_Valid(t *testing.T) {
	c := newTestCodec()
	m := NewMessage(false)

	m.buffer = make([]byte, LenSize)
	m.bufferLength = LenSize
	total := uint32(LenSize + HeaderXDRLen)
	putUint32(m.buffer, total)

	require.NoError(t, c.DecodeLength(m))
	require.Equal(t, int(total), m.bufferLength)
	require.Equal(t, LenSize, m.bufferOffset)
	require.Len(t, m.buffer, int(total))
}

func TestDecodeLength_RejectsUndersized(t *testing.T) {
	c := newTestCodec()
	m := NewMessage(false)

	m.buffer = []byte{0x00, 0x00, 0x00, 0x03}
	m.bufferLength = LenSize

	err := c.DecodeLength(m)
	require.Error(t, err)
	require.ErrorIs(t, errors.Cause(err), ErrProtocol)
}

func TestDecodeLength_RejectsOversized(t *testing.T) {
	c := newTestCodec()
	m := NewMessage(false)

	m.buffer = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	m.bufferLength = LenSize

	err := c.DecodeLength(m)
	require.Error(t, err)
	require.ErrorIs(t, errors.Cause(err), ErrPayloadTooLarge)
}

func TestEncodeHeader_ThenDecodeHeader_RoundTrip(t *testing.T) {
	c := newTestCodec()

	enc := NewMessage(false)
	enc.header = MessageHeader{Program: 7, Version: 1, Procedure: 42, Type: MessageCall, Serial: 99, Status: StatusOK}

	require.NoError(t, c.EncodeHeader(enc))
	require.Equal(t, HeaderXDRLen+LenSize, enc.bufferOffset)
	require.GreaterOrEqual(t, enc.bufferLength, enc.bufferOffset)

	require.NoError(t, c.EncodePayloadRaw(enc, nil))

	dec := NewMessage(false)
	dec.buffer = make([]byte, enc.bufferLength)
	copy(dec.buffer, enc.buffer[:enc.bufferLength])
	dec.bufferLength = enc.bufferLength

	require.NoError(t, c.DecodeHeader(dec))
	require.Equal(t, enc.header, dec.header)
	require.Equal(t, LenSize+HeaderXDRLen, dec.bufferOffset)
}

func TestEncodeHeader_GrowsPastSmallInitial(t *testing.T) {
	// Initial(16) is smaller than the encoded header, so EncodeHeader's grow
	// branch fires: bufferLength ends up at the written size, not 16+LenSize.
	c := newTestCodec(Initial(16))
	m := NewMessage(true)

	require.NoError(t, c.EncodeHeader(m))
	require.Equal(t, LenSize+HeaderXDRLen, m.bufferLength)
	require.Equal(t, LenSize+HeaderXDRLen, m.bufferOffset)
}

func TestMinimumValidFrame(t *testing.T) {
	c := newTestCodec()
	m := NewMessage(false)

	require.NoError(t, c.EncodeHeader(m))
	require.NoError(t, c.EncodePayloadRaw(m, nil))

	total := LenSize + HeaderXDRLen
	require.Equal(t, total, m.bufferLength)
	require.Equal(t, 0, m.bufferOffset)
	require.EqualValues(t, total, getUint32(m.buffer[:LenSize]))
}
