package rpcwire

import (
	"fmt"
	"io"
)

// testPayload is a small variable-length value used across the frame and
// payload codec tests; its wire form is a 4-byte length followed by the raw
// bytes. This is deliberately not real XDR -- the codec is agnostic to the
// marshalling convention, so tests exercise that pluggability directly
// instead of depending on any particular XDR library's byte-for-byte
// output.
type testPayload struct {
	Data []byte
}

func marshalFixed(w io.Writer, v any) error {
	switch val := v.(type) {
	case *MessageHeader:
		buf := make([]byte, HeaderXDRLen)
		putUint32(buf[0:4], val.Program)
		putUint32(buf[4:8], val.Version)
		putUint32(buf[8:12], val.Procedure)
		putUint32(buf[12:16], uint32(val.Type))
		putUint32(buf[16:20], val.Serial)
		putUint32(buf[20:24], uint32(val.Status))
		_, err := w.Write(buf)
		return err
	case *testPayload:
		buf := make([]byte, 4+len(val.Data))
		putUint32(buf[0:4], uint32(len(val.Data)))
		copy(buf[4:], val.Data)
		_, err := w.Write(buf)
		return err
	default:
		return fmt.Errorf("marshalFixed: unsupported type %T", v)
	}
}

func unmarshalFixed(r io.Reader, v any) error {
	switch val := v.(type) {
	case *MessageHeader:
		buf := make([]byte, HeaderXDRLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		val.Program = getUint32(buf[0:4])
		val.Version = getUint32(buf[4:8])
		val.Procedure = getUint32(buf[8:12])
		val.Type = MessageType(getUint32(buf[12:16]))
		val.Serial = getUint32(buf[16:20])
		val.Status = MessageStatus(getUint32(buf[20:24]))
		return nil
	case *testPayload:
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return err
		}
		n := getUint32(lenBuf)
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return err
		}
		val.Data = data
		return nil
	default:
		return fmt.Errorf("unmarshalFixed: unsupported type %T", v)
	}
}

func newTestCodec(opt ...Option) *Codec {
	opts := append([]Option{WithMarshal(marshalFixed), WithUnmarshal(unmarshalFixed)}, opt...)
	return NewCodec(opts...)
}
