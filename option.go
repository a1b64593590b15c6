package rpcwire

import (
	"io"

	"go.e43.eu/xdr"
)

// Wire-visible limits, matching the original implementation's constants.
const (
	// LenSize is the width, in bytes, of the big-endian length prefix.
	LenSize = 4

	// DefaultPayloadMax caps the post-length portion of a frame: 256 MiB.
	DefaultPayloadMax = 256 << 20

	// DefaultFDsMax caps the number of descriptors a single frame may
	// carry.
	DefaultFDsMax = 32

	// DefaultInitial is the starting payload capacity guess used by
	// EncodeHeader before any payload has been appended.
	DefaultInitial = 4096
)

// MarshalFunc encodes v into w, in the style of an XDR marshalling filter.
type MarshalFunc func(w io.Writer, v any) error

// UnmarshalFunc decodes v from r, the decode-direction counterpart of
// MarshalFunc.
type UnmarshalFunc func(r io.Reader, v any) error

// defaultMarshal and defaultUnmarshal bind the pluggable MarshalFunc and
// UnmarshalFunc seams to go.e43.eu/xdr's streaming Encoder/Decoder (struct
// tags select the XDR shape; see other_examples/go-onc-xdr__interface.go).
// DecodeHeader and DecodePayloadTyped both hand unmarshal a reader over a
// region that may extend past the value being decoded -- the header reader
// spans header-then-payload bytes -- and recover how much was consumed by
// comparing r.Len() before and after. That only works if decoding reads
// exactly what the value needs, so this must not buffer the reader with
// io.ReadAll first: xdr.NewDecoder(r).Decode(v) reads only as far as v
// requires and leaves the rest of r unconsumed.
func defaultMarshal(w io.Writer, v any) error {
	return xdr.NewEncoder(w).Encode(v)
}

func defaultUnmarshal(r io.Reader, v any) error {
	return xdr.NewDecoder(r).Decode(v)
}

// Codec holds the configuration and marshalling functions shared by the
// frame and payload operations. A Codec has no per-message state and is
// safe to use concurrently across distinct messages (see §5: each message
// itself remains single-owner).
type Codec struct {
	payloadMax uint32
	fdsMax     uint32
	initial    int

	marshal   MarshalFunc
	unmarshal UnmarshalFunc

	log Logger
}

// Option configures a Codec.
type Option func(*Codec)

// PayloadMax returns an Option that overrides the post-length payload cap.
func PayloadMax(max uint32) Option {
	return func(c *Codec) { c.payloadMax = max }
}

// FDsMax returns an Option that overrides the maximum number of descriptors
// a single frame may carry.
func FDsMax(max uint32) Option {
	return func(c *Codec) { c.fdsMax = max }
}

// Initial returns an Option that overrides the starting payload capacity
// guess used by EncodeHeader.
func Initial(n int) Option {
	return func(c *Codec) { c.initial = n }
}

// WithMarshal returns an Option that overrides the typed payload marshaller.
func WithMarshal(fn MarshalFunc) Option {
	return func(c *Codec) { c.marshal = fn }
}

// WithUnmarshal returns an Option that overrides the typed payload
// unmarshaller.
func WithUnmarshal(fn UnmarshalFunc) Option {
	return func(c *Codec) { c.unmarshal = fn }
}

// WithLogger returns an Option that overrides the codec's logger. If not
// set, the default slog logger is used.
func WithLogger(logger Logger) Option {
	return func(c *Codec) { c.log = logger }
}

// NewCodec builds a Codec with the documented default limits and XDR
// marshalling, adjusted by opt.
func NewCodec(opt ...Option) *Codec {
	c := &Codec{
		payloadMax: DefaultPayloadMax,
		fdsMax:     DefaultFDsMax,
		initial:    DefaultInitial,
		marshal:    defaultMarshal,
		unmarshal:  defaultUnmarshal,
	}

	for _, o := range opt {
		o(c)
	}

	return c
}

func (c *Codec) logger() Logger {
	if c.log == nil {
		return defaultLogger()
	}
	return c.log
}
