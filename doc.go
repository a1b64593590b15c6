// Package rpcwire implements the message codec for a length-prefixed,
// XDR-framed RPC transport: wire-level encode/decode of individual messages,
// attachment and extraction of out-of-band file descriptors, and the
// transmit queue of pending outbound messages.
//
// The connection I/O loop, TLS/SASL framing, authentication, and the
// concrete RPC dispatch table are external collaborators and out of scope
// here; see the example/ directory for a minimal transport that drives this
// codec over a Unix domain socket.
package rpcwire
