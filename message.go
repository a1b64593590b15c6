package rpcwire

// DestroyFunc is invoked exactly once when a Message is freed, in place of
// the original's callback+cookie pair. It lets a caller reclaim descriptors
// (they are still open when it runs) or signal completion.
type DestroyFunc func(msg *Message, opaque any)

// Message is the in-memory representation of one frame: header, payload
// buffer, attached descriptors, and the bookkeeping a higher layer needs to
// track it through a transmit queue.
//
// buffer, bufferLength and bufferOffset are reused across encode and decode
// phases with different meanings; see frame.go and payload.go for the
// contract at each call site. This mirrors the original source's cursor
// reuse rather than splitting into four direction-specific fields (see
// DESIGN.md, Open Question 2).
type Message struct {
	buffer       []byte
	bufferLength int
	bufferOffset int

	header MessageHeader

	fds     []int
	doneFDs int

	tracked bool

	destroy DestroyFunc
	opaque  any

	next *Message
}

// NewMessage allocates an empty message with the given tracked flag. It
// never fails: there is no buffer, no descriptors and no callback yet.
func NewMessage(tracked bool) *Message {
	return &Message{tracked: tracked}
}

// Header returns the message's decoded or to-be-encoded header.
func (m *Message) Header() *MessageHeader {
	return &m.header
}

// Tracked reports whether the message participates in higher-layer serial
// tracking. The codec assigns no further meaning to the flag.
func (m *Message) Tracked() bool {
	return m.tracked
}

// SetDestroy installs the destructor callback and its cookie, replacing any
// previously installed one. At most one destructor fires per message, at
// Free.
func (m *Message) SetDestroy(fn DestroyFunc, opaque any) {
	m.destroy = fn
	m.opaque = opaque
}

// Bytes returns the message's underlying wire buffer, valid only until the
// next encode/decode call grows it. Callers must not retain this slice
// across such calls.
func (m *Message) Bytes() []byte {
	return m.buffer
}

// SeedLength hands the codec the LenSize bytes an I/O loop has just read off
// the wire, satisfying DecodeLength's precondition that buffer hold exactly
// those bytes. buf must be LenSize bytes long.
func (m *Message) SeedLength(buf []byte) {
	m.buffer = buf
	m.bufferLength = len(buf)
	m.bufferOffset = 0
}

// ClearPayload releases the payload buffer and any attached descriptors,
// and resets both cursors to zero.
func (m *Message) ClearPayload() {
	m.ClearFDs()
	m.bufferOffset = 0
	m.bufferLength = 0
	m.buffer = nil
}

// Clear resets the message to its post-NewMessage state, for reuse on the
// next read, preserving only the tracked flag. The destructor is not
// invoked here: Clear is for reuse, not disposal.
func (m *Message) Clear() {
	tracked := m.tracked
	m.ClearPayload()
	*m = Message{tracked: tracked}
}

// Free disposes of the message: if a destructor is installed it fires
// exactly once, before descriptors are closed so it may reclaim them, then
// the payload and descriptors are released. A second Free (or any Free after
// Clear) does not fire the destructor again. Free is a no-op on a nil
// message.
func (m *Message) Free() {
	if m == nil {
		return
	}
	if fn := m.destroy; fn != nil {
		m.destroy = nil
		fn(m, m.opaque)
	}
	m.ClearPayload()
}
