package rpcwire

// MessageType discriminates the kind of RPC message carried by a frame.
type MessageType uint32

const (
	MessageCall MessageType = iota
	MessageReply
	MessageException
	MessageStream
	MessageCallWithFDs
	MessageReplyWithFDs
)

// MessageStatus carries the outcome of a call, set on replies.
type MessageStatus uint32

const (
	StatusOK MessageStatus = iota
	StatusError
	StatusContinue
)

// MessageHeader is the fixed-size prefix that follows the length word in
// every frame. Program/procedure dispatch semantics belong to the caller;
// the codec only moves these fields across the wire.
type MessageHeader struct {
	Program   uint32
	Version   uint32
	Procedure uint32
	Type      MessageType
	Serial    uint32
	Status    MessageStatus
}

// HeaderXDRLen is the marshalled size, in bytes, of MessageHeader: six
// unsigned 32-bit XDR fields, four bytes each.
const HeaderXDRLen = 6 * 4
