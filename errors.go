package rpcwire

import "github.com/pkg/errors"

// Sentinel error kinds surfaced at the codec boundary. Every returned error
// wraps one of these via errors.Wrap/Wrapf, so callers recover the kind with
// errors.Cause(err) while still getting a readable chain for logs.
var (
	// ErrProtocol covers undersized frames, length-decode failures, header
	// decode failures and payload decode failures.
	ErrProtocol = errors.New("protocol error")

	// ErrPayloadTooLarge covers an encode that would exceed PayloadMax, and
	// a decoded length that exceeds PayloadMax+LenSize.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTooManyFDs covers nfds or a decoded FD count exceeding FDsMax.
	ErrTooManyFDs = errors.New("too many file descriptors")

	// ErrNoSuchSlot covers DupFD called with an out-of-range slot.
	ErrNoSuchSlot = errors.New("no such fd slot")

	// ErrSystem covers OS-level failure duplicating or setting
	// close-on-exec on a descriptor.
	ErrSystem = errors.New("system error")

	// ErrAllocation covers buffer growth failure.
	ErrAllocation = errors.New("allocation error")
)
