package rpcwire

import (
	"golang.org/x/sys/unix"

	"github.com/pkg/errors"
)

// ClearFDs closes every attached descriptor, ignoring EINTR the way the
// process-wide forced-close primitive does, and resets the descriptor
// bookkeeping.
func (m *Message) ClearFDs() {
	for _, fd := range m.fds {
		forceClose(fd)
	}
	m.doneFDs = 0
	m.fds = nil
}

// forceClose closes fd once, ignoring EINTR and any other close error,
// matching VIR_FORCE_CLOSE.
func forceClose(fd int) {
	if fd < 0 {
		return
	}
	_ = unix.Close(fd)
}

// dupCloexec duplicates fd with close-on-exec set atomically where the
// platform supports F_DUPFD_CLOEXEC, falling back to dup+CloseOnExec.
func dupCloexec(fd int) (int, error) {
	newfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err == nil {
		return newfd, nil
	}

	newfd, derr := unix.Dup(fd)
	if derr != nil {
		return -1, errors.Wrapf(ErrSystem, "duplicate fd %d: %v", fd, derr)
	}
	unix.CloseOnExec(newfd)
	return newfd, nil
}

// AddFD duplicates fd with close-on-exec semantics and appends it to the
// message's descriptor array. On any failure the duplicate is closed and
// the message is left unchanged.
func (c *Codec) AddFD(m *Message, fd int) error {
	newfd, err := dupCloexec(fd)
	if err != nil {
		return err
	}
	m.fds = append(m.fds, newfd)
	return nil
}

// DupFD duplicates the descriptor at slot with close-on-exec semantics and
// returns it; the caller takes ownership.
func (c *Codec) DupFD(m *Message, slot int) (int, error) {
	if slot < 0 || slot >= len(m.fds) {
		return -1, errors.Wrapf(ErrNoSuchSlot, "slot %d (have %d)", slot, len(m.fds))
	}
	return dupCloexec(m.fds[slot])
}

// NumFDs returns the number of descriptors currently attached to m.
func (m *Message) NumFDs() int {
	return len(m.fds)
}

// FD returns the descriptor stored at slot without duplicating it. Callers
// that need ownership of the descriptor should use DupFD instead.
func (m *Message) FD(slot int) (int, error) {
	if slot < 0 || slot >= len(m.fds) {
		return -1, errors.Wrapf(ErrNoSuchSlot, "slot %d (have %d)", slot, len(m.fds))
	}
	return m.fds[slot], nil
}

// SetFD fills a pre-allocated descriptor slot, as the I/O loop does once it
// has received an ancillary descriptor for a message DecodeNumFDs already
// sized.
func (m *Message) SetFD(slot, fd int) error {
	if slot < 0 || slot >= len(m.fds) {
		return errors.Wrapf(ErrNoSuchSlot, "slot %d (have %d)", slot, len(m.fds))
	}
	m.fds[slot] = fd
	return nil
}

// MarkHandedOff records that the descriptor at slot has been passed to the
// peer: the I/O loop resets it to the -1 sentinel and the message is no
// longer responsible for closing it.
func (m *Message) MarkHandedOff(slot int) error {
	if slot < 0 || slot >= len(m.fds) {
		return errors.Wrapf(ErrNoSuchSlot, "slot %d (have %d)", slot, len(m.fds))
	}
	m.fds[slot] = -1
	m.doneFDs++
	return nil
}

// EncodeNumFDs XDR-encodes the message's attached FD count at the current
// buffer cursor.
func (c *Codec) EncodeNumFDs(m *Message) error {
	numFDs := uint32(len(m.fds))
	if numFDs > c.fdsMax {
		return errors.Wrapf(ErrTooManyFDs, "%d to send, %d maximum", numFDs, c.fdsMax)
	}

	if err := c.growForEncode(m, 4); err != nil {
		return err
	}

	putUint32(m.buffer[m.bufferOffset:], numFDs)
	m.bufferOffset += 4

	c.logger().Debug("encoded fd count", "nfds", numFDs)
	return nil
}

// DecodeNumFDs XDR-decodes an FD count from the current buffer cursor. If
// the message has no descriptor slots allocated yet, it allocates count
// slots initialised to -1; if slots already exist (pre-populated by the I/O
// loop) the array is left untouched.
func (c *Codec) DecodeNumFDs(m *Message) error {
	if m.bufferOffset+4 > len(m.buffer) {
		return errors.Wrap(ErrProtocol, "truncated fd count")
	}

	numFDs := getUint32(m.buffer[m.bufferOffset:])
	m.bufferOffset += 4

	if numFDs > c.fdsMax {
		return errors.Wrapf(ErrTooManyFDs, "%d received, %d maximum", numFDs, c.fdsMax)
	}

	if len(m.fds) == 0 {
		m.fds = make([]int, numFDs)
		for i := range m.fds {
			m.fds[i] = -1
		}
	}

	c.logger().Debug("decoded fd count", "nfds", numFDs)
	return nil
}
