package chanflow

import "github.com/joeycumines/go-chanflow/platform"

// Pack detaches s into a platform.TransferablePayload (spec.md §6
// "Transferable handle payload"), suitable for carrying across a
// platform.Port boundary or otherwise handing ownership to code that
// reconstructs its own handle via UnpackSender. A Sender may be packed at
// most once; a second Pack call returns ErrTransferTwice, mirroring
// spec.md §4.9's rejection of re-sending an already-transferred payload.
func (s Sender[T]) Pack() (platform.TransferablePayload, error) {
	if !s.core.beginTransfer() {
		return platform.TransferablePayload{}, ErrTransferTwice
	}
	return platform.TransferablePayload{ChannelID: s.core.id, Role: platform.RoleSender}, nil
}

// Pack detaches r into a platform.TransferablePayload; see Sender.Pack.
func (r Receiver[T]) Pack() (platform.TransferablePayload, error) {
	if !r.core.beginTransfer() {
		return platform.TransferablePayload{}, ErrTransferTwice
	}
	return platform.TransferablePayload{ChannelID: r.core.id, Role: platform.RoleReceiver}, nil
}

// UnpackSender reconstructs a Sender from a payload produced by Sender.Pack,
// resolving payload.ChannelID through the process registry (spec.md §9:
// "handles carry the integer id... lookup is via the registry"). The
// registry is process-local, so this works only in the process that
// packed the payload. It returns ErrTransferTwice if payload.Transferred
// is set (Pack never sets it and unpacking does not mark the payload, so
// the same payload can be unpacked more than once), a *ChanError if
// the payload doesn't carry a RoleSender, and ErrClosed if the channel's
// core is no longer live in this process (garbage collected or explicitly
// unregistered since Pack). The returned Sender is attached like any other
// Clone, so single-sender flavors still reject a second live sender.
func UnpackSender[T any](payload platform.TransferablePayload) (Sender[T], error) {
	if payload.Transferred {
		return Sender[T]{}, ErrTransferTwice
	}
	if payload.Role != platform.RoleSender {
		return Sender[T]{}, &ChanError{Op: "unpack", Message: "payload role is not RoleSender"}
	}
	core, ok := lookupCore[T](payload.ChannelID)
	if !ok {
		return Sender[T]{}, ErrClosed
	}
	if err := core.attachSender(); err != nil {
		return Sender[T]{}, err
	}
	return Sender[T]{core: core}, nil
}

// UnpackReceiver reconstructs a Receiver from a payload produced by
// Receiver.Pack; see UnpackSender.
func UnpackReceiver[T any](payload platform.TransferablePayload) (Receiver[T], error) {
	if payload.Transferred {
		return Receiver[T]{}, ErrTransferTwice
	}
	if payload.Role != platform.RoleReceiver {
		return Receiver[T]{}, &ChanError{Op: "unpack", Message: "payload role is not RoleReceiver"}
	}
	core, ok := lookupCore[T](payload.ChannelID)
	if !ok {
		return Receiver[T]{}, ErrClosed
	}
	if err := core.attachReceiver(); err != nil {
		return Receiver[T]{}, err
	}
	return Receiver[T]{core: core}, nil
}
