// Package platform defines the transport-facing interfaces a remote
// connection is built on (spec.md §6). They are deliberately minimal and
// byte/message oriented, so any real transport — a WebSocket, a Unix
// socket, an in-process pipe used for testing — can implement them without
// depending on the rest of chanflow.
package platform

import "context"

// Port is the write side of a transport the remote connection layer sends
// encoded frames over.
type Port interface {
	// Send writes one frame. Implementations must not fragment or coalesce
	// frames; chanflow's own framing (the "#cc" control-message
	// discriminator) assumes one Send call delivers exactly one frame to
	// the peer's Receiver.Recv.
	Send(ctx context.Context, frame []byte) error
	Close() error
}

// Receiver is the read side of a transport.
type Receiver interface {
	// Recv blocks for the next frame, or returns an error (including
	// context cancellation or peer disconnect).
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// TransferablePayload is the serializable handle representation produced
// by chanflow's Pack methods (spec.md §6 / §4 "Handles"). It carries the
// originating channel id, the role being transferred, and a Transferred
// flag. chanflow's Unpack functions resolve the id through the packing
// process's own registry, so a payload does not reconstruct a handle in
// another process, and no RemoteConnection proxy is built from it. Unpack
// rejects a payload whose Transferred flag is set (see
// chanflow.ErrTransferTwice); chanflow itself never sets the flag.
type TransferablePayload struct {
	ChannelID   int64
	Role        Role
	Transferred bool
}

// Role distinguishes which side of a channel a TransferablePayload grants.
type Role int

const (
	RoleSender Role = iota
	RoleReceiver
)
