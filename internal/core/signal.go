package core

// Frame is a raw outbound payload, already marshaled.
type Frame []byte

// ConnID identifies a single transport link. One browser tab = one ConnID;
// the same user may hold several at once.
type ConnID string

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
