package interfaces

import "context"

// ChainClient abstracts signing, broadcasting and confirming the staking
// transaction that registers a device. The registration controller depends on
// this interface only; how gas estimation, signing and network selection are
// performed is entirely up to the implementation.
type ChainClient interface {
	// Broadcast signs and sends the staking registration call for the given
	// device and returns the transaction hash assigned by the chain. Errors
	// carry an ErrorKind distinguishing a signing rejection from a node
	// rejection.
	Broadcast(ctx context.Context, device DeviceID) (TxHash, error)

	// WaitForReceipt blocks until the transaction is mined and succeeded, the
	// receipt reports a revert, or ctx is cancelled. Confirmation time is
	// governed by the chain; no internal timeout is applied.
	WaitForReceipt(ctx context.Context, tx TxHash) error
}
