package interfaces

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where in the registration lifecycle a failure
// originated. The state machine does not branch on kinds; they exist for
// observability and for callers that want to present failures differently.
type ErrorKind int

const (
	// KindUnknown is the zero value for errors that carry no classification.
	KindUnknown ErrorKind = iota

	// KindValidation marks bad local input that never reached the network.
	KindValidation

	// KindSigningRejected marks a signing failure, e.g. the operator declined
	// the transaction in their wallet or no transactor was configured.
	KindSigningRejected

	// KindBroadcastFailed marks a rejection by the network or node.
	KindBroadcastFailed

	// KindConfirmation marks a failed receipt lookup or a chain-reported
	// revert while waiting for confirmation.
	KindConfirmation
)

// String returns a stable label for logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSigningRejected:
		return "signing_rejected"
	case KindBroadcastFailed:
		return "broadcast_failed"
	case KindConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// ChainError attaches an ErrorKind to an underlying chain failure.
type ChainError struct {
	Kind ErrorKind
	Err  error
}

// Error returns the underlying error message.
func (e *ChainError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ChainError) Unwrap() error {
	return e.Err
}

// NewChainError wraps err with the given kind.
func NewChainError(kind ErrorKind, err error) *ChainError {
	return &ChainError{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from err, or KindUnknown if it carries none.
func KindOf(err error) ErrorKind {
	var chainErr *ChainError
	if errors.As(err, &chainErr) {
		return chainErr.Kind
	}
	if errors.Is(err, ErrEmptyDeviceID) {
		return KindValidation
	}
	return KindUnknown
}

// PlatformUnsupportedError is returned when no identifier source exists for
// the host platform family. It is fatal: no fingerprint can be produced and
// no fallback identifiers may be fabricated.
type PlatformUnsupportedError struct {
	GOOS string
}

// Error describes the unsupported platform.
func (e *PlatformUnsupportedError) Error() string {
	return fmt.Sprintf("unsupported platform family: %s", e.GOOS)
}
