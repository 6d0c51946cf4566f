package registration

import (
	"fmt"

	"github.com/proofcam/device-registry/interfaces"
)

// Status is the lifecycle state of a registration attempt.
type Status int

const (
	// StatusIdle means no attempt is in progress. Initial state, and the
	// state reached after Reset.
	StatusIdle Status = iota

	// StatusAwaitingSignature means the sign-and-broadcast call has been
	// dispatched to the chain client and no hash has arrived yet.
	StatusAwaitingSignature

	// StatusAwaitingConfirmation means a transaction hash was received and
	// the attempt is waiting for that hash to confirm on-chain.
	StatusAwaitingConfirmation

	// StatusConfirmed is the terminal success state. The device is considered
	// whitelisted from the caller's perspective; the authoritative record
	// lives on-chain.
	StatusConfirmed

	// StatusFailed is the terminal failure state, carrying an error message.
	StatusFailed
)

// String returns the stable label used in logs, metrics and API responses.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAwaitingSignature:
		return "awaiting_signature"
	case StatusAwaitingConfirmation:
		return "awaiting_confirmation"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets encoding/json render the status as its label.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status label produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "awaiting_signature":
		*s = StatusAwaitingSignature
	case "awaiting_confirmation":
		*s = StatusAwaitingConfirmation
	case "confirmed":
		*s = StatusConfirmed
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// InFlight reports whether an attempt is between submission and a terminal
// state.
func (s Status) InFlight() bool {
	return s == StatusAwaitingSignature || s == StatusAwaitingConfirmation
}

// Terminal reports whether the attempt has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Attempt is a snapshot of one user-initiated staking action. It is mutated
// only by the Controller in response to chain client events.
type Attempt struct {
	// DeviceID is the fingerprint supplied by the operator.
	DeviceID interfaces.DeviceID

	// Status is the current lifecycle state.
	Status Status

	// TxHash is set once the wallet returns a transaction hash, and cleared
	// again if the attempt fails.
	TxHash interfaces.TxHash

	// ErrorKind classifies the failure when Status is StatusFailed.
	ErrorKind interfaces.ErrorKind

	// ErrorMessage is the human-readable failure message when Status is
	// StatusFailed. Exactly one message is carried at a time; it is cleared
	// by the next Submit.
	ErrorMessage string
}
