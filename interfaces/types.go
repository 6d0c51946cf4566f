package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDeviceID is returned when a device identifier is empty or
// whitespace-only. It is the validation error of the submission path and
// never reaches the network.
var ErrEmptyDeviceID = errors.New("device id must not be empty")

// DeviceID is the fingerprint string that identifies a capture device. It is
// an opaque identifier from the registry's perspective: any non-blank string
// is accepted so operators can register identifiers produced by older
// fingerprint versions.
type DeviceID string

// NewDeviceID validates raw operator input. Surrounding whitespace is
// trimmed; a blank result is rejected with ErrEmptyDeviceID.
func NewDeviceID(raw string) (DeviceID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyDeviceID
	}
	return DeviceID(trimmed), nil
}

// String returns the device identifier as a plain string.
func (d DeviceID) String() string {
	return string(d)
}

// ContractAddress represents an Ethereum contract address.
type ContractAddress [20]byte

// NewContractAddressFromBytes creates a contract address from a 20-byte slice.
func NewContractAddressFromBytes(addr []byte) (ContractAddress, error) {
	if len(addr) != 20 {
		return ContractAddress{}, errors.New("invalid address length: must be 20 bytes")
	}

	var res ContractAddress
	copy(res[:], addr)
	return res, nil
}

// NewContractAddressFromHex creates a contract address from a 40-character hex
// string, with or without the 0x prefix.
func NewContractAddressFromHex(addr string) (ContractAddress, error) {
	clean := strings.TrimPrefix(addr, "0x")
	if len(clean) != 40 {
		return ContractAddress{}, errors.New("invalid address length: hex string must be 40 characters")
	}

	addrBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContractAddress{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContractAddressFromBytes(addrBytes)
}

// String returns the hex string representation of the contract address.
func (addr ContractAddress) String() string {
	return hex.EncodeToString(addr[:])
}

// Bytes returns the raw 20-byte address.
func (addr ContractAddress) Bytes() []byte {
	return addr[:]
}

// TxHash represents a transaction hash returned by the chain after broadcast.
type TxHash [32]byte

// NewTxHashFromBytes creates a transaction hash from a 32-byte slice.
func NewTxHashFromBytes(b []byte) (TxHash, error) {
	if len(b) != 32 {
		return TxHash{}, errors.New("invalid hash length: must be 32 bytes")
	}

	var res TxHash
	copy(res[:], b)
	return res, nil
}

// NewTxHashFromHex creates a transaction hash from a 64-character hex string,
// with or without the 0x prefix.
func NewTxHashFromHex(h string) (TxHash, error) {
	clean := strings.TrimPrefix(h, "0x")
	if len(clean) != 64 {
		return TxHash{}, errors.New("invalid hash length: hex string must be 64 characters")
	}

	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return TxHash{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewTxHashFromBytes(hashBytes)
}

// String returns the 0x-prefixed hex representation of the hash.
func (h TxHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether no hash has been recorded.
func (h TxHash) IsZero() bool {
	return h == TxHash{}
}
