// Package interfaces defines the core types and consumed boundaries of the
// device registry system. It provides the contract between components without
// implementation details: validated value types for device identifiers,
// contract addresses and transaction hashes, the ChainClient boundary the
// registration controller depends on, and the error taxonomy shared across
// the submission and confirmation paths.
//
// The package deliberately avoids importing any blockchain library. The
// go-ethereum specifics live entirely in the registry package; everything
// above it speaks in terms of the types defined here.
package interfaces
