// The register command submits one staking registration attempt for a device
// fingerprint and follows it to a terminal state. The fingerprint is taken
// from --device-id or collected from the local machine. A local interrupt
// stops tracking but cannot revoke a transaction that was already broadcast.
package main
