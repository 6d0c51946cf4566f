// The fingerprint command prints the detected platform, the raw hardware
// identifiers (or "unknown" for every identifier that could not be read) and
// the resulting device fingerprint. It exits non-zero with a diagnostic when
// the platform family is unrecognized.
package main
