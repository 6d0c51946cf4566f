/*
Package fingerprint produces a stable identifier for the machine it runs on.

It collects three hardware identifiers per platform family (a CPU serial
number, the machine/platform UUID and the primary network interface's
hardware address) and reduces them to a single SHA-256 digest over their
canonical pipe-delimited concatenation, rendered as lowercase hex.

Collection never fails as a whole: every identifier that cannot be read is
replaced with the literal sentinel "unknown" and the digest is still
produced. Only an unrecognized platform family is a hard error; the package
refuses to fabricate fallback identifiers there.

Two digest backends are provided: StreamingDigester computes the hash
in-process, CommandDigester shells out to sha256sum or shasum. Both conform
to the same algorithm and are required to produce identical output for
identical input.

Identifier sources are selected once at startup via SourceFor:

	src, err := fingerprint.SourceFor(runtime.GOOS)
	if err != nil {
		// unsupported platform, no fingerprint can be produced
	}
	set := fingerprint.Collect(src)
	fp := fingerprint.Compute(set)
*/
package fingerprint
