package fingerprint

import "strings"

// Unknown is the sentinel substituted for every identifier that cannot be
// read. It is a documented weak case, not an error: a set of all-unknown
// identifiers still produces a valid (if collision-prone) fingerprint.
const Unknown = "unknown"

// canonicalDelimiter joins the identifier fields in canonical order. Changing
// it changes every fingerprint ever produced.
const canonicalDelimiter = "|"

// HardwareIdentifierSet is an immutable snapshot of the raw per-host values a
// fingerprint is derived from. None of the identifiers is treated as secret;
// all may be Unknown.
type HardwareIdentifierSet struct {
	CPUSerial  string
	MachineID  string
	MACAddress string
}

// CanonicalString returns the exact byte sequence the fingerprint digest is
// computed over: the three fields in fixed order, pipe-delimited.
func (s HardwareIdentifierSet) CanonicalString() string {
	return s.CPUSerial + canonicalDelimiter + s.MachineID + canonicalDelimiter + s.MACAddress
}

// Fingerprint is a 64-character lowercase hex SHA-256 digest identifying a
// physical device. It is created once per invocation and only ever consumed
// as an opaque string afterwards.
type Fingerprint string

// String returns the fingerprint hex digest.
func (f Fingerprint) String() string {
	return string(f)
}

// Compute derives the fingerprint for the given identifier set using the
// in-process streaming digester. The function is pure: identical sets yield
// byte-identical fingerprints across platforms and runs.
func Compute(set HardwareIdentifierSet) Fingerprint {
	// StreamingDigester cannot fail on in-memory input.
	fp, _ := ComputeWith(StreamingDigester{}, set)
	return fp
}

// ComputeWith derives the fingerprint using an explicit digest backend.
func ComputeWith(d Digester, set HardwareIdentifierSet) (Fingerprint, error) {
	sum, err := d.Sum([]byte(set.CanonicalString()))
	if err != nil {
		return "", err
	}
	return Fingerprint(strings.ToLower(sum)), nil
}

// Collect reads all identifiers from src and returns a complete set. Each
// identifier that fails to read, or reads as empty, degrades to Unknown;
// collection as a whole never fails.
func Collect(src Source) HardwareIdentifierSet {
	return HardwareIdentifierSet{
		CPUSerial:  collectField(src.CPUSerial),
		MachineID:  collectField(src.MachineID),
		MACAddress: collectField(src.MACAddress),
	}
}

func collectField(read func() (string, error)) string {
	value, err := read()
	if err != nil {
		return Unknown
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Unknown
	}
	return value
}
