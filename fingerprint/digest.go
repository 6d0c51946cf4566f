package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoDigestCommand is returned when neither sha256sum nor shasum is
// available on the host.
var ErrNoDigestCommand = errors.New("no sha256 command available: need sha256sum or shasum")

// Digester computes a 256-bit digest over raw bytes and renders it as
// lowercase hex. All implementations must produce identical output for
// identical input.
type Digester interface {
	Sum(data []byte) (string, error)
}

// StreamingDigester computes SHA-256 in-process. This is the primary backend.
type StreamingDigester struct{}

// Sum returns the lowercase hex SHA-256 digest of data.
func (StreamingDigester) Sum(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CommandDigester computes SHA-256 by piping data through an external shasum
// style command. It exists as a fallback for constrained hosts and must
// produce output identical to StreamingDigester.
type CommandDigester struct {
	path string
	args []string
}

// NewCommandDigester locates a usable digest command, preferring sha256sum
// and falling back to shasum -a 256.
func NewCommandDigester() (*CommandDigester, error) {
	if path, err := exec.LookPath("sha256sum"); err == nil {
		return &CommandDigester{path: path}, nil
	}
	if path, err := exec.LookPath("shasum"); err == nil {
		return &CommandDigester{path: path, args: []string{"-a", "256"}}, nil
	}
	return nil, ErrNoDigestCommand
}

// Sum pipes data through the digest command and parses the hex digest from
// the first whitespace-separated field of its output.
func (d *CommandDigester) Sum(data []byte) (string, error) {
	cmd := exec.Command(d.path, d.args...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("digest command %s failed: %w", d.path, err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("digest command %s produced no output", d.path)
	}

	digest := strings.ToLower(fields[0])
	if len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("digest command %s produced unexpected digest %q", d.path, digest)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("digest command %s produced non-hex digest %q", d.path, digest)
	}
	return digest, nil
}
