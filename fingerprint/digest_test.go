package fingerprint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingDigesterKnownVector(t *testing.T) {
	sum, err := StreamingDigester{}.Sum([]byte("unknown|unknown|unknown"))
	require.NoError(t, err)
	assert.Equal(t, "db87e58216783d79e2c16c129fa3126e64254cf59b63c14613ece4f0b320a032", sum)
}

// TestDigesterEquivalence proves the streaming and command backends produce
// identical hex output for identical input. Callers treat the two as
// interchangeable, so any divergence silently changes fingerprints.
func TestDigesterEquivalence(t *testing.T) {
	command, err := NewCommandDigester()
	if errors.Is(err, ErrNoDigestCommand) {
		t.Skip("no sha256sum or shasum on this host")
	}
	require.NoError(t, err)

	streaming := StreamingDigester{}

	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("unknown|unknown|unknown"),
		[]byte("PI-123|mid-456|aa:bb:cc:dd:ee:ff"),
		[]byte("serial with spaces|ümlaut-machine|00:00:00:00:00:00"),
		[]byte{0x00, 0x01, 0xff, 0x7c},
	}

	for _, input := range inputs {
		want, err := streaming.Sum(input)
		require.NoError(t, err)

		got, err := command.Sum(input)
		require.NoError(t, err)

		assert.Equal(t, want, got, "backends diverge on input %q", input)
	}
}

func TestComputeWithBothBackends(t *testing.T) {
	command, err := NewCommandDigester()
	if errors.Is(err, ErrNoDigestCommand) {
		t.Skip("no sha256sum or shasum on this host")
	}
	require.NoError(t, err)

	set := HardwareIdentifierSet{CPUSerial: "PI-123", MachineID: "mid-456", MACAddress: "aa:bb:cc:dd:ee:ff"}

	fromStreaming, err := ComputeWith(StreamingDigester{}, set)
	require.NoError(t, err)

	fromCommand, err := ComputeWith(command, set)
	require.NoError(t, err)

	assert.Equal(t, fromStreaming, fromCommand)
	assert.Equal(t, Compute(set), fromStreaming)
}
