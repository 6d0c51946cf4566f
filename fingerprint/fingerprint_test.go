package fingerprint

import (
	"errors"
	"testing"

	"github.com/proofcam/device-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	cpu, machine, mac          string
	cpuErr, machineErr, macErr error
}

func (f *fakeSource) Family() Family              { return FamilyLinux }
func (f *fakeSource) CPUSerial() (string, error)  { return f.cpu, f.cpuErr }
func (f *fakeSource) MachineID() (string, error)  { return f.machine, f.machineErr }
func (f *fakeSource) MACAddress() (string, error) { return f.mac, f.macErr }

func TestComputeIsDeterministic(t *testing.T) {
	set := HardwareIdentifierSet{
		CPUSerial:  "PI-123",
		MachineID:  "mid-456",
		MACAddress: "aa:bb:cc:dd:ee:ff",
	}

	first := Compute(set)
	second := Compute(set)
	assert.Equal(t, first, second, "repeated calls on the same input must yield byte-identical output")

	// Known vector: sha256("PI-123|mid-456|aa:bb:cc:dd:ee:ff")
	assert.Equal(t, Fingerprint("62dc014d74a28a94d1df8386967d4dfaabebdf5ab06956ca7b04a3ae55496895"), first)
}

func TestComputeAllUnknownStillProducesFingerprint(t *testing.T) {
	set := HardwareIdentifierSet{CPUSerial: Unknown, MachineID: Unknown, MACAddress: Unknown}

	fp := Compute(set)
	assert.Len(t, fp.String(), 64)

	// Known vector: sha256("unknown|unknown|unknown")
	assert.Equal(t, Fingerprint("db87e58216783d79e2c16c129fa3126e64254cf59b63c14613ece4f0b320a032"), fp)
}

func TestCanonicalStringFieldOrder(t *testing.T) {
	set := HardwareIdentifierSet{CPUSerial: "a", MachineID: "b", MACAddress: "c"}
	assert.Equal(t, "a|b|c", set.CanonicalString())
}

func TestCollectDegradesPerField(t *testing.T) {
	src := &fakeSource{
		cpuErr:  errors.New("no serial exposed"),
		machine: "f00dbabe",
		mac:     "aa:bb:cc:dd:ee:ff",
	}

	set := Collect(src)
	assert.Equal(t, Unknown, set.CPUSerial)
	assert.Equal(t, "f00dbabe", set.MachineID)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", set.MACAddress)

	fp := Compute(set)
	assert.Len(t, fp.String(), 64, "a fingerprint must still be produced")
}

func TestCollectTreatsEmptyAsUnknown(t *testing.T) {
	src := &fakeSource{cpu: "  ", machine: "", mac: "aa:bb:cc:dd:ee:ff"}

	set := Collect(src)
	assert.Equal(t, Unknown, set.CPUSerial)
	assert.Equal(t, Unknown, set.MachineID)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", set.MACAddress)
}

func TestCollectTrimsValues(t *testing.T) {
	src := &fakeSource{cpu: " PI-123\n", machine: "mid\n", mac: "aa:bb:cc:dd:ee:ff\n"}

	set := Collect(src)
	assert.Equal(t, "PI-123", set.CPUSerial)
	assert.Equal(t, "mid", set.MachineID)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", set.MACAddress)
}

func TestSourceForSupportedFamilies(t *testing.T) {
	for goos, family := range map[string]Family{
		"linux":   FamilyLinux,
		"darwin":  FamilyDarwin,
		"windows": FamilyWindows,
	} {
		src, err := SourceFor(goos)
		require.NoError(t, err, goos)
		assert.Equal(t, family, src.Family())
	}
}

func TestSourceForUnsupportedFamily(t *testing.T) {
	_, err := SourceFor("plan9")
	require.Error(t, err)

	var unsupported *interfaces.PlatformUnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "plan9", unsupported.GOOS)
}
