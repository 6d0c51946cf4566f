package fingerprint

import (
	"errors"
	"net"
	"os"
	"os/exec"
	"strings"

	"github.com/proofcam/device-registry/interfaces"
)

// Family names a supported platform family. Windows compatibility layers
// (git-bash, msys) report windows and are covered by FamilyWindows.
type Family string

const (
	FamilyLinux   Family = "linux"
	FamilyDarwin  Family = "darwin"
	FamilyWindows Family = "windows"
)

// Source reads raw hardware identifiers for one platform family. Individual
// reads may fail; Collect absorbs those failures into the Unknown sentinel.
type Source interface {
	Family() Family
	CPUSerial() (string, error)
	MachineID() (string, error)
	MACAddress() (string, error)
}

// SourceFor selects the identifier source for the given GOOS value. This is
// done once at startup; adding a platform means adding a Source
// implementation here rather than scattering OS branches through callers.
func SourceFor(goos string) (Source, error) {
	switch goos {
	case "linux":
		return newLinuxSource(), nil
	case "darwin":
		return newDarwinSource(), nil
	case "windows":
		return newWindowsSource(), nil
	default:
		return nil, &interfaces.PlatformUnsupportedError{GOOS: goos}
	}
}

// runCommand executes an identifier probe and returns its stdout. Injectable
// so source parsing is testable without the vendor tools.
type runCommand func(name string, args ...string) (string, error)

func execRunner(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

// listInterfaces enumerates network interfaces. Injectable for tests.
type listInterfaces func() ([]net.Interface, error)

// firstHardwareAddr picks the primary interface's MAC: the first non-loopback
// interface with a hardware address, in kernel enumeration order. Enumeration
// order is stable on a given host, which is all determinism requires.
func firstHardwareAddr(list listInterfaces) (string, error) {
	ifaces, err := list()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return strings.ToLower(iface.HardwareAddr.String()), nil
	}
	return "", errors.New("no interface with a hardware address")
}

type linuxSource struct {
	readFile   func(string) (string, error)
	interfaces listInterfaces
}

func newLinuxSource() *linuxSource {
	return &linuxSource{
		readFile: func(path string) (string, error) {
			b, err := os.ReadFile(path)
			return string(b), err
		},
		interfaces: net.Interfaces,
	}
}

func (s *linuxSource) Family() Family { return FamilyLinux }

// CPUSerial reads the Serial line from /proc/cpuinfo. It is present on
// Raspberry Pi class hardware; most desktop CPUs do not expose one and the
// value degrades to Unknown there.
func (s *linuxSource) CPUSerial() (string, error) {
	content, err := s.readFile("/proc/cpuinfo")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(content, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == "Serial" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", errors.New("no Serial line in /proc/cpuinfo")
}

// MachineID reads the systemd machine id, falling back to the dbus location.
func (s *linuxSource) MachineID() (string, error) {
	id, err := s.readFile("/etc/machine-id")
	if err != nil || strings.TrimSpace(id) == "" {
		id, err = s.readFile("/var/lib/dbus/machine-id")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(id), nil
}

func (s *linuxSource) MACAddress() (string, error) {
	return firstHardwareAddr(s.interfaces)
}

type darwinSource struct {
	run        runCommand
	interfaces listInterfaces
}

func newDarwinSource() *darwinSource {
	return &darwinSource{run: execRunner, interfaces: net.Interfaces}
}

func (s *darwinSource) Family() Family { return FamilyDarwin }

func (s *darwinSource) CPUSerial() (string, error) {
	return s.ioregValue("IOPlatformSerialNumber")
}

func (s *darwinSource) MachineID() (string, error) {
	return s.ioregValue("IOPlatformUUID")
}

func (s *darwinSource) MACAddress() (string, error) {
	return firstHardwareAddr(s.interfaces)
}

// ioregValue extracts a quoted property from the IOPlatformExpertDevice node.
// Lines have the shape: "IOPlatformUUID" = "ABCD-...".
func (s *darwinSource) ioregValue(key string) (string, error) {
	out, err := s.run("ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "\""+key+"\"") {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), "\""), nil
	}
	return "", errors.New("ioreg output has no " + key)
}

type windowsSource struct {
	run        runCommand
	interfaces listInterfaces
}

func newWindowsSource() *windowsSource {
	return &windowsSource{run: execRunner, interfaces: net.Interfaces}
}

func (s *windowsSource) Family() Family { return FamilyWindows }

func (s *windowsSource) CPUSerial() (string, error) {
	return s.wmicValue("cpu", "ProcessorId")
}

func (s *windowsSource) MachineID() (string, error) {
	return s.wmicValue("csproduct", "UUID")
}

func (s *windowsSource) MACAddress() (string, error) {
	return firstHardwareAddr(s.interfaces)
}

// wmicValue runs `wmic <class> get <property>` and returns the first value
// line below the header.
func (s *windowsSource) wmicValue(class, property string) (string, error) {
	out, err := s.run("wmic", class, "get", property)
	if err != nil {
		return "", err
	}
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if i == 0 {
			// header line
			continue
		}
		value := strings.TrimSpace(line)
		if value != "" {
			return value, nil
		}
	}
	return "", errors.New("wmic returned no value for " + class + "." + property)
}
