package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/proofcam/device-registry/fingerprint"
)

var flagDigestBackend = &cli.StringFlag{
	Name:  "digest-backend",
	Value: "streaming",
	Usage: "digest backend to use: 'streaming' or 'command'",
}

func main() {
	app := &cli.App{
		Name:  "fingerprint",
		Usage: "Print the hardware identifiers and fingerprint of this machine",
		Flags: []cli.Flag{
			flagDigestBackend,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	src, err := fingerprint.SourceFor(runtime.GOOS)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot fingerprint this machine: %v", err), 1)
	}

	var digester fingerprint.Digester
	switch backend := cCtx.String(flagDigestBackend.Name); backend {
	case "streaming":
		digester = fingerprint.StreamingDigester{}
	case "command":
		digester, err = fingerprint.NewCommandDigester()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	default:
		return cli.Exit(fmt.Sprintf("unknown digest backend %q", backend), 1)
	}

	set := fingerprint.Collect(src)
	fp, err := fingerprint.ComputeWith(digester, set)
	if err != nil {
		return cli.Exit(fmt.Sprintf("digest failed: %v", err), 1)
	}

	fmt.Printf("OS:            %s\n", runtime.GOOS)
	fmt.Printf("Family:        %s\n", src.Family())
	fmt.Printf("Architecture:  %s\n", runtime.GOARCH)
	fmt.Printf("CPU serial:    %s\n", set.CPUSerial)
	fmt.Printf("Machine ID:    %s\n", set.MachineID)
	fmt.Printf("MAC address:   %s\n", set.MACAddress)
	fmt.Printf("Fingerprint:   %s\n", fp)

	return nil
}
