package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/proofcam/device-registry/cmd/flags"
	"github.com/proofcam/device-registry/fingerprint"
	"github.com/proofcam/device-registry/interfaces"
	"github.com/proofcam/device-registry/registration"
	"github.com/proofcam/device-registry/registry"
)

var flagDeviceID = &cli.StringFlag{
	Name:  "device-id",
	Usage: "device fingerprint to register; collected from this machine when omitted",
}

func main() {
	app := &cli.App{
		Name:  "register",
		Usage: "Stake collateral to register a device fingerprint in the on-chain registry",
		Flags: append([]cli.Flag{
			flags.RPCAddrFlag,
			flags.RegistryContractFlag,
			flags.PrivateKeyFlag,
			flags.ChainIDFlag,
			flagDeviceID,
		}, flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	contractAddr, err := interfaces.NewContractAddressFromHex(cCtx.String(flags.RegistryContractFlag.Name))
	if err != nil {
		return fmt.Errorf("could not parse registry contract address: %w", err)
	}

	privateKeyHex := cCtx.String(flags.PrivateKeyFlag.Name)
	if privateKeyHex == "" {
		return fmt.Errorf("%s is required to sign the staking transaction", flags.PrivateKeyFlag.Name)
	}
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return fmt.Errorf("could not parse private key: %w", err)
	}

	rpcAddr := cCtx.String(flags.RPCAddrFlag.Name)
	logger.Info("Connecting to Ethereum RPC", "address", rpcAddr)
	ethClient, err := ethclient.Dial(rpcAddr)
	if err != nil {
		return fmt.Errorf("failed to dial RPC: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(cCtx.Int64(flags.ChainIDFlag.Name)))
	if err != nil {
		return fmt.Errorf("could not create transactor: %w", err)
	}

	client, err := registry.NewClient(ethClient, ethClient, common.Address(contractAddr))
	if err != nil {
		return fmt.Errorf("could not create registry client: %w", err)
	}
	client.SetTransactOpts(auth)

	deviceID := cCtx.String(flagDeviceID.Name)
	if deviceID == "" {
		src, err := fingerprint.SourceFor(runtime.GOOS)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot fingerprint this machine: %v", err), 1)
		}
		set := fingerprint.Collect(src)
		deviceID = fingerprint.Compute(set).String()
		logger.Info("Collected device fingerprint",
			"cpuSerial", set.CPUSerial, "machineID", set.MachineID, "macAddress", set.MACAddress,
			"fingerprint", deviceID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := registration.New(client, logger)
	if err := controller.Submit(ctx, deviceID); err != nil {
		return err
	}

	final, err := waitForTerminalState(ctx, controller, logger)
	if err != nil {
		return err
	}

	if final.Status == registration.StatusFailed {
		return cli.Exit(fmt.Sprintf("registration failed (%s): %s", final.ErrorKind, final.ErrorMessage), 1)
	}

	logger.Info("Device registered",
		"deviceID", final.DeviceID.String(), "txHash", final.TxHash.String(),
		"stakeWei", registry.StakeAmountWei.String())
	fmt.Println(final.TxHash.String())
	return nil
}

func waitForTerminalState(ctx context.Context, controller *registration.Controller, logger *slog.Logger) (registration.Attempt, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := registration.StatusIdle
	for {
		snapshot := controller.Snapshot()
		if snapshot.Status != last {
			logger.Info("Registration status changed", "status", snapshot.Status.String())
			last = snapshot.Status
		}
		if snapshot.Status.Terminal() {
			return snapshot, nil
		}

		select {
		case <-ctx.Done():
			// The broadcast transaction, if any, keeps confirming on-chain;
			// only local tracking stops here.
			return registration.Attempt{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
