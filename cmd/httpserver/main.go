package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/proofcam/device-registry/cmd/flags"
	"github.com/proofcam/device-registry/httpserver"
	"github.com/proofcam/device-registry/interfaces"
	"github.com/proofcam/device-registry/registration"
	"github.com/proofcam/device-registry/registry"
)

func main() {
	app := &cli.App{
		Name:  "device-registry-server",
		Usage: "Serve the operator registration API backed by the on-chain device registry",
		Flags: append([]cli.Flag{
			flags.RPCAddrFlag,
			flags.RegistryContractFlag,
			flags.PrivateKeyFlag,
			flags.ChainIDFlag,
			flags.ListenAddrFlag,
			flags.MetricsAddrFlag,
			flags.PprofFlag,
			flags.DrainSecondsFlag,
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
		logger.Error("Could not parse registry contract address", "err", err)
		return err
	}

	rpcAddr := cCtx.String(flags.RPCAddrFlag.Name)
	logger.Info("Connecting to Ethereum RPC", "address", rpcAddr)
	ethClient, err := ethclient.Dial(rpcAddr)
	if err != nil {
		logger.Error("Failed to dial RPC", "err", err)
		return err
	}

	client, err := registry.NewClient(ethClient, ethClient, common.Address(contractAddr))
	if err != nil {
		logger.Error("Could not create registry client", "err", err)
		return err
	}

	// Without a private key the server still serves status and public
	// lookups; submissions fail as signing rejections.
	if privateKeyHex := cCtx.String(flags.PrivateKeyFlag.Name); privateKeyHex != "" {
		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			logger.Error("Could not parse private key", "err", err)
			return fmt.Errorf("could not parse private key: %w", err)
		}
		auth, err := bind.NewKeyedTransactorWithChainID(privateKey, big.NewInt(cCtx.Int64(flags.ChainIDFlag.Name)))
		if err != nil {
			logger.Error("Could not create transactor", "err", err)
			return err
		}
		client.SetTransactOpts(auth)
		logger.Info("Transaction signing enabled", "from", auth.From.Hex())
	} else {
		logger.Info("No private key configured, serving read-only")
	}

	controller := registration.New(client, logger)
	handler := httpserver.NewHandler(controller, client, logger)

	server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server")
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}
