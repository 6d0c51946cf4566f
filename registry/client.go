package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/proofcam/device-registry/interfaces"
)

// ErrNoTransactOpts is returned when a transaction is attempted without first
// setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

// ErrTransactionReverted is returned when the staking transaction was mined
// but the contract reverted it.
var ErrTransactionReverted = errors.New("transaction reverted on-chain")

// StakeAmountWei is the collateral attached to every registration call:
// 0.01 of the chain's native unit. The amount is a protocol constant; the
// contract enforces it, this client only supplies it.
var StakeAmountWei = big.NewInt(10_000_000_000_000_000)

// Contract methods used by this client. The registry ABI below is the
// ABI-level call contract of the staking registry; the contract
// implementation itself is out of scope.
const (
	methodRegisterDevice = "registerDevice"
	methodIsWhitelisted  = "isDeviceWhitelisted"
	methodStakeOf        = "stakeOf"
)

const registryABI = `[
	{"type":"function","name":"registerDevice","stateMutability":"payable","inputs":[{"name":"deviceId","type":"string"}],"outputs":[]},
	{"type":"function","name":"isDeviceWhitelisted","stateMutability":"view","inputs":[{"name":"deviceId","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"stakeOf","stateMutability":"view","inputs":[{"name":"deviceId","type":"string"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// defaultPollInterval paces receipt lookups while waiting for confirmation.
const defaultPollInterval = 2 * time.Second

// ReceiptBackend is the subset of the Ethereum RPC used to wait for
// confirmations. *ethclient.Client satisfies it.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client talks to the device registry contract. It implements
// interfaces.ChainClient for the registration controller and additionally
// exposes the read-only whitelist queries.
type Client struct {
	contract *bind.BoundContract
	receipts ReceiptBackend
	address  common.Address
	auth     *bind.TransactOpts

	pollInterval time.Duration
}

// NewClient creates a client for the registry contract at the given address.
// It requires a ContractBackend for calls and transactions and a
// ReceiptBackend for confirmation polling; an *ethclient.Client serves as
// both.
func NewClient(backend bind.ContractBackend, receipts ReceiptBackend, address common.Address) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("could not parse registry ABI: %w", err)
	}

	return &Client{
		contract:     bind.NewBoundContract(address, parsed, backend, backend, backend),
		receipts:     receipts,
		address:      address,
		pollInterval: defaultPollInterval,
	}, nil
}

// SetTransactOpts sets the transaction options required for RegisterDevice
// and Broadcast. This must be called before sending any transaction.
func (c *Client) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

// RegisterDevice signs and broadcasts the staking registration call for the
// given device, attaching the fixed stake as transaction value. Returns the
// transaction and an error if the transaction could not be sent.
func (c *Client) RegisterDevice(ctx context.Context, device interfaces.DeviceID) (*types.Transaction, error) {
	if c.auth == nil {
		return nil, interfaces.NewChainError(interfaces.KindSigningRejected, ErrNoTransactOpts)
	}

	opts := *c.auth
	opts.Value = StakeAmountWei
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, methodRegisterDevice, device.String())
	if err != nil {
		return nil, interfaces.NewChainError(interfaces.KindBroadcastFailed,
			fmt.Errorf("could not broadcast registration for %s: %w", device, err))
	}
	return tx, nil
}

// Broadcast implements interfaces.ChainClient.
func (c *Client) Broadcast(ctx context.Context, device interfaces.DeviceID) (interfaces.TxHash, error) {
	tx, err := c.RegisterDevice(ctx, device)
	if err != nil {
		return interfaces.TxHash{}, err
	}
	return interfaces.TxHash(tx.Hash()), nil
}

// WaitForReceipt polls for the transaction receipt until the transaction is
// mined or ctx is cancelled. A mined-but-reverted transaction is an error.
// There is no internal timeout: confirmation time is governed by the chain.
func (c *Client) WaitForReceipt(ctx context.Context, tx interfaces.TxHash) error {
	hash := common.Hash(tx)

	for {
		receipt, err := c.receipts.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return interfaces.NewChainError(interfaces.KindConfirmation,
					fmt.Errorf("%w: %s", ErrTransactionReverted, hash))
			}
			return nil
		case errors.Is(err, ethereum.NotFound):
			// not mined yet, keep polling
		default:
			return interfaces.NewChainError(interfaces.KindConfirmation,
				fmt.Errorf("could not fetch receipt for %s: %w", hash, err))
		}

		select {
		case <-ctx.Done():
			return interfaces.NewChainError(interfaces.KindConfirmation, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

// IsWhitelisted reports whether the device fingerprint is whitelisted in the
// registry contract.
func (c *Client) IsWhitelisted(ctx context.Context, device interfaces.DeviceID) (bool, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodIsWhitelisted, device.String())
	if err != nil {
		return false, fmt.Errorf("whitelist lookup for %s failed: %w", device, err)
	}

	whitelisted, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s return type %T", methodIsWhitelisted, out[0])
	}
	return whitelisted, nil
}

// StakeOf returns the collateral currently staked for the device, in wei.
func (c *Client) StakeOf(ctx context.Context, device interfaces.DeviceID) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodStakeOf, device.String())
	if err != nil {
		return nil, fmt.Errorf("stake lookup for %s failed: %w", device, err)
	}

	stake, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s return type %T", methodStakeOf, out[0])
	}
	return stake, nil
}
