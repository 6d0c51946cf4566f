package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofcam/device-registry/interfaces"
)

func testContractAddress() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000cafebabe")
}

// scriptedReceipts returns the queued responses one by one, repeating the
// last one once the script is exhausted.
type scriptedReceipts struct {
	receipts []*types.Receipt
	errs     []error
	calls    int
}

func (s *scriptedReceipts) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	i := s.calls
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	s.calls++
	return s.receipts[i], s.errs[i]
}

func newTestClient(t *testing.T, receipts ReceiptBackend) *Client {
	t.Helper()
	client, err := NewClient(nil, receipts, testContractAddress())
	require.NoError(t, err)
	client.pollInterval = time.Millisecond
	return client
}

func TestRegistryABIPacking(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	require.NoError(t, err)

	packed, err := parsed.Pack(methodRegisterDevice, "DEV-1")
	require.NoError(t, err)

	selector := crypto.Keccak256([]byte("registerDevice(string)"))[:4]
	assert.Equal(t, selector, packed[:4], "packed calldata must start with the method selector")

	_, ok := parsed.Methods[methodIsWhitelisted]
	assert.True(t, ok)
	_, ok = parsed.Methods[methodStakeOf]
	assert.True(t, ok)
}

func TestStakeAmountIsOneHundredthOfNativeUnit(t *testing.T) {
	assert.Equal(t, "10000000000000000", StakeAmountWei.String())
}

func TestBroadcastWithoutTransactOpts(t *testing.T) {
	client := newTestClient(t, &scriptedReceipts{})

	_, err := client.Broadcast(context.Background(), "DEV-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTransactOpts)
	assert.Equal(t, interfaces.KindSigningRejected, interfaces.KindOf(err))
}

func TestWaitForReceiptPollsUntilMined(t *testing.T) {
	receipts := &scriptedReceipts{
		receipts: []*types.Receipt{nil, nil, {Status: types.ReceiptStatusSuccessful}},
		errs:     []error{ethereum.NotFound, ethereum.NotFound, nil},
	}
	client := newTestClient(t, receipts)

	err := client.WaitForReceipt(context.Background(), interfaces.TxHash{0x01})
	require.NoError(t, err)
	assert.Equal(t, 3, receipts.calls)
}

func TestWaitForReceiptReverted(t *testing.T) {
	receipts := &scriptedReceipts{
		receipts: []*types.Receipt{{Status: types.ReceiptStatusFailed}},
		errs:     []error{nil},
	}
	client := newTestClient(t, receipts)

	err := client.WaitForReceipt(context.Background(), interfaces.TxHash{0x01})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionReverted)
	assert.Equal(t, interfaces.KindConfirmation, interfaces.KindOf(err))
}

func TestWaitForReceiptLookupError(t *testing.T) {
	lookupErr := errors.New("rpc connection lost")
	receipts := &scriptedReceipts{
		receipts: []*types.Receipt{nil},
		errs:     []error{lookupErr},
	}
	client := newTestClient(t, receipts)

	err := client.WaitForReceipt(context.Background(), interfaces.TxHash{0x01})
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
	assert.Equal(t, interfaces.KindConfirmation, interfaces.KindOf(err))
}

func TestWaitForReceiptContextCancelled(t *testing.T) {
	receipts := &scriptedReceipts{
		receipts: []*types.Receipt{nil},
		errs:     []error{ethereum.NotFound},
	}
	client := newTestClient(t, receipts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.WaitForReceipt(ctx, interfaces.TxHash{0x01})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, interfaces.KindConfirmation, interfaces.KindOf(err))
}
