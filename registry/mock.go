package registry

import (
	"context"
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/proofcam/device-registry/interfaces"
)

// MockChainClient mocks the interfaces.ChainClient boundary.
type MockChainClient struct {
	mock.Mock
}

// Broadcast mocks the Broadcast method.
func (m *MockChainClient) Broadcast(ctx context.Context, device interfaces.DeviceID) (interfaces.TxHash, error) {
	args := m.Called(ctx, device)
	return args.Get(0).(interfaces.TxHash), args.Error(1)
}

// WaitForReceipt mocks the WaitForReceipt method.
func (m *MockChainClient) WaitForReceipt(ctx context.Context, tx interfaces.TxHash) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockDeviceReader mocks the read-only whitelist queries.
type MockDeviceReader struct {
	mock.Mock
}

// IsWhitelisted mocks the IsWhitelisted method.
func (m *MockDeviceReader) IsWhitelisted(ctx context.Context, device interfaces.DeviceID) (bool, error) {
	args := m.Called(ctx, device)
	return args.Bool(0), args.Error(1)
}

// StakeOf mocks the StakeOf method.
func (m *MockDeviceReader) StakeOf(ctx context.Context, device interfaces.DeviceID) (*big.Int, error) {
	args := m.Called(ctx, device)
	return args.Get(0).(*big.Int), args.Error(1)
}
