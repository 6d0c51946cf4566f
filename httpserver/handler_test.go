package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/proofcam/device-registry/interfaces"
	"github.com/proofcam/device-registry/registration"
	"github.com/proofcam/device-registry/registry"
)

// blockedChainClient parks Broadcast until released, keeping an attempt in
// flight for as long as a test needs.
type blockedChainClient struct {
	release chan struct{}
}

func (b *blockedChainClient) Broadcast(ctx context.Context, device interfaces.DeviceID) (interfaces.TxHash, error) {
	<-b.release
	return interfaces.TxHash{0xab}, nil
}

func (b *blockedChainClient) WaitForReceipt(ctx context.Context, tx interfaces.TxHash) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, chain interfaces.ChainClient, devices DeviceReader) http.Handler {
	t.Helper()

	log := discardLogger()
	controller := registration.New(chain, log)
	handler := NewHandler(controller, devices, log)

	srv, err := New(&HTTPServerConfig{Log: log}, handler)
	require.NoError(t, err)
	return srv.getRouter()
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSubmitRejectsBlankDeviceID(t *testing.T) {
	chain := new(registry.MockChainClient)
	router := newTestRouter(t, chain, new(registry.MockDeviceReader))

	rec := postJSON(router, "/api/operator/register", `{"device_id":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(router, "/api/operator/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	chain.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestHandleSubmitThroughConfirmation(t *testing.T) {
	chain := new(registry.MockChainClient)
	chain.On("Broadcast", mock.Anything, interfaces.DeviceID("DEV-1")).
		Return(interfaces.TxHash{0xab}, nil)
	chain.On("WaitForReceipt", mock.Anything, interfaces.TxHash{0xab}).
		Return(nil)

	router := newTestRouter(t, chain, new(registry.MockDeviceReader))

	rec := postJSON(router, "/api/operator/register", `{"device_id":"DEV-1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp attemptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "DEV-1", resp.DeviceID)

	require.Eventually(t, func() bool {
		var status attemptResponse
		rec := get(router, "/api/operator/status")
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			return false
		}
		return status.Status == registration.StatusConfirmed
	}, time.Second, time.Millisecond)

	rec = get(router, "/api/operator/status")
	var final attemptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&final))
	assert.Equal(t, interfaces.TxHash{0xab}.String(), final.TransactionHash)
	assert.Empty(t, final.ErrorMessage)
}

func TestHandleSubmitConflictWhileInFlight(t *testing.T) {
	chain := &blockedChainClient{release: make(chan struct{})}
	defer close(chain.release)

	router := newTestRouter(t, chain, new(registry.MockDeviceReader))

	rec := postJSON(router, "/api/operator/register", `{"device_id":"DEV-1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = postJSON(router, "/api/operator/register", `{"device_id":"DEV-2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleStatusInitiallyIdle(t *testing.T) {
	router := newTestRouter(t, new(registry.MockChainClient), new(registry.MockDeviceReader))

	rec := get(router, "/api/operator/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp attemptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, registration.StatusIdle, resp.Status)
	assert.Empty(t, resp.TransactionHash)
}

func TestHandleResetReturnsIdleSnapshot(t *testing.T) {
	chain := &blockedChainClient{release: make(chan struct{})}
	defer close(chain.release)

	router := newTestRouter(t, chain, new(registry.MockDeviceReader))

	rec := postJSON(router, "/api/operator/register", `{"device_id":"DEV-1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = postJSON(router, "/api/operator/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp attemptResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, registration.StatusIdle, resp.Status)
	assert.Empty(t, resp.DeviceID)
}

func TestHandleDeviceLookup(t *testing.T) {
	devices := new(registry.MockDeviceReader)
	devices.On("IsWhitelisted", mock.Anything, interfaces.DeviceID("abc123")).Return(true, nil)
	devices.On("StakeOf", mock.Anything, interfaces.DeviceID("abc123")).
		Return(big.NewInt(10_000_000_000_000_000), nil)

	router := newTestRouter(t, new(registry.MockChainClient), devices)

	rec := get(router, "/api/public/device/abc123")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp deviceLookupResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "abc123", resp.DeviceID)
	assert.True(t, resp.Whitelisted)
	assert.Equal(t, "10000000000000000", resp.StakeWei)
}

func TestHandleDeviceLookupRegistryError(t *testing.T) {
	devices := new(registry.MockDeviceReader)
	devices.On("IsWhitelisted", mock.Anything, interfaces.DeviceID("abc123")).
		Return(false, errors.New("rpc unavailable"))

	router := newTestRouter(t, new(registry.MockChainClient), devices)

	rec := get(router, "/api/public/device/abc123")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
