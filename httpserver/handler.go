package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/proofcam/device-registry/interfaces"
	"github.com/proofcam/device-registry/registration"
)

// maxBodySize is the maximum allowed request body size (64KB). Registration
// requests carry a single fingerprint string.
const maxBodySize = 64 * 1024

// DeviceReader is the read-only view of the registry contract used by the
// public lookup endpoint. *registry.Client satisfies it.
type DeviceReader interface {
	IsWhitelisted(ctx context.Context, device interfaces.DeviceID) (bool, error)
	StakeOf(ctx context.Context, device interfaces.DeviceID) (*big.Int, error)
}

// Handler processes HTTP requests for the device registry service. It owns
// the operator session's registration controller and a read-only view of the
// on-chain registry.
type Handler struct {
	controller *registration.Controller
	devices    DeviceReader
	log        *slog.Logger
}

// NewHandler creates a handler around the given controller and registry view.
func NewHandler(controller *registration.Controller, devices DeviceReader, log *slog.Logger) *Handler {
	return &Handler{
		controller: controller,
		devices:    devices,
		log:        log,
	}
}

type submitRequest struct {
	DeviceID string `json:"device_id"`
}

type attemptResponse struct {
	DeviceID        string              `json:"device_id,omitempty"`
	Status          registration.Status `json:"status"`
	TransactionHash string              `json:"transaction_hash,omitempty"`
	ErrorKind       string              `json:"error_kind,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
}

func newAttemptResponse(a registration.Attempt) attemptResponse {
	resp := attemptResponse{
		DeviceID:     a.DeviceID.String(),
		Status:       a.Status,
		ErrorMessage: a.ErrorMessage,
	}
	if !a.TxHash.IsZero() {
		resp.TransactionHash = a.TxHash.String()
	}
	if a.ErrorKind != interfaces.KindUnknown {
		resp.ErrorKind = a.ErrorKind.String()
	}
	return resp
}

type deviceLookupResponse struct {
	DeviceID    string `json:"device_id"`
	Whitelisted bool   `json:"whitelisted"`
	StakeWei    string `json:"stake_wei"`
}

// HandleSubmit validates the fingerprint from the request body and submits a
// staking registration attempt.
//
// URL format: POST /api/operator/register
// Request body: {"device_id": "<fingerprint>"}
//
// Responds 202 with the attempt snapshot once the submission is dispatched,
// 400 on blank input and 409 while a prior attempt is still in flight.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The attempt outlives this request: confirmation waiting is bounded by
	// the chain, not by the HTTP round trip.
	err := h.controller.Submit(context.Background(), req.DeviceID)
	switch {
	case errors.Is(err, interfaces.ErrEmptyDeviceID):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, registration.ErrAttemptInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.log.Error("Submission failed", "err", err)
		http.Error(w, "Submission failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, newAttemptResponse(h.controller.Snapshot()))
}

// HandleStatus returns the current attempt snapshot.
//
// URL format: GET /api/operator/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, newAttemptResponse(h.controller.Snapshot()))
}

// HandleReset clears the attempt and returns to idle. An already-broadcast
// chain transaction is not cancelled, only its local tracking is detached.
//
// URL format: POST /api/operator/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	h.writeJSON(w, http.StatusOK, newAttemptResponse(h.controller.Snapshot()))
}

// HandleDeviceLookup reads a fingerprint's whitelist status and staked amount
// from the registry contract.
//
// URL format: GET /api/public/device/{fingerprint}
func (h *Handler) HandleDeviceLookup(w http.ResponseWriter, r *http.Request) {
	device, err := interfaces.NewDeviceID(chi.URLParam(r, "fingerprint"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	whitelisted, err := h.devices.IsWhitelisted(r.Context(), device)
	if err != nil {
		h.log.Error("Whitelist lookup failed", "deviceID", device.String(), "err", err)
		http.Error(w, "Registry lookup failed", http.StatusBadGateway)
		return
	}

	stake, err := h.devices.StakeOf(r.Context(), device)
	if err != nil {
		h.log.Error("Stake lookup failed", "deviceID", device.String(), "err", err)
		http.Error(w, "Registry lookup failed", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, deviceLookupResponse{
		DeviceID:    device.String(),
		Whitelisted: whitelisted,
		StakeWei:    stake.String(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Could not encode response", "err", err)
	}
}
