package registration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/proofcam/device-registry/interfaces"
	"github.com/proofcam/device-registry/metrics"
)

// ErrAttemptInFlight is returned by Submit while a prior attempt has not
// reached a terminal state and has not been reset.
var ErrAttemptInFlight = errors.New("a registration attempt is already in flight")

// Controller owns the single active registration attempt for one operator
// session and exposes its current state at every step. Create one per
// session; it carries no global state.
type Controller struct {
	client interfaces.ChainClient
	log    *slog.Logger

	mu        sync.Mutex
	attempt   Attempt
	startedAt time.Time
	// seq identifies the active attempt. Events pumped by a goroutine from a
	// previous attempt carry a stale seq and are dropped, so Reset detaches
	// in-flight delivery without racing the chain client.
	seq uint64
}

// New creates a controller submitting through the given chain client.
func New(client interfaces.ChainClient, log *slog.Logger) *Controller {
	return &Controller{
		client:  client,
		log:     log,
		attempt: Attempt{Status: StatusIdle},
	}
}

// Snapshot returns a copy of the current attempt.
func (c *Controller) Snapshot() Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// Submit validates the operator input and starts a new registration attempt.
// It fails synchronously with interfaces.ErrEmptyDeviceID on blank input,
// without invoking the chain client, and with ErrAttemptInFlight while a
// prior attempt is still pending. On success it clears any prior error, hash
// and terminal state, transitions to AwaitingSignature and dispatches the
// staking call asynchronously; subsequent progress is observable via
// Snapshot.
func (c *Controller) Submit(ctx context.Context, rawDeviceID string) error {
	device, err := interfaces.NewDeviceID(rawDeviceID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.attempt.Status.InFlight() {
		c.mu.Unlock()
		return ErrAttemptInFlight
	}

	c.seq++
	seq := c.seq
	c.attempt = Attempt{DeviceID: device, Status: StatusAwaitingSignature}
	c.startedAt = time.Now()
	c.mu.Unlock()

	c.log.Info("Submitting device registration", "deviceID", device.String())
	go c.pump(ctx, seq, device)

	return nil
}

// pump delivers the chain client's asynchronous completions as lifecycle
// events for attempt seq. The attempt suspends between submission and hash
// arrival, and between hash arrival and confirmation; both waits are
// unbounded and governed by ctx only.
func (c *Controller) pump(ctx context.Context, seq uint64, device interfaces.DeviceID) {
	hash, err := c.client.Broadcast(ctx, device)
	if err != nil {
		c.deliverError(seq, err)
		return
	}
	if !c.deliverHash(seq, hash) {
		return
	}

	if err := c.client.WaitForReceipt(ctx, hash); err != nil {
		c.deliverError(seq, err)
		return
	}
	c.deliverConfirmed(seq)
}

// OnHashReceived records the transaction hash for the current attempt and
// transitions to AwaitingConfirmation. Duplicate or late deliveries are
// ignored: a hash is accepted at most once per attempt.
func (c *Controller) OnHashReceived(hash interfaces.TxHash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordHash(hash)
}

// OnConfirmed marks the current attempt as confirmed. It is valid only while
// a hash is recorded and the attempt is awaiting confirmation; anything else
// is ignored.
func (c *Controller) OnConfirmed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordConfirmed()
}

// OnError fails the current attempt with the given error. Valid from
// AwaitingSignature and AwaitingConfirmation; the recorded transaction hash,
// if any, is cleared so it can never leak into a later attempt.
func (c *Controller) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordError(err)
}

// Reset clears all attempt state and returns to Idle. It is permitted from
// any state. Resetting does not cancel an in-flight chain transaction: once
// broadcast, the transaction cannot be revoked locally; only its tracking
// is detached.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.attempt = Attempt{Status: StatusIdle}
	c.startedAt = time.Time{}
	c.log.Debug("Registration attempt reset")
}

func (c *Controller) deliverHash(seq uint64, hash interfaces.TxHash) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return false
	}
	c.recordHash(hash)
	return c.attempt.Status == StatusAwaitingConfirmation
}

func (c *Controller) deliverConfirmed(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.recordConfirmed()
}

func (c *Controller) deliverError(seq uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.recordError(err)
}

// recordHash, recordConfirmed and recordError are the authoritative
// transition functions. Callers must hold c.mu.

func (c *Controller) recordHash(hash interfaces.TxHash) {
	if !c.attempt.TxHash.IsZero() {
		// Duplicate delivery; the first hash wins.
		return
	}
	if c.attempt.Status != StatusAwaitingSignature {
		return
	}

	c.attempt.TxHash = hash
	c.attempt.Status = StatusAwaitingConfirmation
	c.log.Info("Transaction hash received",
		"deviceID", c.attempt.DeviceID.String(), "txHash", hash.String())
}

func (c *Controller) recordConfirmed() {
	if c.attempt.Status != StatusAwaitingConfirmation || c.attempt.TxHash.IsZero() {
		return
	}

	c.attempt.Status = StatusConfirmed
	c.log.Info("Device registration confirmed",
		"deviceID", c.attempt.DeviceID.String(), "txHash", c.attempt.TxHash.String())

	metrics.Registration().ObserveOutcome("confirmed")
	if !c.startedAt.IsZero() {
		metrics.Registration().ObserveConfirmation(time.Since(c.startedAt))
	}
}

func (c *Controller) recordError(err error) {
	if !c.attempt.Status.InFlight() {
		return
	}

	kind := interfaces.KindOf(err)
	if kind == interfaces.KindUnknown {
		// Unclassified errors default to the stage they surfaced in.
		if c.attempt.Status == StatusAwaitingSignature {
			kind = interfaces.KindBroadcastFailed
		} else {
			kind = interfaces.KindConfirmation
		}
	}

	c.attempt.Status = StatusFailed
	c.attempt.TxHash = interfaces.TxHash{}
	c.attempt.ErrorKind = kind
	c.attempt.ErrorMessage = err.Error()
	c.log.Error("Device registration failed",
		"deviceID", c.attempt.DeviceID.String(), "kind", kind.String(), "err", err)

	metrics.Registration().ObserveOutcome("failed")
}
