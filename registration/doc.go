/*
Package registration drives a single staking registration attempt through its
lifecycle: submission, waiting for the wallet-signed transaction hash, waiting
for chain confirmation, and a terminal Confirmed or Failed state.

The lifecycle is an explicit finite state machine with one authoritative
transition function per external signal, instead of ad hoc callbacks:

	Idle ──Submit──▶ AwaitingSignature ──hash──▶ AwaitingConfirmation ──receipt──▶ Confirmed
	                        │                           │
	                        └────────── error ──────────┴──▶ Failed

Operator input validation happens synchronously inside Submit and transitions
straight into AwaitingSignature; it is never observable as a stored state.

Guarantees the controller maintains for every attempt:

  - exactly one attempt is in flight at a time; Submit is rejected with
    ErrAttemptInFlight until the prior attempt reaches a terminal state or is
    reset
  - a transaction hash is accepted at most once; duplicate or late-arriving
    hashes are ignored, never overwritten
  - a failure clears any recorded hash, so a stale hash never leaks into a
    retry
  - Reset returns to Idle from any state and detaches in-flight event
    delivery; it cannot cancel a transaction that was already broadcast

The controller never retries on its own. Retry is an explicit caller-initiated
Reset followed by a new Submit.
*/
package registration
