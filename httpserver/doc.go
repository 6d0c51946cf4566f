/*
Package httpserver implements the operator-facing HTTP API of the device
registry service.

It exposes the registration lifecycle of the local operator session and a
public whitelist lookup backed by the on-chain registry:

  - POST /api/operator/register: validate a device fingerprint and submit
    the staking registration; 202 with the attempt snapshot, 400 on blank
    input, 409 while a prior attempt is still in flight
  - GET /api/operator/status: current attempt snapshot
  - POST /api/operator/reset: clear the attempt and return to idle; does
    not cancel an already-broadcast chain transaction
  - GET /api/public/device/{fingerprint}: whitelist status and staked
    amount for a fingerprint, read from the contract

Health and diagnostic endpoints (/livez, /readyz, /drain, /undrain, optional
pprof) and the separate Prometheus metrics listener follow the same layout as
the rest of our services.
*/
package httpserver
