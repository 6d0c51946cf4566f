// The device-registry-server command serves the operator registration API
// and the public whitelist lookup over HTTP, with Prometheus metrics on a
// separate listener.
package main
