// Package common holds shared constants and the logger setup used by all
// device-registry binaries.
package common

// PackageName tags metrics and logs emitted by this service.
const PackageName = "device-registry"

// Version is set at build time via -ldflags.
var Version = "dev"
