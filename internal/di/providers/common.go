// Package providers contains dependency injection providers for the PromptDeck server.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)

// appVersion is reported by the health endpoint and stamped into exports.
// Overridden at build time via -ldflags "-X ...providers.appVersion=x.y.z".
var appVersion = "dev"
