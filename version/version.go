// Package version carries the SDK version embedded in telemetry payloads
// and the CLI user agent.
package version

// Version is the SDK release version. Overridden at build time via
// -ldflags "-X github.com/xping/xping-go/version.Version=...".
var Version = "0.3.0-dev"

// UserAgent identifies the SDK on the wire.
func UserAgent() string {
	return "xping-go/" + Version
}
