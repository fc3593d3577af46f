// Package version provides version information for the sfbilling binary.
package version

// Version is the current version of sfbilling.
// It is overridden at build time using -ldflags "-X github.com/sfbilling/sfbilling/pkg/version.Version=...".
var Version = "1.0.0"

// GetVersion returns the version of the running binary.
func GetVersion() string {
	return Version
}
