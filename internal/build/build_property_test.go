//go:build property
// +build property

package build

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/sitepack/internal/config"
)

// TestServeAddressProperties tests serve address parsing properties
func TestServeAddressProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: host:port round-trips for every valid port
	properties.Property("host and port round trip", prop.ForAll(
		func(host string, port uint16) bool {
			gotHost, gotPort, err := ParseServeAddress(fmt.Sprintf("%s:%d", host, port))
			return err == nil && gotHost == host && gotPort == port
		},
		gen.RegexMatch(`^[a-z][a-z0-9.-]{0,20}$`),
		gen.UInt16(),
	))

	// Property: a missing host always falls back to the default
	properties.Property("default host", prop.ForAll(
		func(port uint16) bool {
			host, _, err := ParseServeAddress(fmt.Sprintf(":%d", port))
			return err == nil && host == DefaultServeHost
		},
		gen.UInt16(),
	))

	// Property: ports beyond 16 bits are rejected
	properties.Property("port range", prop.ForAll(
		func(port int) bool {
			_, _, err := ParseServeAddress(fmt.Sprintf("localhost:%d", port))
			return err != nil
		},
		gen.IntRange(65536, 1<<24),
	))

	properties.TestingRun(t)
}

// TestTargetProperties checks every accepted configuration target maps to esbuild
func TestTargetProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("configured targets are known", prop.ForAll(
		func(i int) bool {
			_, ok := targetOf(config.Targets[i])
			return ok
		},
		gen.IntRange(0, len(config.Targets)-1),
	))

	properties.TestingRun(t)
}
