package build

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conneroisu/sitepack/internal/errors"
)

// DefaultServeHost is used when the serve address names no host.
const DefaultServeHost = "127.0.0.1"

// ParseServeAddress splits "host[:port]". An empty address or "true" means
// the defaults; an empty or zero port means esbuild's default port.
func ParseServeAddress(addr string) (string, uint16, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" || addr == "true" {
		return DefaultServeHost, 0, nil
	}
	if strings.Count(addr, ":") > 1 {
		return "", 0, invalidAddress(addr, "more than one ':'")
	}

	host, portText, _ := strings.Cut(addr, ":")
	if host == "" {
		host = DefaultServeHost
	}
	if portText == "" {
		return host, 0, nil
	}

	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return "", 0, invalidAddress(addr, fmt.Sprintf("port %q is not in range 0-65535", portText))
	}
	return host, uint16(port), nil
}

func invalidAddress(addr, reason string) error {
	return errors.NewConfigError(errors.ErrCodeInvalidAddress, fmt.Sprintf("invalid serve address %q: %s", addr, reason))
}
