// Package device derives a human-readable device name from a User-Agent
// string, for security audit events ("Chrome on Mac OS X" rather than a
// raw UA blob).
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent renders a short display name from a raw User-Agent.
// Unparseable agents still yield a non-empty name so audit entries never
// carry blank device fields.
func ParseUserAgent(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return unknownDevice
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
