// Package privacy masks personal data before it reaches logs, metrics, or event streams.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
)

// AnonymizeIP truncates an address to its network: /24 for IPv4, /48 for IPv6.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// SubjectHash returns a stable pseudonym for a citizen ID. Events are keyed by it so that
// consumers can correlate records without ever holding the raw identifier.
func SubjectHash(citizenID string) string {
	sum := sha256.Sum256([]byte("vaxreg:" + citizenID))
	return hex.EncodeToString(sum[:16])
}
