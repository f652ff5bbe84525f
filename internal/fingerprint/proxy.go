// Package fingerprint classifies tracking requests: whether the source IP
// belongs to a mail provider's image-prefetching proxy, which mail client
// rendered the message, and what device profile the user-agent describes.
// All of it is heuristic, best-effort signal, never authoritative
// identification.
package fingerprint

import (
	"encoding/binary"
	"net"

	"github.com/ignite/mailtrace/internal/config"
)

// ipRange is an inclusive [start,end] IPv4 range in numeric form.
type ipRange struct {
	start    uint32
	end      uint32
	provider string
}

// Classifier answers proxy-IP membership and mail-client questions from
// static tables built at startup. It is read-only after construction and
// safe for concurrent use.
type Classifier struct {
	ranges []ipRange
	rules  []clientRule
}

// NewClassifier builds a Classifier from the configured proxy range table.
// Ranges that fail to parse as IPv4 dotted quads are dropped.
func NewClassifier(ranges []config.ProxyRange) *Classifier {
	c := &Classifier{rules: defaultClientRules}
	for _, r := range ranges {
		start, ok1 := ipv4ToUint32(r.Start)
		end, ok2 := ipv4ToUint32(r.End)
		if !ok1 || !ok2 || start > end {
			continue
		}
		c.ranges = append(c.ranges, ipRange{start: start, end: end, provider: r.Provider})
	}
	return c
}

// IsEmailProxyIP reports whether ip falls inside a known mail-provider
// proxy range. IPv6 addresses never match.
func (c *Classifier) IsEmailProxyIP(ip string) bool {
	_, ok := c.ProxyProvider(ip)
	return ok
}

// ProxyProvider returns the provider name owning the range that contains
// ip, if any.
func (c *Classifier) ProxyProvider(ip string) (string, bool) {
	n, ok := ipv4ToUint32(ip)
	if !ok {
		return "", false
	}
	for _, r := range c.ranges {
		if n >= r.start && n <= r.end {
			return r.provider, true
		}
	}
	return "", false
}

// ipv4ToUint32 converts a dotted-quad IPv4 address to its numeric value.
// IPv6 addresses and garbage return false.
func ipv4ToUint32(s string) (uint32, bool) {
	parsed := net.ParseIP(s)
	if parsed == nil {
		return 0, false
	}
	v4 := parsed.To4()
	if v4 == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(v4), true
}
