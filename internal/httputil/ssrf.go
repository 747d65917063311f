package httputil

import (
	"fmt"
	"net"
)

// ValidateIP rejects an address a download redirect should never be
// allowed to land on. ei follows redirects for URLs it did not fully
// choose itself — a configured proxy mirror, a resolved nightly.link
// artifact, a builtin-registry entry someone else maintains — so a
// malicious or compromised upstream could try to bounce the client at
// an internal address instead of the asset it advertised. Every class
// below is a documented SSRF vector against exactly that shape of
// attack:
//   - Private (RFC 1918: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
//   - Loopback (127.0.0.0/8, ::1)
//   - Link-local unicast (169.254.0.0/16, fe80::/10) - includes cloud metadata services
//   - Link-local multicast (224.0.0.0/24, ff02::/16)
//   - Multicast (224.0.0.0/4 for IPv4, ff00::/8 for IPv6)
//   - Unspecified (0.0.0.0, ::)
//
// host is carried only for the error message, so a blocked redirect
// names the hostname that resolved to the offending address rather
// than just the bare IP.
func ValidateIP(ip net.IP, host string) error {
	for _, c := range blockedIPClasses {
		if c.match(ip) {
			return fmt.Errorf("refusing redirect to %s IP: %s (%s)", c.name, host, ip)
		}
	}
	return nil
}

type ipClass struct {
	name  string
	match func(net.IP) bool
}

var blockedIPClasses = []ipClass{
	{"private", net.IP.IsPrivate},
	{"loopback", net.IP.IsLoopback},
	{"link-local", net.IP.IsLinkLocalUnicast},
	{"link-local multicast", net.IP.IsLinkLocalMulticast},
	{"multicast", net.IP.IsMulticast},
	{"unspecified", net.IP.IsUnspecified},
}
