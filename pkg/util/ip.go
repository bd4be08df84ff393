package util

import (
	"fmt"
	"net"
)

// IsValidIPv4CIDR reports whether s is a valid IPv4 network in CIDR
// notation (e.g. "10.0.0.0/24").
func IsValidIPv4CIDR(s string) bool {
	ip, _, err := net.ParseCIDR(s)
	if err != nil {
		return false
	}
	return ip.To4() != nil
}

// IsValidIP reports whether s is a valid IPv4 or IPv6 address.
func IsValidIP(s string) bool {
	return net.ParseIP(s) != nil
}

// AddrInNetwork reports whether address falls inside the CIDR network.
// Invalid inputs report false.
func AddrInNetwork(address, cidr string) bool {
	ip := net.ParseIP(address)
	if ip == nil {
		return false
	}
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return ipNet.Contains(ip)
}

// ValidateNetworkValue validates a network value in CIDR notation and
// returns a descriptive error suitable for surfacing to a caller.
func ValidateNetworkValue(cidr string) error {
	if _, _, err := net.ParseCIDR(cidr); err != nil {
		return fmt.Errorf("invalid network value %q: expected CIDR notation such as 10.0.0.0/24", cidr)
	}
	return nil
}
