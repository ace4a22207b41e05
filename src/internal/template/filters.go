package template

import (
	"fmt"
	"net"
	"net/netip"
)

var builtinFilters = map[string]Filter{
	"address_from_cidr": AddressFromCIDR,
	"netmask_from_cidr": NetmaskFromCIDR,
}

func parseNetwork(text string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(text)
	if err != nil {
		return netip.Prefix{}, err
	}
	if p != p.Masked() {
		return netip.Prefix{}, fmt.Errorf("%s has host bits set", text)
	}
	return p, nil
}

// AddressFromCIDR returns the network address of a prefix:
// 192.0.2.0/24 -> 192.0.2.0, 2001:db8::/48 -> 2001:db8::
func AddressFromCIDR(text string) (string, error) {
	p, err := parseNetwork(text)
	if err != nil {
		return "", err
	}
	return p.Addr().String(), nil
}

// NetmaskFromCIDR returns the prefix length as a mask:
// 192.0.2.0/24 -> 255.255.255.0, 2001:db8::/48 -> ffff:ffff:ffff::
func NetmaskFromCIDR(text string) (string, error) {
	p, err := parseNetwork(text)
	if err != nil {
		return "", err
	}
	mask := net.CIDRMask(p.Bits(), p.Addr().BitLen())
	return net.IP(mask).String(), nil
}
