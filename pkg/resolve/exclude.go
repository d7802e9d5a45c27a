package resolve

import "net/netip"

// ParseExclusions turns exclusion strings into CIDR prefixes: CIDR
// strings pass through, single IPs become host prefixes (/32 or /128),
// and hostnames are resolved and each result becomes a host prefix.
func ParseExclusions(exclusions []string, resolver Resolver) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, s := range exclusions {
		prefixes = append(prefixes, parseSingleExclusion(s, resolver)...)
	}
	return prefixes
}

func parseSingleExclusion(s string, resolver Resolver) []netip.Prefix {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return []netip.Prefix{prefix.Masked()}
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return []netip.Prefix{hostPrefix(addr)}
	}
	if resolver == nil {
		return nil
	}
	var prefixes []netip.Prefix
	for _, addr := range resolver.LookupAll(s) {
		prefixes = append(prefixes, hostPrefix(addr))
	}
	return prefixes
}

func hostPrefix(addr netip.Addr) netip.Prefix {
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	return netip.PrefixFrom(addr, bits)
}
